//go:build !unix

package tool

import "os"

func terminalWidth(*os.File) int { return 0 }
