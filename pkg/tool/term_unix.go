//go:build unix

package tool

import (
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
)

// terminalWidth returns the width of the terminal f refers to, or 0 if f is
// not a terminal.
func terminalWidth(f *os.File) int {
	if f == nil || !isatty.IsTerminal(f.Fd()) {
		return 0
	}
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0
	}
	return int(ws.Col)
}
