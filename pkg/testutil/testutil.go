// Package testutil contains common test utilities.
package testutil

import (
	"os"
	"path/filepath"
)

// Cleanuper wraps the Cleanup method. It is a subset of [testing.TB], thus
// satisfied by [*testing.T] and [*testing.B].
type Cleanuper interface {
	Cleanup(func())
}

// TempDir creates a temporary directory that is removed when the test
// finishes, and returns its path with symlinks resolved.
func TempDir(c Cleanuper) string {
	dir, err := os.MkdirTemp("", "shadegraphtest.")
	if err != nil {
		panic(err)
	}
	dir, err = filepath.EvalSymlinks(dir)
	if err != nil {
		panic(err)
	}
	c.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// InTempDir is like TempDir, but also changes into the directory, and
// restores the working directory when the test finishes.
func InTempDir(c Cleanuper) string {
	dir := TempDir(c)
	Chdir(c, dir)
	return dir
}

// Chdir changes into dir for the duration of a test.
func Chdir(c Cleanuper, dir string) {
	oldWd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	if err := os.Chdir(dir); err != nil {
		panic(err)
	}
	c.Cleanup(func() { os.Chdir(oldWd) })
}

// WriteFiles writes files relative to the working directory, creating parent
// directories as needed.
func WriteFiles(files map[string]string) {
	for name, content := range files {
		if err := os.MkdirAll(filepath.Dir(name), 0700); err != nil {
			panic(err)
		}
		if err := os.WriteFile(name, []byte(content), 0600); err != nil {
			panic(err)
		}
	}
}
