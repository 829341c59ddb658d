// Package logutil provides logging utilities.
//
// All loggers share one hclog root whose output can be swapped at runtime.
// Output is discarded until SetOutput or SetOutputFile is called.
package logutil

import (
	"io"
	"log"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
)

var (
	out  = &swapWriter{w: io.Discard}
	root = hclog.New(&hclog.LoggerOptions{
		Name:   "shadegraph",
		Level:  hclog.Info,
		Output: out,
	})
)

// GetLogger gets a logger with the given name. Lines logged with a level
// prefix such as "[DEBUG]" or "[WARN]" are logged at that level.
func GetLogger(name string) *log.Logger {
	return root.Named(name).StandardLogger(&hclog.StandardLoggerOptions{
		InferLevels: true,
	})
}

// Root returns the hclog logger backing all loggers.
func Root() hclog.Logger { return root }

// SetOutput redirects the output of all loggers obtained with GetLogger to
// the new io.Writer. If the old output was a file opened by SetOutputFile, it
// is closed.
func SetOutput(newout io.Writer) {
	out.swap(newout)
}

// SetOutputFile redirects the output of all loggers obtained with GetLogger
// to the named file. If the old output was a file opened by SetOutputFile, it
// is closed. The new file is truncated. SetOutputFile("") is equivalent to
// SetOutput(io.Discard).
func SetOutputFile(fname string) error {
	if fname == "" {
		SetOutput(io.Discard)
		return nil
	}
	file, err := os.Create(fname)
	if err != nil {
		return err
	}
	out.swap(file)
	return nil
}

// SetLevel sets the minimum level of messages that are written. Unknown names
// leave the level unchanged and return false.
func SetLevel(name string) bool {
	level := hclog.LevelFromString(name)
	if level == hclog.NoLevel {
		return false
	}
	root.SetLevel(level)
	return true
}

type swapWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (sw *swapWriter) Write(p []byte) (int, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.w.Write(p)
}

func (sw *swapWriter) swap(w io.Writer) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if f, ok := sw.w.(*os.File); ok && f != os.Stdout && f != os.Stderr {
		f.Close()
	}
	sw.w = w
}
