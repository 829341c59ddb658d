// Package progtest contains utilities for testing [prog.Program] instances.
package progtest

import (
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"src.shadegraph.dev/pkg/must"
	"src.shadegraph.dev/pkg/prog"
)

// Case is a test case for Test, built with ThatShadegraph.
type Case struct {
	args  []string
	stdin string
	exit  int

	checks []func(t *testing.T, stdout, stderr string)
}

// ThatShadegraph returns a Case running the program with the given arguments.
// By default the case expects an exit status of 0 and nothing written to
// stdout or stderr; use the methods to change the expectations.
func ThatShadegraph(args ...string) *Case {
	return &Case{args: append([]string{"shadegraph"}, args...)}
}

// WithStdin sets the content of stdin.
func (c *Case) WithStdin(s string) *Case {
	c.stdin = s
	return c
}

// ExitsWith sets the expected exit status.
func (c *Case) ExitsWith(code int) *Case {
	c.exit = code
	return c
}

// DoesNothing expects the program to exit with 0 without any output. It is
// the default, and only makes the test read better.
func (c *Case) DoesNothing() *Case { return c }

// WritesStdout expects stdout to be exactly s.
func (c *Case) WritesStdout(s string) *Case {
	return c.check(func(t *testing.T, stdout, _ string) {
		if stdout != s {
			t.Errorf("got stdout %q, want %q", stdout, s)
		}
	})
}

// WritesStdoutContaining expects stdout to contain s.
func (c *Case) WritesStdoutContaining(s string) *Case {
	return c.check(func(t *testing.T, stdout, _ string) {
		if !strings.Contains(stdout, s) {
			t.Errorf("got stdout %q, want one containing %q", stdout, s)
		}
	})
}

// WritesStderr expects stderr to be exactly s.
func (c *Case) WritesStderr(s string) *Case {
	return c.check(func(t *testing.T, _, stderr string) {
		if stderr != s {
			t.Errorf("got stderr %q, want %q", stderr, s)
		}
	})
}

// WritesStderrContaining expects stderr to contain s.
func (c *Case) WritesStderrContaining(s string) *Case {
	return c.check(func(t *testing.T, _, stderr string) {
		if !strings.Contains(stderr, s) {
			t.Errorf("got stderr %q, want one containing %q", stderr, s)
		}
	})
}

func (c *Case) check(f func(t *testing.T, stdout, stderr string)) *Case {
	c.checks = append(c.checks, f)
	return c
}

// Test runs test cases against a program.
func Test(t *testing.T, p prog.Program, cases ...*Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args[1:], " "), func(t *testing.T) {
			t.Helper()
			exit, stdout, stderr := Run(c.stdin, c.args, p)
			if exit != c.exit {
				t.Errorf("got exit %v, want %v\nstderr: %s", exit, c.exit, stderr)
			}
			if len(c.checks) == 0 {
				if stdout != "" || stderr != "" {
					t.Errorf("got stdout %q, stderr %q, want nothing", stdout, stderr)
				}
			}
			for _, check := range c.checks {
				check(t, stdout, stderr)
			}
		})
	}
}

// Run runs a program with the given stdin and arguments, and returns its exit
// status and output. args[0] is the program name.
func Run(stdin string, args []string, p prog.Program) (exit int, stdout, stderr string) {
	r0, w0 := must.OK2(os.Pipe())
	r1, w1 := must.OK2(os.Pipe())
	r2, w2 := must.OK2(os.Pipe())
	defer r0.Close()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		io.WriteString(w0, stdin)
		w0.Close()
	}()
	// Read concurrently so that programs writing more than the pipe buffers
	// do not block.
	go func() {
		defer wg.Done()
		stdout = string(must.OK1(io.ReadAll(r1)))
	}()
	go func() {
		defer wg.Done()
		stderr = string(must.OK1(io.ReadAll(r2)))
	}()

	exit = prog.Run([3]*os.File{r0, w1, w2}, args, p)
	w1.Close()
	w2.Close()
	wg.Wait()
	r1.Close()
	r2.Close()
	return exit, stdout, stderr
}

// SetConfigEnv points the configuration at a file that does not exist, so
// that tests do not read the configuration of the user running them.
func SetConfigEnv(t *testing.T) {
	t.Setenv("SHADEGRAPH_CONFIG", t.TempDir()+"/config.yaml")
}
