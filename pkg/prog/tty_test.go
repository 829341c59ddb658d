//go:build unix

package prog_test

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/creack/pty"

	"src.shadegraph.dev/pkg/must"
	. "src.shadegraph.dev/pkg/prog"
	"src.shadegraph.dev/pkg/prog/progtest"
)

func TestColorAutoOnTerminal(t *testing.T) {
	progtest.SetConfigEnv(t)
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("no pty: %v", err)
	}
	defer ptmx.Close()
	devNull := must.OK1(os.OpenFile(os.DevNull, os.O_RDWR, 0))
	defer devNull.Close()

	exit := Run([3]*os.File{devNull, devNull, tty},
		[]string{"shadegraph", "test"}, testProgram{returnErr: errors.New("boom")})
	tty.Close()
	if exit != 2 {
		t.Errorf("got exit %d, want 2", exit)
	}

	got := make(chan string, 1)
	go func() {
		buf := make([]byte, 256)
		n, _ := ptmx.Read(buf)
		got <- string(buf[:n])
	}()
	select {
	case out := <-got:
		if !strings.Contains(out, "\033[31mboom") {
			t.Errorf("got %q on the terminal, want colored error", out)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out reading the terminal")
	}
}
