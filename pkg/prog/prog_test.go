package prog_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"src.shadegraph.dev/pkg/logutil"
	. "src.shadegraph.dev/pkg/prog"
	"src.shadegraph.dev/pkg/prog/progtest"
	"src.shadegraph.dev/pkg/testutil"
)

var (
	Test           = progtest.Test
	ThatShadegraph = progtest.ThatShadegraph
)

type testProgram struct {
	writeOut  string
	returnErr error
	flags     **Flags
}

func (p testProgram) Commands(fds [3]*os.File, f *Flags) []*cobra.Command {
	return []*cobra.Command{{
		Use:  "test",
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if p.flags != nil {
				*p.flags = f
			}
			fds[1].WriteString(p.writeOut)
			return p.returnErr
		},
	}}
}

func TestCommonFlagHandling(t *testing.T) {
	testutil.InTempDir(t)
	progtest.SetConfigEnv(t)

	Test(t, testProgram{},
		ThatShadegraph("test", "--bad-flag").
			ExitsWith(2).
			WritesStderrContaining("unknown flag: --bad-flag\nUsage:"),
		ThatShadegraph("nope").
			ExitsWith(2).
			WritesStderrContaining(`unknown command "nope"`),
		ThatShadegraph("test", "extra").
			ExitsWith(2).
			WritesStderrContaining("Usage:"),
		ThatShadegraph("--help").
			WritesStdoutContaining("Usage:\n  shadegraph [command]"),

		ThatShadegraph("test", "--cpuprofile", "cpuprof").DoesNothing(),
		ThatShadegraph("test", "--cpuprofile", "/a/bad/path").
			WritesStderrContaining("Warning: cannot create CPU profile:"),
		ThatShadegraph("test", "--log-level", "loud").
			WritesStderr("Warning: unknown log level \"loud\"\n"),
	)

	// There isn't much to test beyond a sanity check that the profile file
	// now exists.
	if _, err := os.Stat("cpuprof"); err != nil {
		t.Errorf("CPU profile file does not exist: %v", err)
	}
}

func TestLogFlag(t *testing.T) {
	dir := testutil.InTempDir(t)
	progtest.SetConfigEnv(t)
	t.Cleanup(func() { logutil.SetOutput(io.Discard) })
	Test(t, testProgram{}, ThatShadegraph("test", "--log", "log", "--log-level", "debug").DoesNothing())
	if _, err := os.Stat(filepath.Join(dir, "log")); err != nil {
		t.Errorf("log file does not exist: %v", err)
	}
}

func TestConfigIsLoaded(t *testing.T) {
	dir := testutil.InTempDir(t)
	testutil.WriteFiles(map[string]string{
		"sg.yaml":  "eval: {max_depth: 12}\ncolor: never\n",
		"bad.yaml": "color: pink\n",
	})
	var f *Flags
	Test(t, testProgram{flags: &f},
		ThatShadegraph("test", "--config", filepath.Join(dir, "sg.yaml")).DoesNothing())
	if f == nil || f.Config == nil || f.Config.Eval.MaxDepth != 12 || f.Color != "never" {
		t.Errorf("configuration not loaded: %+v", f)
	}

	Test(t, testProgram{},
		ThatShadegraph("test", "--config", "bad.yaml").
			ExitsWith(2).
			WritesStderrContaining("cannot load configuration"),
		ThatShadegraph("test", "--config", "missing.yaml").
			ExitsWith(2).
			WritesStderrContaining("cannot load configuration"),
	)
}

func TestBadUsageError(t *testing.T) {
	progtest.SetConfigEnv(t)
	Test(t,
		testProgram{returnErr: BadUsage("lorem ipsum")},
		ThatShadegraph("test").ExitsWith(2).WritesStderrContaining("lorem ipsum\nUsage:"),
	)
}

func TestExitError(t *testing.T) {
	progtest.SetConfigEnv(t)
	Test(t, testProgram{returnErr: Exit(3)},
		ThatShadegraph("test").ExitsWith(3),
	)
}

func TestExitError_0(t *testing.T) {
	progtest.SetConfigEnv(t)
	Test(t, testProgram{returnErr: Exit(0)},
		ThatShadegraph("test").ExitsWith(0),
	)
}

func TestOtherErrors(t *testing.T) {
	progtest.SetConfigEnv(t)
	Test(t, testProgram{writeOut: "out", returnErr: errors.New("boom")},
		ThatShadegraph("test", "--color", "never").
			ExitsWith(2).WritesStdout("out").WritesStderr("boom\n"),
		ThatShadegraph("test", "--color", "always").
			ExitsWith(2).WritesStderr("\033[1m\033[31mboom\033[0m\n"),
	)
}

func TestShowError(t *testing.T) {
	var sb strings.Builder
	ShowError(&sb, errors.Join(errors.New("a")), false)
	if sb.String() != "a\n" {
		t.Errorf("got %q", sb.String())
	}
}
