// Package prog provides the entry point to shadegraph. Its subpackages and
// the packages it is called with provide the subprograms.
package prog

// This package sets up the basic environment, the root command and the
// common flags, and runs the command the arguments select.

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"src.shadegraph.dev/pkg/config"
	"src.shadegraph.dev/pkg/diag"
	"src.shadegraph.dev/pkg/logutil"
)

var logger = logutil.GetLogger("prog")

// Flags keeps the common command-line flags, and the configuration they
// select. Config is loaded before any command runs.
type Flags struct {
	Log, LogLevel, CPUProfile string
	ConfigPath, Color         string

	Config *config.Config
	// FS is the filesystem documents and the configuration are read from.
	FS afero.Fs
	// Getenv and Environ default to the os functions.
	Getenv  func(string) string
	Environ func() []string
}

// Program represents a subprogram.
type Program interface {
	// Commands returns the commands of the subprogram. fds are the standard
	// files; f is filled in before any of the commands runs.
	Commands(fds [3]*os.File, f *Flags) []*cobra.Command
}

func newRoot(f *Flags) *cobra.Command {
	root := &cobra.Command{
		Use:           "shadegraph",
		Short:         "Evaluate and compile shader node graphs",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&f.Log, "log", "", "a file to write debug log to")
	pf.StringVar(&f.LogLevel, "log-level", "", "minimum level of logged messages (trace, debug, info, warn, error)")
	pf.StringVar(&f.CPUProfile, "cpuprofile", "", "write cpu profile to file")
	pf.StringVar(&f.ConfigPath, "config", "", "path to the configuration file")
	pf.StringVar(&f.Color, "color", "", "when to color error messages: auto, always or never")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return BadUsage(err.Error()) })
	return root
}

// Run parses command-line flags and runs the selected command of the given
// programs. It returns the exit status of the program.
func Run(fds [3]*os.File, args []string, programs ...Program) int {
	f := &Flags{FS: afero.NewOsFs(), Getenv: os.Getenv, Environ: os.Environ}
	return run(fds, args, f, programs)
}

func run(fds [3]*os.File, args []string, f *Flags, programs []Program) int {
	root := newRoot(f)
	root.SetArgs(args[1:])
	root.SetIn(fds[0])
	root.SetOut(fds[1])
	root.SetErr(fds[2])

	ran := false
	var stopProfile func()
	root.PersistentPreRunE = func(*cobra.Command, []string) error {
		ran = true
		stopProfile = setup(fds, f)
		return loadConfig(f)
	}
	for _, p := range programs {
		root.AddCommand(p.Commands(fds, f)...)
	}

	cmd, err := root.ExecuteC()
	if stopProfile != nil {
		stopProfile()
	}
	if err == nil {
		return 0
	}
	var exit exitError
	if errors.As(err, &exit) {
		return exit.exit
	}
	var bad badUsageError
	if errors.As(err, &bad) || !ran {
		fmt.Fprintln(fds[2], err)
		if cmd == nil {
			cmd = root
		}
		fmt.Fprint(fds[2], cmd.UsageString())
		return 2
	}
	ShowError(fds[2], err, f.ColorEnabled(fds[2]))
	return 2
}

// Handles flags common to all subprograms. The returned function stops the
// CPU profile.
func setup(fds [3]*os.File, f *Flags) func() {
	stop := func() {}
	if f.CPUProfile != "" {
		file, err := os.Create(f.CPUProfile)
		if err != nil {
			fmt.Fprintln(fds[2], "Warning: cannot create CPU profile:", err)
			fmt.Fprintln(fds[2], "Continuing without CPU profiling.")
		} else if err := pprof.StartCPUProfile(file); err != nil {
			fmt.Fprintln(fds[2], "Warning: cannot start CPU profile:", err)
			file.Close()
		} else {
			stop = func() {
				pprof.StopCPUProfile()
				file.Close()
			}
		}
	}
	if f.Log != "" {
		if err := logutil.SetOutputFile(f.Log); err != nil {
			fmt.Fprintln(fds[2], err)
		}
	}
	if f.LogLevel != "" && !logutil.SetLevel(f.LogLevel) {
		fmt.Fprintf(fds[2], "Warning: unknown log level %q\n", f.LogLevel)
	}
	return stop
}

func loadConfig(f *Flags) error {
	cfg, err := config.Load(f.FS, config.Path(f.ConfigPath, f.Getenv), f.ConfigPath != "", f.Environ())
	if err != nil {
		return fmt.Errorf("cannot load configuration: %w", err)
	}
	f.Config = cfg
	// The log flags win over the configuration.
	if f.Log == "" && cfg.Log.File != "" {
		if err := logutil.SetOutputFile(cfg.Log.File); err != nil {
			return err
		}
	}
	if f.LogLevel == "" {
		logutil.SetLevel(cfg.Log.Level)
	}
	if f.Color == "" {
		f.Color = cfg.Color
	}
	logger.Printf("[DEBUG] configuration: %+v", *cfg)
	return nil
}

// ColorEnabled reports whether output to w should be colored, according to
// the color flag or configuration.
func (f *Flags) ColorEnabled(w *os.File) bool {
	switch f.Color {
	case "always":
		return true
	case "never":
		return false
	}
	return isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())
}

// ShowError writes an error to w. Each error of a *multierror.Error is shown
// separately. With color, errors are shown by diag.ShowError; without color,
// every error is shown as its message.
func ShowError(w io.Writer, err error, color bool) {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			ShowError(w, e, color)
		}
		return
	}
	if !color {
		fmt.Fprintln(w, err.Error())
		return
	}
	diag.ShowError(w, err)
}

// BadUsage returns a special error that may be returned by a command. It
// causes the main function to print out a message, the usage information and
// exit with 2.
func BadUsage(msg string) error { return badUsageError{msg} }

type badUsageError struct{ msg string }

func (e badUsageError) Error() string { return e.msg }

// Exit returns a special error that may be returned by a command. It causes
// the main function to exit with the given code without printing any error
// messages. Exit(0) returns nil.
func Exit(exit int) error {
	if exit == 0 {
		return nil
	}
	return exitError{exit}
}

type exitError struct{ exit int }

func (e exitError) Error() string { return "" }
