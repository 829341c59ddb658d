package tool

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"src.shadegraph.dev/pkg/compile"
	"src.shadegraph.dev/pkg/prog"
	"src.shadegraph.dev/pkg/vals"
)

func (e *env) watchCommand() *cobra.Command {
	var action string
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Check, evaluate or compile a document whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := e.watchAction(action, args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return watch(ctx, args[0], run)
		},
	}
	cmd.Flags().StringVar(&action, "run", "check", "what to do on change: check, eval or compile")
	return cmd
}

// watchAction returns the function run on every change of file. Problems with
// the document are printed rather than returned, so that watching goes on.
func (e *env) watchAction(action, file string) (func(), error) {
	var do func() (string, error)
	switch action {
	case "check":
		do = func() (string, error) {
			_, _, _, err := e.load(file, nil)
			return "ok\n", err
		}
	case "eval":
		do = func() (string, error) {
			_, g, _, err := e.load(file, nil)
			if err != nil {
				return "", err
			}
			v, err := e.evaluator().Evaluate(g)
			if err != nil {
				return "", err
			}
			return vals.Repr(v) + "\n", nil
		}
	case "compile":
		do = func() (string, error) {
			_, g, _, err := e.load(file, nil)
			if err != nil {
				return "", err
			}
			return compile.Program(g, e.f.Config.Compile.Blocks, e.f.Config.Compile.Current)
		}
	default:
		return nil, fmt.Errorf("unknown watch action %q", action)
	}
	return func() {
		out, err := do()
		if err != nil {
			prog.ShowError(e.fds[1], err, e.f.ColorEnabled(e.fds[1]))
			return
		}
		fmt.Fprint(e.fds[1], out)
	}, nil
}

// watch calls run once, then again every time path is written or replaced,
// until ctx is done.
func watch(ctx context.Context, path string, run func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// Watch the directory, since editors often save by replacing the file.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	path = filepath.Clean(path)
	run()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			logger.Printf("[DEBUG] %s changed: %s", path, ev.Op)
			run()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Printf("[WARN] watching %s: %v", path, err)
		}
	}
}
