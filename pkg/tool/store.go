package tool

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"src.shadegraph.dev/pkg/compile"
	"src.shadegraph.dev/pkg/graph"
	"src.shadegraph.dev/pkg/graphdoc"
	"src.shadegraph.dev/pkg/store"
	"src.shadegraph.dev/pkg/store/storedefs"
	"src.shadegraph.dev/pkg/vals"
)

func (e *env) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep graph documents in the local store",
		Long: "Keep graph documents in the local store.\n" +
			"The store is the file store.path of the configuration, by default\n" +
			"$XDG_DATA_HOME/shadegraph/store.db.",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "put NAME FILE",
			Short: "Save a document under a name",
			Args:  cobra.ExactArgs(2),
			RunE:  e.withStore(e.storePut),
		},
		&cobra.Command{
			Use:   "get NAME",
			Short: "Print a saved document",
			Args:  cobra.ExactArgs(1),
			RunE: e.withStore(func(st storedefs.Store, args []string) error {
				g, err := getGraph(st, args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(e.fds[1], g.Source)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "ls",
			Short: "List saved documents",
			Args:  cobra.NoArgs,
			RunE:  e.withStore(e.storeList),
		},
		&cobra.Command{
			Use:   "rm NAME...",
			Short: "Delete saved documents",
			Args:  cobra.MinimumNArgs(1),
			RunE: e.withStore(func(st storedefs.Store, args []string) error {
				for _, name := range args {
					if err := st.Delete(name); err != nil {
						return fmt.Errorf("%s: %w", name, err)
					}
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "eval NAME",
			Short: "Evaluate a saved document",
			Args:  cobra.ExactArgs(1),
			RunE: e.withStore(func(st storedefs.Store, args []string) error {
				v, err := e.storedEval(st, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(e.fds[1], v)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "compile NAME",
			Short: "Compile a saved document",
			Args:  cobra.ExactArgs(1),
			RunE: e.withStore(func(st storedefs.Store, args []string) error {
				code, err := e.storedCompile(st, args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(e.fds[1], code)
				return nil
			}),
		},
	)
	return cmd
}

// withStore opens the store for the duration of a command.
func (e *env) withStore(f func(st storedefs.Store, args []string) error) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		path := e.f.Config.Store.Path
		if path == "" {
			path = defaultStorePath(e.f.Getenv)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		st, err := store.NewStore(path)
		if err != nil {
			return fmt.Errorf("cannot open store %s: %w", path, err)
		}
		defer st.Close()
		return f(st, args)
	}
}

func defaultStorePath(getenv func(string) string) string {
	dir := getenv("XDG_DATA_HOME")
	if dir == "" {
		dir = filepath.Join(getenv("HOME"), ".local", "share")
	}
	return filepath.Join(dir, "shadegraph", "store.db")
}

func (e *env) storePut(st storedefs.Store, args []string) error {
	name, file := args[0], args[1]
	if strings.TrimSpace(name) == "" {
		return errors.New("graph name must not be empty")
	}
	reg, err := e.registry()
	if err != nil {
		return err
	}
	src, err := readFile(e.f, file)
	if err != nil {
		return err
	}
	d, _, _, err := graphdoc.BuildSource(file, src, reg)
	if err != nil {
		return err
	}
	digest, err := d.Digest()
	if err != nil {
		return err
	}
	same, err := st.Named(digest)
	if err != nil {
		return err
	}
	for _, other := range same {
		if other != name {
			fmt.Fprintf(e.fds[2], "note: same content as %s\n", other)
		}
	}
	g, err := st.Put(name, src, digest)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.fds[1], shortDigest(g.Digest))
	return nil
}

func (e *env) storeList(st storedefs.Store, _ []string) error {
	graphs, err := st.Graphs()
	if err != nil {
		return err
	}
	if len(graphs) == 0 {
		return nil
	}
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Digest", "Saved"})
	for _, g := range graphs {
		t.AppendRow(table.Row{g.Name, shortDigest(g.Digest), g.Saved.Local().Format("2006-01-02 15:04:05")})
	}
	fmt.Fprintln(e.fds[1], t.Render())
	return nil
}

func (e *env) storedEval(st storedefs.Store, name string) (string, error) {
	stored, err := getGraph(st, name)
	if err != nil {
		return "", err
	}
	_, g, _, err := e.buildStored(stored)
	if err != nil {
		return "", err
	}
	v, err := e.evaluator().Evaluate(g)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return vals.Repr(v), nil
}

func (e *env) storedCompile(st storedefs.Store, name string) (string, error) {
	stored, err := getGraph(st, name)
	if err != nil {
		return "", err
	}
	_, g, _, err := e.buildStored(stored)
	if err != nil {
		return "", err
	}
	code, err := compile.Program(g, e.f.Config.Compile.Blocks, e.f.Config.Compile.Current)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return code, nil
}

func (e *env) buildStored(stored storedefs.Graph) (*graphdoc.Doc, *graph.Graph, map[string]graph.NodeID, error) {
	reg, err := e.registry()
	if err != nil {
		return nil, nil, nil, err
	}
	return build("store:"+stored.Name, stored.Source, reg, nil)
}

func getGraph(st storedefs.Store, name string) (storedefs.Graph, error) {
	g, err := st.Get(name)
	if errors.Is(err, storedefs.ErrNoGraph) {
		return g, fmt.Errorf("%s: %w", name, err)
	}
	return g, err
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
