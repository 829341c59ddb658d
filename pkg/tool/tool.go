// Package tool implements the commands that work on graph documents.
package tool

import (
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"src.shadegraph.dev/pkg/eval"
	"src.shadegraph.dev/pkg/graph"
	"src.shadegraph.dev/pkg/graphdoc"
	"src.shadegraph.dev/pkg/logutil"
	"src.shadegraph.dev/pkg/nodes"
	"src.shadegraph.dev/pkg/prog"
)

var logger = logutil.GetLogger("tool")

// Program is the subprogram of the document commands.
type Program struct{}

func (Program) Commands(fds [3]*os.File, f *prog.Flags) []*cobra.Command {
	e := &env{fds: fds, f: f}
	return []*cobra.Command{
		e.evalCommand(),
		e.compileCommand(),
		e.checkCommand(),
		e.fmtCommand(),
		e.catalogCommand(),
		e.treeCommand(),
		e.watchCommand(),
		e.storeCommand(),
	}
}

// env is shared by the commands of one run.
type env struct {
	fds [3]*os.File
	f   *prog.Flags
	reg *graph.Registry
}

func (e *env) registry() (*graph.Registry, error) {
	if e.reg == nil {
		reg, err := nodes.NewRegistry()
		if err != nil {
			return nil, err
		}
		e.reg = reg
	}
	return e.reg, nil
}

// load parses and builds a document, applying overrides.
func (e *env) load(path string, overrides map[string]map[string]any) (*graphdoc.Doc, *graph.Graph, map[string]graph.NodeID, error) {
	reg, err := e.registry()
	if err != nil {
		return nil, nil, nil, err
	}
	src, err := readFile(e.f, path)
	if err != nil {
		return nil, nil, nil, err
	}
	return build(path, src, reg, overrides)
}

func build(name, src string, reg *graph.Registry, overrides map[string]map[string]any) (*graphdoc.Doc, *graph.Graph, map[string]graph.NodeID, error) {
	d, err := graphdoc.Parse(name, src, reg)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(overrides) > 0 {
		if d, err = d.WithOverrides(overrides); err != nil {
			return nil, nil, nil, err
		}
	}
	g, ids, err := d.Build()
	if err != nil {
		return nil, nil, nil, err
	}
	return d, g, ids, nil
}

func readFile(f *prog.Flags, path string) (string, error) {
	if path == "-" {
		return "", prog.BadUsage("reading documents from stdin is not supported")
	}
	data, err := afero.ReadFile(f.FS, path)
	return string(data), err
}

func (e *env) evaluator() *eval.Evaluator {
	ev := eval.New()
	ev.MaxDepth = e.f.Config.Eval.MaxDepth
	return ev
}
