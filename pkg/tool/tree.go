package tool

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"src.shadegraph.dev/pkg/graph"
	"src.shadegraph.dev/pkg/vals"
)

func (e *env) treeCommand() *cobra.Command {
	var params bool
	cmd := &cobra.Command{
		Use:   "tree FILE",
		Short: "Print the dependency tree of the output node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, g, ids, err := e.load(args[0], nil)
			if err != nil {
				return err
			}
			t, err := graphTree(g, ids, params)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprint(e.fds[1], t.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&params, "params", false, "also show parameters")
	return cmd
}

// graphTree returns the inputs of the output node of g as a tree, following
// connections. Nodes reached from more than one input appear once for each;
// a node reached from itself is marked and not followed again.
func graphTree(g *graph.Graph, ids map[string]graph.NodeID, params bool) (treeprint.Tree, error) {
	out, ok := g.Output()
	if !ok {
		return nil, graph.ErrMissingOutput
	}
	names := make(map[graph.NodeID]string, len(ids))
	for name, id := range ids {
		names[id] = name
	}
	tb := treeBuilder{g, names, params, map[graph.NodeID]bool{}}
	n, err := g.Get(out)
	if err != nil {
		return nil, err
	}
	root := treeprint.NewWithRoot(fmt.Sprintf("%s (%s)", tb.name(out), n.Def().Name))
	return root, tb.add(root, out)
}

type treeBuilder struct {
	g      *graph.Graph
	names  map[graph.NodeID]string
	params bool
	onPath map[graph.NodeID]bool
}

func (tb treeBuilder) name(id graph.NodeID) string {
	if name, ok := tb.names[id]; ok {
		return name
	}
	return id.String()
}

func (tb treeBuilder) add(t treeprint.Tree, id graph.NodeID) error {
	n, err := tb.g.Get(id)
	if err != nil {
		return err
	}
	tb.onPath[id] = true
	defer delete(tb.onPath, id)
	for _, st := range n.States() {
		if st.Kind == graph.ParamPort {
			if tb.params {
				t.AddNode(fmt.Sprintf("%s: %s", st.Name, st.Param))
			}
			continue
		}
		switch st.Input.State {
		case graph.StateLiteral:
			t.AddNode(fmt.Sprintf("%s = %s", st.Name, vals.Repr(st.Input.Value)))
		case graph.StateConnected:
			src := st.Input.Source
			sn, err := tb.g.Get(src.Node)
			if err != nil {
				return err
			}
			label := fmt.Sprintf("%s <- %s.%s (%s)", st.Name, tb.name(src.Node),
				outputName(sn.Def(), int(src.Index)), sn.Def().Name)
			if tb.onPath[src.Node] {
				t.AddNode(label + " [cycle]")
				continue
			}
			if err := tb.add(t.AddBranch(label), src.Node); err != nil {
				return err
			}
		default:
			t.AddNode(st.Name + " (disconnected)")
		}
	}
	return nil
}

func outputName(def *graph.Definition, i int) string {
	if i < len(def.Outputs) {
		return def.Outputs[i].Name
	}
	return fmt.Sprint(i)
}
