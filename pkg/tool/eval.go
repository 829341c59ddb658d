package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"src.shadegraph.dev/pkg/compile"
	"src.shadegraph.dev/pkg/graph"
	"src.shadegraph.dev/pkg/graphdoc"
	"src.shadegraph.dev/pkg/vals"
)

func (e *env) evalCommand() *cobra.Command {
	var sets []string
	var node string
	cmd := &cobra.Command{
		Use:   "eval FILE...",
		Short: "Evaluate graph documents",
		Long: "Evaluate the output node of each document and print its value.\n" +
			"FILE may be a glob pattern; \"**\" matches any number of directories.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]map[string]any{}
			for _, s := range sets {
				if err := graphdoc.ParseSet(overrides, s); err != nil {
					return err
				}
			}
			return e.batch(cmd.Context(), args, func(_ context.Context, file string) (string, error) {
				_, g, ids, err := e.load(file, overrides)
				if err != nil {
					return "", err
				}
				if node == "" {
					v, err := e.evaluator().Evaluate(g)
					if err != nil {
						return "", fmt.Errorf("%s: %w", file, err)
					}
					return vals.Repr(v) + "\n", nil
				}
				return e.evalNode(g, ids, file, node)
			})
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil,
		"override an input of a node, as `node.Input=value`; may be repeated")
	cmd.Flags().StringVar(&node, "node", "", "evaluate the node with this `id` and print all its outputs")
	return cmd
}

func (e *env) evalNode(g *graph.Graph, ids map[string]graph.NodeID, file, node string) (string, error) {
	id, ok := ids[node]
	if !ok {
		return "", fmt.Errorf("%s: no node %q", file, node)
	}
	n, _ := g.Get(id)
	outs, err := e.evaluator().EvalNode(g, id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", file, err)
	}
	var sb strings.Builder
	for i, v := range outs {
		fmt.Fprintf(&sb, "%s = %s\n", outputName(n.Def(), i), vals.Repr(v))
	}
	return sb.String(), nil
}

func (e *env) compileCommand() *cobra.Command {
	var blocks []string
	var current string
	cmd := &cobra.Command{
		Use:   "compile FILE...",
		Short: "Compile graph documents to shader code",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("blocks") {
				blocks = e.f.Config.Compile.Blocks
			}
			if !cmd.Flags().Changed("current") {
				current = e.f.Config.Compile.Current
			}
			return e.batch(cmd.Context(), args, func(_ context.Context, file string) (string, error) {
				_, g, _, err := e.load(file, nil)
				if err != nil {
					return "", err
				}
				code, err := compile.Program(g, blocks, current)
				if err != nil {
					return "", fmt.Errorf("%s: %w", file, err)
				}
				return code, nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&blocks, "blocks", nil, "blocks to define, in output order")
	cmd.Flags().StringVar(&current, "current", "", "block the output node is compiled into")
	return cmd
}

func (e *env) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Check graph documents for errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := e.registry()
			if err != nil {
				return err
			}
			return e.batch(cmd.Context(), args, func(_ context.Context, file string) (string, error) {
				src, err := readFile(e.f, file)
				if err != nil {
					return "", err
				}
				return "", graphdoc.Check(file, src, reg)
			})
		},
	}
}

func (e *env) fmtCommand() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "fmt FILE...",
		Short: "Rewrite graph documents in canonical form",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := e.registry()
			if err != nil {
				return err
			}
			return e.batch(cmd.Context(), args, func(_ context.Context, file string) (string, error) {
				src, err := readFile(e.f, file)
				if err != nil {
					return "", err
				}
				out, err := graphdoc.Format(file, src, reg)
				if err != nil {
					return "", err
				}
				if !write {
					return string(out), nil
				}
				if string(out) == src {
					return "", nil
				}
				logger.Printf("[INFO] reformatted %s", file)
				return "", writeFile(e.f.FS, file, out)
			})
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to the files")
	return cmd
}

// batch expands args and runs fn over the files with the configured number of
// jobs.
func (e *env) batch(ctx context.Context, args []string, fn func(context.Context, string) (string, error)) error {
	files, err := expand(e.f.FS, args)
	if err != nil {
		return err
	}
	return e.report(runBatch(ctx, files, e.f.Config.Batch.Jobs, fn))
}
