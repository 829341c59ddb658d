// Package lsp implements a language server for graph documents.
package lsp

import (
	"context"
	"os"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/spf13/cobra"

	"src.shadegraph.dev/pkg/logutil"
	"src.shadegraph.dev/pkg/nodes"
	"src.shadegraph.dev/pkg/prog"
)

var logger = logutil.GetLogger("lsp")

// Program is the LSP subprogram.
type Program struct{}

func (Program) Commands(fds [3]*os.File, _ *prog.Flags) []*cobra.Command {
	return []*cobra.Command{{
		Use:   "lsp",
		Short: "Run the language server for graph documents on stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			reg, err := nodes.NewRegistry()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			s := newServer(reg)
			conn := jsonrpc2.NewConn(ctx,
				jsonrpc2.NewBufferedStream(transport{fds[0], fds[1]}, jsonrpc2.VSCodeObjectCodec{}),
				handler(s))
			logger.Println("[INFO] language server started")
			<-conn.DisconnectNotify()
			logger.Println("[INFO] language server stopped")
			return nil
		},
	}}
}

type transport struct{ in, out *os.File }

func (c transport) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c transport) Write(p []byte) (int, error) { return c.out.Write(p) }

func (c transport) Close() error {
	if err := c.in.Close(); err != nil {
		c.out.Close()
		return err
	}
	return c.out.Close()
}
