package lsp

import (
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"src.shadegraph.dev/pkg/must"
	"src.shadegraph.dev/pkg/nodes"
	"src.shadegraph.dev/pkg/testutil"
)

var reg = must.OK1(nodes.NewRegistry())

const uri = lsp.DocumentURI("file:///doc.yaml")

var doc = testutil.Dedent(`
	format: "1.0"
	output: b
	nodes:
	  - id: a
	    kind: Scalar Math
	  - id: b
	    kind: Sca
	`)

func raw(v any) json.RawMessage { return must.OK1(json.Marshal(v)) }

func TestDiagnostics(t *testing.T) {
	s := newServer(reg)
	if got := s.diagnostics(uri, "format: \"1.0\"\nnodes: []\n"); len(got) != 0 {
		t.Errorf("valid document has diagnostics %v", got)
	}

	src := "format: \"1.0\"\noutput: nope\nnodes: []\n"
	got := s.diagnostics(uri, src)
	want := []lsp.Diagnostic{{
		Range: lsp.Range{
			Start: lsp.Position{Line: 1, Character: 8},
			End:   lsp.Position{Line: 1, Character: 12}},
		Severity: lsp.Error,
		Code:     "graph error",
		Source:   "shadegraph",
		Message:  `output refers to unknown node "nope"`,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("diagnostics (-want +got):\n%s", diff)
	}

	got = s.diagnostics(uri, doc)
	if len(got) != 1 || got[0].Range.Start.Line != 6 || !strings.Contains(got[0].Message, "Missing Node definition") {
		t.Errorf("unknown kind diagnostics %v", got)
	}
}

func TestHover(t *testing.T) {
	s := newServer(reg)
	s.setContent(uri, doc)
	hover := func(line, char int) lsp.Hover {
		t.Helper()
		res, err := s.hover(context.Background(), nil, raw(lsp.TextDocumentPositionParams{
			TextDocument: lsp.TextDocumentIdentifier{URI: uri},
			Position:     lsp.Position{Line: line, Character: char},
		}))
		if err != nil {
			t.Fatal(err)
		}
		return res.(lsp.Hover)
	}

	h := hover(4, 12)
	if len(h.Contents) != 1 {
		t.Fatalf("no hover on a kind: %v", h)
	}
	text := h.Contents[0].Value
	id := must.OK1(reg.LookupName("Scalar Math")).ID.String()
	for _, want := range []string{"**Scalar Math** (Math)", "Add two scalars.", "- `A`: F32", "- `Out`: F32", id} {
		if !strings.Contains(text, want) {
			t.Errorf("hover text %q lacks %q", text, want)
		}
	}
	wantRange := lsp.Range{Start: lsp.Position{Line: 4, Character: 10}, End: lsp.Position{Line: 4, Character: 21}}
	if h.Range == nil || *h.Range != wantRange {
		t.Errorf("hover range %v, want %v", h.Range, wantRange)
	}

	if h := hover(3, 8); len(h.Contents) != 0 {
		t.Errorf("hover on an id: %v", h)
	}
	if h := hover(6, 10); len(h.Contents) != 0 {
		t.Errorf("hover on an unknown kind: %v", h)
	}
}

func TestCompletion(t *testing.T) {
	s := newServer(reg)
	s.setContent(uri, doc)
	complete := func(line, char int) []lsp.CompletionItem {
		t.Helper()
		res, err := s.completion(context.Background(), nil, raw(lsp.CompletionParams{
			TextDocumentPositionParams: lsp.TextDocumentPositionParams{
				TextDocument: lsp.TextDocumentIdentifier{URI: uri},
				Position:     lsp.Position{Line: line, Character: char},
			},
		}))
		if err != nil {
			t.Fatal(err)
		}
		return res.([]lsp.CompletionItem)
	}

	items := complete(6, 13)
	if len(items) == 0 || items[0].Label != "Scalar Math" {
		t.Fatalf("completions of Sca: %v", items)
	}
	wantEdit := &lsp.TextEdit{
		Range:   lsp.Range{Start: lsp.Position{Line: 6, Character: 10}, End: lsp.Position{Line: 6, Character: 13}},
		NewText: "Scalar Math",
	}
	if diff := cmp.Diff(wantEdit, items[0].TextEdit); diff != "" {
		t.Errorf("text edit (-want +got):\n%s", diff)
	}
	for _, item := range items {
		if !strings.Contains(strings.ToLower(item.Label), "s") {
			t.Errorf("completion %q does not match", item.Label)
		}
	}

	if got, all := len(complete(6, 10)), len(reg.Definitions()); got != all {
		t.Errorf("empty prefix offers %d kinds, want %d", got, all)
	}
	if items := complete(3, 9); len(items) != 0 {
		t.Errorf("completions outside a kind field: %v", items)
	}
}

func TestServer_JSONRPC(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serverSide, clientSide := net.Pipe()

	s := newServer(reg)
	jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(serverSide, jsonrpc2.VSCodeObjectCodec{}), handler(s))

	published := make(chan lsp.PublishDiagnosticsParams, 1)
	client := jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(func(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
			if req.Method == "textDocument/publishDiagnostics" {
				var p lsp.PublishDiagnosticsParams
				must.OK(json.Unmarshal(*req.Params, &p))
				published <- p
			}
			return nil, nil
		}))
	defer client.Close()

	var init lsp.InitializeResult
	if err := client.Call(ctx, "initialize", lsp.InitializeParams{}, &init); err != nil {
		t.Fatal(err)
	}
	if !init.Capabilities.HoverProvider || init.Capabilities.CompletionProvider == nil {
		t.Errorf("capabilities %+v", init.Capabilities)
	}

	must.OK(client.Notify(ctx, "textDocument/didOpen", lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: uri, Text: doc}}))
	p := <-published
	if p.URI != uri || len(p.Diagnostics) != 1 {
		t.Errorf("published %+v", p)
	}

	err := client.Call(ctx, "textDocument/definition", struct{}{}, nil)
	if err == nil || !strings.Contains(err.Error(), "method not found") {
		t.Errorf("unknown method -> %v", err)
	}
}
