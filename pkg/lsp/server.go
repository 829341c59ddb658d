package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/lithammer/fuzzysearch/fuzzy"
	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"src.shadegraph.dev/pkg/diag"
	"src.shadegraph.dev/pkg/graph"
	"src.shadegraph.dev/pkg/graphdoc"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

type server struct {
	reg *graph.Registry

	mu      sync.Mutex
	content map[lsp.DocumentURI]string
}

func newServer(reg *graph.Registry) *server {
	return &server{reg: reg, content: make(map[lsp.DocumentURI]string)}
}

func handler(s *server) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"initialize":              s.initialize,
		"textDocument/didOpen":    s.didOpen,
		"textDocument/didChange":  s.didChange,
		"textDocument/didClose":   s.didClose,
		"textDocument/hover":      s.hover,
		"textDocument/completion": s.completion,

		// Required by the protocol.
		"initialized": noop,
		"shutdown":    noop,
		"exit":        noop,
		// Called by clients even when server doesn't advertise support:
		// https://microsoft.github.io/language-server-protocol/specification#workspace_didChangeWatchedFiles
		"workspace/didChangeWatchedFiles": noop,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func noop(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, nil
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

// Handler implementations. These are all called synchronously.

func (s *server) initialize(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			HoverProvider:      true,
			CompletionProvider: &lsp.CompletionOptions{TriggerCharacters: []string{":"}},
		},
	}, nil
}

func (s *server) didOpen(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	uri, content := params.TextDocument.URI, params.TextDocument.Text
	s.setContent(uri, content)
	go s.publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didChange(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil || len(params.ContentChanges) == 0 {
		return nil, errInvalidParams
	}

	// ContentChanges includes full text since the server is only advertised to
	// support that; see the initialize method.
	uri, content := params.TextDocument.URI, params.ContentChanges[0].Text
	s.setContent(uri, content)
	go s.publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didClose(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidCloseTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	s.mu.Lock()
	delete(s.content, params.TextDocument.URI)
	s.mu.Unlock()
	return nil, nil
}

func (s *server) setContent(uri lsp.DocumentURI, content string) {
	s.mu.Lock()
	s.content[uri] = content
	s.mu.Unlock()
}

func (s *server) getContent(uri lsp.DocumentURI) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content[uri]
}

// Matches a kind or kind_id field, capturing the key and the value.
var kindField = regexp.MustCompile(`^(\s*(?:-\s+)?(kind|kind_id):\s*)(.*?)\s*$`)

func (s *server) hover(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.TextDocumentPositionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	content := s.getContent(params.TextDocument.URI)
	line := lineAt(content, params.Position.Line)
	m := kindField.FindStringSubmatch(line)
	if m == nil {
		return lsp.Hover{}, nil
	}
	value := strings.Trim(m[3], `"'`)
	var def *graph.Definition
	if m[2] == "kind_id" {
		if id, err := uuid.Parse(value); err == nil {
			def, _ = s.reg.Lookup(id)
		}
	} else {
		def, _ = s.reg.LookupName(value)
	}
	if def == nil {
		return lsp.Hover{}, nil
	}
	start := lsp.Position{Line: params.Position.Line, Character: utf16Len(m[1])}
	end := lsp.Position{Line: params.Position.Line, Character: start.Character + utf16Len(m[3])}
	return lsp.Hover{
		Contents: []lsp.MarkedString{{Language: "markdown", Value: describe(def)}},
		Range:    &lsp.Range{Start: start, End: end},
	}, nil
}

// describe returns a Markdown description of a node kind.
func describe(def *graph.Definition) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**", def.Name)
	if len(def.Categories) > 0 {
		fmt.Fprintf(&sb, " (%s)", strings.Join(def.Categories, ", "))
	}
	sb.WriteString("\n\n")
	if def.Description != "" {
		sb.WriteString(def.Description + "\n\n")
	}
	section := func(title string, ports []graph.PortDecl) {
		if len(ports) == 0 {
			return
		}
		fmt.Fprintf(&sb, "%s:\n", title)
		for _, p := range ports {
			fmt.Fprintf(&sb, "- `%s`: %s\n", p.Name, p.Type)
		}
		sb.WriteString("\n")
	}
	section("Inputs", def.Inputs)
	section("Outputs", def.Outputs)
	if len(def.Params) > 0 {
		sb.WriteString("Parameters:\n")
		for _, p := range def.Params {
			if p.Kind == graph.SelectParam {
				fmt.Fprintf(&sb, "- `%s`: one of %s\n", p.Name, strings.Join(p.Options, ", "))
			} else {
				fmt.Fprintf(&sb, "- `%s`: %s\n", p.Name, p.Type)
			}
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "kind_id: `%s`", def.ID)
	return sb.String()
}

func (s *server) completion(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.CompletionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	content := s.getContent(params.TextDocument.URI)
	line := lineAt(content, params.Position.Line)
	// The part of the line before the cursor.
	head := line[:lspCharToIdx(line, params.Position.Character)]
	m := kindField.FindStringSubmatch(head)
	if m == nil || m[2] != "kind" {
		return []lsp.CompletionItem{}, nil
	}
	prefix := m[3]
	replace := lsp.Range{
		Start: lsp.Position{Line: params.Position.Line, Character: utf16Len(m[1])},
		End:   params.Position,
	}
	var items []lsp.CompletionItem
	for _, def := range s.rankKinds(prefix) {
		items = append(items, lsp.CompletionItem{
			Label:    def.Name,
			Kind:     lsp.CIKClass,
			Detail:   def.Description,
			TextEdit: &lsp.TextEdit{Range: replace, NewText: def.Name},
		})
	}
	if items == nil {
		items = []lsp.CompletionItem{}
	}
	return items, nil
}

// rankKinds returns the kinds matching prefix, best matches first. An empty
// prefix matches every kind, sorted by name.
func (s *server) rankKinds(prefix string) []*graph.Definition {
	defs := s.reg.Definitions()
	if prefix == "" {
		return defs
	}
	byName := make(map[string]*graph.Definition, len(defs))
	names := make([]string, len(defs))
	for i, def := range defs {
		byName[def.Name] = def
		names[i] = def.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(prefix, names)
	sort.Stable(ranks)
	out := make([]*graph.Definition, len(ranks))
	for i, r := range ranks {
		out[i] = byName[r.Target]
	}
	return out
}

func (s *server) publishDiagnostics(ctx context.Context, conn jsonrpc2.JSONRPC2, uri lsp.DocumentURI, content string) {
	err := conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: uri, Diagnostics: s.diagnostics(uri, content)})
	if err != nil {
		logger.Printf("[WARN] cannot publish diagnostics for %s: %v", uri, err)
	}
}

func (s *server) diagnostics(uri lsp.DocumentURI, content string) []lsp.Diagnostic {
	err := graphdoc.Check(string(uri), content, s.reg)
	if err == nil {
		return []lsp.Diagnostic{}
	}
	var errs []error
	var merr *multierror.Error
	if errors.As(err, &merr) {
		errs = merr.Errors
	} else {
		errs = []error{err}
	}
	diags := make([]lsp.Diagnostic, len(errs))
	for i, err := range errs {
		d := lsp.Diagnostic{Severity: lsp.Error, Source: "shadegraph", Message: err.Error()}
		var derr *diag.Error
		if errors.As(err, &derr) {
			d.Message = derr.Message
			d.Code = derr.Type
			if derr.Context.From >= 0 {
				d.Range = lspRangeFromRange(content, derr)
			}
		}
		diags[i] = d
	}
	return diags
}

func lineAt(s string, line int) string {
	lines := strings.Split(s, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	return strings.TrimSuffix(lines[line], "\r")
}

// lspCharToIdx converts a UTF-16 offset in a line to a byte index.
func lspCharToIdx(line string, char int) int {
	n := 0
	for i, r := range line {
		if n >= char {
			return i
		}
		if r <= 0xFFFF {
			n++
		} else {
			n += 2
		}
	}
	return len(line)
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r <= 0xFFFF {
			n++
		} else {
			n += 2
		}
	}
	return n
}

func lspRangeFromRange(s string, r diag.Ranger) lsp.Range {
	rg := r.Range()
	return lsp.Range{
		Start: lspPositionFromIdx(s, rg.From),
		End:   lspPositionFromIdx(s, rg.To),
	}
}

func lspPositionFromIdx(s string, idx int) lsp.Position {
	var pos lsp.Position
	walkString(s, func(i int, p lsp.Position) bool {
		pos = p
		return i < idx
	})
	return pos
}

// Generates (index, lspPosition) pairs in s, stopping if f returns false.
func walkString(s string, f func(i int, p lsp.Position) bool) {
	var p lsp.Position
	lastCR := false

	for i, r := range s {
		if !f(i, p) {
			return
		}
		switch {
		case r == '\r':
			p.Line++
			p.Character = 0
		case r == '\n':
			if lastCR {
				// Ignore \n if it's part of a \r\n sequence
			} else {
				p.Line++
				p.Character = 0
			}
		case r <= 0xFFFF:
			// Encoded in UTF-16 with one unit
			p.Character++
		default:
			// Encoded in UTF-16 with two units
			p.Character += 2
		}
		lastCR = r == '\r'
	}
	f(len(s), p)
}
