package main

import (
	"context"
	"sync"

	"go.lsp.dev/protocol"

	"github.com/peter-lyons-kehl/live-format/go-live/bundle"
	"github.com/peter-lyons-kehl/live-format/go-live/ir"
	"github.com/peter-lyons-kehl/live-format/go-live/registry"
)

type documentStore struct {
	mu    sync.Mutex
	reg   *registry.Registry
	files map[string]ir.FileID // uri -> registered file
	uris  map[ir.FileID]string
	bad   map[string]error // uri -> bundle decode error
}

func newDocumentStore() *documentStore {
	return &documentStore{
		reg:   registry.New(),
		files: make(map[string]ir.FileID),
		uris:  make(map[ir.FileID]string),
		bad:   make(map[string]error),
	}
}

// put decodes a bundle and registers its document. A decode failure is
// remembered so it can be reported as a diagnostic; the previously
// registered version of the document, if any, stays in place.
func (ds *documentStore) put(uri string, content string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	b, err := bundle.Decode([]byte(content))
	if err != nil {
		ds.bad[uri] = err
		return
	}
	file, err := b.Register(ds.reg)
	if err != nil {
		ds.bad[uri] = err
		return
	}
	delete(ds.bad, uri)
	ds.files[uri] = file
	ds.uris[file] = uri
}

func (ds *documentStore) remove(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.bad, uri)
	// the registry keeps the document; dependents may still refer to it
	if file, ok := ds.files[uri]; ok {
		delete(ds.uris, file)
		delete(ds.files, uri)
	}
}

func (s *Server) publishDiagnostics(ctx context.Context) {
	ds := s.docs
	ds.mu.Lock()
	defer ds.mu.Unlock()

	byURI := make(map[string][]protocol.Diagnostic, len(ds.files))
	for uri := range ds.files {
		byURI[uri] = []protocol.Diagnostic{}
	}
	for uri, err := range ds.bad {
		byURI[uri] = append(byURI[uri], protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 0},
				End:   protocol.Position{Line: 0, Character: 0},
			},
			Severity: protocol.DiagnosticSeverityError,
			Message:  err.Error(),
			Source:   lsName,
		})
	}

	for _, e := range ds.reg.ExpandAll() {
		uri, ok := ds.uris[e.Span.File]
		if !ok {
			continue
		}
		fe := ds.reg.FileError(e)
		end := fe.Col + fe.Len
		if fe.Len == 0 {
			end = fe.Col + 1
		}
		byURI[uri] = append(byURI[uri], protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{
					Line:      uint32(fe.Line),
					Character: uint32(fe.Col),
				},
				End: protocol.Position{
					Line:      uint32(fe.Line),
					Character: uint32(end),
				},
			},
			Severity: protocol.DiagnosticSeverityError,
			Message:  fe.Message,
			Source:   lsName,
		})
	}

	if s.conn == nil {
		return
	}
	for uri, diagnostics := range byURI {
		s.conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
			URI:         protocol.DocumentURI(uri),
			Diagnostics: diagnostics,
		})
	}
}

func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.docs.put(string(params.TextDocument.URI), params.TextDocument.Text)
	s.publishDiagnostics(ctx)
	return nil
}

func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	// sync is full, so the last change carries the whole document
	if len(params.ContentChanges) == 0 {
		return nil
	}
	content := params.ContentChanges[len(params.ContentChanges)-1].Text
	s.docs.put(string(params.TextDocument.URI), content)
	s.publishDiagnostics(ctx)
	return nil
}

func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.docs.remove(string(params.TextDocument.URI))
	return nil
}
