// Package registry owns the store of live documents and implements the
// incremental expansion engine over them: dependency-ordered
// recompilation, lexical scope resolution, class inheritance by
// structural copy, and cross-file pointer resolution.
//
// A Registry is an explicit owned store. It is not safe for concurrent
// use: RegisterDocument/ParseLiveFile and ExpandAll mutate the same
// document and graph storage and must not overlap.
package registry

import (
	"errors"
	"fmt"

	"github.com/peter-lyons-kehl/live-format/go-live/ir"
)

var ErrBadPtr = errors.New("dangling node pointer")

// Parser turns live source text into a raw document. Lexing and parsing
// are collaborator concerns; the engine consumes already-built trees.
type Parser interface {
	Parse(file ir.FileID, source string, in *ir.Interner) (*ir.Document, error)
}

// LiveFile is one registered file: its raw document and the source text
// diagnostics resolve spans against.
type LiveFile struct {
	CrateModule ir.CrateModule
	File        string
	Source      string
	Document    *ir.Document
}

type depEntry struct {
	cm    ir.CrateModule
	token ir.TokenID
}

type Registry struct {
	interner *ir.Interner
	parser   Parser

	fileIDs           map[string]ir.FileID
	crateModuleToFile map[ir.CrateModule]ir.FileID
	liveFiles         []*LiveFile

	depOrder []depEntry
	depGraph map[ir.CrateModule]map[ir.CrateModule]struct{}

	expanded []*ir.Document
}

type Option func(*Registry)

// WithParser installs the parser ParseLiveFile delegates to.
func WithParser(p Parser) Option {
	return func(r *Registry) { r.parser = p }
}

func New(opts ...Option) *Registry {
	r := &Registry{
		interner:          ir.NewInterner(),
		fileIDs:           make(map[string]ir.FileID),
		crateModuleToFile: make(map[ir.CrateModule]ir.FileID),
		depGraph:          make(map[ir.CrateModule]map[ir.CrateModule]struct{}),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Registry) Interner() *ir.Interner {
	return r.interner
}

// Intern is a convenience for callers naming crates, modules and paths.
func (r *Registry) Intern(s string) ir.Id {
	return r.interner.Intern(s)
}

// ParseLiveFile registers a live file from source text by delegating to
// the configured Parser. A parse failure aborts this file's registration
// only; previously registered files are unaffected.
func (r *Registry) ParseLiveFile(file string, crateID, moduleID ir.Id, source string) (ir.FileID, error) {
	if r.parser == nil {
		return ir.NoFile, fmt.Errorf("no parser configured")
	}
	fileID := r.peekFileID(file)
	doc, err := r.parser.Parse(fileID, source, r.interner)
	if err != nil {
		var lerr *Error
		if errors.As(err, &lerr) {
			return ir.NoFile, fileError(lerr, file, source)
		}
		return ir.NoFile, fmt.Errorf("%s: %w", file, err)
	}
	return r.RegisterDocument(file, crateID, moduleID, source, doc)
}

// peekFileID returns the identity file would get when registered.
func (r *Registry) peekFileID(file string) ir.FileID {
	if id, ok := r.fileIDs[file]; ok {
		return id
	}
	return ir.FileID(len(r.liveFiles))
}

// NextFileID reports the identity a file name would be assigned by the
// next registration, so callers decoding documents can stamp token
// references before registering.
func (r *Registry) NextFileID(file string) ir.FileID {
	return r.peekFileID(file)
}

// RegisterDocument stores a raw document under a crate-module key. On
// re-registration the previous raw document is replaced wholesale, the
// expanded document is marked dirty and the dirtiness propagates to
// every dependent crate-module. The module's dependency set and its
// place in the processing order are recomputed from the document's use
// declarations.
func (r *Registry) RegisterDocument(file string, crateID, moduleID ir.Id, source string, doc *ir.Document) (ir.FileID, error) {
	fileID, ok := r.fileIDs[file]
	isNew := !ok
	if isNew {
		fileID = ir.FileID(len(r.liveFiles))
	}

	cm := ir.CrateModule{Crate: crateID, Module: moduleID}
	r.updateDeps(cm, crateID, doc)

	lf := &LiveFile{CrateModule: cm, File: file, Source: source, Document: doc}
	r.crateModuleToFile[cm] = fileID

	if isNew {
		r.fileIDs[file] = fileID
		r.liveFiles = append(r.liveFiles, lf)
		r.expanded = append(r.expanded, ir.NewDocument())
		return fileID, nil
	}
	r.liveFiles[fileID] = lf
	r.expanded[fileID].Recompile = true
	return fileID, nil
}

// ResolvePtr dereferences a fully resolved pointer produced by
// expansion, re-validated through the store since documents can be
// wholesale rebuilt.
func (r *Registry) ResolvePtr(ptr ir.FullPtr) (*ir.Document, *ir.Node, error) {
	if !ptr.File.Valid() || int(ptr.File) >= len(r.expanded) {
		return nil, nil, fmt.Errorf("%w: file %d", ErrBadPtr, ptr.File)
	}
	doc := r.expanded[ptr.File]
	if !doc.ValidPtr(ptr.Local) {
		return nil, nil, fmt.Errorf("%w: %d/%d in file %d", ErrBadPtr, ptr.Local.Level, ptr.Local.Index, ptr.File)
	}
	return doc, doc.NodeAt(ptr.Local), nil
}

// Expanded returns the expanded document for a registered file.
func (r *Registry) Expanded(file ir.FileID) *ir.Document {
	if !file.Valid() || int(file) >= len(r.expanded) {
		return nil
	}
	return r.expanded[file]
}

// RawFile returns the registered file record.
func (r *Registry) RawFile(file ir.FileID) *LiveFile {
	if !file.Valid() || int(file) >= len(r.liveFiles) {
		return nil
	}
	return r.liveFiles[file]
}

// FileIDByCrateModule looks up the file identity of a crate-module key.
func (r *Registry) FileIDByCrateModule(cm ir.CrateModule) (ir.FileID, bool) {
	id, ok := r.crateModuleToFile[cm]
	return id, ok
}

// FindCrateModuleByFile is the reverse lookup of a file identity's
// crate-module key.
func (r *Registry) FindCrateModuleByFile(file ir.FileID) (ir.CrateModule, bool) {
	for cm, id := range r.crateModuleToFile {
		if id == file {
			return cm, true
		}
	}
	return ir.CrateModule{}, false
}

// DirtyFiles lists the files whose expanded documents are stale.
func (r *Registry) DirtyFiles() []ir.FileID {
	var dirty []ir.FileID
	for i, doc := range r.expanded {
		if doc.Recompile {
			dirty = append(dirty, ir.FileID(i))
		}
	}
	return dirty
}

// TokenSpan resolves a token reference against its raw document.
func (r *Registry) TokenSpan(t ir.TokenID) ir.Span {
	if !t.File.Valid() || int(t.File) >= len(r.liveFiles) {
		return ir.Span{File: t.File}
	}
	return r.liveFiles[t.File].Document.TokenSpan(t)
}

// FileError converts a span-bearing expansion error into a renderable
// file + line/column + snippet diagnostic. Kept separate from ExpandAll
// so bulk expansion never pays rendering costs up front.
func (r *Registry) FileError(e *Error) *FileError {
	if !e.Span.File.Valid() || int(e.Span.File) >= len(r.liveFiles) {
		return &FileError{File: "?", Message: e.Message}
	}
	lf := r.liveFiles[e.Span.File]
	return fileError(e, lf.File, lf.Source)
}

// FindFullPtr resolves a path of ids in a crate-module's expanded
// document to a class node pointer.
func (r *Registry) FindFullPtr(crateID, moduleID ir.Id, ids []ir.Id) (ir.FullPtr, bool) {
	cm := ir.CrateModule{Crate: crateID, Module: moduleID}
	fileID, ok := r.crateModuleToFile[cm]
	if !ok {
		return ir.FullPtr{}, false
	}
	exp := r.expanded[fileID]
	local, ok := exp.ScanForMulti(ids)
	if !ok {
		return ir.FullPtr{}, false
	}
	if exp.NodeAt(local).Value.Kind != ir.ValueClass {
		return ir.FullPtr{}, false
	}
	return ir.FullPtr{File: fileID, Local: local}, true
}

// FindBaseClassID follows a class pointer chain to the root IdPack the
// chain bottoms out on (a built-in root kind, or Self).
func (r *Registry) FindBaseClassID(class ir.IdPack) (ir.IdPack, bool) {
	iter := class
	for iter.Kind == ir.IdPackPtr {
		_, node, err := r.ResolvePtr(iter.Ptr)
		if err != nil || node.Value.Kind != ir.ValueClass {
			return ir.IdPack{}, false
		}
		iter = node.Value.Target
	}
	return iter, true
}

// FindEnumOrigin follows reference, class and call chains from start to
// the originally declared identifier; lhs is returned when the chain
// does not lead anywhere further.
func (r *Registry) FindEnumOrigin(start, lhs ir.IdPack) ir.IdPack {
	if start.Kind != ir.IdPackPtr {
		return lhs
	}
	_, node, err := r.ResolvePtr(start.Ptr)
	if err != nil {
		return lhs
	}
	switch node.Value.Kind {
	case ir.ValueIdRef:
		return r.FindEnumOrigin(node.Value.Target, node.Id)
	case ir.ValueClass:
		return r.FindEnumOrigin(node.Value.Target, node.Id)
	case ir.ValueCall:
		return r.FindEnumOrigin(node.Value.Target, node.Id)
	}
	return lhs
}

// FindComponentOrigin walks a resolved class's base-class chain to its
// ultimate non-aliased ancestor, which must bottom out on the Component
// root kind. It returns the crate-module that declared the ancestor, the
// ancestor's identifier and a pointer to the queried node, for factory
// and registration lookups by consuming layers.
func (r *Registry) FindComponentOrigin(crateID, moduleID ir.Id, ids []ir.Id) (ir.CrateModule, ir.Id, ir.FullPtr, bool) {
	cm := ir.CrateModule{Crate: crateID, Module: moduleID}
	fileID, ok := r.crateModuleToFile[cm]
	if !ok {
		return ir.CrateModule{}, ir.IdEmpty, ir.FullPtr{}, false
	}
	exp := r.expanded[fileID]
	local, ok := exp.ScanForMulti(ids)
	if !ok {
		return ir.CrateModule{}, ir.IdEmpty, ir.FullPtr{}, false
	}
	node := exp.NodeAt(local)
	if node.Value.Kind != ir.ValueClass {
		return ir.CrateModule{}, ir.IdEmpty, ir.FullPtr{}, false
	}
	classIter := node.Value.Target
	tokenIter := node.Token
	for classIter.Kind == ir.IdPackPtr {
		_, other, err := r.ResolvePtr(classIter.Ptr)
		if err != nil || other.Value.Kind != ir.ValueClass {
			return ir.CrateModule{}, ir.IdEmpty, ir.FullPtr{}, false
		}
		classIter = other.Value.Target
		tokenIter = other.Token
	}
	if !classIter.IsSingle(ir.IdComponent) {
		return ir.CrateModule{}, ir.IdEmpty, ir.FullPtr{}, false
	}
	originFile := r.liveFiles[tokenIter.File]
	originID := ir.IdEmpty
	if doc := originFile.Document; int(tokenIter.Index) < len(doc.Tokens) {
		if tok := doc.Tokens[tokenIter.Index]; tok.Kind == ir.TokenIdent {
			originID = tok.Ident
		}
	}
	if originID == ir.IdEmpty {
		return ir.CrateModule{}, ir.IdEmpty, ir.FullPtr{}, false
	}
	return originFile.CrateModule, originID, ir.FullPtr{File: fileID, Local: local}, true
}
