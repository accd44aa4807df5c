package ir

import (
	"errors"
	"fmt"
)

var ErrBadWrite = errors.New("bad node write")

// ScopeTarget is where a scope binding points: a node in this document
// (File == NoFile) or in another file.
type ScopeTarget struct {
	File  FileID
	Local LocalPtr
}

func LocalTarget(ptr LocalPtr) ScopeTarget {
	return ScopeTarget{File: NoFile, Local: ptr}
}

func FullTarget(ptr FullPtr) ScopeTarget {
	return ScopeTarget{File: ptr.File, Local: ptr.Local}
}

func (t ScopeTarget) IsLocal() bool {
	return t.File == NoFile
}

// ScopeItem is one (id -> target) binding in a document's captured-scope
// table.
type ScopeItem struct {
	Id     Id
	Target ScopeTarget
}

// Document is one file's declarative node tree plus the interning tables
// its nodes span into. Nodes are organised by nesting level: level 0
// holds top-level declarations, level N+1 the children of level-N
// container nodes. Within a level nodes are append-only during
// construction, which keeps every child span contiguous.
type Document struct {
	// Recompile marks an expanded document stale relative to its raw
	// source or a changed dependency.
	Recompile bool

	Nodes    [][]Node
	Strings  []byte
	Tokens   []Token
	Scopes   []ScopeItem
	MultiIds []Id
}

func NewDocument() *Document {
	return &Document{Recompile: true}
}

func (d *Document) EnsureLevel(level int) {
	for len(d.Nodes) <= level {
		d.Nodes = append(d.Nodes, nil)
	}
}

func (d *Document) LevelLen(level int) int {
	if level >= len(d.Nodes) {
		return 0
	}
	return len(d.Nodes[level])
}

// PushNode appends a node at the given level and returns its index.
func (d *Document) PushNode(level int, n Node) int {
	d.EnsureLevel(level)
	d.Nodes[level] = append(d.Nodes[level], n)
	return len(d.Nodes[level]) - 1
}

func (d *Document) NodeAt(ptr LocalPtr) *Node {
	return &d.Nodes[ptr.Level][ptr.Index]
}

func (d *Document) ValidPtr(ptr LocalPtr) bool {
	return ptr.Level >= 0 && ptr.Level < len(d.Nodes) &&
		ptr.Index >= 0 && ptr.Index < len(d.Nodes[ptr.Level])
}

// RestartFrom resets d for a fresh expansion of raw. The node levels and
// scope captures are cleared; the string, token and multi-id tables are
// seeded from the raw document so that same-document spans stay valid
// without relocation.
func (d *Document) RestartFrom(raw *Document) {
	for i := range d.Nodes {
		d.Nodes[i] = d.Nodes[i][:0]
	}
	d.Scopes = d.Scopes[:0]
	d.Strings = append(d.Strings[:0], raw.Strings...)
	d.Tokens = append(d.Tokens[:0], raw.Tokens...)
	d.MultiIds = append(d.MultiIds[:0], raw.MultiIds...)
}

// FetchCrateModule substitutes the reserved "crate" id with the id of
// the crate the referencing document belongs to.
func (d *Document) FetchCrateModule(cm CrateModule, selfCrate Id) CrateModule {
	if cm.Crate == IdCrate {
		cm.Crate = selfCrate
	}
	return cm
}

// TokenSpan resolves a token reference to its source span. An
// out-of-range reference yields a zero span on the same file, which
// renders as an unlocated diagnostic rather than a panic.
func (d *Document) TokenSpan(t TokenID) Span {
	if int(t.Index) < len(d.Tokens) {
		return d.Tokens[t.Index].Span
	}
	return Span{File: t.File}
}

// MultiSegs returns the id segments of a multi pack as a slice of this
// document's MultiIds table.
func (d *Document) MultiSegs(p IdPack) []Id {
	return d.MultiIds[p.MultiStart : p.MultiStart+p.MultiCount]
}

// CloneMultiIds re-expresses a multi pack from another document's table
// in this document's table. Non-multi packs pass through unchanged.
func (d *Document) CloneMultiIds(p IdPack, srcMulti []Id) IdPack {
	if p.Kind != IdPackMulti {
		return p
	}
	start := len(d.MultiIds)
	d.MultiIds = append(d.MultiIds, srcMulti[p.MultiStart:p.MultiStart+p.MultiCount]...)
	return MultiId(start, int(p.MultiCount))
}

func sameSegs(a, b []Id) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// idMatches reports whether an existing node's id names the same thing
// as the incoming node's id. srcMulti is the multi-id table the incoming
// id spans into.
func (d *Document) idMatches(existing IdPack, incoming IdPack, srcMulti []Id) bool {
	switch incoming.Kind {
	case IdPackSingle:
		return existing.IsSingle(incoming.Single)
	case IdPackMulti:
		if existing.Kind != IdPackMulti {
			return false
		}
		in := srcMulti[incoming.MultiStart : incoming.MultiStart+incoming.MultiCount]
		return sameSegs(d.MultiSegs(existing), in)
	}
	return false
}

// WriteOrAdd implements the override-or-append merge policy. The range
// [start, start+count) at level is scanned for an entry whose id matches
// n's id; on a match the entry's value is replaced in place, preserving
// its position, so that later Self-relative scans still find it where
// the base class put it. Otherwise n is appended.
//
// The returned index is valid either way; added tells the caller whether
// the node is a new scope-visible name. Overriding the same id twice is
// allowed, last write wins.
func (d *Document) WriteOrAdd(level, start, count int, srcMulti []Id, n Node) (index int, added bool, err error) {
	if n.Id.Kind == IdPackPtr {
		return 0, false, fmt.Errorf("%w: resolved pointer cannot name a tree position", ErrBadWrite)
	}
	if n.Id.Kind != IdPackEmpty {
		end := start + count
		if l := d.LevelLen(level); end > l {
			end = l
		}
		for i := start; i < end; i++ {
			if d.idMatches(d.Nodes[level][i].Id, n.Id, srcMulti) {
				d.Nodes[level][i] = n
				return i, false, nil
			}
		}
	}
	return d.PushNode(level, n), true, nil
}

// ScanForMulti finds the node a path of ids addresses, starting at the
// top level and descending through class child spans segment by
// segment. A declaration whose own id is the remaining path (a shifted
// multi-segment declaration) also matches.
func (d *Document) ScanForMulti(ids []Id) (LocalPtr, bool) {
	level := 0
	start := 0
	count := d.LevelLen(0)
	for seg := 0; seg < len(ids); seg++ {
		remaining := ids[seg:]
		// multi-segment declarations sit at the shifted level
		if len(remaining) > 1 {
			shifted := level + len(remaining) - 1
			for i := 0; i < d.LevelLen(shifted); i++ {
				n := &d.Nodes[shifted][i]
				if n.Id.Kind == IdPackMulti && sameSegs(d.MultiSegs(n.Id), remaining) {
					return LocalPtr{Level: shifted, Index: i}, true
				}
			}
		}
		found := false
		for i := 0; i < count; i++ {
			n := &d.Nodes[level][start+i]
			if !n.Id.IsSingle(remaining[0]) {
				continue
			}
			if len(remaining) == 1 {
				return LocalPtr{Level: level, Index: start + i}, true
			}
			if !n.Value.IsContainer() {
				return LocalPtr{}, false
			}
			start = int(n.Value.Start)
			count = int(n.Value.Count)
			level++
			found = true
			break
		}
		if !found {
			return LocalPtr{}, false
		}
	}
	return LocalPtr{}, false
}

// ScanForMultiExpand resolves the trailing segments of a path against a
// node span during expansion. segs excludes the already-resolved head.
// The in parameter is only used to name the path in error messages.
func (d *Document) ScanForMultiExpand(level, start, count int, segs []Id, in *Interner) (LocalPtr, error) {
	for si := 0; si < len(segs); si++ {
		remaining := segs[si:]
		if len(remaining) > 1 {
			shifted := level + len(remaining) - 1
			for i := 0; i < d.LevelLen(shifted); i++ {
				n := &d.Nodes[shifted][i]
				if n.Id.Kind == IdPackMulti && sameSegs(d.MultiSegs(n.Id), remaining) {
					return LocalPtr{Level: shifted, Index: i}, nil
				}
			}
		}
		found := false
		for i := 0; i < count; i++ {
			if start+i >= d.LevelLen(level) {
				break
			}
			n := &d.Nodes[level][start+i]
			if !n.Id.IsSingle(remaining[0]) {
				continue
			}
			if len(remaining) == 1 {
				return LocalPtr{Level: level, Index: start + i}, nil
			}
			if n.Value.Kind != ValueClass {
				return LocalPtr{}, fmt.Errorf("path segment %s is not a class", in.Name(remaining[0]))
			}
			start = int(n.Value.Start)
			count = int(n.Value.Count)
			level++
			found = true
			break
		}
		if !found {
			return LocalPtr{}, fmt.Errorf("cannot find path segment %s", in.Name(remaining[0]))
		}
	}
	return LocalPtr{}, fmt.Errorf("empty path")
}
