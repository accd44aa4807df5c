package ir

import "strings"

// IdPackKind discriminates the four encodings of an IdPack.
type IdPackKind uint8

const (
	// IdPackEmpty marks an anonymous node (array elements) or a
	// wildcard use import.
	IdPackEmpty IdPackKind = iota
	IdPackSingle
	// IdPackMulti is a path a::b::c stored as a span of the owning
	// document's MultiIds table.
	IdPackMulti
	// IdPackPtr is a fully resolved node pointer. Once expansion
	// resolves a path to a pointer the original path is not retained.
	IdPackPtr
)

type IdPack struct {
	Kind       IdPackKind
	Single     Id
	MultiStart uint32
	MultiCount uint32
	Ptr        FullPtr
}

func SingleId(id Id) IdPack {
	return IdPack{Kind: IdPackSingle, Single: id}
}

func MultiId(start, count int) IdPack {
	return IdPack{Kind: IdPackMulti, MultiStart: uint32(start), MultiCount: uint32(count)}
}

func PtrId(ptr FullPtr) IdPack {
	return IdPack{Kind: IdPackPtr, Ptr: ptr}
}

func (p IdPack) IsEmpty() bool {
	return p.Kind == IdPackEmpty
}

func (p IdPack) IsSingle(id Id) bool {
	return p.Kind == IdPackSingle && p.Single == id
}

// Format renders the pack for diagnostics. multiIds must be the table of
// the document the pack belongs to.
func (p IdPack) Format(in *Interner, multiIds []Id) string {
	switch p.Kind {
	case IdPackEmpty:
		return "*"
	case IdPackSingle:
		return in.Name(p.Single)
	case IdPackMulti:
		segs := make([]string, 0, p.MultiCount)
		for i := uint32(0); i < p.MultiCount; i++ {
			id := multiIds[p.MultiStart+i]
			if id == IdEmpty {
				segs = append(segs, "*")
				continue
			}
			segs = append(segs, in.Name(id))
		}
		return strings.Join(segs, "::")
	case IdPackPtr:
		return "<resolved>"
	}
	return "?"
}
