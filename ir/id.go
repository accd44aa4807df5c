package ir

// Id is an interned symbol. Ids are only meaningful relative to the
// Interner that produced them; the registry owns one Interner shared by
// every document it stores.
type Id uint32

// Well-known ids, pre-interned by NewInterner in this order.
const (
	IdEmpty Id = iota // "", the wildcard segment in use paths
	IdSelf
	IdCrate
	IdComponent
	IdEnum
	IdStruct
	IdShader
	IdVariant

	firstUserId
)

var wellKnown = []string{"", "Self", "crate", "Component", "Enum", "Struct", "Shader", "Variant"}

// Interner maps symbol strings to dense Ids and back.
type Interner struct {
	ids   map[string]Id
	names []string
}

func NewInterner() *Interner {
	in := &Interner{
		ids:   make(map[string]Id, len(wellKnown)),
		names: make([]string, 0, len(wellKnown)),
	}
	for _, s := range wellKnown {
		in.Intern(s)
	}
	return in
}

func (in *Interner) Intern(s string) Id {
	if id, ok := in.ids[s]; ok {
		return id
	}
	id := Id(len(in.names))
	in.ids[s] = id
	in.names = append(in.names, s)
	return id
}

// Lookup returns the id for s without interning it.
func (in *Interner) Lookup(s string) (Id, bool) {
	id, ok := in.ids[s]
	return id, ok
}

func (in *Interner) Name(id Id) string {
	if int(id) >= len(in.names) {
		return "?"
	}
	return in.names[id]
}

func (in *Interner) Len() int {
	return len(in.names)
}

// IsBaseType reports whether pack is one of the built-in root kinds.
// These can never be resolved as scope lookup targets.
func IsBaseType(pack IdPack) bool {
	if pack.Kind != IdPackSingle {
		return false
	}
	switch pack.Single {
	case IdComponent, IdEnum, IdStruct, IdShader, IdVariant:
		return true
	}
	return false
}
