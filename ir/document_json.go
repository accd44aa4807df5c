package ir

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Raw documents cross process boundaries as JSON: parser front ends emit
// them, the expand CLI and the LSP server consume them. The encoding is
// self-contained: ids are indexes into a per-document symbol list, so a
// decoded document can be re-interned into any registry.

var ErrNotRaw = errors.New("not a raw document")

type jsonIdPack struct {
	Kind  string `json:"kind"`
	Sym   uint32 `json:"sym,omitempty"`
	Start uint32 `json:"start,omitempty"`
	Count uint32 `json:"count,omitempty"`
}

type jsonToken struct {
	Kind  uint8  `json:"kind"`
	Sym   uint32 `json:"sym,omitempty"`
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

type jsonNode struct {
	Token uint32      `json:"token"`
	Id    *jsonIdPack `json:"id,omitempty"`
	Kind  string      `json:"kind"`

	Bool  *bool       `json:"bool,omitempty"`
	Int   *int64      `json:"int,omitempty"`
	Float *float64    `json:"float,omitempty"`
	Color *uint32     `json:"color,omitempty"`
	Vec2  *[2]float32 `json:"vec2,omitempty"`
	Vec3  *[3]float32 `json:"vec3,omitempty"`

	Target *jsonIdPack `json:"target,omitempty"`

	Start uint32 `json:"start,omitempty"`
	Count uint32 `json:"count,omitempty"`

	TokenStart uint32 `json:"tokenStart,omitempty"`
	TokenCount uint32 `json:"tokenCount,omitempty"`

	Crate  uint32 `json:"crate,omitempty"`
	Module uint32 `json:"module,omitempty"`
}

type jsonDoc struct {
	Symbols  []string     `json:"symbols"`
	Levels   [][]jsonNode `json:"levels"`
	Strings  string       `json:"strings,omitempty"`
	Tokens   []jsonToken  `json:"tokens,omitempty"`
	MultiIds []uint32     `json:"multiIds,omitempty"`
}

var valueKindNames = map[ValueKind]string{
	ValueBool:        "bool",
	ValueInt:         "int",
	ValueFloat:       "float",
	ValueColor:       "color",
	ValueVec2:        "vec2",
	ValueVec3:        "vec3",
	ValueIdRef:       "idref",
	ValueClass:       "class",
	ValueObject:      "object",
	ValueArray:       "array",
	ValueCall:        "call",
	ValueString:      "string",
	ValueFn:          "fn",
	ValueVarDef:      "vardef",
	ValueResourceRef: "resource",
	ValueUse:         "use",
}

var valueKindByName = func() map[string]ValueKind {
	m := make(map[string]ValueKind, len(valueKindNames))
	for k, v := range valueKindNames {
		m[v] = k
	}
	return m
}()

type symTab struct {
	in   *Interner
	idx  map[Id]uint32
	syms []string
}

func (t *symTab) sym(id Id) uint32 {
	if i, ok := t.idx[id]; ok {
		return i
	}
	i := uint32(len(t.syms))
	t.idx[id] = i
	t.syms = append(t.syms, t.in.Name(id))
	return i
}

func (t *symTab) pack(p IdPack, multiIds []Id) (*jsonIdPack, error) {
	switch p.Kind {
	case IdPackEmpty:
		return nil, nil
	case IdPackSingle:
		return &jsonIdPack{Kind: "single", Sym: t.sym(p.Single)}, nil
	case IdPackMulti:
		return &jsonIdPack{Kind: "multi", Start: p.MultiStart, Count: p.MultiCount}, nil
	}
	return nil, fmt.Errorf("%w: contains a resolved pointer", ErrNotRaw)
}

// EncodeDocument serialises a raw document. Expanded documents (scope
// captures, resolved pointers) are rejected.
func EncodeDocument(d *Document, in *Interner) ([]byte, error) {
	if len(d.Scopes) > 0 {
		return nil, fmt.Errorf("%w: has scope captures", ErrNotRaw)
	}
	t := &symTab{in: in, idx: make(map[Id]uint32)}
	out := &jsonDoc{Strings: string(d.Strings)}
	for _, id := range d.MultiIds {
		out.MultiIds = append(out.MultiIds, t.sym(id))
	}
	for _, tok := range d.Tokens {
		jt := jsonToken{Kind: uint8(tok.Kind), Start: tok.Span.Start, End: tok.Span.End}
		if tok.Kind == TokenIdent {
			jt.Sym = t.sym(tok.Ident)
		}
		out.Tokens = append(out.Tokens, jt)
	}
	out.Levels = make([][]jsonNode, len(d.Nodes))
	for level, nodes := range d.Nodes {
		out.Levels[level] = make([]jsonNode, 0, len(nodes))
		for i := range nodes {
			jn, err := t.encodeNode(&nodes[i], d.MultiIds)
			if err != nil {
				return nil, err
			}
			out.Levels[level] = append(out.Levels[level], *jn)
		}
	}
	out.Symbols = t.syms
	return json.Marshal(out)
}

func (t *symTab) encodeNode(n *Node, multiIds []Id) (*jsonNode, error) {
	id, err := t.pack(n.Id, multiIds)
	if err != nil {
		return nil, err
	}
	jn := &jsonNode{
		Token: n.Token.Index,
		Id:    id,
		Kind:  valueKindNames[n.Value.Kind],
	}
	v := &n.Value
	switch v.Kind {
	case ValueBool:
		jn.Bool = &v.Bool
	case ValueInt:
		jn.Int = &v.Int
	case ValueFloat:
		jn.Float = &v.Float
	case ValueColor:
		jn.Color = &v.Color
	case ValueVec2:
		vv := [2]float32(v.Vec2)
		jn.Vec2 = &vv
	case ValueVec3:
		vv := [3]float32(v.Vec3)
		jn.Vec3 = &vv
	case ValueIdRef, ValueResourceRef:
		jn.Target, err = t.pack(v.Target, multiIds)
	case ValueClass, ValueCall:
		jn.Target, err = t.pack(v.Target, multiIds)
		jn.Start, jn.Count = v.Start, v.Count
	case ValueObject, ValueArray:
		jn.Start, jn.Count = v.Start, v.Count
	case ValueString:
		jn.Start, jn.Count = v.Start, v.Count
	case ValueFn, ValueVarDef:
		jn.TokenStart, jn.TokenCount = v.TokenStart, v.TokenCount
	case ValueUse:
		jn.Crate = t.sym(v.CrateModule.Crate)
		jn.Module = t.sym(v.CrateModule.Module)
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.Kind)
	}
	if err != nil {
		return nil, err
	}
	return jn, nil
}

// DecodeDocument deserialises a raw document, interning its symbols into
// in. The file identity is stamped on every token reference.
func DecodeDocument(data []byte, in *Interner, file FileID) (*Document, error) {
	jd := &jsonDoc{}
	if err := json.Unmarshal(data, jd); err != nil {
		return nil, err
	}
	ids := make([]Id, len(jd.Symbols))
	for i, s := range jd.Symbols {
		ids[i] = in.Intern(s)
	}
	sym := func(i uint32) (Id, error) {
		if int(i) >= len(ids) {
			return IdEmpty, fmt.Errorf("symbol index %d out of range", i)
		}
		return ids[i], nil
	}
	d := NewDocument()
	d.Strings = []byte(jd.Strings)
	for _, mi := range jd.MultiIds {
		id, err := sym(mi)
		if err != nil {
			return nil, err
		}
		d.MultiIds = append(d.MultiIds, id)
	}
	for _, jt := range jd.Tokens {
		tok := Token{Kind: TokenKind(jt.Kind), Span: Span{File: file, Start: jt.Start, End: jt.End}}
		if tok.Kind == TokenIdent {
			id, err := sym(jt.Sym)
			if err != nil {
				return nil, err
			}
			tok.Ident = id
		}
		d.Tokens = append(d.Tokens, tok)
	}
	for level, jns := range jd.Levels {
		d.EnsureLevel(level)
		for i := range jns {
			n, err := decodeNode(&jns[i], sym, file)
			if err != nil {
				return nil, fmt.Errorf("level %d node %d: %w", level, i, err)
			}
			d.PushNode(level, *n)
		}
	}
	return d, nil
}

func decodePack(jp *jsonIdPack, sym func(uint32) (Id, error)) (IdPack, error) {
	if jp == nil {
		return IdPack{}, nil
	}
	switch jp.Kind {
	case "single":
		id, err := sym(jp.Sym)
		if err != nil {
			return IdPack{}, err
		}
		return SingleId(id), nil
	case "multi":
		return MultiId(int(jp.Start), int(jp.Count)), nil
	}
	return IdPack{}, fmt.Errorf("unknown id pack kind %q", jp.Kind)
}

func decodeNode(jn *jsonNode, sym func(uint32) (Id, error), file FileID) (*Node, error) {
	id, err := decodePack(jn.Id, sym)
	if err != nil {
		return nil, err
	}
	kind, ok := valueKindByName[jn.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown value kind %q", jn.Kind)
	}
	n := &Node{
		Token: TokenID{File: file, Index: jn.Token},
		Id:    id,
		Value: Value{Kind: kind},
	}
	v := &n.Value
	switch kind {
	case ValueBool:
		if jn.Bool != nil {
			v.Bool = *jn.Bool
		}
	case ValueInt:
		if jn.Int != nil {
			v.Int = *jn.Int
		}
	case ValueFloat:
		if jn.Float != nil {
			v.Float = *jn.Float
		}
	case ValueColor:
		if jn.Color != nil {
			v.Color = *jn.Color
		}
	case ValueVec2:
		if jn.Vec2 != nil {
			v.Vec2 = Vec2(*jn.Vec2)
		}
	case ValueVec3:
		if jn.Vec3 != nil {
			v.Vec3 = Vec3(*jn.Vec3)
		}
	case ValueIdRef, ValueResourceRef:
		v.Target, err = decodePack(jn.Target, sym)
	case ValueClass, ValueCall:
		v.Target, err = decodePack(jn.Target, sym)
		v.Start, v.Count = jn.Start, jn.Count
	case ValueObject, ValueArray:
		v.Start, v.Count = jn.Start, jn.Count
	case ValueString:
		v.Start, v.Count = jn.Start, jn.Count
	case ValueFn, ValueVarDef:
		v.TokenStart, v.TokenCount = jn.TokenStart, jn.TokenCount
	case ValueUse:
		var crate, module Id
		if crate, err = sym(jn.Crate); err == nil {
			module, err = sym(jn.Module)
		}
		v.CrateModule = CrateModule{Crate: crate, Module: module}
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}
