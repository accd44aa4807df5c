package ir

import "strings"

// DocBuilder constructs raw documents for the expansion engine. Parser
// front ends running in-process use it to emit a tree declaration by
// declaration; the builder buffers the tree and lays it out level by
// level on Document, which keeps every child span contiguous.
//
// Names may be multi-segment ("a::b::c"); the empty name produces an
// anonymous node (array elements, wildcard imports).
type DocBuilder struct {
	in   *Interner
	file FileID
	doc  *Document

	roots []*buildNode
	stack []*buildNode

	// pending span for the next declaration's token, set by At
	span    *Span
	autoOff uint32
}

type buildNode struct {
	node     Node
	children []*buildNode
}

func NewDocBuilder(in *Interner, file FileID) *DocBuilder {
	return &DocBuilder{in: in, file: file, doc: NewDocument()}
}

// At sets the source span recorded for the next declaration's token.
// Without it the builder assigns synthetic monotonic offsets.
func (b *DocBuilder) At(start, end int) *DocBuilder {
	b.span = &Span{File: b.file, Start: uint32(start), End: uint32(end)}
	return b
}

func (b *DocBuilder) idPack(name string) IdPack {
	if name == "" {
		return IdPack{}
	}
	segs := strings.Split(name, "::")
	if len(segs) == 1 {
		return SingleId(b.in.Intern(name))
	}
	start := len(b.doc.MultiIds)
	for _, s := range segs {
		if s == "*" {
			b.doc.MultiIds = append(b.doc.MultiIds, IdEmpty)
			continue
		}
		b.doc.MultiIds = append(b.doc.MultiIds, b.in.Intern(s))
	}
	return MultiId(start, len(segs))
}

func (b *DocBuilder) token(name string) TokenID {
	span := Span{File: b.file, Start: b.autoOff, End: b.autoOff + uint32(len(name))}
	if b.span != nil {
		span = *b.span
		b.span = nil
	} else {
		b.autoOff += uint32(len(name)) + 1
	}
	kind := TokenIdent
	ident := IdEmpty
	if name != "" {
		ident = b.in.Intern(lastSeg(name))
	} else {
		kind = TokenOther
	}
	b.doc.Tokens = append(b.doc.Tokens, Token{Kind: kind, Ident: ident, Span: span})
	return TokenID{File: b.file, Index: uint32(len(b.doc.Tokens) - 1)}
}

func lastSeg(name string) string {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return name[i+2:]
	}
	return name
}

func (b *DocBuilder) add(n *buildNode) {
	if len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		top.children = append(top.children, n)
		return
	}
	b.roots = append(b.roots, n)
}

func (b *DocBuilder) leaf(name string, v Value) *DocBuilder {
	b.add(&buildNode{node: Node{Token: b.token(name), Id: b.idPack(name), Value: v}})
	return b
}

func (b *DocBuilder) open(name string, v Value) *DocBuilder {
	n := &buildNode{node: Node{Token: b.token(name), Id: b.idPack(name), Value: v}}
	b.add(n)
	b.stack = append(b.stack, n)
	return b
}

// End closes the innermost open container.
func (b *DocBuilder) End() *DocBuilder {
	b.stack = b.stack[:len(b.stack)-1]
	return b
}

// BeginClass opens a class declaration. base is the base-class path:
// a built-in root kind ("Component"), "Self", or a declared name,
// possibly multi-segment.
func (b *DocBuilder) BeginClass(name, base string) *DocBuilder {
	return b.open(name, ClassValue(b.idPack(base), 0, 0))
}

func (b *DocBuilder) BeginObject(name string) *DocBuilder {
	return b.open(name, ObjectValue(0, 0))
}

func (b *DocBuilder) BeginArray(name string) *DocBuilder {
	return b.open(name, ArrayValue(0, 0))
}

func (b *DocBuilder) BeginCall(name, target string) *DocBuilder {
	return b.open(name, CallValue(b.idPack(target), 0, 0))
}

func (b *DocBuilder) Bool(name string, v bool) *DocBuilder {
	return b.leaf(name, BoolValue(v))
}

func (b *DocBuilder) Int(name string, v int64) *DocBuilder {
	return b.leaf(name, IntValue(v))
}

func (b *DocBuilder) Float(name string, v float64) *DocBuilder {
	return b.leaf(name, FloatValue(v))
}

func (b *DocBuilder) Color(name string, v uint32) *DocBuilder {
	return b.leaf(name, ColorValue(v))
}

func (b *DocBuilder) Vec2(name string, v Vec2) *DocBuilder {
	return b.leaf(name, Vec2Value(v))
}

func (b *DocBuilder) Vec3(name string, v Vec3) *DocBuilder {
	return b.leaf(name, Vec3Value(v))
}

// IdRef declares an identifier-reference value, e.g. `x: some::path`.
func (b *DocBuilder) IdRef(name, path string) *DocBuilder {
	return b.leaf(name, IdRefValue(b.idPack(path)))
}

// Str declares a string value; the bytes are interned in the document's
// string table.
func (b *DocBuilder) Str(name, s string) *DocBuilder {
	start := len(b.doc.Strings)
	b.doc.Strings = append(b.doc.Strings, s...)
	return b.leaf(name, StringValue(start, len(s)))
}

// Fn declares a function body given its lexed tokens; the tokens are
// appended to the document's token table.
func (b *DocBuilder) Fn(name string, body []Token) *DocBuilder {
	start := len(b.doc.Tokens)
	b.doc.Tokens = append(b.doc.Tokens, body...)
	return b.leaf(name, FnValue(start, len(body)))
}

// VarDef declares a variable-definition body given its lexed tokens.
func (b *DocBuilder) VarDef(name string, body []Token) *DocBuilder {
	start := len(b.doc.Tokens)
	b.doc.Tokens = append(b.doc.Tokens, body...)
	return b.leaf(name, VarDefValue(start, len(body)))
}

// ResourceRef declares a reference to an external resource path.
func (b *DocBuilder) ResourceRef(name, path string) *DocBuilder {
	return b.leaf(name, ResourceRefValue(b.idPack(path)))
}

// Use declares an import. item selects what the import binds: "" or "*"
// for every top-level name of the module, a single name, or a nested
// path which may end in "*".
func (b *DocBuilder) Use(crate, module, item string) *DocBuilder {
	cm := CrateModule{Crate: b.in.Intern(crate), Module: b.in.Intern(module)}
	name := item
	if item == "*" {
		name = ""
	}
	return b.leaf(name, UseValue(cm))
}

// Document lays the buffered tree out by level and returns the raw
// document. The builder must not be reused afterwards.
func (b *DocBuilder) Document() *Document {
	layout(b.doc, b.roots, 0)
	return b.doc
}

// layout appends nodes at their level and children one level below,
// assigning each container's span once its children are placed.
func layout(d *Document, nodes []*buildNode, level int) {
	d.EnsureLevel(level)
	placed := make([]int, len(nodes))
	for i, n := range nodes {
		placed[i] = d.PushNode(level, n.node)
	}
	for i, n := range nodes {
		if !n.node.Value.IsContainer() {
			continue
		}
		start := d.LevelLen(level + 1)
		layout(d, n.children, level+1)
		node := &d.Nodes[level][placed[i]]
		node.Value.Start = uint32(start)
		node.Value.Count = uint32(len(n.children))
	}
}
