package ir

type ValueKind uint8

const (
	ValueBool ValueKind = iota
	ValueInt
	ValueFloat
	ValueColor
	ValueVec2
	ValueVec3
	// ValueIdRef is an identifier reference; expansion rewrites its
	// Target to a resolved pointer pack.
	ValueIdRef
	// ValueClass has a base-class Target and a child span.
	ValueClass
	ValueObject
	ValueArray
	// ValueCall has a call-target Target and an argument span.
	ValueCall
	// ValueString spans the document's string table.
	ValueString
	// ValueFn and ValueVarDef span the token table and, after
	// expansion, the captured-scope table.
	ValueFn
	ValueVarDef
	// ValueResourceRef's Target is a multi-id path.
	ValueResourceRef
	// ValueUse imports a crate-module; it is a resolution-time
	// artifact and never materialises in expanded output.
	ValueUse
)

type Vec2 [2]float32

type Vec3 [3]float32

// Value is the tagged payload of a node. Which fields are meaningful
// depends on Kind; span fields always address contiguous runs in the
// owning document's tables.
type Value struct {
	Kind ValueKind

	Bool  bool
	Int   int64
	Float float64
	Color uint32
	Vec2  Vec2
	Vec3  Vec3

	// Target is the IdRef value, Class base, Call target or
	// ResourceRef path.
	Target IdPack

	// Start/Count address children at the next nesting level for
	// Class/Object/Array/Call, or a string-table run for String.
	Start uint32
	Count uint32

	TokenStart uint32
	TokenCount uint32
	ScopeStart uint32
	ScopeCount uint32

	CrateModule CrateModule
}

// IsContainer reports whether the value owns a child span.
func (v *Value) IsContainer() bool {
	switch v.Kind {
	case ValueClass, ValueObject, ValueArray, ValueCall:
		return true
	}
	return false
}

func BoolValue(b bool) Value     { return Value{Kind: ValueBool, Bool: b} }
func IntValue(i int64) Value     { return Value{Kind: ValueInt, Int: i} }
func FloatValue(f float64) Value { return Value{Kind: ValueFloat, Float: f} }
func ColorValue(c uint32) Value  { return Value{Kind: ValueColor, Color: c} }
func Vec2Value(v Vec2) Value     { return Value{Kind: ValueVec2, Vec2: v} }
func Vec3Value(v Vec3) Value     { return Value{Kind: ValueVec3, Vec3: v} }

func IdRefValue(target IdPack) Value {
	return Value{Kind: ValueIdRef, Target: target}
}

func ClassValue(base IdPack, start, count int) Value {
	return Value{Kind: ValueClass, Target: base, Start: uint32(start), Count: uint32(count)}
}

func ObjectValue(start, count int) Value {
	return Value{Kind: ValueObject, Start: uint32(start), Count: uint32(count)}
}

func ArrayValue(start, count int) Value {
	return Value{Kind: ValueArray, Start: uint32(start), Count: uint32(count)}
}

func CallValue(target IdPack, start, count int) Value {
	return Value{Kind: ValueCall, Target: target, Start: uint32(start), Count: uint32(count)}
}

func StringValue(start, count int) Value {
	return Value{Kind: ValueString, Start: uint32(start), Count: uint32(count)}
}

func FnValue(tokenStart, tokenCount int) Value {
	return Value{Kind: ValueFn, TokenStart: uint32(tokenStart), TokenCount: uint32(tokenCount)}
}

func VarDefValue(tokenStart, tokenCount int) Value {
	return Value{Kind: ValueVarDef, TokenStart: uint32(tokenStart), TokenCount: uint32(tokenCount)}
}

func ResourceRefValue(target IdPack) Value {
	return Value{Kind: ValueResourceRef, Target: target}
}

func UseValue(cm CrateModule) Value {
	return Value{Kind: ValueUse, CrateModule: cm}
}

// Node is one entry in a document tree.
type Node struct {
	Token TokenID
	Id    IdPack
	Value Value
}
