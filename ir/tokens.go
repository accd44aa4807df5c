package ir

// Span addresses a byte range in one file's source text. Spans are
// resolved to line/column lazily, only when a diagnostic is rendered.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

func (s Span) Len() int {
	return int(s.End) - int(s.Start)
}

// TokenID references an entry in a document's token table.
type TokenID struct {
	File  FileID
	Index uint32
}

type TokenKind uint8

const (
	TokenOther TokenKind = iota
	TokenIdent
	TokenPunct
	TokenLit
)

// Token is the engine-side view of a lexed token: its source span and,
// for identifiers, the interned symbol. Producing tokens is the parser
// front end's job; the engine only stores and relocates them so that
// Fn and VarDef bodies survive cross-document copies.
type Token struct {
	Kind  TokenKind
	Ident Id
	Span  Span
}
