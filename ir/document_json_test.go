package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildInterchangeDoc(in *Interner, file FileID) *Document {
	b := NewDocBuilder(in, file)
	b.Use("crate", "theme", "*")
	b.BeginClass("App", "Component").
		Bool("visible", true).
		Int("count", 3).
		Float("scale", 1.5).
		Color("bg", 0xff00ff00).
		Vec2("origin", Vec2{1, 2}).
		Str("title", "hello").
		IdRef("style", "theme::dark").
		BeginArray("tags").
		Str("", "a").
		End().
		End()
	b.Fn("draw", []Token{{Kind: TokenPunct, Span: Span{File: file, Start: 90, End: 91}}})
	return b.Document()
}

func TestDocumentJSONRoundTrip(t *testing.T) {
	in := NewInterner()
	doc := buildInterchangeDoc(in, 0)

	data, err := EncodeDocument(doc, in)
	require.NoError(t, err)

	// a fresh interner: the encoding must be self-contained
	in2 := NewInterner()
	in2.Intern("unrelated") // skew the id space
	doc2, err := DecodeDocument(data, in2, 7)
	require.NoError(t, err)

	require.Equal(t, doc.LevelLen(0), doc2.LevelLen(0))
	require.Equal(t, doc.LevelLen(1), doc2.LevelLen(1))
	require.Equal(t, string(doc.Strings), string(doc2.Strings))
	require.Len(t, doc2.Tokens, len(doc.Tokens))
	for _, tok := range doc2.Tokens {
		require.Equal(t, FileID(7), tok.Span.File)
	}

	app := doc2.Nodes[0][1]
	require.Equal(t, ValueClass, app.Value.Kind)
	require.Equal(t, "App", in2.Name(app.Id.Single))
	require.True(t, app.Value.Target.IsSingle(IdComponent))

	style := doc2.Nodes[1][6]
	require.Equal(t, ValueIdRef, style.Value.Kind)
	require.Equal(t, IdPackMulti, style.Value.Target.Kind)
	segs := doc2.MultiSegs(style.Value.Target)
	require.Equal(t, "theme", in2.Name(segs[0]))
	require.Equal(t, "dark", in2.Name(segs[1]))

	// re-encoding the decoded document reproduces the wire form
	data2, err := EncodeDocument(doc2, in2)
	require.NoError(t, err)
	require.JSONEq(t, string(data), string(data2))
}

func TestEncodeRejectsExpanded(t *testing.T) {
	in := NewInterner()
	d := NewDocument()
	d.Scopes = append(d.Scopes, ScopeItem{})
	_, err := EncodeDocument(d, in)
	require.ErrorIs(t, err, ErrNotRaw)

	d2 := NewDocument()
	d2.PushNode(0, Node{Id: PtrId(FullPtr{}), Value: IntValue(1)})
	_, err = EncodeDocument(d2, in)
	require.ErrorIs(t, err, ErrNotRaw)
}

func TestDecodeBadSymbolIndex(t *testing.T) {
	in := NewInterner()
	_, err := DecodeDocument([]byte(`{"symbols":[],"levels":[[{"token":0,"kind":"idref","target":{"kind":"single","sym":5}}]]}`), in, 0)
	require.Error(t, err)
}
