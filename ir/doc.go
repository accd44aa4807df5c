// Package ir contains the live document representation: interned
// identifiers, node trees organised by nesting level, and the tables
// (strings, tokens, scope captures, multi-segment ids) a document owns.
//
// Documents come in two forms. A raw document is what a parser front end
// produces; it is immutable once registered and replaced wholesale on
// re-parse. An expanded document is derived from a raw one by the
// registry's expansion pass, which resolves identifiers to node pointers
// and inlines class inheritance.
package ir
