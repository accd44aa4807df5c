// Package pos resolves byte offsets in source text to line/column
// positions with context snippets. Resolution is lazy: a Doc indexes the
// newlines once and answers offset queries afterwards, so bulk expansion
// never pays formatting cost for diagnostics that are filtered out.
package pos

import (
	"fmt"
	"sort"
	"strconv"
)

type Doc struct {
	d []byte
	n []int
}

func NewDoc(d []byte) *Doc {
	p := &Doc{d: d}
	for i, b := range d {
		if b == '\n' {
			p.n = append(p.n, i)
		}
	}
	return p
}

// LineCol returns the zero-based line and column of a byte offset.
func (p *Doc) LineCol(off int) (int, int) {
	N := len(p.n)
	di := sort.Search(N, func(i int) bool {
		return p.n[i] >= off
	})
	if di == 0 {
		return 0, off
	}
	return di, off - p.n[di-1] - 1
}

func (p *Doc) Pos(i int) *Pos {
	return &Pos{I: i, D: p}
}

type Pos struct {
	I int
	D *Doc
}

func (p *Pos) LineCol() (int, int) {
	return p.D.LineCol(p.I)
}

func (p *Pos) Line() int {
	l, _ := p.LineCol()
	return l
}

func (p *Pos) Col() int {
	_, c := p.LineCol()
	return c
}

// Snippet returns up to n bytes of source around the position, quoted.
// A position past the end of the source (a span that does not fit the
// registered text) yields "?" rather than a slice of nothing.
func (p *Pos) Snippet(n int) string {
	if p.I >= len(p.D.d) {
		return "?"
	}
	lo := max(0, p.I-n)
	hi := min(p.I+n, len(p.D.d))
	s := strconv.Quote(string(p.D.d[lo:hi]))
	return s[1 : len(s)-1]
}

func (p Pos) String() string {
	return fmt.Sprintf("`...%s...` at offset %d (line=%d, col=%d)", p.Snippet(5), p.I, p.Line(), p.Col())
}
