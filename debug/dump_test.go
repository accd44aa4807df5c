package debug

import (
	"strings"
	"testing"

	"github.com/peter-lyons-kehl/live-format/go-live/ir"
)

func TestDumpDocument(t *testing.T) {
	in := ir.NewInterner()
	b := ir.NewDocBuilder(in, 0)
	b.BeginClass("K", "Component").
		Int("x", 3).
		Str("s", "hi").
		End()
	out := DumpDocument(b.Document(), in)

	for _, want := range []string{
		"level 0:",
		"K: class(Component) [0..2)",
		"x: 3",
		`s: "hi"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}

func TestDiffDumps(t *testing.T) {
	before := "level 0:\n  [0] x: 1\n"
	after := "level 0:\n  [0] x: 2\n"
	if got := DiffDumps(before, after); !strings.Contains(got, "1") || !strings.Contains(got, "2") {
		t.Errorf("diff = %q", got)
	}
	if got := DiffDumps(before, before); strings.Contains(got, "\x1b[3") {
		t.Errorf("identical dumps produced a colored diff: %q", got)
	}
}
