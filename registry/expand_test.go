package registry

import (
	"strings"
	"testing"

	"github.com/peter-lyons-kehl/live-format/go-live/debug"
	"github.com/peter-lyons-kehl/live-format/go-live/ir"
)

func register(t *testing.T, reg *Registry, file, crate, module string, build func(b *ir.DocBuilder)) ir.FileID {
	t.Helper()
	b := ir.NewDocBuilder(reg.Interner(), reg.NextFileID(file))
	build(b)
	id, err := reg.RegisterDocument(file, reg.Intern(crate), reg.Intern(module), "", b.Document())
	if err != nil {
		t.Fatalf("register %s: %v", file, err)
	}
	return id
}

func expandOK(t *testing.T, reg *Registry) {
	t.Helper()
	errs := reg.ExpandAll()
	for _, e := range errs {
		t.Errorf("expand: %s", e.Message)
	}
}

func errMessages(errs []*Error) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "\n")
}

func childNames(t *testing.T, reg *Registry, doc *ir.Document, n *ir.Node) []string {
	t.Helper()
	if !n.Value.IsContainer() {
		t.Fatalf("node is not a container: kind %d", n.Value.Kind)
	}
	var names []string
	for i := uint32(0); i < n.Value.Count; i++ {
		id := doc.Nodes[1][n.Value.Start+i].Id
		names = append(names, id.Format(reg.Interner(), doc.MultiIds))
	}
	return names
}

func TestExpandInheritanceOverride(t *testing.T) {
	reg := New()
	file := register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.BeginClass("K", "Component").
			Int("x", 1).
			Int("y", 2).
			End()
		b.BeginClass("D", "K").
			Int("y", 3).
			End()
	})
	expandOK(t, reg)

	exp := reg.Expanded(file)
	if got := exp.LevelLen(0); got != 2 {
		t.Fatalf("top level length = %d, want 2", got)
	}
	d := &exp.Nodes[0][1]
	if d.Value.Kind != ir.ValueClass || d.Value.Count != 2 {
		t.Fatalf("D = kind %d count %d, want class with 2 fields", d.Value.Kind, d.Value.Count)
	}
	// the base's field order survives the override
	names := childNames(t, reg, exp, d)
	if names[0] != "x" || names[1] != "y" {
		t.Errorf("field order = %v, want [x y]", names)
	}
	x := exp.Nodes[1][d.Value.Start]
	y := exp.Nodes[1][d.Value.Start+1]
	if x.Value.Int != 1 || y.Value.Int != 3 {
		t.Errorf("x, y = %d, %d; want 1, 3", x.Value.Int, y.Value.Int)
	}
	if d.Value.Target.Kind != ir.IdPackPtr {
		t.Fatalf("D base = %+v, want a resolved pointer", d.Value.Target)
	}
	if d.Value.Target.Ptr != (ir.FullPtr{File: file, Local: ir.LocalPtr{Level: 0, Index: 0}}) {
		t.Errorf("D base pointer = %+v, want K's node", d.Value.Target.Ptr)
	}
}

func TestExpandIdempotent(t *testing.T) {
	reg := New()
	file := register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.BeginClass("K", "Component").
			Int("x", 1).
			End()
		b.BeginClass("D", "K").End()
	})
	expandOK(t, reg)
	if dirty := reg.DirtyFiles(); len(dirty) != 0 {
		t.Fatalf("dirty after expansion: %v", dirty)
	}
	before := debug.DumpDocument(reg.Expanded(file), reg.Interner())

	if errs := reg.ExpandAll(); len(errs) != 0 {
		t.Fatalf("second pass errors: %s", errMessages(errs))
	}
	after := debug.DumpDocument(reg.Expanded(file), reg.Interner())
	if before != after {
		t.Errorf("second pass changed output:\n%s", debug.DiffDumps(before, after))
	}
}

func TestExpandSelfReference(t *testing.T) {
	reg := New()
	file := register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.BeginClass("K", "Component").
			Int("x", 1).
			IdRef("y", "Self::x").
			End()
	})
	expandOK(t, reg)

	exp := reg.Expanded(file)
	y := exp.Nodes[1][1]
	if y.Value.Kind != ir.ValueIdRef || y.Value.Target.Kind != ir.IdPackPtr {
		t.Fatalf("y = %+v, want a resolved reference", y.Value)
	}
	want := ir.FullPtr{File: file, Local: ir.LocalPtr{Level: 1, Index: 0}}
	if y.Value.Target.Ptr != want {
		t.Errorf("y target = %+v, want %+v", y.Value.Target.Ptr, want)
	}
}

func TestExpandCrossFile(t *testing.T) {
	reg := New()
	libFile := register(t, reg, "lib.live", "app", "lib", func(b *ir.DocBuilder) {
		b.BeginClass("K", "Component").
			Str("title", "hi").
			Int("x", 1).
			End()
	})
	mainFile := register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.Use("crate", "lib", "*")
		b.BeginClass("D", "K").
			Int("x", 2).
			End()
	})
	expandOK(t, reg)

	exp := reg.Expanded(mainFile)
	// the import produces no output node
	if got := exp.LevelLen(0); got != 1 {
		t.Fatalf("top level length = %d, want 1", got)
	}
	d := &exp.Nodes[0][0]
	names := childNames(t, reg, exp, d)
	if names[0] != "title" || names[1] != "x" {
		t.Fatalf("field order = %v, want [title x]", names)
	}
	title := exp.Nodes[1][d.Value.Start]
	if got := string(exp.Strings[title.Value.Start : title.Value.Start+title.Value.Count]); got != "hi" {
		t.Errorf("copied string = %q, want hi", got)
	}
	x := exp.Nodes[1][d.Value.Start+1]
	if x.Value.Int != 2 {
		t.Errorf("x = %d, want 2", x.Value.Int)
	}
	if d.Value.Target.Ptr.File != libFile {
		t.Errorf("D base file = %d, want %d", d.Value.Target.Ptr.File, libFile)
	}
}

func TestDirtyPropagation(t *testing.T) {
	reg := New()
	libFile := register(t, reg, "lib.live", "app", "lib", func(b *ir.DocBuilder) {
		b.BeginClass("K", "Component").
			Str("title", "hi").
			End()
	})
	mainFile := register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.Use("crate", "lib", "*")
		b.BeginClass("D", "K").End()
	})
	otherFile := register(t, reg, "other.live", "app", "other", func(b *ir.DocBuilder) {
		b.BeginClass("U", "Component").End()
	})
	expandOK(t, reg)

	// editing lib dirties lib and its dependent, not the unrelated module
	register(t, reg, "lib.live", "app", "lib", func(b *ir.DocBuilder) {
		b.BeginClass("K", "Component").
			Str("title", "bye").
			End()
	})
	dirty := map[ir.FileID]bool{}
	for _, f := range reg.DirtyFiles() {
		dirty[f] = true
	}
	if !dirty[libFile] || !dirty[mainFile] {
		t.Fatalf("dirty = %v, want lib and main", reg.DirtyFiles())
	}
	if dirty[otherFile] {
		t.Fatalf("unrelated module recompiled: %v", reg.DirtyFiles())
	}

	expandOK(t, reg)
	exp := reg.Expanded(mainFile)
	d := &exp.Nodes[0][0]
	title := exp.Nodes[1][d.Value.Start]
	if got := string(exp.Strings[title.Value.Start : title.Value.Start+title.Value.Count]); got != "bye" {
		t.Errorf("title after re-expansion = %q, want bye", got)
	}
}

func TestMissingDependency(t *testing.T) {
	reg := New()
	register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.Use("crate", "nope", "*")
		b.BeginClass("K", "Component").End()
	})
	errs := reg.ExpandAll()
	msgs := errMessages(errs)
	if !strings.Contains(msgs, "cannot find dependency: app::nope") {
		t.Errorf("missing order diagnostic in:\n%s", msgs)
	}
	if !strings.Contains(msgs, "cannot find dependency module: app::nope") {
		t.Errorf("missing import diagnostic in:\n%s", msgs)
	}
}

func TestUnknownBaseDropsDeclaration(t *testing.T) {
	reg := New()
	file := register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.BeginClass("D", "Missing").
			Int("x", 1).
			End()
		b.BeginClass("K", "Component").End()
	})
	errs := reg.ExpandAll()
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "cannot find item on scope: Missing") {
		t.Fatalf("errors = %s", errMessages(errs))
	}
	// the failed declaration is dropped; its sibling still expands
	exp := reg.Expanded(file)
	if got := exp.LevelLen(0); got != 1 {
		t.Fatalf("top level length = %d, want 1", got)
	}
	if name := exp.Nodes[0][0].Id.Format(reg.Interner(), exp.MultiIds); name != "K" {
		t.Errorf("surviving declaration = %s, want K", name)
	}
}

func TestOverrideNonClass(t *testing.T) {
	reg := New()
	register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.Int("x", 1)
		b.BeginClass("D", "x").
			Int("a", 1).
			End()
	})
	errs := reg.ExpandAll()
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "cannot override items in non-class: x") {
		t.Fatalf("errors = %s", errMessages(errs))
	}
}

func TestPureAlias(t *testing.T) {
	reg := New()
	file := register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.Int("x", 7)
		b.BeginClass("D", "x").End()
	})
	expandOK(t, reg)

	exp := reg.Expanded(file)
	if got := exp.LevelLen(0); got != 2 {
		t.Fatalf("top level length = %d, want 2", got)
	}
	d := exp.Nodes[0][1]
	if d.Value.Kind != ir.ValueInt || d.Value.Int != 7 {
		t.Errorf("alias = %+v, want the aliased int value", d.Value)
	}
	if name := d.Id.Format(reg.Interner(), exp.MultiIds); name != "D" {
		t.Errorf("alias keeps its own name, got %s", name)
	}
}

func TestImportRemoval(t *testing.T) {
	reg := New()
	register(t, reg, "lib.live", "app", "lib", func(b *ir.DocBuilder) {
		b.BeginClass("K", "Component").End()
	})
	mainFile := register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.Use("crate", "lib", "*")
		b.BeginClass("D", "K").End()
	})
	expandOK(t, reg)

	// lib drops K; the dependent's base resolution now fails
	register(t, reg, "lib.live", "app", "lib", func(b *ir.DocBuilder) {
		b.BeginClass("Other", "Component").End()
	})
	errs := reg.ExpandAll()
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "cannot find item on scope: K") {
		t.Fatalf("errors = %s", errMessages(errs))
	}
	if got := reg.Expanded(mainFile).LevelLen(0); got != 0 {
		t.Errorf("top level length = %d, want 0 after the declaration dropped", got)
	}
}

func TestUseRemoval(t *testing.T) {
	reg := New()
	register(t, reg, "lib.live", "app", "lib", func(b *ir.DocBuilder) {
		b.BeginClass("K", "Component").End()
	})
	mainFile := register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.Use("crate", "lib", "*")
		b.BeginClass("D", "K").End()
	})
	expandOK(t, reg)

	// K is still exported by lib; only the use line goes away
	register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.BeginClass("D", "K").End()
	})
	errs := reg.ExpandAll()
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "cannot find item on scope: K") {
		t.Fatalf("errors = %s", errMessages(errs))
	}
	if got := reg.Expanded(mainFile).LevelLen(0); got != 0 {
		t.Errorf("top level length = %d, want 0 after the declaration dropped", got)
	}
}

func TestDependencyCycle(t *testing.T) {
	reg := New()
	register(t, reg, "a.live", "app", "a", func(b *ir.DocBuilder) {
		b.Use("crate", "b", "*")
		b.BeginClass("A", "Component").End()
	})
	register(t, reg, "b.live", "app", "b", func(b *ir.DocBuilder) {
		b.Use("crate", "a", "*")
		b.BeginClass("B", "A").End()
	})
	expandOK(t, reg)
	if dirty := reg.DirtyFiles(); len(dirty) != 0 {
		t.Fatalf("dirty after expansion: %v", dirty)
	}

	// a change inside the cycle dirties both sides exactly once
	register(t, reg, "a.live", "app", "a", func(b *ir.DocBuilder) {
		b.Use("crate", "b", "*")
		b.BeginClass("A", "Component").
			Int("x", 1).
			End()
	})
	if got := len(reg.DirtyFiles()); got != 2 {
		t.Fatalf("dirty = %v, want both cycle members", reg.DirtyFiles())
	}
	expandOK(t, reg)
}

func TestShadowingLastWins(t *testing.T) {
	reg := New()
	file := register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.BeginClass("K", "Component").
			Int("x", 1).
			End()
		b.BeginClass("K", "Component").
			Int("x", 2).
			End()
		b.BeginClass("D", "K").End()
	})
	expandOK(t, reg)

	exp := reg.Expanded(file)
	d := &exp.Nodes[0][2]
	x := exp.Nodes[1][d.Value.Start]
	if x.Value.Int != 2 {
		t.Errorf("x = %d, want the later declaration's 2", x.Value.Int)
	}
}

func TestCallTargetResolution(t *testing.T) {
	reg := New()
	file := register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.BeginCall("f", "Self").End()
		b.BeginCall("c", "f").
			Int("", 1).
			End()
	})
	expandOK(t, reg)

	exp := reg.Expanded(file)
	c := exp.Nodes[0][1]
	if c.Value.Kind != ir.ValueCall || c.Value.Target.Kind != ir.IdPackPtr {
		t.Fatalf("c = %+v, want a call with resolved target", c.Value)
	}
	want := ir.FullPtr{File: file, Local: ir.LocalPtr{Level: 0, Index: 0}}
	if c.Value.Target.Ptr != want {
		t.Errorf("c target = %+v, want %+v", c.Value.Target.Ptr, want)
	}
}

func TestCallTargetNotACall(t *testing.T) {
	reg := New()
	register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.Int("x", 1)
		b.BeginCall("c", "x").End()
	})
	errs := reg.ExpandAll()
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "target not a call: c") {
		t.Fatalf("errors = %s", errMessages(errs))
	}
}

func TestFnCapturesScope(t *testing.T) {
	reg := New()
	file := register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.BeginClass("K", "Component").
			Int("x", 1).
			Fn("draw", []ir.Token{{Kind: ir.TokenPunct}}).
			End()
	})
	expandOK(t, reg)

	exp := reg.Expanded(file)
	draw := exp.Nodes[1][1]
	if draw.Value.Kind != ir.ValueFn || draw.Value.ScopeCount != 1 {
		t.Fatalf("draw = %+v, want 1 captured binding", draw.Value)
	}
	item := exp.Scopes[draw.Value.ScopeStart]
	if reg.Interner().Name(item.Id) != "x" {
		t.Errorf("captured binding = %s, want x", reg.Interner().Name(item.Id))
	}
	if !item.Target.IsLocal() || item.Target.Local != (ir.LocalPtr{Level: 1, Index: 0}) {
		t.Errorf("captured target = %+v, want local x", item.Target)
	}
}

func TestMultiSegmentDeclaration(t *testing.T) {
	reg := New()
	file := register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.BeginClass("menu::item", "Component").
			Int("pad", 2).
			End()
	})
	expandOK(t, reg)

	// the declaration materialises at its shifted level
	exp := reg.Expanded(file)
	if got := exp.LevelLen(0); got != 0 {
		t.Fatalf("level 0 length = %d, want 0", got)
	}
	if got := exp.LevelLen(1); got != 1 {
		t.Fatalf("level 1 length = %d, want 1", got)
	}
	ptr, ok := reg.FindFullPtr(reg.Intern("app"), reg.Intern("main"),
		[]ir.Id{reg.Intern("menu"), reg.Intern("item")})
	if !ok {
		t.Fatal("FindFullPtr did not find menu::item")
	}
	if ptr != (ir.FullPtr{File: file, Local: ir.LocalPtr{Level: 1, Index: 0}}) {
		t.Errorf("ptr = %+v", ptr)
	}
}

func TestSingleImport(t *testing.T) {
	reg := New()
	register(t, reg, "lib.live", "app", "lib", func(b *ir.DocBuilder) {
		b.BeginClass("K", "Component").End()
		b.BeginClass("L", "Component").End()
	})
	file := register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.Use("crate", "lib", "K")
		b.BeginClass("D", "K").End()
	})
	expandOK(t, reg)
	if got := reg.Expanded(file).LevelLen(0); got != 1 {
		t.Errorf("top level length = %d, want 1", got)
	}
}

func TestSingleImportMissing(t *testing.T) {
	reg := New()
	register(t, reg, "lib.live", "app", "lib", func(b *ir.DocBuilder) {
		b.BeginClass("K", "Component").End()
	})
	register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.Use("crate", "lib", "Nope")
	})
	errs := reg.ExpandAll()
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "cannot find import: Nope") {
		t.Fatalf("errors = %s", errMessages(errs))
	}
}

func TestNestedPathImport(t *testing.T) {
	reg := New()
	register(t, reg, "lib.live", "app", "lib", func(b *ir.DocBuilder) {
		b.BeginClass("theme", "Component").
			BeginClass("dark", "Component").End().
			BeginClass("light", "Component").End().
			End()
	})
	file := register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.Use("crate", "lib", "theme::dark")
		b.BeginClass("D", "dark").End()
	})
	expandOK(t, reg)
	if got := reg.Expanded(file).LevelLen(0); got != 1 {
		t.Errorf("top level length = %d, want 1", got)
	}
}

func TestTrailingWildcardImport(t *testing.T) {
	reg := New()
	register(t, reg, "lib.live", "app", "lib", func(b *ir.DocBuilder) {
		b.BeginClass("theme", "Component").
			BeginClass("dark", "Component").End().
			BeginClass("light", "Component").End().
			End()
	})
	file := register(t, reg, "main.live", "app", "main", func(b *ir.DocBuilder) {
		b.Use("crate", "lib", "theme::*")
		b.BeginClass("A", "dark").End()
		b.BeginClass("B", "light").End()
	})
	expandOK(t, reg)
	if got := reg.Expanded(file).LevelLen(0); got != 2 {
		t.Errorf("top level length = %d, want 2", got)
	}
}
