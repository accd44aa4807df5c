package debug

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/peter-lyons-kehl/live-format/go-live/ir"
)

// DumpDocument renders a document's levels in a stable line-oriented
// form, one node per line. The output is meant for eyeballs and for
// diffing between expansion passes, not for machines.
func DumpDocument(doc *ir.Document, in *ir.Interner) string {
	var sb strings.Builder
	for level, nodes := range doc.Nodes {
		fmt.Fprintf(&sb, "level %d:\n", level)
		for i := range nodes {
			n := &nodes[i]
			fmt.Fprintf(&sb, "  [%d] %s: %s\n", i, n.Id.Format(in, doc.MultiIds), formatValue(&n.Value, in, doc))
		}
	}
	return sb.String()
}

func formatValue(v *ir.Value, in *ir.Interner, doc *ir.Document) string {
	switch v.Kind {
	case ir.ValueBool:
		return fmt.Sprintf("%t", v.Bool)
	case ir.ValueInt:
		return fmt.Sprintf("%d", v.Int)
	case ir.ValueFloat:
		return fmt.Sprintf("%g", v.Float)
	case ir.ValueColor:
		return fmt.Sprintf("#%08x", v.Color)
	case ir.ValueVec2:
		return fmt.Sprintf("vec2(%g, %g)", v.Vec2[0], v.Vec2[1])
	case ir.ValueVec3:
		return fmt.Sprintf("vec3(%g, %g, %g)", v.Vec3[0], v.Vec3[1], v.Vec3[2])
	case ir.ValueIdRef:
		return fmt.Sprintf("ref %s", formatTarget(v.Target, in, doc))
	case ir.ValueClass:
		return fmt.Sprintf("class(%s) [%d..%d)", formatTarget(v.Target, in, doc), v.Start, v.Start+v.Count)
	case ir.ValueObject:
		return fmt.Sprintf("object [%d..%d)", v.Start, v.Start+v.Count)
	case ir.ValueArray:
		return fmt.Sprintf("array [%d..%d)", v.Start, v.Start+v.Count)
	case ir.ValueCall:
		return fmt.Sprintf("call %s [%d..%d)", formatTarget(v.Target, in, doc), v.Start, v.Start+v.Count)
	case ir.ValueString:
		return fmt.Sprintf("%q", string(doc.Strings[v.Start:v.Start+v.Count]))
	case ir.ValueFn:
		return fmt.Sprintf("fn tokens[%d..%d) scopes[%d..%d)", v.TokenStart, v.TokenStart+v.TokenCount, v.ScopeStart, v.ScopeStart+v.ScopeCount)
	case ir.ValueVarDef:
		return fmt.Sprintf("vardef tokens[%d..%d) scopes[%d..%d)", v.TokenStart, v.TokenStart+v.TokenCount, v.ScopeStart, v.ScopeStart+v.ScopeCount)
	case ir.ValueResourceRef:
		return fmt.Sprintf("resource %s", v.Target.Format(in, doc.MultiIds))
	case ir.ValueUse:
		return fmt.Sprintf("use %s", v.CrateModule.Format(in))
	}
	return "?"
}

func formatTarget(p ir.IdPack, in *ir.Interner, doc *ir.Document) string {
	if p.Kind == ir.IdPackPtr {
		return fmt.Sprintf("-> file %d %d/%d", p.Ptr.File, p.Ptr.Local.Level, p.Ptr.Local.Index)
	}
	return p.Format(in, doc.MultiIds)
}

// DiffDumps returns a readable diff between two document dumps, for
// inspecting what an incremental pass rewrote.
func DiffDumps(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, true)
	dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs)
}
