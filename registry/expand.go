package registry

import (
	"fmt"

	"github.com/peter-lyons-kehl/live-format/go-live/debug"
	"github.com/peter-lyons-kehl/live-format/go-live/ir"
)

// expander is the context of one document's expansion pass: the
// destination document, the live scope stack and the shared error sink,
// threaded explicitly through the walk instead of living in ambient
// state.
type expander struct {
	reg    *Registry
	in     *ir.Interner
	crate  ir.Id
	file   ir.FileID
	raw    *ir.Document
	out    *ir.Document
	scopes *scopeStack
	errs   *[]*Error
}

// ExpandAll runs the incremental expansion pass over the processing
// order, rebuilding every dirty expanded document. Errors accumulate and
// are returned; a failing declaration never stops its siblings or later
// files, so one pass surfaces every diagnostic an edit produced.
//
// Running ExpandAll twice without an intervening registration is a
// no-op: the first pass clears every dirty flag.
func (r *Registry) ExpandAll() []*Error {
	var errs []*Error
	for _, entry := range r.depOrder {
		fileID, ok := r.crateModuleToFile[entry.cm]
		if !ok {
			errs = append(errs, &Error{
				Origin:  origin(),
				Span:    r.TokenSpan(entry.token),
				Message: fmt.Sprintf("cannot find dependency: %s", entry.cm.Format(r.interner)),
			})
			continue
		}
		out := r.expanded[fileID]
		if !out.Recompile {
			continue
		}
		lf := r.liveFiles[fileID]
		if debug.Expand() {
			debug.Logf("expand %s (file %d)\n", entry.cm.Format(r.interner), fileID)
		}
		out.RestartFrom(lf.Document)

		e := &expander{
			reg:    r,
			in:     r.interner,
			crate:  entry.cm.Crate,
			file:   fileID,
			raw:    lf.Document,
			out:    out,
			scopes: newScopeStack(),
			errs:   &errs,
		}
		for i := 0; i < lf.Document.LevelLen(0); i++ {
			e.walkNode(0, 0, i, 0, 0)
		}
		out.Recompile = false
	}
	return errs
}

func (e *expander) errorf(o Origin, token ir.TokenID, format string, args ...any) {
	*e.errs = append(*e.errs, &Error{
		Origin:  o,
		Span:    e.reg.TokenSpan(token),
		Message: fmt.Sprintf(format, args...),
	})
}

// writeOrAdd merges a node into the output and, when it introduced a new
// name at the currently open scope's level, binds that name.
func (e *expander) writeOrAdd(level, start, count int, n ir.Node) (int, bool) {
	idx, added, err := e.out.WriteOrAdd(level, start, count, e.raw.MultiIds, n)
	if err != nil {
		e.errorf(origin(), n.Token, "%v", err)
		return 0, false
	}
	if added && len(e.scopes.stack)-1 == level && n.Id.Kind == ir.IdPackSingle {
		e.scopes.bind(level, ir.ScopeItem{
			Id:     n.Id.Single,
			Target: ir.LocalTarget(ir.LocalPtr{Level: level, Index: idx}),
		})
	}
	return idx, true
}

// shiftedLevel places a multi-segment declaration id at
// declared level + segment count - 1, materialising the intermediate
// nesting implicitly.
func shiftedLevel(id ir.IdPack, outLevel int) int {
	if id.Kind == ir.IdPackMulti {
		return outLevel + int(id.MultiCount) - 1
	}
	return outLevel
}

// searchRange gives the override-scan window for a write at level: the
// enclosing span when the declaration stays at its own level, the whole
// level when it was shifted by a multi-segment id.
func (e *expander) searchRange(level, outLevel, outStart, outCount int) (int, int) {
	if level == outLevel {
		return outStart, outCount
	}
	return 0, e.out.LevelLen(level)
}

// walkNode expands one raw node into the output document.
// [outStart, outStart+outCount) is the span of already-written entries
// the node may override. A resolution or structural failure drops the
// declaration and returns; siblings keep processing.
func (e *expander) walkNode(inLevel, outLevel, inIndex, outStart, outCount int) {
	node := &e.raw.Nodes[inLevel][inIndex]

	switch node.Value.Kind {
	case ir.ValueBool, ir.ValueInt, ir.ValueFloat, ir.ValueColor,
		ir.ValueVec2, ir.ValueVec3, ir.ValueString, ir.ValueResourceRef:
		e.writeOrAdd(outLevel, outStart, outCount, *node)

	case ir.ValueIdRef:
		e.walkIdRef(node, outLevel, outStart, outCount)

	case ir.ValueCall:
		e.walkCall(node, inLevel, outLevel, outStart, outCount)

	case ir.ValueObject, ir.ValueArray:
		shifted := shiftedLevel(node.Id, outLevel)
		newStart := e.out.LevelLen(shifted + 1)
		for i := 0; i < int(node.Value.Count); i++ {
			e.walkNode(inLevel+1, shifted+1, int(node.Value.Start)+i, outStart, 0)
		}
		v := node.Value
		v.Start = uint32(newStart)
		v.Count = uint32(e.out.LevelLen(shifted+1) - newStart)
		ss, sc := e.searchRange(shifted, outLevel, outStart, outCount)
		e.writeOrAdd(shifted, ss, sc, ir.Node{Token: node.Token, Id: node.Id, Value: v})

	case ir.ValueFn, ir.ValueVarDef:
		// snapshot the lexical environment so a downstream compiler
		// can resolve the body's free symbols
		start, count := e.scopes.capture(e.out)
		v := node.Value
		v.ScopeStart = uint32(start)
		v.ScopeCount = uint32(count)
		e.writeOrAdd(outLevel, outStart, outCount, ir.Node{Token: node.Token, Id: node.Id, Value: v})

	case ir.ValueUse:
		e.walkUse(node, outLevel)

	case ir.ValueClass:
		e.walkClass(node, inLevel, outLevel, outStart, outCount)
	}
}

func (e *expander) walkIdRef(node *ir.Node, outLevel, outStart, outCount int) {
	target := node.Value.Target
	if target.IsSingle(ir.IdSelf) || ir.IsBaseType(target) {
		e.writeOrAdd(outLevel, outStart, outCount, *node)
		return
	}
	file, found, rerr := e.resolveID(target, node.Token, outLevel, outStart)
	if rerr != nil {
		*e.errs = append(*e.errs, rerr)
		return
	}
	if file == ir.NoFile {
		file = e.file
	}
	v := node.Value
	v.Target = ir.PtrId(ir.FullPtr{File: file, Local: found})
	e.writeOrAdd(outLevel, outStart, outCount, ir.Node{Token: node.Token, Id: node.Id, Value: v})
}

func (e *expander) walkCall(node *ir.Node, inLevel, outLevel, outStart, outCount int) {
	newStart := e.out.LevelLen(outLevel + 1)
	for i := 0; i < int(node.Value.Count); i++ {
		e.walkNode(inLevel+1, outLevel+1, int(node.Value.Start)+i, outStart, 0)
	}
	v := node.Value
	v.Start = uint32(newStart)
	v.Count = uint32(e.out.LevelLen(outLevel+1) - newStart)

	target := node.Value.Target
	if !target.IsSingle(ir.IdSelf) && !ir.IsBaseType(target) {
		file, found, rerr := e.resolveID(target, node.Token, outLevel, outStart)
		if rerr != nil {
			*e.errs = append(*e.errs, rerr)
			return
		}
		doc := e.out
		if file != ir.NoFile {
			doc = e.reg.expanded[file]
		} else {
			file = e.file
		}
		if doc.NodeAt(found).Value.Kind != ir.ValueCall {
			e.errorf(origin(), node.Token, "target not a call: %s", node.Id.Format(e.in, e.raw.MultiIds))
			return
		}
		v.Target = ir.PtrId(ir.FullPtr{File: file, Local: found})
	}
	e.writeOrAdd(outLevel, outStart, outCount, ir.Node{Token: node.Token, Id: node.Id, Value: v})
}

// walkUse binds names from an imported crate-module's expanded document
// into the current scope frame. Imports produce no output nodes.
func (e *expander) walkUse(node *ir.Node, outLevel int) {
	cm := e.raw.FetchCrateModule(node.Value.CrateModule, e.crate)
	fileID, ok := e.reg.crateModuleToFile[cm]
	if !ok {
		e.errorf(origin(), node.Token, "cannot find dependency module: %s", cm.Format(e.in))
		return
	}
	other := e.reg.expanded[fileID]

	bindFull := func(id ir.Id, ptr ir.LocalPtr) {
		e.scopes.bind(outLevel, ir.ScopeItem{
			Id:     id,
			Target: ir.FullTarget(ir.FullPtr{File: fileID, Local: ptr}),
		})
	}

	switch node.Id.Kind {
	case ir.IdPackEmpty:
		// wildcard: every named top-level declaration
		for i := 0; i < other.LevelLen(0); i++ {
			if id := other.Nodes[0][i].Id; id.Kind == ir.IdPackSingle {
				bindFull(id.Single, ir.LocalPtr{Level: 0, Index: i})
			}
		}

	case ir.IdPackSingle:
		for i := 0; i < other.LevelLen(0); i++ {
			if other.Nodes[0][i].Id == node.Id {
				bindFull(node.Id.Single, ir.LocalPtr{Level: 0, Index: i})
				return
			}
		}
		e.errorf(origin(), node.Token, "cannot find import: %s", node.Id.Format(e.in, e.raw.MultiIds))

	case ir.IdPackMulti:
		segs := e.raw.MultiSegs(node.Id)
		level, start, count := 0, 0, other.LevelLen(0)
		for si, seg := range segs {
			if seg == ir.IdEmpty {
				if si != len(segs)-1 {
					e.errorf(origin(), node.Token, "invalid use path: %s", node.Id.Format(e.in, e.raw.MultiIds))
					return
				}
				for i := 0; i < count; i++ {
					if id := other.Nodes[level][start+i].Id; id.Kind == ir.IdPackSingle {
						bindFull(id.Single, ir.LocalPtr{Level: level, Index: start + i})
					}
				}
				return
			}
			found := false
			for i := 0; i < count; i++ {
				n := &other.Nodes[level][start+i]
				if !n.Id.IsSingle(seg) {
					continue
				}
				if si == len(segs)-1 {
					bindFull(seg, ir.LocalPtr{Level: level, Index: start + i})
					return
				}
				if n.Value.Kind != ir.ValueClass {
					break
				}
				start = int(n.Value.Start)
				count = int(n.Value.Count)
				level++
				found = true
				break
			}
			if !found {
				e.errorf(origin(), node.Token, "use path not found: %s", node.Id.Format(e.in, e.raw.MultiIds))
				return
			}
		}

	default:
		e.errorf(origin(), node.Token, "invalid use node: %s", node.Id.Format(e.in, e.raw.MultiIds))
	}
}

// walkClass applies class inheritance: the resolved base's fields are
// structurally copied first, then the declaration's own fields are
// walked on top of the copied span, overriding in place or appending.
func (e *expander) walkClass(node *ir.Node, inLevel, outLevel, outStart, outCount int) {
	e.scopes.push()
	shifted := shiftedLevel(node.Id, outLevel)
	newOutStart := e.out.LevelLen(shifted + 1)

	base := node.Value.Target
	res := copyResult{isClass: true, class: base}
	var valuePtr *ir.LocalPtr
	otherFile := ir.NoFile

	if !base.IsEmpty() && !base.IsSingle(ir.IdSelf) && !ir.IsBaseType(base) {
		file, found, rerr := e.resolveID(base, node.Token, outLevel, outStart)
		if rerr != nil {
			*e.errs = append(*e.errs, rerr)
			e.scopes.pop()
			return
		}
		if file == ir.NoFile {
			res = e.copyRecur(nil, e.file, node.Id, found.Level, found.Level, shifted, found.Index)
		} else {
			res = e.copyRecur(e.reg.expanded[file], file, node.Id, found.Level, found.Level, shifted, found.Index)
			otherFile = file
		}
		valuePtr = &found
	}

	if !res.isClass {
		if node.Value.Count > 0 {
			e.errorf(origin(), node.Token, "cannot override items in non-class: %s", base.Format(e.in, e.raw.MultiIds))
		}
		// pure alias: the copied value node already landed in the output
		e.scopes.pop()
		return
	}

	newClassID := res.class
	if valuePtr != nil {
		file := e.file
		if otherFile != ir.NoFile {
			file = otherFile
		}
		newClassID = ir.PtrId(ir.FullPtr{File: file, Local: *valuePtr})
	}

	// fixed override window: the copied base fields
	overrideCount := e.out.LevelLen(shifted+1) - newOutStart
	for i := 0; i < int(node.Value.Count); i++ {
		e.walkNode(inLevel+1, shifted+1, int(node.Value.Start)+i, newOutStart, overrideCount)
	}
	finalCount := e.out.LevelLen(shifted+1) - newOutStart

	e.scopes.pop()
	ss, sc := e.searchRange(shifted, outLevel, outStart, outCount)
	e.writeOrAdd(shifted, ss, sc, ir.Node{
		Token: node.Token,
		Id:    node.Id,
		Value: ir.ClassValue(newClassID, newOutStart, finalCount),
	})
}
