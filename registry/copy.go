package registry

import "github.com/peter-lyons-kehl/live-format/go-live/ir"

// copyResult tells the caller whether the copied root was a class, which
// decides whether override fields against it are legal.
type copyResult struct {
	isClass bool
	class   ir.IdPack
}

// copyRecur deep-copies the subtree rooted at (inLevel, inIndex) of src
// into the output document at outLevel. src == nil reads from the output
// document itself (base class declared in the same file). When the copy
// root is the base class being inlined under a derived declaration
// (skipLevel == inLevel), the root class node itself is not emitted;
// only its fields land in the destination span.
//
// Interned data is relocated across document boundaries: string runs and
// token spans are duplicated into the destination tables, scope captures
// are re-expressed as full pointers since a local capture in the source
// is no longer local here, and multi-segment ids are re-interned in the
// destination's multi-id table. Already-resolved pointer references are
// copied verbatim; they keep pointing at their original targets.
func (e *expander) copyRecur(src *ir.Document, srcFile ir.FileID, skipID ir.IdPack, skipLevel, inLevel, outLevel, inIndex int) copyResult {
	in := src
	cross := src != nil
	if in == nil {
		in = e.out
	}
	node := in.Nodes[inLevel][inIndex]

	nodeID := node.Id
	if skipLevel == inLevel {
		nodeID = skipID
	} else if cross {
		nodeID = e.out.CloneMultiIds(nodeID, in.MultiIds)
	}

	switch node.Value.Kind {
	case ir.ValueUse:
		// imports are resolution-time artifacts, never materialised
		return copyResult{}

	case ir.ValueClass:
		if node.Value.Target.IsSingle(ir.IdSelf) {
			// a class subclassing Self recursively; copying stops here
			return copyResult{}
		}
		outStart := e.out.LevelLen(outLevel + 1)
		for i := 0; i < int(node.Value.Count); i++ {
			e.copyRecur(src, srcFile, skipID, skipLevel, inLevel+1, outLevel+1, int(node.Value.Start)+i)
		}
		if skipLevel != inLevel {
			target := node.Value.Target
			if cross {
				target = e.out.CloneMultiIds(target, in.MultiIds)
			}
			e.out.PushNode(outLevel, ir.Node{
				Token: node.Token,
				Id:    nodeID,
				Value: ir.ClassValue(target, outStart, e.out.LevelLen(outLevel+1)-outStart),
			})
		}
		return copyResult{isClass: true, class: node.Value.Target}

	case ir.ValueObject, ir.ValueArray, ir.ValueCall:
		outStart := e.out.LevelLen(outLevel + 1)
		for i := 0; i < int(node.Value.Count); i++ {
			e.copyRecur(src, srcFile, skipID, skipLevel, inLevel+1, outLevel+1, int(node.Value.Start)+i)
		}
		v := node.Value
		if v.Kind == ir.ValueCall && cross {
			v.Target = e.out.CloneMultiIds(v.Target, in.MultiIds)
		}
		v.Start = uint32(outStart)
		v.Count = uint32(e.out.LevelLen(outLevel+1) - outStart)
		e.out.PushNode(outLevel, ir.Node{Token: node.Token, Id: nodeID, Value: v})
		return copyResult{}

	case ir.ValueString:
		v := node.Value
		if cross {
			newStart := len(e.out.Strings)
			e.out.Strings = append(e.out.Strings, in.Strings[v.Start:v.Start+v.Count]...)
			v.Start = uint32(newStart)
		}
		e.out.PushNode(outLevel, ir.Node{Token: node.Token, Id: nodeID, Value: v})
		return copyResult{}

	case ir.ValueFn, ir.ValueVarDef:
		v := node.Value
		if cross {
			newTokenStart := len(e.out.Tokens)
			e.out.Tokens = append(e.out.Tokens, in.Tokens[v.TokenStart:v.TokenStart+v.TokenCount]...)
			newScopeStart := len(e.out.Scopes)
			e.cloneScope(in, srcFile, int(v.ScopeStart), int(v.ScopeCount))
			v.TokenStart = uint32(newTokenStart)
			v.ScopeStart = uint32(newScopeStart)
		}
		e.out.PushNode(outLevel, ir.Node{Token: node.Token, Id: nodeID, Value: v})
		return copyResult{}

	case ir.ValueResourceRef:
		v := node.Value
		if cross {
			v.Target = e.out.CloneMultiIds(v.Target, in.MultiIds)
		}
		e.out.PushNode(outLevel, ir.Node{Token: node.Token, Id: nodeID, Value: v})
		return copyResult{}

	default:
		// primitives and identifier references copy verbatim
		e.out.PushNode(outLevel, ir.Node{Token: node.Token, Id: nodeID, Value: node.Value})
		return copyResult{}
	}
}

// cloneScope copies a captured-scope run across documents. Local targets
// in the source become full pointers in the destination.
func (e *expander) cloneScope(in *ir.Document, srcFile ir.FileID, start, count int) {
	for i := 0; i < count; i++ {
		item := in.Scopes[start+i]
		if item.Target.IsLocal() {
			item.Target = ir.FullTarget(ir.FullPtr{File: srcFile, Local: item.Target.Local})
		}
		e.out.Scopes = append(e.out.Scopes, item)
	}
}
