package registry

import (
	"fmt"

	"github.com/peter-lyons-kehl/live-format/go-live/ir"
)

// resolveID resolves an identifier pack to a node location. The returned
// file is NoFile when the target lives in the document being expanded,
// otherwise the file of the imported document. outLevel/outStart bound
// the currently open class's own output span, which is what a leading
// Self segment resolves against.
func (e *expander) resolveID(pack ir.IdPack, token ir.TokenID, outLevel, outStart int) (ir.FileID, ir.LocalPtr, *Error) {
	span := e.reg.TokenSpan(token)

	switch pack.Kind {
	case ir.IdPackMulti:
		segs := e.raw.MultiSegs(pack)
		base := segs[0]
		rest := segs[1:]

		if base == ir.IdSelf {
			outCount := e.out.LevelLen(outLevel) - outStart
			found, err := e.out.ScanForMultiExpand(outLevel, outStart, outCount, rest, e.in)
			if err != nil {
				return ir.NoFile, ir.LocalPtr{}, &Error{
					Origin:  origin(),
					Span:    span,
					Message: fmt.Sprintf("%v in %s", err, pack.Format(e.in, e.raw.MultiIds)),
				}
			}
			return ir.NoFile, found, nil
		}
		if ir.IsBaseType(ir.SingleId(base)) {
			return ir.NoFile, ir.LocalPtr{}, &Error{
				Origin:  origin(),
				Span:    span,
				Message: fmt.Sprintf("cannot use base type %s as path head", e.in.Name(base)),
			}
		}

		target, ok := e.scopes.find(base)
		if !ok {
			return ir.NoFile, ir.LocalPtr{}, &Error{
				Origin:  origin(),
				Span:    span,
				Message: fmt.Sprintf("cannot find item on scope: %s of %s", e.in.Name(base), pack.Format(e.in, e.raw.MultiIds)),
			}
		}
		doc := e.out
		file := ir.NoFile
		if !target.IsLocal() {
			doc = e.reg.expanded[target.File]
			file = target.File
		}
		head := doc.NodeAt(target.Local)
		if head.Value.Kind != ir.ValueClass {
			return ir.NoFile, ir.LocalPtr{}, &Error{
				Origin:  origin(),
				Span:    span,
				Message: fmt.Sprintf("property is not a class: %s of %s", e.in.Name(base), pack.Format(e.in, e.raw.MultiIds)),
			}
		}
		found, err := doc.ScanForMultiExpand(target.Local.Level+1, int(head.Value.Start), int(head.Value.Count), rest, e.in)
		if err != nil {
			return ir.NoFile, ir.LocalPtr{}, &Error{
				Origin:  origin(),
				Span:    span,
				Message: fmt.Sprintf("%v in %s", err, pack.Format(e.in, e.raw.MultiIds)),
			}
		}
		return file, found, nil

	case ir.IdPackSingle:
		if !ir.IsBaseType(pack) {
			if target, ok := e.scopes.find(pack.Single); ok {
				if target.IsLocal() {
					return ir.NoFile, target.Local, nil
				}
				return target.File, target.Local, nil
			}
		}
	}

	return ir.NoFile, ir.LocalPtr{}, &Error{
		Origin:  origin(),
		Span:    span,
		Message: fmt.Sprintf("cannot find item on scope: %s", pack.Format(e.in, e.raw.MultiIds)),
	}
}
