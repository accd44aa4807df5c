package registry

import "github.com/peter-lyons-kehl/live-format/go-live/ir"

// scopeStack holds the nested lexical frames built during expansion of
// one document: frame 0 is module scope, one frame per open class above
// it. Lookup scans frames innermost to outermost and items within a
// frame last-inserted first, so the most recent binding shadows.
type scopeStack struct {
	stack [][]ir.ScopeItem
}

func newScopeStack() *scopeStack {
	return &scopeStack{stack: make([][]ir.ScopeItem, 1)}
}

func (s *scopeStack) push() {
	s.stack = append(s.stack, nil)
}

func (s *scopeStack) pop() {
	s.stack = s.stack[:len(s.stack)-1]
}

// bind adds a binding at a frame level; output levels shifted past the
// open frames (multi-segment declarations) bind into the innermost frame.
func (s *scopeStack) bind(level int, item ir.ScopeItem) {
	if level >= len(s.stack) {
		level = len(s.stack) - 1
	}
	s.stack[level] = append(s.stack[level], item)
}

func (s *scopeStack) find(id ir.Id) (ir.ScopeTarget, bool) {
	for fi := len(s.stack) - 1; fi >= 0; fi-- {
		frame := s.stack[fi]
		for i := len(frame) - 1; i >= 0; i-- {
			if frame[i].Id == id {
				return frame[i].Target, true
			}
		}
	}
	return ir.ScopeTarget{}, false
}

// capture flattens the whole stack into a document's scope table and
// returns the span, for Fn/VarDef nodes that carry their lexical
// environment with them.
func (s *scopeStack) capture(doc *ir.Document) (start, count int) {
	start = len(doc.Scopes)
	for _, frame := range s.stack {
		doc.Scopes = append(doc.Scopes, frame...)
	}
	return start, len(doc.Scopes) - start
}
