package registry

import (
	"github.com/peter-lyons-kehl/live-format/go-live/debug"
	"github.com/peter-lyons-kehl/live-format/go-live/ir"
)

// updateDeps recomputes cm's dependency set from the document's use
// declarations and repairs the processing order so that every import
// precedes cm. The repair is online and best-effort: it only moves the
// entries the new edges require, it does not re-sort from scratch.
// Imports naming unregistered crate-modules are not errors here; they
// surface during expansion.
func (r *Registry) updateDeps(cm ir.CrateModule, selfCrate ir.Id, doc *ir.Document) {
	if r.orderIndex(cm) < 0 {
		r.depOrder = append(r.depOrder, depEntry{cm: cm})
	} else {
		r.markDirty(cm)
	}

	deps := make(map[ir.CrateModule]struct{})
	for _, nodes := range doc.Nodes {
		for i := range nodes {
			node := &nodes[i]
			if node.Value.Kind != ir.ValueUse {
				continue
			}
			dep := doc.FetchCrateModule(node.Value.CrateModule, selfCrate)
			deps[dep] = struct{}{}

			selfIdx := r.orderIndex(cm)
			depIdx := r.orderIndex(dep)
			switch {
			case depIdx < 0:
				// unseen import goes immediately before the importer
				r.insertOrder(selfIdx, depEntry{cm: dep, token: node.Token})
			case depIdx > selfIdx:
				// dependency must precede dependent
				entry := r.depOrder[depIdx]
				entry.token = node.Token
				r.depOrder = append(r.depOrder[:depIdx], r.depOrder[depIdx+1:]...)
				r.insertOrder(selfIdx, entry)
			}
		}
	}
	r.depGraph[cm] = deps
}

func (r *Registry) orderIndex(cm ir.CrateModule) int {
	for i := range r.depOrder {
		if r.depOrder[i].cm == cm {
			return i
		}
	}
	return -1
}

func (r *Registry) insertOrder(at int, e depEntry) {
	r.depOrder = append(r.depOrder, depEntry{})
	copy(r.depOrder[at+1:], r.depOrder[at:])
	r.depOrder[at] = e
}

// markDirty flags cm's expanded document for recompilation and
// propagates breadth-first over the reverse dependency graph. The
// visited set keeps dependency cycles from looping; each module is
// marked exactly once per propagating change.
func (r *Registry) markDirty(cm ir.CrateModule) {
	visited := map[ir.CrateModule]struct{}{cm: {}}
	queue := []ir.CrateModule{cm}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if fileID, ok := r.crateModuleToFile[cur]; ok {
			r.expanded[fileID].Recompile = true
			if debug.Deps() {
				debug.Logf("dirty %s (file %d)\n", cur.Format(r.interner), fileID)
			}
		}
		for dependent, deps := range r.depGraph {
			if _, ok := deps[cur]; !ok {
				continue
			}
			if _, seen := visited[dependent]; seen {
				continue
			}
			visited[dependent] = struct{}{}
			queue = append(queue, dependent)
		}
	}
}

// DepOrder returns the current processing order of crate-modules.
func (r *Registry) DepOrder() []ir.CrateModule {
	out := make([]ir.CrateModule, len(r.depOrder))
	for i := range r.depOrder {
		out[i] = r.depOrder[i].cm
	}
	return out
}

// DepsOf returns the dependency set of a crate-module.
func (r *Registry) DepsOf(cm ir.CrateModule) []ir.CrateModule {
	var out []ir.CrateModule
	for dep := range r.depGraph[cm] {
		out = append(out, dep)
	}
	return out
}
