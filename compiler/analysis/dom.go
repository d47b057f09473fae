package analysis

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/vkomkov/ssair/compiler/ir"
)

// BuildDominatorTree computes each block's immediate dominator using
// the Cooper/Harvey/Kennedy iterative two-finger walk. Requires
// ComputeRPO to have already run.
func (a *GraphAnalyzer) BuildDominatorTree(ctx context.Context) {
	a.idom = nil

	if len(a.rpo) == 0 {
		return
	}

	entry := a.rpo[0]

	idom := make(map[uint32]*ir.BasicBlock, len(a.rpo))
	idom[entry.ID] = entry

	for changed := true; changed; {
		changed = false

		for _, b := range a.rpo[1:] {
			var newIdom *ir.BasicBlock

			for _, p := range b.Preds {
				if idom[p.ID] == nil {
					continue
				}

				if newIdom == nil {
					newIdom = p
					continue
				}

				newIdom = a.intersect(idom, newIdom, p)
			}

			if newIdom != nil && idom[b.ID] != newIdom {
				idom[b.ID] = newIdom
				changed = true
			}
		}
	}

	a.idom = idom

	tlog.SpanFromContext(ctx).Printw("build dominator tree", "blocks", len(a.rpo))
}

func (a *GraphAnalyzer) intersect(idom map[uint32]*ir.BasicBlock, x, y *ir.BasicBlock) *ir.BasicBlock {
	for x != y {
		for a.rpoNumber[x.ID] > a.rpoNumber[y.ID] {
			x = idom[x.ID]
		}
		for a.rpoNumber[y.ID] > a.rpoNumber[x.ID] {
			y = idom[y.ID]
		}
	}

	return x
}

// Idom returns nil for the entry block, even though internally
// idom(entry) = entry.
func (a *GraphAnalyzer) Idom(b *ir.BasicBlock) *ir.BasicBlock {
	if a.idom == nil {
		return nil
	}

	if len(a.rpo) > 0 && b == a.rpo[0] {
		return nil
	}

	return a.idom[b.ID]
}

// Dominates is reflexive: Dominates(x, x) is true for any reached x.
func (a *GraphAnalyzer) Dominates(x, y *ir.BasicBlock) bool {
	if a.idom == nil {
		return x == y
	}

	for b := y; b != nil; {
		if b == x {
			return true
		}

		next, ok := a.idom[b.ID]
		if !ok || next == nil {
			return false
		}
		if next == b {
			return false
		}

		b = next
	}

	return false
}
