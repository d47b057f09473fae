package analysis

import (
	"context"

	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/vkomkov/ssair/compiler/ir"
	"github.com/vkomkov/ssair/compiler/set"
)

// GraphAnalyzer computes RPO numbering and the immediate-dominator
// tree over a Graph's control-flow structure.
type GraphAnalyzer struct {
	g *ir.Graph

	rpo       []*ir.BasicBlock
	rpoNumber map[uint32]int
	idom      map[uint32]*ir.BasicBlock
}

func NewGraphAnalyzer(g *ir.Graph) *GraphAnalyzer {
	return &GraphAnalyzer{g: g}
}

// ComputeRPO visits successors in the order stored in each block's
// successor list (Branch: true-target then false-target; Jump: the
// sole target).
func (a *GraphAnalyzer) ComputeRPO(ctx context.Context) {
	a.rpo = nil
	a.rpoNumber = nil

	entry := a.g.Entry()
	if entry == nil {
		return
	}

	visited := set.MakeBits[int](0)
	post := make([]*ir.BasicBlock, 0, len(a.g.Blocks()))

	var visit func(b *ir.BasicBlock)
	visit = func(b *ir.BasicBlock) {
		visited.Set(int(b.ID))

		for _, s := range b.Succs {
			if !visited.IsSet(int(s.ID)) {
				visit(s)
			}
		}

		post = append(post, b)
	}
	visit(entry)

	a.rpo = make([]*ir.BasicBlock, len(post))
	a.rpoNumber = make(map[uint32]int, len(post))

	for i, b := range post {
		idx := len(post) - 1 - i
		a.rpo[idx] = b
		a.rpoNumber[b.ID] = idx
	}

	tlog.SpanFromContext(ctx).Printw("compute rpo", "blocks", len(a.g.Blocks()), "reachable", len(a.rpo), "from", loc.Caller(1))
}

func (a *GraphAnalyzer) RPO() []*ir.BasicBlock { return a.rpo }

func (a *GraphAnalyzer) RPONumber(b *ir.BasicBlock) (int, bool) {
	n, ok := a.rpoNumber[b.ID]
	return n, ok
}
