package analysis

import (
	"context"
	"sort"

	"tlog.app/go/tlog"

	"github.com/vkomkov/ssair/compiler/ir"
	"github.com/vkomkov/ssair/compiler/set"
)

// LoopAnalyzer discovers natural loops from back edges and builds the
// loop nest tree. It owns a GraphAnalyzer for the dominance queries
// reducibility needs.
type LoopAnalyzer struct {
	g   *ir.Graph
	dom *GraphAnalyzer

	loops     []*Loop
	root      *Loop
	innermost map[uint32]*Loop
	headers   map[uint32]*Loop
}

type backEdge struct {
	from, to *ir.BasicBlock
}

func NewLoopAnalyzer(g *ir.Graph) *LoopAnalyzer {
	return &LoopAnalyzer{g: g, dom: NewGraphAnalyzer(g)}
}

func (la *LoopAnalyzer) Analyze(ctx context.Context) {
	la.dom.ComputeRPO(ctx)
	la.dom.BuildDominatorTree(ctx)

	edges := la.findBackEdges()
	la.buildLoops(edges)
	la.buildLoopTree()

	tlog.SpanFromContext(ctx).Printw("loop analysis", "back_edges", len(edges), "loops", len(la.loops))
}

// findBackEdges DFS's from the entry block with an on-stack set; an
// edge (u, v) where v is currently on the stack is a back edge.
func (la *LoopAnalyzer) findBackEdges() []backEdge {
	entry := la.g.Entry()
	if entry == nil {
		return nil
	}

	visited := set.MakeBits[int](0)
	onStack := set.MakeBits[int](0)

	var edges []backEdge

	var visit func(b *ir.BasicBlock)
	visit = func(b *ir.BasicBlock) {
		visited.Set(int(b.ID))
		onStack.Set(int(b.ID))

		for _, s := range b.Succs {
			if onStack.IsSet(int(s.ID)) {
				edges = append(edges, backEdge{from: b, to: s})
				continue
			}
			if !visited.IsSet(int(s.ID)) {
				visit(s)
			}
		}

		onStack.Clear(int(b.ID))
	}
	visit(entry)

	return edges
}

func (la *LoopAnalyzer) buildLoops(edges []backEdge) {
	la.loops = nil
	byHeader := map[uint32]*Loop{}

	for _, e := range edges {
		l, ok := byHeader[e.to.ID]
		if !ok {
			l = &Loop{Header: e.to, Reducible: true}
			byHeader[e.to.ID] = l
			la.loops = append(la.loops, l)
		}

		l.Latches = append(l.Latches, e.from)

		if !la.dom.Dominates(l.Header, e.from) {
			l.Reducible = false
		}
	}

	for _, l := range la.loops {
		if l.Reducible {
			la.populateReducible(l)
		} else {
			la.populateIrreducible(l)
		}
	}
}

// populateReducible walks predecessors backward from each latch,
// adding any block dominated by the header, stopping at the header.
func (la *LoopAnalyzer) populateReducible(l *Loop) {
	blocks := map[uint32]*ir.BasicBlock{l.Header.ID: l.Header}

	var worklist []*ir.BasicBlock
	for _, latch := range l.Latches {
		if latch.ID == l.Header.ID {
			continue
		}
		if _, ok := blocks[latch.ID]; !ok {
			blocks[latch.ID] = latch
			worklist = append(worklist, latch)
		}
	}

	for len(worklist) > 0 {
		b := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		for _, p := range b.Preds {
			if p.ID == l.Header.ID {
				continue
			}
			if _, ok := blocks[p.ID]; ok {
				continue
			}
			if !la.dom.Dominates(l.Header, p) {
				continue
			}

			blocks[p.ID] = p
			worklist = append(worklist, p)
		}
	}

	l.Blocks = blocks
}

// populateIrreducible records only the header and latches.
func (la *LoopAnalyzer) populateIrreducible(l *Loop) {
	blocks := map[uint32]*ir.BasicBlock{l.Header.ID: l.Header}
	for _, latch := range l.Latches {
		blocks[latch.ID] = latch
	}
	l.Blocks = blocks
}

func (la *LoopAnalyzer) buildLoopTree() {
	la.root = &Loop{}
	la.headers = make(map[uint32]*Loop, len(la.loops))

	for _, l := range la.loops {
		la.headers[l.Header.ID] = l
	}

	for _, l := range la.loops {
		var best *Loop

		for _, other := range la.loops {
			if other == l {
				continue
			}
			if _, ok := other.Blocks[l.Header.ID]; !ok {
				continue
			}

			switch {
			case best == nil:
				best = other
			case len(other.Blocks) < len(best.Blocks):
				best = other
			case len(other.Blocks) == len(best.Blocks):
				if _, ok := best.Blocks[other.Header.ID]; ok {
					best = other
				}
			}
		}

		if best == nil {
			best = la.root
		}

		l.Outer = best
		best.Inner = append(best.Inner, l)
	}

	rootBlocks := map[uint32]*ir.BasicBlock{}
	for _, b := range la.g.Blocks() {
		inAny := false
		for _, l := range la.loops {
			if _, ok := l.Blocks[b.ID]; ok {
				inAny = true
				break
			}
		}
		if !inAny {
			rootBlocks[b.ID] = b
		}
	}
	la.root.Blocks = rootBlocks

	sorted := make([]*Loop, len(la.loops))
	copy(sorted, la.loops)
	sort.Slice(sorted, func(i, j int) bool {
		return len(sorted[i].Blocks) < len(sorted[j].Blocks)
	})

	la.innermost = map[uint32]*Loop{}
	for _, l := range sorted {
		for id := range l.Blocks {
			if _, ok := la.innermost[id]; !ok {
				la.innermost[id] = l
			}
		}
	}

	for _, b := range la.g.Blocks() {
		if _, ok := la.innermost[b.ID]; !ok {
			la.innermost[b.ID] = la.root
		}
	}
}

func (la *LoopAnalyzer) Loops() []*Loop { return la.loops }

func (la *LoopAnalyzer) RootLoop() *Loop { return la.root }

func (la *LoopAnalyzer) LoopForBlock(b *ir.BasicBlock) *Loop {
	if la.innermost == nil {
		return nil
	}
	return la.innermost[b.ID]
}

func (la *LoopAnalyzer) LoopsForBlock(b *ir.BasicBlock) []*Loop {
	l := la.LoopForBlock(b)

	var chain []*Loop
	for l != nil && l != la.root {
		chain = append(chain, l)
		l = l.Outer
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	return chain
}

func (la *LoopAnalyzer) IsLoopHeader(b *ir.BasicBlock) bool {
	_, ok := la.headers[b.ID]
	return ok
}
