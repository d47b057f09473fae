// Package opt implements the peephole/constant-folding optimization
// pass over arithmetic instructions.
package opt

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/vkomkov/ssair/compiler/ir"
)

// PeepholeOptimizer never removes an instruction: rewriting a
// definition D to a replacement R retargets every use of D onto R and
// leaves D in place with an empty use-list.
type PeepholeOptimizer struct {
	g *ir.Graph
	b *ir.Builder
}

func NewPeepholeOptimizer(g *ir.Graph) *PeepholeOptimizer {
	return &PeepholeOptimizer{g: g, b: ir.NewBuilder(g)}
}

func (p *PeepholeOptimizer) Run(ctx context.Context) {
	iterations := 0

	for {
		changed := false
		iterations++

		for _, bb := range p.g.Blocks() {
			for inst := bb.First(); inst != nil; inst = inst.Next {
				if !inst.HasUsers() && inst.Type != ir.VOID {
					continue
				}

				replacement := p.tryFold(inst)
				if replacement != nil && replacement != inst {
					replaceAllUses(p.g, inst, replacement)
					changed = true
				}
			}
		}

		if !changed {
			break
		}
	}

	tlog.SpanFromContext(ctx).Printw("peephole run", "iterations", iterations)
}

func (p *PeepholeOptimizer) tryFold(inst *ir.Instruction) *ir.Instruction {
	if !inst.Op.IsBinary() {
		return nil
	}

	lhs, rhs := inst.Inputs[0], inst.Inputs[1]
	lc, lok := asConstant(lhs)
	rc, rok := asConstant(rhs)

	p.b.SetInsertPointBefore(inst)

	switch inst.Op {
	case ir.OpAdd:
		switch {
		case lok && rok:
			return p.fold(inst.Type, lc+rc)
		case rok && rc == 0:
			return lhs
		case lok && lc == 0:
			return rhs
		case lhs == rhs:
			one, err := p.b.CreateConstant(inst.Type, 1)
			if err != nil {
				return nil
			}
			shl, err := p.b.CreateBinary(ir.OpShl, lhs, one)
			if err != nil {
				return nil
			}
			return shl
		case isNegationOf(rhs, lhs):
			return p.fold(inst.Type, 0)
		case isNegationOf(lhs, rhs):
			return p.fold(inst.Type, 0)
		}

	case ir.OpAnd:
		switch {
		case lok && rok:
			return p.fold(inst.Type, lc&rc)
		case rok && rc == 0:
			return rhs
		case lok && lc == 0:
			return lhs
		case lhs == rhs:
			return lhs
		case rok && rc == ^uint64(0):
			return lhs
		case lok && lc == ^uint64(0):
			return rhs
		}

	case ir.OpShl:
		switch {
		case lok && rok:
			return p.fold(inst.Type, lc<<rc)
		case rok && rc == 0:
			return lhs
		case lok && lc == 0:
			return lhs
		}
	}

	return nil
}

func (p *PeepholeOptimizer) fold(typ ir.Type, value uint64) *ir.Instruction {
	c, err := p.b.CreateConstant(typ, value)
	if err != nil {
		return nil
	}
	return c
}

func asConstant(inst *ir.Instruction) (uint64, bool) {
	if inst.Op != ir.OpConstant {
		return 0, false
	}
	return inst.ConstValue, true
}

// isNegationOf reports whether mul is Mul(base, -1), the shape
// Add(x, Mul(x,-1)) looks for.
func isNegationOf(mul, base *ir.Instruction) bool {
	if mul.Op != ir.OpMul || len(mul.Inputs) != 2 {
		return false
	}

	a, b := mul.Inputs[0], mul.Inputs[1]

	if c, ok := asConstant(b); ok && c == ^uint64(0) && a == base {
		return true
	}
	if c, ok := asConstant(a); ok && c == ^uint64(0) && b == base {
		return true
	}

	return false
}

func replaceAllUses(g *ir.Graph, def, r *ir.Instruction) {
	chain := def.ClearUsers()

	for u := chain; u != nil; u = u.NextUser() {
		u.Inst.Inputs[u.Index] = r
	}

	r.AppendUserChain(chain)
}
