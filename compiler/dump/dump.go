// Package dump is a read-only diagnostic printer over an ir.Graph. It
// only ever traverses the graph; it never mutates it.
package dump

import (
	"context"
	"strconv"
	"strings"

	"tlog.app/go/errors"

	"github.com/nikandfor/hacked/hfmt"

	"github.com/vkomkov/ssair/compiler/ir"
)

// Dump renders g as diagnostic text: arguments, then each block with
// its predecessors, instructions, and successors. Phi ids carry a "p"
// suffix.
func Dump(ctx context.Context, g *ir.Graph) ([]byte, error) {
	return dumpGraph(ctx, nil, g)
}

func dumpGraph(ctx context.Context, b []byte, g *ir.Graph) (_ []byte, err error) {
	b = append(b, "Function Arguments\n"...)

	for _, a := range g.Arguments() {
		b = hfmt.Appendf(b, "  %s: %v\n", instID(a), a.Type)
	}

	b = append(b, '\n')

	for _, bb := range g.Blocks() {
		b, err = dumpBlock(ctx, b, bb)
		if err != nil {
			return nil, errors.Wrap(err, "block %d", bb.ID)
		}
	}

	return b, nil
}

func dumpBlock(ctx context.Context, b []byte, bb *ir.BasicBlock) (_ []byte, err error) {
	b = hfmt.Appendf(b, "Block %d <- %v\n", bb.ID, blockIDs(bb.Preds))

	for inst := bb.First(); inst != nil; inst = inst.Next {
		b, err = dumpInstruction(b, inst)
		if err != nil {
			return nil, errors.Wrap(err, "inst %d", inst.ID)
		}
	}

	b = hfmt.Appendf(b, "  -> %v\n\n", blockIDs(bb.Succs))

	return b, nil
}

func dumpInstruction(b []byte, inst *ir.Instruction) (_ []byte, err error) {
	b = hfmt.Appendf(b, "  %s: %v %v(%s)", instID(inst), inst.Type, inst.Op, strings.Join(inputIDs(inst.Inputs), ", "))

	switch inst.Op {
	case ir.OpJump:
		b = hfmt.Appendf(b, " target=%d", inst.Target.ID)
	case ir.OpBranch:
		b = hfmt.Appendf(b, " true=%d false=%d", inst.TrueBlock.ID, inst.FalseBlock.ID)
	case ir.OpCmp:
		b = hfmt.Appendf(b, " %v", inst.Cond)
	case ir.OpConstant:
		b = hfmt.Appendf(b, " value=%d", inst.ConstValue)
	case ir.OpArgument:
		b = hfmt.Appendf(b, " arg=%d", inst.ArgIndex)
	}

	if !inst.IsTerminator() {
		b = hfmt.Appendf(b, " users=%v", userIDs(inst))
	}

	b = append(b, '\n')

	return b, nil
}

func instID(inst *ir.Instruction) string {
	s := strconv.FormatUint(uint64(inst.ID), 10)
	if inst.IsPhi() {
		return s + "p"
	}
	return s
}

func blockIDs(bs []*ir.BasicBlock) []uint32 {
	ids := make([]uint32, len(bs))
	for i, b := range bs {
		ids[i] = b.ID
	}
	return ids
}

func inputIDs(ins []*ir.Instruction) []string {
	ids := make([]string, len(ins))
	for i, in := range ins {
		if in == nil {
			ids[i] = "_"
			continue
		}
		ids[i] = instID(in)
	}
	return ids
}

func userIDs(inst *ir.Instruction) []string {
	var ids []string
	for u := inst.Users(); u != nil; u = u.NextUser() {
		ids = append(ids, instID(u.Inst))
	}
	return ids
}
