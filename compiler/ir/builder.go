package ir

import (
	"tlog.app/go/errors"
)

// Builder is the only legal way to create instructions. No algebraic
// simplification happens here, folding is opt's job.
type Builder struct {
	g    *Graph
	cur  *BasicBlock
	mark *Instruction
}

func NewBuilder(g *Graph) *Builder {
	return &Builder{g: g}
}

func (bd *Builder) SetInsertPoint(b *BasicBlock) {
	bd.cur = b
	bd.mark = nil
}

// SetInsertPointBefore splices subsequent instructions in ahead of
// mark instead of appending at the block's tail.
func (bd *Builder) SetInsertPointBefore(mark *Instruction) {
	bd.cur = mark.Block
	bd.mark = mark
}

func (bd *Builder) requireCursor() (*BasicBlock, error) {
	if bd.cur == nil {
		return nil, errors.Wrap(ErrNoInsertionPoint, "builder")
	}
	return bd.cur, nil
}

func (bd *Builder) place(b *BasicBlock, inst *Instruction) {
	if bd.mark != nil {
		b.insertBefore(bd.mark, inst)
		return
	}
	b.pushBack(inst)
}

func (bd *Builder) CreateConstant(typ Type, value uint64) (*Instruction, error) {
	b, err := bd.requireCursor()
	if err != nil {
		return nil, err
	}

	inst := bd.g.newInstruction(OpConstant, typ)
	inst.ConstValue = value
	bd.place(b, inst)

	return inst, nil
}

// CreateArgument does not place inst in any block.
func (bd *Builder) CreateArgument(typ Type) *Instruction {
	inst := bd.g.newInstruction(OpArgument, typ)
	inst.ArgIndex = len(bd.g.args)
	bd.g.args = append(bd.g.args, inst)

	return inst
}

func (bd *Builder) CreateBinary(op Opcode, lhs, rhs *Instruction) (*Instruction, error) {
	b, err := bd.requireCursor()
	if err != nil {
		return nil, err
	}

	if !op.IsBinary() {
		return nil, errors.Wrap(ErrInvariantViolation, "%v is not a binary opcode", op)
	}

	if lhs.Type != rhs.Type {
		return nil, errors.Wrap(ErrInvariantViolation, "binary operand type mismatch: %v vs %v", lhs.Type, rhs.Type)
	}

	inst := bd.g.newInstruction(op, lhs.Type)
	inst.Inputs = []*Instruction{lhs, rhs}
	bd.place(b, inst)

	bd.g.RegisterUse(lhs, inst, 0)
	bd.g.RegisterUse(rhs, inst, 1)

	return inst, nil
}

func (bd *Builder) CreateCompare(cc ConditionCode, lhs, rhs *Instruction) (*Instruction, error) {
	b, err := bd.requireCursor()
	if err != nil {
		return nil, err
	}

	if lhs.Type != rhs.Type {
		return nil, errors.Wrap(ErrInvariantViolation, "compare operand type mismatch: %v vs %v", lhs.Type, rhs.Type)
	}

	inst := bd.g.newInstruction(OpCmp, BOOL)
	inst.Cond = cc
	inst.Inputs = []*Instruction{lhs, rhs}
	bd.place(b, inst)

	bd.g.RegisterUse(lhs, inst, 0)
	bd.g.RegisterUse(rhs, inst, 1)

	return inst, nil
}

func (bd *Builder) CreateCast(to Type, from *Instruction) (*Instruction, error) {
	b, err := bd.requireCursor()
	if err != nil {
		return nil, err
	}

	inst := bd.g.newInstruction(OpCast, to)
	inst.Inputs = []*Instruction{from}
	bd.place(b, inst)

	bd.g.RegisterUse(from, inst, 0)

	return inst, nil
}

// CreatePhi always pushes to the front, so Phis precede all non-Phi
// instructions in the block.
func (bd *Builder) CreatePhi(typ Type) (*Instruction, error) {
	b, err := bd.requireCursor()
	if err != nil {
		return nil, err
	}

	inst := bd.g.newInstruction(OpPhi, typ)
	b.pushFront(inst)

	return inst, nil
}

func (bd *Builder) AddIncoming(phi, value *Instruction, pred *BasicBlock) error {
	if phi.Block == nil {
		return errors.Wrap(ErrInvalidPhiOperand, "phi has no owning block")
	}

	idx := -1
	for i, p := range phi.Block.Preds {
		if p == pred {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.Wrap(ErrInvalidPhiOperand, "block %d is not a predecessor of block %d", pred.ID, phi.Block.ID)
	}

	for len(phi.Inputs) <= idx {
		phi.Inputs = append(phi.Inputs, nil)
	}

	if old := phi.Inputs[idx]; old != nil {
		old.removeUser(phi, idx)
	}

	phi.Inputs[idx] = value
	bd.g.RegisterUse(value, phi, idx)

	return nil
}

func (bd *Builder) CreateJump(target *BasicBlock) (*Instruction, error) {
	b, err := bd.requireCursor()
	if err != nil {
		return nil, err
	}

	inst := bd.g.newInstruction(OpJump, VOID)
	inst.Target = target
	bd.place(b, inst)

	b.addSucc(target)

	return inst, nil
}

// CreateBranch's successors are always [trueBB, falseBB].
func (bd *Builder) CreateBranch(cond *Instruction, trueBB, falseBB *BasicBlock) (*Instruction, error) {
	b, err := bd.requireCursor()
	if err != nil {
		return nil, err
	}

	if cond.Type != BOOL {
		return nil, errors.Wrap(ErrInvariantViolation, "branch condition must be BOOL, got %v", cond.Type)
	}

	inst := bd.g.newInstruction(OpBranch, VOID)
	inst.TrueBlock = trueBB
	inst.FalseBlock = falseBB
	inst.Inputs = []*Instruction{cond}
	bd.place(b, inst)

	bd.g.RegisterUse(cond, inst, 0)

	b.addSucc(trueBB)
	b.addSucc(falseBB)

	return inst, nil
}

// CreateRet accepts a nil value for a value-less return.
func (bd *Builder) CreateRet(value *Instruction) (*Instruction, error) {
	b, err := bd.requireCursor()
	if err != nil {
		return nil, err
	}

	inst := bd.g.newInstruction(OpRet, VOID)
	if value != nil {
		inst.Inputs = []*Instruction{value}
		bd.g.RegisterUse(value, inst, 0)
	}
	bd.place(b, inst)

	return inst, nil
}
