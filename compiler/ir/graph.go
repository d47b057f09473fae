package ir

// Graph exclusively owns every BasicBlock, Instruction, and User
// created against it, through growable pointer slices — appending
// never invalidates a pointer handed out earlier.
type Graph struct {
	blocks       []*BasicBlock
	instructions []*Instruction
	users        []*User
	args         []*Instruction

	nextBlockID uint32
	nextInstID  uint32

	entry *BasicBlock
}

func NewGraph() *Graph {
	return &Graph{}
}

// CreateBasicBlock makes the first block ever created the entry block.
func (g *Graph) CreateBasicBlock() *BasicBlock {
	b := &BasicBlock{ID: g.nextBlockID, Graph: g}
	g.nextBlockID++

	g.blocks = append(g.blocks, b)

	if g.entry == nil {
		g.entry = b
	}

	return b
}

func (g *Graph) Blocks() []*BasicBlock { return g.blocks }

func (g *Graph) Entry() *BasicBlock { return g.entry }

func (g *Graph) Arguments() []*Instruction { return g.args }

func (g *Graph) newInstruction(op Opcode, typ Type) *Instruction {
	inst := &Instruction{ID: g.nextInstID, Op: op, Type: typ}
	g.nextInstID++

	g.instructions = append(g.instructions, inst)

	return inst
}

// RegisterUse is a no-op when def is nil, e.g. a value-less Return.
func (g *Graph) RegisterUse(def, user *Instruction, index int) *User {
	if def == nil {
		return nil
	}

	u := def.addUser(user, index)
	g.users = append(g.users, u)

	return u
}
