package ir

// User ties a definition to the (user instruction, input index) site
// that references it.
type User struct {
	Inst  *Instruction
	Index int
	next  *User
}

// Instruction is a tagged variant over every instruction kind, keyed
// by Op. Only the fields relevant to Op are meaningful.
type Instruction struct {
	ID    uint32
	Op    Opcode
	Type  Type
	Block *BasicBlock

	Prev, Next *Instruction

	Inputs []*Instruction
	users  *User

	ConstValue uint64        // Constant
	ArgIndex   int           // Argument
	Cond       ConditionCode // Compare
	Target     *BasicBlock   // Jump
	TrueBlock  *BasicBlock   // Branch
	FalseBlock *BasicBlock   // Branch
}

func (i *Instruction) IsPhi() bool { return i.Op == OpPhi }

func (i *Instruction) IsTerminator() bool { return i.Op.isTerminator() }

func (i *Instruction) Users() *User { return i.users }

func (u *User) NextUser() *User { return u.next }

func (i *Instruction) HasUsers() bool { return i.users != nil }

func (i *Instruction) addUser(user *Instruction, index int) *User {
	u := &User{Inst: user, Index: index, next: i.users}
	i.users = u
	return u
}

func (i *Instruction) removeUser(user *Instruction, index int) {
	var prev *User
	for u := i.users; u != nil; u = u.next {
		if u.Inst == user && u.Index == index {
			if prev == nil {
				i.users = u.next
			} else {
				prev.next = u.next
			}
			return
		}
		prev = u
	}
}

// ClearUsers detaches the whole use-list. Used by opt when retargeting
// an entire chain onto a replacement.
func (i *Instruction) ClearUsers() *User {
	head := i.users
	i.users = nil
	return head
}

func (i *Instruction) AppendUserChain(head *User) {
	if head == nil {
		return
	}
	tail := head
	for tail.next != nil {
		tail = tail.next
	}
	tail.next = i.users
	i.users = head
}
