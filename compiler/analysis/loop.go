package analysis

import "github.com/vkomkov/ssair/compiler/ir"

// Loop is a natural loop discovered from one or more back edges
// sharing the same header, or the synthetic root loop that owns every
// block and loop not otherwise enclosed.
type Loop struct {
	Header  *ir.BasicBlock // nil for the root loop
	Latches []*ir.BasicBlock

	Blocks map[uint32]*ir.BasicBlock

	Reducible bool

	Outer *Loop
	Inner []*Loop
}

func (l *Loop) IsRoot() bool { return l.Header == nil }

func (l *Loop) Countable() bool {
	return l.Reducible && len(l.Latches) == 1
}

func (l *Loop) Contains(b *ir.BasicBlock) bool {
	_, ok := l.Blocks[b.ID]
	return ok
}
