package analysis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkomkov/ssair/compiler/analysis"
	"github.com/vkomkov/ssair/compiler/ir"
)

func newBoolConst(t *testing.T, b *ir.Builder) *ir.Instruction {
	c, err := b.CreateConstant(ir.BOOL, 1)
	require.NoError(t, err)
	return c
}

// TestSimpleLoop ports spec scenario S3: A->B, B->{C,D}, D->E, E->B.
func TestSimpleLoop(t *testing.T) {
	g := ir.NewGraph()
	bd := ir.NewBuilder(g)

	A := g.CreateBasicBlock()
	B := g.CreateBasicBlock()
	C := g.CreateBasicBlock()
	D := g.CreateBasicBlock()
	E := g.CreateBasicBlock()

	bd.SetInsertPoint(A)
	_, err := bd.CreateJump(B)
	require.NoError(t, err)

	bd.SetInsertPoint(B)
	cond := newBoolConst(t, bd)
	_, err = bd.CreateBranch(cond, C, D)
	require.NoError(t, err)

	bd.SetInsertPoint(C)
	_, err = bd.CreateRet(nil)
	require.NoError(t, err)

	bd.SetInsertPoint(D)
	_, err = bd.CreateJump(E)
	require.NoError(t, err)

	bd.SetInsertPoint(E)
	_, err = bd.CreateJump(B)
	require.NoError(t, err)

	la := analysis.NewLoopAnalyzer(g)
	la.Analyze(context.Background())

	loops := la.Loops()
	require.Len(t, loops, 1)

	l := loops[0]
	assert.Equal(t, B, l.Header)
	assert.Equal(t, []*ir.BasicBlock{E}, l.Latches)
	assert.True(t, l.Reducible)
	assert.True(t, l.Countable())
	assert.ElementsMatch(t, []*ir.BasicBlock{B, D, E}, blockValues(l.Blocks))
	assert.True(t, la.IsLoopHeader(B))
	assert.False(t, la.IsLoopHeader(C))
}

// TestNestedLoop ports spec scenario S4: A->B, B->C, C->{D,E}, D->{E,F}, F->B.
func TestNestedLoop(t *testing.T) {
	g := ir.NewGraph()
	bd := ir.NewBuilder(g)

	A := g.CreateBasicBlock()
	B := g.CreateBasicBlock()
	C := g.CreateBasicBlock()
	D := g.CreateBasicBlock()
	E := g.CreateBasicBlock()
	F := g.CreateBasicBlock()

	bd.SetInsertPoint(A)
	_, err := bd.CreateJump(B)
	require.NoError(t, err)

	bd.SetInsertPoint(B)
	_, err = bd.CreateJump(C)
	require.NoError(t, err)

	bd.SetInsertPoint(C)
	cond1 := newBoolConst(t, bd)
	_, err = bd.CreateBranch(cond1, D, E)
	require.NoError(t, err)

	bd.SetInsertPoint(D)
	cond2 := newBoolConst(t, bd)
	_, err = bd.CreateBranch(cond2, E, F)
	require.NoError(t, err)

	bd.SetInsertPoint(E)
	_, err = bd.CreateRet(nil)
	require.NoError(t, err)

	bd.SetInsertPoint(F)
	_, err = bd.CreateJump(B)
	require.NoError(t, err)

	la := analysis.NewLoopAnalyzer(g)
	la.Analyze(context.Background())

	loops := la.Loops()
	require.Len(t, loops, 1)

	l := loops[0]
	assert.Equal(t, B, l.Header)
	assert.Equal(t, []*ir.BasicBlock{F}, l.Latches)
	assert.True(t, l.Reducible)
	assert.True(t, l.Countable())
	assert.ElementsMatch(t, []*ir.BasicBlock{B, C, D, F}, blockValues(l.Blocks))
}

// TestTwoSiblingLoops ports spec scenario S5: two reducible loops
// headed at B and C, siblings directly under the root loop.
func TestTwoSiblingLoops(t *testing.T) {
	g := ir.NewGraph()
	bd := ir.NewBuilder(g)

	A := g.CreateBasicBlock()
	B := g.CreateBasicBlock()
	D := g.CreateBasicBlock()
	C := g.CreateBasicBlock()
	E := g.CreateBasicBlock()
	Exit := g.CreateBasicBlock()

	bd.SetInsertPoint(A)
	_, err := bd.CreateJump(B)
	require.NoError(t, err)

	bd.SetInsertPoint(B)
	cond1 := newBoolConst(t, bd)
	_, err = bd.CreateBranch(cond1, D, C)
	require.NoError(t, err)

	bd.SetInsertPoint(D)
	_, err = bd.CreateJump(B)
	require.NoError(t, err)

	bd.SetInsertPoint(C)
	cond2 := newBoolConst(t, bd)
	_, err = bd.CreateBranch(cond2, E, Exit)
	require.NoError(t, err)

	bd.SetInsertPoint(E)
	_, err = bd.CreateJump(C)
	require.NoError(t, err)

	bd.SetInsertPoint(Exit)
	_, err = bd.CreateRet(nil)
	require.NoError(t, err)

	la := analysis.NewLoopAnalyzer(g)
	la.Analyze(context.Background())

	loops := la.Loops()
	require.Len(t, loops, 2)

	var loopB, loopC *analysis.Loop
	for _, l := range loops {
		switch l.Header {
		case B:
			loopB = l
		case C:
			loopC = l
		}
	}
	require.NotNil(t, loopB)
	require.NotNil(t, loopC)

	assert.False(t, loopB.Contains(C))
	assert.False(t, loopC.Contains(B))
	assert.Equal(t, la.RootLoop(), loopB.Outer)
	assert.Equal(t, la.RootLoop(), loopC.Outer)
}

func TestNoBackEdgesNoLoops(t *testing.T) {
	g := ir.NewGraph()
	bd := ir.NewBuilder(g)

	A := g.CreateBasicBlock()
	B := g.CreateBasicBlock()

	bd.SetInsertPoint(A)
	_, err := bd.CreateJump(B)
	require.NoError(t, err)

	bd.SetInsertPoint(B)
	_, err = bd.CreateRet(nil)
	require.NoError(t, err)

	la := analysis.NewLoopAnalyzer(g)
	la.Analyze(context.Background())

	assert.Empty(t, la.Loops())
	assert.Equal(t, la.RootLoop(), la.LoopForBlock(A))
	assert.Empty(t, la.LoopsForBlock(A))
}

func blockValues(m map[uint32]*ir.BasicBlock) []*ir.BasicBlock {
	out := make([]*ir.BasicBlock, 0, len(m))
	for _, b := range m {
		out = append(out, b)
	}
	return out
}
