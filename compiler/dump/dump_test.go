package dump_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkomkov/ssair/compiler/dump"
	"github.com/vkomkov/ssair/compiler/ir"
)

func TestDumpValuelessAndValuedRet(t *testing.T) {
	g := ir.NewGraph()
	bd := ir.NewBuilder(g)

	a := g.CreateBasicBlock()
	b := g.CreateBasicBlock()

	bd.SetInsertPoint(a)
	_, err := bd.CreateRet(nil)
	require.NoError(t, err)

	bd.SetInsertPoint(b)
	v, err := bd.CreateConstant(ir.U32, 1)
	require.NoError(t, err)
	_, err = bd.CreateRet(v)
	require.NoError(t, err)

	out, err := dump.Dump(context.Background(), g)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "Function Arguments")
	assert.Contains(t, text, "Ret()")
	assert.Contains(t, text, "value=1")
}

func TestDumpPhiHasSuffixedID(t *testing.T) {
	g := ir.NewGraph()
	bd := ir.NewBuilder(g)

	entry := g.CreateBasicBlock()
	loop := g.CreateBasicBlock()

	bd.SetInsertPoint(entry)
	c, err := bd.CreateConstant(ir.U64, 0)
	require.NoError(t, err)
	_, err = bd.CreateJump(loop)
	require.NoError(t, err)

	bd.SetInsertPoint(loop)
	phi, err := bd.CreatePhi(ir.U64)
	require.NoError(t, err)
	require.NoError(t, bd.AddIncoming(phi, c, entry))
	_, err = bd.CreateRet(phi)
	require.NoError(t, err)

	out, err := dump.Dump(context.Background(), g)
	require.NoError(t, err)

	lines := strings.Split(string(out), "\n")
	found := false
	for _, l := range lines {
		if strings.Contains(l, "Phi") {
			found = true
			assert.Regexp(t, `^\s*\d+p:`, l)
		}
	}
	assert.True(t, found, "expected a Phi line in dump output")
}

func TestDumpArgumentsHeader(t *testing.T) {
	g := ir.NewGraph()
	bd := ir.NewBuilder(g)

	bd.CreateArgument(ir.U32)

	bb := g.CreateBasicBlock()
	bd.SetInsertPoint(bb)
	_, err := bd.CreateRet(nil)
	require.NoError(t, err)

	out, err := dump.Dump(context.Background(), g)
	require.NoError(t, err)

	assert.True(t, strings.Index(string(out), "Function Arguments") < strings.Index(string(out), "Block"))
}
