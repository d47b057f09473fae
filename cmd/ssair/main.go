// Command ssair is a small demo driver over the compiler/ir toolchain:
// it builds a fixed sample graph, runs the analyses and the peephole
// pass over it, and prints the result.
package main

import (
	"context"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/vkomkov/ssair/compiler/analysis"
	"github.com/vkomkov/ssair/compiler/dump"
	"github.com/vkomkov/ssair/compiler/ir"
	"github.com/vkomkov/ssair/compiler/opt"
)

func main() {
	dumpCmd := &cli.Command{
		Name:   "dump",
		Action: dumpAct,
		Args:   cli.Args{},
	}

	app := &cli.Command{
		Name:        "ssair",
		Description: "ssair builds and inspects a graph-based SSA intermediate representation",
		Commands: []*cli.Command{
			dumpCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func dumpAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	g := buildFactorialGraph()

	la := analysis.NewLoopAnalyzer(g)
	la.Analyze(ctx)

	opt.NewPeepholeOptimizer(g).Run(ctx)

	out, err := dump.Dump(ctx, g)
	if err != nil {
		return errors.Wrap(err, "dump graph")
	}

	fmt.Printf("%s", out)

	for _, l := range la.Loops() {
		if l.IsRoot() {
			continue
		}
		fmt.Printf("loop header=%d reducible=%v countable=%v blocks=%d\n",
			l.Header.ID, l.Reducible, l.Countable(), len(l.Blocks))
	}

	return nil
}

func buildFactorialGraph() *ir.Graph {
	g := ir.NewGraph()
	bd := ir.NewBuilder(g)

	argN := bd.CreateArgument(ir.U32)

	entry := g.CreateBasicBlock()
	loop := g.CreateBasicBlock()
	body := g.CreateBasicBlock()
	exit := g.CreateBasicBlock()

	bd.SetInsertPoint(entry)
	one, _ := bd.CreateConstant(ir.U64, 1)
	two, _ := bd.CreateConstant(ir.U64, 2)
	nU64, _ := bd.CreateCast(ir.U64, argN)
	bd.CreateJump(loop)

	bd.SetInsertPoint(loop)
	resPhi, _ := bd.CreatePhi(ir.U64)
	iPhi, _ := bd.CreatePhi(ir.U64)
	cond, _ := bd.CreateCompare(ir.ULE, iPhi, nU64)
	bd.CreateBranch(cond, body, exit)

	bd.SetInsertPoint(body)
	nextRes, _ := bd.CreateBinary(ir.OpMul, resPhi, iPhi)
	nextI, _ := bd.CreateBinary(ir.OpAdd, iPhi, one)
	bd.CreateJump(loop)

	bd.SetInsertPoint(exit)
	bd.CreateRet(resPhi)

	bd.AddIncoming(resPhi, one, entry)
	bd.AddIncoming(resPhi, nextRes, body)
	bd.AddIncoming(iPhi, two, entry)
	bd.AddIncoming(iPhi, nextI, body)

	return g
}
