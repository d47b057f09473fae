/*

Package ir implements the core of an SSA-form, graph-based
intermediate representation.

Pipeline of a Graph's lifetime:

	Builder ->
Graph (blocks, instructions, users) ->
	analysis.GraphAnalyzer / analysis.LoopAnalyzer ->
Side tables (RPO, dominator tree, loop tree) ->
	opt.PeepholeOptimizer ->
Rewritten Graph ->
	dump.Dump ->
Diagnostic text

Only the Builder mutates a Graph's structure. Analyses read a Graph and
produce side tables; the optimizer reads a Graph and rewrites use-edges
in place. Nothing in this package runs two mutating passes concurrently
or mutates a Graph while an analysis observes it — that contract is
documented, not enforced.

*/
package ir
