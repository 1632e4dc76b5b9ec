package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinygo.org/x/go-llvm"

	"dalg/internal/codegen"
)

func beginTestFunction(t *testing.T, e *codegen.Emitter, name string, params []string) llvm.Value {
	t.Helper()
	fn, err := e.DeclareFunction(name, params)
	require.NoError(t, err)
	e.BeginFunction(fn, params)
	return fn
}

// φ arity: every φ introduced by if lowering has exactly two incoming
// edges (spec.md §8).
func TestIfPhiHasTwoIncomingEdges(t *testing.T) {
	e := codegen.New("t")
	defer e.Dispose()
	beginTestFunction(t, e, "c", []string{"a"})

	n := &If{
		Cond: &BinaryOp{Op: "<", LHS: &Variable{Name: "a"}, RHS: &Number{Value: 0}},
		Then: &Block{Exprs: []Node{&Number{Value: 0}}},
		Else: &Block{Exprs: []Node{&Variable{Name: "a"}}},
	}
	v, err := n.EmitIR(e)
	require.NoError(t, err)
	assert.Equal(t, 2, v.IncomingCount())

	require.NoError(t, e.EndFunction(v))
	require.NoError(t, e.Verify())
}

func TestIfWithoutElseDefaultsToZero(t *testing.T) {
	e := codegen.New("t")
	defer e.Dispose()
	beginTestFunction(t, e, "f", nil)

	n := &If{
		Cond: &Number{Value: 1},
		Then: &Block{Exprs: []Node{&Number{Value: 42}}},
	}
	v, err := n.EmitIR(e)
	require.NoError(t, err)
	require.NoError(t, e.EndFunction(v))
	require.NoError(t, e.Verify())
}

// φ arity: the φ introduced by for lowering has exactly two incoming
// edges (preheader and loop-tail) — spec.md §8.
func TestForPhiHasTwoIncomingEdges(t *testing.T) {
	e := codegen.New("t")
	defer e.Dispose()
	fn := beginTestFunction(t, e, "loop", nil)

	n := &For{
		Var:   "i",
		Start: &Number{Value: 0},
		End:   &BinaryOp{Op: "<", LHS: &Variable{Name: "i"}, RHS: &Number{Value: 3}},
		Step:  &Number{Value: 1},
		Body:  &Block{},
	}
	v, err := n.EmitIR(e)
	require.NoError(t, err)

	// Blocks are entry, for.loop, for.after; the φ opens for.loop.
	blocks := fn.BasicBlocks()
	require.Len(t, blocks, 3)
	assert.Equal(t, 2, blocks[1].FirstInstruction().IncomingCount())

	require.NoError(t, e.EndFunction(v))
	require.NoError(t, e.Verify())
}

// Shadowing: a for-loop's induction variable shadows an outer binding of
// the same name, and the outer binding is restored once the loop exits
// (spec.md §4.4).
func TestForLoopShadowsAndRestoresOuterVariable(t *testing.T) {
	e := codegen.New("t")
	defer e.Dispose()
	beginTestFunction(t, e, "f", nil)

	outer := &Assign{Name: "i", Value: &Number{Value: 99}}
	_, err := outer.EmitIR(e)
	require.NoError(t, err)

	loop := &For{
		Var:   "i",
		Start: &Number{Value: 0},
		End:   &Number{Value: 3},
		Body:  &Block{Exprs: []Node{&Assign{Name: "s", Value: &Variable{Name: "i"}}}},
	}
	_, err = loop.EmitIR(e)
	require.NoError(t, err)

	v, err := (&Variable{Name: "i"}).EmitIR(e)
	require.NoError(t, err)
	require.NoError(t, e.EndFunction(v))
	require.NoError(t, e.Verify())
}

func TestForLoopDefaultStepIsOne(t *testing.T) {
	e := codegen.New("t")
	defer e.Dispose()
	beginTestFunction(t, e, "f", nil)

	n := &For{Var: "i", Start: &Number{Value: 0}, End: &Number{Value: 3}, Body: &Block{}}
	assert.Nil(t, n.Step)

	v, err := n.EmitIR(e)
	require.NoError(t, err)
	require.NoError(t, e.EndFunction(v))
	require.NoError(t, e.Verify())
}
