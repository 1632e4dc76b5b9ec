package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dalg/internal/codegen"
)

func TestBinaryOpArithmetic(t *testing.T) {
	e := codegen.New("t")
	defer e.Dispose()
	beginTestFunction(t, e, "f", nil)

	n := &BinaryOp{Op: "+", LHS: &Number{Value: 2}, RHS: &Number{Value: 3}}
	v, err := n.EmitIR(e)
	require.NoError(t, err)
	assert.Equal(t, codegen.Double(), v.Type())
}

func TestBinaryOpUndefinedOperator(t *testing.T) {
	e := codegen.New("t")
	defer e.Dispose()
	beginTestFunction(t, e, "f", nil)

	n := &BinaryOp{Op: "%", LHS: &Number{Value: 1}, RHS: &Number{Value: 2}}
	_, err := n.EmitIR(e)
	require.Error(t, err)
}

func TestAssignThenLoad(t *testing.T) {
	e := codegen.New("t")
	defer e.Dispose()
	beginTestFunction(t, e, "f", nil)

	a := &Assign{Name: "x", Value: &Number{Value: 14}}
	_, err := a.EmitIR(e)
	require.NoError(t, err)

	v, err := (&Variable{Name: "x"}).EmitIR(e)
	require.NoError(t, err)
	assert.Equal(t, codegen.Double(), v.Type())
}

func TestVariableUnknownNameIsFatal(t *testing.T) {
	e := codegen.New("t")
	defer e.Dispose()
	beginTestFunction(t, e, "f", nil)

	_, err := (&Variable{Name: "y"}).EmitIR(e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown variable name")
}

func TestCallUnknownFunction(t *testing.T) {
	e := codegen.New("t")
	defer e.Dispose()
	beginTestFunction(t, e, "f", nil)

	_, err := (&Call{Callee: "missing"}).EmitIR(e)
	require.Error(t, err)
}

func TestCallArityMismatch(t *testing.T) {
	e := codegen.New("t")
	defer e.Dispose()
	if _, err := e.DeclareFunction("add", []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	beginTestFunction(t, e, "f", nil)

	_, err := (&Call{Callee: "add", Args: []Node{&Number{Value: 1}}}).EmitIR(e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects 2 argument(s)")
}

func TestPrintStringUsesPointerFormat(t *testing.T) {
	e := codegen.New("t")
	defer e.Dispose()
	beginTestFunction(t, e, "f", nil)

	n := &Print{Inner: &String{Value: "hi"}}
	v, err := n.EmitIR(e)
	require.NoError(t, err)
	assert.Equal(t, codegen.Double(), v.Type())
	assert.Contains(t, e.String(), "%s\\0A")
}

func TestPrintNumberUsesFloatFormat(t *testing.T) {
	e := codegen.New("t")
	defer e.Dispose()
	beginTestFunction(t, e, "f", nil)

	n := &Print{Inner: &Number{Value: 1}}
	v, err := n.EmitIR(e)
	require.NoError(t, err)
	assert.Equal(t, codegen.Double(), v.Type())
	assert.Contains(t, e.String(), "%f\\0A")
}

func TestBlockYieldsLastExpression(t *testing.T) {
	e := codegen.New("t")
	defer e.Dispose()
	beginTestFunction(t, e, "f", nil)

	b := &Block{Exprs: []Node{&Number{Value: 1}, &Number{Value: 2}, &Number{Value: 3}}}
	v, err := b.EmitIR(e)
	require.NoError(t, err)
	assert.Equal(t, codegen.Double(), v.Type())
	assert.Equal(t, e.ConstFloat(3), v)
}

func TestEmptyBlockYieldsNil(t *testing.T) {
	e := codegen.New("t")
	defer e.Dispose()
	beginTestFunction(t, e, "f", nil)

	b := &Block{}
	v, err := b.EmitIR(e)
	require.NoError(t, err)
	assert.True(t, v.IsNil())
}
