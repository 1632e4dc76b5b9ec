package ast

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"dalg/internal/codegen"
)

// Number is a floating point literal.
type Number struct {
	Value float64
}

// EmitIR materializes a constant double.
func (n *Number) EmitIR(e *codegen.Emitter) (llvm.Value, error) {
	return e.ConstFloat(n.Value), nil
}

// String is a string literal. Valid only as the immediate argument of a
// Print node — see spec.md §9 DECISION D3.
type String struct {
	Value string
}

// EmitIR materializes a global NUL-terminated string constant and
// returns a pointer to it.
func (s *String) EmitIR(e *codegen.Emitter) (llvm.Value, error) {
	return e.GlobalString(s.Value), nil
}

// Variable is an rvalue reference to a local slot.
type Variable struct {
	Name string
}

// EmitIR loads the variable's current value. Fatal if the name is
// unbound in the current function's named-values table (spec.md §4.4,
// §8 scenario 6).
func (v *Variable) EmitIR(e *codegen.Emitter) (llvm.Value, error) {
	return e.LoadVariable(v.Name)
}

// BinaryOp is an arithmetic or comparison expression. Op is one of
// "+", "-", "*", "/", "==", "!=", "<", ">", "<=", ">=".
type BinaryOp struct {
	Op       string
	LHS, RHS Node
}

// EmitIR lowers both operands, converting any comparison result to a
// double first (ToDouble is a no-op for an already-double value), then
// emits the matching ordered floating point instruction.
func (b *BinaryOp) EmitIR(e *codegen.Emitter) (llvm.Value, error) {
	lhs, err := b.LHS.EmitIR(e)
	if err != nil {
		return llvm.Value{}, err
	}
	lhs, err = e.ToDouble(lhs)
	if err != nil {
		return llvm.Value{}, fmt.Errorf("left operand of %q: %s", b.Op, err)
	}
	rhs, err := b.RHS.EmitIR(e)
	if err != nil {
		return llvm.Value{}, err
	}
	rhs, err = e.ToDouble(rhs)
	if err != nil {
		return llvm.Value{}, fmt.Errorf("right operand of %q: %s", b.Op, err)
	}

	bld := e.Builder()
	switch b.Op {
	case "+":
		return bld.CreateFAdd(lhs, rhs, ""), nil
	case "-":
		return bld.CreateFSub(lhs, rhs, ""), nil
	case "*":
		return bld.CreateFMul(lhs, rhs, ""), nil
	case "/":
		return bld.CreateFDiv(lhs, rhs, ""), nil
	case "==":
		return bld.CreateFCmp(llvm.FloatOEQ, lhs, rhs, ""), nil
	case "!=":
		return bld.CreateFCmp(llvm.FloatONE, lhs, rhs, ""), nil
	case "<":
		return bld.CreateFCmp(llvm.FloatOLT, lhs, rhs, ""), nil
	case ">":
		return bld.CreateFCmp(llvm.FloatOGT, lhs, rhs, ""), nil
	case "<=":
		return bld.CreateFCmp(llvm.FloatOLE, lhs, rhs, ""), nil
	case ">=":
		return bld.CreateFCmp(llvm.FloatOGE, lhs, rhs, ""), nil
	default:
		return llvm.Value{}, fmt.Errorf("undefined operator %q", b.Op)
	}
}

// Assign defines or updates a local slot. It evaluates to the assigned
// value.
type Assign struct {
	Name  string
	Value Node
}

// EmitIR lowers the value, converts it to a double, then stores it into
// Name's slot (allocating one first if Name is not yet bound).
func (a *Assign) EmitIR(e *codegen.Emitter) (llvm.Value, error) {
	val, err := a.Value.EmitIR(e)
	if err != nil {
		return llvm.Value{}, err
	}
	val, err = e.ToDouble(val)
	if err != nil {
		return llvm.Value{}, fmt.Errorf("cannot assign to %q: %s", a.Name, err)
	}
	return e.AssignVariable(a.Name, val), nil
}

// Call is a user-function call; arity must match at emit time.
type Call struct {
	Callee string
	Args   []Node
}

// EmitIR looks up Callee in the module, checks arity, lowers each
// argument, and emits a call returning double.
func (c *Call) EmitIR(e *codegen.Emitter) (llvm.Value, error) {
	fn, ok := e.LookupFunction(c.Callee)
	if !ok {
		return llvm.Value{}, fmt.Errorf("unknown function: %s", c.Callee)
	}
	params := fn.Params()
	if len(params) != len(c.Args) {
		return llvm.Value{}, fmt.Errorf("function %q expects %d argument(s), got %d",
			c.Callee, len(params), len(c.Args))
	}

	args := make([]llvm.Value, len(c.Args))
	for i, a := range c.Args {
		v, err := a.EmitIR(e)
		if err != nil {
			return llvm.Value{}, err
		}
		v, err = e.ToDouble(v)
		if err != nil {
			return llvm.Value{}, fmt.Errorf("argument %d of %q: %s", i+1, c.Callee, err)
		}
		args[i] = v
	}
	return e.Builder().CreateCall(fn, args, ""), nil
}

// Print is the builtin print statement. It lowers its inner expression
// and calls printf with a format string chosen by the lowered value's
// type, then yields the double constant 0.0.
type Print struct {
	Inner Node
}

// EmitIR lazily declares printf, selects "%s\n" for a pointer value or
// "%f\n" for anything else, and emits the call.
func (p *Print) EmitIR(e *codegen.Emitter) (llvm.Value, error) {
	val, err := p.Inner.EmitIR(e)
	if err != nil {
		return llvm.Value{}, err
	}

	printf := e.DeclarePrintf()

	var format string
	var arg llvm.Value
	if codegen.IsPointer(val) {
		format = "%s\n"
		arg = val
	} else {
		format = "%f\n"
		if arg, err = e.ToDouble(val); err != nil {
			return llvm.Value{}, err
		}
	}

	frmt := e.GlobalString(format)
	e.Builder().CreateCall(printf, []llvm.Value{frmt, arg}, "")
	return e.ConstFloat(0), nil
}
