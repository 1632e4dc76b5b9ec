package ast

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"dalg/internal/codegen"
)

// If is a conditional expression; it yields the value of the chosen
// branch. Else is nil (no else clause), *Block (a plain else), or *If
// (an "else if" chain) — all three satisfy Node.
type If struct {
	Cond Node
	Then *Block
	Else Node
}

// EmitIR follows spec.md §4.4's if-lowering rules: the condition is
// coerced to i1, three blocks (then/else/merge) are created, both arms
// unconditionally branch to merge, and a double φ in merge selects
// between them. The block captured for each incoming edge is whatever
// block is current immediately after lowering that arm — which may
// differ from the arm's header block if the arm itself contains nested
// control flow that split it into several blocks.
func (i *If) EmitIR(e *codegen.Emitter) (llvm.Value, error) {
	condVal, err := i.Cond.EmitIR(e)
	if err != nil {
		return llvm.Value{}, err
	}
	cond, err := toBool(e, condVal)
	if err != nil {
		return llvm.Value{}, err
	}

	thenBB := e.NewBasicBlock("if.then")
	elseBB := e.NewBasicBlock("if.else")
	mergeBB := e.NewBasicBlock("if.merge")

	e.Builder().CreateCondBr(cond, thenBB, elseBB)

	e.SetInsertBlock(thenBB)
	thenVal, err := i.Then.EmitIR(e)
	if err != nil {
		return llvm.Value{}, err
	}
	thenVal, err = defaultZero(e, thenVal)
	if err != nil {
		return llvm.Value{}, err
	}
	e.Builder().CreateBr(mergeBB)
	thenEnd := e.InsertBlock()

	e.SetInsertBlock(elseBB)
	var elseVal llvm.Value
	if i.Else != nil {
		if elseVal, err = i.Else.EmitIR(e); err != nil {
			return llvm.Value{}, err
		}
	}
	elseVal, err = defaultZero(e, elseVal)
	if err != nil {
		return llvm.Value{}, err
	}
	e.Builder().CreateBr(mergeBB)
	elseEnd := e.InsertBlock()

	e.SetInsertBlock(mergeBB)
	phi := e.Builder().CreatePHI(codegen.Double(), "")
	phi.AddIncoming([]llvm.Value{thenVal, elseVal}, []llvm.BasicBlock{thenEnd, elseEnd})
	return phi, nil
}

// For is a counted loop: for Var = Start, End, Step? { Body }. Step
// defaults to 1.0; the loop always yields 0.0 (spec.md §3).
//
// The end condition is evaluated for "continue while non-zero"
// truthiness, not "stop when End is reached" — spec.md §9 DECISION D2
// preserves this intentionally, even though it means
// `for i = 0, N, 1 { ... }` loops until N is itself 0, not until i
// equals N.
type For struct {
	Var              string
	Start, End, Step Node // Step nil means the default of 1.0.
	Body             *Block
}

// EmitIR follows the classic LLVM Kaleidoscope tutorial shape flagged in
// spec.md §4.4: a φ at the top of the loop block merges the start value
// (from the preheader) with the next value (from the loop's tail block,
// captured after the body and step have been lowered).
func (f *For) EmitIR(e *codegen.Emitter) (llvm.Value, error) {
	startVal, err := f.Start.EmitIR(e)
	if err != nil {
		return llvm.Value{}, err
	}
	if startVal, err = e.ToDouble(startVal); err != nil {
		return llvm.Value{}, fmt.Errorf("for-loop start value: %s", err)
	}
	preheader := e.InsertBlock()

	loopBB := e.NewBasicBlock("for.loop")
	e.Builder().CreateBr(loopBB)
	e.SetInsertBlock(loopBB)

	phi := e.Builder().CreatePHI(codegen.Double(), f.Var)
	phi.AddIncoming([]llvm.Value{startVal}, []llvm.BasicBlock{preheader})

	// Bind the induction variable to a fresh slot, shadowing (and later
	// restoring) any outer binding of the same name.
	slot := e.DeclareSlot(f.Var)
	e.Builder().CreateStore(phi, slot)
	savedSlot, existed := e.SaveVariable(f.Var)
	e.BindVariable(f.Var, slot)

	if _, err := f.Body.EmitIR(e); err != nil {
		e.RestoreVariable(f.Var, savedSlot, existed)
		return llvm.Value{}, err
	}

	var stepVal llvm.Value
	if f.Step != nil {
		if stepVal, err = f.Step.EmitIR(e); err != nil {
			e.RestoreVariable(f.Var, savedSlot, existed)
			return llvm.Value{}, err
		}
		if stepVal, err = e.ToDouble(stepVal); err != nil {
			e.RestoreVariable(f.Var, savedSlot, existed)
			return llvm.Value{}, fmt.Errorf("for-loop step value: %s", err)
		}
	} else {
		stepVal = e.ConstFloat(1)
	}
	next := e.Builder().CreateFAdd(phi, stepVal, "")

	endVal, err := f.End.EmitIR(e)
	if err != nil {
		e.RestoreVariable(f.Var, savedSlot, existed)
		return llvm.Value{}, err
	}
	if endVal, err = e.ToDouble(endVal); err != nil {
		e.RestoreVariable(f.Var, savedSlot, existed)
		return llvm.Value{}, fmt.Errorf("for-loop end value: %s", err)
	}
	cond := e.Builder().CreateFCmp(llvm.FloatONE, endVal, e.ConstFloat(0), "")

	loopTail := e.InsertBlock()
	phi.AddIncoming([]llvm.Value{next}, []llvm.BasicBlock{loopTail})

	afterBB := e.NewBasicBlock("for.after")
	e.Builder().CreateCondBr(cond, loopBB, afterBB)
	e.SetInsertBlock(afterBB)

	e.RestoreVariable(f.Var, savedSlot, existed)
	return e.ConstFloat(0), nil
}

// toBool coerces an if-condition value to i1: a double is compared
// against 0.0 with "one" (ordered-not-equal), an i1 passes through,
// anything else (a string pointer) is a fatal emitter error.
func toBool(e *codegen.Emitter, v llvm.Value) (llvm.Value, error) {
	switch v.Type().TypeKind() {
	case llvm.IntegerTypeKind:
		return v, nil
	case llvm.DoubleTypeKind:
		return e.Builder().CreateFCmp(llvm.FloatONE, v, e.ConstFloat(0), ""), nil
	default:
		return llvm.Value{}, fmt.Errorf("unsupported condition type")
	}
}

// defaultZero substitutes the double constant 0.0 for a nil value
// (an empty arm) and converts an i1 to double; a double passes through.
func defaultZero(e *codegen.Emitter, v llvm.Value) (llvm.Value, error) {
	if v.IsNil() {
		return e.ConstFloat(0), nil
	}
	return e.ToDouble(v)
}
