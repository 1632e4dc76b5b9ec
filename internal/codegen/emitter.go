// Package codegen lowers a Dalg syntax tree into LLVM IR using
// tinygo.org/x/go-llvm, the same LLVM binding family the teacher
// compiler's ir/llvm package is built on.
//
// Unlike that package, Emitter is not backed by package-level globals: a
// fresh Emitter owns its own llvm.Context, llvm.Builder, llvm.Module and
// named-values table, so compiling a second source in the same process
// (spec.md §5) never leaks declarations from the first.
package codegen

import (
	"fmt"

	"tinygo.org/x/go-llvm"
)

// reservedNames may not be used as Dalg function names: they collide
// with the runtime ABI this package wires into every module.
var reservedNames = map[string]bool{
	"printf": true,
	"main":   true,
}

// Emitter threads a single LLVM builder insertion cursor and a
// per-function named-values table through the emission of one
// compilation unit. Call New once per compilation; the Emitter is not
// safe for concurrent use, matching spec.md §5's single-threaded model.
type Emitter struct {
	ctx     llvm.Context
	builder llvm.Builder
	module  llvm.Module

	fn   llvm.Value        // the function currently being emitted.
	vars map[string]llvm.Value // named-values table for fn, reset per function.

	printfFn llvm.Value // cached printf declaration, IsNil until first print.
}

// New creates an Emitter with its own LLVM context, builder and module
// named moduleName.
func New(moduleName string) *Emitter {
	ctx := llvm.NewContext()
	return &Emitter{
		ctx:     ctx,
		builder: ctx.NewBuilder(),
		module:  ctx.NewModule(moduleName),
	}
}

// Dispose releases the underlying LLVM context, builder and module. Call
// once emission (and any printing) is complete.
func (e *Emitter) Dispose() {
	e.builder.Dispose()
	e.module.Dispose()
	e.ctx.Dispose()
}

// Module returns the LLVM module being built.
func (e *Emitter) Module() llvm.Module { return e.module }

// Builder returns the shared instruction builder, positioned at the
// current insertion point.
func (e *Emitter) Builder() llvm.Builder { return e.builder }

// CurrentFunction returns the LLVM function currently being emitted.
func (e *Emitter) CurrentFunction() llvm.Value { return e.fn }

// Double is the sole scalar value type Dalg expressions compute in.
func Double() llvm.Type { return llvm.DoubleType() }

// ConstFloat materializes a constant double.
func (e *Emitter) ConstFloat(v float64) llvm.Value {
	return llvm.ConstFloat(Double(), v)
}

// ---------------------------------------------------------------------
// Function declaration and definition.
// ---------------------------------------------------------------------

// DeclareFunction declares a function of type double(double, ...) with
// external linkage and binds param names to its parameters. It fails on
// a reserved or duplicate name, matching spec.md §4.4 step 1.
func (e *Emitter) DeclareFunction(name string, params []string) (llvm.Value, error) {
	if reservedNames[name] {
		return llvm.Value{}, fmt.Errorf("function name %q is reserved", name)
	}
	if fn := e.module.NamedFunction(name); !fn.IsNil() {
		return llvm.Value{}, fmt.Errorf("duplicate function declaration: %s", name)
	}

	atyp := make([]llvm.Type, len(params))
	for i := range atyp {
		atyp[i] = Double()
	}
	ftyp := llvm.FunctionType(Double(), atyp, false)
	fn := llvm.AddFunction(e.module, name, ftyp)
	for i, p := range fn.Params() {
		p.SetName(params[i])
	}
	return fn, nil
}

// LookupFunction returns the module's declaration of name, if any.
func (e *Emitter) LookupFunction(name string) (llvm.Value, bool) {
	fn := e.module.NamedFunction(name)
	if fn.IsNil() {
		return llvm.Value{}, false
	}
	return fn, true
}

// BeginFunction creates the function's entry block, allocates and binds
// a stack slot for every parameter (spec.md §4.4 steps 2-3), and resets
// the named-values table. paramNames must be in the same order as fn's
// parameter list.
func (e *Emitter) BeginFunction(fn llvm.Value, paramNames []string) {
	e.fn = fn
	e.vars = make(map[string]llvm.Value, len(paramNames))

	entry := llvm.AddBasicBlock(fn, "entry")
	e.builder.SetInsertPointAtEnd(entry)

	for i, p := range fn.Params() {
		slot := e.builder.CreateAlloca(Double(), paramNames[i])
		e.builder.CreateStore(p, slot)
		e.vars[paramNames[i]] = slot
	}
}

// EndFunction emits the function's return instruction and verifies it.
// On verification failure the partially built function is erased from
// the module and an error is returned, per spec.md §4.4 step 4.
func (e *Emitter) EndFunction(ret llvm.Value) error {
	e.builder.CreateRet(ret)
	if ok := llvm.VerifyFunction(e.fn, llvm.PrintMessageAction); ok != nil {
		name := e.fn.Name()
		e.fn.EraseFromParentAsFunction()
		e.fn = llvm.Value{}
		return fmt.Errorf("function %q failed IR verification: %s", name, ok)
	}
	e.fn = llvm.Value{}
	e.vars = nil
	return nil
}

// ---------------------------------------------------------------------
// Named-values table (spec.md §3): one flat map per function, with
// explicit save/restore around the for-loop's induction variable so it
// can shadow an outer binding of the same name.
// ---------------------------------------------------------------------

// LoadVariable loads the current value of name from its stack slot.
// Returns an error if name is unbound — spec.md §4.4's "Unknown variable
// name" fatal emitter error.
func (e *Emitter) LoadVariable(name string) (llvm.Value, error) {
	slot, ok := e.vars[name]
	if !ok {
		return llvm.Value{}, fmt.Errorf("unknown variable name: %s", name)
	}
	return e.builder.CreateLoad(slot, name), nil
}

// AssignVariable stores val into name's slot, allocating a new double
// slot first if name is not yet bound. Returns val, matching spec.md
// §4.4's "the expression's value is the stored value."
func (e *Emitter) AssignVariable(name string, val llvm.Value) llvm.Value {
	slot, ok := e.vars[name]
	if !ok {
		slot = e.builder.CreateAlloca(Double(), name)
		e.vars[name] = slot
	}
	e.builder.CreateStore(val, slot)
	return val
}

// SaveVariable returns the slot currently bound to name, if any, so a
// caller can restore it later (used by for-loop lowering to shadow an
// outer variable with the same name as the induction variable).
func (e *Emitter) SaveVariable(name string) (llvm.Value, bool) {
	slot, ok := e.vars[name]
	return slot, ok
}

// BindVariable binds name directly to an existing slot without storing.
func (e *Emitter) BindVariable(name string, slot llvm.Value) {
	e.vars[name] = slot
}

// RestoreVariable re-binds name to slot (if existed is true) or removes
// any binding of name (if existed is false).
func (e *Emitter) RestoreVariable(name string, slot llvm.Value, existed bool) {
	if existed {
		e.vars[name] = slot
	} else {
		delete(e.vars, name)
	}
}

// DeclareSlot allocates a fresh, unstored double slot for name in the
// current function, without touching the named-values table.
func (e *Emitter) DeclareSlot(name string) llvm.Value {
	return e.builder.CreateAlloca(Double(), name)
}

// ---------------------------------------------------------------------
// Control flow helpers.
// ---------------------------------------------------------------------

// NewBasicBlock appends a new, empty basic block to the function
// currently being emitted.
func (e *Emitter) NewBasicBlock(name string) llvm.BasicBlock {
	return llvm.AddBasicBlock(e.fn, name)
}

// InsertBlock returns the block the builder is currently appending to.
func (e *Emitter) InsertBlock() llvm.BasicBlock {
	return e.builder.GetInsertBlock()
}

// SetInsertBlock repositions the builder's insertion cursor.
func (e *Emitter) SetInsertBlock(bb llvm.BasicBlock) {
	e.builder.SetInsertPointAtEnd(bb)
}

// ---------------------------------------------------------------------
// print / printf.
// ---------------------------------------------------------------------

// DeclarePrintf lazily declares the external printf(i8*, ...) i32
// function, matching spec.md §4.4's Print lowering rule, and caches the
// result so repeated print statements reuse one declaration.
func (e *Emitter) DeclarePrintf() llvm.Value {
	if !e.printfFn.IsNil() {
		return e.printfFn
	}
	if fn := e.module.NamedFunction("printf"); !fn.IsNil() {
		e.printfFn = fn
		return fn
	}
	params := []llvm.Type{llvm.PointerType(llvm.Int8Type(), 0)}
	ftyp := llvm.FunctionType(llvm.Int32Type(), params, true)
	e.printfFn = llvm.AddFunction(e.module, "printf", ftyp)
	return e.printfFn
}

// GlobalString materializes a global NUL-terminated string constant and
// returns a pointer to it.
func (e *Emitter) GlobalString(s string) llvm.Value {
	return e.builder.CreateGlobalStringPtr(s, "L_str")
}

// IsPointer reports whether v's LLVM type is a pointer (i.e. a lowered
// String literal) rather than the scalar double every other Dalg value
// lowers to.
func IsPointer(v llvm.Value) bool {
	return v.Type().TypeKind() == llvm.PointerTypeKind
}

// ToDouble converts an i1 (the result of a comparison) to a double via
// unsigned-int-to-float, and passes a double value through unchanged.
// Storing or returning a string pointer as a double is rejected, per
// spec.md §9's restriction that String values only ever flow through
// Print.
func (e *Emitter) ToDouble(v llvm.Value) (llvm.Value, error) {
	switch v.Type().TypeKind() {
	case llvm.DoubleTypeKind:
		return v, nil
	case llvm.IntegerTypeKind:
		return e.builder.CreateUIToFP(v, Double(), ""), nil
	default:
		return llvm.Value{}, fmt.Errorf("cannot use a string value where a number is expected")
	}
}
