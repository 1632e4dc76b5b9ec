package ast

import (
	"fmt"

	"dalg/internal/codegen"
)

// Prototype is a function signature: a name and its parameter names.
type Prototype struct {
	Name   string
	Params []string
}

// Function is a top-level definition: a prototype and a body block. The
// body's value becomes the function's return value.
type Function struct {
	Proto *Prototype
	Body  *Block
}

// Emit drives spec.md §4.4's function-emission sequence: declare the
// prototype, open the entry block and bind parameter slots, lower the
// body, then close the function with a ret of the body's value (0.0 if
// the body is empty).
func (f *Function) Emit(e *codegen.Emitter) error {
	fn, err := e.DeclareFunction(f.Proto.Name, f.Proto.Params)
	if err != nil {
		return fmt.Errorf("function %q: %s", f.Proto.Name, err)
	}

	e.BeginFunction(fn, f.Proto.Params)

	ret, err := f.Body.EmitIR(e)
	if err != nil {
		return err
	}
	if ret.IsNil() {
		ret = e.ConstFloat(0)
	}
	return e.EndFunction(ret)
}

// Program is the parser's top-level output: an ordered list of function
// definitions, emitted in parse order (spec.md §4.4).
type Program struct {
	Functions []*Function
}

// Emit lowers every function in order into e's module.
func (p *Program) Emit(e *codegen.Emitter) error {
	for _, fn := range p.Functions {
		if err := fn.Emit(e); err != nil {
			return err
		}
	}
	return nil
}
