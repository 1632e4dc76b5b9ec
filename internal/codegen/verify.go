package codegen

import (
	"fmt"

	"tinygo.org/x/go-llvm"
)

// Verify runs the LLVM module verifier over the whole module. Per
// spec.md §8 ("Verifier clean"), every successfully emitted module must
// pass this check.
func (e *Emitter) Verify() error {
	if err := llvm.VerifyModule(e.module, llvm.ReturnStatusAction); err != nil {
		return fmt.Errorf("module failed verification: %s", err)
	}
	return nil
}

// Optimize runs the LLVM toolchain's default O3 pipeline against the
// module. Per spec.md §1 this is a single call against an opaque IR
// backend; this package does not implement, tune, or otherwise reach
// into individual passes.
func (e *Emitter) Optimize() error {
	triple := llvm.DefaultTargetTriple()
	target, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		return fmt.Errorf("could not resolve host target triple %q: %s", triple, err)
	}

	tm := target.CreateTargetMachine(triple, "generic", "",
		llvm.CodeGenLevelDefault, llvm.RelocDefault, llvm.CodeModelDefault)
	defer tm.Dispose()

	e.module.SetTarget(triple)

	opts := llvm.NewPassBuilderOptions()
	defer opts.Dispose()

	if err := e.module.RunPasses("default<O3>", tm, opts); err != nil {
		return fmt.Errorf("default O3 pipeline failed: %s", err)
	}
	return nil
}

// String renders the module as textual LLVM IR. Given byte-identical
// input the returned string is byte-identical across runs: the module
// name is fixed by New's caller and nothing in this package consults a
// clock or random source, per spec.md §8's determinism property.
func (e *Emitter) String() string {
	return e.module.String()
}
