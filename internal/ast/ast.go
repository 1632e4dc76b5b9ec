// Package ast defines the closed family of syntax tree nodes the parser
// produces and the codegen emitter consumes.
//
// Every expression node owns its children exclusively — the tree is a
// tree, never a DAG, per spec.md §3 — and implements the single
// polymorphic operation the whole design turns on: "emit IR for this
// node, return the resulting SSA value." Following spec.md §9's explicit
// guidance, nodes are a closed set of tagged Go structs behind one
// interface, not an open inheritance hierarchy.
package ast

import (
	"tinygo.org/x/go-llvm"

	"dalg/internal/codegen"
)

// Node is any expression position in the tree. Every expression
// evaluates to a double at runtime, with the sole exception of String,
// which evaluates to an i8* and is only valid as the immediate operand
// of Print (spec.md §4.2, §9 DECISION D3).
type Node interface {
	EmitIR(e *codegen.Emitter) (llvm.Value, error)
}

// Block is an ordered sequence of expressions. It yields the value of
// its last expression, or nil (represented here as the zero llvm.Value)
// if empty.
type Block struct {
	Exprs []Node
}

// EmitIR lowers each child in order; the block's value is the last
// child's value.
func (b *Block) EmitIR(e *codegen.Emitter) (llvm.Value, error) {
	var last llvm.Value
	for _, n := range b.Exprs {
		v, err := n.EmitIR(e)
		if err != nil {
			return llvm.Value{}, err
		}
		last = v
	}
	return last, nil
}
