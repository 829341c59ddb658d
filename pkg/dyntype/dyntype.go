// Package dyntype picks concrete types for dynamic ports.
//
// A node with dynamic inputs feeds the types of its inputs to a Resolver,
// then converts every dynamic input to the resolved type before running its
// own logic, so all of them end up with the same concrete type.
package dyntype

import (
	"src.shadegraph.dev/pkg/vals"
)

// Resolver accumulates input types and resolves a concrete type from them.
// The zero value is ready to use.
type Resolver struct {
	scalars, vectors, matrices int
	// Smallest width among vector and matrix inputs, 0 if there are none.
	width int
}

// Add counts one input of type dt. Types that are neither scalars, vectors
// nor matrices are ignored, and so are the dynamic placeholders.
func (r *Resolver) Add(dt vals.DataType) {
	if dt.IsDynamic() {
		return
	}
	switch dt.Class() {
	case vals.ScalarClass:
		r.scalars++
		return
	case vals.VectorClass:
		r.vectors++
	case vals.MatrixClass:
		r.matrices++
	default:
		return
	}
	if w := dt.Width(); r.width == 0 || w < r.width {
		r.width = w
	}
}

// Empty reports whether no input has been counted.
func (r *Resolver) Empty() bool {
	return r.scalars+r.vectors+r.matrices == 0
}

// Class returns Matrix if there are matrix inputs and no vector inputs, else
// Vector if there are vector inputs, else Scalar.
func (r *Resolver) Class() vals.Class {
	switch {
	case r.matrices > 0 && r.vectors == 0:
		return vals.MatrixClass
	case r.vectors > 0:
		return vals.VectorClass
	}
	return vals.ScalarClass
}

// Width returns the smallest width among vector and matrix inputs, or 1 when
// there are none.
func (r *Resolver) Width() int {
	if r.width == 0 {
		return 1
	}
	return r.width
}

// Concrete returns the resolved type: F32, a float vector or a matrix.
func (r *Resolver) Concrete() vals.DataType {
	switch r.Class() {
	case vals.MatrixClass:
		return vals.MatrixType(r.Width())
	case vals.VectorClass:
		return vals.VectorType(r.Width())
	}
	return vals.TypeF32
}

// Convert converts a compiled value to the resolved type.
func (r *Resolver) Convert(c vals.CompiledValue) (vals.CompiledValue, error) {
	return c.Convert(r.Concrete())
}

// ConvertValue converts a value to the resolved type. Matrices are narrowed by
// truncating their columns.
func (r *Resolver) ConvertValue(v vals.Value) (vals.Value, error) {
	to := r.Concrete()
	if cols, ok := vals.Columns(v); ok && to.Class() == vals.MatrixClass && len(cols) > to.Width() {
		w := to.Width()
		narrowed := make([][]float32, w)
		for i := range narrowed {
			narrowed[i] = cols[i][:w]
		}
		m, _ := vals.FromColumns(narrowed)
		return m, nil
	}
	return vals.Convert(v, to)
}
