package vals

import (
	"fmt"
	"strings"
)

// Value is a concrete value of exactly one concrete DataType. All
// implementations are comparable with ==.
type Value interface {
	DataType() DataType
}

// Scalar values.
type (
	I32 int32
	U32 uint32
	F32 float32
)

// Vector values.
type (
	Vec2 [2]float32
	Vec3 [3]float32
	Vec4 [4]float32
)

// Matrix values, stored as columns.
type (
	Mat2 [2]Vec2
	Mat3 [3]Vec3
	Mat4 [4]Vec4
)

// Texture is a handle to a texture resource. Only the reference is tracked;
// the core never samples it.
type Texture struct {
	Kind DataType
	Ref  string
}

func (I32) DataType() DataType { return TypeI32 }
func (U32) DataType() DataType { return TypeU32 }
func (F32) DataType() DataType { return TypeF32 }
func (Vec2) DataType() DataType { return TypeVec2 }
func (Vec3) DataType() DataType { return TypeVec3 }
func (Vec4) DataType() DataType { return TypeVec4 }
func (Mat2) DataType() DataType { return TypeMat2 }
func (Mat3) DataType() DataType { return TypeMat3 }
func (Mat4) DataType() DataType { return TypeMat4 }
func (t Texture) DataType() DataType { return t.Kind }

// Components returns the components of a scalar or vector value as float32s.
// The second return value is false for other values.
func Components(v Value) ([]float32, bool) {
	switch v := v.(type) {
	case I32:
		return []float32{float32(v)}, true
	case U32:
		return []float32{float32(v)}, true
	case F32:
		return []float32{float32(v)}, true
	case Vec2:
		return v[:], true
	case Vec3:
		return v[:], true
	case Vec4:
		return v[:], true
	}
	return nil, false
}

// FromComponents builds a float scalar or vector from 1 to 4 components.
func FromComponents(c []float32) (Value, bool) {
	switch len(c) {
	case 1:
		return F32(c[0]), true
	case 2:
		return Vec2{c[0], c[1]}, true
	case 3:
		return Vec3{c[0], c[1], c[2]}, true
	case 4:
		return Vec4{c[0], c[1], c[2], c[3]}, true
	}
	return nil, false
}

// Columns returns the columns of a matrix value. The second return value is
// false for non-matrix values.
func Columns(v Value) ([][]float32, bool) {
	switch v := v.(type) {
	case Mat2:
		return [][]float32{v[0][:], v[1][:]}, true
	case Mat3:
		return [][]float32{v[0][:], v[1][:], v[2][:]}, true
	case Mat4:
		return [][]float32{v[0][:], v[1][:], v[2][:], v[3][:]}, true
	}
	return nil, false
}

// FromColumns builds a square matrix from 2 to 4 columns of matching height.
func FromColumns(cols [][]float32) (Value, bool) {
	for _, col := range cols {
		if len(col) != len(cols) {
			return nil, false
		}
	}
	switch len(cols) {
	case 2:
		var m Mat2
		for i := range m {
			copy(m[i][:], cols[i])
		}
		return m, true
	case 3:
		var m Mat3
		for i := range m {
			copy(m[i][:], cols[i])
		}
		return m, true
	case 4:
		var m Mat4
		for i := range m {
			copy(m[i][:], cols[i])
		}
		return m, true
	}
	return nil, false
}

// Repr returns a human-readable representation of a value, used in CLI output
// and diagnostics.
func Repr(v Value) string {
	if v == nil {
		return "<nil>"
	}
	switch v := v.(type) {
	case I32, U32:
		return fmt.Sprintf("%s(%d)", v.DataType(), v)
	case F32:
		return fmt.Sprintf("F32(%s)", formatFloat(float32(v)))
	}
	if c, ok := Components(v); ok {
		return v.DataType().String() + "(" + joinFloats(c) + ")"
	}
	if cols, ok := Columns(v); ok {
		parts := make([]string, len(cols))
		for i, col := range cols {
			parts[i] = "[" + joinFloats(col) + "]"
		}
		return v.DataType().String() + "(" + strings.Join(parts, ", ") + ")"
	}
	if t, ok := v.(Texture); ok {
		return fmt.Sprintf("%s(%q)", t.Kind, t.Ref)
	}
	return fmt.Sprint(v)
}

func joinFloats(c []float32) string {
	parts := make([]string, len(c))
	for i, f := range c {
		parts[i] = formatFloat(f)
	}
	return strings.Join(parts, ", ")
}
