// Package vals contains the value model shared by evaluation and compilation:
// data types, the concrete values that inhabit them, and the rules for
// converting between them at evaluation time and at compile time.
package vals

import (
	"fmt"
	"strings"
)

// DataType identifies the type of a port or a value.
type DataType uint8

// Data types. TypeUnknown is the zero value and stands for "not declared"; it
// is never the type of a value.
const (
	TypeUnknown DataType = iota
	TypeI32
	TypeU32
	TypeF32
	TypeVec2
	TypeVec3
	TypeVec4
	TypeMat2
	TypeMat3
	TypeMat4
	TypeDynamic
	TypeDynamicVector
	TypeDynamicMatrix
	TypeTexture2D
	TypeTexture2DArray
	TypeTexture3D
	TypeCubemap
)

var dataTypeNames = [...]string{
	TypeUnknown:        "Unknown",
	TypeI32:            "I32",
	TypeU32:            "U32",
	TypeF32:            "F32",
	TypeVec2:           "Vec2",
	TypeVec3:           "Vec3",
	TypeVec4:           "Vec4",
	TypeMat2:           "Mat2",
	TypeMat3:           "Mat3",
	TypeMat4:           "Mat4",
	TypeDynamic:        "Dynamic",
	TypeDynamicVector:  "DynamicVector",
	TypeDynamicMatrix:  "DynamicMatrix",
	TypeTexture2D:      "Texture2D",
	TypeTexture2DArray: "Texture2DArray",
	TypeTexture3D:      "Texture3D",
	TypeCubemap:        "Cubemap",
}

// AllDataTypes lists every declared data type, in declaration order.
var AllDataTypes = []DataType{
	TypeI32, TypeU32, TypeF32,
	TypeVec2, TypeVec3, TypeVec4,
	TypeMat2, TypeMat3, TypeMat4,
	TypeDynamic, TypeDynamicVector, TypeDynamicMatrix,
	TypeTexture2D, TypeTexture2DArray, TypeTexture3D, TypeCubemap,
}

func (dt DataType) String() string {
	if int(dt) < len(dataTypeNames) {
		return dataTypeNames[dt]
	}
	return fmt.Sprintf("DataType(%d)", uint8(dt))
}

// ParseDataType parses the name of a data type. Matching ignores case,
// underscores and spaces, so "vec4", "Vec4" and "dynamic_vector" are all
// accepted.
func ParseDataType(s string) (DataType, error) {
	norm := func(s string) string {
		s = strings.ReplaceAll(s, "_", "")
		s = strings.ReplaceAll(s, " ", "")
		return strings.ToLower(s)
	}
	want := norm(s)
	for _, dt := range AllDataTypes {
		if norm(dt.String()) == want {
			return dt, nil
		}
	}
	return TypeUnknown, fmt.Errorf("unknown data type: %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (dt DataType) MarshalText() ([]byte, error) {
	return []byte(dt.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (dt *DataType) UnmarshalText(b []byte) error {
	parsed, err := ParseDataType(string(b))
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

// Class is the coarse grouping of data types.
type Class uint8

// Data type classes.
const (
	ScalarClass Class = iota
	VectorClass
	MatrixClass
	DynamicClass
	TextureClass
)

func (c Class) String() string {
	switch c {
	case ScalarClass:
		return "Scalar"
	case VectorClass:
		return "Vector"
	case MatrixClass:
		return "Matrix"
	case DynamicClass:
		return "Dynamic"
	case TextureClass:
		return "Texture"
	default:
		return fmt.Sprintf("Class(%d)", uint8(c))
	}
}

// IsDynamic reports whether the type is one of the placeholders that are
// resolved at use time.
func (dt DataType) IsDynamic() bool {
	return dt == TypeDynamic || dt == TypeDynamicVector || dt == TypeDynamicMatrix
}

// Class returns the class of the data type. DynamicVector belongs to the
// Vector class and DynamicMatrix to the Matrix class.
func (dt DataType) Class() Class {
	switch dt {
	case TypeI32, TypeU32, TypeF32:
		return ScalarClass
	case TypeVec2, TypeVec3, TypeVec4, TypeDynamicVector:
		return VectorClass
	case TypeMat2, TypeMat3, TypeMat4, TypeDynamicMatrix:
		return MatrixClass
	case TypeTexture2D, TypeTexture2DArray, TypeTexture3D, TypeCubemap:
		return TextureClass
	default:
		return DynamicClass
	}
}

// Width returns the number of components of a scalar or vector type, or the
// number of columns of a matrix type. It returns 0 for other types.
func (dt DataType) Width() int {
	switch dt {
	case TypeI32, TypeU32, TypeF32:
		return 1
	case TypeVec2, TypeMat2:
		return 2
	case TypeVec3, TypeMat3:
		return 3
	case TypeVec4, TypeMat4:
		return 4
	}
	return 0
}

// VectorType returns the float vector type with n components; n = 1 gives
// TypeF32. It returns TypeUnknown for other widths.
func VectorType(n int) DataType {
	switch n {
	case 1:
		return TypeF32
	case 2:
		return TypeVec2
	case 3:
		return TypeVec3
	case 4:
		return TypeVec4
	}
	return TypeUnknown
}

// MatrixType returns the square matrix type with n columns, or TypeUnknown.
func MatrixType(n int) DataType {
	switch n {
	case 2:
		return TypeMat2
	case 3:
		return TypeMat3
	case 4:
		return TypeMat4
	}
	return TypeUnknown
}

// DefaultValue returns the value a port of this type holds before anything is
// assigned. Dynamic and DynamicVector default to a zero Vec4, DynamicMatrix
// to the 4x4 identity. It returns nil for TypeUnknown.
func (dt DataType) DefaultValue() Value {
	switch dt {
	case TypeI32:
		return I32(0)
	case TypeU32:
		return U32(0)
	case TypeF32:
		return F32(0)
	case TypeVec2:
		return Vec2{}
	case TypeVec3:
		return Vec3{}
	case TypeVec4, TypeDynamic, TypeDynamicVector:
		return Vec4{}
	case TypeMat2:
		return Mat2{{1, 0}, {0, 1}}
	case TypeMat3:
		return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	case TypeMat4, TypeDynamicMatrix:
		return Mat4{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}
	case TypeTexture2D, TypeTexture2DArray, TypeTexture3D, TypeCubemap:
		return Texture{Kind: dt}
	}
	return nil
}

// IsCompatible reports whether a port declared with type dt accepts a
// connection from an output of type other.
//
// Scalars and vectors mix freely. Matrices only accept a matrix of the same
// size through a concrete port; different sizes meet only through Dynamic or
// DynamicMatrix. Textures only accept themselves.
func (dt DataType) IsCompatible(other DataType) bool {
	if dt == TypeUnknown || other == TypeUnknown {
		return false
	}
	if dt == other {
		return true
	}
	switch dt.Class() {
	case ScalarClass:
		return isScalarOrVector(other) || other == TypeDynamic || other == TypeDynamicVector
	case VectorClass:
		if dt == TypeDynamicVector {
			return isScalarOrVector(other) || other == TypeDynamic
		}
		return isScalarOrVector(other) || other == TypeDynamic || other == TypeDynamicVector
	case MatrixClass:
		if dt == TypeDynamicMatrix {
			return other.Class() == MatrixClass || other == TypeDynamic
		}
		return other == TypeDynamic || other == TypeDynamicMatrix
	case DynamicClass:
		return other.Class() != TextureClass
	}
	return false
}

func isScalarOrVector(dt DataType) bool {
	switch dt {
	case TypeI32, TypeU32, TypeF32, TypeVec2, TypeVec3, TypeVec4:
		return true
	}
	return false
}
