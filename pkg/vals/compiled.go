package vals

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CompiledValue is a snippet of shader code together with its type.
type CompiledValue struct {
	Code string
	Type DataType
}

func (c CompiledValue) String() string { return c.Code }

// ConversionError is returned when a compiled value cannot be converted to a
// type.
type ConversionError struct {
	From DataType
	To   DataType
}

func (err *ConversionError) Error() string {
	switch {
	case err.From == TypeDynamic:
		return "Dynamic compiled values are not supported"
	case err.From == TypeDynamicVector:
		return "Dynamic Vector compiled values are not supported"
	case err.From == TypeDynamicMatrix:
		return "Dynamic Matrix compiled values are not supported"
	case err.From.Class() == MatrixClass && err.To.Class() == MatrixClass &&
		err.From.Width() < err.To.Width():
		return fmt.Sprintf("Promoting %s to %s not supported.", err.From, err.To)
	}
	return fmt.Sprintf("Conversion from %s to %s not supported.", err.From, err.To)
}

// Compile returns the shader literal for a value.
func Compile(v Value) CompiledValue {
	dt := v.DataType()
	switch v := v.(type) {
	case I32:
		return CompiledValue{strconv.FormatInt(int64(v), 10), dt}
	case U32:
		return CompiledValue{strconv.FormatUint(uint64(v), 10), dt}
	case F32:
		return CompiledValue{formatFloat(float32(v)), dt}
	case Vec2, Vec3, Vec4:
		c, _ := Components(v)
		return CompiledValue{vectorLiteral(c), dt}
	case Mat2, Mat3, Mat4:
		cols, _ := Columns(v)
		parts := make([]string, len(cols))
		for i, col := range cols {
			parts[i] = vectorLiteral(col)
		}
		n := len(cols)
		return CompiledValue{fmt.Sprintf("mat%dx%d(%s)", n, n, strings.Join(parts, ", ")), dt}
	case Texture:
		// Textures are bound out of band; inline use sees a neutral color.
		return CompiledValue{"vec4<f32>(0.5, 0.5, 0., 1.)", dt}
	}
	return CompiledValue{fmt.Sprint(v), dt}
}

func vectorLiteral(c []float32) string {
	return fmt.Sprintf("vec%d<f32>(%s)", len(c), joinFloats(c))
}

// Convert converts a compiled value to another type by wrapping its code in
// the matching constructor or swizzle.
//
// Converting to a dynamic type is a no-op and keeps the concrete type. Values
// of a dynamic type cannot be converted, nor can matrices be widened.
func (c CompiledValue) Convert(to DataType) (CompiledValue, error) {
	from := c.Type
	if from == to || to.IsDynamic() {
		return c, nil
	}
	x := c.Code
	wrap := func(format string) (CompiledValue, error) {
		return CompiledValue{fmt.Sprintf(format, x), to}, nil
	}
	fail := func() (CompiledValue, error) {
		return CompiledValue{}, &ConversionError{from, to}
	}
	if from.IsDynamic() {
		return fail()
	}

	switch from.Class() {
	case ScalarClass:
		switch to {
		case TypeI32:
			return wrap("i32(%s)")
		case TypeU32:
			return wrap("u32(%s)")
		case TypeF32:
			return wrap("f32(%s)")
		case TypeVec2:
			return wrap("vec2<f32>(%s, 0.)")
		case TypeVec3:
			return wrap("vec3<f32>(%s, 0., 0.)")
		case TypeVec4:
			return wrap("vec4<f32>(%s, 0., 0., 1.)")
		}
	case VectorClass:
		switch to {
		case TypeI32:
			return wrap("i32(%s.x)")
		case TypeU32:
			return wrap("u32(%s.x)")
		case TypeF32:
			return wrap("f32(%s.x)")
		case TypeVec2:
			return wrap("vec2<f32>(%s.xy)")
		case TypeVec3:
			if from == TypeVec2 {
				return wrap("vec3<f32>(%s.xy, 0.)")
			}
			return wrap("vec3<f32>(%s.xyz)")
		case TypeVec4:
			if from == TypeVec2 {
				return wrap("vec4<f32>(%s.xy, 0., 1.)")
			}
			return wrap("vec4<f32>(%s.xyz, 1.)")
		}
	case MatrixClass:
		if to.Class() != MatrixClass || from.Width() < to.Width() {
			return fail()
		}
		switch to {
		case TypeMat2:
			return CompiledValue{fmt.Sprintf("mat2x2<f32>(%[1]s[0].xy, %[1]s[1].xy)", x), to}, nil
		case TypeMat3:
			return CompiledValue{fmt.Sprintf("mat3x3<f32>(%[1]s[0].xyz, %[1]s[1].xyz, %[1]s[2].xyz)", x), to}, nil
		}
	}
	return fail()
}

// Floats print the way the shader tooling expects them: always with a decimal
// point or an exponent, so "1.0" and never "1".
func formatFloat(f float32) string {
	x := float64(f)
	switch {
	case math.IsInf(x, 1):
		return "inf"
	case math.IsInf(x, -1):
		return "-inf"
	case math.IsNaN(x):
		return "NaN"
	}
	if abs := math.Abs(x); x != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(x, 'e', -1, 32)
	}
	s := strconv.FormatFloat(x, 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
