package vals

import (
	"testing"

	. "src.shadegraph.dev/pkg/tt"
)

func TestCompile(t *testing.T) {
	Test(t, Fn("Compile", Compile), Table{
		Args(I32(-3)).Rets(CompiledValue{"-3", TypeI32}),
		Args(U32(7)).Rets(CompiledValue{"7", TypeU32}),
		Args(F32(1)).Rets(CompiledValue{"1.0", TypeF32}),
		Args(F32(0.5)).Rets(CompiledValue{"0.5", TypeF32}),
		Args(F32(-2.25)).Rets(CompiledValue{"-2.25", TypeF32}),
		Args(Vec2{1, 2}).Rets(CompiledValue{"vec2<f32>(1.0, 2.0)", TypeVec2}),
		Args(Vec4{0, 0.5, 1, 1}).Rets(CompiledValue{"vec4<f32>(0.0, 0.5, 1.0, 1.0)", TypeVec4}),
		Args(Mat2{{1, 0}, {0, 1}}).Rets(
			CompiledValue{"mat2x2(vec2<f32>(1.0, 0.0), vec2<f32>(0.0, 1.0))", TypeMat2}),
		Args(Texture{Kind: TypeTexture2D}).Rets(
			CompiledValue{"vec4<f32>(0.5, 0.5, 0., 1.)", TypeTexture2D}),
	})
}

func TestFormatFloat(t *testing.T) {
	Test(t, Fn("formatFloat", formatFloat), Table{
		Args(float32(0)).Rets("0.0"),
		Args(float32(3)).Rets("3.0"),
		Args(float32(0.1)).Rets("0.1"),
		Args(float32(1e-5)).Rets("1e-05"),
		Args(float32(1e20)).Rets("1e+20"),
	})
}

func TestCompiledValue_Convert(t *testing.T) {
	convert := func(code string, from, to DataType) (CompiledValue, error) {
		return CompiledValue{code, from}.Convert(to)
	}
	Test(t, Fn("Convert", convert), Table{
		// Scalars.
		Args("x", TypeF32, TypeF32).Rets(CompiledValue{"x", TypeF32}, nil),
		Args("x", TypeF32, TypeI32).Rets(CompiledValue{"i32(x)", TypeI32}, nil),
		Args("x", TypeI32, TypeU32).Rets(CompiledValue{"u32(x)", TypeU32}, nil),
		Args("x", TypeU32, TypeF32).Rets(CompiledValue{"f32(x)", TypeF32}, nil),
		Args("x", TypeF32, TypeVec2).Rets(CompiledValue{"vec2<f32>(x, 0.)", TypeVec2}, nil),
		Args("x", TypeF32, TypeVec3).Rets(CompiledValue{"vec3<f32>(x, 0., 0.)", TypeVec3}, nil),
		Args("x", TypeF32, TypeVec4).Rets(CompiledValue{"vec4<f32>(x, 0., 0., 1.)", TypeVec4}, nil),

		// Vectors.
		Args("v", TypeVec3, TypeF32).Rets(CompiledValue{"f32(v.x)", TypeF32}, nil),
		Args("v", TypeVec2, TypeI32).Rets(CompiledValue{"i32(v.x)", TypeI32}, nil),
		Args("v", TypeVec4, TypeVec2).Rets(CompiledValue{"vec2<f32>(v.xy)", TypeVec2}, nil),
		Args("v", TypeVec3, TypeVec2).Rets(CompiledValue{"vec2<f32>(v.xy)", TypeVec2}, nil),
		Args("v", TypeVec4, TypeVec3).Rets(CompiledValue{"vec3<f32>(v.xyz)", TypeVec3}, nil),
		Args("v", TypeVec2, TypeVec3).Rets(CompiledValue{"vec3<f32>(v.xy, 0.)", TypeVec3}, nil),
		Args("v", TypeVec2, TypeVec4).Rets(CompiledValue{"vec4<f32>(v.xy, 0., 1.)", TypeVec4}, nil),
		Args("v", TypeVec3, TypeVec4).Rets(CompiledValue{"vec4<f32>(v.xyz, 1.)", TypeVec4}, nil),

		// Matrices.
		Args("m", TypeMat4, TypeMat2).Rets(
			CompiledValue{"mat2x2<f32>(m[0].xy, m[1].xy)", TypeMat2}, nil),
		Args("m", TypeMat3, TypeMat2).Rets(
			CompiledValue{"mat2x2<f32>(m[0].xy, m[1].xy)", TypeMat2}, nil),
		Args("m", TypeMat4, TypeMat3).Rets(
			CompiledValue{"mat3x3<f32>(m[0].xyz, m[1].xyz, m[2].xyz)", TypeMat3}, nil),
		Args("m", TypeMat2, TypeMat3).Rets(
			CompiledValue{}, &ConversionError{TypeMat2, TypeMat3}),
		Args("m", TypeMat2, TypeVec4).Rets(
			CompiledValue{}, &ConversionError{TypeMat2, TypeVec4}),

		// Dynamic targets keep the concrete type.
		Args("v", TypeVec3, TypeDynamicVector).Rets(CompiledValue{"v", TypeVec3}, nil),
		Args("m", TypeMat3, TypeDynamic).Rets(CompiledValue{"m", TypeMat3}, nil),

		// Dynamic sources must be resolved first.
		Args("d", TypeDynamicVector, TypeVec3).Rets(
			CompiledValue{}, &ConversionError{TypeDynamicVector, TypeVec3}),

		Args("t", TypeTexture2D, TypeVec4).Rets(
			CompiledValue{}, &ConversionError{TypeTexture2D, TypeVec4}),
		Args("v", TypeVec4, TypeTexture2D).Rets(
			CompiledValue{}, &ConversionError{TypeVec4, TypeTexture2D}),
	})
}

func TestConversionError_Error(t *testing.T) {
	Test(t, Fn("Error", (*ConversionError).Error), Table{
		Args(&ConversionError{TypeMat2, TypeMat3}).Rets("Promoting Mat2 to Mat3 not supported."),
		Args(&ConversionError{TypeMat2, TypeMat4}).Rets("Promoting Mat2 to Mat4 not supported."),
		Args(&ConversionError{TypeVec2, TypeMat2}).Rets("Conversion from Vec2 to Mat2 not supported."),
		Args(&ConversionError{TypeDynamic, TypeVec2}).Rets("Dynamic compiled values are not supported"),
		Args(&ConversionError{TypeDynamicVector, TypeVec2}).Rets("Dynamic Vector compiled values are not supported"),
		Args(&ConversionError{TypeDynamicMatrix, TypeMat2}).Rets("Dynamic Matrix compiled values are not supported"),
	})
}
