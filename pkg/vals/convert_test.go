package vals

import (
	"math"
	"testing"

	. "src.shadegraph.dev/pkg/tt"
)

func TestConvert(t *testing.T) {
	Test(t, Fn("Convert", Convert), Table{
		Args(F32(2), TypeF32).Rets(F32(2), nil),
		Args(F32(2.7), TypeI32).Rets(I32(2), nil),
		Args(F32(-1), TypeU32).Rets(U32(0), nil),
		Args(F32(float32(math.NaN())), TypeI32).Rets(I32(0), nil),
		Args(I32(-1), TypeU32).Rets(U32(math.MaxUint32), nil),
		Args(Vec3{4, 5, 6}, TypeF32).Rets(F32(4), nil),

		Args(F32(3), TypeVec2).Rets(Vec2{3, 0}, nil),
		Args(F32(3), TypeVec3).Rets(Vec3{3, 0, 0}, nil),
		Args(F32(3), TypeVec4).Rets(Vec4{3, 0, 0, 1}, nil),
		Args(Vec2{1, 2}, TypeVec3).Rets(Vec3{1, 2, 0}, nil),
		Args(Vec2{1, 2}, TypeVec4).Rets(Vec4{1, 2, 0, 1}, nil),
		Args(Vec3{1, 2, 3}, TypeVec4).Rets(Vec4{1, 2, 3, 1}, nil),
		Args(Vec4{1, 2, 3, 4}, TypeVec3).Rets(Vec3{1, 2, 3}, nil),
		Args(Vec4{1, 2, 3, 4}, TypeVec2).Rets(Vec2{1, 2}, nil),

		Args(I32(5), TypeDynamicVector).Rets(F32(5), nil),
		Args(Vec3{1, 2, 3}, TypeDynamicVector).Rets(Vec3{1, 2, 3}, nil),
		Args(Mat2{}, TypeDynamicVector).Rets(nil, &WrongTypeError{TypeDynamicVector, TypeMat2}),
		Args(Mat2{}, TypeDynamic).Rets(Mat2{}, nil),
		Args(Mat3{}, TypeDynamicMatrix).Rets(Mat3{}, nil),
		Args(Vec3{}, TypeDynamicMatrix).Rets(nil, &WrongTypeError{TypeDynamicMatrix, TypeVec3}),

		Args(Mat3{}, TypeMat2).Rets(nil, &WrongTypeError{TypeMat2, TypeMat3}),
		Args(Vec2{}, TypeMat2).Rets(nil, &WrongTypeError{TypeMat2, TypeVec2}),
		Args(Mat2{}, TypeF32).Rets(nil, &WrongTypeError{TypeF32, TypeMat2}),
		Args(Texture{Kind: TypeTexture2D}, TypeTexture2D).Rets(Texture{Kind: TypeTexture2D}, nil),
		Args(Texture{Kind: TypeTexture2D}, TypeTexture3D).Rets(nil, &WrongTypeError{TypeTexture3D, TypeTexture2D}),
		Args(Texture{Kind: TypeTexture2D}, TypeDynamic).Rets(nil, &WrongTypeError{TypeDynamic, TypeTexture2D}),
	})
}

func TestRepr(t *testing.T) {
	Test(t, Fn("Repr", Repr), Table{
		Args(F32(1)).Rets("F32(1.0)"),
		Args(I32(3)).Rets("I32(3)"),
		Args(Vec2{1, 0.5}).Rets("Vec2(1.0, 0.5)"),
		Args(Mat2{{1, 0}, {0, 1}}).Rets("Mat2([1.0, 0.0], [0.0, 1.0])"),
		Args(Texture{TypeTexture2D, "albedo.png"}).Rets(`Texture2D("albedo.png")`),
		Args(nil).Rets("<nil>"),
	})
}

func TestFromColumns(t *testing.T) {
	Test(t, Fn("FromColumns", FromColumns), Table{
		Args([][]float32{{1, 2}, {3, 4}}).Rets(Mat2{{1, 2}, {3, 4}}, true),
		Args([][]float32{{1, 2}, {3}}).Rets(nil, false),
		Args([][]float32{{1}}).Rets(nil, false),
	})
}
