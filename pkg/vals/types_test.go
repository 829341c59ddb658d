package vals

import (
	"testing"

	. "src.shadegraph.dev/pkg/tt"
)

func TestParseDataType(t *testing.T) {
	Test(t, Fn("ParseDataType", ParseDataType), Table{
		Args("Vec4").Rets(TypeVec4, nil),
		Args("vec4").Rets(TypeVec4, nil),
		Args("dynamic_vector").Rets(TypeDynamicVector, nil),
		Args("Texture 2D Array").Rets(TypeTexture2DArray, nil),
		Args("Unknown").Rets(TypeUnknown, ErrorMatching("unknown data type")),
		Args("vec5").Rets(TypeUnknown, ErrorMatching(`"vec5"`)),
	})
}

func TestDataType_Class(t *testing.T) {
	Test(t, Fn("Class", DataType.Class), Table{
		Args(TypeU32).Rets(ScalarClass),
		Args(TypeVec3).Rets(VectorClass),
		Args(TypeDynamicVector).Rets(VectorClass),
		Args(TypeMat2).Rets(MatrixClass),
		Args(TypeDynamicMatrix).Rets(MatrixClass),
		Args(TypeDynamic).Rets(DynamicClass),
		Args(TypeCubemap).Rets(TextureClass),
	})
}

func TestDataType_DefaultValue(t *testing.T) {
	Test(t, Fn("DefaultValue", DataType.DefaultValue), Table{
		Args(TypeI32).Rets(I32(0)),
		Args(TypeF32).Rets(F32(0)),
		Args(TypeVec3).Rets(Vec3{}),
		Args(TypeDynamic).Rets(Vec4{}),
		Args(TypeDynamicVector).Rets(Vec4{}),
		Args(TypeMat2).Rets(Mat2{{1, 0}, {0, 1}}),
		Args(TypeDynamicMatrix).Rets(Mat4{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}),
		Args(TypeTexture3D).Rets(Texture{Kind: TypeTexture3D}),
	})
}

func TestDataType_DefaultValueHasSameType(t *testing.T) {
	for _, dt := range AllDataTypes {
		v := dt.DefaultValue()
		if dt.IsDynamic() {
			if !dt.IsCompatible(v.DataType()) {
				t.Errorf("default of %s is %s, which it does not accept", dt, v.DataType())
			}
			continue
		}
		if v.DataType() != dt {
			t.Errorf("default of %s has type %s", dt, v.DataType())
		}
	}
}

func TestDataType_IsCompatible(t *testing.T) {
	Test(t, Fn("IsCompatible", DataType.IsCompatible), Table{
		Args(TypeF32, TypeF32).Rets(true),
		Args(TypeF32, TypeI32).Rets(true),
		Args(TypeF32, TypeVec3).Rets(true),
		Args(TypeVec4, TypeF32).Rets(true),
		Args(TypeVec2, TypeDynamicVector).Rets(true),
		Args(TypeVec2, TypeDynamic).Rets(true),
		Args(TypeVec2, TypeMat2).Rets(false),
		Args(TypeF32, TypeDynamicMatrix).Rets(false),

		Args(TypeMat3, TypeMat3).Rets(true),
		Args(TypeMat3, TypeMat4).Rets(false),
		Args(TypeMat2, TypeMat3).Rets(false),
		Args(TypeMat3, TypeDynamicMatrix).Rets(true),
		Args(TypeMat3, TypeDynamic).Rets(true),
		Args(TypeMat3, TypeVec3).Rets(false),

		Args(TypeDynamicMatrix, TypeMat2).Rets(true),
		Args(TypeDynamicMatrix, TypeVec2).Rets(false),
		Args(TypeDynamicVector, TypeI32).Rets(true),
		Args(TypeDynamicVector, TypeMat4).Rets(false),
		Args(TypeDynamic, TypeMat4).Rets(true),
		Args(TypeDynamic, TypeVec2).Rets(true),
		Args(TypeDynamic, TypeTexture2D).Rets(false),

		Args(TypeTexture2D, TypeTexture2D).Rets(true),
		Args(TypeTexture2D, TypeTexture3D).Rets(false),
		Args(TypeTexture2D, TypeDynamic).Rets(false),

		Args(TypeUnknown, TypeF32).Rets(false),
		Args(TypeDynamic, TypeUnknown).Rets(false),
	})
}

func TestDataType_TextRoundTrip(t *testing.T) {
	for _, dt := range AllDataTypes {
		b, _ := dt.MarshalText()
		var got DataType
		if err := got.UnmarshalText(b); err != nil || got != dt {
			t.Errorf("UnmarshalText(%q) -> %v, %v", b, got, err)
		}
	}
}
