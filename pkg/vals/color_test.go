package vals

import (
	"testing"

	. "src.shadegraph.dev/pkg/tt"
)

func TestDecodeColor(t *testing.T) {
	Test(t, Fn("DecodeColor", DecodeColor), Table{
		Args("LIGHT_BLUE").Rets(LightBlue, nil),
		Args("#ff8000").Rets(Color{255, 128, 0, 255}, nil),
		Args("0x00ff0080").Rets(Color{0, 255, 0, 128}, nil),
		Args("ff").Rets(Color{255, 0, 0, 255}, nil),
		Args("#0102030405").Rets(Color{}, ErrorMatching("too long")),
		Args("chartreuse").Rets(Color{}, ErrorMatching("bad color")),
	})
}

func TestColor_Hex(t *testing.T) {
	Test(t, Fn("Hex", Color.Hex), Table{
		Args(Red).Rets("#ff0000"),
		Args(Color{1, 2, 3, 4}).Rets("#01020304"),
	})
}

func TestDataType_Color(t *testing.T) {
	Test(t, Fn("Color", DataType.Color), Table{
		Args(TypeF32).Rets(LightBlue),
		Args(TypeVec2).Rets(Green),
		Args(TypeVec3).Rets(Yellow),
		Args(TypeVec4).Rets(LightRed),
		Args(TypeMat3).Rets(Blue),
		Args(TypeDynamic).Rets(Blue),
		Args(TypeDynamicVector).Rets(LightBlue),
		Args(TypeCubemap).Rets(Red),
	})
}
