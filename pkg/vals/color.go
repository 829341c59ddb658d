package vals

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Color is an RGBA display color for ports and connections.
type Color struct {
	R, G, B, A uint8
}

// Named colors accepted by DecodeColor.
var (
	Red         = Color{255, 0, 0, 255}
	Green       = Color{0, 255, 0, 255}
	Blue        = Color{0, 0, 255, 255}
	Yellow      = Color{255, 255, 0, 255}
	LightRed    = Color{255, 128, 128, 255}
	LightGreen  = Color{144, 238, 144, 255}
	LightBlue   = Color{140, 180, 255, 255}
	LightYellow = Color{255, 255, 224, 255}
	DarkRed     = Color{0x8b, 0, 0, 255}
	DarkGreen   = Color{0, 0x64, 0, 255}
	DarkBlue    = Color{0, 0, 0x8b, 255}
	White       = Color{255, 255, 255, 255}
	Black       = Color{0, 0, 0, 255}
)

var namedColors = map[string]Color{
	"RED":          Red,
	"GREEN":        Green,
	"BLUE":         Blue,
	"YELLOW":       Yellow,
	"LIGHT_RED":    LightRed,
	"LIGHT_GREEN":  LightGreen,
	"LIGHT_BLUE":   LightBlue,
	"LIGHT_YELLOW": LightYellow,
	"DARK_RED":     DarkRed,
	"DARK_GREEN":   DarkGreen,
	"DARK_BLUE":    DarkBlue,
	"WHITE":        White,
	"BLACK":        Black,
}

// DecodeColor decodes a color name such as "LIGHT_BLUE", or a hex value of
// up to four bytes with an optional "#" or "0x" prefix. Missing channels are
// 0, and alpha is opaque unless given.
func DecodeColor(s string) (Color, error) {
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "#"), "0x")
	b, err := hex.DecodeString(digits)
	if err != nil {
		return Color{}, fmt.Errorf("bad color %q: %w", s, err)
	}
	if len(b) > 4 {
		return Color{}, fmt.Errorf("bad color %q: hex value too long", s)
	}
	c := Color{A: 255}
	for i, p := range []*uint8{&c.R, &c.G, &c.B, &c.A} {
		if i < len(b) {
			*p = b[i]
		}
	}
	return c, nil
}

// Hex returns the color as "#rrggbb", or "#rrggbbaa" when it is not opaque.
func (c Color) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c Color) String() string { return c.Hex() }

// Color returns the default display color for ports of this type.
func (dt DataType) Color() Color {
	switch dt {
	case TypeI32, TypeU32, TypeF32, TypeDynamicVector:
		return LightBlue
	case TypeVec2:
		return Green
	case TypeVec3:
		return Yellow
	case TypeVec4:
		return LightRed
	case TypeMat2, TypeMat3, TypeMat4, TypeDynamic, TypeDynamicMatrix:
		return Blue
	case TypeTexture2D, TypeTexture2DArray, TypeTexture3D, TypeCubemap:
		return Red
	}
	return White
}
