package vals

import (
	"fmt"
	"math"
)

// WrongTypeError is returned when a value cannot be coerced to a type.
type WrongTypeError struct {
	Want DataType
	Got  DataType
}

func (err *WrongTypeError) Error() string {
	return fmt.Sprintf("wrong type: need %s, got %s", err.Want, err.Got)
}

// Convert coerces a value to the given type at evaluation time.
//
// Scalars take the first component of vectors. Vectors are built from
// scalars and other vectors by truncating, or by filling missing components
// with 0, except that the fourth component of a Vec4 is filled with 1.
// DynamicVector and Dynamic keep the width of the value, turning integer
// scalars into F32; Dynamic additionally passes matrices through. Concrete
// matrices and textures only accept their exact type, and DynamicMatrix any
// matrix.
func Convert(v Value, to DataType) (Value, error) {
	if v == nil {
		return nil, &WrongTypeError{to, TypeUnknown}
	}
	from := v.DataType()
	if from == to {
		return v, nil
	}
	fail := func() (Value, error) { return nil, &WrongTypeError{to, from} }

	comps, isVector := Components(v)
	switch to {
	case TypeI32, TypeU32, TypeF32:
		if !isVector {
			return fail()
		}
		return scalarOf(v, comps[0], to), nil
	case TypeVec2, TypeVec3, TypeVec4:
		if !isVector {
			return fail()
		}
		out := resize(comps, to.Width())
		w, _ := FromComponents(out)
		return w, nil
	case TypeDynamicVector, TypeDynamic:
		if isVector {
			if len(comps) == 1 {
				return F32(comps[0]), nil
			}
			return v, nil
		}
		if to == TypeDynamic && from.Class() == MatrixClass {
			return v, nil
		}
		return fail()
	case TypeDynamicMatrix:
		if from.Class() == MatrixClass {
			return v, nil
		}
		return fail()
	}
	return fail()
}

// Resize truncates or extends components to width n, filling with 0 except
// for the fourth component, which is filled with 1.
func resize(comps []float32, n int) []float32 {
	out := make([]float32, n)
	copy(out, comps)
	if n == 4 && len(comps) < 4 {
		out[3] = 1
	}
	return out
}

func scalarOf(src Value, f float32, to DataType) Value {
	switch to {
	case TypeI32:
		if u, ok := src.(U32); ok {
			return I32(int32(u))
		}
		return I32(saturateInt(f, math.MinInt32, math.MaxInt32))
	case TypeU32:
		if i, ok := src.(I32); ok {
			return U32(uint32(i))
		}
		return U32(saturateInt(f, 0, math.MaxUint32))
	default:
		return F32(f)
	}
}

// Float to integer conversions saturate at the bounds of the target type and
// map NaN to 0.
func saturateInt(f float32, lo, hi float64) int64 {
	x := float64(f)
	switch {
	case math.IsNaN(x):
		return 0
	case x <= lo:
		return int64(lo)
	case x >= hi:
		return int64(hi)
	}
	return int64(x)
}
