package diag

import "unicode/utf8"

// Ranger wraps the Range method.
type Ranger interface {
	// Range returns the range associated with the value.
	Range() Ranging
}

// Ranging represents a range [From, To) within an indexable sequence. Structs
// can embed Ranging to satisfy the [Ranger] interface.
//
// Ideally, this type would be called Range. However, doing that means structs
// embedding this type will have Range as a field instead of a method, thus not
// implementing the [Ranger] interface.
type Ranging struct {
	From int
	To   int
}

// Range returns the Ranging itself.
func (r Ranging) Range() Ranging { return r }

// PointRanging returns a zero-width Ranging at the given point.
func PointRanging(p int) Ranging {
	return Ranging{p, p}
}

// MixedRanging returns a Ranging from the start position of a to the end
// position of b.
func MixedRanging(a, b Ranger) Ranging {
	return Ranging{a.Range().From, b.Range().To}
}

// Offset returns the byte offset of a 1-based line and column in source,
// where the column counts runes, as the YAML parser reports them. Positions
// past the end of a line or of the source are clamped. A line or column of 0
// gives -1, the unknown position.
func Offset(source string, line, col int) int {
	if line <= 0 || col <= 0 {
		return -1
	}
	i := 0
	for l := 1; l < line; l++ {
		j := indexByteFrom(source, '\n', i)
		if j == -1 {
			return len(source)
		}
		i = j + 1
	}
	for c := 1; c < col && i < len(source) && source[i] != '\n'; c++ {
		_, size := utf8.DecodeRuneInString(source[i:])
		i += size
	}
	return i
}

// TokenRanging returns the Ranging of the token starting at a 1-based line and
// column: it extends to the end of the line, or to the first space after a
// plain token.
func TokenRanging(source string, line, col int) Ranging {
	from := Offset(source, line, col)
	if from == -1 {
		return Ranging{-1, -1}
	}
	to := from
	for to < len(source) && source[to] != '\n' && source[to] != ' ' && source[to] != ',' {
		to++
	}
	return Ranging{from, to}
}

func indexByteFrom(s string, b byte, from int) int {
	for i := from; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
