// Package gf implements arithmetic over a binary extension Galois field
// GF(2^m), the algebraic substrate for the Reed-Solomon codec.
package gf

import "fmt"

// Field is a GF(2^m) instance defined by a primitive polynomial. It
// precomputes exponent and discrete-log tables so every multiply,
// divide, and inverse is a table lookup.
type Field struct {
	primitive     int
	size          int
	generatorBase int
	exp           []int
	log           []int
	zero          *Polynomial
	one           *Polynomial
}

// Predefined fields used by the codec's block protocol.
var (
	// Field16 is GF(16) with primitive polynomial x^4+x+1, generator base 1.
	// It is the field used for both the header block and every payload block.
	Field16 = New(0x13, 16, 1)
)

// New builds a GF(size) field from a primitive polynomial. size must be a
// power of two; primitive must be irreducible of the matching degree.
func New(primitive, size, generatorBase int) *Field {
	f := &Field{
		primitive:     primitive,
		size:          size,
		generatorBase: generatorBase,
		exp:           make([]int, size),
		log:           make([]int, size),
	}

	x := 1
	for i := 0; i < size; i++ {
		f.exp[i] = x
		x <<= 1
		if x >= size {
			x ^= primitive
			x &= size - 1
		}
	}
	for i := 0; i < size-1; i++ {
		f.log[f.exp[i]] = i
	}

	f.zero = newPolynomial(f, []int{0})
	f.one = newPolynomial(f, []int{1})
	return f
}

// Size returns n = 2^m.
func (f *Field) Size() int { return f.size }

// GeneratorBase returns the generator exponent offset b used by the
// block's Reed-Solomon generator polynomial and syndrome computation.
func (f *Field) GeneratorBase() int { return f.generatorBase }

// Add returns a+b, which in a characteristic-2 field is the same as
// subtraction.
func (f *Field) Add(a, b int) int { return a ^ b }

// Exp returns exp[i], i.e. alpha^i.
func (f *Field) Exp(i int) int { return f.exp[i] }

// Log returns the discrete log of a non-zero element.
func (f *Field) Log(a int) int {
	if a == 0 {
		panic("gf: log of zero")
	}
	return f.log[a]
}

// Multiply returns a*b.
func (f *Field) Multiply(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return f.exp[(f.log[a]+f.log[b])%(f.size-1)]
}

// Inverse returns a^-1 for a non-zero element.
func (f *Field) Inverse(a int) int {
	if a == 0 {
		panic("gf: inverse of zero")
	}
	return f.exp[f.size-1-f.log[a]]
}

func (f *Field) String() string {
	return fmt.Sprintf("GF(0x%x,%d,b=%d)", f.primitive, f.size, f.generatorBase)
}
