// Package rs implements systematic Reed-Solomon encoding and syndrome
// decoding over a gf.Field, used to protect the header and payload
// blocks of a frame against symbol errors.
package rs

import "github.com/FihlaTV/qrtone/internal/gf"

// Encoder appends error-correction symbols to a block of data symbols.
// Generator polynomials are memoised per ECC length so repeated calls at
// the same block size are cheap.
type Encoder struct {
	field      *gf.Field
	generators []*gf.Polynomial
}

// NewEncoder returns an Encoder bound to field.
func NewEncoder(field *gf.Field) *Encoder {
	return &Encoder{
		field:      field,
		generators: []*gf.Polynomial{field.One()},
	}
}

// generator returns g(x) = prod_{i=0}^{degree-1} (x - alpha^(b+i)).
func (e *Encoder) generator(degree int) *gf.Polynomial {
	if degree < len(e.generators) {
		return e.generators[degree]
	}
	last := e.generators[len(e.generators)-1]
	for d := len(e.generators); d <= degree; d++ {
		next := last.Multiply(gf.NewPolynomial(e.field, []int{1, e.field.Exp(d - 1 + e.field.GeneratorBase())}))
		e.generators = append(e.generators, next)
		last = next
	}
	return e.generators[degree]
}

// Encode treats block[:len(block)-eccSymbols] as message coefficients and
// fills block[len(block)-eccSymbols:] with the Reed-Solomon remainder, in
// place.
func (e *Encoder) Encode(block []int, eccSymbols int) {
	if eccSymbols <= 0 {
		panic("rs: eccSymbols must be positive")
	}
	dataSymbols := len(block) - eccSymbols
	if dataSymbols <= 0 {
		panic("rs: block too small for eccSymbols")
	}

	generator := e.generator(eccSymbols)

	info := make([]int, dataSymbols)
	copy(info, block[:dataSymbols])
	dividend := gf.NewPolynomial(e.field, info).MultiplyByMonomial(eccSymbols, 1)

	_, remainder := dividend.Divide(generator)
	coefficients := remainder.Coefficients()
	numZero := eccSymbols - len(coefficients)
	for i := 0; i < numZero; i++ {
		block[dataSymbols+i] = 0
	}
	copy(block[dataSymbols+numZero:], coefficients)
}
