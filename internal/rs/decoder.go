package rs

import (
	"errors"

	"github.com/FihlaTV/qrtone/internal/gf"
)

// ErrUnrecoverable is returned when the codeword has more errors than the
// block's parity can correct, or the correction otherwise fails to
// validate (locator degree mismatch, a root outside the codeword range).
var ErrUnrecoverable = errors.New("rs: uncorrectable block")

// Decoder performs syndrome-based Reed-Solomon error correction.
type Decoder struct {
	field *gf.Field
}

// NewDecoder returns a Decoder bound to field.
func NewDecoder(field *gf.Field) *Decoder {
	return &Decoder{field: field}
}

// Decode corrects received in place. eccSymbols is the number of parity
// symbols (2t); up to t errors can be corrected. It returns the number of
// error symbols fixed, or ErrUnrecoverable if the block cannot be
// validated.
func (d *Decoder) Decode(received []int, eccSymbols int) (int, error) {
	f := d.field
	word := gf.NewPolynomial(f, received)

	syndromeCoefficients := make([]int, eccSymbols)
	allZero := true
	for i := 0; i < eccSymbols; i++ {
		s := word.Evaluate(f.Exp(i + f.GeneratorBase()))
		syndromeCoefficients[eccSymbols-1-i] = s
		if s != 0 {
			allZero = false
		}
	}
	if allZero {
		return 0, nil
	}
	syndrome := gf.NewPolynomial(f, syndromeCoefficients)

	locator, evaluator, err := d.euclid(f.Monomial(eccSymbols, 1), syndrome, eccSymbols)
	if err != nil {
		return 0, err
	}

	locations, err := d.chienSearch(locator)
	if err != nil {
		return 0, err
	}
	magnitudes := d.forney(evaluator, locations)

	for i, loc := range locations {
		position := len(received) - 1 - f.Log(loc)
		if position < 0 || position >= len(received) {
			return 0, ErrUnrecoverable
		}
		received[position] = f.Add(received[position], magnitudes[i])
	}
	return len(locations), nil
}

// euclid runs Euclid's algorithm on r_-1=a=x^e and r_0=b=syndrome,
// stopping once deg(r) < e/2, and returns the normalised error locator
// Lambda = t/t(0) and error evaluator Omega = r/t(0).
func (d *Decoder) euclid(a, b *gf.Polynomial, eccSymbols int) (locator, evaluator *gf.Polynomial, err error) {
	f := d.field
	if a.Degree() < b.Degree() {
		a, b = b, a
	}

	rLast, r := a, b
	tLast, t := f.Zero(), f.One()

	for 2*r.Degree() >= eccSymbols {
		rLastLast, tLastLast := rLast, tLast
		rLast, tLast = r, t

		if rLast.IsZero() {
			return nil, nil, ErrUnrecoverable
		}
		r = rLastLast
		q := f.Zero()
		denomInverse := f.Inverse(rLast.Coefficient(rLast.Degree()))
		for r.Degree() >= rLast.Degree() && !r.IsZero() {
			degreeDiff := r.Degree() - rLast.Degree()
			scale := f.Multiply(r.Coefficient(r.Degree()), denomInverse)
			q = q.AddOrSubtract(f.Monomial(degreeDiff, scale))
			r = r.AddOrSubtract(rLast.MultiplyByMonomial(degreeDiff, scale))
		}

		t = q.Multiply(tLast).AddOrSubtract(tLastLast)

		if r.Degree() >= rLast.Degree() {
			return nil, nil, ErrUnrecoverable
		}
	}

	t0 := t.Coefficient(0)
	if t0 == 0 {
		return nil, nil, ErrUnrecoverable
	}
	inv := f.Inverse(t0)
	return t.MultiplyScalar(inv), r.MultiplyScalar(inv), nil
}

// chienSearch finds the roots of the error locator by trial evaluation at
// every non-zero field element, returning the error locators (the
// inverses of the roots); the log of each locator is the error's power
// position in the codeword.
func (d *Decoder) chienSearch(locator *gf.Polynomial) ([]int, error) {
	f := d.field
	numErrors := locator.Degree()
	if numErrors == 1 {
		return []int{locator.Coefficient(1)}, nil
	}
	locations := make([]int, 0, numErrors)
	for i := 1; i < f.Size() && len(locations) < numErrors; i++ {
		if locator.Evaluate(i) == 0 {
			locations = append(locations, f.Inverse(i))
		}
	}
	if len(locations) != numErrors {
		return nil, ErrUnrecoverable
	}
	return locations, nil
}

// forney computes the error magnitude at each located position.
func (d *Decoder) forney(evaluator *gf.Polynomial, locations []int) []int {
	f := d.field
	n := len(locations)
	magnitudes := make([]int, n)
	for i := 0; i < n; i++ {
		xiInverse := f.Inverse(locations[i])
		denominator := 1
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			term := f.Multiply(locations[j], xiInverse)
			// 1 +/- term, i.e. flip the low bit.
			termPlusOne := term ^ 1
			denominator = f.Multiply(denominator, termPlusOne)
		}
		magnitudes[i] = f.Multiply(evaluator.Evaluate(xiInverse), f.Inverse(denominator))
		if f.GeneratorBase() != 0 {
			// The product-form denominator above evaluates to
			// X_i * Lambda'(X_i^-1) rather than Lambda'(X_i^-1) itself,
			// so a non-zero generator base needs one extra factor of
			// X_i^-1 to cancel it.
			magnitudes[i] = f.Multiply(magnitudes[i], xiInverse)
		}
	}
	return magnitudes
}
