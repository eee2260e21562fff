package gf

// Polynomial is an immutable polynomial over a Field. Coefficients are
// stored most-significant-first; the canonical zero polynomial has
// length 1 and coefficient 0.
type Polynomial struct {
	field        *Field
	coefficients []int
}

func newPolynomial(field *Field, coefficients []int) *Polynomial {
	if len(coefficients) == 0 {
		panic("gf: empty coefficients")
	}
	if len(coefficients) > 1 && coefficients[0] == 0 {
		firstNonZero := 1
		for firstNonZero < len(coefficients) && coefficients[firstNonZero] == 0 {
			firstNonZero++
		}
		if firstNonZero == len(coefficients) {
			coefficients = []int{0}
		} else {
			trimmed := make([]int, len(coefficients)-firstNonZero)
			copy(trimmed, coefficients[firstNonZero:])
			coefficients = trimmed
		}
	}
	return &Polynomial{field: field, coefficients: coefficients}
}

// NewPolynomial builds a polynomial over field from MSB-first coefficients.
func NewPolynomial(field *Field, coefficients []int) *Polynomial {
	cp := make([]int, len(coefficients))
	copy(cp, coefficients)
	return newPolynomial(field, cp)
}

// Zero returns the zero polynomial of field.
func (f *Field) Zero() *Polynomial { return f.zero }

// One returns the constant-1 polynomial of field.
func (f *Field) One() *Polynomial { return f.one }

// Monomial returns coefficient*x^degree. When coefficient is 0 the
// canonical zero polynomial is returned regardless of degree.
func (f *Field) Monomial(degree, coefficient int) *Polynomial {
	if degree < 0 {
		panic("gf: negative degree")
	}
	if coefficient == 0 {
		return f.zero
	}
	coefficients := make([]int, degree+1)
	coefficients[0] = coefficient
	return newPolynomial(f, coefficients)
}

// Coefficients returns the MSB-first coefficient slice. Callers must not
// mutate it.
func (p *Polynomial) Coefficients() []int { return p.coefficients }

// Degree returns the polynomial's degree.
func (p *Polynomial) Degree() int { return len(p.coefficients) - 1 }

// IsZero reports whether p is the canonical zero polynomial.
func (p *Polynomial) IsZero() bool { return p.coefficients[0] == 0 }

// Coefficient returns the coefficient of x^degree.
func (p *Polynomial) Coefficient(degree int) int {
	return p.coefficients[len(p.coefficients)-1-degree]
}

// Evaluate computes p(x) via Horner's method in the field.
func (p *Polynomial) Evaluate(x int) int {
	if x == 0 {
		return p.Coefficient(0)
	}
	f := p.field
	if x == 1 {
		result := 0
		for _, c := range p.coefficients {
			result = f.Add(result, c)
		}
		return result
	}
	result := p.coefficients[0]
	for i := 1; i < len(p.coefficients); i++ {
		result = f.Add(f.Multiply(x, result), p.coefficients[i])
	}
	return result
}

// AddOrSubtract returns p+other (xor-aligned on the lower degrees).
func (p *Polynomial) AddOrSubtract(other *Polynomial) *Polynomial {
	if p.IsZero() {
		return other
	}
	if other.IsZero() {
		return p
	}

	small, large := p.coefficients, other.coefficients
	if len(small) > len(large) {
		small, large = large, small
	}

	sum := make([]int, len(large))
	diff := len(large) - len(small)
	copy(sum, large[:diff])
	for i := diff; i < len(large); i++ {
		sum[i] = p.field.Add(small[i-diff], large[i])
	}
	return newPolynomial(p.field, sum)
}

// Multiply returns the field-convolution product p*other.
func (p *Polynomial) Multiply(other *Polynomial) *Polynomial {
	if p.IsZero() || other.IsZero() {
		return p.field.zero
	}
	a, b := p.coefficients, other.coefficients
	product := make([]int, len(a)+len(b)-1)
	for i, ac := range a {
		if ac == 0 {
			continue
		}
		for j, bc := range b {
			product[i+j] = p.field.Add(product[i+j], p.field.Multiply(ac, bc))
		}
	}
	return newPolynomial(p.field, product)
}

// MultiplyScalar returns s*p.
func (p *Polynomial) MultiplyScalar(s int) *Polynomial {
	if s == 0 {
		return p.field.zero
	}
	if s == 1 {
		return p
	}
	product := make([]int, len(p.coefficients))
	for i, c := range p.coefficients {
		product[i] = p.field.Multiply(c, s)
	}
	return newPolynomial(p.field, product)
}

// MultiplyByMonomial returns p*(coefficient*x^degree).
func (p *Polynomial) MultiplyByMonomial(degree, coefficient int) *Polynomial {
	if degree < 0 {
		panic("gf: negative degree")
	}
	if coefficient == 0 {
		return p.field.zero
	}
	product := make([]int, len(p.coefficients)+degree)
	for i, c := range p.coefficients {
		product[i] = p.field.Multiply(c, coefficient)
	}
	return newPolynomial(p.field, product)
}

// Divide performs polynomial long division, returning (quotient, remainder)
// such that p = quotient*other + remainder.
func (p *Polynomial) Divide(other *Polynomial) (quotient, remainder *Polynomial) {
	if other.IsZero() {
		panic("gf: division by zero polynomial")
	}

	quotient = p.field.zero
	remainder = p

	denomLead := other.Coefficient(other.Degree())
	invDenomLead := p.field.Inverse(denomLead)

	for remainder.Degree() >= other.Degree() && !remainder.IsZero() {
		degreeDiff := remainder.Degree() - other.Degree()
		scale := p.field.Multiply(remainder.Coefficient(remainder.Degree()), invDenomLead)
		term := other.MultiplyByMonomial(degreeDiff, scale)
		quotient = quotient.AddOrSubtract(p.field.Monomial(degreeDiff, scale))
		remainder = remainder.AddOrSubtract(term)
	}
	return quotient, remainder
}
