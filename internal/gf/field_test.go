package gf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/FihlaTV/qrtone/internal/gf"
)

func TestFieldInverseRoundTrip(t *testing.T) {
	field := gf.Field16
	for a := 1; a < field.Size(); a++ {
		inv := field.Inverse(a)
		require.Equal(t, 1, field.Multiply(a, inv), "a=%d", a)
	}
}

func TestFieldInversePropertyBased(t *testing.T) {
	field := gf.Field16
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.IntRange(1, field.Size()-1).Draw(rt, "a")
		inv := field.Inverse(a)
		assert.Equal(rt, 1, field.Multiply(a, inv))
	})
}

func TestFieldMultiplyByZero(t *testing.T) {
	field := gf.Field16
	assert.Equal(t, 0, field.Multiply(0, 7))
	assert.Equal(t, 0, field.Multiply(7, 0))
}

func TestFieldExpLogRoundTrip(t *testing.T) {
	field := gf.Field16
	for i := 0; i < field.Size()-1; i++ {
		v := field.Exp(i)
		require.Equal(t, i, field.Log(v))
	}
}

func TestPolynomialEvaluateMatchesHornerOnOnes(t *testing.T) {
	field := gf.Field16
	// p(x) = x^2 + x + 1; at x=1 this is 1 xor 1 xor 1 = 1 in GF(2^m).
	p := gf.NewPolynomial(field, []int{1, 1, 1})
	assert.Equal(t, 1, p.Evaluate(1))
}

func TestPolynomialEvaluateAtZeroIsConstantTerm(t *testing.T) {
	field := gf.Field16
	p := gf.NewPolynomial(field, []int{5, 3, 9})
	assert.Equal(t, 9, p.Evaluate(0))
}

func TestPolynomialEvaluatePropertyAgainstDirectSum(t *testing.T) {
	field := gf.Field16
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(rt, "n")
		coeffs := make([]int, n)
		for i := range coeffs {
			coeffs[i] = rapid.IntRange(0, field.Size()-1).Draw(rt, "c")
		}
		p := gf.NewPolynomial(field, coeffs)
		x := rapid.IntRange(0, field.Size()-1).Draw(rt, "x")

		// Direct evaluation: sum_i coeffs[i] * x^(degree-i).
		want := 0
		degree := len(coeffs) - 1
		for i, c := range coeffs {
			power := degree - i
			term := c
			for j := 0; j < power; j++ {
				term = field.Multiply(term, x)
			}
			want = field.Add(want, term)
		}
		assert.Equal(rt, want, p.Evaluate(x))
	})
}

func TestPolynomialMultiplyIdentity(t *testing.T) {
	field := gf.Field16
	p := gf.NewPolynomial(field, []int{3, 4, 5})
	product := p.Multiply(field.One())
	assert.Equal(t, p.Coefficients(), product.Coefficients())
}

func TestPolynomialAddOrSubtractIsSelfInverse(t *testing.T) {
	field := gf.Field16
	a := gf.NewPolynomial(field, []int{1, 2, 3})
	b := gf.NewPolynomial(field, []int{4, 5})
	sum := a.AddOrSubtract(b)
	back := sum.AddOrSubtract(b)
	assert.Equal(t, a.Coefficients(), back.Coefficients())
}
