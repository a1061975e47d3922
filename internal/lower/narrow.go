package lower

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/emberdb/ember/internal/sem"
)

// Narrow derives the minimal decimal type that represents a literal's
// value exactly: scale is the number of fractional digits actually
// present, precision the total significant digits (trailing zeros
// dropped first, since they carry no information).
//
// A literal's declared decimal type is typically a worst-case bound from
// the host analyzer. Feeding that bound into the multiply or divide
// promotion rule inflates the result precision far beyond what the value
// needs and risks overflowing the backend's maximum precision, so the
// compiler substitutes the narrowed type for literal operands of those
// two operators. Narrowing only changes the type used to compute the
// result bound, never the value itself.
func Narrow(value *apd.Decimal) sem.Type {
	var d apd.Decimal
	d.Set(value)
	d.Reduce(&d)

	digits := int32(d.NumDigits())

	var scale int32
	if d.Exponent < 0 {
		scale = -d.Exponent
	}

	// Digits left of the point; zero for values like 0.01 whose
	// coefficient sits entirely in the fraction.
	intDigits := digits + d.Exponent
	if intDigits < 0 {
		intDigits = 0
	}

	precision := intDigits + scale
	if precision < 1 {
		precision = 1
	}
	return boundedDecimal(precision, scale)
}
