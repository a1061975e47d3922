// Package sem defines the semantic type model shared by the expression
// tree and the native-backend call tree.
//
// Types are small immutable values. Decimal types carry (precision, scale);
// every other kind is fully described by its Kind tag. The arithmetic
// compiler only ever produces numeric and decimal types, but the model also
// names the non-numeric kinds the support gate may be asked about.
package sem

import "fmt"

// Kind tags a semantic type.
type Kind int

const (
	Invalid Kind = iota
	Bool
	Byte
	Short
	Int
	Long
	Float
	Double
	Decimal
	String
	Date
	Timestamp
)

// MaxPrecision is the widest decimal the native backend can represent.
// Promotion results are bounded to this (see lower.Unify).
const MaxPrecision = 38

// MinAdjustedScale is the fractional-digit floor kept when a promotion
// result overflows MaxPrecision and scale must be sacrificed.
const MinAdjustedScale = 6

// Type is an immutable semantic type value. Precision and Scale are
// meaningful only when Kind == Decimal and are zero otherwise.
type Type struct {
	Kind      Kind
	Precision int32
	Scale     int32
}

// Of returns the type for a non-decimal kind.
func Of(k Kind) Type {
	return Type{Kind: k}
}

// DecimalOf returns a decimal type with the given precision and scale.
// Callers are responsible for p >= s >= 0; Validate reports violations.
func DecimalOf(precision, scale int32) Type {
	return Type{Kind: Decimal, Precision: precision, Scale: scale}
}

// Validate reports whether the type is well formed. For decimals this
// enforces precision >= scale >= 0 and 1 <= precision <= MaxPrecision.
func (t Type) Validate() error {
	if t.Kind == Invalid {
		return fmt.Errorf("invalid type kind")
	}
	if t.Kind != Decimal {
		if t.Precision != 0 || t.Scale != 0 {
			return fmt.Errorf("%s carries decimal precision/scale", t.Kind)
		}
		return nil
	}
	if t.Scale < 0 {
		return fmt.Errorf("decimal scale %d is negative", t.Scale)
	}
	if t.Precision < 1 || t.Precision > MaxPrecision {
		return fmt.Errorf("decimal precision %d outside [1, %d]", t.Precision, MaxPrecision)
	}
	if t.Precision < t.Scale {
		return fmt.Errorf("decimal precision %d smaller than scale %d", t.Precision, t.Scale)
	}
	return nil
}

// IsDecimal reports whether the type is a decimal.
func (t Type) IsDecimal() bool {
	return t.Kind == Decimal
}

// IsIntegral reports whether the type is a fixed-width integer.
func (t Type) IsIntegral() bool {
	switch t.Kind {
	case Byte, Short, Int, Long:
		return true
	}
	return false
}

// IsFloating reports whether the type is a binary floating-point type.
func (t Type) IsFloating() bool {
	return t.Kind == Float || t.Kind == Double
}

// IsNumeric reports whether the type participates in arithmetic at all.
func (t Type) IsNumeric() bool {
	return t.IsIntegral() || t.IsFloating() || t.IsDecimal()
}

// Equal reports exact type equality, including precision and scale.
func (t Type) Equal(o Type) bool {
	return t == o
}

func (t Type) String() string {
	if t.Kind == Decimal {
		return fmt.Sprintf("decimal(%d,%d)", t.Precision, t.Scale)
	}
	return t.Kind.String()
}

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Byte:
		return "byte"
	case Short:
		return "short"
	case Int:
		return "int"
	case Long:
		return "long"
	case Float:
		return "float"
	case Double:
		return "double"
	case Decimal:
		return "decimal"
	case String:
		return "string"
	case Date:
		return "date"
	case Timestamp:
		return "timestamp"
	default:
		return "invalid"
	}
}

// KindFromName parses a kind name as it appears in fixtures and the
// support allow-list config. Decimal precision/scale are not part of the
// name; use ParseType for full type syntax.
func KindFromName(name string) (Kind, bool) {
	switch name {
	case "bool":
		return Bool, true
	case "byte":
		return Byte, true
	case "short":
		return Short, true
	case "int":
		return Int, true
	case "long":
		return Long, true
	case "float":
		return Float, true
	case "double":
		return Double, true
	case "decimal":
		return Decimal, true
	case "string":
		return String, true
	case "date":
		return Date, true
	case "timestamp":
		return Timestamp, true
	}
	return Invalid, false
}

// ParseType parses the textual form produced by Type.String:
// a bare kind name, or decimal(p,s).
func ParseType(s string) (Type, error) {
	var p, sc int32
	if n, err := fmt.Sscanf(s, "decimal(%d,%d)", &p, &sc); err == nil && n == 2 {
		t := DecimalOf(p, sc)
		if err := t.Validate(); err != nil {
			return Type{}, fmt.Errorf("parse type %q: %w", s, err)
		}
		return t, nil
	}
	k, ok := KindFromName(s)
	if !ok || k == Decimal {
		return Type{}, fmt.Errorf("parse type %q: unknown type", s)
	}
	return Of(k), nil
}
