// Package resource implements the per-node scheduling-resource accountant:
// FixedPoint arithmetic, ResourceSet/ResourceIds/ResourceIdSet slot
// accounting, and the top-level SchedulingResources record that a node's
// scheduler mutates as tasks are admitted, completed, or reconfigured.
package resource

import (
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// FixedPointDenominator is the fixed denominator used by every FixedPoint
// value in this package. 10000 covers the expected precision of resource
// declarations such as 0.5 or 0.0001 without binary-float drift.
const FixedPointDenominator int64 = 10000

// FixedPoint is a deterministic, non-negative fixed-precision rational used
// for every resource quantity in this package. Equality and zero-ness are
// exact: two FixedPoint values are equal iff their internal numerators are
// equal, and a value is zero iff its numerator is zero. This is what makes
// "is this exactly zero?" decidable after long chains of adds and
// subtracts, which a binary float cannot guarantee.
type FixedPoint struct {
	numerator int64
}

// Zero is the FixedPoint representation of 0.
var Zero = FixedPoint{numerator: 0}

// decimalFromInt64 is a small convenience wrapper used by the DebugString
// memory-rendering path, which needs plain decimal arithmetic on a
// configured block size rather than a FixedPoint.
func decimalFromInt64(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

// NewFixedPointFromInt constructs a FixedPoint from a non-negative integer.
func NewFixedPointFromInt(n int64) FixedPoint {
	if n < 0 {
		panic("resource: NewFixedPointFromInt: negative value")
	}

	return FixedPoint{numerator: n * FixedPointDenominator}
}

// NewFixedPointFromFloat constructs a FixedPoint from a non-negative
// float64, rounded to the fixed denominator.
func NewFixedPointFromFloat(f float64) FixedPoint {
	if f < 0 {
		panic("resource: NewFixedPointFromFloat: negative value")
	}

	d := decimal.NewFromFloat(f).Mul(decimal.NewFromInt(FixedPointDenominator))
	return FixedPoint{numerator: d.Round(0).IntPart()}
}

// NewFixedPointFromDecimal constructs a FixedPoint from a non-negative
// decimal.Decimal, rounded to the fixed denominator.
func NewFixedPointFromDecimal(d decimal.Decimal) FixedPoint {
	if d.IsNegative() {
		panic("resource: NewFixedPointFromDecimal: negative value")
	}

	scaled := d.Mul(decimal.NewFromInt(FixedPointDenominator))
	return FixedPoint{numerator: scaled.Round(0).IntPart()}
}

// IsZero returns true iff the FixedPoint's internal numerator is zero.
func (f FixedPoint) IsZero() bool {
	return f.numerator == 0
}

// IsWhole returns true iff the FixedPoint represents an integer quantity.
func (f FixedPoint) IsWhole() bool {
	return f.numerator%FixedPointDenominator == 0
}

// IsNegative returns true iff the FixedPoint's numerator is negative.
// FixedPoint values produced by this package's public constructors are
// always non-negative; this exists so intermediate arithmetic (subtract)
// can detect underflow before a caller observes it.
func (f FixedPoint) IsNegative() bool {
	return f.numerator < 0
}

// Add returns f + other.
func (f FixedPoint) Add(other FixedPoint) FixedPoint {
	return FixedPoint{numerator: f.numerator + other.numerator}
}

// Subtract returns f - other. The result may be negative; callers that
// must not observe a negative FixedPoint are responsible for checking
// IsNegative or clamping via Max.
func (f FixedPoint) Subtract(other FixedPoint) FixedPoint {
	return FixedPoint{numerator: f.numerator - other.numerator}
}

// negate returns -f. It is unexported and has no caller in this package;
// a negative FixedPoint is never exposed as a public constructor result.
func (f FixedPoint) negate() FixedPoint {
	return FixedPoint{numerator: -f.numerator}
}

// LessThan returns true iff f < other.
func (f FixedPoint) LessThan(other FixedPoint) bool {
	return f.numerator < other.numerator
}

// LessThanOrEqual returns true iff f <= other.
func (f FixedPoint) LessThanOrEqual(other FixedPoint) bool {
	return f.numerator <= other.numerator
}

// GreaterThan returns true iff f > other.
func (f FixedPoint) GreaterThan(other FixedPoint) bool {
	return f.numerator > other.numerator
}

// GreaterThanOrEqual returns true iff f >= other.
func (f FixedPoint) GreaterThanOrEqual(other FixedPoint) bool {
	return f.numerator >= other.numerator
}

// Equals returns true iff f == other. Exact, never an epsilon comparison.
func (f FixedPoint) Equals(other FixedPoint) bool {
	return f.numerator == other.numerator
}

// Max returns the greater of f and other.
func (f FixedPoint) Max(other FixedPoint) FixedPoint {
	if f.GreaterThan(other) {
		return f
	}
	return other
}

// Min returns the lesser of f and other.
func (f FixedPoint) Min(other FixedPoint) FixedPoint {
	if f.LessThan(other) {
		return f
	}
	return other
}

// ClampToZero returns f if f is non-negative, else Zero.
func (f FixedPoint) ClampToZero() FixedPoint {
	if f.IsNegative() {
		return Zero
	}
	return f
}

// Int64 truncates the FixedPoint to its integer part.
func (f FixedPoint) Int64() int64 {
	return f.numerator / FixedPointDenominator
}

// Float64 converts the FixedPoint back to a 64-bit floating value, for
// reporting purposes only; it must never be used as the basis for a
// subsequent FixedPoint comparison.
func (f FixedPoint) Float64() float64 {
	return float64(f.numerator) / float64(FixedPointDenominator)
}

// Decimal returns the FixedPoint's value as a decimal.Decimal.
func (f FixedPoint) Decimal() decimal.Decimal {
	return decimal.New(f.numerator, 0).Div(decimal.NewFromInt(FixedPointDenominator))
}

// String renders the FixedPoint as a plain decimal string.
func (f FixedPoint) String() string {
	return f.Decimal().StringFixed(4)
}

// MarshalJSON renders the FixedPoint as a quoted decimal string, via
// goccy/go-json, the way common/configuration/config.go encodes every
// other JSON surface in this module.
func (f FixedPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Decimal().String())
}

// UnmarshalJSON parses a quoted decimal string produced by MarshalJSON
// back into a FixedPoint.
func (f *FixedPoint) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}

	*f = NewFixedPointFromDecimal(d)
	return nil
}
