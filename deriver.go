package auction

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

var (
	// ErrInexactFraction is returned when a fraction does not divide a value
	// without a remainder.
	ErrInexactFraction = errors.New("inexact fraction")
	// ErrInvalidSpec is returned by [FractionSpec.Validate].
	ErrInvalidSpec = errors.New("invalid fraction spec")
)

// FractionSpec describes which portion of an order is being filled
// (Numerator / Denominator) and where the fill happens within the validity
// window of the order (Elapsed, Remaining and Duration).
//
// The following invariants are expected to be enforced by the caller:
//
//	Denominator > 0
//	Duration > 0
//	Numerator <= Denominator
//	Elapsed + Remaining = Duration
//
// See also method [FractionSpec.Validate].
type FractionSpec struct {
	Numerator   uint256.Int
	Denominator uint256.Int
	Elapsed     uint256.Int
	Remaining   uint256.Int
	Duration    uint256.Int
}

// NewFractionSpec returns a fraction spec built from 64-bit integers.
func NewFractionSpec(numerator, denominator, elapsed, remaining, duration uint64) FractionSpec {
	var s FractionSpec
	s.Numerator.SetUint64(numerator)
	s.Denominator.SetUint64(denominator)
	s.Elapsed.SetUint64(elapsed)
	s.Remaining.SetUint64(remaining)
	s.Duration.SetUint64(duration)
	return s
}

// IsFull returns true if the spec describes a fill of the whole order.
func (s FractionSpec) IsFull() bool {
	return s.Numerator.Eq(&s.Denominator)
}

// Validate returns an error if the spec violates any of its invariants.
// [ApplyFraction] does not call Validate, callers that receive specs from
// untrusted sources should.
func (s FractionSpec) Validate() error {
	var sum uint256.Int
	_, overflow := sum.AddOverflow(&s.Elapsed, &s.Remaining)
	switch {
	case s.Denominator.IsZero():
		return fmt.Errorf("%w: denominator is 0", ErrInvalidSpec)
	case s.Numerator.IsZero():
		return fmt.Errorf("%w: numerator is 0", ErrInvalidSpec)
	case s.Duration.IsZero():
		return fmt.Errorf("%w: duration is 0", ErrInvalidSpec)
	case s.Numerator.Gt(&s.Denominator):
		return fmt.Errorf("%w: numerator %v exceeds denominator %v", ErrInvalidSpec, s.Numerator.Dec(), s.Denominator.Dec())
	case overflow || !sum.Eq(&s.Duration):
		return fmt.Errorf("%w: elapsed %v and remaining %v do not add up to duration %v", ErrInvalidSpec, s.Elapsed.Dec(), s.Remaining.Dec(), s.Duration.Dec())
	}
	return nil
}

// String implements the [fmt.Stringer] interface.
// The result has the form "numerator/denominator at elapsed/duration".
//
// [fmt.Stringer]: https://pkg.go.dev/fmt#Stringer
func (s FractionSpec) String() string {
	return fmt.Sprintf("%v/%v at %v/%v", s.Numerator.Dec(), s.Denominator.Dec(), s.Elapsed.Dec(), s.Duration.Dec())
}

// LocateCurrentAmount returns the amount that lies between start and end
// after elapsed out of duration has passed:
//
//	(start * remaining + end * elapsed) / duration
//
// If roundUp is true, the quotient is rounded up, otherwise it is rounded down.
// If start and end are equal, end is returned without any arithmetic.
//
// LocateCurrentAmount returns an error if:
//   - any intermediate product or sum does not fit into 256 bits;
//   - start and end differ and the duration is 0.
func LocateCurrentAmount(start, end Amount, elapsed, remaining, duration uint256.Int, roundUp bool) (Amount, error) {
	a, err := locateCurrentAmount(start, end, &elapsed, &remaining, &duration, roundUp)
	if err != nil {
		return Amount{}, fmt.Errorf("locating amount between %v and %v at %v/%v: %w", start, end, elapsed.Dec(), duration.Dec(), err)
	}
	return a, nil
}

func locateCurrentAmount(start, end Amount, elapsed, remaining, duration *uint256.Int, roundUp bool) (Amount, error) {
	if start == end {
		return end, nil
	}
	if duration.IsZero() {
		return Amount{}, ErrDivisionByZero
	}
	var total, term uint256.Int
	if _, overflow := total.MulOverflow(&start.value, remaining); overflow {
		return Amount{}, ErrOverflow
	}
	if _, overflow := term.MulOverflow(&end.value, elapsed); overflow {
		return Amount{}, ErrOverflow
	}
	if _, overflow := total.AddOverflow(&total, &term); overflow {
		return Amount{}, ErrOverflow
	}
	if roundUp {
		// Adding duration - 1 before flooring leaves exact quotients intact.
		term.SubUint64(duration, 1)
		if _, overflow := total.AddOverflow(&total, &term); overflow {
			return Amount{}, ErrOverflow
		}
	}
	var a Amount
	a.value.Div(&total, duration)
	return a, nil
}

// GetFraction returns value * numerator / denominator.
// If numerator and denominator are equal, value is returned unchanged.
// Unlike [Amount.Quo], GetFraction never rounds: the fraction must divide
// the value exactly.
//
// GetFraction returns an error if:
//   - value * numerator does not fit into 256 bits;
//   - the numerator or the denominator is 0 and they differ;
//   - the fraction cannot be applied to the value without a remainder.
func GetFraction(numerator, denominator uint256.Int, value Amount) (Amount, error) {
	a, err := getFraction(&numerator, &denominator, value)
	if err != nil {
		return Amount{}, fmt.Errorf("computing [%v * %v / %v]: %w", value, numerator.Dec(), denominator.Dec(), err)
	}
	return a, nil
}

func getFraction(numerator, denominator *uint256.Int, value Amount) (Amount, error) {
	if numerator.Eq(denominator) {
		return value, nil
	}
	if denominator.IsZero() || numerator.IsZero() {
		return Amount{}, ErrDivisionByZero
	}
	var a Amount
	if _, overflow := a.value.MulOverflow(&value.value, numerator); overflow {
		return Amount{}, ErrOverflow
	}
	a.value.Div(&a.value, denominator)

	// Exactness. a * denominator <= value * numerator, so the product
	// cannot overflow.
	var check uint256.Int
	check.Mul(&a.value, denominator)
	check.Div(&check, numerator)
	if !check.Eq(&value.value) {
		return Amount{}, ErrInexactFraction
	}
	return a, nil
}

// ApplyFraction returns the amount owed for the portion of an order and the
// moment described by spec.
// The fraction is applied to both start and end first, and then the
// current amount is located between the results.
// The two steps do not commute under integer division and are never reordered.
// If start and end are equal, only the fraction is applied.
// See also functions [GetFraction] and [LocateCurrentAmount].
//
// ApplyFraction returns an error if either step fails.
func ApplyFraction(start, end Amount, spec FractionSpec, roundUp bool) (Amount, error) {
	a, err := applyFraction(start, end, &spec, roundUp)
	if err != nil {
		return Amount{}, fmt.Errorf("applying %v to [%v, %v]: %w", spec, start, end, err)
	}
	return a, nil
}

func applyFraction(start, end Amount, spec *FractionSpec, roundUp bool) (Amount, error) {
	if start == end {
		return getFraction(&spec.Numerator, &spec.Denominator, end)
	}
	s, err := getFraction(&spec.Numerator, &spec.Denominator, start)
	if err != nil {
		return Amount{}, err
	}
	e, err := getFraction(&spec.Numerator, &spec.Denominator, end)
	if err != nil {
		return Amount{}, err
	}
	return locateCurrentAmount(s, e, &spec.Elapsed, &spec.Remaining, &spec.Duration, roundUp)
}

// Item represents one line of an order whose amount moves linearly from
// Start to End over the validity window of the order.
// Amounts the maker of the order gives are offer amounts, amounts the maker
// receives are consideration amounts.
// Rounding always favours the maker: offer amounts are rounded down and
// consideration amounts are rounded up.
type Item struct {
	Start Amount
	End   Amount
}

// IsFixed returns true if the amount of the item does not change over time.
func (i Item) IsFixed() bool {
	return i.Start == i.End
}

// OfferAmount returns the amount the maker gives for the fill described
// by spec, rounded down.
// See also function [ApplyFraction].
func (i Item) OfferAmount(spec FractionSpec) (Amount, error) {
	return ApplyFraction(i.Start, i.End, spec, false)
}

// ConsiderationAmount returns the amount the maker receives for the fill
// described by spec, rounded up.
// See also function [ApplyFraction].
func (i Item) ConsiderationAmount(spec FractionSpec) (Amount, error) {
	return ApplyFraction(i.Start, i.End, spec, true)
}
