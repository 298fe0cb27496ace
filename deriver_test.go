package auction

import (
	"errors"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

func u256(u uint64) uint256.Int {
	return *uint256.NewInt(u)
}

func TestLocateCurrentAmount(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tests := []struct {
			start, end                   string
			elapsed, remaining, duration uint64
			roundUp                      bool
			want                         string
		}{
			// Ascending
			{"100", "200", 3, 7, 10, false, "130"},
			{"100", "200", 3, 7, 10, true, "130"},
			{"0", "1", 1, 2, 3, true, "1"},
			{"0", "1", 1, 2, 3, false, "0"},
			{"100", "200", 0, 10, 10, false, "100"},
			{"100", "200", 0, 10, 10, true, "100"},
			{"100", "200", 10, 0, 10, false, "200"},
			{"100", "200", 10, 0, 10, true, "200"},
			// Descending
			{"200", "100", 3, 7, 10, false, "170"},
			{"200", "100", 3, 7, 10, true, "170"},
			{"10", "0", 1, 2, 3, false, "6"},
			{"10", "0", 1, 2, 3, true, "7"},
			// Constant
			{"5", "5", 1, 2, 3, true, "5"},
			{"5", "5", 0, 0, 0, false, "5"},
			{maxAmount, maxAmount, 7, 7, 7, true, maxAmount},
			// Wide
			{maxAmount, "0", 1, 1, 2, false, "57896044618658097711785492504343953926634992332820282019728792003956564819967"},
			{"0", maxAmount, 1, 0, 1, false, maxAmount},
		}
		for _, tt := range tests {
			start := MustParseAmount(tt.start)
			end := MustParseAmount(tt.end)
			got, err := LocateCurrentAmount(start, end, u256(tt.elapsed), u256(tt.remaining), u256(tt.duration), tt.roundUp)
			if err != nil {
				t.Errorf("LocateCurrentAmount(%v, %v, %v, %v, %v, %v) failed: %v", start, end, tt.elapsed, tt.remaining, tt.duration, tt.roundUp, err)
				continue
			}
			want := MustParseAmount(tt.want)
			if got != want {
				t.Errorf("LocateCurrentAmount(%v, %v, %v, %v, %v, %v) = %v, want %v", start, end, tt.elapsed, tt.remaining, tt.duration, tt.roundUp, got, want)
			}
		}
	})

	t.Run("error", func(t *testing.T) {
		tests := map[string]struct {
			start, end                   string
			elapsed, remaining, duration uint64
			roundUp                      bool
			want                         error
		}{
			"overflow 1": {maxAmount, "0", 0, 2, 2, false, ErrOverflow},
			"overflow 2": {"0", maxAmount, 2, 0, 2, true, ErrOverflow},
			"overflow 3": {maxAmount, "1", 1, 1, 2, false, ErrOverflow},
			"overflow 4": {maxAmount, "0", 1, 1, 2, true, ErrOverflow},
			"zero 1":     {"1", "2", 0, 0, 0, false, ErrDivisionByZero},
			"zero 2":     {"2", "1", 0, 0, 0, true, ErrDivisionByZero},
		}
		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				start := MustParseAmount(tt.start)
				end := MustParseAmount(tt.end)
				_, err := LocateCurrentAmount(start, end, u256(tt.elapsed), u256(tt.remaining), u256(tt.duration), tt.roundUp)
				if !errors.Is(err, tt.want) {
					t.Errorf("LocateCurrentAmount(%v, %v, %v, %v, %v, %v) = %v, want %v", start, end, tt.elapsed, tt.remaining, tt.duration, tt.roundUp, err, tt.want)
				}
			})
		}
	})

	t.Run("properties", func(t *testing.T) {
		for start := uint64(0); start <= 20; start++ {
			for end := uint64(0); end <= 20; end++ {
				for duration := uint64(1); duration <= 8; duration++ {
					prev := Amount{}
					for elapsed := uint64(0); elapsed <= duration; elapsed++ {
						remaining := duration - elapsed
						a, b := NewAmount(start), NewAmount(end)
						floor, err := LocateCurrentAmount(a, b, u256(elapsed), u256(remaining), u256(duration), false)
						if err != nil {
							t.Fatalf("LocateCurrentAmount(%v, %v, %v, %v, %v, false) failed: %v", a, b, elapsed, remaining, duration, err)
						}
						ceil, err := LocateCurrentAmount(a, b, u256(elapsed), u256(remaining), u256(duration), true)
						if err != nil {
							t.Fatalf("LocateCurrentAmount(%v, %v, %v, %v, %v, true) failed: %v", a, b, elapsed, remaining, duration, err)
						}

						// Reference result
						total := start*remaining + end*elapsed
						wantFloor, wantCeil := total/duration, (total+duration-1)/duration
						if start == end {
							wantFloor, wantCeil = end, end
						}
						if floor != NewAmount(wantFloor) || ceil != NewAmount(wantCeil) {
							t.Errorf("LocateCurrentAmount(%v, %v, %v, %v, %v) = [%v %v], want [%v %v]", a, b, elapsed, remaining, duration, floor, ceil, wantFloor, wantCeil)
						}

						// Boundaries
						if elapsed == 0 && (floor != a || ceil != a) {
							t.Errorf("LocateCurrentAmount(%v, %v, 0, %v, %v) = [%v %v], want %v", a, b, remaining, duration, floor, ceil, a)
						}
						if elapsed == duration && (floor != b || ceil != b) {
							t.Errorf("LocateCurrentAmount(%v, %v, %v, 0, %v) = [%v %v], want %v", a, b, elapsed, duration, floor, ceil, b)
						}

						// Ceiling is at most one unit above floor
						diff, err := ceil.Sub(floor)
						if err != nil || diff.Cmp(NewAmount(1)) > 0 {
							t.Errorf("LocateCurrentAmount(%v, %v, %v, %v, %v): ceil %v, floor %v", a, b, elapsed, remaining, duration, ceil, floor)
						}

						// Monotonicity
						if start < end && floor.Cmp(prev) < 0 {
							t.Errorf("LocateCurrentAmount(%v, %v, %v, %v, %v) = %v, decreased from %v", a, b, elapsed, remaining, duration, floor, prev)
						}
						prev = floor
					}
				}
			}
		}
	})
}

func TestGetFraction(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tests := []struct {
			numerator, denominator uint64
			value, want            string
		}{
			{2, 3, "9", "6"},
			{1, 2, "100", "50"},
			{1, 1, "7", "7"},
			{3, 3, maxAmount, maxAmount},
			{0, 0, "5", "5"},
			{5, 10, "0", "0"},
			{1, 4, "1000000000000000000", "250000000000000000"},
			{1, 2, maxAmount[:len(maxAmount)-1] + "4", "57896044618658097711785492504343953926634992332820282019728792003956564819967"},
		}
		for _, tt := range tests {
			value := MustParseAmount(tt.value)
			got, err := GetFraction(u256(tt.numerator), u256(tt.denominator), value)
			if err != nil {
				t.Errorf("GetFraction(%v, %v, %v) failed: %v", tt.numerator, tt.denominator, value, err)
				continue
			}
			want := MustParseAmount(tt.want)
			if got != want {
				t.Errorf("GetFraction(%v, %v, %v) = %v, want %v", tt.numerator, tt.denominator, value, got, want)
			}
		}
	})

	t.Run("error", func(t *testing.T) {
		tests := map[string]struct {
			numerator, denominator uint64
			value                  string
			want                   error
		}{
			"inexact 1":  {2, 3, "10", ErrInexactFraction},
			"inexact 2":  {1, 2, "1", ErrInexactFraction},
			"inexact 3":  {1, 2, maxAmount, ErrInexactFraction},
			"overflow 1": {2, 3, maxAmount, ErrOverflow},
			"zero 1":     {1, 0, "1", ErrDivisionByZero},
			"zero 2":     {0, 5, "1", ErrDivisionByZero},
			"zero 3":     {0, 5, "0", ErrDivisionByZero},
		}
		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				value := MustParseAmount(tt.value)
				_, err := GetFraction(u256(tt.numerator), u256(tt.denominator), value)
				if !errors.Is(err, tt.want) {
					t.Errorf("GetFraction(%v, %v, %v) = %v, want %v", tt.numerator, tt.denominator, value, err, tt.want)
				}
			})
		}
	})

	t.Run("properties", func(t *testing.T) {
		for denominator := uint64(1); denominator <= 12; denominator++ {
			for numerator := uint64(1); numerator <= denominator; numerator++ {
				for value := uint64(0); value <= 60; value++ {
					v := NewAmount(value)
					got, err := GetFraction(u256(numerator), u256(denominator), v)
					exact := value*numerator%denominator == 0
					switch {
					case numerator == denominator:
						if err != nil || got != v {
							t.Errorf("GetFraction(%v, %v, %v) = [%v %v], want %v", numerator, denominator, v, got, err, v)
						}
					case exact:
						if err != nil {
							t.Errorf("GetFraction(%v, %v, %v) failed: %v", numerator, denominator, v, err)
							continue
						}
						back, err := got.Mul(NewAmount(denominator))
						if err != nil {
							t.Fatalf("%v.Mul(%v) failed: %v", got, denominator, err)
						}
						back, err = back.Quo(NewAmount(numerator))
						if err != nil {
							t.Fatalf("%v.Quo(%v) failed: %v", back, numerator, err)
						}
						if back != v {
							t.Errorf("GetFraction(%v, %v, %v) = %v, but %v * %v / %v = %v", numerator, denominator, v, got, got, denominator, numerator, back)
						}
						if want := NewAmount(value * numerator / denominator); got != want {
							t.Errorf("GetFraction(%v, %v, %v) = %v, want %v", numerator, denominator, v, got, want)
						}
					default:
						if !errors.Is(err, ErrInexactFraction) {
							t.Errorf("GetFraction(%v, %v, %v) = [%v %v], want %v", numerator, denominator, v, got, err, ErrInexactFraction)
						}
					}
				}
			}
		}
	})
}

func TestApplyFraction(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tests := []struct {
			start, end string
			spec       FractionSpec
			roundUp    bool
			want       string
		}{
			{"100", "100", NewFractionSpec(1, 2, 0, 0, 0), false, "50"},
			{"100", "100", NewFractionSpec(1, 2, 4, 6, 10), true, "50"},
			{"100", "200", NewFractionSpec(1, 1, 3, 7, 10), false, "130"},
			{"100", "200", NewFractionSpec(1, 2, 3, 7, 10), false, "65"},
			{"200", "100", NewFractionSpec(1, 2, 3, 7, 10), false, "85"},
			{"10", "20", NewFractionSpec(1, 2, 1, 2, 3), false, "6"},
			{"10", "20", NewFractionSpec(1, 2, 1, 2, 3), true, "7"},
		}
		for _, tt := range tests {
			start := MustParseAmount(tt.start)
			end := MustParseAmount(tt.end)
			got, err := ApplyFraction(start, end, tt.spec, tt.roundUp)
			if err != nil {
				t.Errorf("ApplyFraction(%v, %v, %v, %v) failed: %v", start, end, tt.spec, tt.roundUp, err)
				continue
			}
			want := MustParseAmount(tt.want)
			if got != want {
				t.Errorf("ApplyFraction(%v, %v, %v, %v) = %v, want %v", start, end, tt.spec, tt.roundUp, got, want)
			}
		}
	})

	t.Run("error", func(t *testing.T) {
		tests := map[string]struct {
			start, end string
			spec       FractionSpec
			want       error
		}{
			"inexact 1":  {"101", "101", NewFractionSpec(1, 2, 0, 1, 1), ErrInexactFraction},
			"inexact 2":  {"101", "200", NewFractionSpec(1, 2, 0, 1, 1), ErrInexactFraction},
			"inexact 3":  {"100", "201", NewFractionSpec(1, 2, 0, 1, 1), ErrInexactFraction},
			"overflow 1": {maxAmount, "0", NewFractionSpec(2, 3, 0, 1, 1), ErrOverflow},
			"overflow 2": {maxAmount, "0", NewFractionSpec(1, 1, 0, 2, 2), ErrOverflow},
			"zero 1":     {"1", "2", NewFractionSpec(1, 1, 0, 0, 0), ErrDivisionByZero},
			"zero 2":     {"1", "1", NewFractionSpec(1, 0, 0, 1, 1), ErrDivisionByZero},
			"zero 3":     {"10", "20", NewFractionSpec(0, 2, 1, 2, 3), ErrDivisionByZero},
		}
		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				start := MustParseAmount(tt.start)
				end := MustParseAmount(tt.end)
				_, err := ApplyFraction(start, end, tt.spec, false)
				if !errors.Is(err, tt.want) {
					t.Errorf("ApplyFraction(%v, %v, %v, false) = %v, want %v", start, end, tt.spec, err, tt.want)
				}
			})
		}
	})

	t.Run("order of operations", func(t *testing.T) {
		// Locating first gives 13, which cannot be halved exactly.
		start, end := NewAmount(10), NewAmount(20)
		spec := NewFractionSpec(1, 2, 1, 2, 3)
		located, err := LocateCurrentAmount(start, end, spec.Elapsed, spec.Remaining, spec.Duration, false)
		if err != nil {
			t.Fatalf("LocateCurrentAmount failed: %v", err)
		}
		if _, err := GetFraction(spec.Numerator, spec.Denominator, located); !errors.Is(err, ErrInexactFraction) {
			t.Errorf("GetFraction(1, 2, %v) = %v, want %v", located, err, ErrInexactFraction)
		}
		got, err := ApplyFraction(start, end, spec, false)
		if err != nil {
			t.Fatalf("ApplyFraction(%v, %v, %v, false) failed: %v", start, end, spec, err)
		}
		if got != NewAmount(6) {
			t.Errorf("ApplyFraction(%v, %v, %v, false) = %v, want 6", start, end, spec, got)
		}
	})

	t.Run("full fill", func(t *testing.T) {
		for start := uint64(0); start <= 15; start++ {
			for end := uint64(0); end <= 15; end++ {
				for elapsed := uint64(0); elapsed <= 5; elapsed++ {
					for _, roundUp := range []bool{false, true} {
						a, b := NewAmount(start), NewAmount(end)
						spec := NewFractionSpec(7, 7, elapsed, 5-elapsed, 5)
						got, err := ApplyFraction(a, b, spec, roundUp)
						if err != nil {
							t.Fatalf("ApplyFraction(%v, %v, %v, %v) failed: %v", a, b, spec, roundUp, err)
						}
						want, err := LocateCurrentAmount(a, b, spec.Elapsed, spec.Remaining, spec.Duration, roundUp)
						if err != nil {
							t.Fatalf("LocateCurrentAmount(%v, %v, %v, %v) failed: %v", a, b, spec, roundUp, err)
						}
						if got != want {
							t.Errorf("ApplyFraction(%v, %v, %v, %v) = %v, want %v", a, b, spec, roundUp, got, want)
						}
					}
				}
			}
		}
	})
}

func TestApplyFraction_Wide(t *testing.T) {
	// 10^30 units, an amount that does not fit into 64 bits.
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil)
	start, err := NewAmountFromBig(new(big.Int).Mul(unit, big.NewInt(4)))
	if err != nil {
		t.Fatalf("NewAmountFromBig failed: %v", err)
	}
	end, err := NewAmountFromBig(new(big.Int).Mul(unit, big.NewInt(2)))
	if err != nil {
		t.Fatalf("NewAmountFromBig failed: %v", err)
	}
	spec := NewFractionSpec(1, 4, 1, 1, 2)
	got, err := ApplyFraction(start, end, spec, false)
	if err != nil {
		t.Fatalf("ApplyFraction(%v, %v, %v, false) failed: %v", start, end, spec, err)
	}
	// (10^30 + 0.5 * 10^30) / 2 = 0.75 * 10^30
	want, err := NewAmountFromBig(new(big.Int).Div(new(big.Int).Mul(unit, big.NewInt(3)), big.NewInt(4)))
	if err != nil {
		t.Fatalf("NewAmountFromBig failed: %v", err)
	}
	if got != want {
		t.Errorf("ApplyFraction(%v, %v, %v, false) = %v, want %v", start, end, spec, got, want)
	}
}

func TestFractionSpec_Validate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tests := []FractionSpec{
			NewFractionSpec(1, 1, 0, 1, 1),
			NewFractionSpec(1, 3, 5, 5, 10),
			NewFractionSpec(2, 3, 10, 0, 10),
		}
		for _, tt := range tests {
			if err := tt.Validate(); err != nil {
				t.Errorf("%v.Validate() failed: %v", tt, err)
			}
		}
	})

	t.Run("error", func(t *testing.T) {
		overflow := NewFractionSpec(1, 1, 0, 0, 1)
		overflow.Elapsed.SetAllOne()
		overflow.Remaining.SetUint64(1)
		tests := map[string]FractionSpec{
			"denominator 1": NewFractionSpec(0, 0, 0, 1, 1),
			"duration 1":    NewFractionSpec(1, 1, 0, 0, 0),
			"numerator 1":   NewFractionSpec(3, 2, 0, 1, 1),
			"numerator 2":   NewFractionSpec(0, 2, 0, 1, 1),
			"window 1":      NewFractionSpec(1, 2, 3, 3, 10),
			"window 2":      overflow,
		}
		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				err := tt.Validate()
				if !errors.Is(err, ErrInvalidSpec) {
					t.Errorf("%v.Validate() = %v, want %v", tt, err, ErrInvalidSpec)
				}
			})
		}
	})
}

func TestFractionSpec_String(t *testing.T) {
	spec := NewFractionSpec(1, 2, 3, 7, 10)
	want := "1/2 at 3/10"
	if got := spec.String(); got != want {
		t.Errorf("NewFractionSpec(1, 2, 3, 7, 10).String() = %q, want %q", got, want)
	}
	if spec.IsFull() {
		t.Errorf("%v.IsFull() = true, want false", spec)
	}
	if !NewFractionSpec(4, 4, 0, 1, 1).IsFull() {
		t.Errorf("4/4.IsFull() = false, want true")
	}
}

func TestItem(t *testing.T) {
	tests := []struct {
		item                  Item
		spec                  FractionSpec
		wantOffer, wantConsid string
	}{
		{Item{NewAmount(100), NewAmount(200)}, NewFractionSpec(1, 1, 1, 2, 3), "133", "134"},
		{Item{NewAmount(200), NewAmount(100)}, NewFractionSpec(1, 1, 1, 2, 3), "166", "167"},
		{Item{NewAmount(100), NewAmount(100)}, NewFractionSpec(1, 4, 1, 2, 3), "25", "25"},
		{Item{NewAmount(90), NewAmount(30)}, NewFractionSpec(1, 3, 3, 0, 3), "10", "10"},
	}
	for _, tt := range tests {
		offer, err := tt.item.OfferAmount(tt.spec)
		if err != nil {
			t.Errorf("%v.OfferAmount(%v) failed: %v", tt.item, tt.spec, err)
			continue
		}
		if want := MustParseAmount(tt.wantOffer); offer != want {
			t.Errorf("%v.OfferAmount(%v) = %v, want %v", tt.item, tt.spec, offer, want)
		}
		consid, err := tt.item.ConsiderationAmount(tt.spec)
		if err != nil {
			t.Errorf("%v.ConsiderationAmount(%v) failed: %v", tt.item, tt.spec, err)
			continue
		}
		if want := MustParseAmount(tt.wantConsid); consid != want {
			t.Errorf("%v.ConsiderationAmount(%v) = %v, want %v", tt.item, tt.spec, consid, want)
		}
	}

	if !(Item{NewAmount(1), NewAmount(1)}).IsFixed() {
		t.Errorf("Item{1, 1}.IsFixed() = false, want true")
	}
	if (Item{NewAmount(1), NewAmount(2)}).IsFixed() {
		t.Errorf("Item{1, 2}.IsFixed() = true, want false")
	}
}
