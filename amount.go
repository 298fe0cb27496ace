package auction

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/govalues/decimal"
	"github.com/holiman/uint256"
)

var (
	// ErrOverflow is returned when a product or a sum does not fit into 256 bits.
	ErrOverflow = errors.New("arithmetic overflow")
	// ErrUnderflow is returned when a difference would be negative.
	ErrUnderflow = errors.New("arithmetic underflow")
	// ErrDivisionByZero is returned when a duration, denominator or divisor is 0.
	ErrDivisionByZero = errors.New("division by zero")

	errInvalidAmount  = errors.New("invalid amount")
	errNegativeAmount = errors.New("negative amount")
	errScaleRange     = errors.New("scale out of range")
	errInexactAmount  = errors.New("inexact amount")
)

// Amount type represents a non-negative quantity of an item in its smallest
// indivisible unit (e.g. wei).
// Its zero value corresponds to 0.
// Amount is a 256-bit unsigned integer and all arithmetic on it is checked:
// there is no "wrap around" for amounts.
// Amount is designed to be safe for concurrent use by multiple goroutines.
type Amount struct {
	value uint256.Int
}

// NewAmount returns an amount equal to u.
func NewAmount(u uint64) Amount {
	var a Amount
	a.value.SetUint64(u)
	return a
}

// NewAmountFromUint256 returns an amount equal to u.
// The amount does not share memory with u.
// A nil u is treated as 0.
func NewAmountFromUint256(u *uint256.Int) Amount {
	var a Amount
	if u != nil {
		a.value.Set(u)
	}
	return a
}

// NewAmountFromBig converts a big integer to an amount.
// See also method [Amount.Big].
//
// NewAmountFromBig returns an error if:
//   - the integer is nil or negative;
//   - the integer does not fit into 256 bits.
func NewAmountFromBig(b *big.Int) (Amount, error) {
	switch {
	case b == nil:
		return Amount{}, fmt.Errorf("converting big integer: %w", errInvalidAmount)
	case b.Sign() < 0:
		return Amount{}, fmt.Errorf("converting %v: %w", b, errNegativeAmount)
	}
	u, overflow := uint256.FromBig(b)
	if overflow {
		return Amount{}, fmt.Errorf("converting %v: %w", b, ErrOverflow)
	}
	return NewAmountFromUint256(u), nil
}

// NewAmountFromDecimal converts a decimal expressed in whole units to an
// amount expressed in minor units, where one whole unit equals 10^scale
// minor units.
// For example, with scale 18, decimal 1.5 becomes 1500000000000000000.
// See also method [Amount.Decimal].
//
// NewAmountFromDecimal returns an error if:
//   - the decimal is negative;
//   - the scale is negative or greater than [decimal.MaxScale];
//   - the decimal has more than scale significant digits after the decimal
//     point, since such a decimal cannot be expressed in minor units exactly.
func NewAmountFromDecimal(d decimal.Decimal, scale int) (Amount, error) {
	a, err := newAmountFromDecimal(d, scale)
	if err != nil {
		return Amount{}, fmt.Errorf("converting %v at scale %v: %w", d, scale, err)
	}
	return a, nil
}

func newAmountFromDecimal(d decimal.Decimal, scale int) (Amount, error) {
	if d.IsNeg() {
		return Amount{}, errNegativeAmount
	}
	if scale < 0 || scale > decimal.MaxScale {
		return Amount{}, errScaleRange
	}
	if d.MinScale() > scale {
		return Amount{}, fmt.Errorf("%w: %v significant fractional digit(s) do not fit", errInexactAmount, d.MinScale())
	}
	whole, frac, ok := d.Int64(scale)
	if !ok {
		return Amount{}, ErrOverflow
	}
	var pow uint256.Int
	pow.Exp(uint256.NewInt(10), uint256.NewInt(uint64(scale)))
	a, err := NewAmount(uint64(whole)).mul(Amount{value: pow})
	if err != nil {
		return Amount{}, err
	}
	return a.add(NewAmount(uint64(frac)))
}

// ParseAmount converts a string to an amount.
// The input string must be in one of the following formats:
//
//	1234567890
//	0x499602d2
//
// Hexadecimal strings must not have leading zeros.
//
// ParseAmount returns an error if the string is not a valid unsigned integer
// or does not fit into 256 bits.
func ParseAmount(s string) (Amount, error) {
	var (
		u   *uint256.Int
		err error
	)
	switch {
	case s == "":
		return Amount{}, fmt.Errorf("parsing empty string: %w", errInvalidAmount)
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		u, err = uint256.FromHex(s)
	default:
		u, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return Amount{}, fmt.Errorf("parsing %q: %w: %v", s, errInvalidAmount, err)
	}
	return NewAmountFromUint256(u), nil
}

// MustParseAmount is like [ParseAmount] but panics if the string cannot be parsed.
// It simplifies safe initialization of global variables holding amounts.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(fmt.Sprintf("ParseAmount(%q) failed: %v", s, err))
	}
	return a
}

// Uint256 returns a copy of the amount as a 256-bit integer.
func (a Amount) Uint256() *uint256.Int {
	return a.value.Clone()
}

// Big returns the amount as a big integer.
// See also constructor [NewAmountFromBig].
func (a Amount) Big() *big.Int {
	return a.value.ToBig()
}

// Uint64 returns the amount as uint64.
// If the amount cannot be represented as uint64, then false is returned.
func (a Amount) Uint64() (u uint64, ok bool) {
	if !a.value.IsUint64() {
		return 0, false
	}
	return a.value.Uint64(), true
}

// Decimal returns the amount expressed in whole units, where one whole unit
// equals 10^scale minor units.
// The result always has exactly the given scale.
// For example, with scale 2, amount 12345 becomes 123.45.
// See also constructor [NewAmountFromDecimal].
//
// Decimal returns an error if:
//   - the scale is negative or greater than [decimal.MaxScale];
//   - the result cannot be represented exactly with [decimal.MaxPrec] digits.
func (a Amount) Decimal(scale int) (decimal.Decimal, error) {
	d, err := a.decimal(scale)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("converting %v to scale %v: %w", a, scale, err)
	}
	return d, nil
}

func (a Amount) decimal(scale int) (decimal.Decimal, error) {
	if scale < 0 || scale > decimal.MaxScale {
		return decimal.Decimal{}, errScaleRange
	}
	var pow, whole, frac uint256.Int
	pow.Exp(uint256.NewInt(10), uint256.NewInt(uint64(scale)))
	whole.DivMod(&a.value, &pow, &frac)
	if !whole.IsUint64() || whole.Uint64() > math.MaxInt64 || frac.Uint64() > math.MaxInt64 {
		return decimal.Decimal{}, ErrOverflow
	}
	w, f := int64(whole.Uint64()), int64(frac.Uint64()) //nolint:gosec
	d, err := decimal.New(w, 0)
	if err != nil {
		return decimal.Decimal{}, err
	}
	e, err := decimal.New(f, scale)
	if err != nil {
		return decimal.Decimal{}, err
	}
	d, err = d.AddExact(e, scale)
	if err != nil {
		return decimal.Decimal{}, ErrOverflow
	}
	// Rounding to 19 digits must not have lost anything.
	if gw, gf, ok := d.Int64(scale); !ok || gw != w || gf != f {
		return decimal.Decimal{}, ErrOverflow
	}
	return d, nil
}

// IsZero returns:
//
//	true  if a = 0
//	false otherwise
func (a Amount) IsZero() bool {
	return a.value.IsZero()
}

// Add returns the sum of amounts a and b.
//
// Add returns an error if the result does not fit into 256 bits.
func (a Amount) Add(b Amount) (Amount, error) {
	c, err := a.add(b)
	if err != nil {
		return Amount{}, fmt.Errorf("computing [%v + %v]: %w", a, b, err)
	}
	return c, nil
}

func (a Amount) add(b Amount) (Amount, error) {
	var c Amount
	if _, overflow := c.value.AddOverflow(&a.value, &b.value); overflow {
		return Amount{}, ErrOverflow
	}
	return c, nil
}

// Sub returns the difference between amounts a and b.
//
// Sub returns an error if b is greater than a.
func (a Amount) Sub(b Amount) (Amount, error) {
	c, err := a.sub(b)
	if err != nil {
		return Amount{}, fmt.Errorf("computing [%v - %v]: %w", a, b, err)
	}
	return c, nil
}

func (a Amount) sub(b Amount) (Amount, error) {
	var c Amount
	if _, underflow := c.value.SubOverflow(&a.value, &b.value); underflow {
		return Amount{}, ErrUnderflow
	}
	return c, nil
}

// Mul returns the product of amounts a and b.
//
// Mul returns an error if the result does not fit into 256 bits.
func (a Amount) Mul(b Amount) (Amount, error) {
	c, err := a.mul(b)
	if err != nil {
		return Amount{}, fmt.Errorf("computing [%v * %v]: %w", a, b, err)
	}
	return c, nil
}

func (a Amount) mul(b Amount) (Amount, error) {
	var c Amount
	if _, overflow := c.value.MulOverflow(&a.value, &b.value); overflow {
		return Amount{}, ErrOverflow
	}
	return c, nil
}

// Quo returns the quotient of amount a and divisor b rounded down.
// See also method [Amount.QuoCeil].
//
// Quo returns an error if the divisor is 0.
func (a Amount) Quo(b Amount) (Amount, error) {
	c, err := a.quo(b)
	if err != nil {
		return Amount{}, fmt.Errorf("computing [%v / %v]: %w", a, b, err)
	}
	return c, nil
}

func (a Amount) quo(b Amount) (Amount, error) {
	if b.IsZero() {
		return Amount{}, ErrDivisionByZero
	}
	var c Amount
	c.value.Div(&a.value, &b.value)
	return c, nil
}

// QuoCeil returns the quotient of amount a and divisor b rounded up.
// See also method [Amount.Quo].
//
// QuoCeil returns an error if the divisor is 0.
func (a Amount) QuoCeil(b Amount) (Amount, error) {
	c, err := a.quoCeil(b)
	if err != nil {
		return Amount{}, fmt.Errorf("computing [ceil(%v / %v)]: %w", a, b, err)
	}
	return c, nil
}

func (a Amount) quoCeil(b Amount) (Amount, error) {
	if b.IsZero() {
		return Amount{}, ErrDivisionByZero
	}
	var q, r Amount
	q.value.DivMod(&a.value, &b.value, &r.value)
	if r.IsZero() {
		return q, nil
	}
	// q < a / b <= max, so the increment cannot overflow.
	q.value.AddUint64(&q.value, 1)
	return q, nil
}

// Cmp compares amounts and returns:
//
//	-1 if a < b
//	 0 if a = b
//	+1 if a > b
func (a Amount) Cmp(b Amount) int {
	return a.value.Cmp(&b.value)
}

// Min returns the smaller amount.
// See also method [Amount.Cmp].
func (a Amount) Min(b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// Max returns the larger amount.
// See also method [Amount.Cmp].
func (a Amount) Max(b Amount) Amount {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// String implements the [fmt.Stringer] interface and returns a decimal
// representation of an amount.
// See also method [Amount.Format].
//
// [fmt.Stringer]: https://pkg.go.dev/fmt#Stringer
func (a Amount) String() string {
	return a.value.Dec()
}

// UnmarshalJSON implements the [json.Unmarshaler] interface.
// Both quoted strings and bare integers are accepted.
// See also constructor [ParseAmount].
//
// [json.Unmarshaler]: https://pkg.go.dev/encoding/json#Unmarshaler
func (a *Amount) UnmarshalJSON(text []byte) error {
	if string(text) == "null" {
		return nil
	}
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		text = text[1 : len(text)-1]
	}
	var err error
	*a, err = ParseAmount(string(text))
	if err != nil {
		return fmt.Errorf("unmarshaling %T: %w", Amount{}, err)
	}
	return nil
}

// MarshalJSON implements the [json.Marshaler] interface.
// MarshalJSON always returns a quoted decimal string, since most JSON
// decoders cannot represent 256-bit numbers.
//
// [json.Marshaler]: https://pkg.go.dev/encoding/json#Marshaler
func (a Amount) MarshalJSON() ([]byte, error) {
	s := a.String()
	text := make([]byte, 0, len(s)+2)
	text = append(text, '"')
	text = append(text, s...)
	text = append(text, '"')
	return text, nil
}

// UnmarshalText implements [encoding.TextUnmarshaler] interface.
// See also constructor [ParseAmount].
//
// [encoding.TextUnmarshaler]: https://pkg.go.dev/encoding#TextUnmarshaler
func (a *Amount) UnmarshalText(text []byte) error {
	var err error
	*a, err = ParseAmount(string(text))
	if err != nil {
		return fmt.Errorf("unmarshaling %T: %w", Amount{}, err)
	}
	return nil
}

// AppendText implements the [encoding.TextAppender] interface.
//
// [encoding.TextAppender]: https://pkg.go.dev/encoding#TextAppender
func (a Amount) AppendText(text []byte) ([]byte, error) {
	return append(text, a.String()...), nil
}

// MarshalText implements [encoding.TextMarshaler] interface.
// MarshalText always returns a decimal string.
//
// [encoding.TextMarshaler]: https://pkg.go.dev/encoding#TextMarshaler
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Scan implements the [sql.Scanner] interface.
// Amounts are stored as decimal strings, since SQL integer types are
// narrower than 256 bits.
//
// [sql.Scanner]: https://pkg.go.dev/database/sql#Scanner
func (a *Amount) Scan(value any) error {
	var err error
	switch value := value.(type) {
	case string:
		*a, err = ParseAmount(value)
	case []byte:
		*a, err = ParseAmount(string(value))
	case int64:
		if value < 0 {
			err = errNegativeAmount
			break
		}
		*a = NewAmount(uint64(value))
	case nil:
		err = fmt.Errorf("%T does not support null values, use %T or *%T", Amount{}, NullAmount{}, Amount{})
	default:
		err = fmt.Errorf("type %T is not supported", value)
	}
	if err != nil {
		err = fmt.Errorf("converting from %T to %T: %w", value, Amount{}, err)
	}
	return err
}

// Value implements the [driver.Valuer] interface.
//
// [driver.Valuer]: https://pkg.go.dev/database/sql/driver#Valuer
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Format implements the [fmt.Formatter] interface.
// The following [format verbs] are available:
//
//	| Verb       | Example      | Description           |
//	| ---------- | ------------ | --------------------- |
//	| %s, %v, %d | 1234         | Decimal amount        |
//	| %q         | "1234"       | Quoted decimal amount |
//	| %x, %X     | 4d2, 4D2     | Hexadecimal amount    |
//
// The '-' format flag can be used with all verbs.
// The '0' format flag can be used with all verbs except %q.
// The '#' format flag adds the 0x prefix to %x and %X.
//
// [format verbs]: https://pkg.go.dev/fmt#hdr-Printing
// [fmt.Formatter]: https://pkg.go.dev/fmt#Formatter
func (a Amount) Format(state fmt.State, verb rune) {
	// Digits
	var digs, prefix string
	switch verb {
	case 'x':
		digs = strings.TrimPrefix(a.value.Hex(), "0x")
		if state.Flag('#') {
			prefix = "0x"
		}
	case 'X':
		digs = strings.ToUpper(strings.TrimPrefix(a.value.Hex(), "0x"))
		if state.Flag('#') {
			prefix = "0X"
		}
	default:
		digs = a.String()
	}

	// Opening and closing quotes
	lquote, tquote := 0, 0
	if verb == 'q' || verb == 'Q' {
		lquote, tquote = 1, 1
	}

	// Calculating padding
	width := lquote + len(prefix) + len(digs) + tquote
	lspaces, lzeros, tspaces := 0, 0, 0
	if w, ok := state.Width(); ok && w > width {
		switch {
		case state.Flag('-'):
			tspaces = w - width
		case state.Flag('0') && verb != 'q' && verb != 'Q':
			lzeros = w - width
		default:
			lspaces = w - width
		}
		width = w
	}

	buf := make([]byte, 0, width)
	for i := 0; i < lspaces; i++ {
		buf = append(buf, ' ')
	}
	if lquote > 0 {
		buf = append(buf, '"')
	}
	buf = append(buf, prefix...)
	for i := 0; i < lzeros; i++ {
		buf = append(buf, '0')
	}
	buf = append(buf, digs...)
	if tquote > 0 {
		buf = append(buf, '"')
	}
	for i := 0; i < tspaces; i++ {
		buf = append(buf, ' ')
	}

	// Writing result
	//nolint:errcheck
	switch verb {
	case 'q', 'Q', 's', 'S', 'v', 'V', 'd', 'D', 'x', 'X':
		state.Write(buf)
	default:
		state.Write([]byte("%!"))
		state.Write([]byte{byte(verb)})
		state.Write([]byte("(auction.Amount="))
		state.Write(buf)
		state.Write([]byte(")"))
	}
}

// NullAmount represents an amount that can be null.
// Its zero value is null.
// NullAmount is not thread-safe.
type NullAmount struct {
	Amount Amount
	Valid  bool
}

// Scan implements the [sql.Scanner] interface.
// See also method [Amount.Scan].
//
// [sql.Scanner]: https://pkg.go.dev/database/sql#Scanner
func (n *NullAmount) Scan(value any) error {
	if value == nil {
		n.Amount = Amount{}
		n.Valid = false
		return nil
	}
	n.Valid = true
	return n.Amount.Scan(value)
}

// Value implements the [driver.Valuer] interface.
// See also method [Amount.Value].
//
// [driver.Valuer]: https://pkg.go.dev/database/sql/driver#Valuer
func (n NullAmount) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Amount.Value()
}
