// Package batch evaluates sheets of fills read from YAML.
package batch

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/holiman/uint256"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/govalues/auction"
)

// Sides of an order a fill can be evaluated for.
const (
	SideOffer         = "offer"
	SideConsideration = "consideration"
)

// Fill is one line of a sheet. All numbers are strings so that values
// wider than 64 bits survive YAML decoding.
type Fill struct {
	Name        string `yaml:"name"`
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
	Numerator   string `yaml:"numerator"`
	Denominator string `yaml:"denominator"`
	Elapsed     string `yaml:"elapsed"`
	Remaining   string `yaml:"remaining"`
	Duration    string `yaml:"duration"`

	// Side selects the rounding direction. When empty, RoundUp is used.
	Side    string `yaml:"side"`
	RoundUp bool   `yaml:"round_up"`
}

// Sheet is a list of fills evaluated independently of each other.
type Sheet struct {
	Fills []Fill `yaml:"fills"`
}

// Load decodes a sheet.
func Load(r io.Reader) (Sheet, error) {
	var s Sheet
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if err == io.EOF {
			return Sheet{}, nil
		}
		return Sheet{}, fmt.Errorf("decoding sheet: %w", err)
	}
	return s, nil
}

// Item returns the start and end amounts of the fill.
func (f Fill) Item() (auction.Item, error) {
	start, err := auction.ParseAmount(f.Start)
	if err != nil {
		return auction.Item{}, fmt.Errorf("start: %w", err)
	}
	end, err := auction.ParseAmount(f.End)
	if err != nil {
		return auction.Item{}, fmt.Errorf("end: %w", err)
	}
	return auction.Item{Start: start, End: end}, nil
}

// Spec parses and validates the fraction spec of the fill.
func (f Fill) Spec() (auction.FractionSpec, error) {
	var s auction.FractionSpec
	fields := []struct {
		name  string
		text  string
		value *uint256.Int
	}{
		{"numerator", f.Numerator, &s.Numerator},
		{"denominator", f.Denominator, &s.Denominator},
		{"elapsed", f.Elapsed, &s.Elapsed},
		{"remaining", f.Remaining, &s.Remaining},
		{"duration", f.Duration, &s.Duration},
	}
	for _, field := range fields {
		a, err := auction.ParseAmount(field.text)
		if err != nil {
			return auction.FractionSpec{}, fmt.Errorf("%v: %w", field.name, err)
		}
		field.value.Set(a.Uint256())
	}
	if err := s.Validate(); err != nil {
		return auction.FractionSpec{}, err
	}
	return s, nil
}

func (f Fill) roundUp() (bool, error) {
	switch f.Side {
	case SideOffer:
		return false, nil
	case SideConsideration:
		return true, nil
	case "":
		return f.RoundUp, nil
	default:
		return false, fmt.Errorf("side %q is not supported", f.Side)
	}
}

// Evaluate computes the amount of the fill.
func (f Fill) Evaluate() (auction.Amount, error) {
	item, err := f.Item()
	if err != nil {
		return auction.Amount{}, err
	}
	spec, err := f.Spec()
	if err != nil {
		return auction.Amount{}, err
	}
	up, err := f.roundUp()
	if err != nil {
		return auction.Amount{}, err
	}
	return auction.ApplyFraction(item.Start, item.End, spec, up)
}

// Result is the outcome of one fill. Err is nil on success.
type Result struct {
	Name   string
	Amount auction.Amount
	Err    error
}

// Results holds one result per fill, in sheet order.
type Results []Result

// Failed returns the number of results with an error.
func (rs Results) Failed() int {
	n := 0
	for _, r := range rs {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Evaluate evaluates every fill of the sheet in order.
// A failing fill does not stop the evaluation of the rest.
func Evaluate(s Sheet, logger *zap.Logger) Results {
	results := make(Results, 0, len(s.Fills))
	for i, f := range s.Fills {
		name := f.Name
		if name == "" {
			name = fmt.Sprintf("fill-%d", i+1)
		}
		a, err := f.Evaluate()
		if err != nil {
			logger.Warn("fill_failed", zap.String("fill", name), zap.Error(err))
		} else {
			logger.Debug("fill_evaluated", zap.String("fill", name), zap.Stringer("amount", a))
		}
		results = append(results, Result{Name: name, Amount: a, Err: err})
	}
	logger.Info("sheet_evaluated",
		zap.Int("fills", len(results)),
		zap.Int("failed", results.Failed()),
	)
	return results
}

type resultView struct {
	Name   string `json:"name" yaml:"name"`
	Amount string `json:"amount,omitempty" yaml:"amount,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// FormatAmount renders an amount in minor units when scale is 0 and in
// whole units otherwise.
func FormatAmount(a auction.Amount, scale int) (string, error) {
	if scale == 0 {
		return a.String(), nil
	}
	d, err := a.Decimal(scale)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

// views renders every result. A result that cannot be formatted at the
// given scale is rendered with its formatting error, and the first such
// error is returned alongside.
func (rs Results) views(scale int) ([]resultView, error) {
	var first error
	views := make([]resultView, 0, len(rs))
	for _, r := range rs {
		v := resultView{Name: r.Name}
		if r.Err != nil {
			v.Error = r.Err.Error()
		} else {
			s, err := FormatAmount(r.Amount, scale)
			if err != nil {
				err = fmt.Errorf("formatting %v: %w", r.Name, err)
				if first == nil {
					first = err
				}
				v.Error = err.Error()
			}
			v.Amount = s
		}
		views = append(views, v)
	}
	return views, first
}

// Write renders the results as text, json or yaml.
// Every result is written even if some amounts cannot be formatted at the
// given scale; the first formatting error is then returned.
func (rs Results) Write(w io.Writer, format string, scale int) error {
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("output %q is not supported", format)
	}
	views, formatErr := rs.views(scale)
	if err := writeViews(w, format, views); err != nil {
		return err
	}
	return formatErr
}

func writeViews(w io.Writer, format string, views []resultView) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()
	}
	for _, v := range views {
		var err error
		if v.Error != "" {
			_, err = fmt.Fprintf(w, "%v\terror: %v\n", v.Name, v.Error)
		} else {
			_, err = fmt.Fprintf(w, "%v\t%v\n", v.Name, v.Amount)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
