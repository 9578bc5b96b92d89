// Package format renders numbers and financial values for terminal output
// and parses the abbreviated values scraped from financial statements.
package format

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// magnitudes are the LongNumber suffixes, one per factor of 1000.
const magnitudes = " KMBTP"

// LongNumber formats v with a K/M/B/T/P suffix, dividing by 1000 until
// |v| < 1000. Whole results print without decimals, others with three.
func LongNumber(v float64) string {
	mag := 0
	for math.Abs(v) >= 1000 && mag < len(magnitudes)-1 {
		mag++
		v /= 1000
	}

	var num string
	if v == math.Trunc(v) {
		num = strconv.FormatFloat(v, 'f', 0, 64)
	} else {
		num = fmt.Sprintf("%.3f", v)
	}
	return strings.TrimSpace(num + " " + string(magnitudes[mag]))
}

var integerPattern = regexp.MustCompile(`^-?[0-9]+$`)

// LongNumberString applies LongNumber to s when s is an integer literal and
// returns anything else unchanged.
func LongNumberString(s string) string {
	if !integerPattern.MatchString(s) {
		return s
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return LongNumber(n)
}

var (
	hundred     = decimal.NewFromInt(100)
	scaleSuffix = map[byte]decimal.Decimal{
		'B': decimal.New(1, 9),
		'M': decimal.New(1, 6),
		'K': decimal.New(1, 3),
	}
)

// ParseScaledValue parses values such as "12.5%", "(3.1B)", "450K" or "-".
// Surrounding parentheses and spaces are dropped, "-" reads as zero, a
// trailing % divides by 100 and B/M/K multiply by 1e9/1e6/1e3.
func ParseScaledValue(s string) (float64, error) {
	v := strings.Trim(s, "( )")
	if v == "-" {
		v = "0"
	}
	if v == "" {
		return 0, fmt.Errorf("parse scaled value %q: empty", s)
	}

	last := v[len(v)-1]
	mult, scaled := scaleSuffix[last]
	var (
		d   decimal.Decimal
		err error
	)
	switch {
	case last == '%':
		d, err = decimal.NewFromString(v[:len(v)-1])
		d = d.Div(hundred)
	case scaled:
		d, err = decimal.NewFromString(v[:len(v)-1])
		d = d.Mul(mult)
	default:
		d, err = decimal.NewFromString(v)
	}
	if err != nil {
		return 0, fmt.Errorf("parse scaled value %q: %w", s, err)
	}

	f, _ := d.Float64()
	return f, nil
}

// IntOrRoundFloat formats x with a leading space, as an integer when x is
// whole and rounded to two decimals otherwise. Rounding is of the exact
// binary value with ties to even, and a fractional result always keeps at
// least one decimal ("1.0").
func IntOrRoundFloat(x float64) string {
	frac := x - math.Trunc(x)
	if frac >= -epsilon && frac <= epsilon {
		return " " + strconv.FormatFloat(math.Trunc(x), 'f', 0, 64)
	}

	r := decimal.RequireFromString(strconv.FormatFloat(x, 'f', 2, 64))
	s := r.String()
	if !strings.Contains(s, ".") {
		s = r.StringFixed(1)
	}
	return " " + s
}

// epsilon is the float64 machine epsilon.
const epsilon = 2.220446049250313e-16

// Chunk splits s into consecutive slices of at most n elements.
func Chunk[T any](s []T, n int) [][]T {
	if n <= 0 {
		return nil
	}
	out := make([][]T, 0, (len(s)+n-1)/n)
	for i := 0; i < len(s); i += n {
		end := min(i+n, len(s))
		out = append(out, s[i:end])
	}
	return out
}

// ParseBool accepts t/true/1/yes/y and f/false/0/no/n, in any case.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "false", "f", "0", "no", "n":
		return false, nil
	case "true", "t", "1", "yes", "y":
		return true, nil
	}
	return false, fmt.Errorf("%s is not a valid boolean value", s)
}

var (
	ohlcPattern  = regexp.MustCompile(`^[ohlca]+$`)
	ohlcReplacer = strings.NewReplacer("o", "1", "h", "2", "l", "3", "c", "4", "a", "5")
)

// OHLCIndices maps a selection such as "oc" of open/high/low/close/adjusted
// close onto column numbers ("14").
func OHLCIndices(s string) (string, error) {
	if !ohlcPattern.MatchString(s) {
		return "", fmt.Errorf("ohlc selection %q is not recognized", s)
	}
	return ohlcReplacer.Replace(s), nil
}
