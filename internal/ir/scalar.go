package ir

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the only accepted textual form of an IRDate.
const DateLayout = "2006-01-02"

// IRDate represents a civil date with no time zone.
// The zero value is not a valid date; use ParseIRDate or DateOf.
type IRDate struct {
	Year  int
	Month time.Month
	Day   int
}

func (IRDate) irValue() {}

// ParseIRDate parses a YYYY-MM-DD date.
func ParseIRDate(s string) (IRDate, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return IRDate{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// DateOf returns the civil date of t in t's own location.
func DateOf(t time.Time) IRDate {
	y, m, d := t.Date()
	return IRDate{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of the date.
func (d IRDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats the date as YYYY-MM-DD.
func (d IRDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON renders the date as a YYYY-MM-DD string.
func (d IRDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// IsZero reports whether d is the zero date.
func (d IRDate) IsZero() bool {
	return d == IRDate{}
}

// Compare returns -1, 0 or +1 ordering d against other chronologically.
func (d IRDate) Compare(other IRDate) int {
	if c := cmp.Compare(d.Year, other.Year); c != 0 {
		return c
	}
	if c := cmp.Compare(d.Month, other.Month); c != 0 {
		return c
	}
	return cmp.Compare(d.Day, other.Day)
}

// DecimalScale is the number of IRDecimal units per whole number.
const DecimalScale = 1000

// IRDecimal is a fixed-point number with three decimal places, stored as
// thousandths. Prices in millions of USD use it, so 29.75 is IRDecimal(29750).
type IRDecimal int64

func (IRDecimal) irValue() {}

// ParseIRDecimal parses decimal text such as "29.75", "-3" or "1,160.0".
// Thousands separators and surrounding spaces are ignored. More than three
// fractional digits is an error rather than a silent rounding.
func ParseIRDecimal(s string) (IRDecimal, error) {
	text := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if text == "" {
		return 0, fmt.Errorf("invalid decimal %q: empty", s)
	}

	neg := false
	switch text[0] {
	case '-':
		neg = true
		text = text[1:]
	case '+':
		text = text[1:]
	}

	whole, frac, hasDot := strings.Cut(text, ".")
	if whole == "" && (!hasDot || frac == "") {
		return 0, fmt.Errorf("invalid decimal %q", s)
	}
	if len(frac) > 3 {
		return 0, fmt.Errorf("invalid decimal %q: more than 3 decimal places", s)
	}
	if !allDigits(whole) || !allDigits(frac) {
		return 0, fmt.Errorf("invalid decimal %q", s)
	}

	var units int64
	if whole != "" {
		n, err := strconv.ParseInt(whole, 10, 64)
		if err != nil || n > maxDecimalWhole {
			return 0, fmt.Errorf("invalid decimal %q: out of range", s)
		}
		units = n * DecimalScale
	}
	if frac != "" {
		frac += strings.Repeat("0", 3-len(frac))
		n, _ := strconv.ParseInt(frac, 10, 64)
		if units > math.MaxInt64-n {
			return 0, fmt.Errorf("invalid decimal %q: out of range", s)
		}
		units += n
	}
	if neg {
		units = -units
	}
	return IRDecimal(units), nil
}

// maxDecimalWhole is the largest whole number an IRDecimal holds.
const maxDecimalWhole = math.MaxInt64 / DecimalScale

// DecimalFromInt returns n as a whole-number IRDecimal. It fails when n
// does not fit.
func DecimalFromInt(n int64) (IRDecimal, error) {
	if n > maxDecimalWhole || n < -maxDecimalWhole {
		return 0, fmt.Errorf("invalid decimal %d: out of range", n)
	}
	return IRDecimal(n * DecimalScale), nil
}

// String renders the shortest exact text: 29750 -> "29.75", 62000 -> "62".
func (d IRDecimal) String() string {
	units := int64(d)
	sign := ""
	if units < 0 {
		sign = "-"
		units = -units
	}
	whole := units / DecimalScale
	frac := units % DecimalScale
	if frac == 0 {
		return sign + strconv.FormatInt(whole, 10)
	}
	fracText := strings.TrimRight(fmt.Sprintf("%03d", frac), "0")
	return sign + strconv.FormatInt(whole, 10) + "." + fracText
}

// MarshalJSON renders the decimal as a plain JSON number.
func (d IRDecimal) MarshalJSON() ([]byte, error) {
	return []byte(d.String()), nil
}

// Float64 converts to float64 for statistics. Never use it for equality.
func (d IRDecimal) Float64() float64 {
	return float64(d) / DecimalScale
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Compare orders two scalar values of the same type.
// It returns ok=false when the values are of different types, are null, or
// are not ordered (arrays, objects).
func Compare(a, b IRValue) (c int, ok bool) {
	switch x := a.(type) {
	case IRString:
		if y, isY := b.(IRString); isY {
			return strings.Compare(string(x), string(y)), true
		}
	case IRInt:
		if y, isY := b.(IRInt); isY {
			return cmp.Compare(x, y), true
		}
	case IRDecimal:
		if y, isY := b.(IRDecimal); isY {
			return cmp.Compare(x, y), true
		}
	case IRDate:
		if y, isY := b.(IRDate); isY {
			return x.Compare(y), true
		}
	case IRBool:
		if y, isY := b.(IRBool); isY {
			switch {
			case x == y:
				return 0, true
			case !bool(x):
				return -1, true
			default:
				return 1, true
			}
		}
	}
	return 0, false
}

// Equal reports whether two scalar values are of the same type and equal.
// Null is never equal to anything, including null.
func Equal(a, b IRValue) bool {
	c, ok := Compare(a, b)
	return ok && c == 0
}
