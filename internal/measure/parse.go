// Package measure parses free-text recipe quantities and converts between units.
package measure

import (
	"regexp"
	"strconv"
	"strings"
)

// Quantity is a numeric amount with an unnormalized lower-case unit token.
// Parsed is false when the text had no numeric prefix, in which case Value
// is 1 and Unit holds the whole text.
type Quantity struct {
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Parsed bool    `json:"-"`
}

// mixed numbers ("1 1/2"), simple fractions ("3/4") and decimals ("0.5", ".5").
// The unit may not start with a digit, dot or slash, so "1.2.3 g" and "1/2/3"
// are not split into a number and a bogus unit.
var quantityRe = regexp.MustCompile(`^(\d+\s+\d+/\d+|\d+/\d+|\d*\.?\d+)\s*([^\d./].*)?$`)

// Parse splits text into a leading number and the unit remainder.
// It never fails: text without a numeric prefix yields {1, text, false}.
func Parse(text string) Quantity {
	norm := strings.ToLower(strings.TrimSpace(text))

	m := quantityRe.FindStringSubmatch(norm)
	if m == nil {
		return Quantity{Value: 1, Unit: norm}
	}

	v, ok := parseNumber(m[1])
	if !ok {
		return Quantity{Value: 1, Unit: norm}
	}
	return Quantity{Value: v, Unit: strings.TrimSpace(m[2]), Parsed: true}
}

func parseNumber(s string) (float64, bool) {
	if whole, frac, ok := strings.Cut(s, " "); ok {
		w, err := strconv.ParseFloat(whole, 64)
		if err != nil {
			return 0, false
		}
		f, ok := parseFraction(strings.TrimSpace(frac))
		if !ok {
			return 0, false
		}
		return w + f, true
	}
	if strings.Contains(s, "/") {
		return parseFraction(s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseFraction(s string) (float64, bool) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, false
	}
	return n / d, true
}

// FormatSize renders a package size string. Short unit symbols are attached
// to the number ("500g"), longer units are separated by a space ("2 piece").
func FormatSize(value float64, unit string) string {
	num := strconv.FormatFloat(value, 'f', -1, 64)
	unit = strings.TrimSpace(unit)
	switch {
	case unit == "":
		return num
	case len(unit) <= 3 && !strings.Contains(unit, " "):
		return num + unit
	default:
		return num + " " + unit
	}
}

// NormalizeSize re-renders a size string through Parse and FormatSize.
// It returns "" when the text has no numeric prefix or no unit.
func NormalizeSize(text string) string {
	q := Parse(text)
	if !q.Parsed || q.Unit == "" || q.Value <= 0 {
		return ""
	}
	return FormatSize(q.Value, q.Unit)
}
