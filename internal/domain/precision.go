package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// decimalRe matches a plain non-negative decimal literal after separator
// normalization: "10", "10.", "10.25", ".5".
var decimalRe = regexp.MustCompile(`^(?:\d+(?:\.\d*)?|\.\d+)$`)

// fractionDenominators are tried in order against the fractional part of a
// pure fraction such as "0.5" or "0.125".
var fractionDenominators = []float64{2, 3, 4, 8, 10, 100, 1000}

// fractionTolerance is how close fraction*denominator must be to an integer.
const fractionTolerance = 0.001

// normalizeDecimal puts text in "1234.5" form. With both separators present
// the comma is a thousands separator ("1,234.5"); a lone comma is a decimal
// comma ("1,5").
func normalizeDecimal(text string) string {
	text = strings.TrimSpace(text)
	if strings.Contains(text, ".") {
		return strings.ReplaceAll(text, ",", "")
	}
	return strings.Replace(text, ",", ".", 1)
}

// parseDistance returns the value of a non-negative decimal distance literal.
func parseDistance(text string) (string, float64, bool) {
	norm := normalizeDecimal(text)
	if !decimalRe.MatchString(norm) {
		return "", 0, false
	}
	v, err := strconv.ParseFloat(norm, 64)
	if err != nil {
		return "", 0, false
	}
	return norm, v, true
}

// DistancePrecision estimates the half-width of the granularity implied by
// how a distance was written, in the units it was written in. A value is
// taken to be accurate to half of its last significant place:
//
//	"10"    -> 5      "110"  -> 5      "100" -> 50
//	"10.0"  -> 0.05   "10.5" -> 0.05   "10.25" -> 0.005
//	"0.5"   -> 0.25   "0"    -> 0
//
// Pure fractions ("0.5", "0.25", "0.333") are read as halves, thirds,
// quarters and so on. The second result is false when text is not a
// non-negative decimal literal.
func DistancePrecision(text string) (float64, bool) {
	norm, value, ok := parseDistance(text)
	if !ok {
		return 0, false
	}
	if value < 0.001 {
		return 0, true
	}

	intPart, fracPart, _ := strings.Cut(norm, ".")
	var precision float64
	switch {
	case fracPart == "":
		precision = trailingPowerOfTen(intPart)
	case strings.HasSuffix(fracPart, "0") || strings.TrimLeft(intPart, "0") != "":
		precision = 1 / math.Pow(10, float64(len(fracPart)))
	default:
		precision = fractionPrecision(value)
	}
	return precision * 0.5, true
}

// trailingPowerOfTen returns the largest power of ten dividing the integer
// written in digits, e.g. "110" -> 10, "2000" -> 1000, "7" -> 1.
func trailingPowerOfTen(digits string) float64 {
	trimmed := strings.TrimLeft(digits, "0")
	zeros := len(trimmed) - len(strings.TrimRight(trimmed, "0"))
	return math.Pow(10, float64(zeros))
}

func fractionPrecision(value float64) float64 {
	_, frac := math.Modf(value)
	for _, d := range fractionDenominators {
		_, rem := math.Modf(frac * d)
		if rem < fractionTolerance || math.Abs(rem-1) < fractionTolerance {
			return 1 / d
		}
	}
	return 1
}
