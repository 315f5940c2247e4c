package lots

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseLocaleFloat parses a numeric string as found in procurement exports:
// spaces (including non-breaking ones) as thousands separators and a comma
// as the decimal separator. Any input that does not yield a finite float is
// undefined; no failure escapes as an error.
func ParseLocaleFloat(s string) NullFloat {
	s = strings.TrimSpace(s)
	if s == "" {
		return Null()
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Null()
	}
	return Valid(v)
}

// LocaleFloat is a numeric input field that tolerates JSON numbers, JSON
// strings in locale format, and null/garbage. Decoding never fails; the
// parsed value is carried as a NullFloat so the two downstream policies
// (substitute zero on the ad-hoc path, keep undefined during batch feature
// preparation) are applied by the caller via Value.Or.
type LocaleFloat struct {
	Value NullFloat
	Raw   string
}

// UnmarshalJSON implements tolerant decoding. It intentionally swallows
// type mismatches: a malformed quantity must not abort the batch.
func (f *LocaleFloat) UnmarshalJSON(data []byte) error {
	f.Raw = string(data)

	if string(data) == "null" {
		f.Value = Null()
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		if math.IsNaN(num) || math.IsInf(num, 0) {
			f.Value = Null()
			return nil
		}
		f.Value = Valid(num)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Raw = s
		f.Value = ParseLocaleFloat(s)
		return nil
	}

	f.Value = Null()
	return nil
}

// MarshalJSON writes the parsed value (or null when undefined).
func (f LocaleFloat) MarshalJSON() ([]byte, error) {
	return f.Value.MarshalJSON()
}

// Float returns a LocaleFloat holding an already-parsed number. Used by
// tests and by callers constructing lots programmatically.
func Float(v float64) LocaleFloat {
	return LocaleFloat{Value: Valid(v)}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationStd is the uncorrected standard deviation, matching the subject
// baseline definition.
func populationStd(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	ss := 0.0
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}

// sampleStd is the Bessel-corrected standard deviation used for
// announcement amount spread; undefined for fewer than two samples.
func sampleStd(values []float64, m float64) NullFloat {
	if len(values) < 2 {
		return Null()
	}
	ss := 0.0
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return Valid(math.Sqrt(ss / float64(len(values)-1)))
}
