package ranger

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Serialize builds the telemetry message for a reading.  The id is not
// escaped; callers must pass an id accepted by sonar.ValidId.  The distance
// is printed with two decimals, correctly rounded from the float64 value
// (exact ties round to even).
func Serialize(id string, distance float64) string {
	return `{"id":"` + id + `","distance":` +
		strconv.FormatFloat(distance, 'f', 2, 64) + `}`
}

const thresholdKey = "threshold"

// ParseThresholdLegacy scans body for the word threshold, quoted or not,
// skips to the next colon and reads a number from there the way C's atof
// does.  Whatever follows the colon is accepted: a missing or garbled number reads as 0.  If no colon
// follows the key, the number is read from the start of the body.  ok is
// false only when the key is absent.
func ParseThresholdLegacy(body string) (threshold float64, ok bool) {
	i := strings.Index(body, thresholdKey)
	if i < 0 {
		return 0, false
	}
	colon := strings.IndexByte(body[i:], ':')
	start := 0
	if colon >= 0 {
		start = i + colon + 1
	}
	return atof(body[start:]), true
}

// atof reads the longest leading number in s, after leading white space,
// and returns 0 if there is none.  Besides decimals it takes inf, infinity
// and nan in any case, and hex floats such as 0x1.8p3.
func atof(s string) float64 {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	start := i
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	rest := s[i:]
	switch {
	case hasPrefixFold(rest, "inf"):
		if neg {
			return math.Inf(-1)
		}
		return math.Inf(1)
	case hasPrefixFold(rest, "nan"):
		return math.NaN()
	case hasPrefixFold(rest, "0x"):
		if f, ok := hexFloat(rest[2:]); ok {
			if neg {
				f = -f
			}
			return f
		}
		// no hex digits: the 0 alone is the number
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			end = j
		}
	}
	// out of range still yields ±Inf or 0, like strtod
	f, _ := strconv.ParseFloat(s[start:end], 64)
	return f
}

// hexFloat reads hex digits with an optional fraction and binary exponent,
// as strtod does after 0x.  ok is false with no hex digits.
func hexFloat(s string) (f float64, ok bool) {
	i, digits := 0, 0
	for i < len(s) && isHexDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isHexDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	mantissa, exp := s[:i], "p0"
	if i < len(s) && (s[i] == 'p' || s[i] == 'P') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			exp = s[i:j]
		}
	}
	f, _ = strconv.ParseFloat("0x"+mantissa+exp, 64)
	return f, true
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ErrMalformed is returned by ParseThresholdStrict for a response that is
// not a JSON object or whose threshold is not a finite number
var ErrMalformed = errors.New("malformed server response")

// ParseThresholdStrict decodes body as a JSON object.  A missing threshold
// is not an error (ok is false).  A threshold that is not a finite number,
// or a body that is not a JSON object, is ErrMalformed.
func ParseThresholdStrict(body []byte) (threshold float64, ok bool, err error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return 0, false, fmt.Errorf("%w: %s", ErrMalformed, err)
	}
	raw, ok := fields["threshold"]
	if !ok {
		return 0, false, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false, fmt.Errorf("%w: threshold %s: %s", ErrMalformed, raw, err)
	}
	threshold, ok = v.(float64)
	if !ok {
		return 0, false, fmt.Errorf("%w: threshold %s is not a number", ErrMalformed, raw)
	}
	return threshold, true, nil
}
