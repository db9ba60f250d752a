package listing

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	yearRe    = regexp.MustCompile(`(19|20)\d{2}`)
	numberRe  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	myriadRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*萬`)
	mileUnits = strings.NewReplacer("公里", "", "KM", "", "km", "")
)

// MinYear is the oldest model year downstream consumers accept
const MinYear = 1990

// ParseYear returns the first 19xx/20xx token across candidates in priority order
func ParseYear(candidates ...any) *int {
	for _, c := range candidates {
		s := Text(c)
		if s == "" {
			continue
		}
		if m := yearRe.FindString(s); m != "" {
			y, err := strconv.Atoi(m)
			if err == nil {
				return &y
			}
		}
	}
	return nil
}

// ValidYear reports whether y lies in [MinYear, now.Year()+1]; next year's models are listed early
func ValidYear(y *int, now time.Time) bool {
	return y != nil && *y >= MinYear && *y <= now.Year()+1
}

// ParsePrice reads NTD amounts like "85.8萬", "1,280,000" or "NT$ 450000"; only positive results count
func ParsePrice(v any) *int64 {
	n := parseAmount(trimmed(v))
	if n == nil || *n <= 0 {
		return nil
	}
	return n
}

// ParseMileage reads distances like "3.2萬公里" or "123,456 KM"
func ParseMileage(v any) *int64 {
	return parseAmount(mileUnits.Replace(trimmed(v)))
}

// parseAmount strips separators, applies the 萬 (x10000, rounded) unit, or truncates the first number
func parseAmount(s string) *int64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return nil
	}
	if strings.Contains(s, "萬") {
		m := myriadRe.FindStringSubmatch(s)
		if m == nil {
			return nil
		}
		f, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil
		}
		n := int64(math.Round(f * 10000))
		return &n
	}
	tok := numberRe.FindString(s)
	if tok == "" {
		return nil
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil
	}
	n := int64(f)
	return &n
}

// ParseID coerces an identifier to int64. Integral numbers and digit strings pass;
// fractions, booleans, blanks and overflow do not
func ParseID(v any) (int64, bool) {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, true
		}
		f, err := x.Float64()
		return integral(f, err)
	case float64:
		return integral(x, nil)
	case int:
		return int64(x), true
	case int64:
		return x, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(s, 64)
		return integral(f, err)
	}
	return 0, false
}

// ParseCount reads a view counter; thousands separators are tolerated
func ParseCount(v any) *int64 {
	if s, ok := v.(string); ok {
		v = strings.ReplaceAll(s, ",", "")
	}
	n, ok := ParseID(v)
	if !ok || n < 0 {
		return nil
	}
	return &n
}

func integral(f float64, err error) (int64, bool) {
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f >= 1<<63 || f < -(1<<63) {
		return 0, false
	}
	return int64(f), true
}
