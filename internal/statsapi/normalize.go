package statsapi

import (
	"strconv"
	"strings"
)

// The Stats API returns most numeric statistics as strings (".287", "3.24",
// "91.2"), occasionally as numbers. These helpers are the single place that
// coercion happens; everything downstream works on canonical numerics.

// ParseStat converts a string-or-number stat value to a float64. Unparseable
// values (including the upstream's "-.--" and ".---" placeholders) become 0.
func ParseStat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0
		}
		// Upstream writes bare-fraction averages as ".287".
		if strings.HasPrefix(s, ".") {
			s = "0" + s
		}
		if strings.HasPrefix(s, "-.") {
			s = "-0" + s[1:]
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// ParseStatInt converts a string-or-number stat value to an int, truncating
// fractional noise.
func ParseStatInt(v any) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case int:
		return val
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return int(ParseStat(v))
		}
		return i
	default:
		return 0
	}
}

// ParseInnings converts the upstream's base-3 fractional innings notation to
// a real number: "91.2" means 91⅔, so "X.Y" with Y ∈ {0,1,2} becomes X + Y/3.
// Malformed fractions fall back to a plain float parse.
func ParseInnings(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	whole, frac, found := strings.Cut(s, ".")
	if !found {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	}
	x, err := strconv.Atoi(whole)
	if err != nil {
		return ParseStat(raw)
	}
	switch frac {
	case "0":
		return float64(x)
	case "1":
		return float64(x) + 1.0/3.0
	case "2":
		return float64(x) + 2.0/3.0
	default:
		return ParseStat(raw)
	}
}

// ParseInningsValue handles innings fields that arrive as either strings or
// numbers. Numeric values are taken at face value.
func ParseInningsValue(v any) float64 {
	if s, ok := v.(string); ok {
		return ParseInnings(s)
	}
	return ParseStat(v)
}

// ParsePercent normalizes rate fields to the 0-100 scale. The upstream mixes
// fractions ("0.345") and percents ("34.5") across stat groups.
func ParsePercent(v any) float64 {
	f := ParseStat(v)
	if f > 0 && f <= 1 {
		return f * 100
	}
	return f
}
