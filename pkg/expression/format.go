// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

package expression

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type FormatKind int

const (
	FormatUnknown FormatKind = iota
	FormatCurrency
	FormatNumber
	FormatFixed
	FormatPercent
	FormatUpper
	FormatLower
	FormatTruncate
	FormatDate
)

// FormatSpec is the optional ": spec" tail of a binding expression. Numeric
// kinds (C, N<digits>, F<digits>, P), string kinds (U, L, T<width> or bare
// integer = fixed-width truncation); anything else is treated as a date
// pattern.
type FormatSpec struct {
	Raw     string
	Kind    FormatKind
	Digits  int
	Width   int
	Pattern string
}

func NewFormatSpec(raw string) *FormatSpec {
	spec := &FormatSpec{Raw: raw, Digits: 2}

	switch {
	case raw == "C":
		spec.Kind = FormatCurrency
	case raw == "P":
		spec.Kind = FormatPercent
	case raw == "U":
		spec.Kind = FormatUpper
	case raw == "L":
		spec.Kind = FormatLower
	case strings.HasPrefix(raw, "N") && isDigits(raw[1:]):
		spec.Kind = FormatNumber
		spec.Digits = atoiOr(raw[1:], 2)
	case strings.HasPrefix(raw, "F") && isDigits(raw[1:]):
		spec.Kind = FormatFixed
		spec.Digits = atoiOr(raw[1:], 2)
	case strings.HasPrefix(raw, "T") && len(raw) > 1 && isDigits(raw[1:]):
		spec.Kind = FormatTruncate
		spec.Width = atoiOr(raw[1:], 0)
	case isDigits(raw) && len(raw) > 0:
		spec.Kind = FormatTruncate
		spec.Width = atoiOr(raw, 0)
	default:
		spec.Kind = FormatDate
		spec.Pattern = raw
	}

	return spec
}

// Apply formats an already-resolved value. Values that cannot be coerced to
// the kind the spec wants produce an error; callers degrade to the
// unformatted string.
func (s *FormatSpec) Apply(val interface{}) (string, error) {
	switch s.Kind {
	case FormatCurrency:
		num, err := toFloat(val)
		if err != nil {
			return "", err
		}
		return "$" + groupThousands(strconv.FormatFloat(num, 'f', 2, 64)), nil

	case FormatNumber:
		num, err := toFloat(val)
		if err != nil {
			return "", err
		}
		return groupThousands(strconv.FormatFloat(num, 'f', s.Digits, 64)), nil

	case FormatFixed:
		num, err := toFloat(val)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(num, 'f', s.Digits, 64), nil

	case FormatPercent:
		num, err := toFloat(val)
		if err != nil {
			return "", err
		}
		return groupThousands(strconv.FormatFloat(num*100, 'f', 2, 64)) + "%", nil

	case FormatUpper:
		return strings.ToUpper(fmt.Sprintf("%v", val)), nil

	case FormatLower:
		return strings.ToLower(fmt.Sprintf("%v", val)), nil

	case FormatTruncate:
		str := fmt.Sprintf("%v", val)
		if len(str) > s.Width {
			return str[:s.Width], nil
		}
		return str, nil

	case FormatDate:
		t, err := toTime(val)
		if err != nil {
			return "", err
		}
		return t.Format(datePatternToLayout(s.Pattern)), nil
	}

	return "", fmt.Errorf("Unknown format spec '%s'", s.Raw)
}

func toFloat(val interface{}) (float64, error) {
	switch typedVal := val.(type) {
	case int:
		return float64(typedVal), nil
	case int64:
		return float64(typedVal), nil
	case float64:
		return typedVal, nil
	case string:
		num, err := strconv.ParseFloat(typedVal, 64)
		if err != nil {
			return 0, fmt.Errorf("Expected numeric value, got '%s'", typedVal)
		}
		return num, nil
	default:
		return 0, fmt.Errorf("Expected numeric value, got %T", val)
	}
}

func toTime(val interface{}) (time.Time, error) {
	switch typedVal := val.(type) {
	case time.Time:
		return typedVal, nil
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, typedVal); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("Expected date value, got '%s'", typedVal)
	default:
		return time.Time{}, fmt.Errorf("Expected date value, got %T", val)
	}
}

// datePatternToLayout maps the template-facing date pattern tokens
// (yyyy, MM, dd, ...) onto Go reference-time layout pieces.
func datePatternToLayout(pattern string) string {
	replacer := strings.NewReplacer(
		"yyyy", "2006",
		"yy", "06",
		"MMMM", "January",
		"MMM", "Jan",
		"MM", "01",
		"dddd", "Monday",
		"ddd", "Mon",
		"dd", "02",
		"HH", "15",
		"hh", "03",
		"mm", "04",
		"ss", "05",
		"tt", "PM",
	)
	return replacer.Replace(pattern)
}

func groupThousands(numStr string) string {
	intPart := numStr
	fracPart := ""
	if dotIdx := strings.Index(numStr, "."); dotIdx >= 0 {
		intPart, fracPart = numStr[:dotIdx], numStr[dotIdx:]
	}

	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	result := strings.Join(groups, ",") + fracPart
	if neg {
		result = "-" + result
	}
	return result
}

func isDigits(str string) bool {
	for _, ch := range str {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

func atoiOr(str string, def int) int {
	num, err := strconv.Atoi(str)
	if err != nil {
		return def
	}
	return num
}
