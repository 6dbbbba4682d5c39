package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"willgen/internal/will/payload"
)

// Raw-map access helpers. The intake payload arrives as map[string]any from
// encoding/json, so numbers are float64 and sections are map[string]any.

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// coerceBool applies the strict-but-forgiving boolean coercion: native bools
// pass through; the common textual encodings map to their value; everything
// else is a type error.
func coerceBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "on":
			return true, true
		case "false", "0", "no", "off", "":
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}

func coerceInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		if t == float64(int(t)) {
			return int(t), true
		}
		return 0, false
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// boolField validates a boolean field. Returns the coerced value and whether
// it was usable.
func boolField(v any, field string, required bool, res *Result, section string) (bool, bool) {
	if isEmpty(v) {
		if required {
			res.AddError(field, "This field is required", CodeRequired, section)
		}
		return false, false
	}
	b, ok := coerceBool(v)
	if !ok {
		res.AddError(field, "Must be true or false", CodeType, section)
		return false, false
	}
	return b, true
}

// stringField validates a string field with a length cap and an HTML-tag
// rejection check.
func stringField(v any, field string, required bool, maxLen int, res *Result, section string) (string, bool) {
	if isEmpty(v) {
		if required {
			res.AddError(field, "This field is required", CodeRequired, section)
		}
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		res.AddError(field, "Must be text", CodeType, section)
		return "", false
	}
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		res.AddError(field, fmt.Sprintf("Maximum %d characters allowed", maxLen), CodeMaxLength, section)
		return "", false
	}
	if htmlTagPattern.MatchString(s) {
		res.AddError(field, "HTML tags are not allowed", CodeInvalidChars, section)
		return "", false
	}
	return s, true
}

func emailField(v any, field string, required bool, res *Result, section string) (string, bool) {
	if isEmpty(v) {
		if required {
			res.AddError(field, "This field is required", CodeRequired, section)
		}
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		res.AddError(field, "Must be text", CodeType, section)
		return "", false
	}
	s = strings.TrimSpace(s)
	if len(s) > MaxEmailLength {
		res.AddError(field, "Email address is too long", CodeMaxLength, section)
		return "", false
	}
	if !emailPattern.MatchString(s) {
		res.AddError(field, "Please enter a valid email address", CodeFormat, section)
		return "", false
	}
	return s, true
}

func phoneField(v any, field string, required bool, res *Result, section string) (string, bool) {
	if isEmpty(v) {
		if required {
			res.AddError(field, "This field is required", CodeRequired, section)
		}
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		res.AddError(field, "Must be text", CodeType, section)
		return "", false
	}
	s = strings.TrimSpace(s)
	if !phonePattern.MatchString(s) {
		res.AddError(field, "Please enter a valid phone number", CodeFormat, section)
		return "", false
	}
	return s, true
}

// parseDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// dateField validates a date field, optionally enforcing a minimum age in
// whole years relative to now. The normalized value is YYYY-MM-DD.
func dateField(v any, field string, required bool, minAge int, now time.Time, res *Result, section string) (string, bool) {
	if isEmpty(v) {
		if required {
			res.AddError(field, "This field is required", CodeRequired, section)
		}
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		res.AddError(field, "Please enter a valid date (YYYY-MM-DD)", CodeFormat, section)
		return "", false
	}
	t, ok := parseDate(s)
	if !ok {
		res.AddError(field, "Please enter a valid date (YYYY-MM-DD)", CodeFormat, section)
		return "", false
	}
	if minAge > 0 {
		age := now.Year() - t.Year()
		if now.Month() < t.Month() || (now.Month() == t.Month() && now.Day() < t.Day()) {
			age--
		}
		if age < minAge {
			res.AddError(field, fmt.Sprintf("Must be at least %d years old", minAge), CodeMinAge, section)
			return "", false
		}
	}
	return t.Format("2006-01-02"), true
}

func enumField(v any, field string, allowed []string, required bool, res *Result, section string) (string, bool) {
	if isEmpty(v) {
		if required {
			res.AddError(field, "This field is required", CodeRequired, section)
		}
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		res.AddError(field, "Must be one of: "+strings.Join(allowed, ", "), CodeEnum, section)
		return "", false
	}
	s = strings.TrimSpace(s)
	for _, a := range allowed {
		if s == a {
			return s, true
		}
	}
	res.AddError(field, "Must be one of: "+strings.Join(allowed, ", "), CodeEnum, section)
	return "", false
}

func intEnumField(v any, field string, allowed []int, required bool, res *Result, section string) (int, bool) {
	if isEmpty(v) {
		if required {
			res.AddError(field, "This field is required", CodeRequired, section)
		}
		return 0, false
	}
	n, ok := coerceInt(v)
	if !ok {
		res.AddError(field, "Must be a valid number", CodeType, section)
		return 0, false
	}
	for _, a := range allowed {
		if n == a {
			return n, true
		}
	}
	parts := make([]string, len(allowed))
	for i, a := range allowed {
		parts[i] = strconv.Itoa(a)
	}
	res.AddError(field, "Must be one of: "+strings.Join(parts, ", "), CodeEnum, section)
	return 0, false
}

// positiveNumberField validates a non-negative number with an optional cap
// (maxValue <= 0 disables the cap).
func positiveNumberField(v any, field string, required bool, maxValue float64, res *Result, section string) (float64, bool) {
	if isEmpty(v) {
		if required {
			res.AddError(field, "This field is required", CodeRequired, section)
		}
		return 0, false
	}
	f, ok := coerceFloat(v)
	if !ok {
		res.AddError(field, "Must be a valid number", CodeType, section)
		return 0, false
	}
	if f < 0 {
		res.AddError(field, "Must be a positive number", CodeMinValue, section)
		return 0, false
	}
	if maxValue > 0 && f > maxValue {
		res.AddError(field, fmt.Sprintf("Must not exceed %v", maxValue), CodeMaxValue, section)
		return 0, false
	}
	return f, true
}

func percentageField(v any, field string, required bool, res *Result, section string) (float64, bool) {
	if isEmpty(v) {
		if required {
			res.AddError(field, "This field is required", CodeRequired, section)
		}
		return 0, false
	}
	f, ok := coerceFloat(v)
	if !ok {
		res.AddError(field, "Must be a valid percentage", CodeType, section)
		return 0, false
	}
	if f < 0 || f > 100 {
		res.AddError(field, "Percentage must be between 0 and 100", CodeRange, section)
		return 0, false
	}
	return f, true
}

// addressField validates a structured address: street, suburb, and state are
// required text; the postcode must be four digits.
func addressField(v any, field string, required bool, res *Result, section string) (payload.Address, bool) {
	m, ok := asMap(v)
	if !ok {
		if required {
			res.AddError(field, "Address is required", CodeRequired, section)
		}
		return payload.Address{}, false
	}

	var addr payload.Address
	valid := true

	if s, ok := stringField(m["street"], field+".street", true, MaxAddressLength, res, section); ok {
		addr.Street = s
	} else {
		valid = false
	}
	if s, ok := stringField(m["suburb"], field+".suburb", true, 100, res, section); ok {
		addr.Suburb = s
	} else {
		valid = false
	}
	if s, ok := stringField(m["state"], field+".state", true, 50, res, section); ok {
		addr.State = s
	} else {
		valid = false
	}

	postcode := m["postcode"]
	if isEmpty(postcode) {
		res.AddError(field+".postcode", "Postcode is required", CodeRequired, section)
		valid = false
	} else {
		s, _ := postcode.(string)
		if n, ok := coerceInt(postcode); ok && s == "" {
			s = strconv.Itoa(n)
		}
		if !postcodePattern.MatchString(s) {
			res.AddError(field+".postcode", "Please enter a valid 4-digit postcode", CodeFormat, section)
			valid = false
		} else {
			addr.Postcode = s
		}
	}

	return addr, valid
}
