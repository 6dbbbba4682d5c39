package payload

import "strings"

// SingleLine renders the address as one comma-separated line, skipping empty
// components.
func (a Address) SingleLine() string {
	var parts []string
	for _, p := range []string{a.Street, a.Suburb, a.State, a.Postcode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Multiline renders the address as street on the first line and
// suburb/state/postcode on the second.
func (a Address) Multiline() []string {
	var lines []string
	if a.Street != "" {
		lines = append(lines, a.Street)
	}
	var second []string
	for _, p := range []string{a.Suburb, a.State, a.Postcode} {
		if p != "" {
			second = append(second, p)
		}
	}
	if len(second) > 0 {
		lines = append(lines, strings.Join(second, " "))
	}
	return lines
}

// IsZero reports whether no component of the address is set.
func (a Address) IsZero() bool {
	return a.Street == "" && a.Suburb == "" && a.State == "" && a.Postcode == ""
}
