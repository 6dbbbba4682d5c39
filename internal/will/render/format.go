package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Currency formats an amount as dollars with thousands separators. Whole
// amounts drop the cents.
func Currency(amount float64) string {
	if amount == float64(int64(amount)) {
		return "$" + groupDigits(strconv.FormatInt(int64(amount), 10))
	}
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	dot := strings.IndexByte(s, '.')
	return "$" + groupDigits(s[:dot]) + s[dot:]
}

func groupDigits(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// Percentage formats a percentage value, dropping the fraction when whole.
func Percentage(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10) + "%"
	}
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

// Date formats an ISO date (YYYY-MM-DD) as "02 January 2006". Unparseable
// input is returned as-is.
func Date(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02 January 2006")
}

// JoinNames joins names the way legal text lists people: "A", "A and B",
// "A, B, and C".
func JoinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}

var (
	onesWords = []string{"", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}
	teenWords = []string{"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen",
		"sixteen", "seventeen", "eighteen", "nineteen"}
	tensWords = []string{"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety"}
)

func wordsUnderThousand(n int) string {
	switch {
	case n == 0:
		return ""
	case n < 10:
		return onesWords[n]
	case n < 20:
		return teenWords[n-10]
	case n < 100:
		if n%10 == 0 {
			return tensWords[n/10]
		}
		return tensWords[n/10] + "-" + onesWords[n%10]
	default:
		out := onesWords[n/100] + " hundred"
		if n%100 != 0 {
			out += " and " + wordsUnderThousand(n%100)
		}
		return out
	}
}

// NumberToWords spells out an integer for use in will text. Values past a
// million fall back to digits.
func NumberToWords(n int) string {
	switch {
	case n == 0:
		return "zero"
	case n < 1000:
		return wordsUnderThousand(n)
	case n < 1_000_000:
		out := wordsUnderThousand(n/1000) + " thousand"
		if n%1000 > 0 {
			out += " " + wordsUnderThousand(n%1000)
		}
		return out
	default:
		return strconv.Itoa(n)
	}
}

// Ordinal returns the ordinal form of a number (1st, 2nd, 3rd, ...).
func Ordinal(n int) string {
	suffix := "th"
	if n%100 < 10 || n%100 > 20 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
