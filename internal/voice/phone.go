package voice

import "strings"

// DefaultCountryCode is prefixed to numbers that arrive without one.
const DefaultCountryCode = "+91"

// NormalizePhone converts a candidate number to E.164. A number that already
// starts with "+" keeps its country code and loses everything but digits;
// any other number is treated as national and gets countryCode prefixed.
func NormalizePhone(raw, countryCode string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "+") {
		return "+" + digits(raw)
	}
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	return "+" + digits(countryCode) + digits(raw)
}

// FormatFromNumber formats the caller-id number: digits only, "+" prefixed.
func FormatFromNumber(raw string) string {
	return "+" + digits(raw)
}

func digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
