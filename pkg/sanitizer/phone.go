package sanitizer

import "strings"

const (
	ghanaCountryCode = "233"
	localTrunkPrefix = "0"
)

// CleanPhone removes whitespace and dashes.
func CleanPhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || isSpace(r) {
			return -1
		}
		return r
	}, phone)
}

// NormalizeLocalPhone converts a phone number to the local form expected by
// the SMS gateway. Separators and parentheses are dropped, +233 and 233
// prefixes become a leading 0, and anything else not already starting with 0
// gets one prepended.
func NormalizeLocalPhone(phone string) string {
	local, _ := LocalPhone(phone)
	return local
}

// LocalPhone is NormalizeLocalPhone that also reports whether the input had
// one of the recognized prefixes.
func LocalPhone(phone string) (local string, recognized bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r == '-' || r == '(' || r == ')' || isSpace(r) {
			return -1
		}
		return r
	}, phone)

	switch {
	case strings.HasPrefix(cleaned, "+"+ghanaCountryCode):
		return localTrunkPrefix + cleaned[len(ghanaCountryCode)+1:], true
	case strings.HasPrefix(cleaned, ghanaCountryCode):
		return localTrunkPrefix + cleaned[len(ghanaCountryCode):], true
	case strings.HasPrefix(cleaned, localTrunkPrefix):
		return cleaned, true
	default:
		return localTrunkPrefix + cleaned, false
	}
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
