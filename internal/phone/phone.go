// Package phone canonicalizes Brazilian customer phone numbers. The
// canonical form is the identity key for contacts and the lookup key for
// conversation routing, so it must be stable for every spelling a gateway
// can deliver.
package phone

import "strings"

// CountryCode is the Brazilian country calling code.
const CountryCode = "55"

// National subscriber numbers are an area code (2 digits) plus an 8- or
// 9-digit line number.
const (
	minNationalLen = 10
	maxNationalLen = 11
)

// Canonical normalizes a raw phone string: strip everything that is not a
// digit; keep the number if it already carries the country calling code;
// strip leading zeros (trunk prefix) and prepend the calling code when the
// digits form a full national number. Anything too short or too long to be
// a national number passes through unchanged, so Canonical is idempotent:
// Canonical(Canonical(p)) == Canonical(p) for every input.
func Canonical(raw string) string {
	digits := strings.TrimLeft(onlyDigits(raw), "0")
	if digits == "" {
		return ""
	}

	if hasCountryCode(digits) {
		return digits
	}
	if isNationalNumber(digits) {
		return CountryCode + digits
	}
	return digits
}

// onlyDigits drops every non-digit rune.
func onlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// hasCountryCode reports whether digits already start with the calling code
// followed by a plausible national number. A bare local number that merely
// starts with "55" (e.g. "5599...") is only 10-11 digits long; with the
// country code prefixed it is 12-13.
func hasCountryCode(digits string) bool {
	return strings.HasPrefix(digits, CountryCode) && len(digits) >= len(CountryCode)+minNationalLen
}

// isNationalNumber reports whether digits are a complete national number,
// the only shape the calling code gets prepended to.
func isNationalNumber(digits string) bool {
	return len(digits) >= minNationalLen && len(digits) <= maxNationalLen
}
