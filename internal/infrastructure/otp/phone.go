package otp

import (
	"errors"
	"strings"
	"unicode"
)

// Mexican numbers are the only market served; bare 10-digit numbers
// get the +52 country code.
const defaultCountryCode = "+52"

var ErrInvalidPhone = errors.New("phone number is not a valid mobile number")

// NormalizePhone canonicalizes a phone number into +52XXXXXXXXXX
// form. Accepted inputs: already-prefixed international numbers,
// 52-prefixed digit strings, and bare 10-digit national numbers.
func NormalizePhone(raw string) (string, error) {
	var digits strings.Builder
	hasPlus := strings.HasPrefix(strings.TrimSpace(raw), "+")
	for _, r := range raw {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	number := digits.String()

	switch {
	case hasPlus && len(number) >= 11 && len(number) <= 15:
		return "+" + number, nil
	case len(number) == 12 && strings.HasPrefix(number, "52"):
		return "+" + number, nil
	case len(number) == 10:
		return defaultCountryCode + number, nil
	}
	return "", ErrInvalidPhone
}
