package whatsapp

import (
	"strings"
	"unicode"
)

// DefaultCountryCode is used when no country code is configured.
const DefaultCountryCode = "62"

// NormalizePhoneNumber normalizes phone numbers to international format.
// Local numbers starting with 0 get countryCode in place of the 0, so
// "0812-3456-7890" becomes "6281234567890" for Indonesia. A stray trunk 0
// after the country code ("62 0812...") is dropped as well.
func NormalizePhoneNumber(phoneNumber, countryCode string) string {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	countryCode = digitsOnly(countryCode)

	// Remove all non-digit characters
	phoneNumber = digitsOnly(phoneNumber)
	if phoneNumber == "" {
		return ""
	}

	if strings.HasPrefix(phoneNumber, "00") {
		phoneNumber = phoneNumber[2:]
	} else if strings.HasPrefix(phoneNumber, "0") {
		phoneNumber = countryCode + phoneNumber[1:]
	}

	if strings.HasPrefix(phoneNumber, countryCode+"0") {
		phoneNumber = countryCode + phoneNumber[len(countryCode)+1:]
	}
	return phoneNumber
}

// Normalizer returns NormalizePhoneNumber bound to countryCode.
func Normalizer(countryCode string) func(string) string {
	return func(phoneNumber string) string {
		return NormalizePhoneNumber(phoneNumber, countryCode)
	}
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
