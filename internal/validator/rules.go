package validator

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	countryCodeRegex = "^[A-Za-z]{2,3}$"
)

var (
	// CountryCodeRgx matches ISO 3166-1 alpha-2 and alpha-3 codes in any case.
	CountryCodeRgx = regexp.MustCompile(countryCodeRegex)
)

// NotBlank returns true if a string is not empty or contains only whitespace.
func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

// MinRunes returns true if a string is greater than or equal to a minimum number of n
func MinRunes(value string, n int) bool {
	return utf8.RuneCountInString(value) >= n
}

// MaxRunes returns true if a string is less than or equal to a maximum number of n
func MaxRunes(value string, n int) bool {
	return utf8.RuneCountInString(value) <= n
}

// Matches returns true if a string value matches a specific regexp pattern.
func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

// In returns true if a value is in a list of values.
func In[T comparable](value T, list ...T) bool {
	for i := range list {
		if value == list[i] {
			return true
		}
	}
	return false
}

// IsCountryCode returns true for a two or three letter country code.
func IsCountryCode(value string) bool {
	return CountryCodeRgx.MatchString(value)
}

// IsLatitude returns true if value is within [-90, 90].
func IsLatitude(value float64) bool {
	return value >= -90 && value <= 90
}

// IsLongitude returns true if value is within [-180, 180].
func IsLongitude(value float64) bool {
	return value >= -180 && value <= 180
}

// IsURL returns true if a string is a valid absolute URL.
func IsURL(value string) bool {
	u, err := url.ParseRequestURI(value)
	if err != nil {
		return false
	}

	return u.Scheme != "" && u.Host != ""
}
