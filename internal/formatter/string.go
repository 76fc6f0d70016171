package formatter

import (
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// CallingCode returns the international dialing prefix for an ISO alpha-2 region,
// e.g. "+20" for "EG". Unknown regions return an empty string.
func CallingCode(regionCode string) string {
	code := phonenumbers.GetCountryCodeForRegion(strings.ToUpper(strings.TrimSpace(regionCode)))
	if code == 0 {
		return ""
	}
	return "+" + strconv.Itoa(code)
}

// JoinOrPlaceholder joins values with sep, or returns placeholder when nothing is left.
func JoinOrPlaceholder(values []string, sep, placeholder string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return placeholder
	}
	return strings.Join(parts, sep)
}
