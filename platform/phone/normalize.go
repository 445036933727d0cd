// Package phone normalizes the free-text phone numbers that arrive through
// the public quote and contact forms.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Numbers without a country prefix are assumed Mexican; that is where the
// forms are aimed.
const defaultRegion = "MX"

// NormalizeE164 returns the E.164 form of input when it parses as a valid
// number. Anything else comes back trimmed but untouched, so an odd entry
// is stored as typed rather than rejected.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return trimmed
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}
