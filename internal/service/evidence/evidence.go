// Package evidence enforces Web Risk submission guidelines on the free-text
// evidence accompanying an abuse report, so the relay only forwards
// submissions with a realistic chance of being accepted for review.
package evidence

import (
	"fmt"
	"strings"
)

const minLength = 10

// requiredKeywords lists, per abuse type, the vocabulary at least two of
// which must appear in the evidence. SOCIAL_ENGINEERING is the API's label
// for phishing and shares its list. Types without a list are only held to
// the minimum-length rule.
var requiredKeywords = map[string][]string{
	"phishing":           {"brand", "impersonating", "legitimate", "credentials"},
	"social_engineering": {"brand", "impersonating", "legitimate", "credentials"},
	"malware":            {"executable", "malware", "infection", "behavior"},
}

// Validate reports whether the evidence text meets the guidelines for the
// given abuse type. The returned error message is safe to echo to the caller.
func Validate(text, abuseType string) error {
	if len(strings.TrimSpace(text)) < minLength {
		return fmt.Errorf("evidence must be detailed enough to show a clear policy violation")
	}

	keywords, ok := requiredKeywords[strings.ToLower(abuseType)]
	if !ok {
		return nil
	}

	lower := strings.ToLower(text)
	found := 0
	for _, word := range keywords {
		if strings.Contains(lower, word) {
			found++
		}
	}
	if found < 2 {
		return fmt.Errorf("evidence should describe how this violates %s policies", strings.ToLower(abuseType))
	}
	return nil
}
