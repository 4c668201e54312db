package domain

import (
	"strings"
	"unicode"
)

// JourneyID derives a stable identifier from a journey name.
// The name is lower-cased, every run of non-alphanumeric characters becomes a
// single "-", leading and trailing separators are dropped and the result is
// truncated to MaxJourneyIDLength runes.
//
//	JourneyID("Onboarding Flow") == "onboarding-flow"
func JourneyID(name string) string {
	var sb strings.Builder
	pendingSep := false
	n := 0
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && sb.Len() > 0 {
				if n+1 >= MaxJourneyIDLength {
					break
				}
				sb.WriteByte('-')
				n++
			}
			pendingSep = false
			if n >= MaxJourneyIDLength {
				break
			}
			sb.WriteRune(r)
			n++
			continue
		}
		pendingSep = true
	}
	return sb.String()
}
