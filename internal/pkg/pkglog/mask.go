package pkglog

import "strings"

// accountVisibleChars is how many trailing characters of an account id
// survive masking.
const accountVisibleChars = 4

// MaskAccount hides all but the last few characters of an account id so
// transfers can still be told apart in the logs.
func MaskAccount(v string) string {
	if len(v) <= accountVisibleChars {
		return strings.Repeat("*", len(v))
	}
	return strings.Repeat("*", len(v)-accountVisibleChars) + v[len(v)-accountVisibleChars:]
}
