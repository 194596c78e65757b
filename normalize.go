package sentiment

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// spaceClass matches every unicode space rune, not only RE2's ASCII \s set.
const spaceClass = `\s\v\x1c-\x1f\x85\p{Z}`

var (
	tagRE        = regexp.MustCompile(`<.*?>`)
	urlRE        = regexp.MustCompile(`https?://[^` + spaceClass + `]+|www\.[^` + spaceClass + `]+`)
	disallowedRE = regexp.MustCompile(`[^a-zA-Z0-9` + spaceClass + `]`)
	spaceRE      = regexp.MustCompile(`[` + spaceClass + `]+`)
)

// Normalize cleans raw text so the same string reaches the vectorizer at
// training and inference time. Markup and URLs are removed, everything other
// than ASCII letters, digits and whitespace is dropped, whitespace is collapsed
// and the result is lowercased.
//
// Normalize is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = norm.NFC.String(strings.ToValidUTF8(text, ""))
	text = tagRE.ReplaceAllString(text, "")
	text = urlRE.ReplaceAllString(text, "")
	text = disallowedRE.ReplaceAllString(text, "")
	text = strings.TrimSpace(spaceRE.ReplaceAllString(text, " "))
	return strings.ToLower(text)
}

// NormalizeValue coerces v to a string before normalizing it. A nil value
// normalizes to the empty string.
func NormalizeValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return Normalize(x)
	case []byte:
		return Normalize(string(x))
	case fmt.Stringer:
		return Normalize(x.String())
	default:
		return Normalize(fmt.Sprint(x))
	}
}
