package metadata

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/damilare-ak/clinicnote/constants"
)

var reNameChars = regexp.MustCompile(`^[A-Za-z' -]+$`)

// ValidClientName reports whether a candidate string is plausible as a person
// name. Rejections, in order: too short, an excluded clinical/structural word
// token, characters outside letters/spaces/apostrophe/hyphen, or a
// non-uppercase first letter.
func ValidClientName(name string) bool {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return false
	}
	for _, token := range strings.Fields(name) {
		if _, excluded := constants.ExcludedNameWords[strings.ToLower(token)]; excluded {
			return false
		}
	}
	if !reNameChars.MatchString(name) {
		return false
	}
	first := []rune(name)[0]
	return unicode.IsUpper(first)
}

// normalizeName turns filename spacing conventions back into display form.
func normalizeName(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	return strings.Join(strings.Fields(name), " ")
}
