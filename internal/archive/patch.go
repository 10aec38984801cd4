package archive

import (
	"regexp"

	"github.com/dgallion1/chatmd/internal/textutil"
)

// Patch rewrites every reference to placeholder in md to resolved, both as
// an encoded link destination (<...>) and as a bare path. A bare match must
// end at a word boundary so image-100 never matches inside image-1000. It
// returns the new text and the number of replacements.
func Patch(md, placeholder, resolved string) (string, int) {
	wrapped := textutil.LinkDestination(placeholder)
	re := regexp.MustCompile(regexp.QuoteMeta(wrapped) + `|` + regexp.QuoteMeta(placeholder) + `\b`)
	n := 0
	out := re.ReplaceAllStringFunc(md, func(m string) string {
		n++
		if m == wrapped {
			return textutil.LinkDestination(resolved)
		}
		return resolved
	})
	return out, n
}
