// Package textutil holds the string helpers shared by the converter, the
// turn segmenter and the archive packager.
package textutil

import (
	"regexp"
	"strings"
)

// DefaultTitle is used when a conversation has no usable title.
const DefaultTitle = "ChatGPT Conversation"

var (
	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	illegalChars = regexp.MustCompile(`[<>:"/\\|?*]+`)
	// Same set as a JavaScript \s: ASCII space characters, the Unicode space
	// separators (NBSP included), line/paragraph separators and BOM.
	spaceRuns = regexp.MustCompile(`[\s\x{0B}\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)
)

// SanitizeFilename turns an arbitrary title into a string that is safe to use
// as a file or directory name. Empty results fall back to DefaultTitle.
func SanitizeFilename(s string) string {
	s = strings.TrimSpace(s)
	s = controlChars.ReplaceAllString(s, "")
	s = illegalChars.ReplaceAllString(s, " ")
	s = spaceRuns.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTitle
	}
	return s
}

// CollapseSpace replaces every run of whitespace with a single space. It does
// not trim.
func CollapseSpace(s string) string {
	return spaceRuns.ReplaceAllString(s, " ")
}

// CleanCell prepares text for a pipe-table cell.
func CleanCell(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(CollapseSpace(s), "|", `\|`))
}

// InlineCode wraps s in backticks. Text that already contains a backtick is
// fenced with a double backtick and its internal double backticks are split.
func InlineCode(s string) string {
	if !strings.Contains(s, "`") {
		return "`" + s + "`"
	}
	return "``" + strings.ReplaceAll(s, "``", "` `") + "``"
}

// LinkDestination returns s percent-encoded and wrapped in angle brackets,
// ready to be used as a Markdown link destination.
func LinkDestination(s string) string {
	return "<" + EncodeURI(s) + ">"
}

// EncodeURI percent-encodes s the way a browser's encodeURI does: reserved
// URI characters and '#' are kept, everything else outside the unreserved set
// is escaped as UTF-8 bytes. '%' itself is escaped.
func EncodeURI(s string) string {
	return escape(s, ";,/?:@&=+$#")
}

// EncodeURIComponent is EncodeURI without the reserved set, so only
// alphanumerics and -_.!~*'() survive unescaped.
func EncodeURIComponent(s string) string {
	return escape(s, "")
}

func escape(s, reserved string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) || strings.IndexByte(reserved, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

const upperhex = "0123456789ABCDEF"

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
