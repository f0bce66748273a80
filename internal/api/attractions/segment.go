package attractions

import (
	"regexp"
	"strings"
)

// minSectionBytes drops fragments such as a stray "1." or a lone character.
// The threshold counts UTF-8 bytes, so any two-character CJK name survives.
const minSectionBytes = 5

var (
	numberedListSplit = regexp.MustCompile(`\n\s*\d+\.\s*`)
	paragraphSplit    = regexp.MustCompile(`\n\n+`)
	lineBreaks        = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// SplitSections cuts a reply into candidate attraction sections. Numbered
// list markers are preferred; when they yield two or fewer pieces the text is
// split on blank lines instead.
func SplitSections(text string) []string {
	text = lineBreaks.Replace(text)

	parts := numberedListSplit.Split(text, -1)
	if len(parts) <= 2 {
		parts = paragraphSplit.Split(text, -1)
	}

	sections := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) < minSectionBytes {
			continue
		}
		sections = append(sections, p)
	}
	return sections
}
