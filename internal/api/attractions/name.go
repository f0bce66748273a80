package attractions

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minNameRunes = 2
	maxNameRunes = 49
)

var ordinalMarkers = []*regexp.Regexp{
	regexp.MustCompile(`^\d+[.。、]\s*`),
	regexp.MustCompile(`^[•·\-*]\s*`),
	regexp.MustCompile(`^[一二三四五六七八九十]\s*[.。、]\s*`),
}

// sep is every character that ends a name or address phrase.
const sep = `，,。.！!？?；;：:\n`

// embeddedNameRules find "<2+ characters><place suffix>" anywhere in a
// section: natural and historic landmarks first, then cultural institutions,
// then urban and commercial landmarks.
var embeddedNameRules = []rule[string]{
	{
		name:    "landmark",
		pattern: regexp.MustCompile(`([^` + sep + `]{2,}(?:长城|山|湖|河|海|岛|公园|寺|庙|塔|景区|风景区))`),
		scanAll: true,
		accept:  acceptEmbeddedName,
	},
	{
		name:    "institution",
		pattern: regexp.MustCompile(`([^` + sep + `]{2,}(?:博物馆|纪念馆|展览馆|文化宫|体育馆|图书馆))`),
		scanAll: true,
		accept:  acceptEmbeddedName,
	},
	{
		name:    "urban",
		pattern: regexp.MustCompile(`([^` + sep + `]{2,}(?:广场|中心|大厦|大楼|桥|古城|古镇))`),
		scanAll: true,
		accept:  acceptEmbeddedName,
	},
}

func acceptEmbeddedName(groups []string) (string, bool) {
	name := strings.TrimSpace(groups[1])
	if !validName(name) || IsNonPlace(name) {
		return "", false
	}
	return name, true
}

func validName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= minNameRunes && n <= maxNameRunes
}

// StripOrdinal removes a leading list marker such as "1.", "•" or "三、".
func StripOrdinal(line string) string {
	for _, m := range ordinalMarkers {
		line = m.ReplaceAllString(line, "")
	}
	return strings.TrimSpace(line)
}

// ExtractName decides whether a section describes a place and returns its name.
// The first line is tried first; a first line that reads like itinerary
// scaffolding rejects the whole section. Without a usable first line the
// section body is scanned for a name ending in a place suffix.
func ExtractName(section string) (string, bool) {
	name, rejected := firstLineName(section)
	if rejected {
		return "", false
	}
	if name != "" {
		return name, true
	}
	return firstValid(embeddedNameRules, section)
}

// firstLineName returns the cleaned first line when it is a place name.
// rejected is true when the line matched a non-place category.
func firstLineName(section string) (name string, rejected bool) {
	line, _, _ := strings.Cut(section, "\n")
	line = strings.TrimSpace(line)
	n := utf8.RuneCountInString(line)
	if n == 0 || n > maxNameRunes {
		return "", false
	}

	clean := StripOrdinal(line)
	if utf8.RuneCountInString(clean) < minNameRunes {
		return "", false
	}
	if IsNonPlace(clean) {
		return "", true
	}
	if !HasPlaceKeyword(clean) {
		return "", false
	}
	return clean, false
}
