package attractions

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minAddressRunes = 5
	maxAddressRunes = 100
)

var addressRules = []rule[string]{
	{
		name:    "address-label",
		pattern: regexp.MustCompile(`地址[：:]\s*([^` + sep + `]+)`),
		accept:  acceptAddress,
	},
	{
		name:    "located-at",
		pattern: regexp.MustCompile(`位于\s*([^` + sep + `]+)`),
		accept:  acceptAddress,
	},
	{
		name:    "situated-in",
		pattern: regexp.MustCompile(`坐落在\s*([^` + sep + `]+)`),
		accept:  acceptAddress,
	},
	{
		name:    "admin-unit",
		pattern: regexp.MustCompile(`([^` + sep + `]*(?:省|市|区|县|镇|街道|路|街|巷|号)[^` + sep + `]*)`),
		accept:  acceptAddress,
	},
}

func acceptAddress(groups []string) (string, bool) {
	addr := strings.TrimSpace(groups[1])
	n := utf8.RuneCountInString(addr)
	if n < minAddressRunes || n > maxAddressRunes {
		return "", false
	}
	return addr, true
}

// ExtractAddress returns the first plausible address phrase in a section, or
// fallback when none is found.
func ExtractAddress(section, fallback string) string {
	if addr, ok := firstValid(addressRules, section); ok {
		return addr
	}
	return fallback
}
