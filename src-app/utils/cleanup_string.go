package utils

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// strips and collapses spaces, drops zero-width joiners/non-joiners at the edges
func CleanupString(s string) string {
	s = norm.NFC.String(s)
	s = strings.Trim(s, " \t\r\n\u200c\u200d")
	return strings.Join(strings.Fields(s), " ")
}

// CleanupText is CleanupString for multi-line text: line breaks survive,
// trailing spaces of each line and blank edges are dropped.
func CleanupText(s string) string {
	s = norm.NFC.String(strings.ReplaceAll(s, "\r\n", "\n"))
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.Trim(strings.Join(lines, "\n"), " \t\r\n\u200c\u200d")
}

var asciiDigits = runes.Map(func(r rune) rune {
	switch {
	case r >= '۰' && r <= '۹': // extended arabic-indic (persian)
		return '0' + (r - '۰')
	case r >= '٠' && r <= '٩': // arabic-indic
		return '0' + (r - '٠')
	}
	return r
})

// NormalizeDigits turns Persian and Arabic-Indic digits into ASCII ones so
// dates and times typed on a Persian keyboard validate.
func NormalizeDigits(s string) string {
	out, _, err := transform.String(asciiDigits, s)
	if err != nil {
		return s
	}
	return out
}
