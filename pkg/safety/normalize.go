package safety

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// LeetRule maps a leetspeak character to the letter it stands for.
type LeetRule struct {
	From rune
	To   rune
}

// LeetRules is the substitution table, applied in this order. No To value
// appears as a From value, so a substituted letter is never substituted
// again.
var LeetRules = []LeetRule{
	{From: '0', To: 'o'},
	{From: '1', To: 'i'},
	{From: '3', To: 'e'},
	{From: '4', To: 'a'},
	{From: '5', To: 's'},
	{From: '7', To: 't'},
	{From: '8', To: 'b'},
	{From: '@', To: 'a'},
	{From: '$', To: 's'},
}

var leetReplacer = newLeetReplacer(LeetRules)

func newLeetReplacer(rules []LeetRule) *strings.Replacer {
	pairs := make([]string, 0, len(rules)*2)
	for _, r := range rules {
		pairs = append(pairs, string(r.From), string(r.To))
	}
	return strings.NewReplacer(pairs...)
}

// maxRun is the longest run of one character kept by Normalize.
const maxRun = 2

// Normalize canonicalizes user text for prohibited-term matching.
//
// Steps, in order:
//  1. NFC composition and locale-invariant lowercasing (ß and umlauts keep
//     their identity; ẞ becomes ß).
//  2. Leetspeak substitution using LeetRules.
//  3. Removal of every rune except a-z, ä, ö, ü, ß and whitespace.
//  4. Runs of three or more identical runes shrink to two. "fuuuck" becomes
//     "fuuck", which no longer contains "fuck".
//  5. Whitespace runs become a single space; the result is trimmed.
//
// Normalize is idempotent and safe for concurrent use.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	s := norm.NFC.String(text)
	// A Caser holds state, so it is not shared between goroutines.
	s = cases.Lower(language.Und).String(s)
	s = leetReplacer.Replace(s)
	s = strings.Map(keepSupported, s)
	s = collapseRuns(s, maxRun)
	return strings.Join(strings.Fields(s), " ")
}

// IsSupportedLetter reports whether r survives normalization as a letter.
func IsSupportedLetter(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r == 'ä', r == 'ö', r == 'ü', r == 'ß':
		return true
	}
	return false
}

func keepSupported(r rune) rune {
	if IsSupportedLetter(r) || unicode.IsSpace(r) {
		return r
	}
	return -1
}

// collapseRuns shortens every run of identical runes longer than limit.
func collapseRuns(s string, limit int) string {
	var b strings.Builder
	b.Grow(len(s))

	var prev rune
	run := 0
	for i, r := range s {
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
			prev = r
		}
		if run <= limit {
			b.WriteRune(r)
		}
	}
	return b.String()
}
