package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// historyTitleMaxRunes caps display titles rendered in the history list.
const historyTitleMaxRunes = 60

// titleWordRE extracts Unicode letters with optional trailing digits.
var titleWordRE = regexp.MustCompile(`[\p{L}]+[\p{N}]*`)

// titleStopWords is a minimal English stop-word set for compact titles.
var titleStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "to": {}, "in": {},
	"is": {}, "are": {}, "for": {}, "on": {}, "with": {}, "by": {}, "from": {},
	"at": {}, "as": {}, "that": {}, "this": {}, "it": {}, "be": {}, "was": {}, "were": {},
}

// HistoryTitle derives a compact display title from raw query text for the
// history sidebar. Identifiers (addresses, repo paths) pass through
// untouched; natural-language questions are reduced to a short title-cased
// keyword phrase. Falls back to the raw text when nothing survives.
func HistoryTitle(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	// Identifiers read better verbatim.
	if !strings.ContainsAny(text, " \t\n") {
		return clipRunes(text, historyTitleMaxRunes)
	}

	toks := titleWordRE.FindAllString(strings.ToLower(text), -1)
	caser := cases.Title(language.English)
	out := make([]string, 0, 8)
	for _, w := range toks {
		if _, skip := titleStopWords[w]; skip {
			continue
		}
		out = append(out, caser.String(w))
		if len(out) >= 8 {
			break
		}
	}
	if len(out) == 0 {
		return clipRunes(text, historyTitleMaxRunes)
	}
	return clipRunes(strings.Join(out, " "), historyTitleMaxRunes)
}

// clipRunes truncates s to at most max runes.
func clipRunes(s string, max int) string {
	if max > 0 && utf8.RuneCountInString(s) > max {
		return string([]rune(s)[:max])
	}
	return s
}
