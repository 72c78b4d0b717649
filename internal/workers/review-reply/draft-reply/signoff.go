// internal/workers/review-reply/draft-reply/signoff.go
package draftreply

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"review-responder/internal/models"
)

const signOffDashes = "-–—"

// EnsureSignOff returns the draft ending with the profile's sign-off. A
// last line that already ends with the sign-off after other text counts as
// signed. A responder name on the last line, alone, behind a dash of any kind
// or after a closing formula such as "З повагою, Олена", is rewritten in
// place; otherwise the sign-off is appended as its own line. Trailing
// whitespace is dropped. The second return value reports whether the
// sign-off had to be repaired.
func EnsureSignOff(text string, profile *models.BusinessProfile) (string, bool) {
	signOff := profile.SignOff()
	body := strings.TrimRightFunc(text, unicode.IsSpace)

	lines := strings.Split(body, "\n")
	i := len(lines) - 1
	last := strings.TrimSpace(lines[i])
	if last == signOff || strings.HasSuffix(last, " "+signOff) {
		return body, false
	}

	if isResponderLine(last, profile.ResponderName) {
		lines[i] = signOff
		return strings.Join(lines, "\n"), true
	}

	if head, sep, ok := cutTrailingName(last, profile.ResponderName); ok {
		if sep == ',' {
			lines[i] = head + ",\n" + signOff
		} else {
			lines[i] = head + " " + signOff
		}
		return strings.Join(lines, "\n"), true
	}

	if body == "" {
		return signOff, true
	}
	return body + "\n\n" + signOff, true
}

func isResponderLine(line, name string) bool {
	stripped := strings.TrimLeft(line, signOffDashes+" \t")
	stripped = trimTrailingPunct(stripped)
	return stripped != "" && strings.EqualFold(stripped, strings.TrimSpace(name))
}

// cutTrailingName splits "text - Name" or "text, Name" at the separator.
// head is the text before the separator with trailing spaces removed. A dash
// only counts when it follows a space or punctuation, so hyphenated names
// are left alone.
func cutTrailingName(line, name string) (head string, sep rune, ok bool) {
	name = strings.TrimSpace(name)
	s := trimTrailingPunct(line)
	if name == "" || len(s) <= len(name) {
		return "", 0, false
	}
	cut := len(s) - len(name)
	if !utf8.RuneStart(s[cut]) || !strings.EqualFold(s[cut:], name) {
		return "", 0, false
	}

	rest := strings.TrimRightFunc(s[:cut], unicode.IsSpace)
	sep, size := utf8.DecodeLastRuneInString(rest)
	switch {
	case sep == ',':
		return rest[:len(rest)-size], sep, true
	case strings.ContainsRune(signOffDashes, sep):
		before := rest[:len(rest)-size]
		prev, _ := utf8.DecodeLastRuneInString(before)
		if before == "" || !(unicode.IsSpace(prev) || unicode.IsPunct(prev)) {
			return "", 0, false
		}
		head = strings.TrimRightFunc(before, unicode.IsSpace)
		if head == "" {
			return "", 0, false
		}
		return head, sep, true
	}
	return "", 0, false
}

func trimTrailingPunct(s string) string {
	return strings.TrimRightFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
}

// FindAvoidPhrases returns the avoid-list entries that occur in text,
// compared case-insensitively.
func FindAvoidPhrases(text string, phrases []string) []string {
	lower := strings.ToLower(text)

	var hits []string
	for _, phrase := range phrases {
		p := strings.ToLower(strings.TrimSpace(phrase))
		if p != "" && strings.Contains(lower, p) {
			hits = append(hits, phrase)
		}
	}
	return hits
}
