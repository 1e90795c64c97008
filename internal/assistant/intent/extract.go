package intent

// extract.go holds the entity extractors used by the resolver: numeric
// access-point IDs, event GUIDs, and door-name queries. They are kept apart
// from the trigger-phrase checks so each can be tested on its own.

import (
	"regexp"
	"strings"
)

// idPatterns match a numeric access-point ID in a message, in priority
// order. The captured group is the ID.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bdoor\s+(\d+)\b`),
	regexp.MustCompile(`(?i)\baccess\s+point\s+(\d+)\b`),
	regexp.MustCompile(`(?i)\bid\s+(\d+)\b`),
	regexp.MustCompile(`#(\d+)\b`),
}

// ExtractAccessPointID finds a numeric access-point ID in the message.
// Returns "" when no pattern matches.
func ExtractAccessPointID(message string) string {
	for _, p := range idPatterns {
		if m := p.FindStringSubmatch(message); m != nil {
			return m[1]
		}
	}
	return ""
}

var (
	uuidPattern = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`)
	// tokenPattern is the fallback for backends that use opaque IDs instead
	// of UUIDs: any alphanumeric token of at least 20 characters.
	tokenPattern = regexp.MustCompile(`\b[0-9A-Za-z]{20,}\b`)
)

// ExtractGUID finds an access-event identifier in the message: a UUID if one
// is present, otherwise a long opaque alphanumeric token. Returns "" when
// neither shape is found.
func ExtractGUID(message string) string {
	if m := uuidPattern.FindString(message); m != "" {
		return m
	}
	return tokenPattern.FindString(message)
}

// doorStopWords are stripped from an unlock message before treating the
// remainder as a door-name query. Multi-word entries must come before their
// constituent words.
var doorStopWords = []string{
	"access point", "unlock", "open", "door", "the",
}

// StripDoorStopWords removes unlock phrasing from a message, leaving the
// door-name query. An empty result means the user gave no name; that is a
// valid outcome reported at execution time, not here.
func StripDoorStopWords(message string) string {
	lower := strings.ToLower(message)
	for _, w := range doorStopWords {
		lower = strings.ReplaceAll(lower, w, " ")
	}
	return strings.Join(strings.Fields(lower), " ")
}

// ExtractBareInteger returns the first whole-word integer token in the
// message ("2", "option 2", "2."). Digits glued to letters ("door42") do not
// count. Reports ok=false when no such token exists.
func ExtractBareInteger(message string) (int, bool) {
	for _, field := range strings.Fields(message) {
		token := strings.Trim(field, ".,!?)(")
		if token == "" {
			continue
		}
		n := 0
		numeric := true
		for _, c := range token {
			if c < '0' || c > '9' {
				numeric = false
				break
			}
			n = n*10 + int(c-'0')
			if n > 1_000_000 {
				numeric = false
				break
			}
		}
		if numeric {
			return n, true
		}
	}
	return 0, false
}
