// Package redact strips sensitive values from strings before they leave the
// process boundary.
//
// The assistant holds two long-lived secrets: the Alta Control API token and
// the Matrix access token. Neither must appear in log lines, in audit rows
// written to SQLite, or in error replies posted to Matrix rooms. Upstream
// error text can embed request details, so anything derived from an API error
// is passed through here before it is stored or sent.
//
// Redaction is best-effort: it operates on string representations and relies
// on callers to pass the right set of sensitive terms.
package redact

import "strings"

const placeholder = "[REDACTED]"

// String replaces every occurrence of each sensitive value in s with
// [REDACTED]. Values shorter than 4 characters are skipped to avoid
// spurious redaction of common substrings.
func String(s string, sensitiveValues ...string) string {
	for _, v := range sensitiveValues {
		if len(v) < 4 {
			continue
		}
		s = strings.ReplaceAll(s, v, placeholder)
	}
	return s
}
