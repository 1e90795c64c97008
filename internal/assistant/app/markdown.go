package app

import "strings"

// markdownToHTML converts the small subset of Markdown produced by the
// formatter into HTML suitable for a Matrix m.text event with
// format=org.matrix.custom.html.
//
// Supported constructs:
//   - Inline code  `…`  → <code>…</code>
//   - Bold  **…**       → <strong>…</strong>
//   - Newlines          → <br/>
func markdownToHTML(md string) string {
	result := replaceDelimited(md, "`", "<code>", "</code>")
	result = replaceDelimited(result, "**", "<strong>", "</strong>")
	return strings.ReplaceAll(result, "\n", "<br/>")
}

// replaceDelimited replaces occurrences of delim…delim with
// open+content+close. Only complete pairs are replaced; an unmatched opener
// is left as-is.
func replaceDelimited(s, delim, open, close string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, delim)
		if start == -1 {
			b.WriteString(s)
			break
		}
		end := strings.Index(s[start+len(delim):], delim)
		if end == -1 {
			b.WriteString(s)
			break
		}
		end += start + len(delim)
		b.WriteString(s[:start])
		b.WriteString(open)
		b.WriteString(s[start+len(delim) : end])
		b.WriteString(close)
		s = s[end+len(delim):]
	}
	return b.String()
}
