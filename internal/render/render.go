// Package render converts raw assistant text into a restricted, injection-safe
// display form. Escaping always happens before any markup substitution, so no
// input can smuggle tags past the escape step.
package render

import (
	"regexp"
	"strings"
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

var boldRE = regexp.MustCompile(`\*\*(.+?)\*\*`)

// Render escapes the five HTML metacharacters, then applies exactly two
// presentational substitutions: **bold** spans and newlines. The output
// contains no unescaped <, > or & outside the inserted <strong> and <br>
// tags, for any input.
func Render(text string) string {
	s := escaper.Replace(text)
	s = boldRE.ReplaceAllString(s, "<strong>$1</strong>")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "<br>")
}
