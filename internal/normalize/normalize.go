// Package normalize canonicalizes free-form titles and employer names for comparison.
package normalize

import "strings"

// separators carry no meaning in scraped job titles and are replaced by a space.
// Quotes are dropped outright so "Director's" stays one word.
var replacer = strings.NewReplacer(
	",", " ",
	".", " ",
	"|", " ",
	";", " ",
	":", " ",
	"!", " ",
	"?", " ",
	"(", " ",
	")", " ",
	"[", " ",
	"]", " ",
	"{", " ",
	"}", " ",
	"·", " ",
	"•", " ",
	"\u00a0", " ",
	`"`, "",
	"'", "",
	"’", "",
)

// Text lowercases s, strips the separator set and collapses whitespace.
// Text(Text(s)) == Text(s) for every s.
func Text(s string) string {
	s = strings.ToLower(s)
	s = replacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// EmployerKey returns the key two employer names must share to be the same company.
func EmployerKey(name string) string {
	return Text(name)
}
