// Package ingest turns manually supplied postings into candidates.
package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jcii/hunt/internal/domain"
)

const (
	maxTitleLength    = 100
	maxEmployerLength = 50
	maxCodeLength     = 50
)

// ParseText extracts what it can from a pasted posting. The full text is kept
// as the description. Fields that cannot be found are left empty.
func ParseText(content string) domain.Candidate {
	return domain.Candidate{
		Title:       Title(content),
		Employer:    Employer(content),
		URL:         FirstURL(content),
		JobCode:     JobCode(content),
		Pay:         PayRange(content),
		Description: strings.TrimSpace(content),
	}
}

// Title returns the first non-blank line, shortened to 100 runes.
func Title(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) > maxTitleLength {
			return string([]rune(line)[:maxTitleLength-3]) + "..."
		}
		return line
	}
	return ""
}

var employerLabel = regexp.MustCompile(`(?im)^[ \t]*(?:company|employer)[ \t]*:[ \t]*(.+)$`)

// Employer looks for a "Company:" line, then for "<title> at <Company>".
func Employer(content string) string {
	if m := employerLabel.FindStringSubmatch(content); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" && len(name) < maxEmployerLength {
			return name
		}
	}

	idx := strings.Index(strings.ToLower(content), " at ")
	if idx < 0 {
		return ""
	}
	after := content[idx+len(" at "):]
	if end := strings.IndexAny(after, "\n,-"); end >= 0 {
		after = after[:end]
	}
	name := strings.TrimSpace(after)
	if name == "" || len(name) >= maxEmployerLength {
		return ""
	}
	return name
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')]+`)

// FirstURL returns the first http(s) link in content.
func FirstURL(content string) string {
	return strings.TrimRight(urlPattern.FindString(content), ".,;")
}

// codeLabels are tried in order; the first label present wins.
var codeLabels = compileLabels(
	"job id:",
	"job code:",
	"requisition id:",
	"req id:",
	"req#:",
	"req #:",
	"job #:",
	"job number:",
	"job no:",
	"reference:",
	"ref:",
)

func compileLabels(labels ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(labels))
	for _, l := range labels {
		out = append(out, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(l)+`\s*([\p{L}\p{N}_/-]+)`))
	}
	return out
}

var (
	linkedInView = regexp.MustCompile(`/jobs?/view/(\d+)`)
	workdayJR    = regexp.MustCompile(`(?:^|[^A-Za-z])JR([A-Za-z0-9-]{4,20})\b`)
)

// JobCode finds a requisition identifier in free text.
func JobCode(content string) string {
	for _, re := range codeLabels {
		m := re.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		if len(m[1]) <= maxCodeLength {
			return m[1]
		}
	}

	if m := linkedInView.FindStringSubmatch(content); m != nil {
		return "linkedin-" + m[1]
	}
	if m := workdayJR.FindStringSubmatch(content); m != nil {
		return "JR" + m[1]
	}
	return ""
}

// PayRange reads the first two dollar amounts in content. "150k" and bare
// amounts under 1000 are taken as thousands.
func PayRange(content string) domain.PayRange {
	amounts := dollarAmounts(strings.ToLower(content), true)
	return rangeOf(amounts)
}

// ParsePay reads a pay string from a structured source where the dollar sign
// is optional, e.g. "150k-200k" or "$120,000".
func ParsePay(s string) domain.PayRange {
	return rangeOf(dollarAmounts(strings.ToLower(s), false))
}

func rangeOf(amounts []int64) domain.PayRange {
	var p domain.PayRange
	switch {
	case len(amounts) >= 2:
		p = domain.PayRange{Min: amounts[0], Max: amounts[1]}
	case len(amounts) == 1:
		p = domain.PayRange{Min: amounts[0]}
	}
	return p.Ordered()
}

func dollarAmounts(s string, requireDollar bool) []int64 {
	var out []int64
	runes := []rune(s)
	for i := 0; i < len(runes) && len(out) < 2; i++ {
		start := i
		if requireDollar {
			if runes[i] != '$' {
				continue
			}
			start = i + 1
		} else {
			if runes[i] == '$' {
				continue
			}
			if !unicode.IsDigit(runes[i]) || (i > 0 && unicode.IsDigit(runes[i-1])) {
				continue
			}
		}

		var digits strings.Builder
		j := start
		for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == ',' || runes[j] == '.') {
			if unicode.IsDigit(runes[j]) {
				digits.WriteRune(runes[j])
			}
			j++
		}
		if digits.Len() == 0 {
			continue
		}
		n, err := strconv.ParseInt(digits.String(), 10, 64)
		if err != nil {
			continue
		}
		if (j < len(runes) && runes[j] == 'k') || n < 1000 {
			n *= 1000
		}
		out = append(out, n)
		i = j - 1
	}
	return out
}
