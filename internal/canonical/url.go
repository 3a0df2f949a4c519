// Package canonical turns raw posting URLs into comparable identities.
package canonical

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

type codePattern struct {
	// host must equal or be a subdomain of hostSuffix. Empty matches any host.
	hostSuffix string
	// prefix of the returned code. Empty derives it from the host.
	prefix string
	re     *regexp.Regexp
}

// Ordered most specific first; the first match wins.
var codePatterns = []codePattern{
	{hostSuffix: "linkedin.com", prefix: "linkedin", re: regexp.MustCompile(`/jobs?/view/(\d+)(?:/|$)`)},
	{hostSuffix: "greenhouse.io", prefix: "greenhouse", re: regexp.MustCompile(`/jobs/(\d+)(?:/|$)`)},
	{hostSuffix: "indeed.com", prefix: "indeed", re: regexp.MustCompile(`/(?:viewjob|jobs)/(\d+)(?:/|$)`)},
	{hostSuffix: "smartrecruiters.com", prefix: "smartrecruiters", re: regexp.MustCompile(`/(\d{6,})(?:-|/|$)`)},
	{re: regexp.MustCompile(`/(?:jobs?|careers?|positions?|openings?|postings?|requisitions?)/(\d+)(?:/|$)`)},
}

// requisition matches a short uppercase prefix followed by 4+ digits, e.g. JR12345 or R-004512.
var requisition = regexp.MustCompile(`(?:^|[^A-Za-z0-9])([A-Z]{1,4}-?\d{4,})(?:$|[^A-Za-z0-9])`)

// URL strips the query string and fragment from raw and extracts a site job code.
// The canonical form is scheme+host+path with a lowercased scheme and host and no
// trailing slash. code is empty when no pattern matches.
func URL(raw string) (canonical string, code string) {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimRightFunc(raw, trailing), ""
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	path := strings.TrimRight(u.EscapedPath(), "/")

	canonical = host + path
	if scheme != "" {
		canonical = scheme + "://" + canonical
	}

	return canonical, jobCode(host, path)
}

func trailing(r rune) bool {
	return r == '/' || unicode.IsSpace(r)
}

func jobCode(host, path string) string {
	if path == "" {
		return ""
	}

	for _, p := range codePatterns {
		if p.hostSuffix != "" && !hostMatches(host, p.hostSuffix) {
			continue
		}
		m := p.re.FindStringSubmatch(strings.ToLower(path))
		if m == nil {
			continue
		}
		prefix := p.prefix
		if prefix == "" {
			prefix = sitePrefix(host)
		}
		if prefix == "" {
			return m[1]
		}
		return prefix + "-" + m[1]
	}

	if m := requisition.FindStringSubmatch(path); m != nil {
		return m[1]
	}
	return ""
}

func hostMatches(host, suffix string) bool {
	return host == suffix || strings.HasSuffix(host, "."+suffix)
}

var secondLevel = map[string]bool{"co": true, "com": true, "org": true, "net": true, "ac": true, "gov": true}

// sitePrefix returns the registrable label of host: careers.acme.co.uk -> acme.
func sitePrefix(host string) string {
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return host
	}
	labels = labels[:len(labels)-1]
	if last := labels[len(labels)-1]; len(labels) > 1 && secondLevel[last] {
		labels = labels[:len(labels)-1]
	}
	return labels[len(labels)-1]
}

// IsSearchLink reports links to job searches or alert settings rather than a posting.
func IsSearchLink(raw string) bool {
	l := strings.ToLower(raw)
	return strings.Contains(l, "/jobs/search") ||
		strings.Contains(l, "/search?") ||
		strings.Contains(l, "/jobs/alerts") ||
		strings.Contains(l, "/comm/jobs/alerts")
}
