package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelector lists the elements whose text becomes one line each.
const blockSelector = "h1, h2, h3, h4, p, li, dt, dd, td, pre"

// TextFromHTML flattens a saved posting page into plain text, one block
// element per line, with the page's first heading as the first line so
// ParseText picks it up as the title.
func TextFromHTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, nav, footer, header").Remove()

	var lines []string
	seen := make(map[string]bool)
	add := func(s string) {
		s = cleanText(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		lines = append(lines, s)
	}

	add(doc.Find("h1").First().Text())
	if len(lines) == 0 {
		add(doc.Find("title").First().Text())
	}

	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// Nested blocks are emitted by their innermost element.
		if s.Find(blockSelector).Length() > 0 {
			return
		}
		add(s.Text())
	})

	if len(lines) <= 1 {
		add(doc.Find("body").Text())
	}

	if href, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok && strings.HasPrefix(href, "http") {
		add(href)
	} else if href, ok := doc.Find(`meta[property="og:url"]`).Attr("content"); ok && strings.HasPrefix(href, "http") {
		add(href)
	}

	return strings.Join(lines, "\n"), nil
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}
