package discovery

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// htmlText returns the visible text of an HTML fragment with whitespace collapsed.
func htmlText(fragment string) string {
	fragment = unescapeRepeated(fragment)
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// htmlLinks returns the href of every anchor in an HTML fragment.
func htmlLinks(fragment string) []string {
	fragment = unescapeRepeated(fragment)
	if !strings.Contains(fragment, "<a") {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil
	}
	var out []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			if href = strings.TrimSpace(href); href != "" {
				out = append(out, href)
			}
		}
	})
	return out
}

// unescapeRepeated undoes the double entity-encoding some feeds apply.
func unescapeRepeated(s string) string {
	s = strings.TrimSpace(s)
	for range 3 {
		u := html.UnescapeString(s)
		if u == s {
			break
		}
		s = u
	}
	return s
}
