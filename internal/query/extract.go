// Package query turns free-form article text into short news-search queries.
package query

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxTerms caps the keyword query.
	MaxTerms = 5
	// MaxQueryLen caps a keyword query in characters.
	MaxQueryLen = 200
	// MaxFallbackLen caps the sentence fallback in characters.
	MaxFallbackLen = 250
	// VariantWords is the width of the narrower first/last-words variants.
	VariantWords = 3
)

// Queries is an ordered list of search strings derived from one text. The
// first entry is the primary query; the rest are narrower variants tried
// only when the primary under-returns.
type Queries []string

// Primary returns the primary query, or "" when there is none.
func (q Queries) Primary() string {
	if len(q) == 0 {
		return ""
	}
	return q[0]
}

// Variants returns the fallback queries after the primary.
func (q Queries) Variants() []string {
	if len(q) < 2 {
		return nil
	}
	return q[1:]
}

// Empty reports whether there is nothing to search for.
func (q Queries) Empty() bool {
	return strings.TrimSpace(q.Primary()) == ""
}

var (
	reTerm         = regexp.MustCompile(`[\pL\pN]+(?:['’.\-][\pL\pN]+)*`)
	reSentenceStop = regexp.MustCompile(`[.!?]\s+`)
)

// Extract derives the primary query and its variants from text. It never
// fails: if keyword extraction produces nothing, the first one or two
// sentences are used instead. Blank text yields no queries.
func Extract(text string) (out Queries) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			out = withVariants(Sentences(text))
		}
	}()

	primary := Keywords(text)
	if primary == "" {
		primary = Sentences(text)
	}
	return withVariants(primary)
}

func withVariants(primary string) Queries {
	if primary == "" {
		return nil
	}
	out := Queries{primary}
	words := strings.Fields(primary)
	if len(words) <= VariantWords {
		return out
	}
	for _, v := range []string{
		strings.Join(words[:VariantWords], " "),
		strings.Join(words[len(words)-VariantWords:], " "),
	} {
		if !contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

type term struct {
	surface string
	first   int
	weight  int
}

// Keywords builds a query of at most MaxTerms content-bearing terms, kept in
// the order they first appear in text. Capitalised words, acronyms and
// numbers rank above plain words at equal frequency.
func Keywords(text string) string {
	matches := reTerm.FindAllString(text, -1)

	terms := map[string]*term{}
	for pos, tok := range matches {
		tok = strings.Trim(tok, ".-'’")
		if !useful(tok) {
			continue
		}
		key := strings.ToLower(tok)
		t, ok := terms[key]
		if !ok {
			t = &term{surface: tok, first: pos}
			terms[key] = t
			if salient(tok) {
				t.weight++
			}
		}
		t.weight++
	}
	if len(terms) == 0 {
		return ""
	}

	ranked := make([]*term, 0, len(terms))
	for _, t := range terms {
		ranked = append(ranked, t)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight == ranked[j].weight {
			return ranked[i].first < ranked[j].first
		}
		return ranked[i].weight > ranked[j].weight
	})
	if len(ranked) > MaxTerms {
		ranked = ranked[:MaxTerms]
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].first < ranked[j].first })

	parts := make([]string, 0, len(ranked))
	for _, t := range ranked {
		parts = append(parts, t.surface)
	}
	return truncateWords(strings.Join(parts, " "), MaxQueryLen)
}

func useful(tok string) bool {
	if tok == "" || IsStopword(tok) {
		return false
	}
	if hasDigit(tok) || isAcronym(tok) {
		return true
	}
	return utf8.RuneCountInString(tok) >= 3
}

func salient(tok string) bool {
	return strings.IndexFunc(tok, unicode.IsUpper) >= 0 || hasDigit(tok)
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func isAcronym(s string) bool {
	if utf8.RuneCountInString(s) < 2 {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

// Sentences returns the first one or two sentences of text, split on
// sentence-ending punctuation followed by whitespace, without surrounding
// quotes, capped at MaxFallbackLen characters.
func Sentences(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	base := text
	if locs := reSentenceStop.FindAllStringIndex(text, 2); len(locs) == 2 {
		base = text[:locs[1][0]+1]
	}
	base = strings.Join(strings.Fields(base), " ")
	base = strings.Trim(base, `"'“”‘’ `)
	if base == "" {
		base = strings.Join(strings.Fields(text), " ")
	}
	return truncateRunes(base, MaxFallbackLen)
}

// Normalize lower-cases q and collapses whitespace.
func Normalize(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func truncateWords(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	cut := truncateRunes(s, n)
	if i := strings.LastIndex(cut, " "); i > 0 {
		return cut[:i]
	}
	return cut
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
