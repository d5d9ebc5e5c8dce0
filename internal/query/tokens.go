package query

import (
	"regexp"
	"strings"
)

var reNonWord = regexp.MustCompile(`[^\pL\pN]+`)

// Words splits text on anything that is not a letter or digit and lower-cases
// the pieces. Empty pieces are dropped; order and repeats are kept.
func Words(text string) []string {
	raw := reNonWord.Split(strings.ToLower(text), -1)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// WordSet is the set of lower-cased words in text.
func WordSet(text string) map[string]struct{} {
	words := Words(text)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "to": {}, "of": {}, "in": {}, "on": {},
	"at": {}, "by": {}, "for": {}, "from": {}, "with": {}, "without": {}, "into": {}, "onto": {}, "over": {},
	"after": {}, "before": {}, "about": {}, "as": {}, "than": {}, "then": {}, "so": {}, "if": {}, "not": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {}, "has": {}, "have": {},
	"had": {}, "do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "can": {}, "could": {}, "should": {},
	"may": {}, "might": {}, "must": {}, "shall": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"it": {}, "its": {}, "he": {}, "she": {}, "they": {}, "them": {}, "their": {}, "his": {}, "her": {},
	"we": {}, "our": {}, "you": {}, "your": {}, "i": {}, "me": {}, "my": {}, "who": {}, "whom": {},
	"what": {}, "which": {}, "where": {}, "when": {}, "why": {}, "how": {}, "all": {}, "any": {}, "some": {},
	"more": {}, "most": {}, "very": {}, "also": {}, "just": {}, "said": {}, "says": {}, "say": {},
	"new": {}, "latest": {}, "news": {}, "report": {}, "reports": {}, "according": {}, "there": {}, "here": {},
	"up": {}, "out": {}, "no": {}, "yes": {}, "one": {}, "two": {}, "now": {}, "today": {}, "yesterday": {},
}

// IsStopword reports whether the lower-cased word carries no search value.
func IsStopword(word string) bool {
	_, ok := stopwords[strings.ToLower(word)]
	return ok
}
