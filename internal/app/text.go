package app

import (
	"bufio"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	rePunct      = regexp.MustCompile(`[!"#$%&'()*+,\-./:;<=>?@\[\\\]^_` + "`" + `{|}~]`)
	reSpaces     = regexp.MustCompile(`\s+`)
	reSymbolOnly = regexp.MustCompile(`^[\d\pP\pS\s]+$`)
	reWordToken  = regexp.MustCompile(`\pL{3,}`)
)

// CleanText prepares text for the classifier: lower-cased, ASCII punctuation
// removed, whitespace collapsed.
func CleanText(text string) string {
	text = strings.ToLower(text)
	text = rePunct.ReplaceAllString(text, "")
	text = reSpaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Excerpt returns the first n characters of text followed by "..." when text
// is longer than n.
func Excerpt(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n]) + "..."
}

// ValidateText reports whether text looks like prose worth checking, and
// why not when it doesn't.
func ValidateText(text string) (bool, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, "empty"
	}
	if reSymbolOnly.MatchString(text) {
		return false, "no words detected"
	}
	if !reWordToken.MatchString(text) {
		return false, "no real word token found"
	}

	total, letters := 0, 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if float64(letters)/float64(total) < 0.30 {
		return false, "too many non-letter characters"
	}

	if len(strings.Fields(text)) < 2 {
		if m := reWordToken.FindString(text); utf8.RuneCountInString(m) >= 4 {
			return true, ""
		}
		return false, "too few words"
	}
	return true, ""
}

// ReadText reads lines until a blank line after some input, or EOF.
// Leading blank lines are skipped; prompt, if set, is called before each
// skipped line.
func ReadText(r *bufio.Reader, prompt func()) (string, error) {
	var lines []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			line = strings.TrimRight(line, "\r\n")
			if strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
			break
		}

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			if len(lines) > 0 {
				break
			}
			if prompt != nil {
				prompt()
			}
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}
