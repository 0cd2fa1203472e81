// Package cleaner normalizes raw input text before chunking.
package cleaner

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"ragsum/internal/domain"
	"ragsum/internal/tokenize"
)

var (
	newlineRun   = regexp.MustCompile(`\n+`)
	controlChars = regexp.MustCompile(`[\x{00}-\x{1f}\x{7f}-\x{9f}]`)
	punctuation  = strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'", "`", "'",
		"–", "-", "—", "-", "−", "-",
	)
)

// Clean strips markup, collapses whitespace, removes control characters,
// normalizes quotes and dashes, and trims the result. Steps run in that order.
func Clean(text string) string {
	text = StripMarkup(text)
	text = tokenize.CollapseSpace(text)
	text = newlineRun.ReplaceAllString(text, "\n")
	text = controlChars.ReplaceAllString(text, "")
	text = punctuation.Replace(text)
	return strings.TrimSpace(text)
}

// StripMarkup returns only the textual content of an HTML/XML fragment, with
// entities decoded. Script and style bodies are dropped.
func StripMarkup(text string) string {
	z := html.NewTokenizer(strings.NewReader(text))
	var b strings.Builder
	raw := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawText(name) {
				raw++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawText(name) && raw > 0 {
				raw--
			}
		case html.TextToken:
			if raw == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isRawText(name []byte) bool {
	s := string(name)
	return s == "script" || s == "style"
}

// ExtractSentences splits text into trimmed, non-empty sentences.
func ExtractSentences(text string) []string {
	return tokenize.Sentences(text)
}

// Stats reports aggregate counts for text.
func Stats(text string) domain.TextStats {
	sentences := ExtractSentences(text)
	words := tokenize.WordCount(text)
	stats := domain.TextStats{
		CharacterCount: tokenize.CharCount(text),
		WordCount:      words,
		SentenceCount:  len(sentences),
	}
	if len(sentences) > 0 {
		stats.AvgWordsPerSentence = float64(words) / float64(len(sentences))
	}
	return stats
}
