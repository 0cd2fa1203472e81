// Package tokenize holds the lexical helpers shared by the cleaner, chunker,
// retriever and summarizer.
package tokenize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// spaceClass is the Unicode-aware whitespace set used for sentence breaks,
// which is wider than RE2's ASCII-only \s.
const spaceClass = `\t\n\v\f\r \x{1c}-\x{1f}\x{85}\p{Z}`

var (
	sentenceBreak = regexp.MustCompile(`[.!?][` + spaceClass + `]+`)
	wordPattern   = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)
	termPattern   = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`)
	spaceRun      = regexp.MustCompile(`[` + spaceClass + `]+`)
)

// Sentences splits text after sentence-ending punctuation that is followed by
// whitespace. Each sentence is trimmed and empty ones are dropped.
func Sentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceBreak.FindAllStringIndex(text, -1) {
		out = appendTrimmed(out, text[start:loc[0]+1])
		start = loc[1]
	}
	return appendTrimmed(out, text[start:])
}

func appendTrimmed(out []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		out = append(out, s)
	}
	return out
}

// Words returns the lowercase word tokens of text, single characters included.
func Words(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// Terms returns the lowercase index terms of text: word tokens of two or more
// characters.
func Terms(text string) []string {
	return termPattern.FindAllString(strings.ToLower(text), -1)
}

// WordCount counts whitespace-separated fields.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// CharCount counts characters (code points), not bytes.
func CharCount(text string) int {
	return utf8.RuneCountInString(text)
}

// CollapseSpace replaces every whitespace run with a single space.
func CollapseSpace(text string) string {
	return spaceRun.ReplaceAllString(text, " ")
}
