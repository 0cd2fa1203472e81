package summarizer

import (
	"fmt"

	"ragsum/internal/domain"
	"ragsum/internal/tokenize"
)

// Stats compares summary against original. Ratios are percentages with one
// decimal place and are 0 when the original is empty.
func Stats(original, summary string) domain.SummaryStats {
	origChars := tokenize.CharCount(original)
	sumChars := tokenize.CharCount(summary)
	origWords := tokenize.WordCount(original)
	sumWords := tokenize.WordCount(summary)
	return domain.SummaryStats{
		OriginalCharacters: origChars,
		SummaryCharacters:  sumChars,
		CompressionRatio:   reduction(sumChars, origChars),
		OriginalWords:      origWords,
		SummaryWords:       sumWords,
		WordReduction:      reduction(sumWords, origWords),
	}
}

func reduction(part, whole int) string {
	ratio := 0.0
	if whole > 0 {
		ratio = (1 - float64(part)/float64(whole)) * 100
	}
	return fmt.Sprintf("%.1f%%", ratio)
}
