// Package generation defines the boundary to hosted abstractive summarizers.
package generation

import (
	"context"
	"fmt"

	"ragsum/internal/domain"
)

// Prompt builds the instruction sent to a hosted model.
func Prompt(text string, maxSentences int) string {
	return fmt.Sprintf(
		"Summarize the following text in about %d concise, well-formed sentences without repetition:\n\n%s",
		maxSentences, text,
	)
}

// Unavailable is a Generator that always fails. It stands in for a remote
// service in tests and when no service is configured.
type Unavailable struct{}

var _ domain.Generator = Unavailable{}

func (Unavailable) Name() string { return "unavailable" }

func (Unavailable) Generate(context.Context, string, int) (string, error) {
	return "", domain.ErrGenerationUnavailable
}
