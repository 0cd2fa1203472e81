package generation

import (
	"context"
	"errors"
	"testing"

	"ragsum/internal/domain"
)

func TestPrompt(t *testing.T) {
	got := Prompt("Body text.", 3)
	want := "Summarize the following text in about 3 concise, well-formed sentences without repetition:\n\nBody text."
	if got != want {
		t.Errorf("unexpected prompt:\n%q\nwant\n%q", got, want)
	}
}

func TestUnavailableAlwaysFails(t *testing.T) {
	_, err := Unavailable{}.Generate(context.Background(), "text", 2)
	if !errors.Is(err, domain.ErrGenerationUnavailable) {
		t.Fatalf("expected ErrGenerationUnavailable, got %v", err)
	}
}
