package storybooks_test

import (
	"strings"
	"testing"

	"github.com/JaimeStill/storybook/internal/storybooks"
)

func TestBuildPromptHints(t *testing.T) {
	tests := []struct {
		name   string
		number int
		total  int
		hint   string
	}{
		{"first page", 1, 5, storybooks.HintOpening},
		{"last page", 5, 5, storybooks.HintFinal},
		{"middle page", 3, 5, storybooks.HintMiddle},
		{"single page is opening", 1, 1, storybooks.HintOpening},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := storybooks.BuildPrompt("A fox.", tt.number, tt.total)
			want := "A fox., " + tt.hint + ", " + storybooks.StyleDescriptors
			if got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}

func TestBuildPromptTruncatesScene(t *testing.T) {
	text := strings.Repeat("a", 500)

	got := storybooks.BuildPrompt(text, 2, 3)
	want := strings.Repeat("a", 400) + ", " + storybooks.HintMiddle + ", " + storybooks.StyleDescriptors

	if got != want {
		t.Errorf("scene context should be exactly the first 400 characters")
	}
}

func TestBuildPromptCountsCharacters(t *testing.T) {
	text := strings.Repeat("é", 450)

	got := storybooks.BuildPrompt(text, 1, 2)
	scene, _, _ := strings.Cut(got, ", ")

	if n := len([]rune(scene)); n != 400 {
		t.Errorf("scene length: got %d runes, want 400", n)
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	a := storybooks.BuildPrompt("The dragon slept.", 2, 4)
	b := storybooks.BuildPrompt("The dragon slept.", 2, 4)
	if a != b {
		t.Error("identical inputs should produce identical prompts")
	}
}
