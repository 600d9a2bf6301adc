// Package storybooks implements the storybook generation domain: it turns
// paginated story text into one illustration per page, records per-page
// outcomes, and keeps a history of generated runs.
package storybooks

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/storybook/pkg/formatting"
)

// Outcome is the result of generating a single page: either Success or Failure.
type Outcome interface {
	outcome()
}

// Success records a page whose image was generated and stored under ImageKey.
type Success struct {
	ImageKey string
}

// Failure records a page whose generation failed. Summary is bounded in length.
type Failure struct {
	Summary string
}

func (Success) outcome() {}
func (Failure) outcome() {}

// PageResult pairs a page with its generation outcome.
type PageResult struct {
	Number  int
	Text    string
	Outcome Outcome
}

// Succeeded reports whether the page produced an image.
func (p PageResult) Succeeded() bool {
	_, ok := p.Outcome.(Success)
	return ok
}

// Storybook is the immutable result of a generation run.
// Pages is index-aligned with the story: len(Pages) == TotalPages.
type Storybook struct {
	ID         uuid.UUID
	Title      string
	TotalPages int
	Pages      []PageResult
	Succeeded  int
	Failed     int
	Elapsed    time.Duration
	CreatedAt  time.Time
}

// GenerationTime renders the elapsed time and success ratio, e.g. "1:04 (3/4 successful)".
func (s *Storybook) GenerationTime() string {
	return fmt.Sprintf(
		"%s (%d/%d successful)",
		formatting.Elapsed(s.Elapsed),
		s.Succeeded,
		s.TotalPages,
	)
}

// ImageKeys returns the storage keys of every successful page.
func (s *Storybook) ImageKeys() []string {
	keys := make([]string, 0, s.Succeeded)
	for _, p := range s.Pages {
		if ok, isSuccess := p.Outcome.(Success); isSuccess {
			keys = append(keys, ok.ImageKey)
		}
	}
	return keys
}

// PageFilename is the file name of a page image within its run.
func PageFilename(number int) string {
	return fmt.Sprintf("page_%d.png", number)
}

// ImageKey is the storage key of a page image, namespaced by run.
func ImageKey(runID uuid.UUID, number int) string {
	return runID.String() + "/" + PageFilename(number)
}

// TestImageKey is where the single-prompt smoke test writes its image.
const TestImageKey = "test/test_image.png"
