package story

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyStory indicates the story text produced no non-empty pages.
	ErrEmptyStory = errors.New("story is empty: separate pages with blank lines")
	// ErrTooManyPages is matched by TooManyPagesError via errors.Is.
	ErrTooManyPages = errors.New("story has too many pages")
)

// TooManyPagesError reports a story whose page count exceeds the configured limit.
type TooManyPagesError struct {
	Count int
	Limit int
}

func (e *TooManyPagesError) Error() string {
	return fmt.Sprintf(
		"story has %d pages, maximum is %d: try making your paragraphs longer",
		e.Count, e.Limit,
	)
}

// Is lets errors.Is(err, ErrTooManyPages) match any TooManyPagesError.
func (e *TooManyPagesError) Is(target error) bool {
	return target == ErrTooManyPages
}
