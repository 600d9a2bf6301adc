// Package story splits raw story text into pages.
// A page is a blank-line separated paragraph with surrounding whitespace removed.
package story

import "strings"

// MaxPages is the default upper bound on pages per story.
const MaxPages = 15

const pageSeparator = "\n\n"

// Page is a single numbered page of story text.
type Page struct {
	Number int    `json:"page_number"`
	Text   string `json:"page_text"`
}

// Split breaks text on blank lines and returns the trimmed, non-empty segments in order.
// It never fails: empty input yields an empty slice.
func Split(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	segments := strings.Split(text, pageSeparator)
	pages := make([]string, 0, len(segments))
	for _, segment := range segments {
		if trimmed := strings.TrimSpace(segment); trimmed != "" {
			pages = append(pages, trimmed)
		}
	}
	return pages
}

// Paginate splits text into numbered pages and validates the page count against limit.
// A limit below one falls back to MaxPages.
func Paginate(text string, limit int) ([]Page, error) {
	texts := Split(text)

	pages := make([]Page, len(texts))
	for i, t := range texts {
		pages[i] = Page{Number: i + 1, Text: t}
	}

	if err := Validate(pages, limit); err != nil {
		return nil, err
	}
	return pages, nil
}

// Validate checks page bounds for pages that did not come through Paginate.
func Validate(pages []Page, limit int) error {
	if limit < 1 {
		limit = MaxPages
	}
	if len(pages) == 0 {
		return ErrEmptyStory
	}
	if len(pages) > limit {
		return &TooManyPagesError{Count: len(pages), Limit: limit}
	}
	return nil
}
