package storybooks

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/storybook/pkg/pagination"
	"github.com/JaimeStill/storybook/pkg/query"
)

// Store persists completed storybook runs.
type Store interface {
	// Save records a completed run. Returns ErrDuplicate if the ID is already stored.
	Save(ctx context.Context, sb *Storybook) error
	// Find returns the run with id or ErrNotFound.
	Find(ctx context.Context, id uuid.UUID) (*Storybook, error)
	// List returns runs matching page.Search on title, ordered by page.Sort
	// (newest first when unset).
	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Storybook], error)
	// Delete removes the run with id or returns ErrNotFound.
	Delete(ctx context.Context, id uuid.UUID) error
}

var storybookComparators = map[string]func(a, b *Storybook) int{
	"id":          func(a, b *Storybook) int { return strings.Compare(a.ID.String(), b.ID.String()) },
	"title":       func(a, b *Storybook) int { return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)) },
	"total_pages": func(a, b *Storybook) int { return cmp.Compare(a.TotalPages, b.TotalPages) },
	"succeeded":   func(a, b *Storybook) int { return cmp.Compare(a.Succeeded, b.Succeeded) },
	"failed":      func(a, b *Storybook) int { return cmp.Compare(a.Failed, b.Failed) },
	"elapsed_ms":  func(a, b *Storybook) int { return cmp.Compare(a.Elapsed, b.Elapsed) },
	"created_at":  func(a, b *Storybook) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func matchesSearch(sb *Storybook, search *string) bool {
	if search == nil || *search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(sb.Title), strings.ToLower(*search))
}

// sortStorybooks orders books by fields, ignoring unknown names, and falls
// back to newest first. Ties break on id, matching the SQL store.
func sortStorybooks(books []Storybook, fields []query.SortField) {
	known := make([]query.SortField, 0, len(fields))
	for _, f := range fields {
		if _, ok := storybookComparators[f.Field]; ok {
			known = append(known, f)
		}
	}
	if len(known) == 0 {
		known = []query.SortField{defaultSort}
	}

	slices.SortStableFunc(books, func(a, b Storybook) int {
		for _, f := range known {
			c := storybookComparators[f.Field](&a, &b)
			if f.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return storybookComparators["id"](&a, &b)
	})
}
