package storybooks_test

import (
	"context"
	"errors"
	"math"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/storybook/internal/storybooks"
	"github.com/JaimeStill/storybook/pkg/pagination"
	"github.com/JaimeStill/storybook/pkg/query"
)

func sampleStorybook(title string, created time.Time) *storybooks.Storybook {
	id := uuid.New()
	return &storybooks.Storybook{
		ID:         id,
		Title:      title,
		TotalPages: 2,
		Pages: []storybooks.PageResult{
			{Number: 1, Text: "A.", Outcome: storybooks.Success{ImageKey: storybooks.ImageKey(id, 1)}},
			{Number: 2, Text: "B.", Outcome: storybooks.Failure{Summary: "timeout"}},
		},
		Succeeded: 1,
		Failed:    1,
		Elapsed:   65 * time.Second,
		CreatedAt: created,
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := storybooks.NewMemoryStore(time.Hour)
	now := time.Now()

	older := sampleStorybook("Older", now.Add(-time.Minute))
	newer := sampleStorybook("Newer", now)

	for _, sb := range []*storybooks.Storybook{older, newer} {
		if err := store.Save(ctx, sb); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	if err := store.Save(ctx, older); !errors.Is(err, storybooks.ErrDuplicate) {
		t.Errorf("duplicate save: got %v, want ErrDuplicate", err)
	}

	found, err := store.Find(ctx, older.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Title != "Older" || len(found.Pages) != 2 {
		t.Errorf("found: %+v", found)
	}

	result, err := store.List(ctx, pagination.PageRequest{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.Total != 2 || result.Data[0].Title != "Newer" {
		t.Errorf("list: total=%d first=%q", result.Total, result.Data[0].Title)
	}

	if err := store.Delete(ctx, older.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Find(ctx, older.ID); !errors.Is(err, storybooks.ErrNotFound) {
		t.Errorf("find after delete: got %v", err)
	}
	if err := store.Delete(ctx, older.ID); !errors.Is(err, storybooks.ErrNotFound) {
		t.Errorf("second delete: got %v", err)
	}
}

func TestMemoryStoreSearchAndSort(t *testing.T) {
	ctx := context.Background()
	store := storybooks.NewMemoryStore(time.Hour)
	now := time.Now()

	books := []*storybooks.Storybook{
		sampleStorybook("The Dragon Egg", now.Add(-3*time.Minute)),
		sampleStorybook("A Brave Knight", now.Add(-2*time.Minute)),
		sampleStorybook("dragon dreams", now.Add(-time.Minute)),
	}
	for _, sb := range books {
		if err := store.Save(ctx, sb); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	search := "DRAGON"
	tests := []struct {
		name   string
		req    pagination.PageRequest
		titles []string
	}{
		{
			name:   "default newest first",
			req:    pagination.PageRequest{Page: 1, PageSize: 10},
			titles: []string{"dragon dreams", "A Brave Knight", "The Dragon Egg"},
		},
		{
			name:   "case-insensitive search",
			req:    pagination.PageRequest{Page: 1, PageSize: 10, Search: &search},
			titles: []string{"dragon dreams", "The Dragon Egg"},
		},
		{
			name:   "sort by title",
			req:    pagination.PageRequest{Page: 1, PageSize: 10, Sort: query.ParseSortFields("title")},
			titles: []string{"A Brave Knight", "dragon dreams", "The Dragon Egg"},
		},
		{
			name:   "unknown sort falls back to newest first",
			req:    pagination.PageRequest{Page: 1, PageSize: 10, Sort: query.ParseSortFields("password")},
			titles: []string{"dragon dreams", "A Brave Knight", "The Dragon Egg"},
		},
		{
			name:   "second page",
			req:    pagination.PageRequest{Page: 2, PageSize: 2, Sort: query.ParseSortFields("created_at")},
			titles: []string{"dragon dreams"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := store.List(ctx, tt.req)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(result.Data) != len(tt.titles) {
				t.Fatalf("len = %d, want %d", len(result.Data), len(tt.titles))
			}
			for i, want := range tt.titles {
				if result.Data[i].Title != want {
					t.Errorf("[%d] = %q, want %q", i, result.Data[i].Title, want)
				}
			}
		})
	}
}

func TestMemoryStoreListHugePage(t *testing.T) {
	ctx := context.Background()
	store := storybooks.NewMemoryStore(time.Hour)

	if err := store.Save(ctx, sampleStorybook("Only", time.Now())); err != nil {
		t.Fatalf("save: %v", err)
	}

	cfg := pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
	req := pagination.PageRequestFromQuery(url.Values{"page": {strconv.Itoa(math.MaxInt)}}, cfg)

	result, err := store.List(ctx, req)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Data) != 0 {
		t.Errorf("len = %d, want 0", len(result.Data))
	}
	if result.Total != 1 {
		t.Errorf("total = %d, want 1", result.Total)
	}
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	store := storybooks.NewMemoryStore(20 * time.Millisecond)

	sb := sampleStorybook("Fleeting", time.Now())
	if err := store.Save(ctx, sb); err != nil {
		t.Fatalf("save: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	if _, err := store.Find(ctx, sb.ID); !errors.Is(err, storybooks.ErrNotFound) {
		t.Errorf("expired run: got %v, want ErrNotFound", err)
	}
}

func TestStorybookGenerationTime(t *testing.T) {
	sb := sampleStorybook("Tale", time.Now())

	if got := sb.GenerationTime(); got != "1:05 (1/2 successful)" {
		t.Errorf("got %q, want %q", got, "1:05 (1/2 successful)")
	}

	keys := sb.ImageKeys()
	if len(keys) != 1 || keys[0] != sb.ID.String()+"/page_1.png" {
		t.Errorf("image keys: got %v", keys)
	}
}
