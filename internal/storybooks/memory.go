package storybooks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/JaimeStill/storybook/pkg/pagination"
)

type memoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore creates a Store that keeps runs in process memory and
// evicts them ttl after they were saved.
func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{
		cache: cache.New(ttl, ttl/2),
	}
}

func (m *memoryStore) Save(ctx context.Context, sb *Storybook) error {
	if err := m.cache.Add(sb.ID.String(), *sb, cache.DefaultExpiration); err != nil {
		return ErrDuplicate
	}
	return nil
}

func (m *memoryStore) Find(ctx context.Context, id uuid.UUID) (*Storybook, error) {
	v, ok := m.cache.Get(id.String())
	if !ok {
		return nil, ErrNotFound
	}
	sb := v.(Storybook)
	return &sb, nil
}

func (m *memoryStore) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Storybook], error) {
	items := m.cache.Items()

	all := make([]Storybook, 0, len(items))
	for _, item := range items {
		sb := item.Object.(Storybook)
		if matchesSearch(&sb, page.Search) {
			all = append(all, sb)
		}
	}

	sortStorybooks(all, page.Sort)

	result := pagination.NewPageResult(
		pagination.Slice(all, page),
		len(all),
		page.Page,
		page.PageSize,
	)
	return &result, nil
}

func (m *memoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	key := id.String()
	if _, ok := m.cache.Get(key); !ok {
		return ErrNotFound
	}
	m.cache.Delete(key)
	return nil
}
