package storybooks

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/storybook/pkg/pagination"
	"github.com/JaimeStill/storybook/pkg/query"
	"github.com/JaimeStill/storybook/pkg/repository"
)

var projection = query.NewProjectionMap("public", "storybooks", "sb").
	Project("id", "id").
	Project("title", "title").
	Project("total_pages", "total_pages").
	Project("succeeded", "succeeded").
	Project("failed", "failed").
	Project("elapsed_ms", "elapsed_ms").
	Project("created_at", "created_at").
	WithKey("id")

// Tables lists the relations the postgres store requires.
var Tables = []string{"storybooks", "storybook_pages"}

var defaultSort = query.SortField{Field: "created_at", Descending: true}

type postgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Store backed by the storybooks and
// storybook_pages tables.
func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

type storybookRow struct {
	id         uuid.UUID
	title      string
	totalPages int
	succeeded  int
	failed     int
	elapsedMs  int64
	createdAt  time.Time
}

func scanStorybook(s repository.Scanner) (storybookRow, error) {
	var r storybookRow
	err := s.Scan(
		&r.id,
		&r.title,
		&r.totalPages,
		&r.succeeded,
		&r.failed,
		&r.elapsedMs,
		&r.createdAt,
	)
	return r, err
}

func scanPage(s repository.Scanner) (uuid.UUID, PageResult, error) {
	var (
		id       uuid.UUID
		p        PageResult
		imageKey sql.NullString
		summary  sql.NullString
	)
	if err := s.Scan(&id, &p.Number, &p.Text, &imageKey, &summary); err != nil {
		return id, p, err
	}

	if imageKey.Valid {
		p.Outcome = Success{ImageKey: imageKey.String}
	} else {
		p.Outcome = Failure{Summary: summary.String}
	}
	return id, p, nil
}

var storeErrors = repository.Errors{
	NotFound:   ErrNotFound,
	Duplicate:  ErrDuplicate,
	Constraint: ErrInconsistent,
}

const (
	insertStorybookSQL = `INSERT INTO storybooks(id, title, total_pages, succeeded, failed, elapsed_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	insertPageSQL = `INSERT INTO storybook_pages(storybook_id, page_number, page_text, image_key, error)
VALUES ($1, $2, $3, $4, $5)`

	selectPagesSQL = `SELECT storybook_id, page_number, page_text, image_key, error
FROM storybook_pages WHERE storybook_id = ANY($1::uuid[])
ORDER BY storybook_id, page_number`
)

func (s *postgresStore) Save(ctx context.Context, sb *Storybook) error {
	pages := make([][]any, len(sb.Pages))
	for i, p := range sb.Pages {
		var imageKey, summary sql.NullString
		switch o := p.Outcome.(type) {
		case Success:
			imageKey = sql.NullString{String: o.ImageKey, Valid: true}
		case Failure:
			summary = sql.NullString{String: o.Summary, Valid: true}
		}
		pages[i] = []any{sb.ID, p.Number, p.Text, imageKey, summary}
	}

	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(
			ctx, insertStorybookSQL,
			sb.ID, sb.Title, sb.TotalPages, sb.Succeeded, sb.Failed,
			sb.Elapsed.Milliseconds(), sb.CreatedAt,
		); err != nil {
			return err
		}
		return repository.ExecEach(ctx, tx, insertPageSQL, pages)
	})
	return storeErrors.Map(err)
}

func (s *postgresStore) Find(ctx context.Context, id uuid.UUID) (*Storybook, error) {
	q, args := query.NewBuilder(projection).BuildSingle("id", id)
	row, err := repository.QueryOne(ctx, s.db, q, args, scanStorybook)
	if err != nil {
		return nil, storeErrors.Map(err)
	}

	books, err := s.hydrate(ctx, []storybookRow{row})
	if err != nil {
		return nil, err
	}
	return &books[0], nil
}

func (s *postgresStore) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Storybook], error) {
	qb := query.NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "title").
		OrderByFields(page.Sort)

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, s.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count storybooks: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	rows, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanStorybook)
	if err != nil {
		return nil, fmt.Errorf("query storybooks: %w", err)
	}

	books, err := s.hydrate(ctx, rows)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(books, total, page.Page, page.PageSize)
	return &result, nil
}

func (s *postgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, s.db, "DELETE FROM storybooks WHERE id = $1", id)
	return storeErrors.Map(err)
}

// hydrate loads the pages of every row in one query and assembles the
// storybooks in row order.
func (s *postgresStore) hydrate(ctx context.Context, rows []storybookRow) ([]Storybook, error) {
	if len(rows) == 0 {
		return []Storybook{}, nil
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.id.String()
	}

	pages, err := repository.QueryGrouped(ctx, s.db, selectPagesSQL, []any{ids}, scanPage)
	if err != nil {
		return nil, fmt.Errorf("query storybook pages: %w", err)
	}

	books := make([]Storybook, len(rows))
	for i, r := range rows {
		books[i] = Storybook{
			ID:         r.id,
			Title:      r.title,
			TotalPages: r.totalPages,
			Pages:      pages[r.id],
			Succeeded:  r.succeeded,
			Failed:     r.failed,
			Elapsed:    time.Duration(r.elapsedMs) * time.Millisecond,
			CreatedAt:  r.createdAt,
		}
	}
	return books, nil
}
