package storybooks

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/JaimeStill/storybook/pkg/formatting"
	"github.com/JaimeStill/storybook/pkg/imagegen"
	"github.com/JaimeStill/storybook/pkg/storage"
	"github.com/JaimeStill/storybook/pkg/story"
)

// Pipeline generates one illustration per page and aggregates the outcomes
// into a Storybook. With Concurrency 1 pages are generated strictly in order
// with PagePause between requests; higher values generate pages in parallel,
// paced to one request start per PagePause.
type Pipeline struct {
	images   imagegen.Generator
	storage  storage.System
	reporter Reporter
	cfg      Config
}

// NewPipeline creates a Pipeline. A nil reporter discards events.
func NewPipeline(
	images imagegen.Generator,
	store storage.System,
	reporter Reporter,
	cfg Config,
) *Pipeline {
	if reporter == nil {
		reporter = Reporters{}
	}
	return &Pipeline{
		images:   images,
		storage:  store,
		reporter: reporter,
		cfg:      cfg,
	}
}

// run is the per-invocation state carried through a single generation.
type run struct {
	id      uuid.UUID
	title   string
	pages   []story.Page
	started time.Time

	mu        sync.Mutex
	results   []PageResult
	succeeded int
	failed    int
}

func newRun(title string, pages []story.Page) *run {
	return &run{
		id:      uuid.New(),
		title:   title,
		pages:   pages,
		started: time.Now(),
		results: make([]PageResult, len(pages)),
	}
}

func (r *run) record(i int, outcome Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.results[i] = PageResult{
		Number:  i + 1,
		Text:    r.pages[i].Text,
		Outcome: outcome,
	}

	if _, ok := outcome.(Success); ok {
		r.succeeded++
	} else {
		r.failed++
	}
}

func (r *run) event(kind EventKind) Event {
	return Event{
		Kind:       kind,
		RunID:      r.id,
		Title:      r.title,
		TotalPages: len(r.pages),
	}
}

func (r *run) finish() *Storybook {
	r.mu.Lock()
	defer r.mu.Unlock()

	pages := make([]PageResult, len(r.results))
	copy(pages, r.results)

	return &Storybook{
		ID:         r.id,
		Title:      r.title,
		TotalPages: len(r.pages),
		Pages:      pages,
		Succeeded:  r.succeeded,
		Failed:     r.failed,
		Elapsed:    time.Since(r.started),
		CreatedAt:  r.started.UTC(),
	}
}

// Run validates the page bounds and generates every page. Individual page
// failures are recorded as Failure results; only a run in which no page
// succeeds returns ErrNoImagesGenerated. A cancelled ctx aborts the run
// and returns ctx.Err().
func (p *Pipeline) Run(ctx context.Context, title string, pages []story.Page) (*Storybook, error) {
	if err := story.Validate(pages, p.cfg.MaxPages); err != nil {
		return nil, err
	}

	r := newRun(title, pages)

	var err error
	if p.cfg.Concurrency > 1 {
		err = p.parallel(ctx, r)
	} else {
		err = p.sequential(ctx, r)
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, err
	}

	sb := r.finish()

	done := r.event(EventRunCompleted)
	done.Succeeded = sb.Succeeded
	done.Failed = sb.Failed
	done.Elapsed = sb.Elapsed
	p.reporter.Report(ctx, done)

	if sb.Succeeded == 0 {
		return nil, ErrNoImagesGenerated
	}
	return sb, nil
}

func (p *Pipeline) sequential(ctx context.Context, r *run) error {
	pause := p.cfg.PagePauseDuration()
	last := len(r.pages) - 1

	for i := range r.pages {
		if err := ctx.Err(); err != nil {
			return err
		}

		p.page(ctx, r, i)

		if i < last && pause > 0 {
			if err := sleep(ctx, pause); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Pipeline) parallel(ctx context.Context, r *run) error {
	limit := rate.Inf
	if pause := p.cfg.PagePauseDuration(); pause > 0 {
		limit = rate.Every(pause)
	}
	limiter := rate.NewLimiter(limit, 1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	for i := range r.pages {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}
			p.page(gctx, r, i)
			return nil
		})
	}

	return g.Wait()
}

func (p *Pipeline) page(ctx context.Context, r *run, i int) {
	number := i + 1
	total := len(r.pages)

	started := r.event(EventPageStarted)
	started.Page = number
	p.reporter.Report(ctx, started)

	start := time.Now()
	prompt := buildPrompt(r.pages[i].Text, number, total, p.cfg.PromptChars)
	key, err := p.illustrate(ctx, ImageKey(r.id, number), prompt)

	result := r.event(EventPageSucceeded)
	result.Page = number
	result.Elapsed = time.Since(start)

	if err != nil {
		r.record(i, Failure{Summary: formatting.Truncate(err.Error(), p.cfg.ErrorSummaryLength)})
		result.Kind = EventPageFailed
		result.Err = err
		p.reporter.Report(ctx, result)
		return
	}

	r.record(i, Success{ImageKey: key})
	p.reporter.Report(ctx, result)
}

func (p *Pipeline) illustrate(ctx context.Context, key, prompt string) (string, error) {
	img, err := p.images.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	if err := p.storage.Upload(ctx, key, bytes.NewReader(img.Data), imagegen.ContentType); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return key, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
