package storybooks_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/JaimeStill/storybook/internal/storybooks"
	"github.com/JaimeStill/storybook/pkg/imagegen"
	"github.com/JaimeStill/storybook/pkg/lifecycle"
	"github.com/JaimeStill/storybook/pkg/storage"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) storybooks.Config {
	t.Helper()
	cfg := storybooks.Config{PagePause: "0s"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return cfg
}

func newStorage(t *testing.T) storage.System {
	t.Helper()
	cfg := &storage.Config{Directory: filepath.Join(t.TempDir(), "images")}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("storage finalize: %v", err)
	}

	sys, err := storage.New(cfg, discard())
	if err != nil {
		t.Fatalf("storage new: %v", err)
	}

	lc := lifecycle.New()
	if err := sys.Start(lc); err != nil {
		t.Fatalf("storage start: %v", err)
	}
	if err := lc.WaitForStartup(); err != nil {
		t.Fatalf("storage startup: %v", err)
	}
	return sys
}

// fakeGenerator records prompts and fails any prompt containing "FAIL".
type fakeGenerator struct {
	stub    *imagegen.Stub
	mu      sync.Mutex
	prompts []string
	err     error
	failErr error
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{stub: imagegen.NewStub(4, 4)}
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (*imagegen.Image, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if strings.Contains(prompt, "FAIL") {
		if f.failErr != nil {
			return nil, f.failErr
		}
		return nil, &imagegen.StatusError{Code: 500, Body: "provider exploded"}
	}
	return f.stub.Generate(ctx, prompt)
}

func (f *fakeGenerator) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

var errAlwaysFails = errors.New("provider unavailable")

// eventRecorder collects pipeline events.
type eventRecorder struct {
	mu     sync.Mutex
	events []storybooks.Event
}

func (r *eventRecorder) Report(ctx context.Context, e storybooks.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) kinds() []storybooks.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := make([]storybooks.EventKind, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Kind
	}
	return kinds
}

func paragraphs(n int, text string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = text
	}
	return strings.Join(parts, "\n\n")
}
