package storybooks

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/storybook/pkg/imagegen"
	"github.com/JaimeStill/storybook/pkg/pagination"
	"github.com/JaimeStill/storybook/pkg/storage"
	"github.com/JaimeStill/storybook/pkg/story"
)

// System defines the public contract for storybook domain operations.
type System interface {
	Handler(imagePrefix string, maxBodySize int64) *Handler

	Split(text string) []string
	Generate(ctx context.Context, cmd GenerateCommand) (*Storybook, error)
	TestImage(ctx context.Context, prompt string) (string, error)

	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Storybook], error)
	Find(ctx context.Context, id uuid.UUID) (*Storybook, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Image(ctx context.Context, key string) (*storage.Object, error)
}

// GenerateCommand carries the story text and optional title for a generation run.
type GenerateCommand struct {
	StoryText string
	Title     string
}

type system struct {
	pipeline   *Pipeline
	images     imagegen.Generator
	storage    storage.System
	store      Store
	cfg        Config
	pagination pagination.Config
	logger     *slog.Logger
}

// New creates the storybook system.
func New(
	images imagegen.Generator,
	store storage.System,
	history Store,
	reporter Reporter,
	cfg Config,
	pagination pagination.Config,
	logger *slog.Logger,
) System {
	return &system{
		pipeline:   NewPipeline(images, store, reporter, cfg),
		images:     images,
		storage:    store,
		store:      history,
		cfg:        cfg,
		pagination: pagination,
		logger:     logger.With("system", "storybooks"),
	}
}

func (s *system) Handler(imagePrefix string, maxBodySize int64) *Handler {
	return NewHandler(s, s.logger, s.pagination, imagePrefix, maxBodySize)
}

func (s *system) Split(text string) []string {
	return story.Split(text)
}

func (s *system) Generate(ctx context.Context, cmd GenerateCommand) (*Storybook, error) {
	pages, err := story.Paginate(cmd.StoryText, s.cfg.MaxPages)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(cmd.Title)
	if title == "" {
		title = s.cfg.DefaultTitle
	}

	s.logger.Info("generating storybook", "title", title, "pages", len(pages))

	sb, err := s.pipeline.Run(ctx, title, pages)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, sb); err != nil {
		s.logger.Warn("storybook history save failed", "id", sb.ID, "error", err)
	}

	return sb, nil
}

func (s *system) TestImage(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		prompt = s.cfg.TestPrompt
	}

	img, err := s.images.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	if err := s.storage.Upload(ctx, TestImageKey, bytes.NewReader(img.Data), imagegen.ContentType); err != nil {
		return "", fmt.Errorf("save test image: %w", err)
	}

	s.logger.Info("test image generated", "key", TestImageKey, "width", img.Width, "height", img.Height)
	return TestImageKey, nil
}

func (s *system) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Storybook], error) {
	page.Normalize(s.pagination)
	return s.store.List(ctx, page)
}

func (s *system) Find(ctx context.Context, id uuid.UUID) (*Storybook, error) {
	return s.store.Find(ctx, id)
}

func (s *system) Delete(ctx context.Context, id uuid.UUID) error {
	sb, err := s.store.Find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	for _, key := range sb.ImageKeys() {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("image delete failed after history delete", "key", key, "error", err)
		}
	}

	s.logger.Info("storybook deleted", "id", id)
	return nil
}

func (s *system) Image(ctx context.Context, key string) (*storage.Object, error) {
	return s.storage.Download(ctx, key)
}
