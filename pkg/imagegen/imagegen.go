// Package imagegen turns text prompts into PNG images through a pluggable
// text-to-image provider.
package imagegen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/JaimeStill/storybook/pkg/formatting"
)

// ContentType is the media type of every Image produced by a Generator.
const ContentType = "image/png"

// Image is a generated illustration encoded as PNG.
type Image struct {
	Data   []byte
	Width  int
	Height int
}

// Generator produces one image per prompt. Implementations make a single
// attempt per call and never retry.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Image, error)
}

// New creates the Generator selected by cfg.Provider.
func New(cfg *Config, logger *slog.Logger) (Generator, error) {
	logger = logger.With("system", "imagegen", "provider", cfg.Provider)
	client := &http.Client{}

	switch cfg.Provider {
	case ProviderHuggingFace:
		return &huggingFace{cfg: cfg, client: client, logger: logger}, nil
	case ProviderPollinations:
		return &pollinations{cfg: cfg, client: client, logger: logger}, nil
	case ProviderStub:
		return NewStub(cfg.Width, cfg.Height), nil
	default:
		return nil, fmt.Errorf("unknown image provider %q", cfg.Provider)
	}
}

// maxScale bounds how far a decoded image may exceed the requested size.
const maxScale = 4

// do executes req bounded by cfg's timeout and returns the normalized PNG image.
func do(ctx context.Context, client *http.Client, req *http.Request, cfg *Config) (*Image, error) {
	timeout := cfg.TimeoutDuration()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		return nil, fmt.Errorf("request image: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, int64(cfg.MaxImageBytes)+1))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		return nil, fmt.Errorf("read image response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, ErrModelLoading
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{
			Code: resp.StatusCode,
			Body: formatting.Truncate(string(data), cfg.MaxErrorBody),
		}
	case len(data) > cfg.MaxImageBytes:
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrImageTooLarge, cfg.MaxImageBytes)
	}

	return normalize(data, cfg.Width*maxScale, cfg.Height*maxScale)
}

// normalize decodes any supported image format no larger than maxWidth by
// maxHeight and re-encodes it as PNG.
func normalize(data []byte, maxWidth, maxHeight int) (*Image, error) {
	ic, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if ic.Width > maxWidth || ic.Height > maxHeight {
		return nil, fmt.Errorf("%w: %dx%d exceeds %dx%d", ErrImageTooLarge, ic.Width, ic.Height, maxWidth, maxHeight)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	out := &Image{Width: bounds.Dx(), Height: bounds.Dy()}

	if format == "png" {
		out.Data = data
		return out, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	out.Data = buf.Bytes()
	return out, nil
}

func checkPrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}
