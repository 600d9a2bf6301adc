package imagegen

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type pollinations struct {
	cfg    *Config
	client *http.Client
	logger *slog.Logger
}

func (p *pollinations) Generate(ctx context.Context, prompt string) (*Image, error) {
	if err := checkPrompt(prompt); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	p.logger.Debug("requesting image", "prompt_length", len(prompt))

	img, err := do(ctx, p.client, req, p.cfg)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("image received", "width", img.Width, "height", img.Height, "bytes", len(img.Data))
	return img, nil
}

func (p *pollinations) url(prompt string) string {
	q := url.Values{}
	q.Set("width", strconv.Itoa(p.cfg.Width))
	q.Set("height", strconv.Itoa(p.cfg.Height))
	q.Set("nologo", "true")

	return fmt.Sprintf("%s/prompt/%s?%s",
		strings.TrimSuffix(p.cfg.Endpoint, "/"),
		url.PathEscape(prompt),
		q.Encode(),
	)
}
