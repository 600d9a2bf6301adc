package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

type huggingFace struct {
	cfg    *Config
	client *http.Client
	logger *slog.Logger
}

type inferenceRequest struct {
	Inputs  string           `json:"inputs"`
	Options inferenceOptions `json:"options"`
}

type inferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

func (h *huggingFace) Generate(ctx context.Context, prompt string) (*Image, error) {
	if err := checkPrompt(prompt); err != nil {
		return nil, err
	}

	body, err := json.Marshal(inferenceRequest{
		Inputs:  prompt,
		Options: inferenceOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/png")
	if h.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.cfg.Token)
	}

	h.logger.Debug("requesting image", "prompt_length", len(prompt))

	img, err := do(ctx, h.client, req, h.cfg)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("image received", "width", img.Width, "height", img.Height, "bytes", len(img.Data))
	return img, nil
}
