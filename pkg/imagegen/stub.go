package imagegen

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// Stub is an offline Generator that paints a solid image whose color is
// derived from the prompt, so equal prompts always yield equal bytes.
type Stub struct {
	width  int
	height int
}

// NewStub creates a Stub producing width x height images.
func NewStub(width, height int) *Stub {
	if width < 1 {
		width = 64
	}
	if height < 1 {
		height = 64
	}
	return &Stub{width: width, height: height}
}

func (s *Stub) Generate(ctx context.Context, prompt string) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkPrompt(prompt); err != nil {
		return nil, err
	}

	sum := sha256.Sum256([]byte(prompt))
	fill := color.NRGBA{R: sum[0], G: sum[1], B: sum[2], A: 255}

	img := image.NewNRGBA(image.Rect(0, 0, s.width, s.height))
	for y := range s.height {
		for x := range s.width {
			img.SetNRGBA(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return &Image{Data: buf.Bytes(), Width: s.width, Height: s.height}, nil
}
