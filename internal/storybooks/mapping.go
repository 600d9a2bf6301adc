package storybooks

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/storybook/pkg/pagination"
)

// Page status values reported to clients.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// FailedFilename is the image_filename placeholder for pages without an image.
const FailedFilename = "error"

// SplitRequest is the body of the split and generate endpoints.
type SplitRequest struct {
	StoryText string `json:"story_text"`
}

// GenerateRequest is the body of the generate endpoint. Title is optional.
type GenerateRequest struct {
	StoryText string `json:"story_text"`
	Title     string `json:"title,omitempty"`
}

// SplitResponse lists the pages a story would be split into.
type SplitResponse struct {
	Pages      []string `json:"pages"`
	TotalPages int      `json:"total_pages"`
}

// ImageResponse describes one page of a generated storybook.
// Failed pages carry FailedFilename and the error summary in ImagePath.
type ImageResponse struct {
	PageNumber    int    `json:"page_number"`
	PageText      string `json:"page_text"`
	ImageFilename string `json:"image_filename"`
	ImagePath     string `json:"image_path"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
}

// StorybookResponse is the JSON form of a Storybook.
type StorybookResponse struct {
	ID              uuid.UUID       `json:"id"`
	StoryTitle      string          `json:"story_title"`
	TotalPages      int             `json:"total_pages"`
	Images          []ImageResponse `json:"images"`
	GenerationTime  string          `json:"generation_time"`
	SuccessfulPages int             `json:"successful_pages"`
	FailedPages     int             `json:"failed_pages"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TestImageResponse reports the result of a single-prompt smoke test.
type TestImageResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// NewStorybookResponse maps sb to its JSON form. imagePrefix is the URL path
// images are served under, e.g. "/images".
func NewStorybookResponse(sb *Storybook, imagePrefix string) StorybookResponse {
	images := make([]ImageResponse, len(sb.Pages))
	for i, p := range sb.Pages {
		images[i] = newImageResponse(p, imagePrefix)
	}

	return StorybookResponse{
		ID:              sb.ID,
		StoryTitle:      sb.Title,
		TotalPages:      sb.TotalPages,
		Images:          images,
		GenerationTime:  sb.GenerationTime(),
		SuccessfulPages: sb.Succeeded,
		FailedPages:     sb.Failed,
		CreatedAt:       sb.CreatedAt,
	}
}

func newImageResponse(p PageResult, imagePrefix string) ImageResponse {
	resp := ImageResponse{
		PageNumber: p.Number,
		PageText:   p.Text,
	}

	switch o := p.Outcome.(type) {
	case Success:
		resp.ImageFilename = PageFilename(p.Number)
		resp.ImagePath = ImageURL(imagePrefix, o.ImageKey)
		resp.Status = StatusSuccess
	case Failure:
		resp.ImageFilename = FailedFilename
		resp.ImagePath = o.Summary
		resp.Status = StatusFailed
		resp.Error = o.Summary
	}
	return resp
}

// ImageURL joins the image route prefix and a storage key.
func ImageURL(imagePrefix, key string) string {
	return imagePrefix + "/" + key
}

func newPageResponse(result *pagination.PageResult[Storybook], imagePrefix string) pagination.PageResult[StorybookResponse] {
	data := make([]StorybookResponse, len(result.Data))
	for i := range result.Data {
		data[i] = NewStorybookResponse(&result.Data[i], imagePrefix)
	}
	return pagination.PageResult[StorybookResponse]{
		Data:       data,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}
}
