package storybooks_test

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/storybook/internal/storybooks"
	"github.com/JaimeStill/storybook/pkg/handlers"
	"github.com/JaimeStill/storybook/pkg/pagination"
	"github.com/JaimeStill/storybook/pkg/routes"
)

type testServer struct {
	mux *http.ServeMux
	gen *fakeGenerator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gen := newFakeGenerator()
	pageCfg := pagination.Config{}
	if err := pageCfg.Finalize(nil); err != nil {
		t.Fatalf("pagination finalize: %v", err)
	}

	sys := storybooks.New(
		gen,
		newStorage(t),
		storybooks.NewMemoryStore(time.Hour),
		nil,
		testConfig(t),
		pageCfg,
		discard(),
	)

	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler("/images", 1<<20).Routes())

	return &testServer{mux: mux, gen: gen}
}

func (s *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestSplitStory(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"three pages", "A.\n\nB.\n\nC.", []string{"A.", "B.", "C."}},
		{"empty text", "", []string{}},
		{"blank segments dropped", "  A.  \n\n\n\n   \n\nB.", []string{"A.", "B."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, "POST", "/split-story", storybooks.SplitRequest{StoryText: tt.text})
			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200", rec.Code)
			}

			resp := decodeBody[storybooks.SplitResponse](t, rec)
			if resp.TotalPages != len(tt.want) || len(resp.Pages) != len(tt.want) {
				t.Fatalf("pages: got %v (%d), want %v", resp.Pages, resp.TotalPages, tt.want)
			}
			for i := range tt.want {
				if resp.Pages[i] != tt.want[i] {
					t.Errorf("page %d: got %q, want %q", i, resp.Pages[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitStoryInvalidBody(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("POST", "/split-story", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestGenerateStorybook(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, "POST", "/generate-storybook", storybooks.GenerateRequest{
		StoryText: "Once upon a time.\n\nThe middle.\n\nThe end.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[storybooks.StorybookResponse](t, rec)

	if resp.StoryTitle != "My Storybook" {
		t.Errorf("title: got %q, want default", resp.StoryTitle)
	}
	if resp.TotalPages != 3 || len(resp.Images) != 3 {
		t.Fatalf("pages: got total=%d images=%d", resp.TotalPages, len(resp.Images))
	}
	if !strings.Contains(resp.GenerationTime, "3/3 successful") {
		t.Errorf("generation time: got %q", resp.GenerationTime)
	}

	first := resp.Images[0]
	if first.PageNumber != 1 || first.PageText != "Once upon a time." {
		t.Errorf("first page: %+v", first)
	}
	if first.ImageFilename != "page_1.png" {
		t.Errorf("filename: got %q", first.ImageFilename)
	}
	wantPath := "/images/" + resp.ID.String() + "/page_1.png"
	if first.ImagePath != wantPath {
		t.Errorf("path: got %q, want %q", first.ImagePath, wantPath)
	}

	img := srv.do(t, "GET", first.ImagePath, nil)
	if img.Code != http.StatusOK {
		t.Fatalf("image status: got %d", img.Code)
	}
	if ct := img.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("image content type: got %q", ct)
	}
	if _, err := png.Decode(img.Body); err != nil {
		t.Errorf("served image is not png: %v", err)
	}
}

func TestGenerateStorybookTitle(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		target string
		title  string
		want   string
	}{
		{"query", "/generate-storybook?title=Query+Title", "", "Query Title"},
		{"body wins", "/generate-storybook?title=Query+Title", "Body Title", "Body Title"},
		{"default", "/generate-storybook", "", "My Storybook"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, "POST", tt.target, storybooks.GenerateRequest{StoryText: "A.", Title: tt.title})
			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d", rec.Code)
			}
			if resp := decodeBody[storybooks.StorybookResponse](t, rec); resp.StoryTitle != tt.want {
				t.Errorf("title: got %q, want %q", resp.StoryTitle, tt.want)
			}
		})
	}
}

func TestGenerateStorybookClientErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		text   string
		detail string
	}{
		{"empty story", "", "empty"},
		{"whitespace only", "  \n\n  ", "empty"},
		{"too many pages", paragraphs(16, "Page."), "16 pages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, "POST", "/generate-storybook", storybooks.GenerateRequest{StoryText: tt.text})
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", rec.Code)
			}

			resp := decodeBody[handlers.ErrorResponse](t, rec)
			if !strings.Contains(resp.Detail, tt.detail) {
				t.Errorf("detail: got %q, want it to contain %q", resp.Detail, tt.detail)
			}
		})
	}

	if n := len(srv.gen.calls()); n != 0 {
		t.Errorf("invalid stories must not reach the generator: %d calls", n)
	}
}

func TestGenerateStorybookPartialFailure(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, "POST", "/generate-storybook", storybooks.GenerateRequest{
		StoryText: "Good page.\n\nBad FAIL page.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	resp := decodeBody[storybooks.StorybookResponse](t, rec)
	failed := resp.Images[1]

	if failed.ImageFilename != storybooks.FailedFilename {
		t.Errorf("failed filename: got %q", failed.ImageFilename)
	}
	if failed.Status != storybooks.StatusFailed || failed.Error == "" {
		t.Errorf("failed page: %+v", failed)
	}
	if failed.ImagePath != failed.Error {
		t.Errorf("failed page should carry its error in image_path: %+v", failed)
	}
	if resp.SuccessfulPages != 1 || resp.FailedPages != 1 {
		t.Errorf("counts: got %d/%d", resp.SuccessfulPages, resp.FailedPages)
	}
	if !strings.Contains(resp.GenerationTime, "1/2 successful") {
		t.Errorf("generation time: got %q", resp.GenerationTime)
	}
}

func TestGenerateStorybookTotalFailure(t *testing.T) {
	srv := newTestServer(t)
	srv.gen.err = errAlwaysFails

	rec := srv.do(t, "POST", "/generate-storybook", storybooks.GenerateRequest{StoryText: "A.\n\nB."})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rec.Code)
	}

	resp := decodeBody[handlers.ErrorResponse](t, rec)
	if resp.Detail != storybooks.ErrNoImagesGenerated.Error() {
		t.Errorf("detail: got %q", resp.Detail)
	}
}

func TestStorybookHistory(t *testing.T) {
	srv := newTestServer(t)

	var ids []string
	for _, title := range []string{"First", "Second"} {
		rec := srv.do(t, "POST", "/generate-storybook", storybooks.GenerateRequest{StoryText: "A.", Title: title})
		if rec.Code != http.StatusOK {
			t.Fatalf("generate %s: status %d", title, rec.Code)
		}
		ids = append(ids, decodeBody[storybooks.StorybookResponse](t, rec).ID.String())
		time.Sleep(2 * time.Millisecond)
	}

	list := srv.do(t, "GET", "/storybooks?page_size=1", nil)
	if list.Code != http.StatusOK {
		t.Fatalf("list status: %d", list.Code)
	}
	page := decodeBody[pagination.PageResult[storybooks.StorybookResponse]](t, list)
	if page.Total != 2 || page.TotalPages != 2 || len(page.Data) != 1 {
		t.Fatalf("page: total=%d pages=%d len=%d", page.Total, page.TotalPages, len(page.Data))
	}
	if page.Data[0].StoryTitle != "Second" {
		t.Errorf("newest first: got %q", page.Data[0].StoryTitle)
	}

	searched := decodeBody[pagination.PageResult[storybooks.StorybookResponse]](t, srv.do(t, "GET", "/storybooks?search=FIR", nil))
	if searched.Total != 1 || searched.Data[0].StoryTitle != "First" {
		t.Errorf("search: total=%d", searched.Total)
	}

	sorted := decodeBody[pagination.PageResult[storybooks.StorybookResponse]](t, srv.do(t, "GET", "/storybooks?sort=title", nil))
	if len(sorted.Data) != 2 || sorted.Data[0].StoryTitle != "First" {
		t.Errorf("sort by title: got %+v", sorted.Data)
	}

	beyond := srv.do(t, "GET", "/storybooks?page=9223372036854775807", nil)
	if beyond.Code != http.StatusOK {
		t.Fatalf("huge page status: %d", beyond.Code)
	}
	if far := decodeBody[pagination.PageResult[storybooks.StorybookResponse]](t, beyond); len(far.Data) != 0 || far.Total != 2 {
		t.Errorf("huge page: total=%d len=%d", far.Total, len(far.Data))
	}

	find := srv.do(t, "GET", "/storybooks/"+ids[0], nil)
	if find.Code != http.StatusOK {
		t.Fatalf("find status: %d", find.Code)
	}
	found := decodeBody[storybooks.StorybookResponse](t, find)
	if found.StoryTitle != "First" {
		t.Errorf("find: got %q", found.StoryTitle)
	}

	del := srv.do(t, "DELETE", "/storybooks/"+ids[0], nil)
	if del.Code != http.StatusNoContent {
		t.Fatalf("delete status: %d", del.Code)
	}

	if rec := srv.do(t, "GET", "/storybooks/"+ids[0], nil); rec.Code != http.StatusNotFound {
		t.Errorf("find after delete: got %d, want 404", rec.Code)
	}
	if rec := srv.do(t, "GET", found.Images[0].ImagePath, nil); rec.Code != http.StatusNotFound {
		t.Errorf("image after delete: got %d, want 404", rec.Code)
	}
}

func TestStorybookInvalidID(t *testing.T) {
	srv := newTestServer(t)

	for _, method := range []string{"GET", "DELETE"} {
		if rec := srv.do(t, method, "/storybooks/not-a-uuid", nil); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", method, rec.Code)
		}
	}
}

func TestTestImage(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, "POST", "/test-image?prompt=a+red+balloon", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[storybooks.TestImageResponse](t, rec)
	if !resp.Success || resp.Filename != "test_image.png" || resp.Path != "/images/test/test_image.png" {
		t.Errorf("response: %+v", resp)
	}

	calls := srv.gen.calls()
	if len(calls) != 1 || calls[0] != "a red balloon" {
		t.Errorf("prompt: got %q", calls)
	}

	if img := srv.do(t, "GET", resp.Path, nil); img.Code != http.StatusOK {
		t.Errorf("test image not served: %d", img.Code)
	}
}

func TestTestImageDefaultPrompt(t *testing.T) {
	srv := newTestServer(t)

	if rec := srv.do(t, "POST", "/test-image", nil); rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if calls := srv.gen.calls(); len(calls) != 1 || calls[0] != "a cute cat in a garden, digital art" {
		t.Errorf("prompt: got %q", calls)
	}
}

func TestImageNotFound(t *testing.T) {
	srv := newTestServer(t)

	if rec := srv.do(t, "GET", "/images/missing/page_1.png", nil); rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}
