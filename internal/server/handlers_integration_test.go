package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielledeleo/wikilite/internal/server"
	"github.com/danielledeleo/wikilite/testutil"
	"github.com/danielledeleo/wikilite/wiki"
)

type testFile struct {
	name, contentType, content string
}

// multipartBody builds a page creation form.
func multipartBody(t *testing.T, name, content string, files ...testFile) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("pageName", name); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteField("pageContent", content); err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files[]"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte(f.content))
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func postPage(t *testing.T, router http.Handler, name, content string, files ...testFile) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, name, content, files...)
	req := httptest.NewRequest("POST", "/api/page", body)
	req.Header.Set("Content-Type", contentType)
	return serve(router, req)
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rr.Body.String())
	}
}

type pageJSON struct {
	UUID      string  `json:"pageUuid"`
	Name      string  `json:"pageName"`
	Content   string  `json:"pageContent"`
	TOC       *string `json:"pageToc"`
	UpdatedAt string  `json:"updatedAt"`
	Files     []struct {
		UUID        string `json:"fileUuid"`
		Name        string `json:"fileName"`
		Size        int64  `json:"fileSize"`
		ContentType string `json:"contentType"`
	} `json:"pageFiles"`
}

func TestHomeRedirects(t *testing.T) {
	app, cleanup := testutil.SetupTestApp(t)
	defer cleanup()

	rr := serve(app.Router, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/index.html" {
		t.Errorf("Location = %q", loc)
	}
}

func TestCreateAndViewPage(t *testing.T) {
	app, cleanup := testutil.SetupTestApp(t)
	defer cleanup()

	rr := postPage(t, app.Router, "Front Page", "<h1>Hello</h1><p>Visit SandBox.</p>",
		testFile{"notes.txt", "text/plain", "some notes"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var created pageJSON
	decode(t, rr, &created)
	if created.Name != "Front Page" || created.UUID == "" {
		t.Errorf("unexpected created page %+v", created)
	}
	if len(created.Files) != 1 || created.Files[0].Name != "notes.txt" {
		t.Errorf("expected the upload in the response, got %+v", created.Files)
	}

	rr = serve(app.Router, httptest.NewRequest("GET", "/api/page/Front%20Page", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}

	var got pageJSON
	decode(t, rr, &got)
	if got.Content != `<h1 id="hello">Hello</h1><p>Visit <a href="/wiki/SandBox">SandBox</a>.</p>` {
		t.Errorf("unexpected content %q", got.Content)
	}
	if got.TOC == nil || *got.TOC != `<ul><li><a href="#hello">Hello</a></li></ul>` {
		t.Errorf("unexpected TOC %v", got.TOC)
	}
	if got.Files != nil {
		t.Errorf("expected no files without ?files=true, got %+v", got.Files)
	}

	t.Run("with files", func(t *testing.T) {
		rr := serve(app.Router, httptest.NewRequest("GET", "/api/page/Front%20Page?files=true", nil))
		var withFiles pageJSON
		decode(t, rr, &withFiles)
		if len(withFiles.Files) != 1 || withFiles.Files[0].Size != int64(len("some notes")) {
			t.Fatalf("unexpected files %+v", withFiles.Files)
		}

		file := serve(app.Router, httptest.NewRequest("GET", "/api/file/"+withFiles.Files[0].UUID, nil))
		if file.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", file.Code)
		}
		if file.Body.String() != "some notes" {
			t.Errorf("unexpected file body %q", file.Body.String())
		}
		if ct := file.Header().Get("Content-Type"); ct != "text/plain" {
			t.Errorf("Content-Type = %q", ct)
		}
		if file.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Error("expected nosniff on attachments")
		}
	})

	t.Run("conditional get", func(t *testing.T) {
		etag := rr.Header().Get("ETag")
		if etag == "" {
			t.Fatal("expected an ETag")
		}
		req := httptest.NewRequest("GET", "/api/page/Front%20Page", nil)
		req.Header.Set("If-None-Match", etag)
		if cached := serve(app.Router, req); cached.Code != http.StatusNotModified {
			t.Errorf("expected 304, got %d", cached.Code)
		}
	})
}

func TestEditPageEndpoint(t *testing.T) {
	app, cleanup := testutil.SetupTestApp(t)
	defer cleanup()

	page := testutil.CreateTestPage(t, app, "Draft", "<p>v1</p>")
	testutil.CreateTestPage(t, app, "Taken", "<p>other</p>")

	edit := func(id, name, content string) *httptest.ResponseRecorder {
		form := url.Values{"pageName": {name}, "pageContent": {content}}
		req := httptest.NewRequest("POST", "/api/page/"+id, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return serve(app.Router, req)
	}

	rr := edit(page.UUID.String(), "Draft", "<p>v2</p>")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var edited pageJSON
	decode(t, rr, &edited)
	if edited.Content != "<p>v2</p>" || edited.UUID != page.UUID.String() {
		t.Errorf("unexpected edited page %+v", edited)
	}

	tests := []struct {
		name string
		id   string
		page string
		want int
	}{
		{"malformed uuid", "not-a-uuid", "Draft", http.StatusBadRequest},
		{"unknown uuid", "6f1c2f4e-8a9b-4a55-9d59-2f71d0c1a001", "Draft", http.StatusNotFound},
		{"name conflict", page.UUID.String(), "Taken", http.StatusConflict},
		{"empty name", page.UUID.String(), "  ", http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := edit(tc.id, tc.page, "<p>x</p>")
			if rr.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, rr.Code, rr.Body.String())
			}
			var body struct {
				Code  int    `json:"code"`
				Error string `json:"error"`
			}
			decode(t, rr, &body)
			if body.Code != tc.want || body.Error == "" {
				t.Errorf("unexpected error body %+v", body)
			}
		})
	}
}

func TestCreatePageErrors(t *testing.T) {
	config := testutil.TestConfig()
	config.MaxContentBytes = 64
	config.MaxUploadBytes = 4096
	app, cleanup := testutil.SetupTestAppWithConfig(t, config)
	defer cleanup()

	testutil.CreateTestPage(t, app, "Existing", "<p>here</p>")

	tests := []struct {
		name    string
		page    string
		content string
		files   []testFile
		want    int
	}{
		{"duplicate", "Existing", "<p>x</p>", nil, http.StatusConflict},
		{"bad name", "a/b", "<p>x</p>", nil, http.StatusBadRequest},
		{"content too large", "Big", strings.Repeat("x", 65), nil, http.StatusRequestEntityTooLarge},
		{"upload too large", "Heavy", "<p>x</p>", []testFile{{"big.bin", "application/octet-stream", strings.Repeat("z", 8192)}}, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := postPage(t, app.Router, tc.page, tc.content, tc.files...)
			if rr.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestNotFoundResponses(t *testing.T) {
	app, cleanup := testutil.SetupTestApp(t)
	defer cleanup()

	tests := []struct {
		path string
		want int
	}{
		{"/api/page/Missing", http.StatusNotFound},
		{"/api/page/Missing/history", http.StatusNotFound},
		{"/api/file/6f1c2f4e-8a9b-4a55-9d59-2f71d0c1a001", http.StatusNotFound},
		{"/api/file/zzz", http.StatusBadRequest},
		{"/api/nothing-here", http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			rr := serve(app.Router, httptest.NewRequest("GET", tc.path, nil))
			if rr.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, rr.Code)
			}
			if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Errorf("expected a JSON error, got Content-Type %q", ct)
			}
		})
	}
}

func TestHistoryDiffAndBacklinks(t *testing.T) {
	app, cleanup := testutil.SetupTestApp(t)
	defer cleanup()

	page := testutil.CreateTestPage(t, app, "Notes", "<p>alpha <script>x</script></p>")
	if _, err := app.Pages.EditPage(context.Background(), page.UUID, "Notes", "<p>beta</p>"); err != nil {
		t.Fatalf("EditPage failed: %v", err)
	}
	testutil.CreateTestPage(t, app, "Index", "<p>See SomePage and !NotLinked</p>")

	rr := serve(app.Router, httptest.NewRequest("GET", "/api/page/Notes/history", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", rr.Code)
	}
	var history []struct {
		ID   int    `json:"revisionId"`
		Hash string `json:"hash"`
	}
	decode(t, rr, &history)
	if len(history) != 2 || history[0].ID != 2 {
		t.Errorf("unexpected history %+v", history)
	}
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("expected history to be uncached, got %q", rr.Header().Get("Cache-Control"))
	}

	rr = serve(app.Router, httptest.NewRequest("GET", "/api/page/Notes/revision/1", nil))
	var rev struct {
		ID         int    `json:"revisionId"`
		RawContent string `json:"rawContent"`
	}
	decode(t, rr, &rev)
	if rev.ID != 1 || rev.RawContent != "<p>alpha <script>x</script></p>" {
		t.Errorf("unexpected revision %+v", rev)
	}

	rr = serve(app.Router, httptest.NewRequest("GET", "/api/page/Notes/diff?old=1&new=2", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("diff: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if diff := rr.Body.String(); strings.Contains(diff, "<script>") || !strings.Contains(diff, "&lt;script&gt;") {
		t.Errorf("expected escaped diff, got %s", diff)
	}

	for _, path := range []string{"/api/page/Notes/diff", "/api/page/Notes/diff?new=x", "/api/page/Notes/diff?new=2&old=y"} {
		if rr := serve(app.Router, httptest.NewRequest("GET", path, nil)); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, rr.Code)
		}
	}
	if rr := serve(app.Router, httptest.NewRequest("GET", "/api/page/Notes/diff?new=5", nil)); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a missing revision, got %d", rr.Code)
	}

	rr = serve(app.Router, httptest.NewRequest("GET", "/api/page/SomePage/backlinks", nil))
	var backlinks []struct {
		Name string `json:"pageName"`
	}
	decode(t, rr, &backlinks)
	if len(backlinks) != 1 || backlinks[0].Name != "Index" {
		t.Errorf("unexpected backlinks %+v", backlinks)
	}
}

func TestRecentAndSearch(t *testing.T) {
	app, cleanup := testutil.SetupTestApp(t)
	defer cleanup()

	testutil.CreateTestPage(t, app, "Birds", "<p>Sparrows and finches.</p>")
	testutil.CreateTestPage(t, app, "Fish", "<p>Trout and salmon.</p>")

	rr := serve(app.Router, httptest.NewRequest("GET", "/api/pages", nil))
	var recent []struct {
		Name        string `json:"pageName"`
		PreviewText string `json:"previewText"`
	}
	decode(t, rr, &recent)
	if len(recent) != 2 || recent[0].Name != "Fish" || recent[0].PreviewText != "Trout and salmon." {
		t.Errorf("unexpected recent pages %+v", recent)
	}

	rr = serve(app.Router, httptest.NewRequest("GET", "/api/search?q=finches+trout", nil))
	var results []wiki.SearchResult
	decode(t, rr, &results)
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %+v", results)
	}

	rr = serve(app.Router, httptest.NewRequest("GET", "/api/search?q=", nil))
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("expected an empty list, got %s", rr.Body.String())
	}
}

func TestXSSInPageContent(t *testing.T) {
	app, cleanup := testutil.SetupTestApp(t)
	defer cleanup()

	payloads := []string{
		`<script>alert('xss')</script>`,
		`<img src=x onerror="alert('xss')">`,
		`<a href="javascript:alert('xss')">click</a>`,
		`<div onmouseover="alert('xss')">hover</div>`,
		`<svg onload="alert('xss')">`,
		`<iframe src="https://evil.example"></iframe>`,
	}

	for i, payload := range payloads {
		name := "Xss" + string(rune('A'+i))
		if rr := postPage(t, app.Router, name, payload); rr.Code != http.StatusCreated {
			t.Fatalf("%s: expected 201, got %d", name, rr.Code)
		}

		var got pageJSON
		decode(t, serve(app.Router, httptest.NewRequest("GET", "/api/page/"+name, nil)), &got)
		for _, bad := range []string{"<script", "onerror", "javascript:", "onmouseover", "onload", "<iframe"} {
			if strings.Contains(strings.ToLower(got.Content), bad) {
				t.Errorf("%s: stored content contains %q: %s", name, bad, got.Content)
			}
		}
	}
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<!doctype html><title>wikilite</title>"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}

	config := testutil.TestConfig()
	config.StaticDir = dir
	app, cleanup := testutil.SetupTestAppWithConfig(t, config)
	defer cleanup()

	rr := serve(app.Router, httptest.NewRequest("GET", "/index.html", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "<title>wikilite</title>") {
		t.Errorf("unexpected body %q", rr.Body.String())
	}
	if got := rr.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}

	if rr := serve(app.Router, httptest.NewRequest("GET", "/app.js", nil)); rr.Code != http.StatusOK || rr.Body.String() != "console.log(1)" {
		t.Errorf("unexpected asset response %d %q", rr.Code, rr.Body.String())
	}

	if rr := serve(app.Router, httptest.NewRequest("GET", "/api/pages", nil)); rr.Code != http.StatusOK {
		t.Errorf("static files must not shadow the API, got %d", rr.Code)
	}
}

func TestPanicRecovery(t *testing.T) {
	// No services wired: every API call panics inside the handler.
	router := server.NewRouter(&server.App{Config: testutil.TestConfig()})

	rr := serve(router, httptest.NewRequest("GET", "/api/pages", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rr.Code)
	}
}
