package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/danielledeleo/wikilite/wiki"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// multipartMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const multipartMemory = 8 << 20

// HomeHandler sends browsers to the single-page front end.
func (a *App) HomeHandler(rw http.ResponseWriter, req *http.Request) {
	http.Redirect(rw, req, "/index.html", http.StatusFound)
}

// RecentPagesHandler lists previews of the most recently updated pages.
func (a *App) RecentPagesHandler(rw http.ResponseWriter, req *http.Request) {
	previews, err := a.Pages.RecentPages()
	if err != nil {
		a.ErrorHandler(rw, req, err)
		return
	}
	a.writeJSON(rw, http.StatusOK, previews)
}

// PageHandler returns one page. ?files=true adds the file metadata.
func (a *App) PageHandler(rw http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	includeFiles := req.URL.Query().Get("files") == "true"

	page, err := a.Pages.GetPage(name, includeFiles)
	if err != nil {
		a.ErrorHandler(rw, req, err)
		return
	}

	etag := fmt.Sprintf("%s-%d", page.UUID, page.UpdatedAt.UnixNano())
	if includeFiles {
		etag += "-files"
	}
	setCacheConditional(rw, etag, page.UpdatedAt)
	if checkNotModified(rw, req, `W/"`+etag+`"`, page.UpdatedAt) {
		return
	}

	slog.Debug("page viewed", "category", "page", "action", "view", "page", name)
	a.writeJSON(rw, http.StatusOK, page)
}

// AddPageHandler creates a page from a multipart form with pageName,
// pageContent and any number of files[] parts.
func (a *App) AddPageHandler(rw http.ResponseWriter, req *http.Request) {
	if a.Config.MaxUploadBytes > 0 {
		req.Body = http.MaxBytesReader(rw, req.Body, a.Config.MaxUploadBytes)
	}

	if err := parseForm(req); err != nil {
		a.ErrorHandler(rw, req, err)
		return
	}

	var uploads []*wiki.Upload
	if req.MultipartForm != nil {
		var err error
		uploads, err = readUploads(req.MultipartForm.File["files[]"])
		if err != nil {
			a.ErrorHandler(rw, req, err)
			return
		}
	}

	page, err := a.Pages.AddPage(req.Context(), req.FormValue("pageName"), req.FormValue("pageContent"), uploads)
	if err != nil {
		a.ErrorHandler(rw, req, err)
		return
	}

	a.writeJSON(rw, http.StatusCreated, page)
}

// EditPageHandler replaces the name and content of the page with the given UUID.
func (a *App) EditPageHandler(rw http.ResponseWriter, req *http.Request) {
	id, err := uuid.Parse(mux.Vars(req)["uuid"])
	if err != nil {
		a.ErrorHandler(rw, req, wiki.ErrBadUUID)
		return
	}

	if a.Config.MaxUploadBytes > 0 {
		req.Body = http.MaxBytesReader(rw, req.Body, a.Config.MaxUploadBytes)
	}
	if err := parseForm(req); err != nil {
		a.ErrorHandler(rw, req, err)
		return
	}

	page, err := a.Pages.EditPage(req.Context(), id, req.FormValue("pageName"), req.FormValue("pageContent"))
	if err != nil {
		a.ErrorHandler(rw, req, err)
		return
	}

	a.writeJSON(rw, http.StatusOK, page)
}

// HistoryHandler lists a page's revisions, newest first.
func (a *App) HistoryHandler(rw http.ResponseWriter, req *http.Request) {
	revisions, err := a.Pages.GetRevisionHistory(mux.Vars(req)["name"])
	if err != nil {
		a.ErrorHandler(rw, req, err)
		return
	}
	a.writeJSON(rw, http.StatusOK, revisions)
}

// revisionResponse adds the raw content that Revision leaves out of listings.
type revisionResponse struct {
	*wiki.Revision
	RawContent string `json:"rawContent"`
}

// RevisionHandler returns one revision with its raw content.
func (a *App) RevisionHandler(rw http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		a.ErrorHandler(rw, req, badRequest(err))
		return
	}

	rev, err := a.Pages.GetRevision(vars["name"], id)
	if err != nil {
		a.ErrorHandler(rw, req, err)
		return
	}
	a.writeJSON(rw, http.StatusOK, revisionResponse{Revision: rev, RawContent: rev.Content})
}

// DiffHandler renders the difference between ?old=N and ?new=M as HTML.
// Without old the previous revision is used.
func (a *App) DiffHandler(rw http.ResponseWriter, req *http.Request) {
	params := req.URL.Query()

	newID, err := strconv.Atoi(params.Get("new"))
	if err != nil {
		a.ErrorHandler(rw, req, badRequest(err))
		return
	}

	oldID := 0
	if oldStr := params.Get("old"); oldStr != "" {
		oldID, err = strconv.Atoi(oldStr)
		if err != nil {
			a.ErrorHandler(rw, req, badRequest(err))
			return
		}
	}

	diff, err := a.Pages.DiffRevisions(mux.Vars(req)["name"], oldID, newID)
	if err != nil {
		a.ErrorHandler(rw, req, err)
		return
	}

	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = io.WriteString(rw, diff)
	check(err)
}

// BacklinksHandler lists previews of pages linking to the named page.
func (a *App) BacklinksHandler(rw http.ResponseWriter, req *http.Request) {
	previews, err := a.Pages.GetBacklinks(mux.Vars(req)["name"])
	if err != nil {
		a.ErrorHandler(rw, req, err)
		return
	}
	a.writeJSON(rw, http.StatusOK, previews)
}

// FileHandler serves the bytes of an attachment.
func (a *App) FileHandler(rw http.ResponseWriter, req *http.Request) {
	id, err := uuid.Parse(mux.Vars(req)["uuid"])
	if err != nil {
		a.ErrorHandler(rw, req, wiki.ErrBadUUID)
		return
	}

	blob, err := a.Files.GetFile(id)
	if err != nil {
		a.ErrorHandler(rw, req, err)
		return
	}

	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	rw.Header().Set("Content-Type", contentType)
	rw.Header().Set("Content-Length", strconv.FormatInt(int64(len(blob.Content)), 10))
	rw.Header().Set("X-Content-Type-Options", "nosniff")
	// Attachments never change once stored.
	setCacheStable(rw, time.Time{})
	_, err = rw.Write(blob.Content)
	check(err)
}

// SearchHandler runs a full-text query from ?q=.
func (a *App) SearchHandler(rw http.ResponseWriter, req *http.Request) {
	results, err := a.Search.Search(req.URL.Query().Get("q"))
	if err != nil {
		a.ErrorHandler(rw, req, err)
		return
	}
	a.writeJSON(rw, http.StatusOK, results)
}

// errBadRequest marks malformed request parameters.
var errBadRequest = errors.New("bad request")

func badRequest(err error) error {
	return fmt.Errorf("%w: %w", errBadRequest, err)
}

// parseForm accepts both multipart and urlencoded bodies.
func parseForm(req *http.Request) error {
	err := req.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = req.ParseForm()
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return wiki.ErrContentTooLarge
	}
	if err != nil {
		return badRequest(err)
	}
	return nil
}

func readUploads(headers []*multipart.FileHeader) ([]*wiki.Upload, error) {
	uploads := make([]*wiki.Upload, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		uploads = append(uploads, &wiki.Upload{
			Name:        header.Filename,
			ContentType: contentType,
			Content:     content,
		})
	}
	return uploads, nil
}

// errorStatus maps service errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, wiki.ErrNotFound), errors.Is(err, wiki.ErrRevisionNotFound):
		return http.StatusNotFound
	case errors.Is(err, wiki.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, wiki.ErrContentTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, wiki.ErrTransform):
		return http.StatusUnprocessableEntity
	case errors.Is(err, wiki.ErrEmptyPageName),
		errors.Is(err, wiki.ErrBadPageName),
		errors.Is(err, wiki.ErrBadUUID),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

// ErrorHandler writes err as a JSON error body. Internal errors are logged
// and reported without detail.
func (a *App) ErrorHandler(rw http.ResponseWriter, req *http.Request, err error) {
	code := errorStatus(err)
	message := err.Error()

	if code == http.StatusInternalServerError {
		slog.Error("request failed", "category", "http", "method", req.Method, "path", req.URL.Path, "error", err)
		message = http.StatusText(code)
	} else {
		slog.Debug("request rejected", "category", "http", "method", req.Method, "path", req.URL.Path, "status", code, "error", err)
	}

	a.writeJSON(rw, code, errorResponse{Code: code, Message: message})
}

func (a *App) writeJSON(rw http.ResponseWriter, code int, v any) {
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(code)
	check(json.NewEncoder(rw).Encode(v))
}
