package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dgallion1/chatmd/internal/pipeline"
)

// readPage returns the submitted HTML. The page is either the raw request
// body or the "file" field of a multipart form. On failure the error
// response has already been written.
func (s *Server) readPage(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	var src io.Reader = r.Body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
			return nil, false
		}
		defer r.MultipartForm.RemoveAll()

		file, _, err := r.FormFile("file")
		if err != nil {
			jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
			return nil, false
		}
		defer file.Close()
		src = file
	}

	data, err := io.ReadAll(io.LimitReader(src, s.cfg.MaxUploadBytes+1))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("page exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return nil, false
		}
		jsonError(w, "failed to read page", http.StatusBadRequest)
		return nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("page exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return nil, false
	}
	if len(data) == 0 {
		jsonError(w, "empty page", http.StatusBadRequest)
		return nil, false
	}
	return data, true
}

// exportOptions reads export options from the query string, falling back to
// the configured defaults.
func (s *Server) exportOptions(r *http.Request) (pipeline.ExportOptions, error) {
	q := r.URL.Query()
	opts := pipeline.ExportOptions{
		DownloadImages: s.cfg.DownloadImages,
		FrontMatter:    s.cfg.FrontMatter,
		Title:          strings.TrimSpace(q.Get("title")),
	}

	var err error
	if opts.DownloadImages, err = queryBool(q, "download_images", opts.DownloadImages); err != nil {
		return opts, err
	}
	if opts.FrontMatter, err = queryBool(q, "front_matter", opts.FrontMatter); err != nil {
		return opts, err
	}

	if v := q.Get("base_url"); v != "" {
		u, err := url.Parse(v)
		if err != nil || !u.IsAbs() {
			return opts, fmt.Errorf("base_url must be an absolute URL")
		}
		opts.BaseURL = u
	}
	return opts, nil
}

func queryBool(q url.Values, key string, fallback bool) (bool, error) {
	v := q.Get(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("%s must be a boolean", key)
	}
	return b, nil
}

func writeArtifact(w http.ResponseWriter, a *pipeline.Artifact) {
	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Disposition", contentDisposition(a.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Data)))
	w.Write(a.Data)
}

// contentDisposition builds an attachment header. Non-ASCII names are
// encoded per RFC 2231.
func contentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]any{"ok": false, "error": msg})
}
