package api

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/dgallion1/chatmd/internal/conversation"
	"github.com/dgallion1/chatmd/internal/dom"
	"github.com/dgallion1/chatmd/internal/pipeline"
)

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readPage(w, r)
	if !ok {
		return
	}
	doc, err := dom.Parse(bytes.NewReader(data))
	if err != nil {
		jsonError(w, "invalid html: "+err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": conversation.Detect(doc)})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readPage(w, r)
	if !ok {
		return
	}
	opts, err := s.exportOptions(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	artifact, err := s.orchestrator.Exporter().Export(r.Context(), data, opts)
	if err != nil {
		s.exportError(w, err)
		return
	}

	if r.URL.Query().Get("delivery") == "data_url" {
		s.writeDataURL(w, r, artifact)
		return
	}
	writeArtifact(w, artifact)
}

// writeDataURL delivers the artifact inline as a data: URL. Markdown
// defaults to percent encoding, archives to base64.
func (s *Server) writeDataURL(w http.ResponseWriter, r *http.Request, a *pipeline.Artifact) {
	encoding := r.URL.Query().Get("encoding")
	if encoding == "" && a.ContentType != pipeline.MarkdownContentType {
		encoding = pipeline.EncodingBase64
	}
	mediaType := strings.ReplaceAll(a.ContentType, " ", "")

	u, err := pipeline.DataURL(a.Data, mediaType, encoding)
	if err != nil {
		if errors.Is(err, pipeline.ErrEncodingUnavailable) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"filename": a.Filename,
		"url":      u,
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readPage(w, r)
	if !ok {
		return
	}
	opts, err := s.exportOptions(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	// Image placeholders only resolve inside an archive.
	opts.DownloadImages = false

	res, err := s.orchestrator.Exporter().Convert(data, opts)
	if err != nil {
		s.exportError(w, err)
		return
	}
	_, body, err := pipeline.SplitFrontMatter([]byte(res.Markdown))
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out, err := s.renderer.Render(body)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(out)
}

// exportError maps export failures onto status codes. Pages without a
// conversation are 422; failed image fetches are 502.
func (s *Server) exportError(w http.ResponseWriter, err error) {
	if conversation.IsNotFound(err) {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.log.Error("export failed", "error", err)
	jsonError(w, err.Error(), http.StatusBadGateway)
}
