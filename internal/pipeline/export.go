// Package pipeline turns submitted conversation pages into downloadable
// artifacts, either synchronously or through a pool of export workers.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/dgallion1/chatmd/internal/archive"
	"github.com/dgallion1/chatmd/internal/conversation"
	"github.com/dgallion1/chatmd/internal/dom"
)

const (
	MarkdownContentType = "text/markdown; charset=utf-8"
	ZipContentType      = "application/zip"
)

// ExportOptions controls a single export.
type ExportOptions struct {
	DownloadImages bool
	Title          string
	BaseURL        *url.URL
	FrontMatter    bool
}

// Artifact is a finished export ready to be delivered.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Exporter runs extraction and packaging for one page at a time.
type Exporter struct {
	packager *archive.Packager
	log      *slog.Logger
	now      func() time.Time
}

func NewExporter(fetcher archive.Fetcher, log *slog.Logger) *Exporter {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Exporter{
		packager: archive.NewPackager(fetcher, log),
		log:      log,
		now:      time.Now,
	}
}

// Convert parses htmlData and extracts the conversation. A page without
// turns yields a *conversation.Failure.
func (e *Exporter) Convert(htmlData []byte, opts ExportOptions) (*conversation.Result, error) {
	doc, err := dom.Parse(bytes.NewReader(htmlData))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	res, err := conversation.Extract(doc, conversation.Options{
		DownloadImages: opts.DownloadImages,
		TitleOverride:  opts.Title,
		BaseURL:        opts.BaseURL,
	})
	if err != nil {
		return nil, err
	}

	if opts.FrontMatter {
		md, err := WithFrontMatter(res.Markdown, FrontMatter{
			Title:      res.Title,
			ExportedAt: e.now().UTC().Truncate(time.Second),
			Turns:      res.Turns,
			Images:     len(res.Images),
		})
		if err != nil {
			return nil, err
		}
		res.Markdown = md
	}
	return res, nil
}

// Package builds the artifact for res: a zip bundle when it references
// images, the bare Markdown file otherwise.
func (e *Exporter) Package(ctx context.Context, res *conversation.Result) (*Artifact, error) {
	if len(res.Images) == 0 {
		return &Artifact{
			Filename:    res.Filename,
			ContentType: MarkdownContentType,
			Data:        []byte(res.Markdown),
		}, nil
	}

	data, err := e.packager.Build(ctx, res.Title, res.Filename, res.Markdown, res.Images)
	if err != nil {
		return nil, fmt.Errorf("build archive: %w", err)
	}
	return &Artifact{
		Filename:    res.Title + ".zip",
		ContentType: ZipContentType,
		Data:        data,
	}, nil
}

// Export converts and packages htmlData in one call.
func (e *Exporter) Export(ctx context.Context, htmlData []byte, opts ExportOptions) (*Artifact, error) {
	res, err := e.Convert(htmlData, opts)
	if err != nil {
		return nil, err
	}
	return e.Package(ctx, res)
}
