// Package archive bundles an exported Markdown document with its images.
// Image extensions are unknown until the bytes are fetched, so placeholder
// references in the Markdown are rewritten once each content type is known.
package archive

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/chatmd/internal/conversation"
)

// Packager builds zip archives.
type Packager struct {
	fetcher Fetcher
	log     *slog.Logger
}

func NewPackager(fetcher Fetcher, log *slog.Logger) *Packager {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Packager{fetcher: fetcher, log: log}
}

// Build fetches every image in order, one at a time, rewrites its
// placeholder in markdown and returns the archive. The first failed fetch
// aborts the build and no archive is returned.
func (p *Packager) Build(ctx context.Context, title, mdFilename, markdown string, images []conversation.Image) ([]byte, error) {
	folder := conversation.AssetFolder(title)
	m := NewManifest()
	m.Put(mdFilename, []byte(markdown))

	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := p.fetcher.Fetch(ctx, img.URL)
		if err != nil {
			return nil, fmt.Errorf("fetch %s (%s): %w", img.Key, img.URL, err)
		}

		ext := ExtensionFor(f.ContentType)
		path := folder + "/" + img.Key + "." + ext
		m.Put(path, f.Data)

		var n int
		markdown, n = Patch(markdown, folder+"/"+img.Key, path)
		p.log.Debug("image packaged", "key", img.Key, "path", path, "bytes", len(f.Data), "content_type", f.ContentType, "references", n)
	}

	m.Put(mdFilename, []byte(markdown))
	return m.Zip()
}
