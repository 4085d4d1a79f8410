package photoprism

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/kozaktomas/face-morph/internal/export"
)

const defaultPageSize = 100

// FetchOptions controls Fetch.
type FetchOptions struct {
	// Query is a PhotoPrism search, e.g. "person:jan-novak".
	Query    string
	PageSize int
	// Limit stops after this many photos when > 0.
	Limit int
	// OnPhoto is called after every processed photo.
	OnPhoto func(done int)
	Logger  *slog.Logger
}

// FetchResult lists what Fetch did.
type FetchResult struct {
	Written  []string
	Existing []string
}

// Fetch downloads the primary file of every image matching opts.Query into
// outDir. Files that already exist are left alone, so a fetch can be resumed.
func (c *Client) Fetch(ctx context.Context, outDir string, opts FetchOptions) (*FetchResult, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	res := &FetchResult{}
	used := make(map[string]bool)
	done := 0

	for offset := 0; ; offset += pageSize {
		photos, err := c.GetPhotos(ctx, pageSize, offset, opts.Query)
		if err != nil {
			return res, fmt.Errorf("list photos at offset %d: %w", offset, err)
		}

		for _, p := range photos {
			if opts.Limit > 0 && done >= opts.Limit {
				return res, nil
			}
			if p.Type != "" && p.Type != "image" {
				logger.Debug("skipping non-image", "uid", p.UID, "type", p.Type)
				continue
			}

			name := localName(p, used)
			used[name] = true
			target := filepath.Join(outDir, name)

			if _, err := os.Stat(target); err == nil {
				res.Existing = append(res.Existing, name)
			} else {
				data, contentType, err := c.GetPhotoDownload(ctx, p.UID)
				if err != nil {
					return res, fmt.Errorf("download %s: %w", p.UID, err)
				}
				if !strings.HasPrefix(contentType, "image/") && contentType != "" {
					logger.Warn("unexpected content type", "uid", p.UID, "content_type", contentType)
				}
				if err := os.WriteFile(target, data, 0o644); err != nil { //nolint:gosec // photos are not secret
					return res, fmt.Errorf("write %s: %w", name, err)
				}
				res.Written = append(res.Written, name)
			}

			done++
			if opts.OnPhoto != nil {
				opts.OnPhoto(done)
			}
		}

		if len(photos) < pageSize {
			return res, nil
		}
	}
}

// localName picks a file name for p that is not in used.
func localName(p Photo, used map[string]bool) string {
	base := p.OriginalName
	if base == "" {
		base = p.FileName
	}
	base = path.Base(base)
	if base == "." || base == "/" {
		base = ""
	}
	if base == "" {
		base = p.UID + ".jpg"
	}
	name := export.SafeName(base)
	if used[name] {
		ext := filepath.Ext(name)
		name = strings.TrimSuffix(name, ext) + "_" + p.UID + ext
	}
	return name
}
