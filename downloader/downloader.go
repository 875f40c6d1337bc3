// Package downloader fetches arbitrary image URLs into a local directory
// with bounded parallelism.  It's independent of the Confluence attachment
// API: filenames are derived from each URL, and a file already on disk is
// reused rather than re-fetched.
package downloader

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 5

// fetchTimeout bounds each individual image fetch.
const fetchTimeout = 10 * time.Second

type ImageDownloader struct {
	// Directory to save images into; created if absent.
	OutputDir string

	// Maximum concurrent downloads.  Zero means the default of 5.
	Workers int

	Client *http.Client
	Logger *log.Logger
}

func New(outputDir string) *ImageDownloader {
	return &ImageDownloader{
		OutputDir: outputDir,
		Workers:   defaultWorkers,
		Client:    &http.Client{},
		Logger:    log.New(os.Stderr, "", log.LstdFlags),
	}
}

// DownloadAll fetches the given URLs concurrently and returns a mapping of
// URL to local path for every successful (or already-present) download.
// Per-URL failures are logged and omitted from the result; they never abort
// the batch.
func (d *ImageDownloader) DownloadAll(ctx context.Context, urls []string) (map[string]string, error) {
	if len(urls) == 0 {
		return map[string]string{}, nil
	}

	if err := os.MkdirAll(d.OutputDir, 0750); err != nil {
		return nil, fmt.Errorf("downloader: couldn't create directory %s: %w", d.OutputDir, err)
	}

	workers := d.Workers
	if workers < 1 {
		workers = defaultWorkers
	}

	imageMap := map[string]string{}
	var imageMapMu sync.Mutex

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)

	for _, u := range urls {
		u := u
		grp.Go(func() error {
			localPath, err := d.downloadSingle(gctx, u)
			if err != nil {
				d.Logger.Printf("downloader: warning: failed to download %s: %v", u, err)
				return nil
			}

			imageMapMu.Lock()
			imageMap[u] = localPath
			imageMapMu.Unlock()
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, fmt.Errorf("downloader: failure: %w", err)
	}

	return imageMap, nil
}

func (d *ImageDownloader) downloadSingle(ctx context.Context, rawURL string) (string, error) {
	localPath := filepath.Join(d.OutputDir, filenameForURL(rawURL))

	// Already downloaded on a previous run?  Reuse it.
	if _, err := os.Stat(localPath); err == nil {
		return localPath, nil
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("downloader: couldn't instantiate http request: %w", err)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloader: couldn't perform http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("downloader: unexpected HTTP status: %s", resp.Status)
	}

	f, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("downloader: couldn't create file %s: %w", localPath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("downloader: couldn't write to file %s: %w", localPath, err)
	}

	return localPath, nil
}

// filenameForURL derives a basename from the URL's path, stripped of query
// parameters.  A URL with no usable basename gets a synthetic unique name.
func filenameForURL(rawURL string) string {
	name := ""
	if u, err := url.Parse(rawURL); err == nil {
		name = path.Base(u.Path)
	}
	if name == "." || name == "/" {
		name = ""
	}

	// Query parameters can survive in sloppy URLs where '?' wasn't parsed
	// as a separator.
	name, _, _ = strings.Cut(name, "?")

	if name == "" {
		h := fnv.New32a()
		h.Write([]byte(rawURL))
		name = fmt.Sprintf("image_%08x.png", h.Sum32())
	}

	return name
}
