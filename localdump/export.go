package localdump

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/toothbrush/confluence-export/confluence"
	"github.com/toothbrush/confluence-export/convert"
)

const defaultImageWorkers = 5

// imageExtensions are the attachment types we download as page images.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".svg":  true,
	".webp": true,
}

// MarkdownHeader is the YAML front matter written above each page's content.
type MarkdownHeader struct {
	Title  string `yaml:"title"`
	PageID string `yaml:"page_id"`
	URI    string `yaml:"uri,omitempty"`
}

// ExportPage exports one page to <StorePath>/<id>_<title>/README.md, with
// its images under an images/ subdirectory.  The page may arrive as a bare
// summary (no body); the body is then fetched explicitly.  A nil error with
// SkippedEmpty means the page had no content, which is a valid terminal
// state, not a failure.
func (e *Exporter) ExportPage(ctx context.Context, page confluence.Page) (Outcome, error) {
	title := page.Title
	body := page.Body.Storage.Value

	// Descendant listings carry no body; fetch it explicitly.
	if strings.TrimSpace(body) == "" {
		full, err := e.API.GetPageByID(ctx, page.ID)
		if err != nil {
			return 0, fmt.Errorf("localdump: failed getting page body: %w", err)
		}
		body = full.Body.Storage.Value
		if title == "" {
			title = full.Title
		}
		if page.Links.WebUI == "" {
			page.Links.WebUI = full.Links.WebUI
		}
	}

	if strings.TrimSpace(body) == "" {
		return SkippedEmpty, nil
	}

	pageDir := path.Join(e.StorePath, PageDir(page.ID, title))
	if err := os.MkdirAll(pageDir, 0750); err != nil {
		return 0, fmt.Errorf("localdump: couldn't create directory %s: %w", pageDir, err)
	}

	if e.Debug {
		if err := writeFile(path.Join(pageDir, "raw.html"), []byte(body)); err != nil {
			return 0, fmt.Errorf("localdump: failed writing raw HTML: %w", err)
		}
	}

	imageMap := map[string]string{}
	if e.IncludeImages {
		imageMap = e.downloadPageImages(ctx, page.ID, body, pageDir)
	}

	markdown, _, err := convert.ToMarkdown(body, imageMap)
	if err != nil {
		return 0, fmt.Errorf("localdump: convert to Markdown failed: %w", err)
	}

	header := MarkdownHeader{
		Title:  title,
		PageID: page.ID,
	}
	if page.Links.WebUI != "" {
		header.URI = e.API.BaseURI.String() + page.Links.WebUI
	}

	yamlHeader, err := yaml.Marshal(header)
	if err != nil {
		return 0, fmt.Errorf("localdump: couldn't marshal header YAML: %w", err)
	}

	content := fmt.Sprintf("---\n%s\n---\n\n# %s\n\n%s\n",
		strings.TrimSpace(string(yamlHeader)),
		title,
		strings.TrimSpace(markdown))

	// The Markdown file is the final artifact; its presence signals the
	// page is done.
	if err := writeFile(path.Join(pageDir, "README.md"), []byte(content)); err != nil {
		return 0, fmt.Errorf("localdump: failed writing file: %w", err)
	}

	return Exported, nil
}

// downloadPageImages fetches the page's attachment metadata, determines the
// target set of filenames, downloads the image-typed ones under images/, and
// returns the filename-to-relative-path map for the transformer.  Nothing
// here aborts the page: metadata failure means an empty map (references fall
// back to their default paths), and each download failure is logged and
// skipped.
func (e *Exporter) downloadPageImages(ctx context.Context, pageID string, body string, pageDir string) map[string]string {
	imageMap := map[string]string{}

	attachments, err := e.API.GetAttachments(ctx, pageID)
	if err != nil {
		e.Logger.Printf("localdump: warning: couldn't list attachments for page %s: %v", pageID, err)
		return imageMap
	}

	// Filenames are assumed unique within a page; on collision the first
	// occurrence wins, deterministically.
	lookup := map[string]string{}
	for _, att := range attachments {
		if att.Title == "" || att.DownloadLink == "" {
			continue
		}
		if _, ok := lookup[att.Title]; !ok {
			lookup[att.Title] = att.DownloadLink
		}
	}

	var targets []string
	if e.AllAttachments {
		targets = maps.Keys(lookup)
	} else {
		referenced, err := convert.ExtractAttachmentFilenames(body)
		if err != nil {
			e.Logger.Printf("localdump: warning: couldn't scan page %s for attachment references: %v", pageID, err)
			return imageMap
		}
		for _, filename := range referenced {
			if _, ok := lookup[filename]; ok {
				targets = append(targets, filename)
			}
		}
	}

	var images []string
	for _, filename := range targets {
		if isImageFilename(filename) {
			images = append(images, filename)
		}
	}
	if len(images) == 0 {
		return imageMap
	}

	imagesDir := path.Join(pageDir, "images")
	if err := os.MkdirAll(imagesDir, 0750); err != nil {
		e.Logger.Printf("localdump: warning: couldn't create %s: %v", imagesDir, err)
		return imageMap
	}

	workers := e.Workers
	if workers < 1 {
		workers = defaultImageWorkers
	}

	var imageMapMu sync.Mutex
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)

	for _, filename := range images {
		filename := filename
		grp.Go(func() error {
			data, err := e.API.DownloadAttachment(gctx, lookup[filename])
			if err != nil {
				e.Logger.Printf("localdump: warning: failed to download %s: %v", filename, err)
				return nil
			}

			if err := writeFile(path.Join(imagesDir, filename), data); err != nil {
				e.Logger.Printf("localdump: warning: failed to save %s: %v", filename, err)
				return nil
			}

			imageMapMu.Lock()
			imageMap[filename] = "images/" + filename
			imageMapMu.Unlock()
			return nil
		})
	}
	// Workers swallow their own failures, so Wait only reports context
	// cancellation.
	if err := grp.Wait(); err != nil {
		e.Logger.Printf("localdump: warning: image downloads interrupted: %v", err)
	}

	return imageMap
}

func isImageFilename(filename string) bool {
	dot := strings.LastIndex(filename, ".")
	if dot < 0 {
		return false
	}
	return imageExtensions[strings.ToLower(filename[dot:])]
}
