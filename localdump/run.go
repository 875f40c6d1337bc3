package localdump

import (
	"context"
	"fmt"
	"os"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/toothbrush/confluence-export/confluence"
)

// Run exports the page with the given ID and, when recursive, every
// descendant page.  A failure on the initial page or descendant fetch is
// fatal and propagates; once the per-page loop starts, each page's failure
// is contained, logged, and counted in the summary.
func (e *Exporter) Run(ctx context.Context, pageID string, recursive bool) (Summary, error) {
	root, err := e.API.GetPageByID(ctx, pageID)
	if err != nil {
		return Summary{}, fmt.Errorf("localdump: failed getting page %s: %w", pageID, err)
	}

	pages := []confluence.Page{*root}
	if recursive {
		e.Logger.Printf("Listing descendants of %q...", root.Title)
		descendants, err := e.API.GetDescendants(ctx, pageID)
		if err != nil {
			return Summary{}, fmt.Errorf("localdump: failed listing descendants: %w", err)
		}
		pages = append(pages, descendants...)
	}
	e.Logger.Printf("Found %d pages to export.", len(pages))

	if err := os.MkdirAll(e.StorePath, 0750); err != nil {
		return Summary{}, fmt.Errorf("localdump: couldn't create directory %s: %w", e.StorePath, err)
	}

	p := mpb.New(mpb.WithWidth(64))
	bar := p.AddBar(int64(len(pages)),
		mpb.PrependDecorators(
			decor.Name("pages:", decor.WC{C: decor.DindentRight | decor.DextraSpace}),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d/%d) "),
			decor.NewPercentage("%d"),
		),
	)

	// Pages are processed one at a time: per-page isolation matters more
	// than throughput, and output directories never overlap.
	summary := Summary{}
	for _, page := range pages {
		summary.Processed++

		outcome, err := e.ExportPage(ctx, page)
		if err != nil {
			summary.Failed++
			e.Logger.Printf("localdump: failed to export %q: %v", page.Title, err)
			bar.Increment()
			continue
		}

		switch outcome {
		case SkippedEmpty:
			summary.Skipped++
		default:
			summary.Exported++
		}
		bar.Increment()
	}

	// wait for our bar to complete and flush
	p.Wait()

	return summary, nil
}
