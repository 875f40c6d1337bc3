package localdump

import (
	"log"

	"github.com/toothbrush/confluence-export/confluence"
)

// Exporter holds everything needed to export pages from one Confluence site
// into a local directory tree.
type Exporter struct {
	API *confluence.API

	// Root for all page folders.
	StorePath string

	IncludeImages  bool
	AllAttachments bool

	// Persist the raw storage-format HTML alongside the converted output.
	Debug bool

	// Parallelism for per-page attachment downloads.  Zero means 5.
	Workers int

	Logger *log.Logger
}

// Outcome is the per-page result of a successful ExportPage call.
type Outcome int

const (
	Exported Outcome = iota

	// SkippedEmpty means the page body was empty or whitespace-only.  Not
	// an error: the page simply produces no output.
	SkippedEmpty
)

// Summary aggregates per-page outcomes over a whole run.  Failures are
// contained to their page and only show up here.
type Summary struct {
	Processed int
	Exported  int
	Skipped   int
	Failed    int
}
