// Package convert turns Confluence storage-format HTML into Markdown.  The
// storage format carries vendor elements (ac:image, ac:structured-macro,
// ri:attachment) alongside standard HTML; those are rewritten into plain
// HTML on a parsed tree before the generic Markdown conversion runs.
package convert

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	mdplugin "github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ToMarkdown converts a storage-format HTML body to Markdown.  imageMap maps
// attachment filenames to local paths; a referenced filename absent from the
// map falls back to "images/<filename>".  The second return value is the set
// of attachment filenames referenced by the content, computed on the input
// before any rewriting.
func ToMarkdown(html string, imageMap map[string]string) (string, []string, error) {
	doc, err := parseFragment(html)
	if err != nil {
		return "", nil, fmt.Errorf("convert: couldn't parse storage HTML: %w", err)
	}

	referenced := collectAttachmentFilenames(doc)

	rewriteImages(doc, imageMap)
	rewriteDrawioMacros(doc, imageMap)
	rewriteCodeMacros(doc)

	rewritten, err := doc.Find("body").Html()
	if err != nil {
		return "", nil, fmt.Errorf("convert: couldn't serialise rewritten HTML: %w", err)
	}

	markdown, err := newConverter().ConvertString(rewritten)
	if err != nil {
		return "", nil, fmt.Errorf("convert: failed to convert to Markdown: %w", err)
	}

	return markdown, referenced, nil
}

// ExtractAttachmentFilenames scans storage-format HTML for attachment
// references: ri:attachment filenames, plus the implied <diagramName>.png of
// every drawio macro.
func ExtractAttachmentFilenames(html string) ([]string, error) {
	doc, err := parseFragment(html)
	if err != nil {
		return nil, fmt.Errorf("convert: couldn't parse storage HTML: %w", err)
	}

	return collectAttachmentFilenames(doc), nil
}

// RewriteImageLinks replaces image URLs with local paths in already-converted
// Markdown.  Used by the generic (URL-keyed) download path, not the per-page
// attachment pipeline.
func RewriteImageLinks(markdown string, imageMap map[string]string) string {
	for originalURL, localPath := range imageMap {
		markdown = strings.ReplaceAll(markdown, originalURL, localPath)
	}
	return markdown
}

var cdataSection = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)

func parseFragment(raw string) (*goquery.Document, error) {
	// The HTML parser treats CDATA sections as bogus comments terminated at
	// the first '>', which would truncate code bodies.  Unwrap them into
	// escaped text before parsing; the parser hands the literal back as a
	// text node.
	raw = cdataSection.ReplaceAllStringFunc(raw, func(section string) string {
		inner := cdataSection.FindStringSubmatch(section)[1]
		return html.EscapeString(inner)
	})

	return goquery.NewDocumentFromReader(strings.NewReader(raw))
}

func collectAttachmentFilenames(doc *goquery.Document) []string {
	seen := map[string]bool{}

	doc.Find(`ri\:attachment`).Each(func(_ int, s *goquery.Selection) {
		if filename := s.AttrOr("ri:filename", ""); filename != "" {
			seen[filename] = true
		}
	})

	eachMacro(doc, "drawio", func(macro *goquery.Selection) {
		if name := macroParameter(macro, "diagramName"); name != "" {
			seen[name+".png"] = true
		}
	})

	filenames := make([]string, 0, len(seen))
	for filename := range seen {
		filenames = append(filenames, filename)
	}
	sort.Strings(filenames)
	return filenames
}

func newConverter() *md.Converter {
	opt := &md.Options{
		HeadingStyle:     "atx",
		BulletListMarker: "*",
		CodeBlockStyle:   "fenced",
	}

	converter := md.NewConverter("", true, opt)
	// Github flavoured Markdown knows about tables 👍
	converter.Use(mdplugin.GitHubFlavored())
	converter.Remove("script", "style")

	return converter
}
