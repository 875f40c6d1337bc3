package convert

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// rewriteImages replaces each ac:image element with a standard img tag.  The
// filename comes from the nested ri:attachment reference, the alt text from
// the ac:alt attribute.  An ac:image with no discoverable filename is dropped.
func rewriteImages(doc *goquery.Document, imageMap map[string]string) {
	doc.Find(`ac\:image`).Each(func(_ int, s *goquery.Selection) {
		filename := s.Find(`ri\:attachment`).AttrOr("ri:filename", "")
		if filename == "" {
			s.Remove()
			return
		}

		alt := s.AttrOr("ac:alt", "")
		s.ReplaceWithHtml(imgTag(localImagePath(filename, imageMap), alt))
	})
}

// rewriteDrawioMacros replaces each drawio structured macro with an img tag
// pointing at the diagram's rendered PNG preview, which Confluence stores as
// a same-named attachment.  A macro with no diagramName parameter is dropped.
func rewriteDrawioMacros(doc *goquery.Document, imageMap map[string]string) {
	eachMacro(doc, "drawio", func(macro *goquery.Selection) {
		name := macroParameter(macro, "diagramName")
		if name == "" {
			macro.Remove()
			return
		}

		pngFilename := name + ".png"
		macro.ReplaceWithHtml(imgTag(localImagePath(pngFilename, imageMap), name))
	})
}

// rewriteCodeMacros replaces each code structured macro with a preformatted
// block, tagged with a language-<lang> class when the macro carried a
// language parameter.  Unlike images and diagrams, a macro whose literal body
// can't be located is left in place untouched.
func rewriteCodeMacros(doc *goquery.Document) {
	eachMacro(doc, "code", func(macro *goquery.Selection) {
		body := macro.Find(`ac\:plain-text-body`)
		if body.Length() == 0 {
			return
		}

		code := literalText(body)
		language := macroParameter(macro, "language")

		class := ""
		if language != "" {
			class = fmt.Sprintf(` class="language-%s"`, html.EscapeString(language))
		}
		macro.ReplaceWithHtml(fmt.Sprintf("<pre><code%s>%s</code></pre>", class, html.EscapeString(code)))
	})
}

// eachMacro visits every ac:structured-macro whose ac:name matches.
func eachMacro(doc *goquery.Document, name string, visit func(*goquery.Selection)) {
	doc.Find(`ac\:structured-macro`).Each(func(_ int, s *goquery.Selection) {
		if s.AttrOr("ac:name", "") == name {
			visit(s)
		}
	})
}

// macroParameter returns the text of the named ac:parameter child, or "".
func macroParameter(macro *goquery.Selection, name string) string {
	value := ""
	macro.Find(`ac\:parameter`).EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if p.AttrOr("ac:name", "") == name {
			value = strings.TrimSpace(p.Text())
			return false
		}
		return true
	})
	return value
}

// literalText extracts the literal body of a plain-text element.  The CDATA
// escape the storage format wraps these in is normally unwrapped before
// parsing, but a surviving one surfaces as a bogus comment node and is
// unwrapped here.
func literalText(body *goquery.Selection) string {
	var b strings.Builder
	for _, node := range body.Contents().Nodes {
		switch node.Type {
		case html.CommentNode:
			data := node.Data
			if strings.HasPrefix(data, "[CDATA[") {
				data = strings.TrimPrefix(data, "[CDATA[")
				data = strings.TrimSuffix(data, "]]")
			}
			b.WriteString(data)
		case html.TextNode:
			b.WriteString(node.Data)
		}
	}
	return b.String()
}

func localImagePath(filename string, imageMap map[string]string) string {
	if path, ok := imageMap[filename]; ok {
		return path
	}
	return "images/" + filename
}

func imgTag(src, alt string) string {
	return fmt.Sprintf(`<img src="%s" alt="%s"/>`, html.EscapeString(src), html.EscapeString(alt))
}
