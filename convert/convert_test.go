package convert

import (
	"reflect"
	"strings"
	"testing"
)

func TestToMarkdownImageWithMapping(t *testing.T) {
	html := `<p><ac:image ac:alt="the diagram"><ri:attachment ri:filename="diagram.png"/></ac:image></p>`
	imageMap := map[string]string{"diagram.png": "images/diagram.png"}

	markdown, _, err := ToMarkdown(html, imageMap)
	if err != nil {
		t.Fatalf("ToMarkdown failed: %v", err)
	}

	if !strings.Contains(markdown, "![the diagram](images/diagram.png)") {
		t.Errorf("markdown missing rewritten image reference:\n%s", markdown)
	}
}

func TestToMarkdownImageDefaultPath(t *testing.T) {
	html := `<ac:image><ri:attachment ri:filename="diagram.png"/></ac:image>`

	markdown, _, err := ToMarkdown(html, nil)
	if err != nil {
		t.Fatalf("ToMarkdown failed: %v", err)
	}

	// No map entry: fall back to the deterministic default path, never error.
	if !strings.Contains(markdown, "(images/diagram.png)") {
		t.Errorf("markdown missing default image path:\n%s", markdown)
	}
}

func TestToMarkdownImageWithoutFilenameDropped(t *testing.T) {
	html := `<p>before</p><ac:image><ri:url ri:value="https://elsewhere/pic.png"/></ac:image><p>after</p>`

	markdown, _, err := ToMarkdown(html, nil)
	if err != nil {
		t.Fatalf("ToMarkdown failed: %v", err)
	}

	if strings.Contains(markdown, "![") {
		t.Errorf("expected image block to be dropped:\n%s", markdown)
	}
	if !strings.Contains(markdown, "before") || !strings.Contains(markdown, "after") {
		t.Errorf("surrounding content lost:\n%s", markdown)
	}
}

func TestToMarkdownDrawioMacro(t *testing.T) {
	html := `<ac:structured-macro ac:name="drawio" ac:schema-version="1">` +
		`<ac:parameter ac:name="diagramName">Architecture</ac:parameter>` +
		`</ac:structured-macro>`

	markdown, _, err := ToMarkdown(html, nil)
	if err != nil {
		t.Fatalf("ToMarkdown failed: %v", err)
	}

	if !strings.Contains(markdown, "![Architecture](images/Architecture.png)") {
		t.Errorf("markdown missing drawio image:\n%s", markdown)
	}
}

func TestToMarkdownDrawioMacroWithoutNameDropped(t *testing.T) {
	html := `<ac:structured-macro ac:name="drawio">` +
		`<ac:parameter ac:name="pageId">1</ac:parameter>` +
		`</ac:structured-macro>`

	markdown, _, err := ToMarkdown(html, nil)
	if err != nil {
		t.Fatalf("ToMarkdown failed: %v", err)
	}

	if strings.Contains(markdown, "![") {
		t.Errorf("expected nameless drawio macro to be dropped:\n%s", markdown)
	}
}

func TestToMarkdownCodeMacro(t *testing.T) {
	html := `<ac:structured-macro ac:name="code">` +
		`<ac:parameter ac:name="language">python</ac:parameter>` +
		`<ac:plain-text-body><![CDATA[print(1)]]></ac:plain-text-body>` +
		`</ac:structured-macro>`

	markdown, _, err := ToMarkdown(html, nil)
	if err != nil {
		t.Fatalf("ToMarkdown failed: %v", err)
	}

	if !strings.Contains(markdown, "```python") {
		t.Errorf("markdown missing fenced python block:\n%s", markdown)
	}
	if !strings.Contains(markdown, "print(1)") {
		t.Errorf("markdown missing code body:\n%s", markdown)
	}
	if strings.Contains(markdown, "CDATA") {
		t.Errorf("CDATA wrapper leaked into output:\n%s", markdown)
	}
}

func TestToMarkdownCodeMacroWithoutLanguage(t *testing.T) {
	html := `<ac:structured-macro ac:name="code">` +
		`<ac:plain-text-body><![CDATA[ls -la]]></ac:plain-text-body>` +
		`</ac:structured-macro>`

	markdown, _, err := ToMarkdown(html, nil)
	if err != nil {
		t.Fatalf("ToMarkdown failed: %v", err)
	}

	if !strings.Contains(markdown, "ls -la") {
		t.Errorf("markdown missing code body:\n%s", markdown)
	}
}

func TestToMarkdownCodeMacroAngleBrackets(t *testing.T) {
	html := `<ac:structured-macro ac:name="code">` +
		`<ac:parameter ac:name="language">go</ac:parameter>` +
		`<ac:plain-text-body><![CDATA[if a > b && b < c { return }]]></ac:plain-text-body>` +
		`</ac:structured-macro>`

	markdown, _, err := ToMarkdown(html, nil)
	if err != nil {
		t.Fatalf("ToMarkdown failed: %v", err)
	}

	if !strings.Contains(markdown, "if a > b && b < c { return }") {
		t.Errorf("code body mangled:\n%s", markdown)
	}
}

func TestToMarkdownCodeMacroWithoutBodyPassesThrough(t *testing.T) {
	html := `<ac:structured-macro ac:name="code">` +
		`<ac:parameter ac:name="language">python</ac:parameter>` +
		`</ac:structured-macro>`

	// Unlike images and diagrams, an unparseable code macro is left alone
	// rather than dropped.
	_, _, err := ToMarkdown(html, nil)
	if err != nil {
		t.Fatalf("ToMarkdown failed: %v", err)
	}
}

func TestToMarkdownRepeatedMacros(t *testing.T) {
	html := `<ac:structured-macro ac:name="code">` +
		`<ac:plain-text-body><![CDATA[first]]></ac:plain-text-body>` +
		`</ac:structured-macro>` +
		`<p>middle</p>` +
		`<ac:structured-macro ac:name="code">` +
		`<ac:plain-text-body><![CDATA[second]]></ac:plain-text-body>` +
		`</ac:structured-macro>`

	markdown, _, err := ToMarkdown(html, nil)
	if err != nil {
		t.Fatalf("ToMarkdown failed: %v", err)
	}

	// Each macro is rewritten within its own bounds; the text between them
	// must survive outside any code block.
	for _, want := range []string{"first", "middle", "second"} {
		if !strings.Contains(markdown, want) {
			t.Errorf("markdown missing %q:\n%s", want, markdown)
		}
	}
	if strings.Count(markdown, "```") != 4 {
		t.Errorf("expected two fenced blocks:\n%s", markdown)
	}
}

func TestToMarkdownGenericConversion(t *testing.T) {
	html := `<h1>Heading</h1><ul><li>one</li><li>two</li></ul>` +
		`<script>var x = 1;</script><style>.a { color: red }</style><p>text</p>`

	markdown, _, err := ToMarkdown(html, nil)
	if err != nil {
		t.Fatalf("ToMarkdown failed: %v", err)
	}

	if !strings.Contains(markdown, "# Heading") {
		t.Errorf("expected ATX heading:\n%s", markdown)
	}
	if !strings.Contains(markdown, "* one") || !strings.Contains(markdown, "* two") {
		t.Errorf("expected star bullets:\n%s", markdown)
	}
	if strings.Contains(markdown, "var x") || strings.Contains(markdown, "color: red") {
		t.Errorf("script/style content leaked:\n%s", markdown)
	}
}

func TestExtractAttachmentFilenames(t *testing.T) {
	html := `<ac:image><ri:attachment ri:filename="a.png"/></ac:image>` +
		`<ac:structured-macro ac:name="drawio">` +
		`<ac:parameter ac:name="diagramName">b</ac:parameter>` +
		`</ac:structured-macro>`

	filenames, err := ExtractAttachmentFilenames(html)
	if err != nil {
		t.Fatalf("ExtractAttachmentFilenames failed: %v", err)
	}

	want := []string{"a.png", "b.png"}
	if !reflect.DeepEqual(filenames, want) {
		t.Errorf("filenames = %v, want %v", filenames, want)
	}
}

func TestExtractAttachmentFilenamesDeduplicates(t *testing.T) {
	html := `<ri:attachment ri:filename="a.png"/>` +
		`<ac:image><ri:attachment ri:filename="a.png"/></ac:image>`

	filenames, err := ExtractAttachmentFilenames(html)
	if err != nil {
		t.Fatalf("ExtractAttachmentFilenames failed: %v", err)
	}

	if !reflect.DeepEqual(filenames, []string{"a.png"}) {
		t.Errorf("filenames = %v, want [a.png]", filenames)
	}
}

func TestToMarkdownReferencedFilenamesComputedBeforeRewrite(t *testing.T) {
	html := `<ac:image><ri:attachment ri:filename="a.png"/></ac:image>` +
		`<ac:structured-macro ac:name="drawio">` +
		`<ac:parameter ac:name="diagramName">b</ac:parameter>` +
		`</ac:structured-macro>`

	_, referenced, err := ToMarkdown(html, nil)
	if err != nil {
		t.Fatalf("ToMarkdown failed: %v", err)
	}

	want := []string{"a.png", "b.png"}
	if !reflect.DeepEqual(referenced, want) {
		t.Errorf("referenced = %v, want %v", referenced, want)
	}
}

func TestRewriteImageLinks(t *testing.T) {
	markdown := "![a](https://example.com/x/a.png) and ![b](https://example.com/y/b.png)"
	imageMap := map[string]string{
		"https://example.com/x/a.png": "images/a.png",
		"https://example.com/y/b.png": "images/b.png",
	}

	got := RewriteImageLinks(markdown, imageMap)
	want := "![a](images/a.png) and ![b](images/b.png)"
	if got != want {
		t.Errorf("RewriteImageLinks = %q, want %q", got, want)
	}
}
