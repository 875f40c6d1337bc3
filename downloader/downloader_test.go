package downloader

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func newTestDownloader(t *testing.T) *ImageDownloader {
	t.Helper()
	d := New(t.TempDir())
	d.Logger = log.New(io.Discard, "", 0)
	return d
}

func TestDownloadAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("contents of " + r.URL.Path))
	}))
	defer server.Close()

	d := newTestDownloader(t)
	urls := []string{
		server.URL + "/img/a.png",
		server.URL + "/img/b.png",
	}

	imageMap, err := d.DownloadAll(context.Background(), urls)
	if err != nil {
		t.Fatalf("DownloadAll failed: %v", err)
	}

	if len(imageMap) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(imageMap), imageMap)
	}

	contents, err := os.ReadFile(imageMap[urls[0]])
	if err != nil {
		t.Fatalf("couldn't read downloaded file: %v", err)
	}
	if string(contents) != "contents of /img/a.png" {
		t.Errorf("unexpected file contents: %q", contents)
	}

	if filepath.Base(imageMap[urls[1]]) != "b.png" {
		t.Errorf("unexpected local filename: %s", imageMap[urls[1]])
	}
}

func TestDownloadAllFailureOmitted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "broken.png") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	d := newTestDownloader(t)
	urls := []string{
		server.URL + "/good.png",
		server.URL + "/broken.png",
	}

	imageMap, err := d.DownloadAll(context.Background(), urls)
	if err != nil {
		t.Fatalf("DownloadAll failed: %v", err)
	}

	if _, ok := imageMap[urls[0]]; !ok {
		t.Errorf("successful download missing from map: %v", imageMap)
	}
	if _, ok := imageMap[urls[1]]; ok {
		t.Errorf("failed download should be omitted: %v", imageMap)
	}
	if _, err := os.Stat(filepath.Join(d.OutputDir, "broken.png")); !os.IsNotExist(err) {
		t.Errorf("no file should exist for failed download")
	}
}

func TestDownloadAllReusesExistingFile(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("fresh"))
	}))
	defer server.Close()

	d := newTestDownloader(t)
	existing := filepath.Join(d.OutputDir, "a.png")
	if err := os.WriteFile(existing, []byte("cached"), 0644); err != nil {
		t.Fatal(err)
	}

	imageMap, err := d.DownloadAll(context.Background(), []string{server.URL + "/a.png"})
	if err != nil {
		t.Fatalf("DownloadAll failed: %v", err)
	}

	if hits.Load() != 0 {
		t.Errorf("expected no HTTP requests for existing file, got %d", hits.Load())
	}
	contents, _ := os.ReadFile(imageMap[server.URL+"/a.png"])
	if string(contents) != "cached" {
		t.Errorf("existing file was overwritten: %q", contents)
	}
}

func TestDownloadAllEmpty(t *testing.T) {
	d := newTestDownloader(t)

	imageMap, err := d.DownloadAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("DownloadAll failed: %v", err)
	}
	if len(imageMap) != 0 {
		t.Errorf("expected empty map, got %v", imageMap)
	}
}

func TestFilenameForURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/images/pic.png", "pic.png"},
		{"https://example.com/images/pic.png?version=2&api=v2", "pic.png"},
		{"https://example.com/a/b/c.jpeg", "c.jpeg"},
	}

	for _, tc := range tests {
		if got := filenameForURL(tc.url); got != tc.want {
			t.Errorf("filenameForURL(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestFilenameForURLSynthetic(t *testing.T) {
	name := filenameForURL("https://example.com/")
	if !strings.HasPrefix(name, "image_") || !strings.HasSuffix(name, ".png") {
		t.Errorf("expected synthetic name, got %q", name)
	}

	// Deterministic for the same URL.
	if again := filenameForURL("https://example.com/"); again != name {
		t.Errorf("synthetic names differ: %q vs %q", name, again)
	}
}
