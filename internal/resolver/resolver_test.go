package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const vimeoStyleHTML = `<!DOCTYPE html>
<html>
<head>
<title>Fallback Title</title>
<meta property="og:title" content="Scraped Title" />
<meta property="og:description" content="A description." />
<meta property="og:image" content="http://example.com/thumb.jpg" />
<meta property="og:video:url" content="http://example.com/player/123" />
<meta property="og:site_name" content="Example Site" />
<meta name="keywords" content="hello, goodbye, , hello world" />
</head>
<body></body>
</html>`

func TestParseOpenGraph(t *testing.T) {
	resolved, err := parseOpenGraph("http://example.com/video/123", strings.NewReader(vimeoStyleHTML))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resolved == nil {
		t.Fatal("Expected a resolved video")
	}

	if resolved.Title != "Scraped Title" {
		t.Errorf("Expected title %q, got %q", "Scraped Title", resolved.Title)
	}
	if resolved.Description != "A description." {
		t.Errorf("Unexpected description %q", resolved.Description)
	}
	if resolved.ThumbnailURL != "http://example.com/thumb.jpg" {
		t.Errorf("Unexpected thumbnail url %q", resolved.ThumbnailURL)
	}
	if !strings.Contains(resolved.EmbedCode, "http://example.com/player/123") {
		t.Errorf("Expected embed code for the player url, got %q", resolved.EmbedCode)
	}
	if len(resolved.Tags) != 3 {
		t.Errorf("Expected 3 keywords, got %v", resolved.Tags)
	}
}

func TestParseOpenGraph_TitleFallback(t *testing.T) {
	html := `<html><head><title>Only Title</title>
<meta property="og:video" content="http://example.com/p"/></head></html>`
	resolved, err := parseOpenGraph("http://example.com/", strings.NewReader(html))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resolved.Title != "Only Title" {
		t.Errorf("Expected fallback to <title>, got %q", resolved.Title)
	}
}

func TestParseOpenGraph_NothingUsable(t *testing.T) {
	resolved, err := parseOpenGraph("http://example.com/", strings.NewReader("<html><body>hi</body></html>"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resolved != nil {
		t.Fatalf("Expected nil for a page without metadata, got %+v", resolved)
	}
}

func TestResolve_DirectFileURL(t *testing.T) {
	service := NewService()
	resolved, err := service.Resolve(context.Background(), "http://example.com/file.mov")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resolved != nil {
		t.Fatalf("Expected nil for a bare file url, got %+v", resolved)
	}
}

func TestResolve_NetworkErrorIsResolveError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	service := NewService()
	_, err := service.Resolve(context.Background(), url)

	var resolveErr *ResolveError
	if !errors.As(err, &resolveErr) {
		t.Fatalf("Expected *ResolveError, got %v", err)
	}
}

func TestResolve_ServerErrorIsResolveError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	service := NewService()
	_, err := service.Resolve(context.Background(), server.URL)

	var resolveErr *ResolveError
	if !errors.As(err, &resolveErr) {
		t.Fatalf("Expected *ResolveError, got %v", err)
	}
}

func TestIsYouTubeURL(t *testing.T) {
	// Non-YouTube URLs must fall through to the page scraper even when
	// their path happens to contain an ID-shaped token.
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", true},
		{"http://example.com", false},
		{"http://site.org/mycoolvideo1", false},
		{"http://127.0.0.1:3000/video", false},
		{"https://notyoutube.com/watch?v=dQw4w9WgXcQ", false},
	}

	for _, tt := range tests {
		if got := isYouTubeURL(tt.url); got != tt.want {
			t.Errorf("isYouTubeURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestResolve_NonYouTubeURLIsScraped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(vimeoStyleHTML))
	}))
	defer server.Close()

	// The test server URL has an ID-shaped host:port; it must still be
	// scraped rather than handed to the YouTube client.
	service := NewService()
	resolved, err := service.Resolve(context.Background(), server.URL+"/mycoolvideo1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resolved == nil || resolved.EmbedCode == "" {
		t.Fatalf("Expected scraped metadata with embed code, got %+v", resolved)
	}
}

func TestResolve_PageWithMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(vimeoStyleHTML))
	}))
	defer server.Close()

	service := NewService()
	resolved, err := service.Resolve(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resolved == nil || resolved.Title != "Scraped Title" {
		t.Fatalf("Expected resolved metadata, got %+v", resolved)
	}
}
