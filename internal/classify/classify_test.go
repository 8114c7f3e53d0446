package classify

import (
	"testing"
	"time"

	"github.com/mirocommunity/submit-service/internal/types"
)

func TestClassify_EmbedCodeWinsOverFiles(t *testing.T) {
	video := &types.ResolvedVideo{
		URL:       "http://google.com",
		EmbedCode: "blink",
		Files: []types.VideoFile{
			{URL: "http://google.com/file.mp4"},
		},
	}

	if got := Classify(video); got != ScrapedEmbed {
		t.Fatalf("Expected %s, got %s", ScrapedEmbed, got)
	}
}

func TestClassify_FileURL(t *testing.T) {
	video := &types.ResolvedVideo{
		URL:   "http://google.com",
		Files: []types.VideoFile{{URL: "blink"}},
	}

	if got := Classify(video); got != ScrapedFile {
		t.Fatalf("Expected %s, got %s", ScrapedFile, got)
	}

	// File entries without a url don't count.
	video.Files = []types.VideoFile{{MimeType: "video/mp4"}}
	if got := Classify(video); got != DirectOrEmbedRequest {
		t.Fatalf("Expected %s, got %s", DirectOrEmbedRequest, got)
	}
}

func TestClassify_NilVideo(t *testing.T) {
	if got := Classify(nil); got != DirectOrEmbedRequest {
		t.Fatalf("Expected %s, got %s", DirectOrEmbedRequest, got)
	}
}

func TestClassify_VideoWithoutEmbedOrFiles(t *testing.T) {
	video := &types.ResolvedVideo{URL: "http://google.com"}
	if got := Classify(video); got != DirectOrEmbedRequest {
		t.Fatalf("Expected %s, got %s", DirectOrEmbedRequest, got)
	}

	// An unexpired direct file_url still doesn't make it scraped.
	expires := time.Now().Add(24 * time.Hour)
	video.FileURL = "hola"
	video.FileURLExpires = &expires
	if got := Classify(video); got != DirectOrEmbedRequest {
		t.Fatalf("Expected %s, got %s", DirectOrEmbedRequest, got)
	}
}

func TestDestinations_For(t *testing.T) {
	dests := Destinations{
		Scraped: "/submit/scraped/",
		Direct:  "/submit/directlink/",
		Embed:   "/submit/embed/",
	}

	tests := []struct {
		classification Classification
		url            string
		want           string
	}{
		{ScrapedEmbed, "http://google.com", "/submit/scraped/"},
		{ScrapedFile, "http://google.com", "/submit/scraped/"},
		{DirectOrEmbedRequest, "http://google.com/file.mov", "/submit/directlink/"},
		{DirectOrEmbedRequest, "http://google.com/file.MP4", "/submit/directlink/"},
		{DirectOrEmbedRequest, "http://google.com", "/submit/embed/"},
		{DirectOrEmbedRequest, "http://google.com/watch?v=file.mp4", "/submit/embed/"},
	}

	for _, tt := range tests {
		if got := dests.For(tt.classification, tt.url); got != tt.want {
			t.Errorf("For(%s, %s) = %s, want %s", tt.classification, tt.url, got, tt.want)
		}
	}
}

func TestSuccessURL(t *testing.T) {
	got := SuccessURL("/submit/scraped/", "url=http%3A%2F%2Fgoogle.com")
	want := "/submit/scraped/?url=http%3A%2F%2Fgoogle.com"
	if got != want {
		t.Fatalf("Expected %s, got %s", want, got)
	}

	if got := SuccessURL("/submit/embed/", ""); got != "/submit/embed/" {
		t.Fatalf("Expected bare destination, got %s", got)
	}
}
