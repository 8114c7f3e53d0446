package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	yt "github.com/kkdai/youtube/v2"

	"github.com/mirocommunity/submit-service/internal/classify"
	"github.com/mirocommunity/submit-service/internal/types"
)

// Resolver extracts structured video metadata from an arbitrary URL.
type Resolver interface {
	Resolve(ctx context.Context, videoURL string) (*types.ResolvedVideo, error)
}

// ResolveError marks a network-layer failure while fetching a URL. The
// staging step swallows these and falls back to the most conservative
// classification instead of surfacing them to the user.
type ResolveError struct {
	URL string
	Err error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("failed to resolve %s: %v", e.URL, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// Service resolves YouTube URLs through the YouTube client and everything
// else through OpenGraph metadata on the page itself.
type Service struct {
	httpClient *http.Client
	ytClient   *yt.Client
}

func NewService() *Service {
	return &Service{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		ytClient:   &yt.Client{},
	}
}

// Resolve fetches metadata for a URL. A (nil, nil) return means the URL is
// reachable but carries nothing usable; a *ResolveError means the fetch
// itself failed.
func (s *Service) Resolve(ctx context.Context, videoURL string) (*types.ResolvedVideo, error) {
	// Bare file links have no page to scrape.
	if classify.IsDirectFileURL(videoURL) {
		return nil, nil
	}

	if isYouTubeURL(videoURL) {
		if videoID, err := yt.ExtractVideoID(videoURL); err == nil {
			return s.resolveYouTube(ctx, videoURL, videoID)
		}
	}

	return s.resolvePage(ctx, videoURL)
}

// isYouTubeURL gates the YouTube client on the URL's host. ExtractVideoID
// alone is too permissive: it pulls an ID-shaped token out of arbitrary
// strings, which would send ordinary pages to the YouTube client instead
// of the scraper.
func isYouTubeURL(videoURL string) bool {
	u, err := url.Parse(videoURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	switch host {
	case "youtube.com", "www.youtube.com", "m.youtube.com", "youtu.be":
		return true
	}
	return false
}

func (s *Service) resolveYouTube(ctx context.Context, videoURL, videoID string) (*types.ResolvedVideo, error) {
	video, err := s.ytClient.GetVideoContext(ctx, videoURL)
	if err != nil {
		return nil, &ResolveError{URL: videoURL, Err: err}
	}

	resolved := &types.ResolvedVideo{
		URL:          videoURL,
		Title:        video.Title,
		Description:  video.Description,
		User:         video.Author,
		GUID:         "yt:" + videoID,
		EmbedCode:    youtubeEmbedCode(videoID),
		ThumbnailURL: bestThumbnail(video.Thumbnails),
	}
	if !video.PublishDate.IsZero() {
		publishDate := video.PublishDate
		resolved.PublishDate = &publishDate
	}
	for _, format := range video.Formats {
		if format.URL == "" {
			continue
		}
		resolved.Files = append(resolved.Files, types.VideoFile{
			URL:      format.URL,
			MimeType: format.MimeType,
			Length:   format.ContentLength,
		})
	}
	return resolved, nil
}

func youtubeEmbedCode(videoID string) string {
	return fmt.Sprintf(
		`<iframe width="480" height="360" src="https://www.youtube.com/embed/%s" frameborder="0" allowfullscreen></iframe>`,
		videoID)
}

func bestThumbnail(thumbnails yt.Thumbnails) string {
	var url string
	var best uint
	for _, thumb := range thumbnails {
		if thumb.Width >= best {
			best = thumb.Width
			url = thumb.URL
		}
	}
	return url
}

func (s *Service) resolvePage(ctx context.Context, videoURL string) (*types.ResolvedVideo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return nil, &ResolveError{URL: videoURL, Err: err}
	}
	req.Header.Set("User-Agent", "submit-service/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &ResolveError{URL: videoURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ResolveError{URL: videoURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	return parseOpenGraph(videoURL, resp.Body)
}

// parseOpenGraph pulls video metadata out of a page's OpenGraph tags.
// Pure with respect to its input; returns (nil, nil) when the page carries
// no usable metadata.
func parseOpenGraph(videoURL string, body io.Reader) (*types.ResolvedVideo, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, &ResolveError{URL: videoURL, Err: err}
	}

	meta := make(map[string]string)
	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		property, ok := sel.Attr("property")
		if !ok {
			property, _ = sel.Attr("name")
		}
		content, _ := sel.Attr("content")
		if property != "" && content != "" {
			if _, exists := meta[property]; !exists {
				meta[property] = content
			}
		}
	})

	resolved := &types.ResolvedVideo{
		URL:          videoURL,
		Title:        meta["og:title"],
		Description:  meta["og:description"],
		ThumbnailURL: meta["og:image"],
		User:         meta["og:site_name"],
	}
	if resolved.Title == "" {
		resolved.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	if player := firstOf(meta, "og:video:secure_url", "og:video:url", "og:video", "twitter:player"); player != "" {
		resolved.EmbedCode = fmt.Sprintf(
			`<iframe width="480" height="360" src="%s" frameborder="0" allowfullscreen></iframe>`, player)
	}

	if keywords := meta["keywords"]; keywords != "" {
		for _, keyword := range strings.Split(keywords, ",") {
			if keyword = strings.TrimSpace(keyword); keyword != "" {
				resolved.Tags = append(resolved.Tags, keyword)
			}
		}
	}

	if resolved.Title == "" && resolved.EmbedCode == "" {
		return nil, nil
	}
	return resolved, nil
}

func firstOf(meta map[string]string, keys ...string) string {
	for _, key := range keys {
		if meta[key] != "" {
			return meta[key]
		}
	}
	return ""
}
