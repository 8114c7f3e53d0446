package classify

import (
	"net/url"
	"path"
	"strings"

	"github.com/mirocommunity/submit-service/internal/types"
)

// Classification is the submission path a URL belongs to.
type Classification string

const (
	// ScrapedEmbed: the resolver produced metadata including embed code.
	ScrapedEmbed Classification = "scraped_embed"
	// ScrapedFile: the resolver produced metadata with at least one file.
	ScrapedFile Classification = "scraped_file"
	// DirectOrEmbedRequest: everything else, including resolver failures.
	DirectOrEmbedRequest Classification = "direct_or_embed_request"
)

// Classify decides the submission path for a resolved video. It is a pure
// function of its input; a nil video (unresolved URL or swallowed resolver
// error) always yields DirectOrEmbedRequest.
func Classify(video *types.ResolvedVideo) Classification {
	if video != nil && video.EmbedCode != "" {
		return ScrapedEmbed
	}
	if video != nil {
		for _, f := range video.Files {
			if f.URL != "" {
				return ScrapedFile
			}
		}
	}
	return DirectOrEmbedRequest
}

// Destinations holds the caller-configured pages each classification
// redirects to. Both scraped classifications share the scraped page;
// DirectOrEmbedRequest splits on whether the URL is a bare file link.
type Destinations struct {
	Scraped string
	Direct  string
	Embed   string
}

// For returns the destination page for a classification of the given URL.
func (d Destinations) For(c Classification, videoURL string) string {
	switch c {
	case ScrapedEmbed, ScrapedFile:
		return d.Scraped
	default:
		if IsDirectFileURL(videoURL) {
			return d.Direct
		}
		return d.Embed
	}
}

// SuccessURL appends the original query string to the destination page so
// the next-step form resumes with the same URL context.
func SuccessURL(dest, rawQuery string) string {
	if rawQuery == "" {
		return dest
	}
	return dest + "?" + rawQuery
}

var videoExtensions = map[string]bool{
	".avi":  true,
	".flv":  true,
	".m4v":  true,
	".mov":  true,
	".mp4":  true,
	".mpg":  true,
	".ogg":  true,
	".ogv":  true,
	".webm": true,
	".wmv":  true,
}

// IsDirectFileURL reports whether a URL points straight at a video file.
func IsDirectFileURL(videoURL string) bool {
	u, err := url.Parse(videoURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	return videoExtensions[ext]
}
