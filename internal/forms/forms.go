package forms

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mirocommunity/submit-service/internal/classify"
	"github.com/mirocommunity/submit-service/internal/tags"
	"github.com/mirocommunity/submit-service/internal/types"
)

// Kind selects which field set a finalization form accepts, mirroring the
// three submission pages.
type Kind string

const (
	KindScraped Kind = "scraped"
	KindEmbed   Kind = "embed"
	KindDirect  Kind = "direct"
)

const maxThumbnailSize = 10 << 20 // 10 MiB

// SubmitURLForm binds the first-step URL submission. The URL may arrive in
// the query string or the form body.
type SubmitURLForm struct {
	URL string `validate:"required,url"`
}

// BindSubmitURLForm captures the submitted URL from the request.
func BindSubmitURLForm(r *http.Request) *SubmitURLForm {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		if err := r.ParseForm(); err == nil {
			rawURL = r.PostFormValue("url")
		}
	}
	return &SubmitURLForm{URL: strings.TrimSpace(rawURL)}
}

// Validate checks that the URL round-trips into a resolvable shape.
func (f *SubmitURLForm) Validate() map[string]string {
	validate := validator.New()
	if err := validate.Struct(f); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return fieldErrors(ve)
		}
		return map[string]string{"url": err.Error()}
	}
	return nil
}

// SubmitVideoForm binds a finalization form. Only the fields belonging to
// the form's kind are captured; everything else in the body is ignored.
type SubmitVideoForm struct {
	kind Kind

	Name         string `validate:"max=250"`
	Description  string
	EmbedCode    string
	WebsiteURL   string `validate:"omitempty,url"`
	ThumbnailURL string `validate:"omitempty,url"`
	Contact      string `validate:"omitempty,email"`
	Notes        string
	Tags         []string

	ThumbnailFileName string
	ThumbnailFile     []byte
}

// BindSubmitVideoForm parses a form-encoded or multipart finalization POST.
func BindSubmitVideoForm(r *http.Request, kind Kind) (*SubmitVideoForm, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxThumbnailSize); err != nil {
			return nil, err
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, err
	}

	form := &SubmitVideoForm{
		kind:    kind,
		Contact: r.PostFormValue("contact"),
		Notes:   r.PostFormValue("notes"),
		Tags:    splitTags(r.PostFormValue("tags")),
	}

	if kind == KindEmbed || kind == KindDirect {
		form.Name = r.PostFormValue("name")
		form.Description = r.PostFormValue("description")
		form.ThumbnailURL = r.PostFormValue("thumbnail_url")
	}
	switch kind {
	case KindEmbed:
		form.EmbedCode = r.PostFormValue("embed_code")
	case KindDirect:
		form.WebsiteURL = r.PostFormValue("website_url")
	}

	// The scraped form carries no thumbnail fields; only the embed and
	// direct forms accept an uploaded file.
	if r.MultipartForm != nil && (kind == KindEmbed || kind == KindDirect) {
		if file, header, err := r.FormFile("thumbnail_file"); err == nil {
			defer file.Close()
			data, readErr := io.ReadAll(file)
			if readErr != nil {
				return nil, readErr
			}
			form.ThumbnailFileName = header.Filename
			form.ThumbnailFile = data
		}
	}

	return form, nil
}

// Validate sanitizes free-text input and returns field-level errors.
// requireContact enforces a submitter email when site policy demands one.
func (f *SubmitVideoForm) Validate(requireContact bool) map[string]string {
	f.Description = SanitizeDescription(f.Description)

	errs := make(map[string]string)
	validate := validator.New()
	if err := validate.Struct(f); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			for field, msg := range fieldErrors(ve) {
				errs[field] = msg
			}
		} else {
			errs["form"] = err.Error()
		}
	}
	if requireContact && f.Contact == "" {
		errs["contact"] = "contact: required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// BuildVideo constructs the durable Video from the form plus the staged
// submission. Resolved metadata fills in blank name/embed_code as a
// fallback default, never overriding explicit form input. The thumbnail
// file, when present, strictly overrides thumbnail_url.
func (f *SubmitVideoForm) BuildVideo(staged *types.StagedSubmission) *types.Video {
	video := &types.Video{
		Name:         f.Name,
		Description:  f.Description,
		EmbedCode:    f.EmbedCode,
		WebsiteURL:   f.WebsiteURL,
		ThumbnailURL: f.ThumbnailURL,
		Contact:      f.Contact,
		Notes:        f.Notes,
		Tags:         tags.Normalize(f.Tags),
		Status:       types.StatusUnapproved,
		WhenSubmitted: time.Now().UTC(),
	}

	resolved := staged.Video
	if resolved != nil {
		if video.Name == "" {
			video.Name = resolved.Title
		}
		if video.EmbedCode == "" {
			video.EmbedCode = resolved.EmbedCode
		}
		if video.ThumbnailURL == "" {
			video.ThumbnailURL = resolved.ThumbnailURL
		}
		if len(video.Tags) == 0 {
			video.Tags = tags.Normalize(resolved.Tags)
		}
		video.PublishDate = resolved.PublishDate
		video.GUID = resolved.GUID
		if resolved.FileURL != "" {
			video.FileURL = resolved.FileURL
			video.FileURLExpires = resolved.FileURLExpires
		} else if len(resolved.Files) > 0 {
			video.FileURL = resolved.Files[0].URL
			video.FileURLExpires = resolved.Files[0].Expires
		}
	}

	if f.kind == KindDirect {
		video.FileURL = staged.URL
	} else if video.WebsiteURL == "" {
		video.WebsiteURL = staged.URL
	}
	if video.GUID == "" {
		video.GUID = uuid.New().String()
	}

	return video
}

// HasThumbnailFile reports whether an uploaded file accompanied the form.
func (f *SubmitVideoForm) HasThumbnailFile() bool {
	return len(f.ThumbnailFile) > 0
}

// Initial returns the pre-population values for a finalization form.
// tagNames is the normalized tag set already persisted for the video; the
// tags key is present only when the resolved video actually has tags.
func Initial(video *types.ResolvedVideo, tagNames []string) map[string]interface{} {
	initial := make(map[string]interface{})
	if video == nil {
		return initial
	}
	if video.Title != "" {
		initial["name"] = video.Title
	}
	if video.Description != "" {
		initial["description"] = SanitizeDescription(video.Description)
	}
	if video.EmbedCode != "" {
		initial["embed_code"] = video.EmbedCode
	}
	if video.ThumbnailURL != "" {
		initial["thumbnail_url"] = video.ThumbnailURL
	}
	if len(video.Tags) > 0 {
		initial["tags"] = tagNames
	}
	return initial
}

// CompatibilityData exposes resolved metadata under a fixed set of keys for
// older consumers. Every key is always present.
func CompatibilityData(video *types.ResolvedVideo) map[string]interface{} {
	data := map[string]interface{}{
		"link":          "",
		"publish_date":  nil,
		"tags":          []string(nil),
		"title":         "",
		"description":   "",
		"thumbnail_url": "",
		"user":          "",
		"user_url":      "",
	}
	if video == nil {
		return data
	}
	data["link"] = video.URL
	data["publish_date"] = video.PublishDate
	data["tags"] = video.Tags
	data["title"] = video.Title
	data["description"] = SanitizeDescription(video.Description)
	data["thumbnail_url"] = video.ThumbnailURL
	data["user"] = video.User
	data["user_url"] = video.UserURL
	return data
}

// DestinationKind maps a destination page to the form kind served there.
func DestinationKind(dests classify.Destinations, destination string) (Kind, bool) {
	switch destination {
	case dests.Scraped:
		return KindScraped, true
	case dests.Embed:
		return KindEmbed, true
	case dests.Direct:
		return KindDirect, true
	}
	return "", false
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func fieldErrors(ve validator.ValidationErrors) map[string]string {
	errs := make(map[string]string, len(ve))
	for _, err := range ve {
		errs[strings.ToLower(err.Field())] = strings.ToLower(err.Field()) + ": " + err.Tag()
	}
	return errs
}
