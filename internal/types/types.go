package types

import "time"

type VideoStatus string

const (
	StatusUnapproved VideoStatus = "unapproved"
	StatusActive     VideoStatus = "active"
	StatusRejected   VideoStatus = "rejected"
)

// Video is the durable record created by a finished submission.
type Video struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	EmbedCode      string      `json:"embed_code"`
	FileURL        string      `json:"file_url"`
	FileURLExpires *time.Time  `json:"file_url_expires,omitempty"`
	WebsiteURL     string      `json:"website_url"`
	ThumbnailURL   string      `json:"thumbnail_url"`
	ThumbnailKey   string      `json:"thumbnail_key"`
	Tags           []string    `json:"tags"`
	Contact        string      `json:"contact"`
	Notes          string      `json:"notes"`
	PublishDate    *time.Time  `json:"publish_date,omitempty"`
	GUID           string      `json:"guid"`
	Status         VideoStatus `json:"status"`
	UserID         string      `json:"user_id,omitempty"`
	WhenSubmitted  time.Time   `json:"when_submitted"`
}

// ResolvedVideo is the metadata a resolver extracted from a submitted URL.
// A nil ResolvedVideo means the URL could not be resolved at all.
type ResolvedVideo struct {
	URL            string      `json:"url"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	EmbedCode      string      `json:"embed_code"`
	ThumbnailURL   string      `json:"thumbnail_url"`
	FileURL        string      `json:"file_url"`
	FileURLExpires *time.Time  `json:"file_url_expires,omitempty"`
	Files          []VideoFile `json:"files"`
	Tags           []string    `json:"tags"`
	PublishDate    *time.Time  `json:"publish_date,omitempty"`
	User           string      `json:"user"`
	UserURL        string      `json:"user_url"`
	GUID           string      `json:"guid"`
}

// VideoFile is a single downloadable file belonging to a resolved video.
type VideoFile struct {
	URL      string     `json:"url"`
	MimeType string     `json:"mime_type"`
	Length   int64      `json:"length"`
	Expires  *time.Time `json:"expires,omitempty"`
}

// StagedSubmission is the payload staged between the URL-submission request
// and the finalization request. Exactly two keys, matching the wire layout.
type StagedSubmission struct {
	URL   string         `json:"url"`
	Video *ResolvedVideo `json:"video"`
}

// SiteSettings controls who may submit videos.
type SiteSettings struct {
	SubmissionRequiresLogin bool `json:"submission_requires_login"`
	DisplaySubmitButton     bool `json:"display_submit_button"`
}

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Password  string `json:"-"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at"`
}

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}
