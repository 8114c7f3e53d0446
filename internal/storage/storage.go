package storage

import "github.com/mirocommunity/submit-service/internal/types"

type Storage interface {
	CreateVideo(video *types.Video) (string, error)
	GetVideoByID(id string) (*types.Video, error)
	// FindDuplicate matches a submitted URL against existing videos by
	// website_url, file_url, or guid. Returns nil when no duplicate exists.
	FindDuplicate(url string) (*types.Video, error)
	GetOrCreateTags(names []string) ([]string, error)
	GetSiteSettings() (*types.SiteSettings, error)
	UpdateSiteSettings(settings *types.SiteSettings) error
	CreateUser(email, password string, isAdmin bool) (string, error)
	GetUserByEmail(email string) (*types.User, error)
	// ClearExpiredFileURLs blanks direct file URLs whose expiry has lapsed
	// so those videos surface for re-review.
	ClearExpiredFileURLs() (int, error)
}
