package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/mirocommunity/submit-service/internal/storage"
	"github.com/mirocommunity/submit-service/internal/types"
)

// CacheService wraps storage with Redis caching for the hot read paths:
// per-request site settings resolution and thanks-page video lookups.
type CacheService struct {
	storage storage.Storage
	redis   *redis.Client
}

// NewCacheService creates a new cache service
func NewCacheService(storage storage.Storage, redisClient *redis.Client) *CacheService {
	return &CacheService{
		storage: storage,
		redis:   redisClient,
	}
}

// Cache key patterns
const (
	SiteSettingsKey = "site:settings"
	VideoKey        = "video:%s" // video:videoID
)

// Cache durations
const (
	SiteSettingsCacheDuration = time.Minute      // settings change rarely
	VideoCacheDuration        = 10 * time.Minute // thanks-page lookups
)

// GetSiteSettings returns cached settings or fetches from DB. Settings are
// resolved lazily: nothing is loaded until a request needs them.
func (c *CacheService) GetSiteSettings() (*types.SiteSettings, error) {
	ctx := context.Background()

	cached, err := c.redis.Get(ctx, SiteSettingsKey).Result()
	if err == nil {
		var settings types.SiteSettings
		if err := json.Unmarshal([]byte(cached), &settings); err == nil {
			return &settings, nil
		}
	}

	settings, err := c.storage.GetSiteSettings()
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(settings)
	c.redis.Set(ctx, SiteSettingsKey, data, SiteSettingsCacheDuration)

	return settings, nil
}

// UpdateSiteSettings writes through and invalidates the cached copy.
func (c *CacheService) UpdateSiteSettings(settings *types.SiteSettings) error {
	if err := c.storage.UpdateSiteSettings(settings); err != nil {
		return err
	}
	c.redis.Del(context.Background(), SiteSettingsKey)
	return nil
}

// GetVideoByID returns a cached video or fetches from DB.
func (c *CacheService) GetVideoByID(videoID string) (*types.Video, error) {
	ctx := context.Background()
	key := fmt.Sprintf(VideoKey, videoID)

	cached, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		var video types.Video
		if err := json.Unmarshal([]byte(cached), &video); err == nil {
			return &video, nil
		}
	}

	video, err := c.storage.GetVideoByID(videoID)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(video)
	c.redis.Set(ctx, key, data, VideoCacheDuration)

	return video, nil
}

// Methods that pass through to storage (implement storage.Storage interface)
func (c *CacheService) CreateVideo(video *types.Video) (string, error) {
	return c.storage.CreateVideo(video)
}

func (c *CacheService) FindDuplicate(url string) (*types.Video, error) {
	return c.storage.FindDuplicate(url)
}

func (c *CacheService) GetOrCreateTags(names []string) ([]string, error) {
	return c.storage.GetOrCreateTags(names)
}

func (c *CacheService) CreateUser(email, password string, isAdmin bool) (string, error) {
	return c.storage.CreateUser(email, password, isAdmin)
}

func (c *CacheService) GetUserByEmail(email string) (*types.User, error) {
	return c.storage.GetUserByEmail(email)
}

func (c *CacheService) ClearExpiredFileURLs() (int, error) {
	return c.storage.ClearExpiredFileURLs()
}
