package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"

	"github.com/mirocommunity/submit-service/internal/config"
	"github.com/mirocommunity/submit-service/internal/types"
)

type Postgres struct {
	Db *sql.DB
}

func NewPostgres(cfg *config.Config) (*Postgres, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.PGSQL.Host, cfg.PGSQL.Port, cfg.PGSQL.User, cfg.PGSQL.Password, cfg.PGSQL.DBName, cfg.PGSQL.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		return nil, err
	}

	log.Println("Connected to Postgres database")

	// Create tables if they don't exist
	pg := &Postgres{Db: db}
	err = pg.CreateTables()
	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pg, nil
}

func (p *Postgres) CreateTables() error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password TEXT NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS videos (
			id SERIAL PRIMARY KEY,
			name VARCHAR(250) NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			embed_code TEXT NOT NULL DEFAULT '',
			file_url TEXT NOT NULL DEFAULT '',
			file_url_expires TIMESTAMP,
			website_url TEXT NOT NULL DEFAULT '',
			thumbnail_url TEXT NOT NULL DEFAULT '',
			thumbnail_key VARCHAR(255) NOT NULL DEFAULT '',
			contact VARCHAR(255) NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			publish_date TIMESTAMP,
			guid VARCHAR(255) NOT NULL DEFAULT '',
			status VARCHAR(50) NOT NULL CHECK (status IN ('unapproved', 'active', 'rejected')),
			user_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
			when_submitted TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS tags (
			id SERIAL PRIMARY KEY,
			name VARCHAR(50) UNIQUE NOT NULL
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS video_tags (
			video_id INTEGER NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
			tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
			PRIMARY KEY (video_id, tag_id)
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS site_settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			submission_requires_login BOOLEAN NOT NULL DEFAULT FALSE,
			display_submit_button BOOLEAN NOT NULL DEFAULT TRUE
		);
		`,
		`
		INSERT INTO site_settings (id) VALUES (1) ON CONFLICT (id) DO NOTHING;
		`,
	}

	for _, q := range queries {
		if _, err := p.Db.Exec(q); err != nil {
			return err
		}
	}

	return nil
}

func (p *Postgres) CreateVideo(video *types.Video) (string, error) {
	tx, err := p.Db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var videoID int
	query := `
	INSERT INTO videos (name, description, embed_code, file_url, file_url_expires,
		website_url, thumbnail_url, thumbnail_key, contact, notes, publish_date,
		guid, status, user_id, when_submitted)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NULLIF($14, '')::integer, $15)
	RETURNING id
	`

	err = tx.QueryRow(query, video.Name, video.Description, video.EmbedCode,
		video.FileURL, video.FileURLExpires, video.WebsiteURL, video.ThumbnailURL,
		video.ThumbnailKey, video.Contact, video.Notes, video.PublishDate,
		video.GUID, video.Status, video.UserID, video.WhenSubmitted).Scan(&videoID)
	if err != nil {
		return "", err
	}

	for _, tag := range video.Tags {
		var tagID int
		err = tx.QueryRow(`
		INSERT INTO tags (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
		`, tag).Scan(&tagID)
		if err != nil {
			return "", err
		}
		if _, err = tx.Exec(`
		INSERT INTO video_tags (video_id, tag_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
		`, videoID, tagID); err != nil {
			return "", err
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}

	return fmt.Sprintf("%d", videoID), nil
}

const videoColumns = `
	v.id, v.name, v.description, v.embed_code, v.file_url, v.file_url_expires,
	v.website_url, v.thumbnail_url, v.thumbnail_key, v.contact, v.notes,
	v.publish_date, v.guid, v.status, COALESCE(v.user_id::text, ''), v.when_submitted,
	COALESCE(array_agg(t.name) FILTER (WHERE t.name IS NOT NULL), '{}')
`

func (p *Postgres) scanVideo(row *sql.Row) (*types.Video, error) {
	var video types.Video
	var tagNames pq.StringArray
	err := row.Scan(&video.ID, &video.Name, &video.Description, &video.EmbedCode,
		&video.FileURL, &video.FileURLExpires, &video.WebsiteURL, &video.ThumbnailURL,
		&video.ThumbnailKey, &video.Contact, &video.Notes, &video.PublishDate,
		&video.GUID, &video.Status, &video.UserID, &video.WhenSubmitted, &tagNames)
	if err != nil {
		return nil, err
	}
	video.Tags = []string(tagNames)
	return &video, nil
}

func (p *Postgres) GetVideoByID(id string) (*types.Video, error) {
	query := `
	SELECT ` + videoColumns + `
	FROM videos v
	LEFT JOIN video_tags vt ON vt.video_id = v.id
	LEFT JOIN tags t ON t.id = vt.tag_id
	WHERE v.id = $1
	GROUP BY v.id
	`
	return p.scanVideo(p.Db.QueryRow(query, id))
}

func (p *Postgres) FindDuplicate(url string) (*types.Video, error) {
	query := `
	SELECT ` + videoColumns + `
	FROM videos v
	LEFT JOIN video_tags vt ON vt.video_id = v.id
	LEFT JOIN tags t ON t.id = vt.tag_id
	WHERE v.website_url = $1 OR v.file_url = $1 OR v.guid = $1
	GROUP BY v.id
	LIMIT 1
	`
	video, err := p.scanVideo(p.Db.QueryRow(query, url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return video, nil
}

func (p *Postgres) GetOrCreateTags(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, name := range names {
		var created string
		err := p.Db.QueryRow(`
		INSERT INTO tags (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING name
		`, name).Scan(&created)
		if err != nil {
			return nil, err
		}
		out = append(out, created)
	}
	return out, nil
}

func (p *Postgres) GetSiteSettings() (*types.SiteSettings, error) {
	var settings types.SiteSettings
	err := p.Db.QueryRow(`
	SELECT submission_requires_login, display_submit_button FROM site_settings WHERE id = 1
	`).Scan(&settings.SubmissionRequiresLogin, &settings.DisplaySubmitButton)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (p *Postgres) UpdateSiteSettings(settings *types.SiteSettings) error {
	_, err := p.Db.Exec(`
	UPDATE site_settings SET submission_requires_login = $1, display_submit_button = $2 WHERE id = 1
	`, settings.SubmissionRequiresLogin, settings.DisplaySubmitButton)
	return err
}

func (p *Postgres) CreateUser(email, password string, isAdmin bool) (string, error) {
	var userID int
	query := `
	INSERT INTO users (email, password, is_admin)
	VALUES ($1, $2, $3)
	RETURNING id
	`

	err := p.Db.QueryRow(query, email, password, isAdmin).Scan(&userID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d", userID), nil
}

func (p *Postgres) GetUserByEmail(email string) (*types.User, error) {
	var user types.User
	query := `
	SELECT id, email, password, is_admin, created_at FROM users WHERE email = $1
	`

	err := p.Db.QueryRow(query, email).Scan(&user.ID, &user.Email, &user.Password,
		&user.IsAdmin, &user.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (p *Postgres) ClearExpiredFileURLs() (int, error) {
	result, err := p.Db.Exec(`
	UPDATE videos
	SET file_url = '', file_url_expires = NULL
	WHERE file_url_expires IS NOT NULL AND file_url_expires < CURRENT_TIMESTAMP
	`)
	if err != nil {
		return 0, err
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
