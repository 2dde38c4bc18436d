package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fwojciec/semjson"
)

// Compile-time interface verification.
var _ semjson.SiteService = (*SiteService)(nil)

// Setting keys.
const (
	settingMainPage = "mainpage"
	settingSiteName = "sitename"
)

// DefaultMainPage is the main page used when none has been set.
const DefaultMainPage = "Main Page"

// AdminGroup is the user group counted as administrators.
const AdminGroup = "sysop"

// SiteService implements semjson.SiteService using SQLite.
type SiteService struct {
	db *DB
}

// NewSiteService creates a new SiteService.
func NewSiteService(db *DB) *SiteService {
	return &SiteService{db: db}
}

// FindSiteStats computes site statistics from the stored pages.
// Content pages are pages of the main namespace.
func (s *SiteService) FindSiteStats(ctx context.Context) (*semjson.SiteStats, error) {
	var stats semjson.SiteStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM pages),
			(SELECT COUNT(*) FROM pages WHERE namespace = ?),
			(SELECT COUNT(*) FROM pages WHERE namespace = ?),
			(SELECT COUNT(*) FROM revisions),
			(SELECT COUNT(*) FROM (
				SELECT user_name FROM revisions WHERE user_name != ''
				UNION
				SELECT user_name FROM user_groups
			)),
			(SELECT COUNT(*) FROM user_groups WHERE group_name = ?)
	`, semjson.NSMain, semjson.NSFile, AdminGroup).Scan(
		&stats.Pages, &stats.ContentPages, &stats.Media, &stats.Edits, &stats.Users, &stats.Admins)
	if err != nil {
		return nil, err
	}

	name, err := s.setting(ctx, settingMainPage)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = DefaultMainPage
	}
	ref, err := NewPageService(s.db).FindPageByName(ctx, name)
	if err != nil && semjson.ErrorCode(err) != semjson.ENOTFOUND {
		return nil, err
	}
	stats.MainPage = ref

	return &stats, nil
}

// SiteName returns the stored site name, or "" if none was imported.
func (s *SiteService) SiteName(ctx context.Context) (string, error) {
	return s.setting(ctx, settingSiteName)
}

// SetSiteName stores the site name.
func (s *SiteService) SetSiteName(ctx context.Context, name string) error {
	return s.setSetting(ctx, settingSiteName, name)
}

// SetMainPage stores the name of the main page.
func (s *SiteService) SetMainPage(ctx context.Context, name string) error {
	if _, _, err := semjson.ParseTitle(name); err != nil {
		return err
	}
	return s.setSetting(ctx, settingMainPage, name)
}

// AddUserToGroup adds a user to a group.
func (s *SiteService) AddUserToGroup(ctx context.Context, user, group string) error {
	if user == "" || group == "" {
		return semjson.Errorf(semjson.EINVALID, "user and group required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_groups (user_name, group_name) VALUES (?, ?)
	`, user, group)
	return err
}

func (s *SiteService) setting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (s *SiteService) setSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
