package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/semjson"
)

// Compile-time interface verification.
var (
	_ semjson.PageService     = (*PageService)(nil)
	_ semjson.CategoryService = (*PageService)(nil)
	_ semjson.PageWriter      = (*PageService)(nil)
)

// PageService implements the semjson page, category and page-writing
// services using SQLite.
type PageService struct {
	db *DB
}

// NewPageService creates a new PageService.
func NewPageService(db *DB) *PageService {
	return &PageService{db: db}
}

// FindPageByName resolves a page by its full name.
func (s *PageService) FindPageByName(ctx context.Context, name string) (*semjson.PageRef, error) {
	ns, key, err := semjson.ParseTitle(name)
	if err != nil {
		return nil, err
	}

	var id int
	err = s.db.QueryRowContext(ctx, `
		SELECT id FROM pages WHERE namespace = ? AND title = ?
	`, ns, key).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, semjson.Errorf(semjson.ENOTFOUND, "page %q not found", name)
	}
	if err != nil {
		return nil, err
	}
	return semjson.NewPageRef(id, ns, key), nil
}

// FindPageByID resolves a page by its ID.
func (s *PageService) FindPageByID(ctx context.Context, id int) (*semjson.PageRef, error) {
	var ns int
	var key string
	err := s.db.QueryRowContext(ctx, `
		SELECT namespace, title FROM pages WHERE id = ?
	`, id).Scan(&ns, &key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, semjson.Errorf(semjson.ENOTFOUND, "page %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return semjson.NewPageRef(id, ns, key), nil
}

// FindPages returns the pages matching the filter, ordered by ID.
func (s *PageService) FindPages(ctx context.Context, filter semjson.PageFilter) ([]*semjson.PageRef, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, namespace, title FROM pages WHERE 1=1")
	if filter.Namespaces != nil {
		if len(filter.Namespaces) == 0 {
			return nil, nil
		}
		query.WriteString(" AND namespace IN (" + placeholders(len(filter.Namespaces)) + ")")
		for _, ns := range filter.Namespaces {
			args = append(args, ns)
		}
	}
	query.WriteString(" ORDER BY id ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	return s.queryRefs(ctx, query.String(), args...)
}

// MaxPageID returns the highest page ID, or 0 if there are no pages.
func (s *PageService) MaxPageID(ctx context.Context) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) FROM pages").Scan(&id)
	return id, err
}

// FindPageInfo returns the creator, categories, display title and latest
// revision time of a page. The creator is the author of the first revision.
func (s *PageService) FindPageInfo(ctx context.Context, ref *semjson.PageRef) (*semjson.PageInfo, error) {
	var info semjson.PageInfo
	var latest string

	err := s.db.QueryRowContext(ctx, `
		SELECT p.display_title,
			COALESCE((SELECT user_name FROM revisions WHERE page_id = p.id ORDER BY timestamp ASC, id ASC LIMIT 1), ''),
			COALESCE((SELECT MAX(timestamp) FROM revisions WHERE page_id = p.id), '')
		FROM pages p
		WHERE p.id = ?
	`, ref.ID).Scan(&info.DisplayTitle, &info.Creator, &latest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, semjson.Errorf(semjson.ENOTFOUND, "page %q not found", ref.FullText())
	}
	if err != nil {
		return nil, err
	}

	if latest != "" {
		if info.LatestRevision, err = parseTimestamp(latest, "timestamp"); err != nil {
			return nil, err
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category FROM categorylinks WHERE page_id = ? ORDER BY category ASC
	`, ref.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	info.Categories = []semjson.Category{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		cat := semjson.NewPageRef(0, semjson.NSCategory, key)
		info.Categories = append(info.Categories, semjson.Category{ID: cat.DBKey, Name: cat.Text()})
	}
	return &info, rows.Err()
}

// FindPageContent returns the markup of the latest revision of a page.
func (s *PageService) FindPageContent(ctx context.Context, ref *semjson.PageRef) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `
		SELECT content FROM revisions
		WHERE page_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT 1
	`, ref.ID).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", semjson.Errorf(semjson.ENOTFOUND, "page %q has no revision", ref.FullText())
	}
	return content, err
}

// FindPageLinks returns the existing pages linked from a page, in link order.
func (s *PageService) FindPageLinks(ctx context.Context, ref *semjson.PageRef) ([]*semjson.PageRef, error) {
	return s.queryRefs(ctx, `
		SELECT p.id, p.namespace, p.title
		FROM pagelinks l
		JOIN pages p ON p.namespace = l.namespace AND p.title = l.title
		WHERE l.page_id = ?
		ORDER BY l.position ASC
	`, ref.ID)
}

// FindCategoryMembers returns up to limit pages in a category, ordered by
// namespace and title. The name may carry the category prefix.
func (s *PageService) FindCategoryMembers(ctx context.Context, name string, limit int) ([]*semjson.PageRef, error) {
	_, key, err := semjson.ParseTitle(name)
	if err != nil {
		return nil, err
	}

	var query strings.Builder
	args := []any{key}
	query.WriteString(`
		SELECT p.id, p.namespace, p.title
		FROM categorylinks c
		JOIN pages p ON p.id = c.page_id
		WHERE c.category = ?
		ORDER BY p.namespace ASC, p.title ASC`)
	appendPagination(&query, &args, limit, 0)

	refs, err := s.queryRefs(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	if len(refs) > 0 {
		return refs, nil
	}

	var exists int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pages WHERE namespace = ? AND title = ?
	`, semjson.NSCategory, key).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, semjson.Errorf(semjson.ENOTFOUND, "category %q not found", name)
	}
	return refs, nil
}

// CreatePage stores a page with its revisions, categories and links.
func (s *PageService) CreatePage(ctx context.Context, page *semjson.Page) (*semjson.PageRef, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pages WHERE namespace = ? AND title = ?
	`, page.Namespace, page.DBKey).Scan(&exists); err != nil {
		return nil, err
	}
	if exists > 0 {
		return nil, semjson.Errorf(semjson.ECONFLICT, "page %q already exists", page.DBKey)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO pages (namespace, title, display_title) VALUES (?, ?, ?)
	`, page.Namespace, page.DBKey, page.DisplayTitle)
	if err != nil {
		return nil, fmt.Errorf("insert page: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	for _, rev := range page.Revisions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO revisions (page_id, user_name, timestamp, content, content_hash)
			VALUES (?, ?, ?, ?, ?)
		`, id, rev.User, formatTimestamp(rev.Timestamp), rev.Content, hashContent(rev.Content)); err != nil {
			return nil, fmt.Errorf("insert revision: %w", err)
		}
	}

	for _, cat := range page.Categories {
		_, key, err := semjson.ParseTitle(cat)
		if err != nil {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO categorylinks (page_id, category) VALUES (?, ?)
		`, id, key); err != nil {
			return nil, fmt.Errorf("insert category link: %w", err)
		}
	}

	for i, link := range page.Links {
		ns, key, err := semjson.ParseTitle(link)
		if err != nil {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO pagelinks (page_id, namespace, title, position) VALUES (?, ?, ?, ?)
		`, id, ns, key, i); err != nil {
			return nil, fmt.Errorf("insert page link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return semjson.NewPageRef(int(id), page.Namespace, page.DBKey), nil
}

func (s *PageService) queryRefs(ctx context.Context, query string, args ...any) ([]*semjson.PageRef, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []*semjson.PageRef
	for rows.Next() {
		var id, ns int
		var key string
		if err := rows.Scan(&id, &ns, &key); err != nil {
			return nil, err
		}
		refs = append(refs, semjson.NewPageRef(id, ns, key))
	}
	return refs, rows.Err()
}
