package semjson

import (
	"context"
	"strings"
	"time"
)

// PageRef identifies a page of the host wiki. It is immutable once resolved.
type PageRef struct {
	ID        int
	Namespace int
	DBKey     string // local key with underscores, e.g. "Foo_bar"
}

// NewPageRef returns a reference to the page with the given identity.
func NewPageRef(id, ns int, dbkey string) *PageRef {
	return &PageRef{ID: id, Namespace: ns, DBKey: dbkey}
}

// Text returns the display title without namespace prefix, e.g. "Foo bar".
func (p *PageRef) Text() string {
	return strings.ReplaceAll(p.DBKey, "_", " ")
}

// FullText returns the fully qualified name, e.g. "Category:Foo bar".
func (p *PageRef) FullText() string {
	if p.Namespace == NSMain {
		return p.Text()
	}
	return strings.ReplaceAll(NamespaceName(p.Namespace), "_", " ") + ":" + p.Text()
}

// NamespaceKey returns the namespace key exported in page records.
func (p *PageRef) NamespaceKey() string {
	return NamespaceKey(p.Namespace)
}

// Hash returns the key under which the page is queued and memoized.
func (p *PageRef) Hash() string {
	return p.FullText()
}

// Category is a category a page belongs to.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PageInfo holds the page metadata exported alongside extracted fields.
type PageInfo struct {
	Creator        string
	Categories     []Category
	DisplayTitle   string
	LatestRevision time.Time
}

// PageFilter represents a filter for FindPages. Pages are ordered by ID.
type PageFilter struct {
	Namespaces []int

	Offset int
	Limit  int
}

// PageService resolves pages of the host content store.
type PageService interface {
	// FindPageByName resolves a page name such as "Category:Foo".
	// Returns ENOTFOUND if the page does not exist.
	FindPageByName(ctx context.Context, name string) (*PageRef, error)

	// FindPageByID resolves a page by its numeric ID.
	// Returns ENOTFOUND if no page has that ID.
	FindPageByID(ctx context.Context, id int) (*PageRef, error)

	// FindPages returns existing pages matching the filter, ordered by ID.
	FindPages(ctx context.Context, filter PageFilter) ([]*PageRef, error)

	// MaxPageID returns the highest page ID in use, or 0 for an empty store.
	MaxPageID(ctx context.Context) (int, error)

	// FindPageInfo returns creator, categories, display title and latest
	// revision timestamp of a page.
	FindPageInfo(ctx context.Context, ref *PageRef) (*PageInfo, error)

	// FindPageContent returns the raw markup of the latest revision.
	FindPageContent(ctx context.Context, ref *PageRef) (string, error)

	// FindPageLinks returns the existing pages the given page links to.
	FindPageLinks(ctx context.Context, ref *PageRef) ([]*PageRef, error)
}

// CategoryService lists category members.
type CategoryService interface {
	// FindCategoryMembers returns up to limit pages in the named category.
	// Returns ENOTFOUND if the category has no page and no members.
	FindCategoryMembers(ctx context.Context, name string, limit int) ([]*PageRef, error)
}

// Revision is a single stored revision of a page.
type Revision struct {
	User      string
	Timestamp time.Time
	Content   string
}

// Page is a complete page as loaded into a content store.
type Page struct {
	Namespace    int
	DBKey        string
	DisplayTitle string
	Revisions    []Revision
	Categories   []string
	Links        []string
}

// Validate returns an error if the page contains invalid fields.
func (p *Page) Validate() error {
	if p.DBKey == "" {
		return Errorf(EINVALID, "page title required")
	}
	if len(p.Revisions) == 0 {
		return Errorf(EINVALID, "page %q has no revisions", p.DBKey)
	}
	return nil
}

// PageWriter writes pages to a content store.
type PageWriter interface {
	// CreatePage stores a page with its revisions, categories and links.
	// Returns ECONFLICT if a page with the same title exists.
	CreatePage(ctx context.Context, page *Page) (*PageRef, error)
}
