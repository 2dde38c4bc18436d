// Package etree imports MediaWiki XML dumps into a page store.
package etree

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/semjson"
	"github.com/fwojciec/semjson/wikitext"
)

var displayTitleRegex = regexp.MustCompile(`(?i)\{\{\s*DISPLAYTITLE\s*:\s*([^}]*?)\s*\}\}`)

// Importer loads the pages of a dump into a PageWriter.
type Importer struct {
	Pages  semjson.PageWriter
	Logger *slog.Logger
}

// NewImporter returns an Importer writing to pages.
func NewImporter(pages semjson.PageWriter) *Importer {
	return &Importer{Pages: pages}
}

// Result summarizes an import.
type Result struct {
	SiteName string
	MainPage string
	Imported int
	Skipped  int
}

// Import reads a dump from r and stores its pages. Pages that already exist
// or cannot be parsed are skipped. Category memberships and links are
// derived from the latest revision.
func (i *Importer) Import(ctx context.Context, r io.Reader) (*Result, error) {
	logger := i.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parsing dump XML: %w", err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "mediawiki" {
		return nil, semjson.Errorf(semjson.EINVALID, "not a MediaWiki dump")
	}

	result := &Result{}
	if info := root.SelectElement("siteinfo"); info != nil {
		result.SiteName = childText(info, "sitename")
		result.MainPage = mainPageFromBase(childText(info, "base"))
	}

	for _, el := range root.SelectElements("page") {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		page, err := parsePage(el)
		if err != nil {
			logger.Warn("skipping page", "title", childText(el, "title"), "err", err)
			result.Skipped++
			continue
		}

		if _, err := i.Pages.CreatePage(ctx, page); err != nil {
			switch semjson.ErrorCode(err) {
			case semjson.ECONFLICT, semjson.EINVALID:
				logger.Warn("skipping page", "title", page.DBKey, "err", err)
				result.Skipped++
				continue
			}
			return result, fmt.Errorf("store page %q: %w", page.DBKey, err)
		}
		result.Imported++
	}

	return result, nil
}

func parsePage(el *etree.Element) (*semjson.Page, error) {
	ns, key, err := pageTitle(childText(el, "title"), childText(el, "ns"))
	if err != nil {
		return nil, err
	}

	page := &semjson.Page{Namespace: ns, DBKey: key}
	for _, rev := range el.SelectElements("revision") {
		ts, err := semjson.ParseRevisionDate(childText(rev, "timestamp"))
		if err != nil {
			return nil, err
		}
		revision := semjson.Revision{
			Timestamp: ts,
			Content:   childText(rev, "text"),
		}
		if c := rev.SelectElement("contributor"); c != nil {
			revision.User = childText(c, "username")
			if revision.User == "" {
				revision.User = childText(c, "ip")
			}
		}
		page.Revisions = append(page.Revisions, revision)
	}
	if len(page.Revisions) == 0 {
		return nil, semjson.Errorf(semjson.EINVALID, "page %q has no revisions", key)
	}

	latest := page.Revisions[0]
	for _, rev := range page.Revisions[1:] {
		if !rev.Timestamp.Before(latest.Timestamp) {
			latest = rev
		}
	}
	page.Links, page.Categories = wikitext.ScanLinks(latest.Content)
	if m := displayTitleRegex.FindStringSubmatch(latest.Content); m != nil {
		page.DisplayTitle = m[1]
	}
	return page, nil
}

// pageTitle resolves the namespace and key of a dump page. The numeric
// namespace, when given, takes precedence over the title prefix.
func pageTitle(title, nsText string) (int, string, error) {
	ns, key, err := semjson.ParseTitle(title)
	if err != nil {
		return 0, "", err
	}
	nsText = strings.TrimSpace(nsText)
	if nsText == "" {
		return ns, key, nil
	}

	n, err := strconv.Atoi(nsText)
	if err != nil {
		return 0, "", semjson.Errorf(semjson.EINVALID, "invalid namespace %q", nsText)
	}
	if n != ns && ns == semjson.NSMain && n != semjson.NSMain {
		// Custom namespace: the prefix is not known to the title parser.
		if i := strings.Index(key, ":"); i != -1 {
			if _, key, err = semjson.ParseTitle(key[i+1:]); err != nil {
				return 0, "", err
			}
		}
	}
	return n, key, nil
}

// mainPageFromBase extracts the page name from the main page address found
// in the dump header.
func mainPageFromBase(base string) string {
	if base == "" {
		return ""
	}
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	if title := u.Query().Get("title"); title != "" {
		return strings.ReplaceAll(title, "_", " ")
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || strings.HasSuffix(name, ".php") {
		return ""
	}
	return strings.ReplaceAll(name, "_", " ")
}

func childText(el *etree.Element, tag string) string {
	c := el.SelectElement(tag)
	if c == nil {
		return ""
	}
	return c.Text()
}
