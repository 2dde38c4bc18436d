// Package export provides the export orchestration. It resolves pages,
// extracts and renders their template fields, and streams the resulting
// records through a serializer to an output sink.
package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/fwojciec/semjson"
	"github.com/google/uuid"
)

// Controller exports wiki pages as JSON documents. A Controller runs one
// export at a time; the queue and done-set are reset for every run.
type Controller struct {
	Pages      semjson.PageService
	Categories semjson.CategoryService
	Site       semjson.SiteService
	Files      semjson.FileService
	Serializer semjson.Serializer
	Locator    semjson.BlockLocator
	Renderer   semjson.Renderer
	Pacer      semjson.Pacer
	Logger     *slog.Logger
	Config     Config

	// BeforeSerialize, if set, may modify the extracted fields of a page
	// before they are rendered and serialized.
	BeforeSerialize func(ctx context.Context, ref *semjson.PageRef, fields *semjson.FieldMap)
}

// NewController returns a Controller using cfg.
func NewController(cfg Config) *Controller {
	return &Controller{Config: cfg}
}

// PrintPages exports the named pages. Names that do not resolve are
// skipped, as are pages last revised before since unless since is zero.
// Dependencies are expanded without limit if recursive is set and one
// level deep otherwise.
func (c *Controller) PrintPages(ctx context.Context, w io.Writer, names []string, recursive bool, since time.Time) error {
	r := c.begin(w, pagesFlushDelay)
	refs := make([]*semjson.PageRef, 0, len(names))
	for _, name := range names {
		ref, err := c.Pages.FindPageByName(ctx, name)
		if err != nil {
			r.log.Debug("skipping unresolved page", "name", name, "err", err)
			continue
		}
		refs = append(refs, ref)
	}
	return r.printRefs(ctx, refs, recursive, since)
}

// PrintCategories exports the members of the named categories, at most
// CategoryMemberLimit each, with full recursion.
func (c *Controller) PrintCategories(ctx context.Context, w io.Writer, categories []string, since time.Time) error {
	r := c.begin(w, pagesFlushDelay)
	var refs []*semjson.PageRef
	for _, name := range categories {
		members, err := c.Categories.FindCategoryMembers(ctx, name, CategoryMemberLimit)
		if err != nil {
			r.log.Debug("skipping category", "category", name, "err", err)
			continue
		}
		refs = append(refs, members...)
	}
	return r.printRefs(ctx, refs, true, since)
}

// PrintAllToFile exports every semantic page fitting restriction to the
// file at path. The file only appears at path if the export succeeds.
func (c *Controller) PrintAllToFile(ctx context.Context, path string, restriction semjson.Restriction) (err error) {
	f, err := c.Files.CreateFile(path)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = f.Abort()
		}
	}()

	if err := c.PrintAllToOutput(ctx, f, restriction); err != nil {
		return err
	}
	if err := f.Commit(); err != nil {
		return fmt.Errorf("commit output file: %w", err)
	}
	return nil
}

// PrintAllToOutput exports every semantic page fitting restriction to w,
// walking page IDs from 1 to the highest in use.
func (c *Controller) PrintAllToOutput(ctx context.Context, w io.Writer, restriction semjson.Restriction) error {
	r := c.begin(w, pagesFlushDelay)

	maxID, err := c.Pages.MaxPageID(ctx)
	if err != nil {
		return fmt.Errorf("find max page id: %w", err)
	}
	r.log.Info("exporting all pages", "maxID", maxID, "restriction", restriction.String())

	for id := 1; id <= maxID; id++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		ref, err := c.Pages.FindPageByID(ctx, id)
		if err != nil {
			if semjson.ErrorCode(err) != semjson.ENOTFOUND {
				r.log.Warn("skipping page", "id", id, "err", err)
			}
			continue
		}
		if !c.Config.IsSemantic(ref.Namespace) || !restriction.Fits(ref.Namespace) {
			continue
		}

		r.tracker.queuePage(ref, 1)
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			task, ok := r.tracker.queue.pop()
			if !ok {
				break
			}
			if err := r.exportPage(ctx, task); err != nil {
				return err
			}
			// Pages that the ID walk reaches on its own are dropped from the
			// queue; the others are kept and exported as dependencies.
			r.tracker.queue.retain(func(t Task) bool {
				return !c.Config.IsSemantic(t.Ref.Namespace) || !restriction.Fits(t.Ref.Namespace)
			})
			if err := r.pace(ctx); err != nil {
				return err
			}
		}
		if err := r.flush(false); err != nil {
			return err
		}
	}
	return r.finish()
}

// PrintPageList exports one page of the semantic pages ordered by ID,
// without dependencies, followed by a link to the next page if any page
// was found. A non-positive limit selects DefaultPageListLimit.
func (c *Controller) PrintPageList(ctx context.Context, w io.Writer, offset, limit int) error {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultPageListLimit
	}
	r := c.begin(w, listFlushDelay)

	refs, err := c.Pages.FindPages(ctx, semjson.PageFilter{
		Namespaces: c.Config.SemanticNamespaces,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		return fmt.Errorf("find pages: %w", err)
	}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.exportPage(ctx, Task{Ref: ref, Depth: 0}); err != nil {
			return err
		}
		if err := r.flush(false); err != nil {
			return err
		}
	}

	if len(refs) > 0 {
		next := offset + limit
		if err := c.Serializer.AddRecord(semjson.ContinueRecord{
			Type:   semjson.RecordTypeContinue,
			Offset: next,
			URL:    c.nextURL(next),
		}); err != nil {
			return err
		}
	}
	return r.finish()
}

// PrintWikiInfo exports a single record describing the wiki, followed by a
// link to the first page of the page list.
func (c *Controller) PrintWikiInfo(ctx context.Context, w io.Writer) error {
	r := c.begin(w, listFlushDelay)

	stats, err := c.Site.FindSiteStats(ctx)
	if err != nil {
		return fmt.Errorf("find site stats: %w", err)
	}

	record := semjson.SiteRecord{
		Type:             semjson.RecordTypeSite,
		Name:             c.Config.SiteName,
		PagePrefix:       c.Config.PagePrefix,
		Version:          c.Config.Version,
		LangCode:         c.Config.LanguageCode,
		PageCount:        stats.Pages,
		ContentPageCount: stats.ContentPages,
		MediaCount:       stats.Media,
		EditCount:        stats.Edits,
		UserCount:        stats.Users,
		AdminCount:       stats.Admins,
	}
	if stats.MainPage != nil {
		record.MainPage = stats.MainPage.FullText()
	}
	if err := c.Serializer.AddRecord(record); err != nil {
		return err
	}
	if err := c.Serializer.AddRecord(semjson.ContinueRecord{
		Type:   semjson.RecordTypeContinue,
		Offset: 0,
		URL:    c.nextURL(0),
	}); err != nil {
		return err
	}
	return r.finish()
}

// nextURL returns the export address of the page list starting at offset.
func (c *Controller) nextURL(offset int) string {
	u, err := url.Parse(c.Config.ExportURL)
	if err != nil {
		u = &url.URL{}
	}
	q := u.Query()
	q.Set("offset", strconv.Itoa(offset))
	u.RawQuery = q.Encode()
	return u.String()
}

// run holds the state of a single export.
type run struct {
	c          *Controller
	tracker    *tracker
	extractor  *Extractor
	post       *PostProcessor
	sink       io.Writer
	delayFlush int
	log        *slog.Logger
}

func (c *Controller) begin(w io.Writer, delayFlush int) *run {
	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c.Serializer.Clear()
	c.Serializer.Start()

	return &run{
		c:          c,
		tracker:    newTracker(c.Config),
		extractor:  NewExtractor(c.Locator, c.Config.Blocks),
		post:       NewPostProcessor(c.Renderer, c.Config.FieldsToParse),
		sink:       w,
		delayFlush: delayFlush,
		log:        logger.With("run", uuid.NewString()),
	}
}

func (r *run) printRefs(ctx context.Context, refs []*semjson.PageRef, recursive bool, since time.Time) error {
	depth := 1
	if recursive {
		depth = Unlimited
	}

	for _, ref := range refs {
		if !since.IsZero() {
			info, err := r.c.Pages.FindPageInfo(ctx, ref)
			if err != nil {
				r.log.Warn("skipping page", "page", ref.FullText(), "err", err)
				continue
			}
			if info.LatestRevision.Before(since) {
				continue
			}
		}
		r.tracker.queuePage(ref, depth)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		task, ok := r.tracker.queue.pop()
		if !ok {
			break
		}
		if err := r.exportPage(ctx, task); err != nil {
			return err
		}
		if err := r.flush(false); err != nil {
			return err
		}
	}
	return r.finish()
}

// exportPage serializes one page and queues its dependencies. Failures to
// read the page are logged and the page is skipped; only serializer errors
// are returned.
func (r *run) exportPage(ctx context.Context, task Task) error {
	hash := task.Ref.Hash()
	if r.tracker.isHashDone(hash, task.Depth) {
		return nil
	}
	r.tracker.markHashAsDone(hash, task.Depth)

	info, err := r.c.Pages.FindPageInfo(ctx, task.Ref)
	if err != nil {
		r.log.Warn("skipping page", "page", hash, "err", err)
		return nil
	}
	content, err := r.c.Pages.FindPageContent(ctx, task.Ref)
	if err != nil {
		r.log.Warn("skipping page", "page", hash, "err", err)
		return nil
	}

	fields := r.extractor.Extract(content)
	if r.c.BeforeSerialize != nil {
		r.c.BeforeSerialize(ctx, task.Ref, fields)
	}
	r.post.Process(ctx, fields, task.Ref.FullText())

	if err := r.c.Serializer.AddPage(task.Ref, info, fields); err != nil {
		return err
	}
	r.log.Debug("exported page", "page", hash, "depth", task.Depth)

	if r.c.Config.FollowLinks && task.Depth != 0 {
		r.queueLinks(ctx, task)
	}
	return nil
}

func (r *run) queueLinks(ctx context.Context, task Task) {
	links, err := r.c.Pages.FindPageLinks(ctx, task.Ref)
	if err != nil {
		r.log.Warn("skipping page links", "page", task.Ref.FullText(), "err", err)
		return
	}
	depth := Unlimited
	if task.Depth != Unlimited {
		depth = task.Depth - 1
	}
	for _, link := range links {
		r.tracker.queuePage(link, depth)
	}
}

func (r *run) pace(ctx context.Context) error {
	if r.c.Pacer == nil {
		return nil
	}
	return r.c.Pacer.Pace(ctx)
}

// flush writes buffered output to the sink. Unless force is set, the first
// delayFlush requests are ignored so that early output is batched.
func (r *run) flush(force bool) error {
	if !force && r.delayFlush > 0 {
		r.delayFlush--
		return nil
	}
	content := r.c.Serializer.FlushContent()
	if content == "" {
		return nil
	}
	if _, err := io.WriteString(r.sink, content); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	switch f := r.sink.(type) {
	case interface{ Flush() error }:
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flush output: %w", err)
		}
	case interface{ Flush() }:
		f.Flush()
	}
	return nil
}

func (r *run) finish() error {
	if err := r.c.Serializer.Finish(); err != nil {
		return err
	}
	return r.flush(true)
}
