package export_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fwojciec/semjson"
	"github.com/fwojciec/semjson/export"
	"github.com/fwojciec/semjson/jsoniter"
	"github.com/fwojciec/semjson/mock"
	"github.com/fwojciec/semjson/wikitext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPage struct {
	id      int
	ns      int
	key     string
	content string
	links   []string
	revised time.Time
}

// newWiki returns a page service backed by the given pages. Pages without
// an explicit id are numbered by position.
func newWiki(pages ...testPage) *mock.PageService {
	byName := make(map[string]*semjson.PageRef)
	byID := make(map[int]*semjson.PageRef)
	data := make(map[string]testPage)
	maxID := 0
	for i, p := range pages {
		id := p.id
		if id == 0 {
			id = i + 1
		}
		ref := semjson.NewPageRef(id, p.ns, p.key)
		byName[ref.FullText()] = ref
		byID[id] = ref
		data[ref.FullText()] = p
		if id > maxID {
			maxID = id
		}
	}

	resolve := func(name string) (*semjson.PageRef, error) {
		ns, key, err := semjson.ParseTitle(name)
		if err != nil {
			return nil, err
		}
		ref, ok := byName[semjson.NewPageRef(0, ns, key).FullText()]
		if !ok {
			return nil, semjson.Errorf(semjson.ENOTFOUND, "page %q not found", name)
		}
		return ref, nil
	}

	return &mock.PageService{
		FindPageByNameFn: func(_ context.Context, name string) (*semjson.PageRef, error) {
			return resolve(name)
		},
		FindPageByIDFn: func(_ context.Context, id int) (*semjson.PageRef, error) {
			ref, ok := byID[id]
			if !ok {
				return nil, semjson.Errorf(semjson.ENOTFOUND, "page %d not found", id)
			}
			return ref, nil
		},
		MaxPageIDFn: func(_ context.Context) (int, error) {
			return maxID, nil
		},
		FindPageInfoFn: func(_ context.Context, ref *semjson.PageRef) (*semjson.PageInfo, error) {
			p := data[ref.FullText()]
			return &semjson.PageInfo{
				Creator:        "Alice",
				DisplayTitle:   ref.Text(),
				LatestRevision: p.revised,
			}, nil
		},
		FindPageContentFn: func(_ context.Context, ref *semjson.PageRef) (string, error) {
			return data[ref.FullText()].content, nil
		},
		FindPageLinksFn: func(_ context.Context, ref *semjson.PageRef) ([]*semjson.PageRef, error) {
			var refs []*semjson.PageRef
			for _, name := range data[ref.FullText()].links {
				if link, err := resolve(name); err == nil {
					refs = append(refs, link)
				}
			}
			return refs, nil
		},
	}
}

func newController(pages *mock.PageService) *export.Controller {
	cfg := export.DefaultConfig()
	cfg.Blocks = []semjson.BlockType{
		{Name: "Tuto Details"},
		{Name: "Tuto Step", Repeatable: true},
	}
	cfg.ExportURL = "https://wiki.example/export"

	c := export.NewController(cfg)
	c.Pages = pages
	c.Serializer = jsoniter.NewSerializer()
	c.Locator = wikitext.NewLocator()
	return c
}

type document struct {
	Results []map[string]any `json:"results"`
}

func decode(t *testing.T, s string) document {
	t.Helper()
	var doc document
	require.NoError(t, json.Unmarshal([]byte(s), &doc), s)
	return doc
}

func (d document) ids() []string {
	var ids []string
	for _, r := range d.Results {
		if id, ok := r["id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// countingWriter counts the writes it receives. It exposes only Write so
// that io.WriteString cannot bypass the count.
type countingWriter struct {
	buf    bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.buf.Write(p)
}

func (w *countingWriter) String() string {
	return w.buf.String()
}

func TestController_PrintPages(t *testing.T) {
	t.Parallel()

	t.Run("exports each resolved page once", func(t *testing.T) {
		t.Parallel()

		c := newController(newWiki(
			testPage{key: "A", content: "{{Tuto Details|Difficulty=Easy}}{{Tuto Step|n=1}}{{Tuto Step|n=2}}"},
			testPage{key: "B"},
		))
		var buf bytes.Buffer

		err := c.PrintPages(context.Background(), &buf, []string{"A", "B", "a", "Missing"}, false, time.Time{})

		require.NoError(t, err)
		doc := decode(t, buf.String())
		assert.Equal(t, []string{"A", "B"}, doc.ids())

		a := doc.Results[0]
		assert.Equal(t, "nstab-main", a["namespace"])
		assert.Equal(t, "Alice", a["creator"])
		assert.Equal(t, []any{}, a["categories"])
		assert.Equal(t, map[string]any{
			"Tuto Details": map[string]any{"Difficulty": "Easy"},
			"Tuto Step":    []any{map[string]any{"n": "1"}, map[string]any{"n": "2"}},
		}, a["content"])
	})

	t.Run("skips pages revised before the date filter", func(t *testing.T) {
		t.Parallel()

		c := newController(newWiki(
			testPage{key: "Old", revised: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
			testPage{key: "New", revised: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		))
		var buf bytes.Buffer

		since := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
		err := c.PrintPages(context.Background(), &buf, []string{"Old", "New"}, false, since)

		require.NoError(t, err)
		assert.Equal(t, []string{"New"}, decode(t, buf.String()).ids())
	})

	t.Run("delays flushing for the first pages", func(t *testing.T) {
		t.Parallel()

		var pages []testPage
		var names []string
		for i := 0; i < 12; i++ {
			name := fmt.Sprintf("P%d", i)
			pages = append(pages, testPage{key: name})
			names = append(names, name)
		}
		c := newController(newWiki(pages...))
		w := &countingWriter{}

		err := c.PrintPages(context.Background(), w, names, false, time.Time{})

		require.NoError(t, err)
		// Pages 11 and 12 each flush, then the closing flush.
		assert.Equal(t, 3, w.writes)
		assert.Len(t, decode(t, w.String()).Results, 12)
	})

	t.Run("empty list yields an empty document", func(t *testing.T) {
		t.Parallel()

		c := newController(newWiki())
		var buf bytes.Buffer

		require.NoError(t, c.PrintPages(context.Background(), &buf, nil, true, time.Time{}))

		assert.Equal(t, `{"results":[]}`, buf.String())
	})

	t.Run("follows links without limit when recursive", func(t *testing.T) {
		t.Parallel()

		c := newController(newWiki(
			testPage{key: "A", links: []string{"B"}},
			testPage{key: "B", links: []string{"C"}},
			testPage{key: "C", links: []string{"A", "B"}},
		))
		c.Config.FollowLinks = true
		var buf bytes.Buffer

		require.NoError(t, c.PrintPages(context.Background(), &buf, []string{"A"}, true, time.Time{}))

		assert.Equal(t, []string{"A", "B", "C"}, decode(t, buf.String()).ids())
	})

	t.Run("follows links one level when not recursive", func(t *testing.T) {
		t.Parallel()

		c := newController(newWiki(
			testPage{key: "A", links: []string{"B"}},
			testPage{key: "B", links: []string{"C"}},
			testPage{key: "C"},
		))
		c.Config.FollowLinks = true
		var buf bytes.Buffer

		require.NoError(t, c.PrintPages(context.Background(), &buf, []string{"A"}, false, time.Time{}))

		assert.Equal(t, []string{"A", "B"}, decode(t, buf.String()).ids())
	})

	t.Run("does not follow links by default", func(t *testing.T) {
		t.Parallel()

		c := newController(newWiki(
			testPage{key: "A", links: []string{"B"}},
			testPage{key: "B"},
		))
		var buf bytes.Buffer

		require.NoError(t, c.PrintPages(context.Background(), &buf, []string{"A"}, true, time.Time{}))

		assert.Equal(t, []string{"A"}, decode(t, buf.String()).ids())
	})

	t.Run("skips pages that fail to load", func(t *testing.T) {
		t.Parallel()

		wiki := newWiki(testPage{key: "A"}, testPage{key: "B"}, testPage{key: "C"})
		content := wiki.FindPageContentFn
		wiki.FindPageContentFn = func(ctx context.Context, ref *semjson.PageRef) (string, error) {
			if ref.DBKey == "B" {
				return "", errors.New("corrupt revision")
			}
			return content(ctx, ref)
		}
		c := newController(wiki)
		var buf bytes.Buffer

		require.NoError(t, c.PrintPages(context.Background(), &buf, []string{"A", "B", "C"}, false, time.Time{}))

		assert.Equal(t, []string{"A", "C"}, decode(t, buf.String()).ids())
	})

	t.Run("calls the before-serialize hook", func(t *testing.T) {
		t.Parallel()

		c := newController(newWiki(testPage{key: "A"}))
		c.BeforeSerialize = func(_ context.Context, ref *semjson.PageRef, fields *semjson.FieldMap) {
			fields.SetText("Page", ref.FullText())
		}
		var buf bytes.Buffer

		require.NoError(t, c.PrintPages(context.Background(), &buf, []string{"A"}, false, time.Time{}))

		content := decode(t, buf.String()).Results[0]["content"].(map[string]any)
		assert.Equal(t, "A", content["Page"])
	})

	t.Run("renders selected fields", func(t *testing.T) {
		t.Parallel()

		c := newController(newWiki(testPage{key: "A", content: "{{Tuto Step|Text='''bold'''<!-- note -->}}"}))
		c.Config.FieldsToParse = []string{"Text"}
		c.Renderer = &mock.Renderer{
			RenderFn: func(_ context.Context, text, title string) (string, error) {
				assert.Equal(t, "A", title)
				return "<p><b>bold</b><!-- cached --></p>", nil
			},
		}
		var buf bytes.Buffer

		require.NoError(t, c.PrintPages(context.Background(), &buf, []string{"A"}, false, time.Time{}))

		assert.Contains(t, buf.String(), `"Text":"<p><b>bold</b></p>"`)
	})

	t.Run("returns write errors", func(t *testing.T) {
		t.Parallel()

		c := newController(newWiki(testPage{key: "A"}))
		w := &mock.OutputFile{
			WriteFn: func(_ []byte) (int, error) {
				return 0, errors.New("disk full")
			},
		}

		err := c.PrintPages(context.Background(), w, []string{"A"}, false, time.Time{})

		assert.ErrorContains(t, err, "disk full")
	})

	t.Run("stops when the context is canceled", func(t *testing.T) {
		t.Parallel()

		c := newController(newWiki(testPage{key: "A"}))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var buf bytes.Buffer

		err := c.PrintPages(ctx, &buf, []string{"A"}, false, time.Time{})

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestController_PrintCategories(t *testing.T) {
	t.Parallel()

	wiki := newWiki(testPage{key: "A", links: []string{"C"}}, testPage{key: "B"}, testPage{key: "C"})
	c := newController(wiki)
	c.Config.FollowLinks = true
	c.Categories = &mock.CategoryService{
		FindCategoryMembersFn: func(ctx context.Context, name string, limit int) ([]*semjson.PageRef, error) {
			assert.Equal(t, export.CategoryMemberLimit, limit)
			if name != "Furniture" {
				return nil, semjson.Errorf(semjson.ENOTFOUND, "category %q not found", name)
			}
			a, _ := wiki.FindPageByName(ctx, "A")
			b, _ := wiki.FindPageByName(ctx, "B")
			return []*semjson.PageRef{a, b}, nil
		},
	}
	var buf bytes.Buffer

	err := c.PrintCategories(context.Background(), &buf, []string{"Furniture", "Missing"}, time.Time{})

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, decode(t, buf.String()).ids())
}

func TestController_PrintAllToOutput(t *testing.T) {
	t.Parallel()

	pages := []testPage{
		{id: 1, key: "A", links: []string{"Template:T", "E"}},
		{id: 3, ns: semjson.NSCategory, key: "C"},
		{id: 4, ns: semjson.NSTemplate, key: "T"},
		{id: 5, key: "E"},
	}

	t.Run("walks semantic pages fitting the restriction", func(t *testing.T) {
		t.Parallel()

		c := newController(newWiki(pages...))
		var paced int
		c.Pacer = &mock.Pacer{
			PaceFn: func(_ context.Context) error {
				paced++
				return nil
			},
		}
		var buf bytes.Buffer

		err := c.PrintAllToOutput(context.Background(), &buf, semjson.ExcludeStructural())

		require.NoError(t, err)
		assert.Equal(t, []string{"A", "E"}, decode(t, buf.String()).ids())
		assert.Equal(t, 2, paced)
	})

	t.Run("keeps only dependencies outside the walk", func(t *testing.T) {
		t.Parallel()

		c := newController(newWiki(pages...))
		c.Config.FollowLinks = true
		var buf bytes.Buffer

		err := c.PrintAllToOutput(context.Background(), &buf, semjson.ExcludeStructural())

		require.NoError(t, err)
		doc := decode(t, buf.String())
		assert.Equal(t, []string{"A", "T", "E"}, doc.ids())
		assert.Equal(t, "nstab-template", doc.Results[1]["namespace"])
	})

	t.Run("flushes once per walked page", func(t *testing.T) {
		t.Parallel()

		var walked []testPage
		var links []string
		for i := 0; i < 5; i++ {
			name := fmt.Sprintf("T%d", i)
			walked = append(walked, testPage{id: 20 + i, ns: semjson.NSTemplate, key: name})
			links = append(links, "Template:"+name)
		}
		for i := 1; i <= 11; i++ {
			p := testPage{id: i, key: fmt.Sprintf("P%d", i)}
			if i == 1 {
				p.links = links
			}
			walked = append(walked, p)
		}
		c := newController(newWiki(walked...))
		c.Config.FollowLinks = true
		w := &countingWriter{}

		err := c.PrintAllToOutput(context.Background(), w, semjson.ExcludeStructural())

		require.NoError(t, err)
		// Eleven walked pages: ten delayed flushes, one write, then the
		// closing flush. Dependencies of P1 do not add flushes.
		assert.Equal(t, 2, w.writes)
		assert.Len(t, decode(t, w.String()).Results, 16)
	})

	t.Run("restricts to listed namespaces", func(t *testing.T) {
		t.Parallel()

		c := newController(newWiki(pages...))
		var buf bytes.Buffer

		err := c.PrintAllToOutput(context.Background(), &buf, semjson.OnlyNamespaces(semjson.NSCategory))

		require.NoError(t, err)
		assert.Equal(t, []string{"C"}, decode(t, buf.String()).ids())
	})

	t.Run("returns pacer errors", func(t *testing.T) {
		t.Parallel()

		c := newController(newWiki(pages...))
		c.Pacer = &mock.Pacer{
			PaceFn: func(_ context.Context) error {
				return context.DeadlineExceeded
			},
		}
		var buf bytes.Buffer

		err := c.PrintAllToOutput(context.Background(), &buf, semjson.NoRestriction())

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestController_PrintAllToFile(t *testing.T) {
	t.Parallel()

	t.Run("commits the file on success", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		var committed, aborted bool
		c := newController(newWiki(testPage{key: "A"}))
		c.Files = &mock.FileService{
			CreateFileFn: func(path string) (semjson.OutputFile, error) {
				assert.Equal(t, "/tmp/export.json", path)
				return &mock.OutputFile{
					WriteFn:  buf.Write,
					CommitFn: func() error { committed = true; return nil },
					AbortFn:  func() error { aborted = true; return nil },
				}, nil
			},
		}

		err := c.PrintAllToFile(context.Background(), "/tmp/export.json", semjson.NoRestriction())

		require.NoError(t, err)
		assert.True(t, committed)
		assert.False(t, aborted)
		assert.Equal(t, []string{"A"}, decode(t, buf.String()).ids())
	})

	t.Run("aborts the file on failure", func(t *testing.T) {
		t.Parallel()

		var committed, aborted bool
		wiki := newWiki()
		wiki.MaxPageIDFn = func(_ context.Context) (int, error) {
			return 0, errors.New("database locked")
		}
		c := newController(wiki)
		c.Files = &mock.FileService{
			CreateFileFn: func(_ string) (semjson.OutputFile, error) {
				return &mock.OutputFile{
					WriteFn:  func(p []byte) (int, error) { return len(p), nil },
					CommitFn: func() error { committed = true; return nil },
					AbortFn:  func() error { aborted = true; return nil },
				}, nil
			},
		}

		err := c.PrintAllToFile(context.Background(), "out.json", semjson.NoRestriction())

		assert.ErrorContains(t, err, "database locked")
		assert.False(t, committed)
		assert.True(t, aborted)
	})

	t.Run("fails before any work when the file cannot be opened", func(t *testing.T) {
		t.Parallel()

		wiki := newWiki()
		wiki.MaxPageIDFn = func(_ context.Context) (int, error) {
			t.Fatal("export must not start")
			return 0, nil
		}
		c := newController(wiki)
		c.Files = &mock.FileService{
			CreateFileFn: func(_ string) (semjson.OutputFile, error) {
				return nil, errors.New("permission denied")
			},
		}

		err := c.PrintAllToFile(context.Background(), "out.json", semjson.NoRestriction())

		assert.ErrorContains(t, err, "permission denied")
	})
}

func TestController_PrintPageList(t *testing.T) {
	t.Parallel()

	t.Run("exports a page of pages and a continuation", func(t *testing.T) {
		t.Parallel()

		wiki := newWiki(testPage{key: "A", links: []string{"B"}}, testPage{key: "B"})
		wiki.FindPagesFn = func(ctx context.Context, filter semjson.PageFilter) ([]*semjson.PageRef, error) {
			assert.Equal(t, 10, filter.Offset)
			assert.Equal(t, export.DefaultPageListLimit, filter.Limit)
			assert.Equal(t, export.DefaultConfig().SemanticNamespaces, filter.Namespaces)
			a, _ := wiki.FindPageByName(ctx, "A")
			b, _ := wiki.FindPageByName(ctx, "B")
			return []*semjson.PageRef{a, b}, nil
		}
		c := newController(wiki)
		c.Config.FollowLinks = true
		var buf bytes.Buffer

		err := c.PrintPageList(context.Background(), &buf, 10, 0)

		require.NoError(t, err)
		doc := decode(t, buf.String())
		require.Len(t, doc.Results, 3)
		assert.Equal(t, []string{"A", "B"}, doc.ids())
		assert.Equal(t, map[string]any{
			"type":   "next",
			"offset": float64(40),
			"url":    "https://wiki.example/export?offset=40",
		}, doc.Results[2])
	})

	t.Run("omits the continuation when no page is found", func(t *testing.T) {
		t.Parallel()

		wiki := newWiki()
		wiki.FindPagesFn = func(_ context.Context, _ semjson.PageFilter) ([]*semjson.PageRef, error) {
			return nil, nil
		}
		c := newController(wiki)
		var buf bytes.Buffer

		require.NoError(t, c.PrintPageList(context.Background(), &buf, 500, 5))

		assert.Equal(t, `{"results":[]}`, buf.String())
	})
}

func TestController_PrintWikiInfo(t *testing.T) {
	t.Parallel()

	c := newController(newWiki())
	c.Config.SiteName = "Wikifab"
	c.Config.PagePrefix = "https://wiki.example/wiki/"
	c.Site = &mock.SiteService{
		FindSiteStatsFn: func(_ context.Context) (*semjson.SiteStats, error) {
			return &semjson.SiteStats{
				Pages:        10,
				ContentPages: 4,
				Media:        2,
				Edits:        30,
				Users:        3,
				Admins:       1,
				MainPage:     semjson.NewPageRef(1, semjson.NSMain, "Main_Page"),
			}, nil
		},
	}
	var buf bytes.Buffer

	require.NoError(t, c.PrintWikiInfo(context.Background(), &buf))

	doc := decode(t, buf.String())
	require.Len(t, doc.Results, 2)
	site := doc.Results[0]
	assert.Equal(t, "wiki", site["type"])
	assert.Equal(t, "Wikifab", site["name"])
	assert.Equal(t, "https://wiki.example/wiki/", site["pagePrefix"])
	assert.Equal(t, "Main Page", site["mainPage"])
	assert.Equal(t, float64(10), site["pageCount"])
	assert.Equal(t, float64(1), site["adminCount"])
	assert.Equal(t, "next", doc.Results[1]["type"])
	assert.Equal(t, "https://wiki.example/export?offset=0", doc.Results[1]["url"])
}
