package etree_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/semjson"
	"github.com/fwojciec/semjson/etree"
	"github.com/fwojciec/semjson/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dump = `<mediawiki xmlns="http://www.mediawiki.org/xml/export-0.10/" version="0.10" xml:lang="en">
  <siteinfo>
    <sitename>Wikifab</sitename>
    <base>https://wikifab.example/wiki/Main_Page</base>
  </siteinfo>
  <page>
    <title>Wooden bench</title>
    <ns>0</ns>
    <id>12</id>
    <revision>
      <timestamp>2021-03-01T10:00:00Z</timestamp>
      <contributor><username>Alice</username></contributor>
      <text xml:space="preserve">first</text>
    </revision>
    <revision>
      <timestamp>2023-06-15T08:30:00Z</timestamp>
      <contributor><ip>10.0.0.1</ip></contributor>
      <text xml:space="preserve">{{DISPLAYTITLE:A &lt;i&gt;wooden&lt;/i&gt; bench}}
{{Tuto Details|Difficulty=Easy}} See [[Saw]] and [[Category:Furniture]].</text>
    </revision>
  </page>
  <page>
    <title>Tuto:Chair</title>
    <ns>3000</ns>
    <revision>
      <timestamp>2022-01-01T00:00:00Z</timestamp>
      <contributor><username>Bob</username></contributor>
      <text xml:space="preserve">chair</text>
    </revision>
  </page>
  <page>
    <title>No revisions</title>
    <ns>0</ns>
  </page>
</mediawiki>`

func TestImporter_Import(t *testing.T) {
	t.Parallel()

	t.Run("stores pages with derived links", func(t *testing.T) {
		t.Parallel()

		var pages []*semjson.Page
		writer := &mock.PageWriter{
			CreatePageFn: func(_ context.Context, page *semjson.Page) (*semjson.PageRef, error) {
				pages = append(pages, page)
				return semjson.NewPageRef(len(pages), page.Namespace, page.DBKey), nil
			},
		}

		result, err := etree.NewImporter(writer).Import(context.Background(), strings.NewReader(dump))

		require.NoError(t, err)
		assert.Equal(t, "Wikifab", result.SiteName)
		assert.Equal(t, "Main Page", result.MainPage)
		assert.Equal(t, 2, result.Imported)
		assert.Equal(t, 1, result.Skipped)

		require.Len(t, pages, 2)
		bench := pages[0]
		assert.Equal(t, semjson.NSMain, bench.Namespace)
		assert.Equal(t, "Wooden_bench", bench.DBKey)
		assert.Equal(t, "A <i>wooden</i> bench", bench.DisplayTitle)
		require.Len(t, bench.Revisions, 2)
		assert.Equal(t, "Alice", bench.Revisions[0].User)
		assert.Equal(t, "10.0.0.1", bench.Revisions[1].User)
		assert.True(t, bench.Revisions[1].Timestamp.Equal(time.Date(2023, 6, 15, 8, 30, 0, 0, time.UTC)))
		assert.Equal(t, []string{"Saw"}, bench.Links)
		assert.Equal(t, []string{"Furniture"}, bench.Categories)

		chair := pages[1]
		assert.Equal(t, 3000, chair.Namespace)
		assert.Equal(t, "Chair", chair.DBKey)
	})

	t.Run("skips existing pages", func(t *testing.T) {
		t.Parallel()

		writer := &mock.PageWriter{
			CreatePageFn: func(_ context.Context, page *semjson.Page) (*semjson.PageRef, error) {
				return nil, semjson.Errorf(semjson.ECONFLICT, "page %q already exists", page.DBKey)
			},
		}

		result, err := etree.NewImporter(writer).Import(context.Background(), strings.NewReader(dump))

		require.NoError(t, err)
		assert.Equal(t, 0, result.Imported)
		assert.Equal(t, 3, result.Skipped)
	})

	t.Run("returns store failures", func(t *testing.T) {
		t.Parallel()

		writer := &mock.PageWriter{
			CreatePageFn: func(_ context.Context, _ *semjson.Page) (*semjson.PageRef, error) {
				return nil, errors.New("disk I/O error")
			},
		}

		_, err := etree.NewImporter(writer).Import(context.Background(), strings.NewReader(dump))

		assert.ErrorContains(t, err, "disk I/O error")
	})

	t.Run("rejects other documents", func(t *testing.T) {
		t.Parallel()

		_, err := etree.NewImporter(&mock.PageWriter{}).Import(context.Background(), strings.NewReader(`<urlset></urlset>`))
		assert.Equal(t, semjson.EINVALID, semjson.ErrorCode(err))

		_, err = etree.NewImporter(&mock.PageWriter{}).Import(context.Background(), strings.NewReader(`<mediawiki`))
		assert.Error(t, err)
	})
}
