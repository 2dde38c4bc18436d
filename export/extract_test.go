package export_test

import (
	"testing"

	"github.com/fwojciec/semjson"
	"github.com/fwojciec/semjson/export"
	"github.com/fwojciec/semjson/mock"
	"github.com/fwojciec/semjson/wikitext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	blocks := []semjson.BlockType{
		{Name: "Tuto Details"},
		{Name: "Tuto Step", Repeatable: true},
		{Name: "Notes"},
	}

	t.Run("repeatable and single blocks", func(t *testing.T) {
		t.Parallel()

		text := "{{Tuto Details|Difficulty=Easy}}\n" +
			"{{Tuto Step|Step_Title=One}}\n" +
			"{{tuto details|Difficulty=Hard}}\n" +
			"{{Tuto Step |Step_Title=Two}}\n" +
			"{{Tuto Step|Step_Title=Three}}\n"

		e := export.NewExtractor(wikitext.NewLocator(), blocks)
		fields := e.Extract(text)

		assert.Equal(t, []string{"Tuto Details", "Tuto Step", "Notes"}, fields.Keys())

		details, ok := fields.Get("Tuto Details")
		require.True(t, ok)
		require.Equal(t, semjson.KindMap, details.Kind())
		difficulty, _ := details.Map().Get("Difficulty")
		assert.Equal(t, "Easy", difficulty.Str())

		steps, ok := fields.Get("Tuto Step")
		require.True(t, ok)
		require.Equal(t, semjson.KindList, steps.Kind())
		require.Len(t, steps.List(), 3)
		var titles []string
		for _, m := range steps.List() {
			v, _ := m.Get("Step_Title")
			titles = append(titles, v.Str())
		}
		assert.Equal(t, []string{"One", "Two", "Three"}, titles)

		notes, ok := fields.Get("Notes")
		require.True(t, ok)
		assert.Equal(t, semjson.KindList, notes.Kind())
		assert.Empty(t, notes.List())
	})

	t.Run("does not match longer block names", func(t *testing.T) {
		t.Parallel()

		e := export.NewExtractor(wikitext.NewLocator(), blocks)
		fields := e.Extract("{{Tuto Steps|Step_Title=No}}{{Notes}}")

		steps, _ := fields.Get("Tuto Step")
		assert.Empty(t, steps.List())
		notes, _ := fields.Get("Notes")
		assert.Equal(t, semjson.KindMap, notes.Kind())
	})

	t.Run("stops at an unterminated block", func(t *testing.T) {
		t.Parallel()

		e := export.NewExtractor(wikitext.NewLocator(), blocks)
		fields := e.Extract("{{Tuto Step|Step_Title=One}}{{Tuto Step|Step_Title=Two")

		steps, _ := fields.Get("Tuto Step")
		assert.Len(t, steps.List(), 1)
	})

	t.Run("stops when the locator consumes nothing", func(t *testing.T) {
		t.Parallel()

		locator := &mock.BlockLocator{
			LocateBlockFn: func(_, _ string) (*semjson.Block, error) {
				return &semjson.Block{Length: 0, Fields: semjson.NewFieldMap()}, nil
			},
		}

		e := export.NewExtractor(locator, blocks)
		fields := e.Extract("{{Tuto Step|a=b}}")

		steps, _ := fields.Get("Tuto Step")
		assert.Empty(t, steps.List())
	})

	t.Run("encodes absent blocks as empty lists", func(t *testing.T) {
		t.Parallel()

		e := export.NewExtractor(wikitext.NewLocator(), blocks)
		b, err := e.Extract("plain text").MarshalJSON()

		require.NoError(t, err)
		assert.JSONEq(t, `{"Tuto Details":[],"Tuto Step":[],"Notes":[]}`, string(b))
	})
}
