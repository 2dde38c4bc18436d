package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	main "github.com/fwojciec/semjson/cmd/semjson"
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
    <revision>
      <timestamp>2023-06-15T08:30:00Z</timestamp>
      <contributor><username>Alice</username></contributor>
      <text xml:space="preserve">{{Tuto Details|Difficulty=Easy}} [[Category:Furniture]]</text>
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
</mediawiki>`

// testEnv holds the paths shared by the runs of one end-to-end test.
type testEnv struct {
	dir    string
	db     string
	config string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	return &testEnv{
		dir:    dir,
		db:     filepath.Join(dir, "wiki.db"),
		config: filepath.Join(dir, "missing.yaml"),
	}
}

// run executes the program with the environment's database and config.
func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	full := append([]string{args[0], "--db", e.db, "--config", e.config}, args[1:]...)
	err := main.NewMain().Run(context.Background(), full, stdout, stderr)
	return stdout.String(), stderr.String(), err
}

func (e *testEnv) importDump(t *testing.T) {
	t.Helper()
	path := filepath.Join(e.dir, "dump.xml")
	require.NoError(t, os.WriteFile(path, []byte(dump), 0o600))
	stdout, _, err := e.run(t, "import", path)
	require.NoError(t, err)
	require.Contains(t, stdout, "Imported 2 pages (0 skipped)")
}

func TestMain_Run_HelpShowsKongOutput(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := main.NewMain().Run(context.Background(), []string{"--help"}, stdout, stderr)
	require.NoError(t, err)

	helpOutput := stdout.String()
	for _, cmd := range []string{"pages", "category", "all", "list", "info", "serve", "import"} {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
	assert.Contains(t, helpOutput, "Usage:")
	assert.Contains(t, helpOutput, "Flags:")
}

func TestMain_Run_NoArguments(t *testing.T) {
	t.Parallel()

	err := main.NewMain().Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})

	assert.ErrorContains(t, err, "no command specified")
}

func TestMain_Run_InvalidConfig(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.config = filepath.Join(env.dir, "semjson.yaml")
	require.NoError(t, os.WriteFile(env.config, []byte("renderer: pandoc\n"), 0o600))

	_, _, err := env.run(t, "info")

	assert.ErrorContains(t, err, "unknown renderer")
}

func TestMain_Run_ExportsImportedPages(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.importDump(t)

	t.Run("pages", func(t *testing.T) {
		stdout, _, err := env.run(t, "pages", "Wooden bench")

		require.NoError(t, err)
		assert.Contains(t, stdout, `{"results":[`)
		assert.Contains(t, stdout, `"title":"Wooden bench"`)
		assert.Contains(t, stdout, `"creator":"Alice"`)
		assert.Contains(t, stdout, `"Difficulty":"Easy"`)
		assert.Contains(t, stdout, `{"id":"Furniture","name":"Furniture"}`)
	})

	t.Run("pages with rendered fields", func(t *testing.T) {
		stdout, _, err := env.run(t, "pages", "--fields", "Difficulty", "Wooden bench")

		require.NoError(t, err)
		assert.Contains(t, stdout, `"Difficulty":"<p>Easy</p>"`)
	})

	t.Run("pages with date filter", func(t *testing.T) {
		stdout, _, err := env.run(t, "pages", "--since", "2024-01-01", "Wooden bench")

		require.NoError(t, err)
		assert.Equal(t, `{"results":[]}`, stdout)
	})

	t.Run("category", func(t *testing.T) {
		stdout, _, err := env.run(t, "category", "Furniture")

		require.NoError(t, err)
		assert.Contains(t, stdout, `"title":"Wooden bench"`)
	})

	t.Run("info", func(t *testing.T) {
		stdout, _, err := env.run(t, "info")

		require.NoError(t, err)
		assert.Contains(t, stdout, `"type":"wiki"`)
		assert.Contains(t, stdout, `"name":"Wikifab"`)
		assert.Contains(t, stdout, `"type":"next","offset":0`)
	})

	t.Run("list", func(t *testing.T) {
		stdout, _, err := env.run(t, "list", "--limit", "10")

		require.NoError(t, err)
		assert.Contains(t, stdout, `"title":"Wooden bench"`)
		assert.NotContains(t, stdout, "Chair")
		assert.Contains(t, stdout, `"type":"next","offset":10`)
	})

	t.Run("all to file", func(t *testing.T) {
		out := filepath.Join(env.dir, "export", "all.json")

		_, stderr, err := env.run(t, "all", "-o", out)

		require.NoError(t, err)
		assert.Contains(t, stderr, "Wrote "+out)
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"title":"Wooden bench"`)
		assert.NotContains(t, string(data), "Chair")
	})

	t.Run("all with invalid restriction", func(t *testing.T) {
		_, stderr, err := env.run(t, "all", "-n", "main")

		require.Error(t, err)
		assert.Contains(t, stderr, "invalid namespace restriction")
	})
}

func TestMain_Run_ImportMissingFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	_, stderr, err := env.run(t, "import", filepath.Join(env.dir, "nope.xml"))

	require.Error(t, err)
	assert.Contains(t, stderr, "error:")
}
