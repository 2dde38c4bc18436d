package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/semjson"
	"github.com/fwojciec/semjson/etree"
)

// Run executes the import command.
func (c *ImportCmd) Run(deps *Dependencies) error {
	var r io.ReadCloser
	if strings.HasPrefix(c.Source, "http://") || strings.HasPrefix(c.Source, "https://") {
		body, err := deps.Dumps.OpenDump(deps.Ctx, c.Source)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", semjson.ErrorMessage(err))
			return err
		}
		r = body
	} else {
		f, err := os.Open(c.Source)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", err)
			return err
		}
		r = f
	}
	defer r.Close()

	importer := etree.NewImporter(deps.PageWriter)
	importer.Logger = deps.Logger

	result, err := importer.Import(deps.Ctx, r)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", semjson.ErrorMessage(err))
		return err
	}

	if result.SiteName != "" {
		if err := deps.Site.SetSiteName(deps.Ctx, result.SiteName); err != nil {
			return fmt.Errorf("store site name: %w", err)
		}
	}
	if result.MainPage != "" {
		if err := deps.Site.SetMainPage(deps.Ctx, result.MainPage); err != nil {
			deps.Logger.Warn("ignoring main page", "name", result.MainPage, "err", err)
		}
	}

	fmt.Fprintf(deps.Stdout, "Imported %d pages (%d skipped)\n", result.Imported, result.Skipped)
	return nil
}
