package main

import (
	"fmt"

	"github.com/fwojciec/semjson"
)

// Run executes the pages command.
func (c *PagesCmd) Run(deps *Dependencies) error {
	since, err := semjson.ParseRevisionDate(c.Since)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", semjson.ErrorMessage(err))
		return err
	}
	return deps.NewController(nil).PrintPages(deps.Ctx, deps.Stdout, c.Names, c.Recursive, since)
}

// Run executes the category command.
func (c *CategoryCmd) Run(deps *Dependencies) error {
	since, err := semjson.ParseRevisionDate(c.Since)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", semjson.ErrorMessage(err))
		return err
	}
	return deps.NewController(nil).PrintCategories(deps.Ctx, deps.Stdout, c.Names, since)
}

// Run executes the all command.
func (c *AllCmd) Run(deps *Dependencies) error {
	restriction, err := semjson.ParseRestriction(c.Restriction)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", semjson.ErrorMessage(err))
		return err
	}

	ctrl := deps.NewController(nil)
	if c.Output == "" {
		return ctrl.PrintAllToOutput(deps.Ctx, deps.Stdout, restriction)
	}
	if err := ctrl.PrintAllToFile(deps.Ctx, c.Output, restriction); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stderr, "Wrote %s\n", c.Output)
	return nil
}

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	return deps.NewController(nil).PrintPageList(deps.Ctx, deps.Stdout, c.Offset, c.Limit)
}

// Run executes the info command.
func (c *InfoCmd) Run(deps *Dependencies) error {
	return deps.NewController(nil).PrintWikiInfo(deps.Ctx, deps.Stdout)
}
