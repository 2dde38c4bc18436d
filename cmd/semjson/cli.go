package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/semjson"
	"github.com/fwojciec/semjson/export"
	semhttp "github.com/fwojciec/semjson/http"
	"github.com/fwojciec/semjson/sqlite"
	"github.com/fwojciec/semjson/yaml"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
	PageWriter semjson.PageWriter
	Site       *sqlite.SiteService
	Dumps      *semhttp.DumpClient

	// NewController returns a controller rendering the given fields, or
	// the configured fields if none are given.
	NewController func(fields []string) *export.Controller
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config   string   `short:"c" env:"SEMJSON_CONFIG" default:"semjson.yaml" help:"Configuration file"`
	DB       string   `env:"SEMJSON_DB" help:"SQLite content database (overrides config)"`
	Fields   []string `short:"f" sep:"," help:"Fields to render, comma separated (overrides config)"`
	Renderer string   `help:"Field renderer: none, goldmark or api (overrides config)"`
	APIURL   string   `name:"api-url" help:"MediaWiki API endpoint for the api renderer"`
	Markdown bool     `help:"Convert rendered fields to Markdown"`
	Debug    bool     `help:"Log collaborator calls"`

	Pages    PagesCmd    `cmd:"" help:"Export the named pages"`
	Category CategoryCmd `cmd:"" help:"Export the members of categories"`
	All      AllCmd      `cmd:"" help:"Export every semantic page"`
	List     ListCmd     `cmd:"" help:"Export one page of the page list"`
	Info     InfoCmd     `cmd:"" help:"Export site information"`
	Serve    ServeCmd    `cmd:"" help:"Serve exports over HTTP"`
	Import   ImportCmd   `cmd:"" help:"Import a MediaWiki XML dump"`
}

// apply overrides cfg with the global flags that were set.
func (c *CLI) apply(cfg *yaml.Config) {
	if c.DB != "" {
		cfg.DB = c.DB
	}
	if c.Renderer != "" {
		cfg.Renderer = c.Renderer
	}
	if c.APIURL != "" {
		cfg.APIURL = c.APIURL
	}
	if c.Markdown {
		cfg.Markdown = true
	}
	if len(c.Fields) > 0 {
		cfg.Export.FieldsToParse = c.Fields
	}
}

// PagesCmd is the "pages" subcommand.
type PagesCmd struct {
	Names     []string `arg:"" help:"Page names, e.g. 'Category:Furniture'"`
	Recursive bool     `short:"r" help:"Expand dependencies without depth limit"`
	Since     string   `help:"Skip pages last revised before this date"`
}

// CategoryCmd is the "category" subcommand.
type CategoryCmd struct {
	Names []string `arg:"" help:"Category names without prefix"`
	Since string   `help:"Skip pages last revised before this date"`
}

// AllCmd is the "all" subcommand.
type AllCmd struct {
	Output      string `short:"o" help:"Write to this file instead of stdout"`
	Restriction string `short:"n" help:"Namespace restriction: a namespace, a comma separated list, or a negative number to skip structural namespaces"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Offset int `default:"0" help:"Index of the first page"`
	Limit  int `default:"30" help:"Number of pages"`
}

// InfoCmd is the "info" subcommand.
type InfoCmd struct{}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:":8080" help:"Listen address"`
}

// ImportCmd is the "import" subcommand.
type ImportCmd struct {
	Source string `arg:"" help:"Dump file path or http(s) URL"`
}
