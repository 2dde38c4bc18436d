package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/semjson"
	"github.com/fwojciec/semjson/export"
	"github.com/fwojciec/semjson/fs"
	"github.com/fwojciec/semjson/goldmark"
	"github.com/fwojciec/semjson/goquery"
	"github.com/fwojciec/semjson/htmltomarkdown"
	semhttp "github.com/fwojciec/semjson/http"
	"github.com/fwojciec/semjson/jsoniter"
	semslog "github.com/fwojciec/semjson/slog"
	"github.com/fwojciec/semjson/sqlite"
	"github.com/fwojciec/semjson/wikitext"
	"github.com/fwojciec/semjson/yaml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Config is the effective configuration, set by Run.
	Config *yaml.Config

	// Renderer overrides the configured renderer. Used for end-to-end
	// testing.
	Renderer semjson.Renderer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("semjson"),
		kong.Description("Export wiki pages and their template fields as JSON"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'semjson --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := yaml.LoadConfigFile(cli.Config)
	if err != nil {
		return err
	}
	cli.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.Config = cfg

	level := slog.LevelInfo
	if cli.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	m.DB = sqlite.NewDB(cfg.DB)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SEMJSON_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", cfg.DB, err)
	}
	defer m.Close()

	pageService := sqlite.NewPageService(m.DB)
	siteService := sqlite.NewSiteService(m.DB)

	// Prefer the imported site name unless one was configured.
	if cfg.Export.SiteName == export.DefaultConfig().SiteName {
		if name, err := siteService.SiteName(ctx); err == nil && name != "" {
			cfg.Export.SiteName = name
		}
	}

	var (
		pages      semjson.PageService     = pageService
		categories semjson.CategoryService = pageService
		site       semjson.SiteService     = siteService
	)
	renderer := m.Renderer
	if renderer == nil {
		renderer = newRenderer(cfg)
	}
	if cli.Debug {
		pages = semslog.NewLoggingPageService(pages, logger)
		categories = semslog.NewLoggingCategoryService(categories, logger)
		site = semslog.NewLoggingSiteService(site, logger)
		if renderer != nil {
			renderer = semslog.NewLoggingRenderer(renderer, logger)
		}
	}

	files := fs.NewFileStore()
	locator := wikitext.NewLocator()

	deps.Logger = logger
	deps.PageWriter = pageService
	deps.Site = siteService
	deps.Dumps = semhttp.NewDumpClient(nil)
	deps.NewController = func(fields []string) *export.Controller {
		exportCfg := cfg.Export
		if len(fields) > 0 {
			exportCfg.FieldsToParse = fields
		}
		c := export.NewController(exportCfg)
		c.Pages = pages
		c.Categories = categories
		c.Site = site
		c.Files = files
		c.Serializer = jsoniter.NewSerializer()
		c.Locator = locator
		c.Renderer = renderer
		c.Pacer = export.NewIntervalPacer(cfg.Pace.Every, cfg.Pace.Delay)
		c.Logger = logger
		return c
	}

	return kongCtx.Run(deps)
}

// newRenderer builds the field renderer selected by cfg. Returns nil if
// rendering is disabled.
func newRenderer(cfg *yaml.Config) semjson.Renderer {
	var r semjson.Renderer
	switch cfg.Renderer {
	case yaml.RendererAPI:
		r = goquery.NewRenderer(
			semhttp.NewRenderer(cfg.APIURL,
				semhttp.WithRateLimit(cfg.RateLimit),
				semhttp.WithRetryDelays(semhttp.DefaultRetryDelays()...),
			),
			cfg.Export.PagePrefix,
		)
	case yaml.RendererGoldmark:
		r = goldmark.NewRenderer()
	default:
		return nil
	}
	if cfg.Markdown {
		r = htmltomarkdown.NewRenderer(r)
	}
	return r
}
