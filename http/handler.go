package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/semjson"
)

// Exporter runs exports to a writer. It is implemented by export.Controller.
type Exporter interface {
	PrintPages(ctx context.Context, w io.Writer, names []string, recursive bool, since time.Time) error
	PrintCategories(ctx context.Context, w io.Writer, categories []string, since time.Time) error
	PrintPageList(ctx context.Context, w io.Writer, offset, limit int) error
	PrintWikiInfo(ctx context.Context, w io.Writer) error
}

// ContentType is the content type of export responses.
const ContentType = "application/json; charset=UTF-8"

// Handler serves exports selected by request parameters:
//
//	page, pages       export the named page, or the newline-separated pages
//	category(ies)     export the members of the named categories
//	offset            export one page of the page list
//	stats             export site information
//
// Modes are tried in that order. The recursive, date and fieldsToParse
// parameters refine page and category exports. Page exports recurse
// without limit unless recursive is 0 or false.
type Handler struct {
	// NewExporter returns the exporter of one request, rendering the
	// given fields.
	NewExporter func(fieldsToParse []string) Exporter

	Logger *slog.Logger
}

// NewHandler returns a Handler building exporters with newExporter.
func NewHandler(newExporter func(fieldsToParse []string) Exporter, logger *slog.Logger) *Handler {
	return &Handler{NewExporter: newExporter, Logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	run, err := h.route(r)
	if err != nil {
		http.Error(w, semjson.ErrorMessage(err), http.StatusBadRequest)
		return
	}

	exporter := h.NewExporter(splitList(r.Form.Get("fieldsToParse"), ","))
	out := &responseWriter{w: w}
	w.Header().Set("Content-Type", ContentType)

	if err := run(r.Context(), exporter, out); err != nil {
		logger.Error("export failed", "url", r.URL.String(), "err", err)
		if !out.written {
			http.Error(w, semjson.ErrorMessage(err), http.StatusInternalServerError)
		}
	}
}

type exportFunc func(ctx context.Context, e Exporter, w io.Writer) error

// route selects the export mode of a request.
func (h *Handler) route(r *http.Request) (exportFunc, error) {
	form := r.Form

	since, err := semjson.ParseRevisionDate(form.Get("date"))
	if err != nil {
		return nil, err
	}

	var pages []string
	if page := strings.TrimSpace(form.Get("page")); page != "" {
		pages = []string{page}
	} else {
		pages = splitList(form.Get("pages"), "\n")
	}
	if len(pages) > 0 {
		recursive := parseRecursive(form.Get("recursive"))
		return func(ctx context.Context, e Exporter, w io.Writer) error {
			return e.PrintPages(ctx, w, pages, recursive, since)
		}, nil
	}

	var categories []string
	if category := strings.TrimSpace(form.Get("category")); category != "" {
		categories = []string{category}
	} else {
		categories = splitList(form.Get("categories"), "\n")
	}
	if len(categories) > 0 {
		return func(ctx context.Context, e Exporter, w io.Writer) error {
			return e.PrintCategories(ctx, w, categories, since)
		}, nil
	}

	if form.Has("offset") {
		offset, err := parseCount(form.Get("offset"), "offset")
		if err != nil {
			return nil, err
		}
		limit, err := parseCount(form.Get("limit"), "limit")
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, e Exporter, w io.Writer) error {
			return e.PrintPageList(ctx, w, offset, limit)
		}, nil
	}

	if form.Has("stats") {
		return func(ctx context.Context, e Exporter, w io.Writer) error {
			return e.PrintWikiInfo(ctx, w)
		}, nil
	}

	return nil, semjson.Errorf(semjson.EINVALID, "nothing to export: set page, pages, category, categories, offset or stats")
}

// parseRecursive reports whether dependencies are expanded without limit.
// Expansion is unlimited unless the parameter is "0" or "false".
func parseRecursive(s string) bool {
	s = strings.TrimSpace(s)
	return s != "0" && !strings.EqualFold(s, "false")
}

func parseCount(s, name string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, semjson.Errorf(semjson.EINVALID, "invalid %s %q", name, s)
	}
	return n, nil
}

// splitList splits s on sep, dropping blank entries.
func splitList(s, sep string) []string {
	var out []string
	for _, item := range strings.Split(s, sep) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// responseWriter flushes every chunk to the client and records whether
// anything was written.
type responseWriter struct {
	w       http.ResponseWriter
	written bool
}

func (rw *responseWriter) Write(p []byte) (int, error) {
	rw.written = true
	return rw.w.Write(p)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.w.(http.Flusher); ok {
		f.Flush()
	}
}
