package semjson

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// timestampLayout is the compact revision timestamp format, e.g. 20240131235959.
const timestampLayout = "20060102150405"

// ParseRevisionDate parses a revision-date filter. It accepts compact
// revision timestamps as well as common free-form date layouts. An empty
// string yields the zero time.
func ParseRevisionDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if len(s) == len(timestampLayout) {
		if t, err := time.Parse(timestampLayout, s); err == nil {
			return t, nil
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, Errorf(EINVALID, "invalid date %q", s)
	}
	return t.UTC(), nil
}
