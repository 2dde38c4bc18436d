package semjson

import "context"

// SiteStats holds site-wide statistics of the host wiki.
type SiteStats struct {
	Pages        int
	ContentPages int
	Media        int
	Edits        int
	Users        int
	Admins       int
	MainPage     *PageRef
}

// SiteService provides site-wide statistics.
type SiteService interface {
	FindSiteStats(ctx context.Context) (*SiteStats, error)
}
