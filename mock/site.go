package mock

import (
	"context"

	"github.com/fwojciec/semjson"
)

var _ semjson.SiteService = (*SiteService)(nil)

// SiteService is a mock implementation of semjson.SiteService.
type SiteService struct {
	FindSiteStatsFn func(ctx context.Context) (*semjson.SiteStats, error)
}

func (s *SiteService) FindSiteStats(ctx context.Context) (*semjson.SiteStats, error) {
	return s.FindSiteStatsFn(ctx)
}
