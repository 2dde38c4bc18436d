package mock

import (
	"context"

	"github.com/fwojciec/semjson"
)

// Compile-time interface verification.
var (
	_ semjson.PageService     = (*PageService)(nil)
	_ semjson.CategoryService = (*CategoryService)(nil)
	_ semjson.PageWriter      = (*PageWriter)(nil)
)

// PageService is a mock implementation of semjson.PageService.
type PageService struct {
	FindPageByNameFn  func(ctx context.Context, name string) (*semjson.PageRef, error)
	FindPageByIDFn    func(ctx context.Context, id int) (*semjson.PageRef, error)
	FindPagesFn       func(ctx context.Context, filter semjson.PageFilter) ([]*semjson.PageRef, error)
	MaxPageIDFn       func(ctx context.Context) (int, error)
	FindPageInfoFn    func(ctx context.Context, ref *semjson.PageRef) (*semjson.PageInfo, error)
	FindPageContentFn func(ctx context.Context, ref *semjson.PageRef) (string, error)
	FindPageLinksFn   func(ctx context.Context, ref *semjson.PageRef) ([]*semjson.PageRef, error)
}

func (s *PageService) FindPageByName(ctx context.Context, name string) (*semjson.PageRef, error) {
	return s.FindPageByNameFn(ctx, name)
}

func (s *PageService) FindPageByID(ctx context.Context, id int) (*semjson.PageRef, error) {
	return s.FindPageByIDFn(ctx, id)
}

func (s *PageService) FindPages(ctx context.Context, filter semjson.PageFilter) ([]*semjson.PageRef, error) {
	return s.FindPagesFn(ctx, filter)
}

func (s *PageService) MaxPageID(ctx context.Context) (int, error) {
	return s.MaxPageIDFn(ctx)
}

func (s *PageService) FindPageInfo(ctx context.Context, ref *semjson.PageRef) (*semjson.PageInfo, error) {
	return s.FindPageInfoFn(ctx, ref)
}

func (s *PageService) FindPageContent(ctx context.Context, ref *semjson.PageRef) (string, error) {
	return s.FindPageContentFn(ctx, ref)
}

func (s *PageService) FindPageLinks(ctx context.Context, ref *semjson.PageRef) ([]*semjson.PageRef, error) {
	return s.FindPageLinksFn(ctx, ref)
}

// CategoryService is a mock implementation of semjson.CategoryService.
type CategoryService struct {
	FindCategoryMembersFn func(ctx context.Context, name string, limit int) ([]*semjson.PageRef, error)
}

func (s *CategoryService) FindCategoryMembers(ctx context.Context, name string, limit int) ([]*semjson.PageRef, error) {
	return s.FindCategoryMembersFn(ctx, name, limit)
}

// PageWriter is a mock implementation of semjson.PageWriter.
type PageWriter struct {
	CreatePageFn func(ctx context.Context, page *semjson.Page) (*semjson.PageRef, error)
}

func (w *PageWriter) CreatePage(ctx context.Context, page *semjson.Page) (*semjson.PageRef, error) {
	return w.CreatePageFn(ctx, page)
}
