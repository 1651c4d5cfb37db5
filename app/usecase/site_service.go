package usecase

import (
	"context"
	"errors"
	"fmt"

	"edge/internal/domain/entity"
	"edge/internal/domain/repository"
	"edge/internal/infrastructure/metrics"
)

type SiteUsecase interface {
	ResolvePage(ctx context.Context, requestPath string) (entity.ResolvedFile, error)
	ResolveAsset(ctx context.Context, requestPath string) (entity.ResolvedFile, error)
}

type SiteService struct {
	repo repository.SiteRepository
}

func NewSiteService(repo repository.SiteRepository) SiteUsecase {
	return &SiteService{repo: repo}
}

var _ SiteUsecase = (*SiteService)(nil)

func (s *SiteService) ResolvePage(ctx context.Context, requestPath string) (entity.ResolvedFile, error) {
	file, err := s.repo.Resolve(ctx, requestPath)
	return observe(file, err, "page")
}

func (s *SiteService) ResolveAsset(ctx context.Context, requestPath string) (entity.ResolvedFile, error) {
	file, err := s.repo.ResolveAsset(ctx, requestPath)
	return observe(file, err, "asset")
}

func observe(file entity.ResolvedFile, err error, kind string) (entity.ResolvedFile, error) {
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			metrics.IncStaticResolution("not_found")
		} else {
			metrics.IncError("site", kind+"_resolve")
		}
		return entity.ResolvedFile{}, fmt.Errorf("resolve %s: %w", kind, err)
	}
	metrics.IncStaticResolution(string(file.Source))
	return file, nil
}
