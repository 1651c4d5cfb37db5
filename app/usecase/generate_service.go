package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"edge/internal/domain/entity"
	"edge/internal/domain/repository"
)

type GenerateUsecase interface {
	Generate(ctx context.Context, req entity.GenerateRequest) (entity.UpstreamResponse, error)
}

var _ GenerateUsecase = (*GenerateService)(nil)

// GenerateService forwards one query per call to the query service, without retries.
type GenerateService struct {
	generator repository.QueryGenerator
	logger    *slog.Logger
}

func NewGenerateService(generator repository.QueryGenerator, logger *slog.Logger) *GenerateService {
	return &GenerateService{
		generator: generator,
		logger:    logger,
	}
}

func (s *GenerateService) Generate(ctx context.Context, req entity.GenerateRequest) (entity.UpstreamResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return entity.UpstreamResponse{}, fmt.Errorf("%w: query is required", entity.ErrBadRequest)
	}

	s.logger.Debug("forwarding query", "query_len", len(req.Query))

	resp, err := s.generator.Generate(ctx, req.Query)
	if err != nil {
		return entity.UpstreamResponse{}, fmt.Errorf("generate: %w", err)
	}
	return resp, nil
}
