package repository

import (
	"context"

	"edge/internal/domain/entity"
)

// QueryGenerator forwards a query to the upstream query service.
type QueryGenerator interface {
	Generate(ctx context.Context, query string) (entity.UpstreamResponse, error)
}
