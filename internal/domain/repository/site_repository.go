package repository

import (
	"context"

	"edge/internal/domain/entity"
)

// SiteRepository resolves request paths against the static build output.
type SiteRepository interface {
	// Resolve applies the page fallback chain ending in index.html.
	Resolve(ctx context.Context, requestPath string) (entity.ResolvedFile, error)
	// ResolveAsset only serves files that exist as requested.
	ResolveAsset(ctx context.Context, requestPath string) (entity.ResolvedFile, error)
	Available() bool
}
