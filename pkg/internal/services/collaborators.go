package services

import (
	"context"

	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
)

// ProductCatalog snapshots a product from the external catalog by its url key.
type ProductCatalog interface {
	Snapshot(ctx context.Context, urlKey string) (models.RelatedProduct, error)
}

// IdentityResolver exchanges a commenter's bearer token for their external profile.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (models.ExternalIdentity, error)
}
