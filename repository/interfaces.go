// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/amirphl/referral-hub/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id string) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// UserRepository defines operations for users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ListAll(ctx context.Context) ([]*models.User, error)
}

// TagRepository defines operations for tags
type TagRepository interface {
	Repository[models.Tag, models.TagFilter]
	ByName(ctx context.Context, name string) (*models.Tag, error)
	ListByIDs(ctx context.Context, ids []string) ([]*models.Tag, error)
	ListAll(ctx context.Context) ([]*models.Tag, error)
}

// ReferralRepository defines operations for referrals
type ReferralRepository interface {
	Repository[models.Referral, models.ReferralFilter]
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Referral, error)
	ListActive(ctx context.Context, limit, offset int) ([]*models.Referral, error)
	ListAll(ctx context.Context) ([]*models.Referral, error)
}

// ReferralRequestRepository defines operations for referral requests
type ReferralRequestRepository interface {
	Repository[models.ReferralRequest, models.ReferralRequestFilter]
	ListByRequester(ctx context.Context, requesterID string) ([]*models.ReferralRequest, error)
	ListByReferral(ctx context.Context, referralID string) ([]*models.ReferralRequest, error)
}

// CatalogReader supplies the three flat collections the listing logic works on.
// Implementations only need read access; how the data is stored is their concern.
type CatalogReader interface {
	Load(ctx context.Context) (*models.Catalog, error)
}

// CatalogInvalidator is implemented by readers that keep a snapshot of the catalog.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context) error
}
