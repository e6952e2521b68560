package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/referral-hub/models"
)

// GormCatalogReader loads the catalog through the entity repositories
type GormCatalogReader struct {
	userRepo     UserRepository
	referralRepo ReferralRepository
	tagRepo      TagRepository
}

// NewGormCatalogReader creates a database-backed catalog reader
func NewGormCatalogReader(userRepo UserRepository, referralRepo ReferralRepository, tagRepo TagRepository) *GormCatalogReader {
	return &GormCatalogReader{userRepo: userRepo, referralRepo: referralRepo, tagRepo: tagRepo}
}

// Load reads all users, referrals and tags in insertion order
func (r *GormCatalogReader) Load(ctx context.Context) (*models.Catalog, error) {
	users, err := r.userRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	referrals, err := r.referralRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load referrals: %w", err)
	}
	tags, err := r.tagRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}

	return &models.Catalog{
		Users:     derefAll(users),
		Referrals: derefAll(referrals),
		Tags:      derefAll(tags),
	}, nil
}

func derefAll[T any](rows []*T) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			out = append(out, *row)
		}
	}
	return out
}
