package repository

import (
	"context"

	"github.com/amirphl/referral-hub/models"
	"gorm.io/gorm"
)

// ReferralRequestRepositoryImpl implements ReferralRequestRepository interface
type ReferralRequestRepositoryImpl struct {
	*BaseRepository[models.ReferralRequest, models.ReferralRequestFilter]
}

// NewReferralRequestRepository creates a new referral request repository. Rows list newest first.
func NewReferralRequestRepository(db *gorm.DB) ReferralRequestRepository {
	return &ReferralRequestRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ReferralRequest, models.ReferralRequestFilter](db, "referral request", "created_at DESC, id DESC", filterReferralRequests),
	}
}

// ListByRequester returns the requests a user made, newest first
func (r *ReferralRequestRepositoryImpl) ListByRequester(ctx context.Context, requesterID string) ([]*models.ReferralRequest, error) {
	return r.ByFilter(ctx, models.ReferralRequestFilter{RequesterID: &requesterID}, "", 0, 0)
}

// ListByReferral returns the requests made against a referral, newest first
func (r *ReferralRequestRepositoryImpl) ListByReferral(ctx context.Context, referralID string) ([]*models.ReferralRequest, error) {
	return r.ByFilter(ctx, models.ReferralRequestFilter{ReferralID: &referralID}, "", 0, 0)
}

func filterReferralRequests(query *gorm.DB, filter models.ReferralRequestFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.RequesterID != nil {
		query = query.Where("requester_id = ?", *filter.RequesterID)
	}
	if filter.ReferralID != nil {
		query = query.Where("referral_id = ?", *filter.ReferralID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}
