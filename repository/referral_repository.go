package repository

import (
	"context"

	"github.com/amirphl/referral-hub/models"
	"gorm.io/gorm"
)

// ReferralRepositoryImpl implements ReferralRepository interface
type ReferralRepositoryImpl struct {
	*BaseRepository[models.Referral, models.ReferralFilter]
}

// NewReferralRepository creates a new referral repository
func NewReferralRepository(db *gorm.DB) ReferralRepository {
	return &ReferralRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Referral, models.ReferralFilter](db, "referral", "created_at ASC, id ASC", filterReferrals),
	}
}

// ListByAuthor returns the referrals a user posted
func (r *ReferralRepositoryImpl) ListByAuthor(ctx context.Context, authorID string) ([]*models.Referral, error) {
	return r.ByFilter(ctx, models.ReferralFilter{AuthorID: &authorID}, "", 0, 0)
}

// ListActive returns referrals still accepting requests
func (r *ReferralRepositoryImpl) ListActive(ctx context.Context, limit, offset int) ([]*models.Referral, error) {
	status := models.ReferralStatusActive
	return r.ByFilter(ctx, models.ReferralFilter{Status: &status}, "", limit, offset)
}

// ListAll returns every referral in posting order regardless of status
func (r *ReferralRepositoryImpl) ListAll(ctx context.Context) ([]*models.Referral, error) {
	return r.ByFilter(ctx, models.ReferralFilter{}, "", 0, 0)
}

func filterReferrals(query *gorm.DB, filter models.ReferralFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.AuthorID != nil {
		query = query.Where("author_id = ?", *filter.AuthorID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.WorkType != nil {
		query = query.Where("work_type = ?", *filter.WorkType)
	}
	if filter.Company != nil {
		query = query.Where("LOWER(company) = LOWER(?)", *filter.Company)
	}
	if filter.Location != nil {
		query = query.Where("location LIKE ?", "%"+*filter.Location+"%")
	}
	if filter.TagID != nil {
		query = query.Where("? = ANY(tag_ids)", *filter.TagID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}
