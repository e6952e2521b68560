package repository

import (
	"context"

	"github.com/amirphl/referral-hub/models"
	"gorm.io/gorm"
)

// TagRepositoryImpl implements TagRepository interface
type TagRepositoryImpl struct {
	*BaseRepository[models.Tag, models.TagFilter]
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &TagRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Tag, models.TagFilter](db, "tag", "created_at ASC, id ASC", filterTags),
	}
}

// ByName retrieves a tag by name
func (r *TagRepositoryImpl) ByName(ctx context.Context, name string) (*models.Tag, error) {
	return r.first(ctx, models.TagFilter{Name: &name})
}

// ListByIDs retrieves tags for a list of ids in catalog order
func (r *TagRepositoryImpl) ListByIDs(ctx context.Context, ids []string) ([]*models.Tag, error) {
	if len(ids) == 0 {
		return []*models.Tag{}, nil
	}
	return r.ByFilter(ctx, models.TagFilter{IDs: ids}, "", 0, 0)
}

// ListAll returns the whole tag catalog in insertion order
func (r *TagRepositoryImpl) ListAll(ctx context.Context) ([]*models.Tag, error) {
	return r.ByFilter(ctx, models.TagFilter{}, "", 0, 0)
}

func filterTags(query *gorm.DB, filter models.TagFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}
