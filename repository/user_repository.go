package repository

import (
	"context"

	"github.com/amirphl/referral-hub/models"
	"gorm.io/gorm"
)

// UserRepositoryImpl implements UserRepository interface
type UserRepositoryImpl struct {
	*BaseRepository[models.User, models.UserFilter]
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{
		BaseRepository: NewBaseRepository[models.User, models.UserFilter](db, "user", "created_at ASC, id ASC", filterUsers),
	}
}

// ByEmail retrieves a user by email address
func (r *UserRepositoryImpl) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, models.UserFilter{Email: &email})
}

// ListAll returns every user in insertion order
func (r *UserRepositoryImpl) ListAll(ctx context.Context) ([]*models.User, error) {
	return r.ByFilter(ctx, models.UserFilter{}, "", 0, 0)
}

func filterUsers(query *gorm.DB, filter models.UserFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	if filter.Email != nil {
		query = query.Where("email = ?", *filter.Email)
	}
	if filter.Company != nil {
		query = query.Where("LOWER(company) = LOWER(?)", *filter.Company)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}
