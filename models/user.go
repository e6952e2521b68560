package models

import (
	"time"

	"github.com/amirphl/referral-hub/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a member who posts referrals or requests them
// Table: users
// Unique by email; ids are opaque strings (UUIDs for rows created by the service)
// Profile fields are free text and optional
// Timestamps default to UTC at DB level
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id" yaml:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" yaml:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex:uk_users_email" json:"email" yaml:"email"`
	Image     *string   `gorm:"size:512" json:"image,omitempty" yaml:"image,omitempty"`
	Bio       string    `gorm:"type:text" json:"bio,omitempty" yaml:"bio,omitempty"`
	Company   string    `gorm:"size:255" json:"company,omitempty" yaml:"company,omitempty"`
	Title     string    `gorm:"size:255" json:"title,omitempty" yaml:"title,omitempty"`
	Location  string    `gorm:"size:255" json:"location,omitempty" yaml:"location,omitempty"`
	LinkedIn  string    `gorm:"column:linkedin;size:512" json:"linkedin,omitempty" yaml:"linkedin,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_users_created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at" yaml:"-"`
}

func (User) TableName() string { return "users" }

// BeforeCreate ensures ID and timestamps are set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = utils.UTCNow()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}
	return nil
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID            *string
	IDs           []string
	Email         *string
	Company       *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
