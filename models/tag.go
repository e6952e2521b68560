package models

import (
	"time"

	"github.com/amirphl/referral-hub/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag represents a skill or domain label attached to referrals
// Table: tags
// Unique by name
// Color is optional display metadata; clients fall back to the palette when empty
type Tag struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id" yaml:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:uk_tags_name" json:"name" yaml:"name"`
	Color     *string   `gorm:"size:32" json:"color,omitempty" yaml:"color,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at" yaml:"-"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at" yaml:"-"`
}

func (Tag) TableName() string { return "tags" }

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = utils.UTCNow()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	return nil
}

// TagFilter represents filter criteria for tag queries
type TagFilter struct {
	ID            *string
	IDs           []string
	Name          *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
