package models

import (
	"strings"
	"time"

	"github.com/amirphl/referral-hub/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// WorkType is the arrangement a referral offers. Values are stored verbatim,
// so display spellings such as "On-site" written by older clients survive a round trip.
type WorkType string

const (
	WorkTypeRemote WorkType = "remote"
	WorkTypeOnsite WorkType = "onsite"
	WorkTypeHybrid WorkType = "hybrid"
)

// ParseWorkType maps the lower-case, display and hyphenated spellings onto a known work type.
func ParseWorkType(s string) (WorkType, bool) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "")) {
	case "remote":
		return WorkTypeRemote, true
	case "onsite":
		return WorkTypeOnsite, true
	case "hybrid":
		return WorkTypeHybrid, true
	}
	return "", false
}

// ReferralStatus tracks whether a referral still accepts requests
type ReferralStatus string

const (
	ReferralStatusActive ReferralStatus = "active"
	ReferralStatusClosed ReferralStatus = "closed"
)

// Referral represents a job referral posted by a user
// Table: referrals
// Indices: author_id, status, location, company, created_at
// TagIDs keeps the author's tag order and is stored as TEXT[]
// AuthorID and TagIDs are not foreign keys: partially seeded data must still load
type Referral struct {
	ID                 string         `gorm:"primaryKey;type:varchar(64)" json:"id" yaml:"id"`
	Title              string         `gorm:"size:255;not null" json:"title" yaml:"title"`
	Description        string         `gorm:"type:text;not null" json:"description" yaml:"description"`
	Company            string         `gorm:"size:255;index:idx_referrals_company" json:"company,omitempty" yaml:"company,omitempty"`
	Location           string         `gorm:"size:255;not null;index:idx_referrals_location" json:"location" yaml:"location"`
	WorkType           WorkType       `gorm:"size:32;not null" json:"work_type" yaml:"work_type"`
	AuthorID           string         `gorm:"type:varchar(64);not null;index:idx_referrals_author_id" json:"author_id" yaml:"author_id"`
	TagIDs             pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"tag_ids" yaml:"tags"`
	Status             ReferralStatus `gorm:"size:16;not null;default:'active';index:idx_referrals_status" json:"status" yaml:"status"`
	Department         string         `gorm:"size:255" json:"department,omitempty" yaml:"department,omitempty"`
	Requirements       string         `gorm:"type:text" json:"requirements,omitempty" yaml:"requirements,omitempty"`
	Salary             string         `gorm:"size:255" json:"salary,omitempty" yaml:"salary,omitempty"`
	Benefits           pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"benefits,omitempty" yaml:"benefits,omitempty"`
	ApplicationProcess string         `gorm:"type:text" json:"application_process,omitempty" yaml:"application_process,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_referrals_created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at" yaml:"-"`
}

func (Referral) TableName() string { return "referrals" }

// BeforeCreate ensures ID, status and timestamps are set
func (r *Referral) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = ReferralStatusActive
	}
	if r.TagIDs == nil {
		r.TagIDs = pq.StringArray{}
	}
	if r.Benefits == nil {
		r.Benefits = pq.StringArray{}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = utils.UTCNow()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	return nil
}

// IsActive reports whether the referral is open for requests
func (r Referral) IsActive() bool {
	return r.Status == ReferralStatusActive
}

// ReferralFilter represents filter criteria for referral queries
type ReferralFilter struct {
	ID            *string
	AuthorID      *string
	Status        *ReferralStatus
	WorkType      *WorkType
	Company       *string
	Location      *string
	TagID         *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
