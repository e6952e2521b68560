package models

import (
	"time"

	"github.com/amirphl/referral-hub/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReferralRequestStatus is the review state of a request
type ReferralRequestStatus string

const (
	ReferralRequestStatusPending  ReferralRequestStatus = "pending"
	ReferralRequestStatusApproved ReferralRequestStatus = "approved"
	ReferralRequestStatusRejected ReferralRequestStatus = "rejected"
)

// ReferralRequest represents a candidate asking a referral author to refer them
// Table: referral_requests
// Indices: requester_id, referral_id, status
type ReferralRequest struct {
	ID          string                `gorm:"primaryKey;type:varchar(64)" json:"id" yaml:"id"`
	Status      ReferralRequestStatus `gorm:"size:16;not null;default:'pending';index:idx_referral_requests_status" json:"status" yaml:"status"`
	Message     string                `gorm:"type:text" json:"message" yaml:"message"`
	RequesterID string                `gorm:"type:varchar(64);not null;index:idx_referral_requests_requester_id" json:"requester_id" yaml:"requester_id"`
	ReferralID  string                `gorm:"type:varchar(64);not null;index:idx_referral_requests_referral_id" json:"referral_id" yaml:"referral_id"`
	ResumeURL   *string               `gorm:"size:1024" json:"resume_url,omitempty" yaml:"resume_url,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at" yaml:"-"`
}

func (ReferralRequest) TableName() string { return "referral_requests" }

func (r *ReferralRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = ReferralRequestStatusPending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = utils.UTCNow()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	return nil
}

// ReferralRequestFilter represents filter criteria for referral request queries
type ReferralRequestFilter struct {
	ID          *string
	RequesterID *string
	ReferralID  *string
	Status      *ReferralRequestStatus
}
