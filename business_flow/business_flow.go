// Package businessflow contains the business logic for the application.
package businessflow

import (
	"github.com/amirphl/referral-hub/app/dto"
	"github.com/amirphl/referral-hub/models"
	"github.com/amirphl/referral-hub/utils"
)

// ClientMetadata holds client information attached to submissions and logs
type ClientMetadata struct {
	IPAddress string `json:"ipAddress"`
	UserAgent string `json:"userAgent"`
	RequestID string `json:"requestId,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToReferralRequestItem converts a stored referral request for listings
func ToReferralRequestItem(r models.ReferralRequest) dto.ReferralRequestItem {
	return dto.ReferralRequestItem{
		ID:          r.ID,
		Status:      string(r.Status),
		Message:     r.Message,
		RequesterID: r.RequesterID,
		ReferralID:  r.ReferralID,
		ResumeURL:   r.ResumeURL,
		CreatedAt:   utils.Timestamp(r.CreatedAt),
	}
}

// ToAuthorSummary converts a user to the summary embedded in cards
func ToAuthorSummary(u models.User) dto.AuthorSummary {
	return dto.AuthorSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}
