package dto

// SubmitReferralRequestRequest is the intake payload.
// Tags are accepted as full tag objects; only their presence is required.
type SubmitReferralRequestRequest struct {
	LinkedinURL string       `json:"linkedinUrl" validate:"required"`
	Email       string       `json:"email" validate:"required"`
	Tags        []TagSummary `json:"tags" validate:"required,min=1"`
	CvURL       *string      `json:"cvUrl,omitempty" validate:"omitempty"`
	ReferralID  *string      `json:"referralId,omitempty" validate:"omitempty"`
	Message     *string      `json:"message,omitempty" validate:"omitempty,max=2000"`
}

// SubmitReferralRequestResponse is returned with HTTP 200 on accepted submissions
type SubmitReferralRequestResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

// IntakeErrorResponse is the intake endpoint's error body
type IntakeErrorResponse struct {
	Error string `json:"error"`
}

// ReferralRequestSubmittedEvent is published after an accepted submission
type ReferralRequestSubmittedEvent struct {
	Type        string   `json:"type"`
	RequestID   string   `json:"requestId"`
	LinkedinURL string   `json:"linkedinUrl"`
	Email       string   `json:"email"`
	TagIDs      []string `json:"tagIds"`
	CvURL       *string  `json:"cvUrl,omitempty"`
	ReferralID  *string  `json:"referralId,omitempty"`
	IPAddress   string   `json:"ipAddress,omitempty"`
	UserAgent   string   `json:"userAgent,omitempty"`
	SubmittedAt string   `json:"submittedAt"`
}

// ReferralRequestItem is a stored referral request in listings
type ReferralRequestItem struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	RequesterID string  `json:"requesterId"`
	ReferralID  string  `json:"referralId"`
	ResumeURL   *string `json:"resumeUrl,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

// ListReferralRequestsResponse wraps a list of referral requests
type ListReferralRequestsResponse struct {
	Items []ReferralRequestItem `json:"items"`
	Total int                   `json:"total"`
}
