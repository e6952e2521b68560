package businessflow

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/amirphl/referral-hub/app/dto"
	"github.com/amirphl/referral-hub/app/services"
	"github.com/amirphl/referral-hub/models"
	"github.com/amirphl/referral-hub/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const referralRequestSubmittedMessage = "Referral request submitted successfully"

// ReferralRequestLister reads stored referral requests.
// repository.ReferralRequestRepository and repository.DatasetReferralRequests both satisfy it.
type ReferralRequestLister interface {
	ListByRequester(ctx context.Context, requesterID string) ([]*models.ReferralRequest, error)
	ListByReferral(ctx context.Context, referralID string) ([]*models.ReferralRequest, error)
}

// ReferralRequestFlow handles referral request intake and lookups
type ReferralRequestFlow interface {
	Submit(ctx context.Context, req *dto.SubmitReferralRequestRequest, metadata *ClientMetadata) (*dto.SubmitReferralRequestResponse, error)
	ListByRequester(ctx context.Context, userID string) (*dto.ListReferralRequestsResponse, error)
	ListByReferral(ctx context.Context, referralID string) (*dto.ListReferralRequestsResponse, error)
}

// ReferralRequestFlowImpl implements ReferralRequestFlow
type ReferralRequestFlowImpl struct {
	lister    ReferralRequestLister
	publisher services.EventPublisher
	validator *validator.Validate
	newID     func() string
	now       func() time.Time

	// checkFormats rejects malformed linkedin, email and cv values. Off by default:
	// intake only requires the fields to be present.
	checkFormats bool
}

// ReferralRequestFlowOption configures a ReferralRequestFlowImpl
type ReferralRequestFlowOption func(*ReferralRequestFlowImpl)

// WithFormatChecks makes Submit reject a linkedinUrl outside linkedin.com, a malformed email
// and a non-http cvUrl
func WithFormatChecks() ReferralRequestFlowOption {
	return func(f *ReferralRequestFlowImpl) {
		f.checkFormats = true
	}
}

// NewReferralRequestFlow creates the intake flow. publisher may be nil to skip event publishing.
func NewReferralRequestFlow(lister ReferralRequestLister, publisher services.EventPublisher, opts ...ReferralRequestFlowOption) ReferralRequestFlow {
	f := &ReferralRequestFlowImpl{
		lister:    lister,
		publisher: publisher,
		validator: validator.New(),
		newID:     func() string { return utils.ReferralRequestIDPrefix + uuid.NewString() },
		now:       utils.UTCNow,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Submit validates an intake payload and acknowledges it with a fresh request id.
// Nothing is stored; the submission is announced as an event on a best-effort basis.
func (f *ReferralRequestFlowImpl) Submit(ctx context.Context, req *dto.SubmitReferralRequestRequest, metadata *ClientMetadata) (*dto.SubmitReferralRequestResponse, error) {
	if req == nil {
		referralRequestsSubmitted.WithLabelValues("missing_fields").Inc()
		return nil, ErrMissingRequiredFields
	}

	if err := f.validate(req); err != nil {
		outcome := "invalid_field"
		if IsMissingRequiredFields(err) {
			outcome = "missing_fields"
		}
		referralRequestsSubmitted.WithLabelValues(outcome).Inc()
		return nil, err
	}

	requestID := f.newID()
	f.publish(ctx, requestID, req, metadata)

	referralRequestsSubmitted.WithLabelValues("accepted").Inc()
	log.Printf(`{"level":"info","event":"referral_request_submitted","request_id":"%s","tags":%d}`, requestID, len(req.Tags))

	return &dto.SubmitReferralRequestResponse{
		Success:   true,
		Message:   referralRequestSubmittedMessage,
		RequestID: requestID,
	}, nil
}

func (f *ReferralRequestFlowImpl) validate(req *dto.SubmitReferralRequestRequest) error {
	if err := f.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return NewBusinessError("VALIDATION_FAILED", "Failed to validate request", err)
		}
		for _, fe := range verrs {
			switch fe.Tag() {
			case "required", "min":
				return ErrMissingRequiredFields
			}
		}
		return NewBusinessError("INVALID_FIELD", verrs[0].Field()+" is invalid", verrs[0])
	}

	if !f.checkFormats {
		return nil
	}
	if err := f.validator.Var(req.Email, "email"); err != nil {
		return ErrInvalidEmail
	}
	if !strings.Contains(req.LinkedinURL, "linkedin.com/") {
		return ErrInvalidLinkedinURL
	}
	if req.CvURL != nil && *req.CvURL != "" && !strings.HasPrefix(*req.CvURL, "http") {
		return ErrInvalidCvURL
	}
	return nil
}

func (f *ReferralRequestFlowImpl) publish(ctx context.Context, requestID string, req *dto.SubmitReferralRequestRequest, metadata *ClientMetadata) {
	if f.publisher == nil {
		return
	}

	tagIDs := make([]string, 0, len(req.Tags))
	for _, t := range req.Tags {
		tagIDs = append(tagIDs, t.ID)
	}
	event := dto.ReferralRequestSubmittedEvent{
		Type:        utils.ReferralRequestSubmittedType,
		RequestID:   requestID,
		LinkedinURL: req.LinkedinURL,
		Email:       req.Email,
		TagIDs:      tagIDs,
		CvURL:       req.CvURL,
		ReferralID:  req.ReferralID,
		SubmittedAt: utils.Timestamp(f.now()),
	}
	if metadata != nil {
		event.IPAddress = metadata.IPAddress
		event.UserAgent = metadata.UserAgent
	}

	if err := f.publisher.Publish(ctx, event); err != nil {
		log.Printf(`{"level":"warn","event":"referral_request_publish_failed","request_id":"%s","error":"%v"}`, requestID, err)
	}
}

// ListByRequester returns the referral requests a user made
func (f *ReferralRequestFlowImpl) ListByRequester(ctx context.Context, userID string) (*dto.ListReferralRequestsResponse, error) {
	rows, err := f.lister.ListByRequester(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("LIST_REFERRAL_REQUESTS_FAILED", "Failed to list referral requests", err)
	}
	return toReferralRequestList(rows), nil
}

// ListByReferral returns the requests made against a referral
func (f *ReferralRequestFlowImpl) ListByReferral(ctx context.Context, referralID string) (*dto.ListReferralRequestsResponse, error) {
	rows, err := f.lister.ListByReferral(ctx, referralID)
	if err != nil {
		return nil, NewBusinessError("LIST_REFERRAL_REQUESTS_FAILED", "Failed to list referral requests", err)
	}
	return toReferralRequestList(rows), nil
}

func toReferralRequestList(rows []*models.ReferralRequest) *dto.ListReferralRequestsResponse {
	items := make([]dto.ReferralRequestItem, 0, len(rows))
	for _, r := range rows {
		if r != nil {
			items = append(items, ToReferralRequestItem(*r))
		}
	}
	return &dto.ListReferralRequestsResponse{Items: items, Total: len(items)}
}
