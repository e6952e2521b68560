package businessflow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/amirphl/referral-hub/app/dto"
	"github.com/amirphl/referral-hub/models"
	"github.com/amirphl/referral-hub/repository"
	"github.com/amirphl/referral-hub/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []any
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event any) error {
	p.events = append(p.events, event)
	return p.err
}

type failingLister struct{}

func (failingLister) ListByRequester(ctx context.Context, requesterID string) ([]*models.ReferralRequest, error) {
	return nil, errors.New("db down")
}

func (failingLister) ListByReferral(ctx context.Context, referralID string) ([]*models.ReferralRequest, error) {
	return nil, errors.New("db down")
}

func validSubmission() *dto.SubmitReferralRequestRequest {
	return &dto.SubmitReferralRequestRequest{
		LinkedinURL: "https://www.linkedin.com/in/john-smith",
		Email:       "john@example.com",
		Tags:        []dto.TagSummary{{ID: "2", Name: "React"}},
	}
}

func TestReferralRequestFlow_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("Accepted", func(t *testing.T) {
		pub := &recordingPublisher{}
		flow := NewReferralRequestFlow(nil, pub)

		req := validSubmission()
		req.CvURL = utils.ToPtr("https://drive.example.com/cv.pdf")
		resp, err := flow.Submit(ctx, req, NewClientMetadata("127.0.0.1", "test-agent"))
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, "Referral request submitted successfully", resp.Message)
		assert.True(t, strings.HasPrefix(resp.RequestID, "req_"))
		assert.Greater(t, len(resp.RequestID), len("req_"))

		require.Len(t, pub.events, 1)
		event := pub.events[0].(dto.ReferralRequestSubmittedEvent)
		assert.Equal(t, "referral_request.submitted", event.Type)
		assert.Equal(t, resp.RequestID, event.RequestID)
		assert.Equal(t, []string{"2"}, event.TagIDs)
		assert.Equal(t, "127.0.0.1", event.IPAddress)
	})

	t.Run("RequestIDsAreUnique", func(t *testing.T) {
		flow := NewReferralRequestFlow(nil, nil)
		a, err := flow.Submit(ctx, validSubmission(), nil)
		require.NoError(t, err)
		b, err := flow.Submit(ctx, validSubmission(), nil)
		require.NoError(t, err)
		assert.NotEqual(t, a.RequestID, b.RequestID)
	})

	t.Run("PublishFailureDoesNotFailSubmission", func(t *testing.T) {
		flow := NewReferralRequestFlow(nil, &recordingPublisher{err: errors.New("redis down")})
		resp, err := flow.Submit(ctx, validSubmission(), nil)
		require.NoError(t, err)
		assert.True(t, resp.Success)
	})

	missing := []struct {
		name   string
		mutate func(*dto.SubmitReferralRequestRequest)
	}{
		{"NoLinkedin", func(r *dto.SubmitReferralRequestRequest) { r.LinkedinURL = "" }},
		{"NoEmail", func(r *dto.SubmitReferralRequestRequest) { r.Email = "" }},
		{"NilTags", func(r *dto.SubmitReferralRequestRequest) { r.Tags = nil }},
		{"EmptyTags", func(r *dto.SubmitReferralRequestRequest) { r.Tags = []dto.TagSummary{} }},
	}
	for _, tt := range missing {
		t.Run(tt.name, func(t *testing.T) {
			pub := &recordingPublisher{}
			flow := NewReferralRequestFlow(nil, pub)
			req := validSubmission()
			tt.mutate(req)

			_, err := flow.Submit(ctx, req, nil)
			assert.True(t, IsMissingRequiredFields(err))
			assert.Empty(t, pub.events)
		})
	}

	t.Run("NilRequest", func(t *testing.T) {
		_, err := NewReferralRequestFlow(nil, nil).Submit(ctx, nil, nil)
		assert.True(t, IsMissingRequiredFields(err))
	})

	invalid := []struct {
		name   string
		mutate func(*dto.SubmitReferralRequestRequest)
		want   error
	}{
		{"NotLinkedin", func(r *dto.SubmitReferralRequestRequest) { r.LinkedinURL = "https://example.com/me" }, ErrInvalidLinkedinURL},
		{"BadEmail", func(r *dto.SubmitReferralRequestRequest) { r.Email = "john" }, ErrInvalidEmail},
		{"BadCvURL", func(r *dto.SubmitReferralRequestRequest) { r.CvURL = utils.ToPtr("ftp://files/cv.pdf") }, ErrInvalidCvURL},
	}
	for _, tt := range invalid {
		t.Run(tt.name+"AcceptedByDefault", func(t *testing.T) {
			pub := &recordingPublisher{}
			req := validSubmission()
			tt.mutate(req)

			resp, err := NewReferralRequestFlow(nil, pub).Submit(ctx, req, nil)
			require.NoError(t, err)
			assert.True(t, resp.Success)
			assert.Len(t, pub.events, 1)
		})

		t.Run(tt.name+"RejectedWithFormatChecks", func(t *testing.T) {
			req := validSubmission()
			tt.mutate(req)

			_, err := NewReferralRequestFlow(nil, nil, WithFormatChecks()).Submit(ctx, req, nil)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsInvalidField(err))
			assert.False(t, IsMissingRequiredFields(err))
		})
	}

	t.Run("FormatChecksStillRequireFields", func(t *testing.T) {
		req := validSubmission()
		req.Email = ""
		_, err := NewReferralRequestFlow(nil, nil, WithFormatChecks()).Submit(ctx, req, nil)
		assert.True(t, IsMissingRequiredFields(err))
	})

	t.Run("EmptyCvURLIsIgnored", func(t *testing.T) {
		req := validSubmission()
		req.CvURL = utils.ToPtr("")
		_, err := NewReferralRequestFlow(nil, nil, WithFormatChecks()).Submit(ctx, req, nil)
		assert.NoError(t, err)
	})
}

func TestReferralRequestFlow_List(t *testing.T) {
	ds, err := repository.NewFileCatalogReader("").LoadDataset(context.Background())
	require.NoError(t, err)
	flow := NewReferralRequestFlow(repository.NewDatasetReferralRequests(ds), nil)

	byRequester, err := flow.ListByRequester(context.Background(), "103")
	require.NoError(t, err)
	assert.Equal(t, 3, byRequester.Total)
	// newest first
	assert.Equal(t, "request-3", byRequester.Items[0].ID)
	assert.Equal(t, "rejected", byRequester.Items[0].Status)
	assert.Equal(t, time.Date(2025, 2, 12, 12, 0, 0, 0, time.UTC).Format(time.RFC3339), byRequester.Items[0].CreatedAt)

	byReferral, err := flow.ListByReferral(context.Background(), "2")
	require.NoError(t, err)
	require.Len(t, byReferral.Items, 1)
	assert.Equal(t, "approved", byReferral.Items[0].Status)

	empty, err := flow.ListByRequester(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.NotNil(t, empty.Items)

	_, err = NewReferralRequestFlow(failingLister{}, nil).ListByReferral(context.Background(), "1")
	var be *BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "LIST_REFERRAL_REQUESTS_FAILED", be.Code)
}
