package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amirphl/referral-hub/app/dto"
	businessflow "github.com/amirphl/referral-hub/business_flow"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogFlow struct {
	lastList  *dto.ListReferralsRequest
	lastLimit int
	err       error
}

func (f *fakeCatalogFlow) ListReferrals(ctx context.Context, req *dto.ListReferralsRequest) (*dto.ListReferralsResponse, error) {
	f.lastList = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ListReferralsResponse{Referrals: []dto.CardReferral{{ID: "1", WorkType: "Remote"}}, Total: 1}, nil
}

func (f *fakeCatalogFlow) GetReferral(ctx context.Context, id string) (*dto.ReferralDetailResponse, error) {
	if id != "1" {
		return nil, businessflow.ErrReferralNotFound
	}
	return &dto.ReferralDetailResponse{CardReferral: dto.CardReferral{ID: "1"}}, nil
}

func (f *fakeCatalogFlow) FilterOptions(ctx context.Context) (*dto.FilterOptionsResponse, error) {
	return &dto.FilterOptionsResponse{WorkTypes: businessflow.WorkTypeOptions}, f.err
}

func (f *fakeCatalogFlow) PopularTags(ctx context.Context, limit int) ([]dto.TagCount, error) {
	f.lastLimit = limit
	return []dto.TagCount{{ID: "2", Name: "React", Count: 3}}, nil
}

func (f *fakeCatalogFlow) TopCompanies(ctx context.Context, limit int) ([]dto.CompanyCount, error) {
	f.lastLimit = limit
	return []dto.CompanyCount{{Company: "Ledgerly", Count: 2}}, nil
}

func (f *fakeCatalogFlow) ReferralsByAuthor(ctx context.Context, userID string) (*dto.AuthorReferralsResponse, error) {
	if userID != "101" {
		return nil, businessflow.ErrUserNotFound
	}
	return &dto.AuthorReferralsResponse{Author: dto.AuthorSummary{ID: "101"}}, nil
}

func (f *fakeCatalogFlow) ExportReferrals(ctx context.Context, req *dto.ListReferralsRequest) (string, []byte, error) {
	f.lastList = req
	return "referrals_20250206.xlsx", []byte("xlsx"), f.err
}

func (f *fakeCatalogFlow) Refresh(ctx context.Context) (*dto.RefreshCatalogResponse, error) {
	return &dto.RefreshCatalogResponse{}, nil
}

type fakeRequestFlow struct {
	submitted *dto.SubmitReferralRequestRequest
	err       error
}

func (f *fakeRequestFlow) Submit(ctx context.Context, req *dto.SubmitReferralRequestRequest, metadata *businessflow.ClientMetadata) (*dto.SubmitReferralRequestResponse, error) {
	f.submitted = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.SubmitReferralRequestResponse{Success: true, Message: "Referral request submitted successfully", RequestID: "req_1"}, nil
}

func (f *fakeRequestFlow) ListByRequester(ctx context.Context, userID string) (*dto.ListReferralRequestsResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ListReferralRequestsResponse{Items: []dto.ReferralRequestItem{{ID: "request-1"}}, Total: 1}, nil
}

func (f *fakeRequestFlow) ListByReferral(ctx context.Context, referralID string) (*dto.ListReferralRequestsResponse, error) {
	return f.ListByRequester(ctx, referralID)
}

func newCatalogApp(flow businessflow.CatalogFlow) *fiber.App {
	h := NewCatalogHandler(flow)
	app := fiber.New()
	app.Get("/referrals", h.List)
	app.Get("/referrals/export", h.Export)
	app.Get("/referrals/:id", h.Get)
	app.Get("/filters", h.FilterOptions)
	app.Get("/tags/popular", h.PopularTags)
	app.Get("/companies/top", h.TopCompanies)
	app.Get("/users/:id/referrals", h.ByAuthor)
	return app
}

func newRequestApp(flow businessflow.ReferralRequestFlow) *fiber.App {
	h := NewReferralRequestHandler(flow)
	app := fiber.New()
	app.Post("/api/referral-requests", h.Submit)
	app.Get("/users/:id/referral-requests", h.ListByRequester)
	app.Get("/referrals/:id/requests", h.ListByReferral)
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(body) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(body, &decoded))
	}
	return resp.StatusCode, decoded
}

func TestCatalogHandler_List(t *testing.T) {
	t.Run("ParsesQuery", func(t *testing.T) {
		flow := &fakeCatalogFlow{}
		app := newCatalogApp(flow)

		status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/referrals?location=2&workType=Remote&tags=2,%203,&q=react&activeOnly=true", nil))

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["success"])
		require.NotNil(t, flow.lastList)
		assert.Equal(t, "2", *flow.lastList.LocationID)
		assert.Equal(t, "Remote", *flow.lastList.WorkType)
		assert.Equal(t, []string{"2", "3"}, flow.lastList.TagIDs)
		assert.Equal(t, "react", flow.lastList.Query)
		assert.True(t, flow.lastList.ActiveOnly)
	})

	t.Run("NoQueryMeansNoFilter", func(t *testing.T) {
		flow := &fakeCatalogFlow{}
		status, _ := do(t, newCatalogApp(flow), httptest.NewRequest(http.MethodGet, "/referrals", nil))

		assert.Equal(t, http.StatusOK, status)
		assert.Nil(t, flow.lastList.LocationID)
		assert.Nil(t, flow.lastList.WorkType)
		assert.Empty(t, flow.lastList.TagIDs)
	})

	t.Run("BadActiveOnly", func(t *testing.T) {
		status, body := do(t, newCatalogApp(&fakeCatalogFlow{}), httptest.NewRequest(http.MethodGet, "/referrals?activeOnly=maybe", nil))
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "INVALID_QUERY", body["error"].(map[string]any)["code"])
	})

	t.Run("CatalogUnavailable", func(t *testing.T) {
		flow := &fakeCatalogFlow{err: businessflow.NewBusinessError("CATALOG_UNAVAILABLE", "down", businessflow.ErrCatalogUnavailable)}
		status, body := do(t, newCatalogApp(flow), httptest.NewRequest(http.MethodGet, "/referrals", nil))
		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Equal(t, "CATALOG_UNAVAILABLE", body["error"].(map[string]any)["code"])
	})

	t.Run("UnexpectedError", func(t *testing.T) {
		flow := &fakeCatalogFlow{err: errors.New("boom")}
		status, _ := do(t, newCatalogApp(flow), httptest.NewRequest(http.MethodGet, "/referrals", nil))
		assert.Equal(t, http.StatusInternalServerError, status)
	})
}

func TestCatalogHandler_Lookups(t *testing.T) {
	flow := &fakeCatalogFlow{}
	app := newCatalogApp(flow)

	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"GetFound", "/referrals/1", http.StatusOK, ""},
		{"GetMissing", "/referrals/9", http.StatusNotFound, "REFERRAL_NOT_FOUND"},
		{"Filters", "/filters", http.StatusOK, ""},
		{"PopularTags", "/tags/popular?limit=3", http.StatusOK, ""},
		{"PopularTagsBadLimit", "/tags/popular?limit=abc", http.StatusBadRequest, "INVALID_LIMIT"},
		{"PopularTagsTooLarge", "/tags/popular?limit=500", http.StatusBadRequest, "INVALID_LIMIT"},
		{"TopCompanies", "/companies/top", http.StatusOK, ""},
		{"ByAuthor", "/users/101/referrals", http.StatusOK, ""},
		{"ByUnknownAuthor", "/users/nobody/referrals", http.StatusNotFound, "USER_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, status)
			if tt.code != "" {
				assert.Equal(t, tt.code, body["error"].(map[string]any)["code"])
			}
		})
	}

	do(t, app, httptest.NewRequest(http.MethodGet, "/tags/popular?limit=3", nil))
	assert.Equal(t, 3, flow.lastLimit)
	do(t, app, httptest.NewRequest(http.MethodGet, "/companies/top", nil))
	assert.Equal(t, 0, flow.lastLimit)
}

func TestCatalogHandler_Export(t *testing.T) {
	flow := &fakeCatalogFlow{}
	resp, err := newCatalogApp(flow).Test(httptest.NewRequest(http.MethodGet, "/referrals/export?workType=Hybrid", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "referrals_20250206.xlsx")
	assert.Equal(t, "Hybrid", *flow.lastList.WorkType)
}

func postJSON(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/referral-requests", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestReferralRequestHandler_Submit(t *testing.T) {
	valid := `{"linkedinUrl":"https://www.linkedin.com/in/john","email":"john@example.com","tags":[{"id":"2","name":"React"}]}`

	t.Run("Accepted", func(t *testing.T) {
		flow := &fakeRequestFlow{}
		status, body := do(t, newRequestApp(flow), postJSON(valid))

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, map[string]any{
			"success":   true,
			"message":   "Referral request submitted successfully",
			"requestId": "req_1",
		}, body)
		require.NotNil(t, flow.submitted)
		assert.Equal(t, "john@example.com", flow.submitted.Email)
		assert.Equal(t, "React", flow.submitted.Tags[0].Name)
	})

	tests := []struct {
		name    string
		body    string
		flowErr error
		status  int
		message string
	}{
		{"MissingFields", valid, businessflow.ErrMissingRequiredFields, http.StatusBadRequest, "Missing required fields"},
		{"BadLinkedin", valid, businessflow.ErrInvalidLinkedinURL, http.StatusBadRequest, "Please enter a valid LinkedIn URL"},
		{"BadEmail", valid, businessflow.ErrInvalidEmail, http.StatusBadRequest, "Please enter a valid email address"},
		{"BadCv", valid, businessflow.ErrInvalidCvURL, http.StatusBadRequest, "Please enter a valid URL"},
		{"UnexpectedError", valid, errors.New("boom"), http.StatusInternalServerError, "Failed to process request"},
		{"MalformedJSON", `{"linkedinUrl":`, nil, http.StatusInternalServerError, "Failed to process request"},
		{"EmptyBody", ``, nil, http.StatusInternalServerError, "Failed to process request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, newRequestApp(&fakeRequestFlow{err: tt.flowErr}), postJSON(tt.body))
			assert.Equal(t, tt.status, status)
			assert.Equal(t, map[string]any{"error": tt.message}, body)
		})
	}
}

func TestReferralRequestHandler_Lists(t *testing.T) {
	app := newRequestApp(&fakeRequestFlow{})

	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/users/103/referral-requests", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["data"].(map[string]any)["total"])

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/referrals/1/requests", nil))
	assert.Equal(t, http.StatusOK, status)

	failing := newRequestApp(&fakeRequestFlow{err: errors.New("db down")})
	status, body = do(t, failing, httptest.NewRequest(http.MethodGet, "/users/103/referral-requests", nil))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "LIST_REFERRAL_REQUESTS_FAILED", body["error"].(map[string]any)["code"])
}
