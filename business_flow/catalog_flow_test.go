package businessflow

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirphl/referral-hub/app/dto"
	"github.com/amirphl/referral-hub/models"
	"github.com/amirphl/referral-hub/repository"
	"github.com/amirphl/referral-hub/utils"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type staticReader struct {
	catalog     *models.Catalog
	err         error
	loads       int
	invalidated int
}

func (r *staticReader) Load(ctx context.Context) (*models.Catalog, error) {
	r.loads++
	return r.catalog, r.err
}

func (r *staticReader) Invalidate(ctx context.Context) error {
	r.invalidated++
	return nil
}

var testNow = time.Date(2025, 2, 6, 10, 0, 0, 0, time.UTC)

func newTestCatalogFlow(t *testing.T, reader repository.CatalogReader) *CatalogFlowImpl {
	t.Helper()
	flow := NewCatalogFlow(reader, "test").(*CatalogFlowImpl)
	flow.now = func() time.Time { return testNow }
	return flow
}

func seedFlow(t *testing.T) *CatalogFlowImpl {
	t.Helper()
	return newTestCatalogFlow(t, repository.NewFileCatalogReader(""))
}

func TestCatalogFlow_ListReferrals(t *testing.T) {
	flow := seedFlow(t)
	ctx := context.Background()

	t.Run("NoFilter", func(t *testing.T) {
		resp, err := flow.ListReferrals(ctx, &dto.ListReferralsRequest{})
		require.NoError(t, err)

		assert.Equal(t, 3, resp.Total)
		assert.Equal(t, []string{"1", "2", "3"}, ids(resp.Referrals))
		assert.Equal(t, []string{"Remote", "On-site", "Hybrid"}, resp.Filters.WorkTypes)
		assert.Len(t, resp.Filters.Tags, 11)
		assert.Len(t, resp.Filters.Locations, 3)

		first := resp.Referrals[0]
		assert.Equal(t, "5 days ago", first.PostedLabel)
		assert.Equal(t, "Alex Johnson", first.Author.Name)
		require.Len(t, first.Tags, 4)
		require.NotNil(t, first.Tags[0].Color)
		assert.Equal(t, TagColor("1"), *first.Tags[0].Color)

		assert.Equal(t, "Yesterday", resp.Referrals[2].PostedLabel)
	})

	t.Run("RemoteAndReact", func(t *testing.T) {
		resp, err := flow.ListReferrals(ctx, &dto.ListReferralsRequest{
			WorkType: utils.ToPtr("Remote"),
			TagIDs:   []string{"2"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"1"}, ids(resp.Referrals))
	})

	t.Run("LocationIDsMatchFilterOptions", func(t *testing.T) {
		opts, err := flow.FilterOptions(ctx)
		require.NoError(t, err)

		var nyID string
		for _, loc := range opts.Locations {
			if loc.Name == "New York, NY" {
				nyID = loc.ID
			}
		}
		require.NotEmpty(t, nyID)

		resp, err := flow.ListReferrals(ctx, &dto.ListReferralsRequest{LocationID: &nyID})
		require.NoError(t, err)
		assert.Equal(t, []string{"3"}, ids(resp.Referrals))
	})

	t.Run("Query", func(t *testing.T) {
		resp, err := flow.ListReferrals(ctx, &dto.ListReferralsRequest{Query: "careloop"})
		require.NoError(t, err)
		assert.Equal(t, []string{"2"}, ids(resp.Referrals))
	})

	t.Run("NilRequest", func(t *testing.T) {
		resp, err := flow.ListReferrals(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, resp.Total)
	})
}

func TestCatalogFlow_ActiveOnly(t *testing.T) {
	reader := &staticReader{catalog: &models.Catalog{
		Referrals: []models.Referral{
			{ID: "1", Location: "SF", WorkType: "remote", Status: models.ReferralStatusActive},
			{ID: "2", Location: "SF", WorkType: "remote", Status: models.ReferralStatusClosed},
		},
	}}
	flow := newTestCatalogFlow(t, reader)

	all, err := flow.ListReferrals(context.Background(), &dto.ListReferralsRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(all.Referrals))

	active, err := flow.ListReferrals(context.Background(), &dto.ListReferralsRequest{ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(active.Referrals))
	assert.Equal(t, "Unknown", active.Referrals[0].Author.Name)
}

func TestCatalogFlow_GetReferral(t *testing.T) {
	flow := seedFlow(t)

	detail, err := flow.GetReferral(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, "Gridline", detail.Company)
	assert.Equal(t, "Platform", detail.Department)
	assert.Equal(t, []string{"Equity", "401k match"}, detail.Benefits)
	assert.Equal(t, "Hybrid", detail.WorkType)
	assert.Equal(t, "Sarah Lee", detail.Author.Name)
	assert.Equal(t, "active", detail.Status)

	_, err = flow.GetReferral(context.Background(), "404")
	assert.True(t, IsReferralNotFound(err))
}

func TestCatalogFlow_PopularTags(t *testing.T) {
	reader := &staticReader{catalog: &models.Catalog{
		Tags: []models.Tag{{ID: "1", Name: "Go"}, {ID: "2", Name: "React"}, {ID: "3", Name: "Unused"}, {ID: "4", Name: "SQL"}},
		Referrals: []models.Referral{
			{ID: "a", TagIDs: pq.StringArray{"2", "4"}},
			{ID: "b", TagIDs: pq.StringArray{"2", "1", "99"}},
			{ID: "c", TagIDs: pq.StringArray{"4", "1", "2"}},
		},
	}}
	flow := newTestCatalogFlow(t, reader)

	got, err := flow.PopularTags(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "React", got[0].Name)
	assert.Equal(t, 3, got[0].Count)
	// Go and SQL tie on two referrals and keep catalog order
	assert.Equal(t, []string{"Go", "SQL"}, []string{got[1].Name, got[2].Name})
	assert.Equal(t, TagColor("2"), got[0].Color)

	limited, err := flow.PopularTags(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	for _, bad := range []int{-1, utils.MaxRankingLimit + 1} {
		_, err := flow.PopularTags(context.Background(), bad)
		assert.True(t, IsInvalidLimit(err), "limit %d", bad)
	}
}

func TestCatalogFlow_TopCompanies(t *testing.T) {
	reader := &staticReader{catalog: &models.Catalog{
		Referrals: []models.Referral{
			{ID: "1", Company: "Ledgerly"},
			{ID: "2", Company: "Gridline"},
			{ID: "3", Company: "ledgerly "},
			{ID: "4", Company: ""},
			{ID: "5", Company: "Café Co"},
			{ID: "6", Company: "CAFE CO"},
			{ID: "7", Company: "Gridline"},
			{ID: "8", Company: "Gridline"},
		},
	}}
	flow := newTestCatalogFlow(t, reader)

	got, err := flow.TopCompanies(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []dto.CompanyCount{
		{Company: "Gridline", Count: 3},
		{Company: "Ledgerly", Count: 2},
		{Company: "Café Co", Count: 2},
	}, got)

	top1, err := flow.TopCompanies(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Gridline", top1[0].Company)
}

func TestCatalogFlow_ReferralsByAuthor(t *testing.T) {
	flow := seedFlow(t)

	resp, err := flow.ReferralsByAuthor(context.Background(), "101")
	require.NoError(t, err)
	assert.Equal(t, "Alex Johnson", resp.Author.Name)
	assert.Equal(t, []string{"1", "2"}, ids(resp.Referrals))

	none, err := flow.ReferralsByAuthor(context.Background(), "103")
	require.NoError(t, err)
	assert.Empty(t, none.Referrals)

	_, err = flow.ReferralsByAuthor(context.Background(), "nobody")
	assert.True(t, IsUserNotFound(err))
}

func TestCatalogFlow_ExportReferrals(t *testing.T) {
	flow := seedFlow(t)

	filename, data, err := flow.ExportReferrals(context.Background(), &dto.ListReferralsRequest{WorkType: utils.ToPtr("Hybrid")})
	require.NoError(t, err)
	assert.Equal(t, "referrals_20250206.xlsx", filename)

	xl, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer xl.Close()

	rows, err := xl.GetRows("Referrals")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "3", rows[1][0])
	assert.Equal(t, "Backend, Go, Distributed Systems, Infrastructure", rows[1][6])
}

func TestCatalogFlow_LoadFailure(t *testing.T) {
	flow := newTestCatalogFlow(t, &staticReader{err: errors.New("connection refused")})

	_, err := flow.ListReferrals(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, IsCatalogUnavailable(err))

	var be *BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "CATALOG_UNAVAILABLE", be.Code)
}

func TestCatalogFlow_NilCatalogIsEmpty(t *testing.T) {
	flow := newTestCatalogFlow(t, &staticReader{})

	resp, err := flow.ListReferrals(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, resp.Total)
	assert.NotNil(t, resp.Referrals)
}

func TestCatalogFlow_Refresh(t *testing.T) {
	reader := &staticReader{catalog: &models.Catalog{
		Users: []models.User{{ID: "1"}},
		Tags:  []models.Tag{{ID: "1"}, {ID: "2"}},
	}}
	flow := newTestCatalogFlow(t, reader)

	resp, err := flow.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, reader.invalidated)
	assert.Equal(t, 1, reader.loads)
	assert.Equal(t, 1, resp.Users)
	assert.Equal(t, 2, resp.Tags)
	assert.Equal(t, testNow, resp.RefreshedAt)
}
