package repository_test

import (
	"context"
	"testing"

	"github.com/amirphl/referral-hub/models"
	"github.com/amirphl/referral-hub/repository"
	testingutil "github.com/amirphl/referral-hub/testing"
	"github.com/amirphl/referral-hub/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDatasetAndGormCatalogReader(t *testing.T) {
	testingutil.TestWithDB(t, func(testDB *testingutil.TestDB) {
		ctx := testingutil.CreateTestContext()

		ds, err := repository.NewFileCatalogReader("").LoadDataset(ctx)
		require.NoError(t, err)
		require.NoError(t, repository.SeedDataset(ctx, testDB.DB, ds))

		// Seeding twice must not fail or duplicate rows
		again, err := repository.NewFileCatalogReader("").LoadDataset(ctx)
		require.NoError(t, err)
		require.NoError(t, repository.SeedDataset(ctx, testDB.DB, again))

		userRepo := repository.NewUserRepository(testDB.DB)
		referralRepo := repository.NewReferralRepository(testDB.DB)
		tagRepo := repository.NewTagRepository(testDB.DB)
		requestRepo := repository.NewReferralRequestRepository(testDB.DB)

		catalog, err := repository.NewGormCatalogReader(userRepo, referralRepo, tagRepo).Load(ctx)
		require.NoError(t, err)
		require.Len(t, catalog.Referrals, 3)
		require.Len(t, catalog.Tags, 11)
		require.Len(t, catalog.Users, 3)

		ids := make([]string, 0, len(catalog.Referrals))
		for _, r := range catalog.Referrals {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, []string{"1", "2", "3"}, ids)
		assert.Equal(t, []string{"1", "2", "3", "4"}, []string(catalog.Referrals[0].TagIDs))
		assert.Equal(t, "Frontend", catalog.Tags[0].Name)

		requests, err := requestRepo.ListByRequester(ctx, "103")
		require.NoError(t, err)
		assert.Len(t, requests, 3)
	})
}

func TestReferralRepository(t *testing.T) {
	testingutil.TestWithDB(t, func(testDB *testingutil.TestDB) {
		ctx := context.Background()
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewReferralRepository(testDB.DB)

		author, err := fixtures.CreateTestUser("Alex Johnson")
		require.NoError(t, err)
		tags, err := fixtures.CreateTestTags("Go", "Backend")
		require.NoError(t, err)

		remote, err := fixtures.CreateTestReferral(author.ID, "San Francisco, CA", models.WorkTypeRemote, tags[0].ID)
		require.NoError(t, err)
		_, err = fixtures.CreateTestReferral(author.ID, "Boston, MA", models.WorkTypeOnsite, tags[1].ID)
		require.NoError(t, err)

		t.Run("ByID", func(t *testing.T) {
			got, err := repo.ByID(ctx, remote.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, remote.Title, got.Title)

			missing, err := repo.ByID(ctx, "does-not-exist")
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("FilterByTag", func(t *testing.T) {
			rows, err := repo.ByFilter(ctx, models.ReferralFilter{TagID: utils.ToPtr(tags[0].ID)}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, remote.ID, rows[0].ID)
		})

		t.Run("FilterByCompanyIgnoresCase", func(t *testing.T) {
			count, err := repo.Count(ctx, models.ReferralFilter{Company: utils.ToPtr("LEDGERLY")})
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)
		})

		t.Run("ListActiveSkipsClosed", func(t *testing.T) {
			closed, err := fixtures.CreateTestReferral(author.ID, "Austin, TX", models.WorkTypeHybrid)
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(closed).Update("status", models.ReferralStatusClosed).Error)

			active, err := repo.ListActive(ctx, 0, 0)
			require.NoError(t, err)
			assert.Len(t, active, 2)

			all, err := repo.ListAll(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 3)
		})

		t.Run("ListByAuthor", func(t *testing.T) {
			rows, err := repo.ListByAuthor(ctx, author.ID)
			require.NoError(t, err)
			assert.Len(t, rows, 3)
		})
	})
}

func TestReferralRequestRepository(t *testing.T) {
	testingutil.TestWithDB(t, func(testDB *testingutil.TestDB) {
		ctx := context.Background()
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewReferralRequestRepository(testDB.DB)

		requester, err := fixtures.CreateTestUser("John Smith")
		require.NoError(t, err)
		referral, err := fixtures.CreateTestReferral(requester.ID, "Remote", models.WorkTypeRemote)
		require.NoError(t, err)

		created, err := fixtures.CreateTestReferralRequest(requester.ID, referral.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ReferralRequestStatusPending, created.Status)

		byReferral, err := repo.ListByReferral(ctx, referral.ID)
		require.NoError(t, err)
		require.Len(t, byReferral, 1)
		assert.Equal(t, created.ID, byReferral[0].ID)

		exists, err := repo.Exists(ctx, models.ReferralRequestFilter{RequesterID: utils.ToPtr(requester.ID)})
		require.NoError(t, err)
		assert.True(t, exists)
	})
}
