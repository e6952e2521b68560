package repository

import (
	"context"
	"time"

	"github.com/amirphl/referral-hub/models"
	"gorm.io/gorm"
)

// SeedDataset inserts every row of the dataset that is not already present.
// Rows without a created_at get increasing timestamps so catalog order survives the round trip.
func SeedDataset(ctx context.Context, db *gorm.DB, ds *models.Dataset) error {
	if ds == nil {
		return nil
	}

	base := time.Now().UTC()
	stamp := func(i int, t *time.Time) {
		if t.IsZero() {
			*t = base.Add(time.Duration(i) * time.Millisecond)
		}
	}
	for i := range ds.Tags {
		stamp(i, &ds.Tags[i].CreatedAt)
	}
	for i := range ds.Users {
		stamp(i, &ds.Users[i].CreatedAt)
	}
	for i := range ds.Referrals {
		stamp(i, &ds.Referrals[i].CreatedAt)
	}

	return WithTransaction(ctx, db, func(txCtx context.Context) error {
		tx, _ := TxFromContext(txCtx)
		if err := insertMissing(tx, ds.Tags, "tags"); err != nil {
			return err
		}
		if err := insertMissing(tx, ds.Users, "users"); err != nil {
			return err
		}
		if err := insertMissing(tx, ds.Referrals, "referrals"); err != nil {
			return err
		}
		return insertMissing(tx, ds.ReferralRequests, "referral requests")
	})
}
