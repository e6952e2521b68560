package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/amirphl/referral-hub/models"
	"github.com/lib/pq"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUser creates a user with a random email
func (tf *TestFixtures) CreateTestUser(name string) (*models.User, error) {
	user := &models.User{
		Name:    name,
		Email:   fmt.Sprintf("user.%d@example.com", rand.Intn(1_000_000_000)),
		Company: "Ledgerly",
	}
	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}
	return user, nil
}

// CreateTestTags creates one tag per name, preserving order through created_at
func (tf *TestFixtures) CreateTestTags(names ...string) ([]*models.Tag, error) {
	base := time.Now().UTC()
	tags := make([]*models.Tag, 0, len(names))
	for i, name := range names {
		tag := &models.Tag{Name: name, CreatedAt: base.Add(time.Duration(i) * time.Millisecond)}
		if err := tf.DB.DB.Create(tag).Error; err != nil {
			return nil, fmt.Errorf("failed to create test tag %s: %w", name, err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// CreateTestReferral creates an active referral authored by authorID
func (tf *TestFixtures) CreateTestReferral(authorID, location string, workType models.WorkType, tagIDs ...string) (*models.Referral, error) {
	referral := &models.Referral{
		Title:       "Software Engineer in " + location,
		Description: "Referral created by fixtures",
		Company:     "Ledgerly",
		Location:    location,
		WorkType:    workType,
		AuthorID:    authorID,
		TagIDs:      pq.StringArray(tagIDs),
		Status:      models.ReferralStatusActive,
	}
	if err := tf.DB.DB.Create(referral).Error; err != nil {
		return nil, fmt.Errorf("failed to create test referral: %w", err)
	}
	return referral, nil
}

// CreateTestReferralRequest creates a pending request from requesterID for referralID
func (tf *TestFixtures) CreateTestReferralRequest(requesterID, referralID string) (*models.ReferralRequest, error) {
	req := &models.ReferralRequest{
		RequesterID: requesterID,
		ReferralID:  referralID,
		Message:     "Please consider me",
	}
	if err := tf.DB.DB.Create(req).Error; err != nil {
		return nil, fmt.Errorf("failed to create test referral request: %w", err)
	}
	return req, nil
}
