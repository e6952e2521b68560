package utils

import (
	"time"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Cache keys, relative to the configured redis prefix
const (
	CatalogSnapshotCacheKey = "catalog:snapshot"
	CatalogRefreshLockKey   = "catalog:refresh:lock"

	// CatalogRefreshLockTTL is how long a refresh claim is held before the schedule is known
	CatalogRefreshLockTTL = 30 * time.Second
)

// Listing defaults
const (
	DefaultPopularTagsLimit  = 5
	DefaultTopCompaniesLimit = 5
	MaxRankingLimit          = 50
)

// Intake constants
const (
	ReferralRequestIDPrefix      = "req_"
	ReferralRequestSubmittedType = "referral_request.submitted"
	DefaultIntakeEventsChannel   = "referral-hub:events"
)
