// Package scheduler runs the background jobs of the referral hub
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/amirphl/referral-hub/app/dto"
	"github.com/amirphl/referral-hub/utils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// DefaultRefreshSpec reloads the catalog every five minutes
const DefaultRefreshSpec = "@every 5m"

// releaseLock deletes the lock only while it still carries the caller's token
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// CatalogRefresher is the part of the catalog flow the refresher drives
type CatalogRefresher interface {
	Refresh(ctx context.Context) (*dto.RefreshCatalogResponse, error)
}

// CatalogRefreshScheduler periodically rebuilds the cached catalog snapshot.
// With a redis client only one replica refreshes per tick: the winner keeps the
// lock for claimTTL after a successful refresh so replicas ticking later skip.
type CatalogRefreshScheduler struct {
	cron     *cron.Cron
	flow     CatalogRefresher
	rc       *redis.Client
	lockKey  string
	spec     string
	claimTTL time.Duration
	newToken func() string
	logger   *log.Logger
}

// NewCatalogRefreshScheduler creates a scheduler for spec. rc may be nil.
func NewCatalogRefreshScheduler(flow CatalogRefresher, rc *redis.Client, keyPrefix, spec string, out io.Writer) *CatalogRefreshScheduler {
	if spec == "" {
		spec = DefaultRefreshSpec
	}
	if out == nil {
		out = os.Stdout
	}
	return &CatalogRefreshScheduler{
		cron:     cron.New(cron.WithLogger(cron.DefaultLogger)),
		flow:     flow,
		rc:       rc,
		lockKey:  keyPrefix + utils.CatalogRefreshLockKey,
		spec:     spec,
		claimTTL: utils.CatalogRefreshLockTTL,
		newToken: uuid.NewString,
		logger:   log.New(out, "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC),
	}
}

// claimWindow is half the gap between two activations of sched. It stays below the
// interval so the winner's own next tick is never blocked.
func claimWindow(sched cron.Schedule, from time.Time) time.Duration {
	next := sched.Next(from)
	window := sched.Next(next).Sub(next) / 2
	if window < time.Second {
		return utils.CatalogRefreshLockTTL
	}
	return window
}

// Start registers the refresh job and returns a stop function that waits for a running refresh
func (s *CatalogRefreshScheduler) Start(parent context.Context) (func(), error) {
	sched, err := cron.ParseStandard(s.spec)
	if err != nil {
		return nil, fmt.Errorf("schedule catalog refresh %q: %w", s.spec, err)
	}
	s.claimTTL = claimWindow(sched, utils.UTCNow())

	ctx, cancel := context.WithCancel(parent)
	s.cron.Schedule(sched, cron.FuncJob(func() { s.runOnce(ctx) }))
	s.cron.Start()
	s.logger.Printf("catalog refresh scheduled: %s", s.spec)

	return func() {
		cancel()
		<-s.cron.Stop().Done()
		s.logger.Printf("catalog refresh stopped")
	}, nil
}

// runOnce refreshes the catalog if this replica wins the lock. It reports whether a refresh ran.
func (s *CatalogRefreshScheduler) runOnce(ctx context.Context) bool {
	token := ""
	if s.rc != nil {
		token = s.newToken()
		ok, err := s.rc.SetNX(ctx, s.lockKey, token, s.claimTTL).Result()
		if err != nil {
			s.logger.Printf("catalog refresh: acquire lock failed: %v", err)
			return false
		}
		if !ok {
			return false
		}
	}

	start := time.Now()
	result, err := s.flow.Refresh(ctx)
	if err != nil {
		s.logger.Printf("catalog refresh failed: %v", err)
		// let another replica retry on its next tick
		s.release(token)
		return false
	}
	s.logger.Printf("catalog refreshed: users=%d referrals=%d tags=%d took=%s",
		result.Users, result.Referrals, result.Tags, time.Since(start).Round(time.Millisecond))
	return true
}

// release drops the lock if it still holds token. A lock that expired and was taken
// by another replica is left alone.
func (s *CatalogRefreshScheduler) release(token string) {
	if s.rc == nil || token == "" {
		return
	}
	// fresh context so a canceled tick still frees the lock
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseLock.Run(ctx, s.rc, []string{s.lockKey}, token).Err(); err != nil {
		s.logger.Printf("catalog refresh: release lock failed: %v", err)
	}
}
