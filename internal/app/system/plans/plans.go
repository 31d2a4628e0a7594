// Package plans defines subscription tiers and enforces their quotas.
// Billing happens outside this service; the tier stored on a team only
// drives which features and volumes it gets.
//
// Weekly quota counters live in Redis under keys of the form
// quota:<teamID>:<action>:<ISO-week>, expiring after two weeks so stale
// windows clean themselves up.
package plans

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/tenderinsight/hub/internal/domain/models"
)

// Limits describes what one tier allows. Zero Unlimited fields use the
// numeric limits; -1 in a numeric field means unlimited.
type Limits struct {
	Seats           int
	SearchesPerWeek int
	Summaries       bool
	Exports         bool
}

var tierLimits = map[string]Limits{
	models.TierFree:  {Seats: 1, SearchesPerWeek: 3, Summaries: false, Exports: false},
	models.TierBasic: {Seats: 3, SearchesPerWeek: -1, Summaries: true, Exports: false},
	models.TierPro:   {Seats: -1, SearchesPerWeek: -1, Summaries: true, Exports: true},
}

// ForTier returns the limits for a tier. Unknown tiers get free limits.
func ForTier(tier string) Limits {
	if l, ok := tierLimits[tier]; ok {
		return l
	}
	return tierLimits[models.TierFree]
}

// ErrQuotaExceeded is returned when a team has used up its weekly quota.
var ErrQuotaExceeded = fmt.Errorf("weekly quota exceeded for this plan")

// ErrFeatureNotInPlan is returned when the team's tier lacks the feature.
var ErrFeatureNotInPlan = fmt.Errorf("feature not available on this plan")

// Gate checks tier quotas against Redis counters.
type Gate struct {
	rdb *redis.Client
}

// NewGate creates a quota gate. A nil client disables counting (all
// actions allowed), which keeps tests and single-node dev setups simple.
func NewGate(rdb *redis.Client) *Gate {
	return &Gate{rdb: rdb}
}

// ConsumeSearch counts one search for the team and reports whether it is
// within the tier's weekly allowance. The counter is incremented first so
// concurrent requests cannot slip past the limit.
func (g *Gate) ConsumeSearch(ctx context.Context, team models.Team) error {
	limits := ForTier(team.Tier)
	if limits.SearchesPerWeek < 0 {
		return nil
	}
	if g.rdb == nil {
		return nil
	}

	key := weekKey(team.ID, "search", time.Now().UTC())
	n, err := g.rdb.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("quota counter: %w", err)
	}
	if n == 1 {
		g.rdb.Expire(ctx, key, 14*24*time.Hour)
	}
	if n > int64(limits.SearchesPerWeek) {
		return ErrQuotaExceeded
	}
	return nil
}

// SearchesUsed returns the team's search count for the current week.
func (g *Gate) SearchesUsed(ctx context.Context, teamID string) (int64, error) {
	if g.rdb == nil {
		return 0, nil
	}
	n, err := g.rdb.Get(ctx, weekKey(teamID, "search", time.Now().UTC())).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

// AllowSummaries reports whether the team's tier includes document
// summarization.
func (g *Gate) AllowSummaries(team models.Team) error {
	if !ForTier(team.Tier).Summaries {
		return ErrFeatureNotInPlan
	}
	return nil
}

// AllowExports reports whether the team's tier includes report exports.
func (g *Gate) AllowExports(team models.Team) error {
	if !ForTier(team.Tier).Exports {
		return ErrFeatureNotInPlan
	}
	return nil
}

// weekKey builds the Redis key for a team/action in the ISO week of t.
func weekKey(teamID, action string, t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("quota:%s:%s:%d-W%02d", teamID, action, year, week)
}
