package models

import "time"

// Subscription tiers. Billing is handled outside this service; the tier
// recorded here only drives feature gating.
const (
	TierFree  = "free"
	TierBasic = "basic"
	TierPro   = "pro"
)

// ValidTier reports whether t is a known subscription tier.
func ValidTier(t string) bool {
	return t == TierFree || t == TierBasic || t == TierPro
}

// Team is a multi-user SME account. All tender tracking, profiles, and
// readiness scores are scoped to a team.
type Team struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	NameCI    string    `bson:"name_ci" json:"-"` // Case-insensitive for search
	Tier      string    `bson:"tier" json:"tier"`
	SeatCount int       `bson:"seat_count" json:"seat_count"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
