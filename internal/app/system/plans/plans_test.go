package plans_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tenderinsight/hub/internal/app/system/plans"
	"github.com/tenderinsight/hub/internal/domain/models"
)

func TestForTier(t *testing.T) {
	free := plans.ForTier(models.TierFree)
	if free.Seats != 1 || free.SearchesPerWeek != 3 || free.Summaries || free.Exports {
		t.Errorf("free limits = %+v", free)
	}

	basic := plans.ForTier(models.TierBasic)
	if basic.Seats != 3 || basic.SearchesPerWeek != -1 || !basic.Summaries || basic.Exports {
		t.Errorf("basic limits = %+v", basic)
	}

	pro := plans.ForTier(models.TierPro)
	if pro.Seats != -1 || !pro.Summaries || !pro.Exports {
		t.Errorf("pro limits = %+v", pro)
	}

	// Unknown tiers fall back to free.
	if got := plans.ForTier("platinum"); got != free {
		t.Errorf("unknown tier limits = %+v, want free limits", got)
	}
}

func TestAllowSummariesAndExports(t *testing.T) {
	gate := plans.NewGate(nil)

	if err := gate.AllowSummaries(models.Team{Tier: models.TierFree}); !errors.Is(err, plans.ErrFeatureNotInPlan) {
		t.Errorf("free summaries err = %v, want ErrFeatureNotInPlan", err)
	}
	if err := gate.AllowSummaries(models.Team{Tier: models.TierBasic}); err != nil {
		t.Errorf("basic summaries err = %v, want nil", err)
	}

	if err := gate.AllowExports(models.Team{Tier: models.TierBasic}); !errors.Is(err, plans.ErrFeatureNotInPlan) {
		t.Errorf("basic exports err = %v, want ErrFeatureNotInPlan", err)
	}
	if err := gate.AllowExports(models.Team{Tier: models.TierPro}); err != nil {
		t.Errorf("pro exports err = %v, want nil", err)
	}
}

func TestConsumeSearch_NilRedisAllowsAll(t *testing.T) {
	gate := plans.NewGate(nil)
	team := models.Team{ID: "team-1", Tier: models.TierFree}

	// Without a Redis client quotas are not enforced.
	for i := 0; i < 10; i++ {
		if err := gate.ConsumeSearch(context.Background(), team); err != nil {
			t.Fatalf("ConsumeSearch %d failed: %v", i, err)
		}
	}

	used, err := gate.SearchesUsed(context.Background(), "team-1")
	if err != nil {
		t.Fatalf("SearchesUsed failed: %v", err)
	}
	if used != 0 {
		t.Errorf("SearchesUsed = %d, want 0 without a counter backend", used)
	}
}

func TestConsumeSearch_UnlimitedTiersSkipCounting(t *testing.T) {
	gate := plans.NewGate(nil)
	team := models.Team{ID: "team-1", Tier: models.TierPro}
	if err := gate.ConsumeSearch(context.Background(), team); err != nil {
		t.Fatalf("ConsumeSearch failed: %v", err)
	}
}
