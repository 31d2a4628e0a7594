package teamstore_test

import (
	"errors"
	"testing"

	teamstore "github.com/tenderinsight/hub/internal/app/store/teams"
	"github.com/tenderinsight/hub/internal/app/system/indexes"
	"github.com/tenderinsight/hub/internal/domain/models"
	"github.com/tenderinsight/hub/internal/testutil"
)

func TestCreate_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team, err := store.Create(ctx, models.Team{Name: "Mokoena Civils"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if team.ID == "" {
		t.Error("expected generated team ID")
	}
	if team.Tier != models.TierFree {
		t.Errorf("Tier = %q, want free default", team.Tier)
	}
	if team.SeatCount != 1 {
		t.Errorf("SeatCount = %d, want 1 default", team.SeatCount)
	}
}

func TestCreate_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Team{Name: "  "}); err == nil {
		t.Error("expected error for blank name")
	}
	if _, err := store.Create(ctx, models.Team{Name: "X", Tier: "platinum"}); err == nil {
		t.Error("expected error for unknown tier")
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	store := teamstore.New(db)
	if _, err := store.Create(ctx, models.Team{Name: "Mokoena Civils"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	// Case-folded duplicate.
	_, err := store.Create(ctx, models.Team{Name: "MOKOENA CIVILS"})
	if !errors.Is(err, teamstore.ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName", err)
	}
}

func TestSetTier(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team, err := store.Create(ctx, models.Team{Name: "Mokoena Civils"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.SetTier(ctx, team.ID, models.TierPro); err != nil {
		t.Fatalf("SetTier failed: %v", err)
	}
	got, err := store.GetByID(ctx, team.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Tier != models.TierPro {
		t.Errorf("Tier = %q, want pro", got.Tier)
	}

	if err := store.SetTier(ctx, team.ID, "platinum"); err == nil {
		t.Error("expected error for unknown tier")
	}
	if err := store.SetTier(ctx, "missing", models.TierBasic); !errors.Is(err, teamstore.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
