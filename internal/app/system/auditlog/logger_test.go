package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/tenderinsight/hub/internal/app/store/audit"
	"github.com/tenderinsight/hub/internal/app/system/auditlog"
	"github.com/tenderinsight/hub/internal/testutil"
	"go.uber.org/zap"
)

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.TenderTracked(ctx, req, "team-1", "user-1", "ocds-123")
	logger.SyncRunFailed(ctx, "network down")
}

func TestLogger_Log_ConfigOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Ingest:    "off",
		Workspace: "off",
		API:       "off",
	})

	logger.Log(ctx, audit.Event{
		Category:  audit.CategoryIngest,
		EventType: audit.EventTenderUpserted,
		Success:   true,
	})

	events, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryIngest})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 0 {
		t.Error("expected no events when config is 'off'")
	}
}

func TestLogger_Log_ConfigDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Ingest:    "db",
		Workspace: "db",
		API:       "db",
	})

	logger.StatusMoved(ctx, httptest.NewRequest("PATCH", "/", nil),
		"team-1", "user-1", "ocds-123", "pending", "interested")

	events, err := store.Query(ctx, audit.QueryFilter{TeamID: "team-1"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.EventType != audit.EventWorkspaceStatusMoved {
		t.Errorf("EventType = %q, want %q", e.EventType, audit.EventWorkspaceStatusMoved)
	}
	if e.Details["from"] != "pending" || e.Details["to"] != "interested" {
		t.Errorf("Details = %v, want from/to recorded", e.Details)
	}
}

func TestLogger_Log_UnknownCategoryDefaultsToAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{})

	logger.Log(ctx, audit.Event{
		Category:  "mystery",
		EventType: "mystery_event",
		TeamID:    "team-x",
		Success:   true,
	})

	events, err := store.Query(ctx, audit.QueryFilter{TeamID: "team-x"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if got := auditlog.ClientIP(req); got != "10.0.0.1:1234" {
		t.Errorf("ClientIP = %q, want RemoteAddr", got)
	}

	req.Header.Set("X-Real-IP", "203.0.113.9")
	if got := auditlog.ClientIP(req); got != "203.0.113.9" {
		t.Errorf("ClientIP = %q, want X-Real-IP", got)
	}

	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	if got := auditlog.ClientIP(req); got != "198.51.100.7" {
		t.Errorf("ClientIP = %q, want X-Forwarded-For", got)
	}
}
