// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/tenderinsight/hub/internal/app/store/audit"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Ingest controls logging for ingestion events (tender upserts, sync
	// runs, document processing).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Ingest string
	// Workspace controls logging for workspace events (tracking, status
	// moves, notes, tasks, readiness checks, profile changes).
	Workspace string
	// API controls logging for API-surface events (quota hits, exports).
	API string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// ClientIP extracts the client IP from the request, preferring proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}

	if event.TeamID != "" {
		fields = append(fields, zap.String("team_id", event.TeamID))
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.TenderID != "" {
		fields = append(fields, zap.String("tender_id", event.TenderID))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryIngest:
		setting = l.config.Ingest
	case audit.CategoryWorkspace:
		setting = l.config.Workspace
	case audit.CategoryAPI:
		setting = l.config.API
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Ingestion events ---

// TenderUpserted logs a tender created or refreshed from an OCDS release.
func (l *Logger) TenderUpserted(ctx context.Context, tenderID, source string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryIngest,
		EventType: audit.EventTenderUpserted,
		TenderID:  tenderID,
		Success:   true,
		Details:   map[string]string{"source": source},
	})
}

// SyncRunCompleted logs a finished ingestion sweep.
func (l *Logger) SyncRunCompleted(ctx context.Context, fetched, upserted int) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryIngest,
		EventType: audit.EventSyncRunCompleted,
		Success:   true,
		Details: map[string]string{
			"fetched":  strconv.Itoa(fetched),
			"upserted": strconv.Itoa(upserted),
		},
	})
}

// SyncRunFailed logs an ingestion sweep that could not complete.
func (l *Logger) SyncRunFailed(ctx context.Context, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryIngest,
		EventType:     audit.EventSyncRunFailed,
		Success:       false,
		FailureReason: reason,
	})
}

// SummaryGenerated logs a successful document summarization.
func (l *Logger) SummaryGenerated(ctx context.Context, teamID, tenderID, summaryID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryIngest,
		EventType: audit.EventSummaryGenerated,
		TeamID:    teamID,
		TenderID:  tenderID,
		Success:   true,
		Details:   map[string]string{"summary_id": summaryID},
	})
}

// SummaryFailed logs a summarization job that exhausted its attempts.
func (l *Logger) SummaryFailed(ctx context.Context, teamID, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryIngest,
		EventType:     audit.EventSummaryFailed,
		TeamID:        teamID,
		Success:       false,
		FailureReason: reason,
	})
}

// --- Workspace events ---

// TenderTracked logs a tender added to a team workspace.
func (l *Logger) TenderTracked(ctx context.Context, r *http.Request, teamID, userID, tenderID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryWorkspace,
		EventType: audit.EventTenderTracked,
		TeamID:    teamID,
		UserID:    userID,
		TenderID:  tenderID,
		IP:        ClientIP(r),
		Success:   true,
	})
}

// StatusMoved logs a workspace status transition.
func (l *Logger) StatusMoved(ctx context.Context, r *http.Request, teamID, userID, tenderID, from, to string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryWorkspace,
		EventType: audit.EventWorkspaceStatusMoved,
		TeamID:    teamID,
		UserID:    userID,
		TenderID:  tenderID,
		IP:        ClientIP(r),
		Success:   true,
		Details:   map[string]string{"from": from, "to": to},
	})
}

// ReadinessChecked logs a readiness assessment run.
func (l *Logger) ReadinessChecked(ctx context.Context, teamID, tenderID string, score int) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryWorkspace,
		EventType: audit.EventReadinessChecked,
		TeamID:    teamID,
		TenderID:  tenderID,
		Success:   true,
		Details:   map[string]string{"score": strconv.Itoa(score)},
	})
}

// --- API events ---

// QuotaExceeded logs a request rejected by plan quota.
func (l *Logger) QuotaExceeded(ctx context.Context, r *http.Request, teamID, action string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAPI,
		EventType:     audit.EventQuotaExceeded,
		TeamID:        teamID,
		IP:            ClientIP(r),
		Success:       false,
		FailureReason: "quota exceeded",
		Details:       map[string]string{"action": action},
	})
}

// ExportProduced logs a successful report export.
func (l *Logger) ExportProduced(ctx context.Context, teamID, format string, rows int) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAPI,
		EventType: audit.EventExportProduced,
		TeamID:    teamID,
		Success:   true,
		Details: map[string]string{
			"format": format,
			"rows":   strconv.Itoa(rows),
		},
	})
}
