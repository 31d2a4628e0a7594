// internal/app/features/readiness/handler.go
package readiness

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tenderinsight/hub/internal/app/store/profiles"
	"github.com/tenderinsight/hub/internal/app/store/readiness"
	"github.com/tenderinsight/hub/internal/app/store/tenders"
	"github.com/tenderinsight/hub/internal/app/system/auditlog"
	"github.com/tenderinsight/hub/internal/app/system/auth"
	"github.com/tenderinsight/hub/internal/app/system/httpjson"
	"github.com/tenderinsight/hub/internal/app/system/scoring"
	"github.com/tenderinsight/hub/internal/app/system/timeouts"
	"github.com/tenderinsight/hub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler runs readiness assessments of the team's profile against
// ingested tenders.
type Handler struct {
	Tenders  *tenderstore.Store
	Profiles *profilestore.Store
	Scores   *readinessstore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(tenders *tenderstore.Store, profiles *profilestore.Store, scores *readinessstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Tenders:  tenders,
		Profiles: profiles,
		Scores:   scores,
		Audit:    audit,
		Log:      logger,
	}
}

type checkRequest struct {
	TenderID string `json:"tender_id"`
}

// HandleCheck handles POST /api/readiness/check. It loads the team's
// profile and the tender, runs the scoring engine, and stores the
// result (replacing any previous score for the pair).
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var req checkRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if req.TenderID == "" {
		httpjson.BadRequest(w, "tender_id is required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "readiness check")
	defer cancel()

	tender, err := h.Tenders.GetByID(ctx, req.TenderID)
	if err != nil {
		if err == tenderstore.ErrNotFound {
			httpjson.NotFound(w, "tender not found")
			return
		}
		httpjson.ServerError(w, h.Log, "load tender", err)
		return
	}

	profile, err := h.Profiles.GetByTeam(ctx, ident.TeamID)
	if err != nil {
		if err == profilestore.ErrNotFound {
			httpjson.NotFound(w, "no company profile for this team")
			return
		}
		httpjson.ServerError(w, h.Log, "load profile", err)
		return
	}

	result := scoring.Assess(tender, profile)
	saved, err := h.Scores.Save(ctx, models.ReadinessScore{
		TenderID:         tender.TenderID,
		TeamID:           ident.TeamID,
		SuitabilityScore: result.Score,
		Checklist:        result.Checklist,
		Recommendation:   result.Recommendation,
	})
	if err != nil {
		httpjson.ServerError(w, h.Log, "save readiness score", err)
		return
	}

	h.Audit.ReadinessChecked(ctx, ident.TeamID, tender.TenderID, saved.SuitabilityScore)
	httpjson.OK(w, saved)
}

// ServeGet handles GET /api/readiness/{tender_id}: the stored score for
// the authenticated team against that tender.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	tenderID := chi.URLParam(r, "tender_id")
	if tenderID == "" {
		httpjson.BadRequest(w, "tender_id is required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get readiness score")
	defer cancel()

	score, err := h.Scores.Get(ctx, tenderID, ident.TeamID)
	if err != nil {
		if err == readinessstore.ErrNotFound {
			httpjson.NotFound(w, "no readiness score for this tender")
			return
		}
		httpjson.ServerError(w, h.Log, "get readiness score", err)
		return
	}

	httpjson.OK(w, score)
}
