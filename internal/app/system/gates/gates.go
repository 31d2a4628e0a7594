// Package gates provides authorization and plan-gate checks for HTTP
// handlers. Route-level middleware (auth.Verifier.Middleware) guarantees
// a verified identity is present; gates resolve that identity to a team
// and enforce the team's plan limits, writing JSON errors when checks
// fail.
//
// Handlers behind the auth middleware call TeamFromRequest first, then
// the specific gate for the operation (search quota, summaries, exports).
// Each gate returns false after having written the error response, so
// call sites read:
//
//	team, ok := g.TeamFromRequest(w, r)
//	if !ok {
//	    return
//	}
//	if !g.AllowSearch(w, r, team) {
//	    return
//	}
package gates

import (
	"net/http"

	"github.com/tenderinsight/hub/internal/app/store/teams"
	"github.com/tenderinsight/hub/internal/app/system/auditlog"
	"github.com/tenderinsight/hub/internal/app/system/auth"
	"github.com/tenderinsight/hub/internal/app/system/httpjson"
	"github.com/tenderinsight/hub/internal/app/system/plans"
	"github.com/tenderinsight/hub/internal/app/system/timeouts"
	"github.com/tenderinsight/hub/internal/domain/models"
	"go.uber.org/zap"
)

// Gatekeeper resolves request identities to teams and applies plan gates.
type Gatekeeper struct {
	Teams *teamstore.Store
	Plans *plans.Gate
	Audit *auditlog.Logger
	Log   *zap.Logger
}

func New(teams *teamstore.Store, gate *plans.Gate, audit *auditlog.Logger, logger *zap.Logger) *Gatekeeper {
	return &Gatekeeper{Teams: teams, Plans: gate, Audit: audit, Log: logger}
}

// TeamFromRequest loads the team for the request's verified identity.
// Writes 401 when no identity is present and 404 when the team is gone.
func (g *Gatekeeper) TeamFromRequest(w http.ResponseWriter, r *http.Request) (models.Team, bool) {
	ident, ok := auth.FromContext(r.Context())
	if !ok || ident.TeamID == "" {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required", "")
		return models.Team{}, false
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), g.Log, "load team")
	defer cancel()

	team, err := g.Teams.GetByID(ctx, ident.TeamID)
	if err != nil {
		if err == teamstore.ErrNotFound {
			httpjson.NotFound(w, "team not found")
			return models.Team{}, false
		}
		httpjson.ServerError(w, g.Log, "load team", err)
		return models.Team{}, false
	}
	return team, true
}

// AllowSearch consumes one weekly search from the team's quota.
// Writes 429 and an audit event when the quota is spent.
func (g *Gatekeeper) AllowSearch(w http.ResponseWriter, r *http.Request, team models.Team) bool {
	err := g.Plans.ConsumeSearch(r.Context(), team)
	if err == nil {
		return true
	}
	if err == plans.ErrQuotaExceeded {
		g.Audit.QuotaExceeded(r.Context(), r, team.ID, "search")
		httpjson.Error(w, http.StatusTooManyRequests, "weekly search quota exceeded",
			"upgrade the team plan for unlimited search")
		return false
	}
	httpjson.ServerError(w, g.Log, "search quota", err)
	return false
}

// AllowSummaries checks the team's plan covers document summarization.
func (g *Gatekeeper) AllowSummaries(w http.ResponseWriter, r *http.Request, team models.Team) bool {
	if err := g.Plans.AllowSummaries(team); err != nil {
		g.Audit.QuotaExceeded(r.Context(), r, team.ID, "summaries")
		httpjson.Error(w, http.StatusForbidden, "summarization not available on this plan", "")
		return false
	}
	return true
}

// AllowExports checks the team's plan covers report exports.
func (g *Gatekeeper) AllowExports(w http.ResponseWriter, r *http.Request, team models.Team) bool {
	if err := g.Plans.AllowExports(team); err != nil {
		g.Audit.QuotaExceeded(r.Context(), r, team.ID, "exports")
		httpjson.Error(w, http.StatusForbidden, "exports not available on this plan", "")
		return false
	}
	return true
}
