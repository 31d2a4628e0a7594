// internal/app/features/profiles/handler.go
package profiles

import (
	"errors"
	"net/http"

	"github.com/tenderinsight/hub/internal/app/store/profiles"
	"github.com/tenderinsight/hub/internal/app/system/auth"
	"github.com/tenderinsight/hub/internal/app/system/htmlsanitize"
	"github.com/tenderinsight/hub/internal/app/system/httpjson"
	"github.com/tenderinsight/hub/internal/app/system/timeouts"
	"github.com/tenderinsight/hub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves company profile CRUD for the authenticated team.
type Handler struct {
	Profiles *profilestore.Store
	Log      *zap.Logger
}

func NewHandler(profiles *profilestore.Store, logger *zap.Logger) *Handler {
	return &Handler{Profiles: profiles, Log: logger}
}

// profileRequest is the client payload for create and replace.
type profileRequest struct {
	IndustrySector     string                 `json:"industry_sector"`
	ServicesProvided   []string               `json:"services_provided"`
	Certifications     []models.Certification `json:"certifications"`
	GeographicCoverage []string               `json:"geographic_coverage"`
	YearsExperience    int                    `json:"years_experience"`
	ContactEmail       string                 `json:"contact_email"`
	ContactPhone       string                 `json:"contact_phone"`
	Website            string                 `json:"website"`
	BBBEELevel         *int                   `json:"bbbee_level"`
	CIDBGrade          string                 `json:"cidb_grade"`
	CompanySize        string                 `json:"company_size"`
	RegistrationNumber string                 `json:"company_registration_number"`
}

func (req profileRequest) toModel(teamID string) models.CompanyProfile {
	return models.CompanyProfile{
		TeamID:                    teamID,
		IndustrySector:            htmlsanitize.StripTags(req.IndustrySector),
		ServicesProvided:          stripAll(req.ServicesProvided),
		Certifications:            req.Certifications,
		GeographicCoverage:        stripAll(req.GeographicCoverage),
		YearsExperience:           req.YearsExperience,
		ContactEmail:              req.ContactEmail,
		ContactPhone:              req.ContactPhone,
		Website:                   req.Website,
		BBBEELevel:                req.BBBEELevel,
		CIDBGrade:                 req.CIDBGrade,
		CompanySize:               req.CompanySize,
		CompanyRegistrationNumber: req.RegistrationNumber,
	}
}

func stripAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if clean := htmlsanitize.StripTags(s); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

// HandleCreate handles POST /api/profile.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var req profileRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create profile")
	defer cancel()

	created, err := h.Profiles.Create(ctx, req.toModel(ident.TeamID))
	if err != nil {
		switch {
		case errors.Is(err, profilestore.ErrDuplicate):
			httpjson.BadRequest(w, "profile already exists for this team")
		case errors.Is(err, profilestore.ErrInvalid):
			httpjson.BadRequest(w, err.Error())
		default:
			httpjson.ServerError(w, h.Log, "create profile", err)
		}
		return
	}

	httpjson.Created(w, created)
}

// ServeGet handles GET /api/profile.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get profile")
	defer cancel()

	profile, err := h.Profiles.GetByTeam(ctx, ident.TeamID)
	if err != nil {
		if err == profilestore.ErrNotFound {
			httpjson.NotFound(w, "no profile for this team")
			return
		}
		httpjson.ServerError(w, h.Log, "get profile", err)
		return
	}

	httpjson.OK(w, profile)
}

// HandleReplace handles PUT /api/profile.
func (h *Handler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var req profileRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update profile")
	defer cancel()

	updated, err := h.Profiles.Update(ctx, ident.TeamID, req.toModel(ident.TeamID))
	if err != nil {
		switch {
		case errors.Is(err, profilestore.ErrNotFound):
			httpjson.NotFound(w, "no profile for this team")
		case errors.Is(err, profilestore.ErrInvalid):
			httpjson.BadRequest(w, err.Error())
		default:
			httpjson.ServerError(w, h.Log, "update profile", err)
		}
		return
	}

	httpjson.OK(w, updated)
}
