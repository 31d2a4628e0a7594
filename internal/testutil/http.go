package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/tenderinsight/hub/internal/app/system/auth"
)

// NewRequest creates a test request with no identity attached.
func NewRequest(method, target string, body io.Reader) *http.Request {
	return httptest.NewRequest(method, target, body)
}

// NewAuthenticatedRequest creates a test request carrying a verified
// identity, as the auth middleware would have attached it.
func NewAuthenticatedRequest(method, target string, body io.Reader, teamID, userID string) *http.Request {
	r := httptest.NewRequest(method, target, body)
	ident := auth.Identity{UserID: userID, TeamID: teamID, Role: "member"}
	return r.WithContext(auth.WithIdentity(r.Context(), ident))
}
