package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"talentbase.org/internal/auth"
	"talentbase.org/internal/hiring"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "

	// credentialsMessage is deliberately the same for a missing header, a bad
	// signature, an expired token and a wrong role, so callers cannot probe
	// which check failed.
	credentialsMessage = "Could not validate credentials"
)

// currentCandidate authenticates the request as a candidate. On failure it
// writes the response and returns nil. On success the identity is attached to
// the request context for audit logging.
func (a *API) currentCandidate(w http.ResponseWriter, r *http.Request) (*hiring.Candidate, *http.Request) {
	token, err := extractBearerToken(r.Header.Get(authHeader))
	if err != nil {
		writeError(w, r, http.StatusForbidden, credentialsMessage)
		return nil, r
	}
	cand, err := a.hiring.ResolveCandidate(r.Context(), token)
	if err != nil {
		handleAuthnError(w, r, err)
		return nil, r
	}
	ctx := auth.ContextWithIdentity(r.Context(), auth.Identity{SubjectID: cand.ID, Role: auth.RoleCandidate})
	ctx = auth.ContextWithToken(ctx, token)
	return cand, r.WithContext(ctx)
}

// currentOrganization authenticates the request as an organization.
func (a *API) currentOrganization(w http.ResponseWriter, r *http.Request) (*hiring.Organization, *http.Request) {
	token, err := extractBearerToken(r.Header.Get(authHeader))
	if err != nil {
		writeError(w, r, http.StatusForbidden, credentialsMessage)
		return nil, r
	}
	org, err := a.hiring.ResolveOrganization(r.Context(), token)
	if err != nil {
		handleAuthnError(w, r, err)
		return nil, r
	}
	ctx := auth.ContextWithIdentity(r.Context(), auth.Identity{SubjectID: org.ID, Role: auth.RoleOrganization})
	ctx = auth.ContextWithToken(ctx, token)
	return org, r.WithContext(ctx)
}

func handleAuthnError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrForbiddenRole):
		writeError(w, r, http.StatusForbidden, credentialsMessage)
	case errors.Is(err, hiring.ErrNotFound):
		// Token is valid but the account is gone.
		writeError(w, r, http.StatusNotFound, "Account not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "authentication error")
	}
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
