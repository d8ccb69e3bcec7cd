package httpapi

import (
	"net/http"
	"strings"
	"time"

	"talentbase.org/internal/audit"
	"talentbase.org/internal/hiring"
)

type candidateRegisterRequest struct {
	Email         string     `json:"email"`
	Password      string     `json:"password"`
	FullName      string     `json:"full_name"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Gender        string     `json:"gender"`
	Phone         string     `json:"phone"`
	Address       string     `json:"address"`
	Qualification string     `json:"qualification"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	Age           int        `json:"age"`
	DesiredJob    string     `json:"desired_job"`
}

type organizationRegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	Industry    string `json:"industry"`
}

// loginRequest accepts either "email" or "username" for the account email,
// so form-era clients keep working.
type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (lr loginRequest) email() string {
	if e := strings.TrimSpace(lr.Email); e != "" {
		return e
	}
	return strings.TrimSpace(lr.Username)
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (a *API) handleCandidateRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req candidateRegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	cand, err := a.hiring.RegisterCandidate(r.Context(), hiring.CandidateRegistration{
		Email:         req.Email,
		Password:      req.Password,
		FullName:      req.FullName,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Gender:        req.Gender,
		Phone:         req.Phone,
		Address:       req.Address,
		Qualification: req.Qualification,
		DateOfBirth:   req.DateOfBirth,
		Age:           req.Age,
		DesiredJob:    req.DesiredJob,
	})
	if err != nil {
		handleHiringError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "candidate.registered", map[string]any{"candidate_id": cand.ID})
	writeJSON(w, http.StatusCreated, cand)
}

func (a *API) handleOrganizationRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req organizationRegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	org, err := a.hiring.RegisterOrganization(r.Context(), hiring.OrganizationRegistration{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		Phone:       req.Phone,
		Website:     req.Website,
		Industry:    req.Industry,
	})
	if err != nil {
		handleHiringError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "organization.registered", map[string]any{"organization_id": org.ID})
	writeJSON(w, http.StatusCreated, org)
}

func (a *API) handleCandidateLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	token, expiresAt, err := a.hiring.LoginCandidate(r.Context(), req.email(), req.Password)
	if err != nil {
		handleHiringError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "candidate.login", map[string]any{"email": strings.ToLower(req.email())})
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt})
}

func (a *API) handleOrganizationLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	token, expiresAt, err := a.hiring.LoginOrganization(r.Context(), req.email(), req.Password)
	if err != nil {
		handleHiringError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "organization.login", map[string]any{"email": strings.ToLower(req.email())})
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt})
}
