package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"talentbase.org/internal/auth"
	"talentbase.org/internal/hiring"
	"talentbase.org/internal/obs"
	"talentbase.org/internal/storage"
)

// ReadyProbe checks readiness, pinging the database when one is configured.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer over the hiring service.
type API struct {
	mux        *http.ServeMux
	hiring     *hiring.Service
	files      storage.Store
	readyProbe ReadyProbe
	version    string

	rateLimit float64
	rateBurst int
}

// Option configures the API.
type Option func(*API)

// WithRateLimit enables per-client rate limiting on the whole surface.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(a *API) {
		a.rateLimit = perSecond
		a.rateBurst = burst
	}
}

// New wires all routes.
func New(svc *hiring.Service, files storage.Store, rp ReadyProbe, version string, opts ...Option) *API {
	a := &API{
		mux:        http.NewServeMux(),
		hiring:     svc,
		files:      files,
		readyProbe: rp,
		version:    version,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/api/v1/users/register", a.handleCandidateRegister)
	a.mux.HandleFunc("/api/v1/users/login", a.handleCandidateLogin)
	a.mux.HandleFunc("/api/v1/users/jobs", a.handleCandidateJobs)
	a.mux.HandleFunc("/api/v1/users/upload-cv", a.handleUploadCV)
	a.mux.HandleFunc("/api/v1/users/apply/", a.handleApply)

	a.mux.HandleFunc("/api/v1/organizations/register", a.handleOrganizationRegister)
	a.mux.HandleFunc("/api/v1/organizations/login", a.handleOrganizationLogin)
	a.mux.HandleFunc("/api/v1/organizations/jobs", a.handleOrganizationJobs)
	a.mux.HandleFunc("/api/v1/organizations/applications/", a.handleApplicationResource)

	a.mux.HandleFunc("/api/v1/me", a.handleMe)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "resource not found")
	})

	return a
}

// Handler returns the full middleware-wrapped handler.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = MaxBodyBytes(h, 10<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	if a.rateLimit > 0 {
		h = RateLimit(h, a.rateBurst, a.rateLimit)
	}
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "talentbase-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "talentbase-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// handleMe returns the profile behind the presented token, whichever role it
// carries.
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	token, err := extractBearerToken(r.Header.Get(authHeader))
	if err != nil {
		writeError(w, r, http.StatusForbidden, credentialsMessage)
		return
	}
	actor, err := a.hiring.Resolve(r.Context(), token)
	if err != nil {
		handleHiringError(w, r, err)
		return
	}
	switch {
	case actor.Candidate != nil:
		writeJSON(w, http.StatusOK, map[string]any{"role": actor.Identity.Role, "profile": actor.Candidate})
	case actor.Organization != nil:
		writeJSON(w, http.StatusOK, map[string]any{"role": actor.Identity.Role, "profile": actor.Organization})
	default:
		writeError(w, r, http.StatusForbidden, credentialsMessage)
	}
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError uses a "detail" key for the message, matching what API clients
// already parse.
func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"detail": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func parsePositiveInt(raw string, def, min, max int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < min || val > max {
		return 0, errors.New("value out of range")
	}
	return val, nil
}

// handleHiringError maps service errors onto HTTP status codes and the
// messages clients rely on.
func handleHiringError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, hiring.ErrInvalidCredentials):
		writeError(w, r, http.StatusBadRequest, "Incorrect email or password")
	case errors.Is(err, hiring.ErrAlreadyExists):
		writeError(w, r, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, hiring.ErrAlreadyApplied):
		writeError(w, r, http.StatusBadRequest, "Already applied for this job")
	case errors.Is(err, hiring.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrForbiddenRole):
		writeError(w, r, http.StatusForbidden, credentialsMessage)
	case errors.Is(err, hiring.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "Not authorized to access this resource")
	case errors.Is(err, hiring.ErrNoCV):
		writeError(w, r, http.StatusNotFound, "CV not found")
	case errors.Is(err, hiring.ErrStatusFinal):
		writeError(w, r, http.StatusConflict, "Application already finalized")
	case errors.Is(err, hiring.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "resource not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
