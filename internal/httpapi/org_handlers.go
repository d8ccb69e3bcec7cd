package httpapi

import (
	"io"
	"net/http"
	"strings"

	"talentbase.org/internal/audit"
	"talentbase.org/internal/hiring"
)

type jobRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
	Department   string `json:"department"`
	MinAge       int    `json:"min_age"`
	MaxAge       int    `json:"max_age"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// handleOrganizationJobs serves POST (create) and GET (list with counts) on
// /api/v1/organizations/jobs.
func (a *API) handleOrganizationJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createJob(w, r)
	case http.MethodGet:
		a.listOrganizationJobs(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) createJob(w http.ResponseWriter, r *http.Request) {
	org, r := a.currentOrganization(w, r)
	if org == nil {
		return
	}
	var req jobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	job, err := a.hiring.CreateJob(r.Context(), org, hiring.JobInput{
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		Department:   req.Department,
		MinAge:       req.MinAge,
		MaxAge:       req.MaxAge,
	})
	if err != nil {
		handleHiringError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "job.created", map[string]any{"job_id": job.ID})
	writeJSON(w, http.StatusCreated, job)
}

func (a *API) listOrganizationJobs(w http.ResponseWriter, r *http.Request) {
	org, r := a.currentOrganization(w, r)
	if org == nil {
		return
	}
	jobs, err := a.hiring.OrganizationJobs(r.Context(), org)
	if err != nil {
		handleHiringError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []*hiring.JobWithApplications{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": jobs, "count": len(jobs)})
}

// handleApplicationResource routes
// /api/v1/organizations/applications/{id}/cv and
// /api/v1/organizations/applications/{id}/status.
func (a *API) handleApplicationResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/organizations/applications/")
	switch {
	case strings.HasSuffix(path, "/cv"):
		id := strings.TrimSuffix(path, "/cv")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.downloadCV(w, r, id)
	case strings.HasSuffix(path, "/status"):
		id := strings.TrimSuffix(path, "/status")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		if r.Method != http.MethodPatch {
			methodNotAllowed(w, r, http.MethodPatch)
			return
		}
		a.updateApplicationStatus(w, r, id)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

// downloadCV streams the candidate document after the ownership check.
func (a *API) downloadCV(w http.ResponseWriter, r *http.Request, applicationID string) {
	org, r := a.currentOrganization(w, r)
	if org == nil {
		return
	}
	cv, err := a.hiring.AuthorizeCVAccess(r.Context(), org, applicationID)
	if err != nil {
		handleHiringError(w, r, err)
		return
	}
	f, err := a.files.Open(r.Context(), cv.Path)
	if err != nil {
		handleHiringError(w, r, hiring.ErrNoCV)
		return
	}
	defer f.Close()

	_ = audit.LogEvent(r.Context(), "application.cv.downloaded", map[string]any{
		"application_id": applicationID,
		"candidate_id":   cv.CandidateID,
	})

	contentType := cv.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="cv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, f)
}

func (a *API) updateApplicationStatus(w http.ResponseWriter, r *http.Request, applicationID string) {
	org, r := a.currentOrganization(w, r)
	if org == nil {
		return
	}
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	status, ok := hiring.ParseApplicationStatus(req.Status)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "status must be accepted or rejected")
		return
	}
	app, err := a.hiring.UpdateApplicationStatus(r.Context(), org, applicationID, status)
	if err != nil {
		handleHiringError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "application.status.updated", map[string]any{
		"application_id": app.ID,
		"status":         string(app.Status),
	})
	writeJSON(w, http.StatusOK, app)
}
