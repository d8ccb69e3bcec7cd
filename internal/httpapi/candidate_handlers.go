package httpapi

import (
	"net/http"
	"strings"

	"talentbase.org/internal/audit"
	"talentbase.org/internal/hiring"
)

const maxCVBytes = 8 << 20

// handleCandidateJobs lists open postings for authenticated candidates.
func (a *API) handleCandidateJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	cand, r := a.currentCandidate(w, r)
	if cand == nil {
		return
	}

	q := r.URL.Query()
	limit, err := parsePositiveInt(q.Get("limit"), 100, 1, 100)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}
	offset, err := parsePositiveInt(q.Get("offset"), 0, 0, 1<<30)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}

	jobs, err := a.hiring.ListOpenJobs(r.Context(), limit, offset)
	if err != nil {
		handleHiringError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []*hiring.JobPosting{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": jobs, "count": len(jobs)})
}

// handleUploadCV accepts a multipart upload in the "file" field and attaches
// it to the candidate's profile.
func (a *API) handleUploadCV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	cand, r := a.currentCandidate(w, r)
	if cand == nil {
		return
	}

	if err := r.ParseMultipartForm(maxCVBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	updated, err := a.hiring.AttachCV(r.Context(), cand, header.Filename, contentType, file)
	if err != nil {
		handleHiringError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "candidate.cv.uploaded", map[string]any{
		"candidate_id": cand.ID,
		"filename":     header.Filename,
	})
	writeJSON(w, http.StatusOK, updated)
}

// handleApply submits an application for /api/v1/users/apply/{job_id}.
func (a *API) handleApply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	jobID := strings.TrimPrefix(r.URL.Path, "/api/v1/users/apply/")
	jobID = strings.TrimSuffix(jobID, "/")
	if jobID == "" || strings.Contains(jobID, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	cand, r := a.currentCandidate(w, r)
	if cand == nil {
		return
	}

	app, err := a.hiring.Apply(r.Context(), cand, jobID)
	if err != nil {
		handleHiringError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "application.submitted", map[string]any{
		"application_id": app.ID,
		"job_id":         jobID,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "Application submitted successfully",
		"application_id": app.ID,
	})
}
