package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"talentbase.org/internal/auth"
	"talentbase.org/internal/hiring"
	"talentbase.org/internal/storage"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()
	tokens, err := auth.NewTokens("test-secret", auth.WithIssuer("talentbase"))
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	files, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	svc := hiring.NewService(hiring.NewInMemory(), tokens, files)
	return New(svc, files, ReadyProbe{}, "test")
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return out
}

func registerAndLogin(t *testing.T, h http.Handler, kind, email string) string {
	t.Helper()
	var payload map[string]any
	if kind == "users" {
		payload = map[string]any{"email": email, "password": "password", "full_name": "John Doe"}
	} else {
		payload = map[string]any{"email": email, "password": "password", "name": "Tech Corp"}
	}
	rr := doJSON(t, h, http.MethodPost, "/api/v1/"+kind+"/register", "", payload)
	if rr.Code != http.StatusCreated {
		t.Fatalf("register %s: %d %s", kind, rr.Code, rr.Body.String())
	}
	rr = doJSON(t, h, http.MethodPost, "/api/v1/"+kind+"/login", "", map[string]any{
		"email": email, "password": "password",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", kind, rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	token, _ := body["access_token"].(string)
	if token == "" {
		t.Fatalf("missing access_token in %v", body)
	}
	if body["token_type"] != "bearer" {
		t.Fatalf("unexpected token_type: %v", body["token_type"])
	}
	return token
}

func createJobHTTP(t *testing.T, h http.Handler, orgToken string) string {
	t.Helper()
	rr := doJSON(t, h, http.MethodPost, "/api/v1/organizations/jobs", orgToken, map[string]any{
		"title":        "Python Developer",
		"description":  "Backend role",
		"requirements": "API knowledge",
		"department":   "Engineering",
		"min_age":      21,
		"max_age":      40,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create job: %d %s", rr.Code, rr.Body.String())
	}
	id, _ := decodeBody(t, rr)["id"].(string)
	if id == "" {
		t.Fatal("missing job id")
	}
	return id
}

func uploadCV(t *testing.T, h http.Handler, token, filename, contentType, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/upload-cv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestFullHiringFlow(t *testing.T) {
	api := newTestAPI(t)
	h := api.Handler()

	orgToken := registerAndLogin(t, h, "organizations", "tech@corp.com")
	candToken := registerAndLogin(t, h, "users", "john@doe.com")
	jobID := createJobHTTP(t, h, orgToken)

	// Candidate sees the open posting.
	rr := doJSON(t, h, http.MethodGet, "/api/v1/users/jobs", candToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list jobs: %d %s", rr.Code, rr.Body.String())
	}
	if body := decodeBody(t, rr); body["count"] != float64(1) {
		t.Fatalf("expected 1 job, got %v", body["count"])
	}

	// Upload CV, then apply.
	rr = uploadCV(t, h, candToken, "cv.pdf", "application/pdf", "This is a fake CV.")
	if rr.Code != http.StatusOK {
		t.Fatalf("upload cv: %d %s", rr.Code, rr.Body.String())
	}
	if body := decodeBody(t, rr); body["is_verified"] != true {
		t.Fatalf("expected is_verified true, got %v", body)
	}

	rr = doJSON(t, h, http.MethodPost, "/api/v1/users/apply/"+jobID, candToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("apply: %d %s", rr.Code, rr.Body.String())
	}
	applyBody := decodeBody(t, rr)
	if applyBody["message"] != "Application submitted successfully" {
		t.Fatalf("unexpected message: %v", applyBody["message"])
	}
	appID, _ := applyBody["application_id"].(string)
	if appID == "" {
		t.Fatal("missing application_id")
	}

	// A second application for the same job is rejected.
	rr = doJSON(t, h, http.MethodPost, "/api/v1/users/apply/"+jobID, candToken, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("duplicate apply: %d %s", rr.Code, rr.Body.String())
	}
	if body := decodeBody(t, rr); body["detail"] != "Already applied for this job" {
		t.Fatalf("unexpected detail: %v", body["detail"])
	}

	// Owner sees the posting with its application count.
	rr = doJSON(t, h, http.MethodGet, "/api/v1/organizations/jobs", orgToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("org jobs: %d %s", rr.Code, rr.Body.String())
	}
	items, _ := decodeBody(t, rr)["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 job, got %d", len(items))
	}
	if job, _ := items[0].(map[string]any); job["application_count"] != float64(1) {
		t.Fatalf("expected application_count 1, got %v", items[0])
	}

	// Owner downloads the CV.
	rr = doJSON(t, h, http.MethodGet, "/api/v1/organizations/applications/"+appID+"/cv", orgToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("download cv: %d %s", rr.Code, rr.Body.String())
	}
	if got := rr.Body.String(); got != "This is a fake CV." {
		t.Fatalf("unexpected cv body: %q", got)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type: %q", ct)
	}

	// Owner finalizes the application.
	rr = doJSON(t, h, http.MethodPatch, "/api/v1/organizations/applications/"+appID+"/status", orgToken,
		map[string]any{"status": "accepted"})
	if rr.Code != http.StatusOK {
		t.Fatalf("update status: %d %s", rr.Code, rr.Body.String())
	}
	if body := decodeBody(t, rr); body["status"] != "accepted" {
		t.Fatalf("unexpected status: %v", body["status"])
	}

	rr = doJSON(t, h, http.MethodPatch, "/api/v1/organizations/applications/"+appID+"/status", orgToken,
		map[string]any{"status": "rejected"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for second transition, got %d", rr.Code)
	}
}

func TestRoleGatesAreEnforced(t *testing.T) {
	api := newTestAPI(t)
	h := api.Handler()

	orgToken := registerAndLogin(t, h, "organizations", "tech@corp.com")
	candToken := registerAndLogin(t, h, "users", "john@doe.com")

	// Candidate routes reject organization tokens and vice versa, with the
	// same message an invalid token gets.
	for _, tc := range []struct {
		method, path, token string
	}{
		{http.MethodGet, "/api/v1/users/jobs", orgToken},
		{http.MethodGet, "/api/v1/users/jobs", "not-a-token"},
		{http.MethodGet, "/api/v1/users/jobs", ""},
		{http.MethodGet, "/api/v1/organizations/jobs", candToken},
		{http.MethodPost, "/api/v1/users/apply/some-job", orgToken},
	} {
		rr := doJSON(t, h, tc.method, tc.path, tc.token, nil)
		if rr.Code != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403, got %d %s", tc.method, tc.path, rr.Code, rr.Body.String())
		}
		if body := decodeBody(t, rr); body["detail"] != "Could not validate credentials" {
			t.Fatalf("unexpected detail: %v", body["detail"])
		}
	}
}

func TestLoginFailures(t *testing.T) {
	api := newTestAPI(t)
	h := api.Handler()
	registerAndLogin(t, h, "users", "john@doe.com")

	for _, payload := range []map[string]any{
		{"email": "john@doe.com", "password": "wrong"},
		{"email": "nobody@doe.com", "password": "password"},
	} {
		rr := doJSON(t, h, http.MethodPost, "/api/v1/users/login", "", payload)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d %s", rr.Code, rr.Body.String())
		}
		if body := decodeBody(t, rr); body["detail"] != "Incorrect email or password" {
			t.Fatalf("unexpected detail: %v", body["detail"])
		}
	}
}

func TestDuplicateRegistration(t *testing.T) {
	api := newTestAPI(t)
	h := api.Handler()
	registerAndLogin(t, h, "users", "john@doe.com")

	rr := doJSON(t, h, http.MethodPost, "/api/v1/users/register", "", map[string]any{
		"email": "john@doe.com", "password": "other", "full_name": "Second John",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", rr.Code, rr.Body.String())
	}
	if body := decodeBody(t, rr); body["detail"] != "Email already registered" {
		t.Fatalf("unexpected detail: %v", body["detail"])
	}
}

func TestRegistrationNeverLeaksPasswordHash(t *testing.T) {
	api := newTestAPI(t)
	h := api.Handler()

	rr := doJSON(t, h, http.MethodPost, "/api/v1/users/register", "", map[string]any{
		"email": "john@doe.com", "password": "password", "full_name": "John Doe",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rr.Code, rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "password") || strings.Contains(rr.Body.String(), "hash") {
		t.Fatalf("response leaks credentials: %s", rr.Body.String())
	}
}

func TestCVDownloadTenantIsolation(t *testing.T) {
	api := newTestAPI(t)
	h := api.Handler()

	ownerToken := registerAndLogin(t, h, "organizations", "tech@corp.com")
	candToken := registerAndLogin(t, h, "users", "john@doe.com")
	jobID := createJobHTTP(t, h, ownerToken)

	if rr := uploadCV(t, h, candToken, "cv.pdf", "application/pdf", "bytes"); rr.Code != http.StatusOK {
		t.Fatalf("upload cv: %d", rr.Code)
	}
	rr := doJSON(t, h, http.MethodPost, "/api/v1/users/apply/"+jobID, candToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("apply: %d", rr.Code)
	}
	appID, _ := decodeBody(t, rr)["application_id"].(string)

	rivalToken := registerAndLogin(t, h, "organizations", "rival@corp.com")
	rr = doJSON(t, h, http.MethodGet, "/api/v1/organizations/applications/"+appID+"/cv", rivalToken, nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for rival org, got %d %s", rr.Code, rr.Body.String())
	}

	// Candidates cannot use the organization surface at all.
	rr = doJSON(t, h, http.MethodGet, "/api/v1/organizations/applications/"+appID+"/cv", candToken, nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for candidate token, got %d", rr.Code)
	}
}

func TestCVDownloadMissingDocument(t *testing.T) {
	api := newTestAPI(t)
	h := api.Handler()

	ownerToken := registerAndLogin(t, h, "organizations", "tech@corp.com")
	candToken := registerAndLogin(t, h, "users", "john@doe.com")
	jobID := createJobHTTP(t, h, ownerToken)

	rr := doJSON(t, h, http.MethodPost, "/api/v1/users/apply/"+jobID, candToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("apply: %d", rr.Code)
	}
	appID, _ := decodeBody(t, rr)["application_id"].(string)

	rr = doJSON(t, h, http.MethodGet, "/api/v1/organizations/applications/"+appID+"/cv", ownerToken, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without CV, got %d %s", rr.Code, rr.Body.String())
	}
	if body := decodeBody(t, rr); body["detail"] != "CV not found" {
		t.Fatalf("unexpected detail: %v", body["detail"])
	}
}

func TestApplyUnknownJob(t *testing.T) {
	api := newTestAPI(t)
	h := api.Handler()
	candToken := registerAndLogin(t, h, "users", "john@doe.com")

	rr := doJSON(t, h, http.MethodPost, "/api/v1/users/apply/no-such-job", candToken, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestMeReturnsActorProfile(t *testing.T) {
	api := newTestAPI(t)
	h := api.Handler()

	candToken := registerAndLogin(t, h, "users", "john@doe.com")
	rr := doJSON(t, h, http.MethodGet, "/api/v1/me", candToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("me: %d %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["role"] != "user" {
		t.Fatalf("unexpected role: %v", body["role"])
	}
	profile, _ := body["profile"].(map[string]any)
	if profile["email"] != "john@doe.com" {
		t.Fatalf("unexpected profile: %v", body["profile"])
	}

	orgToken := registerAndLogin(t, h, "organizations", "tech@corp.com")
	rr = doJSON(t, h, http.MethodGet, "/api/v1/me", orgToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("me org: %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["role"] != "organization" {
		t.Fatalf("unexpected role: %v", body["role"])
	}
}

func TestHealthAndInfo(t *testing.T) {
	api := newTestAPI(t)
	h := api.Handler()

	rr := doJSON(t, h, http.MethodGet, "/healthz", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["status"] != "ok" {
		t.Fatalf("unexpected healthz body: %v", body)
	}

	rr = doJSON(t, h, http.MethodGet, "/readyz", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("readyz: %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodGet, "/v1/info", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("info: %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["version"] != "test" {
		t.Fatalf("unexpected version: %v", body["version"])
	}

	rr = doJSON(t, h, http.MethodGet, "/nope", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 at unknown path, got %d", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	api := newTestAPI(t)
	h := api.Handler()

	rr := doJSON(t, h, http.MethodGet, "/api/v1/users/register", "", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
	if allow := rr.Header().Get("Allow"); allow != "POST" {
		t.Fatalf("unexpected Allow header: %q", allow)
	}
}
