package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"": "/",
		"/metrics":                        "/metrics",
		"/api/v1/users/jobs":              "/api/v1/users/jobs",
		"/api/v1/users/apply/01ABC":       "/api/v1/users/apply/:id",
		"/api/v1/users/apply/01ABC/extra": "/api/v1/users/apply/01ABC/extra",
		"/api/v1/organizations/applications/7/cv":     "/api/v1/organizations/applications/:id/cv",
		"/api/v1/organizations/applications/7/status": "/api/v1/organizations/applications/:id/status",
		"/api/v1/organizations/jobs?limit=10":         "/api/v1/organizations/jobs",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
