package auth

import (
	"context"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "password" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !VerifyPassword(hash, "password") {
		t.Fatal("expected matching password to verify")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatal("expected mismatched password to fail")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	for _, hash := range []string{"", "not-a-bcrypt-hash", "$2a$xx"} {
		if VerifyPassword(hash, "password") {
			t.Fatalf("VerifyPassword(%q) unexpectedly succeeded", hash)
		}
	}
}

func TestContextIdentityRoundTrip(t *testing.T) {
	ctx := ContextWithIdentity(context.Background(), Identity{SubjectID: "org-1", Role: RoleOrganization})
	id, ok := IdentityFromContext(ctx)
	if !ok || id.SubjectID != "org-1" || id.Role != RoleOrganization {
		t.Fatalf("unexpected identity: %+v ok=%v", id, ok)
	}
	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Fatal("expected no identity on fresh context")
	}
}
