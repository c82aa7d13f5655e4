package utils

import "testing"

func TestIsValidRole(t *testing.T) {
	for _, role := range []string{"student", "counselor", "admin"} {
		if !IsValidRole(role) {
			t.Errorf("expected %q to be a valid role", role)
		}
	}
	for _, role := range []string{"", "teacher", "owner", "Admin"} {
		if IsValidRole(role) {
			t.Errorf("expected %q to be rejected", role)
		}
	}
}

func TestIsValidFileExtension(t *testing.T) {
	allowed := []string{"jpg", "jpeg", "png", "gif"}

	tests := []struct {
		filename string
		want     bool
	}{
		{"photo.jpg", true},
		{"photo.JPG", true},
		{"photo.jpeg", true},
		{"archive.tar.png", true},
		{"photo.pdf", false},
		{"photo", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := IsValidFileExtension(tc.filename, allowed); got != tc.want {
			t.Errorf("IsValidFileExtension(%q) = %v, want %v", tc.filename, got, tc.want)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world  "); got != "helloworld" {
		t.Errorf("SanitizeString returned %q", got)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if err := CheckPassword("secret123", hash); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := CheckPassword("wrong", hash); err == nil {
		t.Errorf("wrong password accepted")
	}
}
