package middleware

import (
	"testing"
	"time"

	"counselign/models"
)

func TestResourceFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/student/appointments", "appointments"},
		{"/api/student/appointments/12/cancel", "appointments"},
		{"/api/counselor/availability", "availability"},
		{"/api/admin/users/3", "users"},
		{"/api/admin/logs/flush", "logs"},
		{"/api/messages", "messages"},
		{"/", ""},
	}

	for _, tt := range tests {
		if got := resourceFromPath(tt.path); got != tt.want {
			t.Errorf("resourceFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestIntegrityHash(t *testing.T) {
	log := models.ActivityLog{
		UserID:     1,
		Action:     "CREATE",
		Resource:   "appointments",
		ResourceID: 4,
		IPAddress:  "10.0.0.1",
		UserAgent:  "test-agent",
	}
	log.CreatedAt = time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	original := integrityHash(log)
	if original != integrityHash(log) {
		t.Error("hash is not deterministic")
	}

	log.Action = "DELETE"
	if integrityHash(log) == original {
		t.Error("hash did not change when a field changed")
	}
}
