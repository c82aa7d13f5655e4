package scheduling

import (
	"testing"

	"counselign/models"
)

func TestAppointmentTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"pending to approved", models.StatusPending, models.StatusApproved, true},
		{"pending to rejected", models.StatusPending, models.StatusRejected, true},
		{"pending to cancelled", models.StatusPending, models.StatusCancelled, true},
		{"pending to completed", models.StatusPending, models.StatusCompleted, false},
		{"approved to completed", models.StatusApproved, models.StatusCompleted, true},
		{"approved to cancelled", models.StatusApproved, models.StatusCancelled, true},
		{"approved to rejected", models.StatusApproved, models.StatusRejected, false},
		{"completed is terminal", models.StatusCompleted, models.StatusCancelled, false},
		{"rejected is terminal", models.StatusRejected, models.StatusApproved, false},
		{"cancelled is terminal", models.StatusCancelled, models.StatusPending, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := CanTransitionAppointment(tc.from, tc.to)
			if tc.allowed && err != nil {
				t.Fatalf("expected transition %s -> %s to be allowed: %v", tc.from, tc.to, err)
			}
			if !tc.allowed && err == nil {
				t.Fatalf("expected transition %s -> %s to be rejected", tc.from, tc.to)
			}
		})
	}
}

func TestFollowUpTransitions(t *testing.T) {
	if err := CanTransitionFollowUp(models.StatusPending, models.StatusApproved); err != nil {
		t.Fatalf("pending -> approved should be allowed: %v", err)
	}
	if err := CanTransitionFollowUp(models.StatusPending, models.StatusCompleted); err != nil {
		t.Fatalf("pending -> completed should be allowed: %v", err)
	}
	if err := CanTransitionFollowUp(models.StatusCompleted, models.StatusPending); err == nil {
		t.Fatalf("completed must be terminal")
	}
	if err := CanTransitionFollowUp(models.StatusPending, models.StatusRejected); err == nil {
		t.Fatalf("follow-ups have no rejected state")
	}
}

func TestCanStudentCancel(t *testing.T) {
	if err := CanStudentCancel(models.StatusPending, "schedule conflict"); err != nil {
		t.Fatalf("pending with reason should be cancellable: %v", err)
	}
	if err := CanStudentCancel(models.StatusApproved, "sick"); err != nil {
		t.Fatalf("approved with reason should be cancellable: %v", err)
	}
	if err := CanStudentCancel(models.StatusPending, ""); err == nil {
		t.Fatalf("cancellation without a reason must fail")
	}
	if err := CanStudentCancel(models.StatusCompleted, "too late"); err == nil {
		t.Fatalf("completed appointments cannot be cancelled")
	}
}

func TestRequiresReasonAndNotifications(t *testing.T) {
	for _, status := range []string{models.StatusRejected, models.StatusCancelled} {
		if !RequiresReason(status) {
			t.Fatalf("%s should require a reason", status)
		}
		if !NotifiesStudent(status) {
			t.Fatalf("%s should notify the student", status)
		}
	}
	if RequiresReason(models.StatusApproved) {
		t.Fatalf("approval needs no reason")
	}
	if !NotifiesStudent(models.StatusApproved) {
		t.Fatalf("approval should notify the student")
	}
	if NotifiesStudent(models.StatusCompleted) {
		t.Fatalf("completion does not notify")
	}
}

func TestIsTerminal(t *testing.T) {
	for _, status := range []string{models.StatusRejected, models.StatusCancelled, models.StatusCompleted} {
		if !IsTerminal(status) {
			t.Fatalf("%s should be terminal", status)
		}
	}
	for _, status := range []string{models.StatusPending, models.StatusApproved} {
		if IsTerminal(status) {
			t.Fatalf("%s should not be terminal", status)
		}
	}
}
