package scheduling

import (
	"fmt"

	"counselign/models"
)

// appointmentTransitions is the status machine for appointments:
// pending -> approved|rejected|cancelled, approved -> completed|cancelled.
var appointmentTransitions = map[string][]string{
	models.StatusPending:  {models.StatusApproved, models.StatusRejected, models.StatusCancelled},
	models.StatusApproved: {models.StatusCompleted, models.StatusCancelled},
}

// followUpTransitions: pending -> approved|completed|cancelled,
// approved -> completed|cancelled.
var followUpTransitions = map[string][]string{
	models.StatusPending:  {models.StatusApproved, models.StatusCompleted, models.StatusCancelled},
	models.StatusApproved: {models.StatusCompleted, models.StatusCancelled},
}

func allowed(transitions map[string][]string, from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionAppointment validates a status change requested by a
// counselor or admin.
func CanTransitionAppointment(from, to string) error {
	if !allowed(appointmentTransitions, from, to) {
		return fmt.Errorf("cannot change appointment status from %s to %s", from, to)
	}
	return nil
}

// CanStudentCancel validates a student-initiated cancellation: only their
// own pending or approved appointments, and a reason is mandatory.
func CanStudentCancel(status, reason string) error {
	if status != models.StatusPending && status != models.StatusApproved {
		return fmt.Errorf("only pending or approved appointments can be cancelled")
	}
	if reason == "" {
		return fmt.Errorf("a cancellation reason is required")
	}
	return nil
}

// CanTransitionFollowUp validates a follow-up status change.
func CanTransitionFollowUp(from, to string) error {
	if !allowed(followUpTransitions, from, to) {
		return fmt.Errorf("cannot change follow-up status from %s to %s", from, to)
	}
	return nil
}

// RequiresReason reports whether a transition target needs an explanation.
func RequiresReason(to string) bool {
	return to == models.StatusRejected || to == models.StatusCancelled
}

// NotifiesStudent reports whether a transition fans out a notification and a
// best-effort email to the student.
func NotifiesStudent(to string) bool {
	switch to {
	case models.StatusApproved, models.StatusRejected, models.StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func IsTerminal(status string) bool {
	switch status {
	case models.StatusRejected, models.StatusCancelled, models.StatusCompleted:
		return true
	}
	return false
}
