package scheduling

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"counselign/models"
)

// Slot conflict errors surfaced to clients as 400 responses.
var (
	ErrAlreadyBooked     = errors.New("this time slot is already booked")
	ErrGroupSlotPresent  = errors.New("this time slot is already booked for a group consultation")
	ErrGroupCapacityFull = errors.New("this group consultation slot is already full")
	ErrFollowUpConflict  = errors.New("the counselor already has a follow-up session at this time")
)

// SlotRequest describes a requested booking to check against the ledgers.
type SlotRequest struct {
	Date             time.Time
	TimeRange        string
	ConsultationType string
	CounselorID      *uint // nil = no counselor preference
}

// Resolver decides whether a requested slot may be booked given existing
// appointment and follow-up rows and counselor availability.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// activeStatuses are the statuses that hold a slot.
var activeStatuses = []string{models.StatusPending, models.StatusApproved}

// CheckSlot runs the booking eligibility rules inside tx. Rows examined are
// locked FOR UPDATE so that two concurrent bookings of the same slot cannot
// both pass the check.
func (r *Resolver) CheckSlot(tx *gorm.DB, req SlotRequest) error {
	if req.TimeRange == "" || req.ConsultationType == "" || req.Date.IsZero() {
		return errors.New("preferred date, time and consultation type are required")
	}

	query := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Model(&models.Appointment{}).
		Where("preferred_date = ? AND preferred_time = ?", req.Date.Format("2006-01-02"), req.TimeRange).
		Where("status IN ?", activeStatuses)

	// A preferred counselor conflicts with rows for that counselor and with
	// unassigned (no-preference) rows; a no-preference request conflicts with
	// every row at the slot.
	if req.CounselorID != nil {
		query = query.Where("(counselor_id = ? OR counselor_id IS NULL)", *req.CounselorID)
	}

	var existing []models.Appointment
	if err := query.Find(&existing).Error; err != nil {
		return fmt.Errorf("slot lookup failed: %w", err)
	}

	var individual, group int
	for _, a := range existing {
		switch a.ConsultationType {
		case models.ConsultationIndividual:
			individual++
		case models.ConsultationGroup:
			group++
		}
	}

	switch req.ConsultationType {
	case models.ConsultationIndividual:
		if individual > 0 {
			return ErrAlreadyBooked
		}
		if group > 0 {
			return ErrGroupSlotPresent
		}
	case models.ConsultationGroup:
		if individual > 0 {
			return ErrAlreadyBooked
		}
		if group >= models.GroupSlotCapacity {
			return ErrGroupCapacityFull
		}
	default:
		return fmt.Errorf("unknown consultation type %q", req.ConsultationType)
	}

	// Follow-ups always block the counselor's slot exclusively.
	if req.CounselorID != nil {
		var followUps int64
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Model(&models.FollowUpAppointment{}).
			Where("counselor_id = ? AND preferred_date = ? AND preferred_time = ?",
				*req.CounselorID, req.Date.Format("2006-01-02"), req.TimeRange).
			Where("status IN ?", activeStatuses).
			Count(&followUps).Error
		if err != nil {
			return fmt.Errorf("follow-up lookup failed: %w", err)
		}
		if followUps > 0 {
			return ErrFollowUpConflict
		}
	}

	return nil
}

// BookAppointment checks eligibility and inserts the pending row in one
// transaction, closing the check-then-insert race window.
func (r *Resolver) BookAppointment(appointment *models.Appointment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		req := SlotRequest{
			Date:             appointment.PreferredDate,
			TimeRange:        appointment.PreferredTime,
			ConsultationType: appointment.ConsultationType,
			CounselorID:      appointment.CounselorID,
		}
		if err := r.CheckSlot(tx, req); err != nil {
			return err
		}
		appointment.Status = models.StatusPending
		return tx.Create(appointment).Error
	})
}

// BookFollowUp verifies the parent is completed, assigns the next sequence
// number and inserts the pending follow-up, all within one transaction.
func (r *Resolver) BookFollowUp(followUp *models.FollowUpAppointment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var parent models.Appointment
		if err := tx.First(&parent, followUp.AppointmentID).Error; err != nil {
			return fmt.Errorf("parent appointment not found")
		}
		if parent.Status != models.StatusCompleted {
			return fmt.Errorf("follow-up sessions require a completed parent appointment")
		}

		req := SlotRequest{
			Date:             followUp.PreferredDate,
			TimeRange:        followUp.PreferredTime,
			ConsultationType: followUp.ConsultationType,
			CounselorID:      &followUp.CounselorID,
		}
		if err := r.CheckSlot(tx, req); err != nil {
			return err
		}

		var maxSequence int
		err := tx.Model(&models.FollowUpAppointment{}).
			Where("appointment_id = ?", followUp.AppointmentID).
			Select("COALESCE(MAX(follow_up_sequence), 0)").
			Scan(&maxSequence).Error
		if err != nil {
			return err
		}

		followUp.StudentID = parent.StudentID
		followUp.FollowUpSequence = maxSequence + 1
		followUp.Status = models.StatusPending
		return tx.Create(followUp).Error
	})
}

// BookedSlot summarizes occupancy of one time range on a date.
type BookedSlot struct {
	TimeRange      string `json:"time_range"`
	Individual     int    `json:"individual"`
	Group          int    `json:"group"`
	GroupRemaining int    `json:"group_remaining"`
	Blocked        bool   `json:"blocked"`
}

// BookedTimes lists all held time ranges on a date, used by the booking form
// to grey out unavailable slots.
func (r *Resolver) BookedTimes(date time.Time, counselorID *uint) ([]BookedSlot, error) {
	query := r.db.Model(&models.Appointment{}).
		Where("preferred_date = ? AND status IN ?", date.Format("2006-01-02"), activeStatuses)
	if counselorID != nil {
		query = query.Where("(counselor_id = ? OR counselor_id IS NULL)", *counselorID)
	}

	var rows []models.Appointment
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	byRange := make(map[string]*BookedSlot)
	order := make([]string, 0)
	for _, a := range rows {
		slot, ok := byRange[a.PreferredTime]
		if !ok {
			slot = &BookedSlot{TimeRange: a.PreferredTime}
			byRange[a.PreferredTime] = slot
			order = append(order, a.PreferredTime)
		}
		if a.ConsultationType == models.ConsultationIndividual {
			slot.Individual++
		} else {
			slot.Group++
		}
	}

	// Follow-ups hold their counselor's slot exclusively.
	if counselorID != nil {
		var followUps []models.FollowUpAppointment
		err := r.db.Where("counselor_id = ? AND preferred_date = ? AND status IN ?",
			*counselorID, date.Format("2006-01-02"), activeStatuses).
			Find(&followUps).Error
		if err != nil {
			return nil, err
		}
		for _, f := range followUps {
			slot, ok := byRange[f.PreferredTime]
			if !ok {
				slot = &BookedSlot{TimeRange: f.PreferredTime}
				byRange[f.PreferredTime] = slot
				order = append(order, f.PreferredTime)
			}
			slot.Blocked = true
		}
	}

	result := make([]BookedSlot, 0, len(order))
	for _, key := range order {
		slot := byRange[key]
		slot.GroupRemaining = models.GroupSlotCapacity - slot.Group
		if slot.GroupRemaining < 0 {
			slot.GroupRemaining = 0
		}
		if slot.Individual > 0 || slot.Group >= models.GroupSlotCapacity {
			slot.Blocked = true
		}
		result = append(result, *slot)
	}
	return result, nil
}

// IsCounselorAvailable reports whether the counselor has a recurring window
// covering the requested weekday and time range. A NULL time_scheduled row
// means the whole day is open.
func (r *Resolver) IsCounselorAvailable(counselorID uint, date time.Time, timeRange string) (bool, error) {
	weekday := date.Weekday().String()

	var windows []models.CounselorAvailability
	err := r.db.Where("counselor_id = ? AND weekday = ?", counselorID, weekday).
		Find(&windows).Error
	if err != nil {
		return false, err
	}

	for _, w := range windows {
		if w.TimeScheduled == nil {
			return true, nil
		}
		if RangesOverlap(*w.TimeScheduled, timeRange) {
			return true, nil
		}
	}
	return false, nil
}
