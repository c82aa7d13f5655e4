package controllers

import (
	"testing"

	"counselign/models"
)

func TestIsValidWeekday(t *testing.T) {
	for _, day := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"} {
		if !isValidWeekday(day) {
			t.Errorf("expected %q to be valid", day)
		}
	}
	for _, day := range []string{"Saturday", "Sunday", "monday", ""} {
		if isValidWeekday(day) {
			t.Errorf("expected %q to be rejected", day)
		}
	}
}

func TestGroupByWeekday(t *testing.T) {
	window := "9:00 AM-12:00 PM"
	rows := []models.CounselorAvailability{
		{Weekday: "Monday", TimeScheduled: &window},
		{Weekday: "Monday", TimeScheduled: nil},
		{Weekday: "Friday", TimeScheduled: &window},
	}

	grouped := groupByWeekday(rows)

	monday, ok := grouped["Monday"].([]string)
	if !ok || len(monday) != 2 {
		t.Fatalf("expected 2 Monday windows, got %v", grouped["Monday"])
	}
	if monday[0] != window || monday[1] != "all day" {
		t.Errorf("unexpected Monday windows: %v", monday)
	}

	// Empty weekdays still appear in the response
	tuesday, ok := grouped["Tuesday"].([]string)
	if !ok || len(tuesday) != 0 {
		t.Errorf("expected empty Tuesday bucket, got %v", grouped["Tuesday"])
	}

	if _, present := grouped["Saturday"]; present {
		t.Errorf("weekend keys should not be present")
	}
}
