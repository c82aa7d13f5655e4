package scheduling

import "testing"

func TestToMinutes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{
			name:     "24-hour morning",
			input:    "09:00",
			expected: 540,
		},
		{
			name:     "24-hour afternoon",
			input:    "13:30",
			expected: 810,
		},
		{
			name:     "12-hour afternoon",
			input:    "1:30 PM",
			expected: 810,
		},
		{
			name:     "12-hour no space",
			input:    "1:30PM",
			expected: 810,
		},
		{
			name:     "noon",
			input:    "12:00 PM",
			expected: 720,
		},
		{
			name:     "midnight",
			input:    "12:00 AM",
			expected: 0,
		},
		{
			name:     "late evening",
			input:    "11:59 PM",
			expected: 1439,
		},
		{
			name:     "lowercase meridiem",
			input:    "9:15 am",
			expected: 555,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ToMinutes(tc.input)
			if !ok {
				t.Fatalf("expected %q to parse", tc.input)
			}
			if got != tc.expected {
				t.Fatalf("expected %d minutes, got %d", tc.expected, got)
			}
		})
	}
}

func TestToMinutesEquivalentNotations(t *testing.T) {
	pairs := [][2]string{
		{"13:30", "1:30 PM"},
		{"09:00", "9:00 AM"},
		{"00:15", "12:15 AM"},
		{"12:45", "12:45 PM"},
	}
	for _, p := range pairs {
		a, okA := ToMinutes(p[0])
		b, okB := ToMinutes(p[1])
		if !okA || !okB {
			t.Fatalf("expected both %q and %q to parse", p[0], p[1])
		}
		if a != b {
			t.Fatalf("%q -> %d but %q -> %d, expected equal", p[0], a, p[1], b)
		}
	}
}

func TestToMinutesInvalid(t *testing.T) {
	inputs := []string{"", "invalid", "25:00", "13:00 PM", "0:30 AM", "9:60", "noon"}
	for _, input := range inputs {
		if _, ok := ToMinutes(input); ok {
			t.Fatalf("expected %q to be unparseable", input)
		}
	}
}

func TestOverlapsSymmetric(t *testing.T) {
	cases := []struct {
		aStart, aEnd, bStart, bEnd int
		expected                   bool
	}{
		{540, 600, 570, 630, true},  // partial overlap
		{540, 600, 600, 660, false}, // adjacent half-open intervals
		{540, 600, 540, 600, true},  // identical
		{540, 600, 660, 720, false}, // disjoint
		{540, 720, 570, 600, true},  // containment
	}
	for _, tc := range cases {
		forward := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd)
		backward := Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd)
		if forward != backward {
			t.Fatalf("overlap not symmetric for [%d,%d) vs [%d,%d)", tc.aStart, tc.aEnd, tc.bStart, tc.bEnd)
		}
		if forward != tc.expected {
			t.Fatalf("expected overlap=%v for [%d,%d) vs [%d,%d), got %v",
				tc.expected, tc.aStart, tc.aEnd, tc.bStart, tc.bEnd, forward)
		}
	}
}

func TestParseRange(t *testing.T) {
	start, end, ok := ParseRange("9:00 AM-10:00 AM")
	if !ok {
		t.Fatalf("expected range to parse")
	}
	if start != 540 || end != 600 {
		t.Fatalf("expected 540-600, got %d-%d", start, end)
	}

	start, end, ok = ParseRange("13:00 - 14:30")
	if !ok {
		t.Fatalf("expected 24-hour range to parse")
	}
	if start != 780 || end != 870 {
		t.Fatalf("expected 780-870, got %d-%d", start, end)
	}

	if _, _, ok := ParseRange("all day"); ok {
		t.Fatalf("expected malformed range to fail")
	}
}

func TestRangesOverlapFallback(t *testing.T) {
	// Both parse: numeric comparison across notations.
	if !RangesOverlap("9:00 AM-10:00 AM", "09:30-10:30") {
		t.Fatalf("expected mixed-notation ranges to overlap")
	}
	if RangesOverlap("9:00 AM-10:00 AM", "10:00 AM-11:00 AM") {
		t.Fatalf("adjacent ranges must not overlap")
	}

	// Unparseable side: exact string match only.
	if !RangesOverlap("morning block", "morning block") {
		t.Fatalf("expected identical unparseable ranges to match")
	}
	if RangesOverlap("morning block", "9:00 AM-10:00 AM") {
		t.Fatalf("unparseable range must not match a different string")
	}
}

func TestIsValidClock12(t *testing.T) {
	valid := []string{"9:00 AM", "12:59 PM", "1:05PM", "10:30 AM"}
	for _, s := range valid {
		if !IsValidClock12(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}

	invalid := []string{"13:00 PM", "0:30 AM", "9:60 AM", "9:00", "900 AM"}
	for _, s := range invalid {
		if IsValidClock12(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}
