package scheduling

import (
	"regexp"
	"strconv"
	"strings"
)

// clock12Pattern matches a 12-hour clock endpoint such as "9:00 AM" or "12:30PM".
var clock12Pattern = regexp.MustCompile(`^(1[0-2]|[1-9]):[0-5][0-9]\s*(AM|PM)$`)

// IsValidClock12 reports whether s is a well-formed 12-hour clock endpoint.
func IsValidClock12(s string) bool {
	return clock12Pattern.MatchString(strings.TrimSpace(s))
}

// ToMinutes converts a clock string to minutes since midnight (0-1439).
// Accepts 24-hour "HH:MM" and 12-hour "H:MM AM/PM" notation. The second
// return value is false when the input cannot be parsed; callers must then
// fall back to exact string comparison instead of numeric comparison.
func ToMinutes(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	upper := strings.ToUpper(s)
	meridiem := ""
	switch {
	case strings.HasSuffix(upper, "AM"):
		meridiem = "AM"
		upper = strings.TrimSpace(strings.TrimSuffix(upper, "AM"))
	case strings.HasSuffix(upper, "PM"):
		meridiem = "PM"
		upper = strings.TrimSpace(strings.TrimSuffix(upper, "PM"))
	}

	parts := strings.SplitN(upper, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}

	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, false
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, false
	}
	if minute < 0 || minute > 59 {
		return 0, false
	}

	switch meridiem {
	case "AM":
		if hour < 1 || hour > 12 {
			return 0, false
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return 0, false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour < 0 || hour > 23 {
			return 0, false
		}
	}

	return hour*60 + minute, true
}

// ParseRange splits a "start - end" range string and converts both endpoints
// to minutes. Returns ok=false when either endpoint is unparseable.
func ParseRange(s string) (start, end int, ok bool) {
	from, to, found := splitRange(s)
	if !found {
		return 0, 0, false
	}
	start, ok = ToMinutes(from)
	if !ok {
		return 0, 0, false
	}
	end, ok = ToMinutes(to)
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}

func splitRange(s string) (from, to string, ok bool) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

// Overlaps tests two half-open intervals [aStart,aEnd) and [bStart,bEnd).
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// RangesOverlap compares two range strings numerically when both parse,
// falling back to exact string equality when either side does not.
func RangesOverlap(a, b string) bool {
	aStart, aEnd, aOK := ParseRange(a)
	bStart, bEnd, bOK := ParseRange(b)
	if aOK && bOK {
		return Overlaps(aStart, aEnd, bStart, bEnd)
	}
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}
