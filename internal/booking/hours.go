package booking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The clinic's slot and working-hours text uses Arabic day-period markers:
// ص (AM) and م (PM), with the long forms صباحاً / مساءً appearing in the
// staff-edited working-hours settings.
const (
	periodAM = "ص"
	periodPM = "م"
)

// HourWindow is a time-of-day window in minutes since midnight. A slot t is
// inside the window when Start <= t < End.
type HourWindow struct {
	Start int
	End   int
}

// Contains reports whether the minute-of-day value falls inside the window.
func (w HourWindow) Contains(minutes int) bool {
	return minutes >= w.Start && minutes < w.End
}

// SlotToMinutes converts a catalog slot such as "09:15 ص" or "01:00 م" to
// minutes since midnight.
func SlotToMinutes(slot string) (int, error) {
	parts := strings.Fields(strings.TrimSpace(slot))
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed time slot %q", slot)
	}
	hm := strings.Split(parts[0], ":")
	if len(hm) != 2 {
		return 0, fmt.Errorf("malformed time slot %q", slot)
	}
	hour, err := strconv.Atoi(hm[0])
	if err != nil {
		return 0, fmt.Errorf("malformed time slot %q: %w", slot, err)
	}
	minute, err := strconv.Atoi(hm[1])
	if err != nil {
		return 0, fmt.Errorf("malformed time slot %q: %w", slot, err)
	}
	switch parts[1] {
	case periodPM:
		if hour != 12 {
			hour += 12
		}
	case periodAM:
		if hour == 12 {
			hour = 0
		}
	default:
		return 0, fmt.Errorf("malformed time slot %q: unknown period %q", slot, parts[1])
	}
	return hour*60 + minute, nil
}

// workingHoursTimeRe matches one side of a working-hours expression, e.g.
// "9:00 صباحاً" or "4:00 م".
var workingHoursTimeRe = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*(صباحاً|مساءً|ص|م)`)

// ParseWorkingHours parses staff-edited working-hours text such as
// "9:00 صباحاً - 9:00 مساءً" into an HourWindow.
func ParseWorkingHours(text string) (HourWindow, error) {
	parts := strings.Split(text, "-")
	if len(parts) != 2 {
		return HourWindow{}, fmt.Errorf("malformed working hours %q", text)
	}
	start, err := parseWorkingHoursTime(strings.TrimSpace(parts[0]))
	if err != nil {
		return HourWindow{}, fmt.Errorf("malformed working hours %q: %w", text, err)
	}
	end, err := parseWorkingHoursTime(strings.TrimSpace(parts[1]))
	if err != nil {
		return HourWindow{}, fmt.Errorf("malformed working hours %q: %w", text, err)
	}
	return HourWindow{Start: start, End: end}, nil
}

func parseWorkingHoursTime(t string) (int, error) {
	m := workingHoursTimeRe.FindStringSubmatch(t)
	if m == nil {
		return 0, fmt.Errorf("no time in %q", t)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	switch m[3] {
	case "مساءً", periodPM:
		if hour != 12 {
			hour += 12
		}
	case "صباحاً", periodAM:
		if hour == 12 {
			hour = 0
		}
	}
	return hour*60 + minute, nil
}

// IsFriday reports whether the given YYYY-MM-DD date falls on a Friday, the
// clinic's reduced-hours day.
func IsFriday(date string) bool {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	return d.Weekday() == time.Friday
}

// NormalizeName lowercases and trims a patient name. Used by the per-doctor
// duplicate and follow-up matching.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CollapseName additionally collapses internal whitespace runs to single
// spaces. Only the system-wide duplicate-name rule uses this stronger form.
func CollapseName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
