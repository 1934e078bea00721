package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SlotWindow is a parsed slot label as minutes from midnight.
type SlotWindow struct {
	Start int // minutes from midnight (e.g., 480 for 8:00 AM)
	End   int
}

// ParseSlotLabel parses a label like "08:00-09:00" into a SlotWindow.
func ParseSlotLabel(label string) (SlotWindow, error) {
	parts := strings.Split(label, "-")
	if len(parts) != 2 {
		return SlotWindow{}, fmt.Errorf("malformed slot label %q", label)
	}
	start, err := parseClock(parts[0])
	if err != nil {
		return SlotWindow{}, fmt.Errorf("malformed slot label %q: %w", label, err)
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return SlotWindow{}, fmt.Errorf("malformed slot label %q: %w", label, err)
	}
	if end <= start {
		return SlotWindow{}, fmt.Errorf("slot label %q ends before it starts", label)
	}
	return SlotWindow{Start: start, End: end}, nil
}

func parseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("bad clock value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("bad hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad minute in %q", s)
	}
	return h*60 + m, nil
}

// SlotKey builds the deterministic key the store uses to detect concurrent
// claims of the same slot.
func SlotKey(providerID, date, slot string) string {
	return providerID + "|" + date + "|" + slot
}

// SlotTime resolves a date ("YYYY-MM-DD") plus minutes-from-midnight into a
// wall-clock time in the given location.
func SlotTime(date string, minutes int, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed date %q: %w", date, err)
	}
	return day.Add(time.Duration(minutes) * time.Minute), nil
}
