package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// MinutesPerDay is the minute value of 24:00.
	MinutesPerDay = 24 * 60
)

// ParseClock converts H:MM or HH:MM into a minute of day. 24:00 is 1440.
func ParseClock(text string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(text), ":")
	if !ok || len(h) == 0 || len(h) > 2 || len(m) != 2 || !digits(h) || !digits(m) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, text)
	}
	hour, _ := strconv.Atoi(h)
	minute, _ := strconv.Atoi(m)
	total := hour*60 + minute
	if minute > 59 || total > MinutesPerDay {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, text)
	}
	return total, nil
}

// FormatClock renders a minute of day as H:MM without a leading zero hour.
func FormatClock(minute int) string {
	return fmt.Sprintf("%d:%02d", minute/60, minute%60)
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
