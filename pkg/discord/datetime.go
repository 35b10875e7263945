package discord

import (
	"strings"
	"time"

	"hangout/internal/domain"
)

const (
	dateLayout = "02/01/2006"
	timeLayout = "15:04"
)

// ParseDateTime parses date (DD/MM/YYYY) and time (HH:MM) as wall-clock time
// in loc.
func ParseDateTime(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	timeStr = strings.TrimSpace(timeStr)
	if dateStr == "" || timeStr == "" {
		return time.Time{}, domain.ErrInvalidDateTime
	}
	tDate, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDateTime
	}
	tTime, err := time.Parse(timeLayout, timeStr)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDateTime
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(tDate.Year(), tDate.Month(), tDate.Day(), tTime.Hour(), tTime.Minute(), 0, 0, loc), nil
}

func FormatDateTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(dateLayout + " " + timeLayout)
}
