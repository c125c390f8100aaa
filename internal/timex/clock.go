package timex

import "time"

// TimeOfDayLayout is the wire format for shift and assignment times.
const TimeOfDayLayout = "15:04"

// DateLayout is the wire format for shift dates.
const DateLayout = "2006-01-02"

// DateOf truncates t to midnight in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// ParseTimeOfDay parses HH:MM into a duration since midnight.
func ParseTimeOfDay(s string) (time.Duration, error) {
	t, err := time.Parse(TimeOfDayLayout, s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// FormatTimeOfDay renders a duration since midnight as HH:MM.
func FormatTimeOfDay(d time.Duration) string {
	return time.Time{}.Add(d).Format(TimeOfDayLayout)
}
