package models

import "time"

// Schedule is the single shift container of a team.
type Schedule struct {
	ID     string
	TeamID string
}

// Shift is a named window on a date. StartTime and EndTime are offsets
// from midnight.
type Shift struct {
	ID         string
	ScheduleID string
	Name       string
	Date       time.Time
	StartTime  time.Duration
	EndTime    time.Duration
}

// MemberShift assigns a member to a shift with its own time window.
// At most one exists per (MemberID, ShiftID).
type MemberShift struct {
	ID        string
	MemberID  string
	ShiftID   string
	StartTime time.Duration
	EndTime   time.Duration
}

// ShiftWithAssignments is a shift together with every assignment on it.
type ShiftWithAssignments struct {
	Shift
	Assignments []MemberShift
}

// MyShift is one of the caller's assignments together with its shift.
type MyShift struct {
	MemberShift
	Shift Shift
}
