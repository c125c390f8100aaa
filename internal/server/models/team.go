package models

// Team-scoped roles.
const (
	RoleManager  = "MANAGER"
	RoleEmployee = "EMPLOYEE"
)

type Team struct {
	ID   string
	Name string
}

// Member binds a user to a team with a role. At most one exists per
// (UserID, TeamID).
type Member struct {
	ID     string
	UserID string
	TeamID string
	Role   string
}

// IsManager reports whether the member holds the MANAGER role.
func (m *Member) IsManager() bool {
	return m.Role == RoleManager
}

// MemberProfile is a member joined with the owning user's public fields.
type MemberProfile struct {
	Member
	FullName string
	Email    string
}

// TeamSummary is a team as seen by one of its members.
type TeamSummary struct {
	Team
	ScheduleID string
	MemberID   string
	Role       string
}
