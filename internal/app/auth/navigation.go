package auth

import "github.com/yigit/academy/internal/app/models"

// NavEntry is one page a role can reach
type NavEntry struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

var (
	navDashboard     = NavEntry{Key: "dashboard", Label: "Dashboard", Path: "/dashboard"}
	navTrainings     = NavEntry{Key: "trainings", Label: "Trainings", Path: "/trainings"}
	navMatches       = NavEntry{Key: "matches", Label: "Matches", Path: "/matches"}
	navCalendar      = NavEntry{Key: "calendar", Label: "Calendar", Path: "/calendar"}
	navAnnouncements = NavEntry{Key: "announcements", Label: "Announcements", Path: "/announcements"}
	navStaff         = NavEntry{Key: "staff", Label: "Staff Panel", Path: "/staff"}
	navAdmin         = NavEntry{Key: "admin", Label: "Admin Panel", Path: "/admin"}
	navUsers         = NavEntry{Key: "users", Label: "Users", Path: "/users"}
	navAssignments   = NavEntry{Key: "coach-students", Label: "Coach Assignments", Path: "/coach-students"}
	navFundraising   = NavEntry{Key: "fundraising", Label: "Fundraising", Path: "/fundraising"}
	navPerformance   = NavEntry{Key: "performance", Label: "Performance", Path: "/performance-notes"}
	navAnalytics     = NavEntry{Key: "analytics", Label: "Analytics", Path: "/analytics"}
)

// navigation is built once; the order is the display order
var navigation = map[models.Role][]NavEntry{
	models.RoleStudent: {navDashboard, navTrainings, navMatches, navCalendar, navAnnouncements, navAnalytics},
	models.RoleCoach:   {navDashboard, navTrainings, navMatches, navCalendar, navAnnouncements, navPerformance, navAnalytics},
	models.RoleStaff:   {navDashboard, navTrainings, navMatches, navCalendar, navAnnouncements, navStaff, navFundraising, navAnalytics},
	models.RoleAdmin: {navDashboard, navTrainings, navMatches, navCalendar, navAnnouncements, navAdmin, navUsers,
		navAssignments, navFundraising, navPerformance, navAnalytics},
}

// NavigationFor returns the pages available to role. Unknown roles get nothing.
// The returned slice is a copy.
func NavigationFor(role models.Role) []NavEntry {
	entries := navigation[role]
	out := make([]NavEntry, len(entries))
	copy(out, entries)
	return out
}

// CanVisit reports whether role has a navigation entry with the given key
func CanVisit(role models.Role, key string) bool {
	for _, e := range navigation[role] {
		if e.Key == key {
			return true
		}
	}
	return false
}
