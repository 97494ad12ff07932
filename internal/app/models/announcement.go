package models

import (
	"time"

	"github.com/google/uuid"
)

// AnnouncementPriority orders announcements by urgency
type AnnouncementPriority string

const (
	PriorityLow    AnnouncementPriority = "low"
	PriorityNormal AnnouncementPriority = "normal"
	PriorityHigh   AnnouncementPriority = "high"
	PriorityUrgent AnnouncementPriority = "urgent"
)

// Valid reports whether p is a known priority
func (p AnnouncementPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// AnnouncementCategory groups announcements by topic
type AnnouncementCategory string

const (
	CategoryGeneral   AnnouncementCategory = "general"
	CategoryTraining  AnnouncementCategory = "training"
	CategoryMatch     AnnouncementCategory = "match"
	CategoryEvent     AnnouncementCategory = "event"
	CategoryEmergency AnnouncementCategory = "emergency"
)

// Valid reports whether c is a known category
func (c AnnouncementCategory) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryTraining, CategoryMatch, CategoryEvent, CategoryEmergency:
		return true
	}
	return false
}

// Audience selects which roles an announcement targets
type Audience string

const (
	AudienceEveryone        Audience = "everyone"
	AudienceStudents        Audience = "students"
	AudienceCoaches         Audience = "coaches"
	AudienceStaff           Audience = "staff"
	AudienceStudentsCoaches Audience = "students_coaches"
)

var audienceRoles = map[Audience][]Role{
	AudienceEveryone:        AllRoles,
	AudienceStudents:        {RoleStudent},
	AudienceCoaches:         {RoleCoach},
	AudienceStaff:           {RoleStaff},
	AudienceStudentsCoaches: {RoleStudent, RoleCoach},
}

// Valid reports whether a is a known audience
func (a Audience) Valid() bool {
	_, ok := audienceRoles[a]
	return ok
}

// Roles returns the roles reached by the audience
func (a Audience) Roles() []Role {
	return audienceRoles[a]
}

// Includes reports whether the audience reaches role
func (a Audience) Includes(role Role) bool {
	for _, r := range audienceRoles[a] {
		if r == role {
			return true
		}
	}
	return false
}

// Recipients returns the roles notified about a new announcement: the
// audience plus admins, who see every announcement
func (a Audience) Recipients() []Role {
	roles := append([]Role(nil), audienceRoles[a]...)
	if !a.Includes(RoleAdmin) {
		roles = append(roles, RoleAdmin)
	}
	return roles
}

// AudiencesFor returns every audience that reaches role
func AudiencesFor(role Role) []Audience {
	var out []Audience
	for _, a := range []Audience{AudienceEveryone, AudienceStudents, AudienceCoaches, AudienceStaff, AudienceStudentsCoaches} {
		if a.Includes(role) {
			out = append(out, a)
		}
	}
	return out
}

// Announcement is a broadcast message (table 'announcements')
type Announcement struct {
	ID             uuid.UUID            `json:"id" db:"id"`
	AuthorID       uuid.UUID            `json:"authorId" db:"author_id"`
	Title          string               `json:"title" db:"title"`
	Content        string               `json:"content" db:"content"`
	Priority       AnnouncementPriority `json:"priority" db:"priority" example:"normal"`
	Category       AnnouncementCategory `json:"category" db:"category" example:"general"`
	TargetAudience Audience             `json:"targetAudience" db:"target_audience" example:"everyone"`
	PublishedAt    time.Time            `json:"publishedAt" db:"published_at"`
	ExpiresAt      *time.Time           `json:"expiresAt,omitempty" db:"expires_at"`
	CreatedAt      time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time            `json:"updatedAt" db:"updated_at"`
	Author         *UserSummary         `json:"author,omitempty"`
}

// IsExpired reports whether the announcement has passed its expiry at now
func (a *Announcement) IsExpired(now time.Time) bool {
	return a.ExpiresAt != nil && !a.ExpiresAt.After(now)
}

// VisibleTo reports whether a viewer with the given id and role may see the announcement.
// Admins and the author always can.
func (a *Announcement) VisibleTo(viewerID uuid.UUID, role Role) bool {
	if role == RoleAdmin || a.AuthorID == viewerID {
		return true
	}
	return a.TargetAudience.Includes(role)
}
