package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchType classifies a fixture
type MatchType string

const (
	MatchFriendly   MatchType = "friendly"
	MatchLeague     MatchType = "league"
	MatchTournament MatchType = "tournament"
	MatchCup        MatchType = "cup"
)

// MatchTypes lists every match type in display order
var MatchTypes = []MatchType{MatchFriendly, MatchLeague, MatchTournament, MatchCup}

// Valid reports whether t is a known match type
func (t MatchType) Valid() bool {
	switch t {
	case MatchFriendly, MatchLeague, MatchTournament, MatchCup:
		return true
	}
	return false
}

// Match is a coach-owned fixture (table 'matches')
type Match struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	CoachID       uuid.UUID     `json:"coachId" db:"coach_id"`
	Title         string        `json:"title" db:"title" example:"Derby"`
	Description   *string       `json:"description,omitempty" db:"description"`
	Opponent      string        `json:"opponent" db:"opponent" example:"Rovers U15"`
	Date          time.Time     `json:"date" db:"date"`
	Location      string        `json:"location" db:"location" example:"Home ground"`
	MatchType     MatchType     `json:"matchType" db:"match_type" example:"league"`
	MaxRosterSize *int          `json:"maxRosterSize,omitempty" db:"max_roster_size"`
	Result        *string       `json:"result,omitempty" db:"result" example:"2-1"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" db:"updated_at"`
	Coach         *UserSummary  `json:"coach,omitempty"`
	Roster        []RosterEntry `json:"roster,omitempty"`
}

// RosterEntry is a row of the 'match_roster' table
type RosterEntry struct {
	ID               uuid.UUID    `json:"id" db:"id"`
	MatchID          uuid.UUID    `json:"matchId" db:"match_id"`
	StudentID        uuid.UUID    `json:"studentId" db:"student_id"`
	JerseyNumber     *int         `json:"jerseyNumber,omitempty" db:"jersey_number"`
	Position         *string      `json:"position,omitempty" db:"position"`
	PerformanceNotes *string      `json:"performanceNotes,omitempty" db:"performance_notes"`
	JoinedAt         time.Time    `json:"joinedAt" db:"joined_at"`
	Student          *UserSummary `json:"student,omitempty"`
}

// MatchAttendanceStatus is the per-student state of a match attendance row
type MatchAttendanceStatus string

const (
	MatchAttendancePresent MatchAttendanceStatus = "present"
	MatchAttendanceAbsent  MatchAttendanceStatus = "absent"
	MatchAttendanceLate    MatchAttendanceStatus = "late"
	MatchAttendanceExcused MatchAttendanceStatus = "excused"
)

// Valid reports whether s is a known match attendance status
func (s MatchAttendanceStatus) Valid() bool {
	switch s {
	case MatchAttendancePresent, MatchAttendanceAbsent, MatchAttendanceLate, MatchAttendanceExcused:
		return true
	}
	return false
}

// MatchAttendance is a row of the 'match_attendance' table
type MatchAttendance struct {
	ID        uuid.UUID             `json:"id" db:"id"`
	MatchID   uuid.UUID             `json:"matchId" db:"match_id"`
	StudentID uuid.UUID             `json:"studentId" db:"student_id"`
	Status    MatchAttendanceStatus `json:"status" db:"status" example:"present"`
	Notes     *string               `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time             `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time             `json:"updatedAt" db:"updated_at"`
	Student   *UserSummary          `json:"student,omitempty"`
}

// MatchAttendanceMark is one coach-entered match attendance record
type MatchAttendanceMark struct {
	StudentID uuid.UUID
	Status    MatchAttendanceStatus
	Notes     *string
}

// RosterUpdate carries the coach-editable roster fields; nil leaves a field unchanged
type RosterUpdate struct {
	JerseyNumber     *int
	Position         *string
	PerformanceNotes *string
}
