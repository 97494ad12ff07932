package models

import (
	"time"

	"github.com/google/uuid"
)

// Training is a coach-owned practice session (table 'trainings')
type Training struct {
	ID              uuid.UUID          `json:"id" db:"id"`
	CoachID         uuid.UUID          `json:"coachId" db:"coach_id"`
	Title           string             `json:"title" db:"title" example:"Dribbling"`
	Description     *string            `json:"description,omitempty" db:"description"`
	Date            time.Time          `json:"date" db:"date"`
	DurationMinutes int                `json:"durationMinutes" db:"duration_minutes" example:"60"`
	Location        string             `json:"location" db:"location" example:"Pitch A"`
	MaxParticipants *int               `json:"maxParticipants,omitempty" db:"max_participants"`
	CreatedAt       time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time          `json:"updatedAt" db:"updated_at"`
	Coach           *UserSummary       `json:"coach,omitempty"`
	Attendance      []TrainingAttendee `json:"attendance,omitempty"`
}

// AttendanceStatus is the per-student state of a training attendance row
type AttendanceStatus string

const (
	AttendanceRegistered AttendanceStatus = "registered"
	AttendancePresent    AttendanceStatus = "present"
	AttendanceAbsent     AttendanceStatus = "absent"
	AttendanceLate       AttendanceStatus = "late"
)

// Markable reports whether a coach may set this status; registered is only created by a join
func (s AttendanceStatus) Markable() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	}
	return false
}

// TrainingAttendee is a row of the 'attendance' table
type TrainingAttendee struct {
	ID         uuid.UUID        `json:"id" db:"id"`
	TrainingID uuid.UUID        `json:"trainingId" db:"training_id"`
	StudentID  uuid.UUID        `json:"studentId" db:"student_id"`
	Status     AttendanceStatus `json:"status" db:"status" example:"present"`
	Notes      *string          `json:"notes,omitempty" db:"notes"`
	CreatedAt  time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time        `json:"updatedAt" db:"updated_at"`
	Student    *UserSummary     `json:"student,omitempty"`
}

// AttendanceMark is one coach-entered attendance record
type AttendanceMark struct {
	StudentID uuid.UUID
	Status    AttendanceStatus
	Notes     *string
}
