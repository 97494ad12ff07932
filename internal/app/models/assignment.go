package models

import (
	"time"

	"github.com/google/uuid"
)

// CoachStudentAssignment links a coach to a student (table 'coach_students')
type CoachStudentAssignment struct {
	ID         uuid.UUID    `json:"id" db:"id"`
	CoachID    uuid.UUID    `json:"coachId" db:"coach_id"`
	StudentID  uuid.UUID    `json:"studentId" db:"student_id"`
	AssignedAt time.Time    `json:"assignedAt" db:"assigned_at"`
	Coach      *UserSummary `json:"coach,omitempty"`
	Student    *UserSummary `json:"student,omitempty"`
}
