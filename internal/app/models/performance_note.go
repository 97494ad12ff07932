package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating bounds for performance notes
const (
	MinRating = 1
	MaxRating = 10
)

// PerformanceNote is a coach's assessment of a student (table 'performance_notes')
type PerformanceNote struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	StudentID uuid.UUID    `json:"studentId" db:"student_id"`
	CoachID   uuid.UUID    `json:"coachId" db:"coach_id"`
	Category  string       `json:"category" db:"category" example:"technique"`
	Rating    *int         `json:"rating,omitempty" db:"rating" example:"7"`
	Note      string       `json:"note" db:"note"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
	Student   *UserSummary `json:"student,omitempty"`
	Coach     *UserSummary `json:"coach,omitempty"`
}
