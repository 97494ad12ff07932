package dto

import "github.com/google/uuid"

// CreatePerformanceNoteRequest records a coach's assessment of a student
type CreatePerformanceNoteRequest struct {
	StudentID uuid.UUID `json:"studentId" binding:"required"`
	Category  string    `json:"category" binding:"required,max=50" example:"technique"`
	Rating    *int      `json:"rating,omitempty" binding:"omitempty,min=1,max=10"`
	Note      string    `json:"note" binding:"required,max=4000"`
}

// StudentQuery narrows a listing to one student
type StudentQuery struct {
	StudentID string `form:"studentId" binding:"omitempty,uuid"`
}
