package dto

import "github.com/google/uuid"

// CreateAssignmentRequest links a coach to a student
type CreateAssignmentRequest struct {
	CoachID   uuid.UUID `json:"coachId" binding:"required"`
	StudentID uuid.UUID `json:"studentId" binding:"required"`
}
