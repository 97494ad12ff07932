package dto

import (
	"github.com/google/uuid"
	"github.com/yigit/academy/internal/app/models"
)

// MarkAttendanceRequest sets one student's training attendance
type MarkAttendanceRequest struct {
	StudentID uuid.UUID               `json:"studentId" binding:"required"`
	Status    models.AttendanceStatus `json:"status" binding:"required,oneof=present absent late"`
	Notes     *string                 `json:"notes,omitempty" binding:"omitempty,max=500"`
}

// BulkMarkAttendanceRequest sets training attendance for several students at once
type BulkMarkAttendanceRequest struct {
	Records []MarkAttendanceRequest `json:"records" binding:"required,min=1,dive"`
}

// JoinMatchRequest carries optional roster details chosen by the student
type JoinMatchRequest struct {
	JerseyNumber *int    `json:"jerseyNumber,omitempty" binding:"omitempty,min=0,max=99"`
	Position     *string `json:"position,omitempty" binding:"omitempty,max=50"`
}

// UpdateRosterEntryRequest lets coaches annotate a roster entry
type UpdateRosterEntryRequest struct {
	JerseyNumber     *int    `json:"jerseyNumber,omitempty" binding:"omitempty,min=0,max=99"`
	Position         *string `json:"position,omitempty" binding:"omitempty,max=50"`
	PerformanceNotes *string `json:"performanceNotes,omitempty" binding:"omitempty,max=2000"`
}

// MatchAttendanceRecord is one row of a bulk match attendance submission
type MatchAttendanceRecord struct {
	StudentID uuid.UUID                    `json:"studentId" binding:"required"`
	Status    models.MatchAttendanceStatus `json:"status" binding:"required,oneof=present absent late excused"`
	Notes     *string                      `json:"notes,omitempty" binding:"omitempty,max=500"`
}

// BulkMatchAttendanceRequest replaces match attendance for the listed students
type BulkMatchAttendanceRequest struct {
	Records []MatchAttendanceRecord `json:"records" binding:"required,min=1,dive"`
}

// ExportQuery selects the export format
type ExportQuery struct {
	Format    string `form:"format,default=csv" binding:"omitempty,oneof=csv pdf"`
	StudentID string `form:"studentId" binding:"omitempty,uuid"`
}

// AnalyticsExportQuery is ExportQuery with PDF as the default format
type AnalyticsExportQuery struct {
	Format    string `form:"format,default=pdf" binding:"omitempty,oneof=csv pdf"`
	StudentID string `form:"studentId" binding:"omitempty,uuid"`
}
