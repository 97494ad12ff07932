package dto

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceBreakdown counts attendance rows by status
type AttendanceBreakdown struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
	Rate     float64        `json:"rate" example:"0.75"`
}

// AnalyticsReport summarises activity for the academy or a single student
type AnalyticsReport struct {
	StudentID           *uuid.UUID          `json:"studentId,omitempty"`
	TrainingsTotal      int                 `json:"trainingsTotal"`
	MatchesTotal        int                 `json:"matchesTotal"`
	TrainingAttendance  AttendanceBreakdown `json:"trainingAttendance"`
	MatchAttendance     AttendanceBreakdown `json:"matchAttendance"`
	MatchTypeBreakdown  map[string]int      `json:"matchTypeBreakdown"`
	PerformanceAverages map[string]float64  `json:"performanceAverages"`
	GeneratedAt         time.Time           `json:"generatedAt"`
}
