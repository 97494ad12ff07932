package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/academy/internal/app/auth"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/pkg/apperrors"
)

// AnalyticsService aggregates attendance, match and performance figures
type AnalyticsService interface {
	Report(ctx context.Context, p auth.Principal, studentID *uuid.UUID) (*dto.AnalyticsReport, error)
}

type analyticsServiceImpl struct {
	trainings       TrainingStore
	matches         MatchStore
	attendance      AttendanceStore
	matchAttendance MatchAttendanceStore
	notes           PerformanceNoteStore
	now             func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(
	trainings TrainingStore,
	matches MatchStore,
	attendance AttendanceStore,
	matchAttendance MatchAttendanceStore,
	notes PerformanceNoteStore,
) AnalyticsService {
	return &analyticsServiceImpl{
		trainings:       trainings,
		matches:         matches,
		attendance:      attendance,
		matchAttendance: matchAttendance,
		notes:           notes,
		now:             time.Now,
	}
}

// AttendanceRate is present/total, 0 when there are no records
func AttendanceRate(present, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(present) / float64(total)
}

// breakdown counts statuses and derives the attendance rate
func breakdown(statuses []string, present string) dto.AttendanceBreakdown {
	b := dto.AttendanceBreakdown{Total: len(statuses), ByStatus: map[string]int{}}
	for _, st := range statuses {
		b.ByStatus[st]++
	}
	b.Rate = AttendanceRate(b.ByStatus[present], b.Total)
	return b
}

// MatchTypeBreakdown counts matches per type; every known type is present
func MatchTypeBreakdown(matches []*models.Match) map[string]int {
	out := make(map[string]int, len(models.MatchTypes))
	for _, t := range models.MatchTypes {
		out[string(t)] = 0
	}
	for _, m := range matches {
		out[string(m.MatchType)]++
	}
	return out
}

// CategoryAverages averages ratings per category. Unrated notes are ignored.
func CategoryAverages(notes []*models.PerformanceNote) map[string]float64 {
	sums := map[string]int{}
	counts := map[string]int{}
	for _, n := range notes {
		if n.Rating == nil {
			continue
		}
		sums[n.Category] += *n.Rating
		counts[n.Category]++
	}
	out := make(map[string]float64, len(sums))
	for cat, sum := range sums {
		out[cat] = float64(sum) / float64(counts[cat])
	}
	return out
}

// resolveSubject decides whose figures p may see. Students only see themselves.
func resolveSubject(p auth.Principal, studentID *uuid.UUID) (*uuid.UUID, error) {
	if p.Role != models.RoleStudent {
		return studentID, nil
	}
	if studentID != nil && *studentID != p.UserID {
		return nil, apperrors.NewForbiddenError("students can only view their own analytics")
	}
	self := p.UserID
	return &self, nil
}

func (s *analyticsServiceImpl) Report(ctx context.Context, p auth.Principal, studentID *uuid.UUID) (*dto.AnalyticsReport, error) {
	if err := auth.Authorize(p, auth.OpAnalyticsView); err != nil {
		return nil, err
	}
	subject, err := resolveSubject(p, studentID)
	if err != nil {
		return nil, err
	}

	trainingRows, err := s.attendance.ListAll(ctx, subject)
	if err != nil {
		return nil, err
	}
	matchRows, err := s.matchAttendance.ListAll(ctx, subject)
	if err != nil {
		return nil, err
	}
	matches, err := s.matches.List(ctx, models.DateRange{})
	if err != nil {
		return nil, err
	}
	notes, err := s.notes.List(ctx, subject)
	if err != nil {
		return nil, err
	}

	trainingStatuses := make([]string, 0, len(trainingRows))
	for _, r := range trainingRows {
		trainingStatuses = append(trainingStatuses, string(r.Status))
	}
	matchStatuses := make([]string, 0, len(matchRows))
	for _, r := range matchRows {
		matchStatuses = append(matchStatuses, string(r.Status))
	}

	report := &dto.AnalyticsReport{
		StudentID:           subject,
		TrainingAttendance:  breakdown(trainingStatuses, string(models.AttendancePresent)),
		MatchAttendance:     breakdown(matchStatuses, string(models.MatchAttendancePresent)),
		PerformanceAverages: CategoryAverages(notes),
		GeneratedAt:         s.now(),
	}

	if subject == nil {
		trainings, err := s.trainings.List(ctx, models.DateRange{})
		if err != nil {
			return nil, err
		}
		report.TrainingsTotal = len(trainings)
		report.MatchesTotal = len(matches)
		report.MatchTypeBreakdown = MatchTypeBreakdown(matches)
		return report, nil
	}

	// A student's totals are the events they have attendance for
	trainingIDs := map[uuid.UUID]struct{}{}
	for _, r := range trainingRows {
		trainingIDs[r.TrainingID] = struct{}{}
	}
	playedIDs := map[uuid.UUID]struct{}{}
	for _, r := range matchRows {
		playedIDs[r.MatchID] = struct{}{}
	}
	var played []*models.Match
	for _, m := range matches {
		if _, ok := playedIDs[m.ID]; ok {
			played = append(played, m)
		}
	}
	report.TrainingsTotal = len(trainingIDs)
	report.MatchesTotal = len(playedIDs)
	report.MatchTypeBreakdown = MatchTypeBreakdown(played)
	return report, nil
}
