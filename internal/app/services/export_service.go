package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/academy/internal/app/auth"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/export"
)

// ExportFile is a rendered download
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders reports as CSV or PDF downloads
type ExportService interface {
	TrainingAttendance(ctx context.Context, p auth.Principal, trainingID uuid.UUID, format string) (*ExportFile, error)
	PerformanceNotes(ctx context.Context, p auth.Principal, studentID *uuid.UUID, format string) (*ExportFile, error)
	Analytics(ctx context.Context, p auth.Principal, studentID *uuid.UUID, format string) (*ExportFile, error)
}

type exportServiceImpl struct {
	trainings TrainingService
	notes     PerformanceNoteService
	analytics AnalyticsService
	loc       *time.Location
	now       func() time.Time
}

// NewExportService creates a new ExportService on top of the read services
func NewExportService(trainings TrainingService, notes PerformanceNoteService, analytics AnalyticsService, loc *time.Location) ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &exportServiceImpl{
		trainings: trainings,
		notes:     notes,
		analytics: analytics,
		loc:       loc,
		now:       time.Now,
	}
}

func (s *exportServiceImpl) render(base string, format export.Format, table export.Table, summary []string) (*ExportFile, error) {
	var (
		data []byte
		err  error
	)
	if format == export.FormatPDF {
		data, err = export.WritePDF(export.Document{
			Title:       table.Title,
			GeneratedAt: s.now().In(s.loc),
			Summary:     summary,
			Tables:      []export.Table{table},
		})
	} else {
		data, err = export.WriteCSV(table)
	}
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		Filename:    export.Filename(base, s.now().In(s.loc), format),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

func parseExportFormat(format string) (export.Format, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return "", apperrors.NewValidationError("format must be csv or pdf")
	}
	return f, nil
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func studentName(u *models.UserSummary) string {
	if u == nil {
		return ""
	}
	return u.FullName
}

func percent(rate float64) string {
	return strconv.Itoa(int(math.Round(rate*100))) + "%"
}

// TrainingAttendance exports the attendance list of one training
func (s *exportServiceImpl) TrainingAttendance(ctx context.Context, p auth.Principal, trainingID uuid.UUID, format string) (*ExportFile, error) {
	if err := auth.Authorize(p, auth.OpAttendanceExport); err != nil {
		return nil, err
	}
	f, err := parseExportFormat(format)
	if err != nil {
		return nil, err
	}

	t, err := s.trainings.Get(ctx, p, trainingID)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title:   "Attendance - " + t.Title,
		Headers: []string{"Student", "Email", "Status", "Notes", "Updated"},
	}
	present := 0
	for _, a := range t.Attendance {
		email := ""
		if a.Student != nil {
			email = a.Student.Email
		}
		if a.Status == models.AttendancePresent {
			present++
		}
		table.Rows = append(table.Rows, []string{
			studentName(a.Student),
			email,
			string(a.Status),
			optional(a.Notes),
			a.UpdatedAt.In(s.loc).Format("2006-01-02 15:04"),
		})
	}

	summary := []string{
		"Training: " + t.Title,
		"Date: " + t.Date.In(s.loc).Format("2006-01-02 15:04"),
		"Location: " + t.Location,
		fmt.Sprintf("Attendance rate: %s (%d/%d)", percent(AttendanceRate(present, len(t.Attendance))), present, len(t.Attendance)),
	}
	return s.render("attendance-"+t.Title, f, table, summary)
}

// PerformanceNotes exports notes, optionally for a single student
func (s *exportServiceImpl) PerformanceNotes(ctx context.Context, p auth.Principal, studentID *uuid.UUID, format string) (*ExportFile, error) {
	f, err := parseExportFormat(format)
	if err != nil {
		return nil, err
	}
	notes, err := s.notes.List(ctx, p, studentID)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title:   "Performance notes",
		Headers: []string{"Date", "Student", "Coach", "Category", "Rating", "Note"},
	}
	for _, n := range notes {
		rating := ""
		if n.Rating != nil {
			rating = strconv.Itoa(*n.Rating)
		}
		table.Rows = append(table.Rows, []string{
			n.CreatedAt.In(s.loc).Format("2006-01-02"),
			studentName(n.Student),
			studentName(n.Coach),
			n.Category,
			rating,
			n.Note,
		})
	}
	return s.render("performance-notes", f, table, []string{fmt.Sprintf("Notes: %d", len(notes))})
}

// Analytics exports the analytics report. PDF is the default format; the CSV
// flattens the report into section, metric and value rows.
func (s *exportServiceImpl) Analytics(ctx context.Context, p auth.Principal, studentID *uuid.UUID, format string) (*ExportFile, error) {
	if format == "" {
		format = string(export.FormatPDF)
	}
	f, err := parseExportFormat(format)
	if err != nil {
		return nil, err
	}
	report, err := s.analytics.Report(ctx, p, studentID)
	if err != nil {
		return nil, err
	}

	subject := "All students"
	if report.StudentID != nil {
		subject = report.StudentID.String()
	}
	overview := [][]string{
		{"Student", subject},
		{"Total trainings", strconv.Itoa(report.TrainingsTotal)},
		{"Total matches", strconv.Itoa(report.MatchesTotal)},
		{"Training attendance rate", percent(report.TrainingAttendance.Rate)},
		{"Sessions attended", strconv.Itoa(report.TrainingAttendance.ByStatus[string(models.AttendancePresent)])},
		{"Match attendance rate", percent(report.MatchAttendance.Rate)},
	}

	matchTable := export.Table{Title: "Matches by type", Headers: []string{"Type", "Count"}}
	for _, k := range sortedKeys(report.MatchTypeBreakdown) {
		matchTable.Rows = append(matchTable.Rows, []string{k, strconv.Itoa(report.MatchTypeBreakdown[k])})
	}
	perfTable := export.Table{Title: "Performance averages", Headers: []string{"Category", "Average rating"}}
	for _, k := range sortedKeys(report.PerformanceAverages) {
		perfTable.Rows = append(perfTable.Rows, []string{k, strconv.FormatFloat(report.PerformanceAverages[k], 'f', 1, 64)})
	}

	at := s.now().In(s.loc)
	var data []byte
	if f == export.FormatPDF {
		summary := make([]string, 0, len(overview))
		for _, row := range overview {
			summary = append(summary, row[0]+": "+row[1])
		}
		data, err = export.WritePDF(export.Document{
			Title:       "Academy analytics",
			GeneratedAt: at,
			Summary:     summary,
			Tables:      []export.Table{matchTable, perfTable},
		})
	} else {
		flat := export.Table{Title: "Academy analytics", Headers: []string{"Section", "Metric", "Value"}}
		for _, row := range overview {
			flat.Rows = append(flat.Rows, []string{"Overview", row[0], row[1]})
		}
		for _, t := range []export.Table{matchTable, perfTable} {
			for _, row := range t.Rows {
				flat.Rows = append(flat.Rows, []string{t.Title, row[0], row[1]})
			}
		}
		data, err = export.WriteCSV(flat)
	}
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		Filename:    export.Filename("analytics", at, f),
		ContentType: f.ContentType(),
		Data:        data,
	}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
