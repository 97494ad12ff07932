package services

import (
	"context"
	"sort"
	"time"

	"github.com/yigit/academy/internal/app/auth"
	"github.com/yigit/academy/internal/app/models/dto"
)

// CalendarService merges trainings, matches and announcements into one timeline
type CalendarService interface {
	Events(ctx context.Context, p auth.Principal, q *dto.DateRangeQuery) ([]dto.CalendarEvent, error)
}

type calendarServiceImpl struct {
	trainings     TrainingStore
	matches       MatchStore
	announcements AnnouncementStore
	loc           *time.Location
	now           func() time.Time
}

// NewCalendarService creates a new CalendarService
func NewCalendarService(trainings TrainingStore, matches MatchStore, announcements AnnouncementStore, loc *time.Location) CalendarService {
	if loc == nil {
		loc = time.UTC
	}
	return &calendarServiceImpl{
		trainings:     trainings,
		matches:       matches,
		announcements: announcements,
		loc:           loc,
		now:           time.Now,
	}
}

func (s *calendarServiceImpl) Events(ctx context.Context, p auth.Principal, q *dto.DateRangeQuery) ([]dto.CalendarEvent, error) {
	if err := auth.Authorize(p, auth.OpCalendarView); err != nil {
		return nil, err
	}
	window, err := parseWindow(q, s.loc)
	if err != nil {
		return nil, err
	}

	trainings, err := s.trainings.List(ctx, window)
	if err != nil {
		return nil, err
	}
	matches, err := s.matches.List(ctx, window)
	if err != nil {
		return nil, err
	}
	// the calendar is a history too, so expired announcements stay on their day
	filter := announcementFilter(p, s.now())
	filter.IncludeExpired = true
	filter.Published = window
	announcements, err := s.announcements.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	events := make([]dto.CalendarEvent, 0, len(trainings)+len(matches)+len(announcements))
	for _, t := range trainings {
		duration, coachID := t.DurationMinutes, t.CoachID
		events = append(events, dto.CalendarEvent{
			Kind:            dto.CalendarKindTraining,
			ID:              t.ID,
			Title:           t.Title,
			Date:            t.Date,
			Location:        t.Location,
			CoachID:         &coachID,
			Coach:           t.Coach,
			DurationMinutes: &duration,
		})
	}
	for _, m := range matches {
		opponent, matchType, coachID := m.Opponent, m.MatchType, m.CoachID
		events = append(events, dto.CalendarEvent{
			Kind:      dto.CalendarKindMatch,
			ID:        m.ID,
			Title:     m.Title,
			Date:      m.Date,
			Location:  m.Location,
			CoachID:   &coachID,
			Coach:     m.Coach,
			Opponent:  &opponent,
			MatchType: &matchType,
		})
	}

	for _, a := range announcements {
		priority, category := a.Priority, a.Category
		events = append(events, dto.CalendarEvent{
			Kind:     dto.CalendarKindAnnouncement,
			ID:       a.ID,
			Title:    a.Title,
			Date:     a.PublishedAt,
			Author:   a.Author,
			Priority: &priority,
			Category: &category,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events, nil
}
