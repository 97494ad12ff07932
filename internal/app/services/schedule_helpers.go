package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/academy/internal/app/auth"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/helpers"
)

// parseWindow turns from/to query dates into an inclusive range of whole days in loc
func parseWindow(q *dto.DateRangeQuery, loc *time.Location) (models.DateRange, error) {
	var window models.DateRange
	if q == nil {
		return window, nil
	}
	if q.From != "" {
		from, err := helpers.ParseDate(q.From, loc)
		if err != nil {
			return window, apperrors.NewValidationError("from must be a YYYY-MM-DD date")
		}
		window.From = from
	}
	if q.To != "" {
		to, err := helpers.ParseDate(q.To, loc)
		if err != nil {
			return window, apperrors.NewValidationError("to must be a YYYY-MM-DD date")
		}
		window.To = helpers.EndOfDay(to, loc)
	}
	if !window.From.IsZero() && !window.To.IsZero() && window.To.Before(window.From) {
		return window, apperrors.NewValidationError("from must not be after to")
	}
	return window, nil
}

// eventTime combines the request's date and time in loc
func eventTime(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := helpers.CombineDateTime(date, clock, loc)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("date must be YYYY-MM-DD and time HH:MM")
	}
	return t, nil
}

// rescheduled applies an optional date/time pair. Both or neither must be given.
func rescheduled(current time.Time, date, clock *string, loc *time.Location) (time.Time, error) {
	if date == nil && clock == nil {
		return current, nil
	}
	if date == nil || clock == nil {
		return current, apperrors.NewValidationError("date and time must be provided together")
	}
	return eventTime(*date, *clock, loc)
}

// requiredText trims s and rejects an empty result
func requiredText(s, field string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", apperrors.NewValidationError(field + " is required")
	}
	return v, nil
}

// eventOwner decides the coach of a new event: coaches own what they create,
// admins may name another coach.
func eventOwner(ctx context.Context, users UserStore, p auth.Principal, requested *uuid.UUID) (uuid.UUID, error) {
	if requested == nil || *requested == p.UserID {
		return p.UserID, nil
	}
	if p.Role != models.RoleAdmin {
		return uuid.Nil, apperrors.NewForbiddenError("coaches can only schedule events for themselves")
	}
	coach, err := users.GetByID(ctx, *requested)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return uuid.Nil, apperrors.NewValidationError("coach does not exist")
		}
		return uuid.Nil, err
	}
	if coach.Role != models.RoleCoach {
		return uuid.Nil, apperrors.NewValidationError("coachId must reference a coach")
	}
	return coach.ID, nil
}

// requireEventDay rejects attendance marking before the event's calendar day
func requireEventDay(event, now time.Time, loc *time.Location) error {
	if !helpers.DayReached(event, now, loc) {
		return apperrors.ErrAttendanceNotOpen
	}
	return nil
}

// updateText applies an optional non-empty text edit
func updateText(dst *string, src *string, field string) error {
	if src == nil {
		return nil
	}
	v, err := requiredText(*src, field)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
