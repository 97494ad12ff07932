package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/pkg/logger"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository               *UserRepository
	TokenRepository              *TokenRepository
	PasswordResetTokenRepository *PasswordResetTokenRepository
	AssignmentRepository         *AssignmentRepository
	TrainingRepository           *TrainingRepository
	AttendanceRepository         *AttendanceRepository
	MatchRepository              *MatchRepository
	RosterRepository             *RosterRepository
	MatchAttendanceRepository    *MatchAttendanceRepository
	AnnouncementRepository       *AnnouncementRepository
	CampaignRepository           *CampaignRepository
	SponsorshipRepository        *SponsorshipRepository
	NotificationRepository       *NotificationRepository
	PerformanceNoteRepository    *PerformanceNoteRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:               NewUserRepository(db),
		TokenRepository:              NewTokenRepository(db),
		PasswordResetTokenRepository: NewPasswordResetTokenRepository(db),
		AssignmentRepository:         NewAssignmentRepository(db),
		TrainingRepository:           NewTrainingRepository(db),
		AttendanceRepository:         NewAttendanceRepository(db),
		MatchRepository:              NewMatchRepository(db),
		RosterRepository:             NewRosterRepository(db),
		MatchAttendanceRepository:    NewMatchAttendanceRepository(db),
		AnnouncementRepository:       NewAnnouncementRepository(db),
		CampaignRepository:           NewCampaignRepository(db),
		SponsorshipRepository:        NewSponsorshipRepository(db),
		NotificationRepository:       NewNotificationRepository(db),
		PerformanceNoteRepository:    NewPerformanceNoteRepository(db),
	}
}

func newBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// rowScanner is satisfied by pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// summaryColumns selects the display fields of the profile joined as alias
func summaryColumns(alias string) []string {
	return []string{
		alias + ".id",
		alias + ".full_name",
		alias + ".email",
		alias + ".profile_picture_url",
	}
}

func summaryTargets(s *models.UserSummary) []any {
	return []any{&s.ID, &s.FullName, &s.Email, &s.ProfilePictureURL}
}

// rowExists tells an optimistic-lock miss apart from a missing row
func rowExists(ctx context.Context, db *pgxpool.Pool, sb squirrel.StatementBuilderType, table string, id uuid.UUID) (bool, error) {
	sql, args, err := sb.Select("1").From(table).Where(squirrel.Eq{"id": id}).Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", table).Msg("Error building exists SQL")
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}

	var exists bool
	if err := db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking %s row: %w", table, err)
	}
	return exists, nil
}
