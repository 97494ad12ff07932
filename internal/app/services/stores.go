package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/repositories"
)

// The stores below are the persistence surface each service needs. The
// repositories package satisfies them against Postgres; tests use in-memory fakes.

// UserStore persists profiles
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, role *models.Role, offset uint64, limit int) ([]*models.User, int64, error)
	ListByRole(ctx context.Context, role models.Role) ([]*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateProfilePicture(ctx context.Context, id uuid.UUID, url string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RefreshTokenStore persists refresh tokens
type RefreshTokenStore interface {
	CreateToken(ctx context.Context, token string, userID uuid.UUID, expiryDate time.Time) error
	GetTokenByValue(ctx context.Context, token string) (uuid.UUID, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// PasswordResetStore persists one-time password reset tokens
type PasswordResetStore interface {
	CreateToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	GetTokenInfo(ctx context.Context, token string) (uuid.UUID, time.Time, bool, error)
	MarkTokenAsUsed(ctx context.Context, token string) error
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

// AssignmentStore persists coach/student pairs
type AssignmentStore interface {
	Create(ctx context.Context, a *models.CoachStudentAssignment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*models.CoachStudentAssignment, error)
	ListByCoach(ctx context.Context, coachID uuid.UUID) ([]*models.CoachStudentAssignment, error)
}

// TrainingStore persists trainings
type TrainingStore interface {
	Create(ctx context.Context, t *models.Training) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Training, error)
	List(ctx context.Context, window models.DateRange) ([]*models.Training, error)
	Update(ctx context.Context, t *models.Training, expected *time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AttendanceStore persists the training attendance ledger
type AttendanceStore interface {
	Join(ctx context.Context, trainingID, studentID uuid.UUID) (*models.TrainingAttendee, error)
	Leave(ctx context.Context, trainingID, studentID uuid.UUID) error
	Upsert(ctx context.Context, trainingID uuid.UUID, marks []models.AttendanceMark) ([]*models.TrainingAttendee, error)
	ListByTraining(ctx context.Context, trainingID uuid.UUID) ([]models.TrainingAttendee, error)
	ListAll(ctx context.Context, studentID *uuid.UUID) ([]models.TrainingAttendee, error)
}

// MatchStore persists matches
type MatchStore interface {
	Create(ctx context.Context, m *models.Match) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error)
	List(ctx context.Context, window models.DateRange) ([]*models.Match, error)
	Update(ctx context.Context, m *models.Match, expected *time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RosterStore persists match rosters
type RosterStore interface {
	Join(ctx context.Context, entry *models.RosterEntry) error
	Leave(ctx context.Context, matchID, studentID uuid.UUID) error
	Update(ctx context.Context, matchID, studentID uuid.UUID, upd models.RosterUpdate) (*models.RosterEntry, error)
	ListByMatch(ctx context.Context, matchID uuid.UUID) ([]models.RosterEntry, error)
}

// MatchAttendanceStore persists the match attendance ledger
type MatchAttendanceStore interface {
	BulkUpsert(ctx context.Context, matchID uuid.UUID, marks []models.MatchAttendanceMark) ([]*models.MatchAttendance, error)
	ListByMatch(ctx context.Context, matchID uuid.UUID) ([]models.MatchAttendance, error)
	ListAll(ctx context.Context, studentID *uuid.UUID) ([]models.MatchAttendance, error)
}

// AnnouncementStore persists announcements and read receipts
type AnnouncementStore interface {
	Create(ctx context.Context, a *models.Announcement) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Announcement, error)
	List(ctx context.Context, f repositories.AnnouncementFilter) ([]*models.Announcement, error)
	Count(ctx context.Context, f repositories.AnnouncementFilter) (int64, error)
	Update(ctx context.Context, a *models.Announcement) error
	Delete(ctx context.Context, id uuid.UUID) error
	MarkRead(ctx context.Context, userID, announcementID uuid.UUID) error
	ReadSet(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error)
}

// CampaignStore persists fundraising campaigns
type CampaignStore interface {
	Create(ctx context.Context, c *models.FundraisingCampaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.FundraisingCampaign, error)
	List(ctx context.Context, status *models.CampaignStatus) ([]*models.FundraisingCampaign, error)
	Update(ctx context.Context, c *models.FundraisingCampaign, expected *time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	CompleteExpired(ctx context.Context, today time.Time) (int64, error)
}

// SponsorshipStore persists sponsorship submissions
type SponsorshipStore interface {
	Create(ctx context.Context, s *models.SponsorshipSubmission) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SponsorshipSubmission, error)
	List(ctx context.Context, status *models.SponsorshipStatus) ([]*models.SponsorshipSubmission, error)
	ReviewPending(ctx context.Context, id uuid.UUID, status models.SponsorshipStatus, reviewer uuid.UUID, at time.Time) (*models.SponsorshipSubmission, error)
}

// NotificationStore persists notifications
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit uint64) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// PerformanceNoteStore persists performance notes
type PerformanceNoteStore interface {
	Create(ctx context.Context, n *models.PerformanceNote) error
	List(ctx context.Context, studentID *uuid.UUID) ([]*models.PerformanceNote, error)
	Delete(ctx context.Context, id uuid.UUID, coachID *uuid.UUID) error
}

// RealtimePublisher pushes events to connected websocket clients
type RealtimePublisher interface {
	SendToUser(userID uuid.UUID, eventType string, payload interface{})
	SendToRoles(roles []models.Role, eventType string, payload interface{})
}

var (
	_ UserStore            = (*repositories.UserRepository)(nil)
	_ RefreshTokenStore    = (*repositories.TokenRepository)(nil)
	_ PasswordResetStore   = (*repositories.PasswordResetTokenRepository)(nil)
	_ AssignmentStore      = (*repositories.AssignmentRepository)(nil)
	_ TrainingStore        = (*repositories.TrainingRepository)(nil)
	_ AttendanceStore      = (*repositories.AttendanceRepository)(nil)
	_ MatchStore           = (*repositories.MatchRepository)(nil)
	_ RosterStore          = (*repositories.RosterRepository)(nil)
	_ MatchAttendanceStore = (*repositories.MatchAttendanceRepository)(nil)
	_ AnnouncementStore    = (*repositories.AnnouncementRepository)(nil)
	_ CampaignStore        = (*repositories.CampaignRepository)(nil)
	_ SponsorshipStore     = (*repositories.SponsorshipRepository)(nil)
	_ NotificationStore    = (*repositories.NotificationRepository)(nil)
	_ PerformanceNoteStore = (*repositories.PerformanceNoteRepository)(nil)
)
