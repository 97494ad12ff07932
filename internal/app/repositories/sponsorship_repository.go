package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/logger"
)

var sponsorshipColumns = []string{
	"id", "company_name", "contact_name", "contact_email", "contact_phone", "sponsorship_type",
	"message", "contribution_amount", "logo_url", "status", "submitted_at", "reviewed_at", "reviewed_by",
}

// SponsorshipRepository handles sponsorship submissions
type SponsorshipRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSponsorshipRepository creates a new SponsorshipRepository
func NewSponsorshipRepository(db *pgxpool.Pool) *SponsorshipRepository {
	return &SponsorshipRepository{
		db: db,
		sb: newBuilder(),
	}
}

func scanSponsorship(row rowScanner) (*models.SponsorshipSubmission, error) {
	s := &models.SponsorshipSubmission{}
	err := row.Scan(&s.ID, &s.CompanyName, &s.ContactName, &s.ContactEmail, &s.ContactPhone, &s.SponsorshipType,
		&s.Message, &s.ContributionAmount, &s.LogoURL, &s.Status, &s.SubmittedAt, &s.ReviewedAt, &s.ReviewedBy)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create stores a new pending submission
func (r *SponsorshipRepository) Create(ctx context.Context, s *models.SponsorshipSubmission) error {
	sql, args, err := r.sb.Insert("sponsorship_submissions").
		Columns("company_name", "contact_name", "contact_email", "contact_phone", "sponsorship_type",
			"message", "contribution_amount", "logo_url", "status").
		Values(s.CompanyName, s.ContactName, s.ContactEmail, s.ContactPhone, string(s.SponsorshipType),
			s.Message, s.ContributionAmount, s.LogoURL, string(models.SponsorshipPending)).
		Suffix("RETURNING id, status, submitted_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create sponsorship SQL")
		return fmt.Errorf("failed to build create sponsorship query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.Status, &s.SubmittedAt); err != nil {
		logger.Error().Err(err).Str("company", s.CompanyName).Msg("Error executing create sponsorship query")
		return fmt.Errorf("error creating sponsorship submission: %w", err)
	}
	return nil
}

// GetByID retrieves a submission
func (r *SponsorshipRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SponsorshipSubmission, error) {
	sql, args, err := r.sb.Select(sponsorshipColumns...).From("sponsorship_submissions").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get sponsorship SQL")
		return nil, fmt.Errorf("failed to build get sponsorship query: %w", err)
	}

	s, err := scanSponsorship(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("sponsorship submission not found")
		}
		return nil, fmt.Errorf("error retrieving sponsorship submission: %w", err)
	}
	return s, nil
}

// List returns submissions newest first, optionally filtered by status
func (r *SponsorshipRepository) List(ctx context.Context, status *models.SponsorshipStatus) ([]*models.SponsorshipSubmission, error) {
	q := r.sb.Select(sponsorshipColumns...).From("sponsorship_submissions").OrderBy("submitted_at DESC", "id")
	if status != nil {
		q = q.Where(squirrel.Eq{"status": string(*status)})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list sponsorships SQL")
		return nil, fmt.Errorf("failed to build list sponsorships query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list sponsorships query")
		return nil, fmt.Errorf("error listing sponsorship submissions: %w", err)
	}
	defer rows.Close()

	var out []*models.SponsorshipSubmission
	for rows.Next() {
		s, err := scanSponsorship(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning sponsorship row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ReviewPending moves a pending submission to a terminal status in one conditional
// UPDATE. Reviewing a non-pending submission is an invalid state transition.
func (r *SponsorshipRepository) ReviewPending(ctx context.Context, id uuid.UUID, status models.SponsorshipStatus, reviewer uuid.UUID, at time.Time) (*models.SponsorshipSubmission, error) {
	sql, args, err := r.sb.Update("sponsorship_submissions").
		Set("status", string(status)).
		Set("reviewed_at", at).
		Set("reviewed_by", reviewer).
		Where(squirrel.Eq{"id": id, "status": string(models.SponsorshipPending)}).
		Suffix("RETURNING " + strings.Join(sponsorshipColumns, ", ")).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building review sponsorship SQL")
		return nil, fmt.Errorf("failed to build review sponsorship query: %w", err)
	}

	s, err := scanSponsorship(r.db.QueryRow(ctx, sql, args...))
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		logger.Error().Err(err).Str("sponsorshipID", id.String()).Msg("Error executing review sponsorship query")
		return nil, fmt.Errorf("error reviewing sponsorship submission: %w", err)
	}

	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, apperrors.NewStateTransitionError(
		fmt.Sprintf("sponsorship is already %s and cannot become %s", current.Status, status))
}
