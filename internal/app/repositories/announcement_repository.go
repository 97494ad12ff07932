package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/dberrors"
	"github.com/yigit/academy/internal/pkg/logger"
)

// AnnouncementFilter scopes announcement listings to what a viewer may see
type AnnouncementFilter struct {
	ViewerID       uuid.UUID
	Audiences      []models.Audience // nil means no audience restriction
	IncludeExpired bool
	Now            time.Time
	UnreadOnly     bool // drop announcements ViewerID holds a receipt for
	Published      models.DateRange
	Limit          uint64
}

// AnnouncementRepository handles announcements and their read receipts
type AnnouncementRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAnnouncementRepository creates a new AnnouncementRepository
func NewAnnouncementRepository(db *pgxpool.Pool) *AnnouncementRepository {
	return &AnnouncementRepository{
		db: db,
		sb: newBuilder(),
	}
}

// Create inserts an announcement and fills its generated fields
func (r *AnnouncementRepository) Create(ctx context.Context, a *models.Announcement) error {
	sql, args, err := r.sb.Insert("announcements").
		Columns("author_id", "title", "content", "priority", "category", "target_audience", "published_at", "expires_at").
		Values(a.AuthorID, a.Title, a.Content, string(a.Priority), string(a.Category), string(a.TargetAudience), a.PublishedAt, a.ExpiresAt).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create announcement SQL")
		return fmt.Errorf("failed to build create announcement query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewValidationError("expiresAt must be after publishedAt")
		}
		logger.Error().Err(err).Str("authorID", a.AuthorID.String()).Msg("Error executing create announcement query")
		return fmt.Errorf("error creating announcement: %w", err)
	}
	return nil
}

func (r *AnnouncementRepository) selectJoined() squirrel.SelectBuilder {
	cols := []string{
		"a.id", "a.author_id", "a.title", "a.content", "a.priority", "a.category", "a.target_audience",
		"a.published_at", "a.expires_at", "a.created_at", "a.updated_at",
	}
	cols = append(cols, summaryColumns("p")...)
	return r.sb.Select(cols...).
		From("announcements a").
		Join("profiles p ON p.id = a.author_id")
}

func scanAnnouncement(row rowScanner) (*models.Announcement, error) {
	a := &models.Announcement{Author: &models.UserSummary{}}
	dest := []any{
		&a.ID, &a.AuthorID, &a.Title, &a.Content, &a.Priority, &a.Category, &a.TargetAudience,
		&a.PublishedAt, &a.ExpiresAt, &a.CreatedAt, &a.UpdatedAt,
	}
	dest = append(dest, summaryTargets(a.Author)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an announcement with its author summary
func (r *AnnouncementRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Announcement, error) {
	sql, args, err := r.selectJoined().Where(squirrel.Eq{"a.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get announcement SQL")
		return nil, fmt.Errorf("failed to build get announcement query: %w", err)
	}

	a, err := scanAnnouncement(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("announcement not found")
		}
		logger.Error().Err(err).Str("announcementID", id.String()).Msg("Error scanning announcement row")
		return nil, fmt.Errorf("error retrieving announcement: %w", err)
	}
	return a, nil
}

// visibility builds the WHERE clause shared by List and Count
func (r *AnnouncementRepository) visibility(f AnnouncementFilter) squirrel.And {
	where := squirrel.And{}
	if f.Audiences != nil {
		audiences := make([]string, len(f.Audiences))
		for i, a := range f.Audiences {
			audiences[i] = string(a)
		}
		where = append(where, squirrel.Or{
			squirrel.Eq{"a.target_audience": audiences},
			squirrel.Eq{"a.author_id": f.ViewerID},
		})
	}
	if !f.IncludeExpired {
		where = append(where, squirrel.Or{
			squirrel.Eq{"a.expires_at": nil},
			squirrel.Gt{"a.expires_at": f.Now},
		})
	}
	if !f.Published.IsZero() {
		where = append(where, dateRangeFilter("a.published_at", f.Published))
	}
	if f.UnreadOnly {
		where = append(where, squirrel.Expr(
			"NOT EXISTS (SELECT 1 FROM announcement_reads ar WHERE ar.announcement_id = a.id AND ar.user_id = ?)", f.ViewerID))
	}
	return where
}

// List returns visible announcements, newest first
func (r *AnnouncementRepository) List(ctx context.Context, f AnnouncementFilter) ([]*models.Announcement, error) {
	q := r.selectJoined().Where(r.visibility(f)).OrderBy("a.published_at DESC", "a.id")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list announcements SQL")
		return nil, fmt.Errorf("failed to build list announcements query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list announcements query")
		return nil, fmt.Errorf("error listing announcements: %w", err)
	}
	defer rows.Close()

	var out []*models.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning announcement row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Count returns how many announcements match f, ignoring Limit
func (r *AnnouncementRepository) Count(ctx context.Context, f AnnouncementFilter) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("announcements a").Where(r.visibility(f)).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count announcements SQL")
		return 0, fmt.Errorf("failed to build count announcements query: %w", err)
	}

	var n int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting announcements: %w", err)
	}
	return n, nil
}

// Update writes the editable fields
func (r *AnnouncementRepository) Update(ctx context.Context, a *models.Announcement) error {
	sql, args, err := r.sb.Update("announcements").
		SetMap(map[string]any{
			"title":           a.Title,
			"content":         a.Content,
			"priority":        string(a.Priority),
			"category":        string(a.Category),
			"target_audience": string(a.TargetAudience),
			"published_at":    a.PublishedAt,
			"expires_at":      a.ExpiresAt,
			"updated_at":      squirrel.Expr("now()"),
		}).
		Where(squirrel.Eq{"id": a.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update announcement SQL")
		return fmt.Errorf("failed to build update announcement query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewResourceNotFoundError("announcement not found")
		}
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewValidationError("expiresAt must be after publishedAt")
		}
		logger.Error().Err(err).Str("announcementID", a.ID.String()).Msg("Error executing update announcement query")
		return fmt.Errorf("error updating announcement: %w", err)
	}
	return nil
}

// Delete removes an announcement and its read receipts
func (r *AnnouncementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("announcements").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete announcement SQL")
		return fmt.Errorf("failed to build delete announcement query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("announcementID", id.String()).Msg("Error executing delete announcement query")
		return fmt.Errorf("error deleting announcement: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("announcement not found")
	}
	return nil
}

// MarkRead stores a read receipt; repeating it keeps the first read time
func (r *AnnouncementRepository) MarkRead(ctx context.Context, userID, announcementID uuid.UUID) error {
	sql, args, err := r.sb.Insert("announcement_reads").
		Columns("user_id", "announcement_id").
		Values(userID, announcementID).
		Suffix("ON CONFLICT (user_id, announcement_id) DO NOTHING").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building mark announcement read SQL")
		return fmt.Errorf("failed to build mark announcement read query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewResourceNotFoundError("announcement not found")
		}
		return fmt.Errorf("error marking announcement read: %w", err)
	}
	return nil
}

// ReadSet returns the ids of announcements the user has read
func (r *AnnouncementRepository) ReadSet(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	sql, args, err := r.sb.Select("announcement_id").From("announcement_reads").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building read set SQL")
		return nil, fmt.Errorf("failed to build read set query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error loading read receipts: %w", err)
	}
	defer rows.Close()

	read := map[uuid.UUID]bool{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning read receipt: %w", err)
		}
		read[id] = true
	}
	return read, rows.Err()
}
