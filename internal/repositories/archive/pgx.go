package archive

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/insta-feed-harvester/internal/domain"
	"github.com/orgball2608/insta-feed-harvester/internal/repositories"
	"github.com/orgball2608/insta-feed-harvester/pkg/logger"

	sq "github.com/Masterminds/squirrel"
)

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("PostArchiveRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

// Create adds a new archive entry
func (p *Pgx) Create(ctx context.Context, entry domain.PostArchive) error {
	query, args, err := repositories.SqBuilder.
		Insert("post_archives").
		Columns("content_id", "profile", "post_url", "author", "posted_at", "caption", "image_count", "created_at").
		Values(entry.ContentID, entry.Profile, entry.URL, entry.Author, entry.PostedAt, entry.Caption, entry.ImageCount, time.Now()).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Exists checks if a post with the given content ID was already harvested
func (p *Pgx) Exists(ctx context.Context, contentID string) (bool, error) {
	query, args, err := repositories.SqBuilder.
		Select("1").
		From("post_archives").
		Where(sq.Eq{"content_id": contentID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, repositories.ErrBadQuery
	}

	var one int
	err = p.pg.QueryRow(ctx, query, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// GetLatestByProfile returns the most recent archive entries for a profile, limited by count
func (p *Pgx) GetLatestByProfile(ctx context.Context, profile string, count int) ([]*domain.PostArchive, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "content_id", "profile", "post_url", "author", "posted_at", "caption", "image_count", "created_at").
		From("post_archives").
		Where(sq.Eq{"profile": profile}).
		OrderBy("created_at DESC").
		Limit(uint64(count)).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.PostArchive
	for rows.Next() {
		var e domain.PostArchive
		if err := rows.Scan(&e.ID, &e.ContentID, &e.Profile, &e.URL, &e.Author, &e.PostedAt, &e.Caption, &e.ImageCount, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// CleanupOldRecords deletes entries older than the specified duration
func (p *Pgx) CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	query, args, err := repositories.SqBuilder.
		Delete("post_archives").
		Where(sq.Lt{"created_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	result, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}
