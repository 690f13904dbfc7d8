package archive

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/insta-feed-harvester/internal/domain"
)

var (
	ErrAlreadyExists = errors.New("post archive already exists")
	ErrNotFound      = errors.New("post archive not found")
)

type Repository interface {
	// Create adds a new archive entry
	Create(ctx context.Context, entry domain.PostArchive) error

	// Exists checks if a post with the given content ID was already harvested
	Exists(ctx context.Context, contentID string) (bool, error)

	// GetLatestByProfile returns the most recent archive entries for a profile, limited by count
	GetLatestByProfile(ctx context.Context, profile string, count int) ([]*domain.PostArchive, error)

	// CleanupOldRecords deletes entries older than the specified duration
	CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error)
}
