package scanner

import (
	"context"
	"errors"

	"github.com/orgball2608/insta-feed-harvester/internal/domain"
)

// ErrNotFound signals that an opened detail view never became extractable.
var ErrNotFound = errors.New("detail view not found")

type Client interface {
	// ScanProfile inspects one profile's feed and returns the in-window
	// posts in feed-encounter order. The result is empty, never an error,
	// when the feed yields no usable candidates; an error is returned only
	// when the profile page itself could not be reached.
	ScanProfile(ctx context.Context, profile string) ([]domain.Post, error)
}
