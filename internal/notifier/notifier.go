package notifier

import (
	"context"

	"github.com/orgball2608/insta-feed-harvester/internal/domain"
)

type Client interface {
	// NotifyPost announces a freshly harvested post to the configured channel.
	NotifyPost(ctx context.Context, post domain.Post) error

	// NotifyError reports an operational failure. Best effort, never blocks
	// the caller on delivery problems.
	NotifyError(ctx context.Context, message string)
}
