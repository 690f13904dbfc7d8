package domain

import "time"

// PostArchive is the persisted record of a harvested post, used for
// cross-run deduplication.
type PostArchive struct {
	ID         int
	ContentID  string
	Profile    string
	URL        string
	Author     string
	PostedAt   time.Time
	Caption    string
	ImageCount int
	CreatedAt  time.Time
}
