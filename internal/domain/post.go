package domain

import "time"

// Post is the structured result of extracting one opened detail view.
type Post struct {
	Profile       string    // profile identifier the feed belongs to
	URL           string    // absolute link to the post's detail page
	Author        string    // display author, falls back to Profile
	Timestamp     time.Time // absolute publish instant
	TimestampText string    // human-readable display text, may be empty
	Caption       string
	ImageURLs     []string // ordered, deduplicated, may be empty
}
