package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/orgball2608/insta-feed-harvester/internal/domain"
)

func TestContentID(t *testing.T) {
	post := domain.Post{
		Profile:   "someuser",
		Timestamp: time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC),
		Caption:   "a caption that is clearly longer than twenty characters",
	}

	id := ContentID(post)
	assert.Len(t, id, 12)
	assert.Regexp(t, "^[0-9a-f]{12}$", id)

	// Deterministic across calls.
	assert.Equal(t, id, ContentID(post))

	// Only the first twenty caption runes participate.
	tail := post
	tail.Caption = post.Caption[:20] + "completely different tail"
	assert.Equal(t, id, ContentID(tail))

	head := post
	head.Caption = "another caption head entirely"
	assert.NotEqual(t, id, ContentID(head))

	later := post
	later.Timestamp = post.Timestamp.Add(time.Second)
	assert.NotEqual(t, id, ContentID(later))
}
