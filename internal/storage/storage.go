package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/orgball2608/insta-feed-harvester/internal/domain"
)

// SavedPost describes where a harvested post landed on disk.
type SavedPost struct {
	ContentID   string
	Dir         string
	CaptionPath string
	ImagePaths  []string
}

type Client interface {
	// SavePost writes the post's caption file and downloads its images into
	// the per-profile, per-date directory.
	SavePost(ctx context.Context, post domain.Post) (*SavedPost, error)
}

// ContentID derives the stable deduplication identifier for a post: the first
// 12 hex digits of md5 over "<profile>_<YYYYmmddHHMMSS>_<first 20 caption
// runes>". Stable across runs as long as the post's publish instant and
// caption head do not change.
func ContentID(post domain.Post) string {
	caption := []rune(post.Caption)
	if len(caption) > 20 {
		caption = caption[:20]
	}
	raw := fmt.Sprintf("%s_%s_%s", post.Profile, post.Timestamp.Format("20060102150405"), string(caption))
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])[:12]
}
