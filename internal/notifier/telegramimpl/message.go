package telegramimpl

import (
	"fmt"
	"strings"

	"github.com/orgball2608/insta-feed-harvester/internal/domain"
	"github.com/orgball2608/insta-feed-harvester/pkg/formatter"
)

const captionPreviewRunes = 200

// FormatPostMessage renders the channel announcement for a harvested post in
// MarkdownV2: bold author, publish time, a caption preview capped at 200
// runes, and the post link.
func FormatPostMessage(post domain.Post) string {
	var sb strings.Builder

	author := post.Author
	if author == "" {
		author = post.Profile
	}
	sb.WriteString(fmt.Sprintf("*%s*\n", formatter.EscapeMarkdownV2(author)))
	sb.WriteString(formatter.EscapeMarkdownV2(post.Timestamp.Format("2006-01-02 15:04")))
	sb.WriteString("\n")

	if caption := strings.TrimSpace(post.Caption); caption != "" {
		preview := formatter.TruncateRunes(caption, captionPreviewRunes)
		sb.WriteString("\n")
		sb.WriteString(formatter.EscapeMarkdownV2(preview))
		sb.WriteString("\n")
	}

	if isPostURL(post.URL) {
		sb.WriteString("\n")
		sb.WriteString(formatter.EscapeMarkdownV2(post.URL))
	}

	if n := len(post.ImageURLs); n > 1 {
		sb.WriteString(fmt.Sprintf("\n\n%d images", n))
	}

	return sb.String()
}

// isPostURL guards the announcement link: only canonical post and reel pages
// are worth linking, anything else the scanner produced is noise.
func isPostURL(url string) bool {
	return strings.Contains(url, "/p/") || strings.Contains(url, "/reel/")
}
