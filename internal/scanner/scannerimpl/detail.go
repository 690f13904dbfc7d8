package scannerimpl

import (
	"context"
	"strings"
	"time"

	"github.com/orgball2608/insta-feed-harvester/internal/browser"
	"github.com/orgball2608/insta-feed-harvester/internal/domain"
	"github.com/orgball2608/insta-feed-harvester/internal/scanner"
	"github.com/orgball2608/insta-feed-harvester/pkg/recency"
)

// defaultCarouselSettle is the fixed wait after advancing a carousel before
// the new image is re-resolved.
const defaultCarouselSettle = 500 * time.Millisecond

// extractDetail pulls the structured fields out of the currently open detail
// view. Every field resolves through its own fallback chain; only a missing
// dialog or timestamp node is fatal, surfaced as scanner.ErrNotFound.
func (s *ScannerImpl) extractDetail(ctx context.Context, profile string) (*domain.Post, error) {
	if err := s.session.WaitVisible(ctx, s.selectors.DetailDialog, s.config.Browser.SelectorTimeout); err != nil {
		s.logger.Warn("Detail view did not open", "profile", profile, "error", err)
		return nil, scanner.ErrNotFound
	}

	timestamp, displayText, err := s.extractTimestamp(ctx)
	if err != nil {
		s.logger.Warn("No timestamp element in detail view", "profile", profile)
		return nil, scanner.ErrNotFound
	}

	return &domain.Post{
		Profile:       profile,
		Author:        s.extractAuthor(ctx, profile),
		Timestamp:     timestamp,
		TimestampText: displayText,
		Caption:       s.extractCaption(ctx),
		ImageURLs:     s.extractImageURLs(ctx),
	}, nil
}

// extractTimestamp locates the time-indicator node (XPath first, then the CSS
// chain) and prefers its machine-readable datetime attribute; the displayed
// text is parsed only when the attribute is absent, and is always retained as
// auxiliary display text.
func (s *ScannerImpl) extractTimestamp(ctx context.Context) (time.Time, string, error) {
	node, _ := s.session.Query(ctx, s.selectors.TimestampXPath)
	if node == nil {
		for _, sel := range s.selectors.Timestamps {
			if node, _ = s.session.Query(ctx, sel); node != nil {
				break
			}
		}
	}
	if node == nil {
		return time.Time{}, "", scanner.ErrNotFound
	}

	displayText, err := s.session.InnerText(ctx, *node)
	if err != nil {
		displayText = ""
	}

	if attr, err := s.session.Attribute(ctx, *node, "datetime"); err == nil && attr != "" {
		if exact, err := recency.ParseExact(attr); err == nil {
			return exact, displayText, nil
		}
		s.logger.Warn("Unparseable datetime attribute, falling back to display text", "datetime", attr)
	}

	return recency.ParseTimestamp(displayText, s.now()), displayText, nil
}

func (s *ScannerImpl) extractAuthor(ctx context.Context, profile string) string {
	if node, _ := s.session.Query(ctx, s.selectors.AuthorXPath); node != nil {
		if author, err := s.session.InnerText(ctx, *node); err == nil && author != "" {
			return author
		}
	}
	for _, sel := range s.selectors.Authors {
		node, _ := s.session.Query(ctx, sel)
		if node == nil {
			continue
		}
		if author, err := s.session.InnerText(ctx, *node); err == nil && author != "" {
			return author
		}
	}
	return profile
}

func (s *ScannerImpl) extractCaption(ctx context.Context) string {
	for _, sel := range s.selectors.Captions {
		node, _ := s.session.Query(ctx, sel)
		if node == nil {
			continue
		}
		if caption, err := s.session.InnerText(ctx, *node); err == nil {
			return caption
		}
	}
	return ""
}

// extractImageURLs collects the post's image URLs in display order. The
// responsive srcset attribute's last (highest-resolution) entry is preferred
// over src. A present next-control marks a carousel: advance, settle,
// re-resolve, and append unseen URLs until the control disappears or the cap
// is reached. Any mid-traversal failure keeps what was already collected.
func (s *ScannerImpl) extractImageURLs(ctx context.Context) []string {
	var urls []string

	if url := s.currentImageURL(ctx); url != "" {
		urls = append(urls, url)
	}

	if s.findNextControl(ctx) == nil {
		return urls
	}

	s.logger.Info("Carousel post detected, traversing images")
	for i := 0; i < maxCarouselImages-1; i++ {
		next := s.findNextControl(ctx)
		if next == nil {
			break
		}
		if err := s.session.Click(ctx, *next); err != nil {
			s.logger.Warn("Failed to advance carousel", "error", err)
			break
		}
		s.session.SettleDelay()
		time.Sleep(s.carouselSettle)

		url := s.currentImageURL(ctx)
		if url == "" {
			continue
		}
		if !containsString(urls, url) {
			urls = append(urls, url)
		}
	}

	return urls
}

// currentImageURL resolves the visible image through the selector chain and
// applies the srcset-over-src preference.
func (s *ScannerImpl) currentImageURL(ctx context.Context) string {
	var node *browser.Handle
	for _, sel := range s.selectors.Images {
		if node, _ = s.session.Query(ctx, sel); node != nil {
			break
		}
	}
	if node == nil {
		return ""
	}

	if srcset, err := s.session.Attribute(ctx, *node, "srcset"); err == nil && srcset != "" {
		if url := lastSrcsetURL(srcset); url != "" {
			return url
		}
	}

	src, err := s.session.Attribute(ctx, *node, "src")
	if err != nil {
		return ""
	}
	return src
}

func (s *ScannerImpl) findNextControl(ctx context.Context) *browser.Handle {
	for _, sel := range s.selectors.NextControls {
		if node, _ := s.session.Query(ctx, sel); node != nil {
			return node
		}
	}
	return nil
}

// lastSrcsetURL returns the URL of the final srcset entry, conventionally the
// highest-resolution one.
func lastSrcsetURL(srcset string) string {
	entries := strings.Split(srcset, ",")
	last := strings.TrimSpace(entries[len(entries)-1])
	if last == "" {
		return ""
	}
	return strings.SplitN(last, " ", 2)[0]
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// closeDetailView releases the open detail view: the close control when it
// resolves, Escape otherwise. Best effort on every path.
func (s *ScannerImpl) closeDetailView(ctx context.Context) {
	if node, err := s.session.Query(ctx, s.selectors.CloseControl); err == nil && node != nil {
		if err := s.session.Click(ctx, *node); err == nil {
			return
		}
	}
	if err := s.session.KeyPress(ctx, "Escape"); err != nil {
		s.logger.Warn("Failed to close detail view", "error", err)
	}
}
