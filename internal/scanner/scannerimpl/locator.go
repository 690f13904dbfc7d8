package scannerimpl

import (
	"context"
	"fmt"
	"path/filepath"
)

const hasImageFn = `function() { return this.querySelector('img') !== null; }`

const nearestAnchorHrefFn = `function() {
	let current = this;
	while (current && current.tagName !== 'A') {
		current = current.parentElement;
	}
	return current ? current.getAttribute('href') : null;
}`

// locateCandidates resolves the clickable post entries in the rendered feed.
// It tries the ordered locating expressions first, keeping only image-bearing
// matches; when every expression fails it falls back to resolving cover
// images by structural XPath and walking up to their anchors. Exhaustion
// yields an empty slice plus a diagnostic screenshot, never an error.
func (s *ScannerImpl) locateCandidates(ctx context.Context) []candidate {
	for _, expr := range s.selectors.PostLinks {
		handles, err := s.session.QueryAll(ctx, expr)
		if err != nil {
			s.logger.Debug("Post link expression failed", "expression", expr, "error", err)
			continue
		}
		if len(handles) == 0 {
			continue
		}

		var found []candidate
		for _, h := range handles {
			var hasImage bool
			if err := s.session.EvaluateOn(ctx, h, hasImageFn, &hasImage); err != nil || !hasImage {
				continue
			}
			href, err := s.session.Attribute(ctx, h, "href")
			if err != nil {
				continue
			}
			found = append(found, candidate{handle: h, href: href})
		}

		if len(found) > 0 {
			s.logger.Info("Located post candidates", "expression", expr, "count", len(found))
			return found
		}
	}

	if found := s.locateByCoverImages(ctx); len(found) > 0 {
		return found
	}

	path := filepath.Join(s.config.Storage.DataDir, "debug_screenshot.png")
	if err := s.session.Screenshot(ctx, path); err != nil {
		s.logger.Warn("Failed to capture diagnostic screenshot", "error", err)
	} else {
		s.logger.Warn("No post candidates found, captured diagnostic screenshot", "path", path)
	}
	return nil
}

// locateByCoverImages is the secondary strategy: resolve cover-image nodes by
// a fixed structural path, walk each up to its nearest anchor, and re-resolve
// that anchor by href to obtain a stable handle.
func (s *ScannerImpl) locateByCoverImages(ctx context.Context) []candidate {
	images, err := s.session.QueryAll(ctx, s.selectors.PostImageXPath)
	if err != nil || len(images) == 0 {
		return nil
	}
	s.logger.Info("Falling back to cover-image location", "count", len(images))

	var found []candidate
	for _, img := range images {
		var href *string
		if err := s.session.EvaluateOn(ctx, img, nearestAnchorHrefFn, &href); err != nil || href == nil {
			continue
		}
		if !isPostHref(*href) {
			continue
		}
		anchor, err := s.session.Query(ctx, fmt.Sprintf("a[href='%s']", *href))
		if err != nil || anchor == nil {
			continue
		}
		found = append(found, candidate{handle: *anchor, href: *href})
	}
	return found
}
