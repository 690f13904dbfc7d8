package scannerimpl

import (
	"context"
	"fmt"
	"math"

	"github.com/orgball2608/insta-feed-harvester/internal/browser"
	"github.com/orgball2608/insta-feed-harvester/internal/selectors"
)

const boundedPostAnchorFn = `function() {
	let current = this;
	for (let i = 0; i <= 10 && current; i++) {
		if (current.tagName && current.tagName.toLowerCase() === 'a' && current.href &&
		    (current.href.includes('/p/') || current.href.includes('/reel/'))) {
			return current.href;
		}
		current = current.parentElement;
	}
	return null;
}`

const centerRectFn = `function() {
	const r = this.getBoundingClientRect();
	return {x: r.x + r.width / 2, y: r.y + r.height / 2};
}`

type center struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// classifyPinned determines which feed entries are pinned. The configured
// strategy table is evaluated in priority order and short-circuits at the
// first strategy producing a non-empty result; the first-post fallback is the
// terminal entry and only fires when no pinned marker was found anywhere on
// the page by any selector.
func (s *ScannerImpl) classifyPinned(ctx context.Context, candidates []candidate) pinnedSet {
	markers := s.findPinnedMarkers(ctx)

	for _, strategy := range s.selectors.PinnedPriority {
		var ids pinnedSet
		switch strategy {
		case selectors.StrategyIconMatching:
			ids = s.pinnedByIconPath(ctx)
		case selectors.StrategySpatialProximity:
			if len(markers) > 0 {
				ids = s.pinnedByProximity(ctx, markers, candidates)
			}
		case selectors.StrategyDOMTraversal:
			if len(markers) > 0 {
				ids = s.pinnedByAncestorWalk(ctx, markers)
			}
		case selectors.StrategyFirstPostFallback:
			if len(markers) == 0 && len(candidates) > 0 {
				s.logger.Info("No pinned marker found anywhere, assuming first post is pinned")
				ids = pinnedSet{candidates[0].href}
			}
		default:
			s.logger.Warn("Unknown pinned strategy in priority table", "strategy", strategy)
		}

		if len(ids) > 0 {
			s.logger.Info("Classified pinned entries", "strategy", strategy, "count", len(ids))
			return ids
		}
	}
	return nil
}

// findPinnedMarkers collects marker nodes matched by the canonical selector
// or any known alternate.
func (s *ScannerImpl) findPinnedMarkers(ctx context.Context) []browser.Handle {
	seen := make(map[int64]bool)
	var markers []browser.Handle
	for _, sel := range s.selectors.MarkerSelectors() {
		handles, err := s.session.QueryAll(ctx, sel)
		if err != nil {
			s.logger.Debug("Pinned marker selector failed", "selector", sel, "error", err)
			continue
		}
		for _, h := range handles {
			if !seen[h.ID] {
				seen[h.ID] = true
				markers = append(markers, h)
			}
		}
	}
	return markers
}

// pinnedByIconPath resolves the fixed container→row→item→icon-container path
// and collects the post href of every item whose icon container holds the
// canonical marker. An absent structural path yields nothing; the strategy
// does not retry lower layers on its own.
func (s *ScannerImpl) pinnedByIconPath(ctx context.Context) pinnedSet {
	container, err := s.session.Query(ctx, s.selectors.FeedContainer)
	if err != nil || container == nil {
		return nil
	}

	itemExpr := fmt.Sprintf("%s %s %s", s.selectors.FeedContainer, s.selectors.FeedRow, s.selectors.FeedItem)
	items, err := s.session.QueryAll(ctx, itemExpr)
	if err != nil || len(items) == 0 {
		return nil
	}

	iconFn := fmt.Sprintf(`function() {
		const icon = this.querySelector(%q);
		if (!icon) return null;
		let current = icon;
		while (current &&
		       (!current.tagName || current.tagName.toLowerCase() !== 'a' ||
		        !current.href ||
		        (!current.href.includes('/p/') && !current.href.includes('/reel/')))) {
			current = current.parentElement;
		}
		return current ? current.href : null;
	}`, s.selectors.FeedIconContainer+" "+s.selectors.PinnedIcon)

	var ids pinnedSet
	for _, item := range items {
		var href *string
		if err := s.session.EvaluateOn(ctx, item, iconFn, &href); err != nil || href == nil {
			continue
		}
		ids = append(ids, *href)
	}
	return ids
}

// pinnedByProximity assigns each marker to the candidate whose bounding-box
// center is nearest by Euclidean distance.
func (s *ScannerImpl) pinnedByProximity(ctx context.Context, markers []browser.Handle, candidates []candidate) pinnedSet {
	if len(candidates) == 0 {
		return nil
	}

	centers := make([]*center, len(candidates))
	for i, cand := range candidates {
		var c center
		if err := s.session.EvaluateOn(ctx, cand.handle, centerRectFn, &c); err != nil {
			continue
		}
		centers[i] = &c
	}

	var ids pinnedSet
	for _, marker := range markers {
		var mc center
		if err := s.session.EvaluateOn(ctx, marker, centerRectFn, &mc); err != nil {
			continue
		}

		best := -1
		bestDist := math.MaxFloat64
		for i, cc := range centers {
			if cc == nil {
				continue
			}
			d := math.Hypot(cc.X-mc.X, cc.Y-mc.Y)
			if d < bestDist {
				bestDist = d
				best = i
			}
		}
		if best >= 0 {
			ids = append(ids, candidates[best].href)
		}
	}
	return ids
}

// pinnedByAncestorWalk ascends a bounded number of steps from each marker
// looking for an anchor with a post href.
func (s *ScannerImpl) pinnedByAncestorWalk(ctx context.Context, markers []browser.Handle) pinnedSet {
	var ids pinnedSet
	for _, marker := range markers {
		var href *string
		if err := s.session.EvaluateOn(ctx, marker, boundedPostAnchorFn, &href); err != nil || href == nil {
			continue
		}
		ids = append(ids, *href)
	}
	return ids
}
