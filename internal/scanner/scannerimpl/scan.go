package scannerimpl

import (
	"context"
	"errors"

	"github.com/orgball2608/insta-feed-harvester/internal/browser"
	"github.com/orgball2608/insta-feed-harvester/internal/domain"
)

type scanState string

const (
	stateIdle              scanState = "idle"
	stateNavigated         scanState = "navigated"
	stateCandidatesLocated scanState = "candidates_located"
	stateDetailOpen        scanState = "detail_open"
	stateDetailClosed      scanState = "detail_closed"
	stateStopped           scanState = "stopped"
)

// profileScan tracks one profile scan's progress through the
// idle → navigated → candidates-located → (detail open/closed)* → stopped
// lifecycle.
type profileScan struct {
	impl    *ScannerImpl
	profile string
	state   scanState

	processed int
	results   []domain.Post
}

func (sc *profileScan) transition(to scanState) {
	sc.impl.logger.Debug("Scan state transition", "profile", sc.profile, "from", sc.state, "to", to)
	sc.state = to
}

// ScanProfile runs the full feed scan for one profile. The feed is assumed
// reverse-chronological, so scanning stops at the first out-of-window post;
// pinned entries, which break that ordering, are classified up front and
// skipped. Per-candidate failures are logged skips and never abort the scan.
func (s *ScannerImpl) ScanProfile(ctx context.Context, profile string) ([]domain.Post, error) {
	log := s.logger
	log.Info("Scanning profile feed", "profile", profile)

	sc := &profileScan{impl: s, profile: profile, state: stateIdle}

	if err := s.session.Navigate(ctx, profileURL(profile)); err != nil {
		if errors.Is(err, browser.ErrTimeout) {
			log.Warn("Profile navigation timed out", "profile", profile, "error", err)
		} else {
			log.Error("Profile navigation failed", "profile", profile, "error", err)
		}
		return nil, err
	}
	sc.transition(stateNavigated)

	if err := s.session.ScrollDown(ctx, s.config.Scanner.ScrollCount); err != nil {
		log.Warn("Feed scroll failed, scanning what is rendered", "profile", profile, "error", err)
	}

	candidates := dedupByHref(s.locateCandidates(ctx))
	if len(candidates) == 0 {
		log.Info("No post candidates found", "profile", profile)
		return nil, nil
	}
	sc.transition(stateCandidatesLocated)
	log.Info("Found post candidates", "profile", profile, "count", len(candidates))

	pinned := s.classifyPinned(ctx, candidates)
	if len(pinned) > 0 {
		log.Info("Skipping pinned entries", "profile", profile, "count", len(pinned))
	}

	for i, cand := range candidates {
		if sc.processed >= s.config.Scanner.MaxPosts {
			log.Info("Reached max posts per profile", "profile", profile, "processed", sc.processed)
			break
		}
		if pinned.Contains(cand.href) {
			log.Info("Skipping pinned post", "profile", profile, "href", cand.href)
			continue
		}

		if stop := s.processCandidate(ctx, sc, i, cand); stop {
			break
		}
	}

	sc.transition(stateStopped)
	log.Info("Profile scan complete", "profile", profile, "matched", len(sc.results), "processed", sc.processed)
	return sc.results, nil
}

// processCandidate opens one candidate's detail view, extracts it, classifies
// recency, and reports whether the early-stop policy fired. The detail view
// is released on every exit path.
func (s *ScannerImpl) processCandidate(ctx context.Context, sc *profileScan, index int, cand candidate) (stop bool) {
	if err := s.session.Click(ctx, cand.handle); err != nil {
		s.logger.Warn("Failed to open candidate", "profile", sc.profile, "index", index, "error", err)
		return false
	}
	sc.transition(stateDetailOpen)
	s.session.SettleDelay()

	defer func() {
		s.closeDetailView(ctx)
		sc.transition(stateDetailClosed)
		s.session.SettleDelay()
	}()

	post, err := s.extractDetail(ctx, sc.profile)
	if err != nil {
		s.logger.Warn("Extraction failed, skipping candidate", "profile", sc.profile, "index", index, "error", err)
		sc.processed++
		return false
	}
	sc.processed++
	post.URL = absoluteURL(cand.href)

	threshold := s.config.Scanner.HoursThreshold
	now := s.now()

	if s.vocab.HasOld(post.TimestampText) && !s.vocab.HasRecent(post.TimestampText) {
		// The yesterday special case: ambiguous between 1h and 48h old, so
		// it is admitted only under a generous threshold.
		if s.vocab.HasYesterday(post.TimestampText) && threshold >= s.config.Scanner.YesterdayHours {
			if s.vocab.IsWithinWindow(post.Timestamp, now, threshold, post.TimestampText) {
				sc.results = append(sc.results, *post)
				s.logger.Info("Matched yesterday's post under extended window",
					"profile", sc.profile, "author", post.Author, "displayed", post.TimestampText)
			}
		}
		// Early stop: with a reverse-chronological feed, everything after
		// the first stale post is stale too. If the feed ever interleaves
		// non-chronological content this undercounts, hence the marker log.
		s.logger.Warn("Out-of-window post encountered, stopping scan",
			"profile", sc.profile, "index", index, "displayed", post.TimestampText)
		return true
	}

	if s.vocab.IsWithinWindow(post.Timestamp, now, threshold, post.TimestampText) {
		sc.results = append(sc.results, *post)
		s.logger.Info("Matched post",
			"profile", sc.profile,
			"author", post.Author,
			"displayed", post.TimestampText,
			"timestamp", post.Timestamp,
			"images", len(post.ImageURLs))
	} else {
		s.logger.Info("Skipping out-of-window post",
			"profile", sc.profile, "displayed", post.TimestampText, "timestamp", post.Timestamp)
	}
	return false
}

func dedupByHref(candidates []candidate) []candidate {
	seen := make(map[string]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if c.href != "" && seen[c.href] {
			continue
		}
		seen[c.href] = true
		out = append(out, c)
	}
	return out
}
