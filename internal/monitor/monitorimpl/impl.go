package monitorimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/orgball2608/insta-feed-harvester/internal/domain"
	"github.com/orgball2608/insta-feed-harvester/internal/monitor"
	"github.com/orgball2608/insta-feed-harvester/internal/notifier"
	"github.com/orgball2608/insta-feed-harvester/internal/repositories/archive"
	"github.com/orgball2608/insta-feed-harvester/internal/scanner"
	"github.com/orgball2608/insta-feed-harvester/internal/storage"
	"github.com/orgball2608/insta-feed-harvester/pkg/config"
	apperrors "github.com/orgball2608/insta-feed-harvester/pkg/errors"
	"github.com/orgball2608/insta-feed-harvester/pkg/logger"
	"go.uber.org/fx"
)

// archiveRetention bounds how long harvested-post records are kept for
// deduplication before the daily job removes them.
const archiveRetention = 30 * 24 * time.Hour

type Opts struct {
	fx.In

	Scanner     scanner.Client
	ArchiveRepo archive.Repository
	Storage     storage.Client
	Notifier    notifier.Client
	Logger      logger.Logger
	Config      *config.Config
}

type MonitorImpl struct {
	Scanner     scanner.Client
	ArchiveRepo archive.Repository
	Storage     storage.Client
	Notifier    notifier.Client
	Logger      logger.Logger
	Config      *config.Config
}

func New(opts Opts) *MonitorImpl {
	return &MonitorImpl{
		Scanner:     opts.Scanner,
		ArchiveRepo: opts.ArchiveRepo,
		Storage:     opts.Storage,
		Notifier:    opts.Notifier,
		Logger:      opts.Logger.WithComponent("Monitor"),
		Config:      opts.Config,
	}
}

var _ monitor.Client = (*MonitorImpl)(nil)

// RunCycle scans every configured profile once. A profile's failure is
// reported and the cycle moves on; one broken feed must not starve the rest.
func (m *MonitorImpl) RunCycle(ctx context.Context) error {
	profiles := m.Config.ProfileList()
	if len(profiles) == 0 {
		m.Logger.Warn("No profiles configured, nothing to scan")
		return nil
	}

	m.Logger.Info("Starting scan cycle", "profiles", len(profiles))
	start := time.Now()

	var harvested int
	for i, profile := range profiles {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(m.Config.Scanner.InterProfileDelay):
			}
		}

		posts, err := m.Scanner.ScanProfile(ctx, profile)
		if err != nil {
			m.Logger.Error("Profile scan failed", "profile", profile, "error", err)
			m.Notifier.NotifyError(ctx, fmt.Sprintf("Scan failed for %s: %v", profile, err))
			continue
		}

		for _, post := range posts {
			ok, err := m.harvestPost(ctx, post)
			if err != nil {
				m.Logger.Error("Failed to harvest post", "profile", profile, "url", post.URL, "error", err)
				continue
			}
			if ok {
				harvested++
			}
		}
	}

	m.Logger.Info("Scan cycle complete",
		"profiles", len(profiles),
		"harvested", harvested,
		"elapsed", time.Since(start).Round(time.Second).String())
	return nil
}

// harvestPost persists one scanned post: dedup against the archive, save to
// disk, record, announce. Returns false without error when the post was
// already harvested in an earlier cycle.
func (m *MonitorImpl) harvestPost(ctx context.Context, post domain.Post) (bool, error) {
	contentID := storage.ContentID(post)

	exists, err := m.ArchiveRepo.Exists(ctx, contentID)
	if err != nil {
		return false, apperrors.Wrap(err, "archive lookup failed")
	}
	if exists {
		m.Logger.Debug("Post already harvested", "content_id", contentID, "url", post.URL)
		return false, nil
	}

	saved, err := m.Storage.SavePost(ctx, post)
	if err != nil {
		return false, apperrors.Wrap(err, "storage save failed")
	}

	err = m.ArchiveRepo.Create(ctx, domain.PostArchive{
		ContentID:  contentID,
		Profile:    post.Profile,
		URL:        post.URL,
		Author:     post.Author,
		PostedAt:   post.Timestamp,
		Caption:    post.Caption,
		ImageCount: len(saved.ImagePaths),
	})
	if err != nil && !apperrors.Is(err, archive.ErrAlreadyExists) {
		return false, apperrors.Wrap(err, "archive create failed")
	}

	if err := m.Notifier.NotifyPost(ctx, post); err != nil {
		m.Logger.Warn("Failed to announce post", "url", post.URL, "error", err)
	}

	m.Logger.Info("Harvested post",
		"profile", post.Profile,
		"content_id", contentID,
		"images", len(saved.ImagePaths))
	return true, nil
}
