package fileimpl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/orgball2608/insta-feed-harvester/internal/domain"
	"github.com/orgball2608/insta-feed-harvester/internal/storage"
	"github.com/orgball2608/insta-feed-harvester/pkg/config"
	apperrors "github.com/orgball2608/insta-feed-harvester/pkg/errors"
	"github.com/orgball2608/insta-feed-harvester/pkg/logger"
	"github.com/orgball2608/insta-feed-harvester/pkg/retry"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Logger logger.Logger
	Config *config.Config
}

type FileImpl struct {
	logger     logger.Logger
	config     *config.Config
	httpClient *http.Client
}

func New(opts Opts) *FileImpl {
	return &FileImpl{
		logger:     opts.Logger.WithComponent("FileStorage"),
		config:     opts.Config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

var _ storage.Client = (*FileImpl)(nil)

// SavePost writes the caption file and downloads the images into
// <DataDir>/<profile>/<YYYY-MM-DD>/. A failed image download is logged and
// skipped; only a caption write failure aborts the save.
func (f *FileImpl) SavePost(ctx context.Context, post domain.Post) (*storage.SavedPost, error) {
	contentID := storage.ContentID(post)

	dir := filepath.Join(f.config.Storage.DataDir, sanitizeName(post.Profile), post.Timestamp.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.Wrap(err, "failed to create post directory")
	}

	captionPath, err := f.writeCaption(dir, contentID, post)
	if err != nil {
		return nil, err
	}

	saved := &storage.SavedPost{
		ContentID:   contentID,
		Dir:         dir,
		CaptionPath: captionPath,
	}

	for i, imageURL := range post.ImageURLs {
		name := fmt.Sprintf("%s_%s_%d_%s%s",
			sanitizeName(post.Author), contentID, i+1,
			post.Timestamp.Format("20060102150405"), imageExt(imageURL))
		imagePath := filepath.Join(dir, name)

		if err := f.downloadImage(ctx, imageURL, imagePath); err != nil {
			f.logger.Warn("Failed to download image", "url", imageURL, "error", err)
			continue
		}
		saved.ImagePaths = append(saved.ImagePaths, imagePath)
	}

	f.logger.Info("Saved post",
		"profile", post.Profile,
		"content_id", contentID,
		"dir", dir,
		"images", len(saved.ImagePaths))
	return saved, nil
}

func (f *FileImpl) writeCaption(dir, contentID string, post domain.Post) (string, error) {
	name := fmt.Sprintf("%s_%s%s", sanitizeName(post.Author), contentID, f.config.Storage.CaptionExt)
	captionPath := filepath.Join(dir, name)

	var sb strings.Builder
	sb.WriteString("Author: " + post.Author + "\n")
	sb.WriteString("Published: " + post.Timestamp.Format(time.RFC3339) + "\n")
	if post.URL != "" {
		sb.WriteString("URL: " + post.URL + "\n")
	}
	sb.WriteString("\n")
	sb.WriteString(post.Caption)
	sb.WriteString("\n")

	if err := os.WriteFile(captionPath, []byte(sb.String()), 0o644); err != nil {
		return "", apperrors.Wrap(err, "failed to write caption file")
	}
	return captionPath, nil
}

func (f *FileImpl) downloadImage(ctx context.Context, imageURL, dest string) error {
	return retry.Do(ctx, f.logger, "download image", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
		if err != nil {
			return err
		}

		resp, err := f.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		out, err := os.Create(dest)
		if err != nil {
			return err
		}
		defer out.Close()

		if _, err := io.Copy(out, resp.Body); err != nil {
			return err
		}
		return nil
	}, retry.DefaultConfig())
}

// sanitizeName keeps letters, digits, '-', '_' and '.', replacing everything
// else so the value is safe as a path component.
func sanitizeName(s string) string {
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}

var knownImageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

// imageExt extracts the file extension from an image URL, defaulting to .jpg
// for CDN URLs that hide it behind query parameters.
func imageExt(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return ".jpg"
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if knownImageExts[ext] {
		return ext
	}
	return ".jpg"
}
