package fileimpl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgball2608/insta-feed-harvester/internal/domain"
	"github.com/orgball2608/insta-feed-harvester/pkg/config"
	"github.com/orgball2608/insta-feed-harvester/pkg/logger"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any)                 {}
func (nopLogger) Info(string, ...any)                  {}
func (nopLogger) Warn(string, ...any)                  {}
func (nopLogger) Error(string, ...any)                 {}
func (l nopLogger) WithComponent(string) logger.Logger { return l }

func newTestStorage(t *testing.T) *FileImpl {
	t.Helper()
	cfg := &config.Config{}
	cfg.Storage.DataDir = t.TempDir()
	cfg.Storage.CaptionExt = ".txt"
	return &FileImpl{
		logger:     nopLogger{},
		config:     cfg,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestSavePost_WritesCaptionAndImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	f := newTestStorage(t)
	post := domain.Post{
		Profile:   "someuser",
		Author:    "Some Author",
		URL:       "https://www.instagram.com/p/abc/",
		Timestamp: time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC),
		Caption:   "hello world",
		ImageURLs: []string{srv.URL + "/one.jpg", srv.URL + "/two.png"},
	}

	saved, err := f.SavePost(context.Background(), post)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(f.config.Storage.DataDir, "someuser", "2024-01-10"), saved.Dir)

	caption, err := os.ReadFile(saved.CaptionPath)
	require.NoError(t, err)
	assert.Contains(t, string(caption), "Author: Some Author")
	assert.Contains(t, string(caption), "Published: 2024-01-10T08:30:00Z")
	assert.Contains(t, string(caption), "URL: https://www.instagram.com/p/abc/")
	assert.Contains(t, string(caption), "hello world")

	require.Len(t, saved.ImagePaths, 2)
	assert.Contains(t, saved.ImagePaths[0], "Some_Author_"+saved.ContentID+"_1_20240110083000.jpg")
	assert.Contains(t, saved.ImagePaths[1], ".png")
	data, err := os.ReadFile(saved.ImagePaths[0])
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestSavePost_SkipsFailedImageDownloads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := newTestStorage(t)
	post := domain.Post{
		Profile:   "someuser",
		Author:    "someuser",
		Timestamp: time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC),
		ImageURLs: []string{srv.URL + "/bad.jpg", srv.URL + "/good.jpg"},
	}

	saved, err := f.SavePost(context.Background(), post)
	require.NoError(t, err)
	require.Len(t, saved.ImagePaths, 1)
	assert.Contains(t, saved.ImagePaths[0], "_2_") // second URL survived
	data, err := os.ReadFile(saved.ImagePaths[0])
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "some_user", sanitizeName("some user"))
	assert.Equal(t, "a.b-c_d", sanitizeName("a.b-c_d"))
	assert.Equal(t, "___etc_passwd", sanitizeName("../etc/passwd"))
	assert.Equal(t, "unknown", sanitizeName(""))
}

func TestImageExt(t *testing.T) {
	assert.Equal(t, ".png", imageExt("https://cdn.example.com/a/b.png?x=1"))
	assert.Equal(t, ".jpg", imageExt("https://cdn.example.com/a/b"))
	assert.Equal(t, ".jpg", imageExt("https://cdn.example.com/a/b.bin"))
}
