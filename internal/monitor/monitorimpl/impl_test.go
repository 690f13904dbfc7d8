package monitorimpl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgball2608/insta-feed-harvester/internal/domain"
	"github.com/orgball2608/insta-feed-harvester/internal/repositories/archive"
	"github.com/orgball2608/insta-feed-harvester/internal/storage"
	"github.com/orgball2608/insta-feed-harvester/pkg/config"
	"github.com/orgball2608/insta-feed-harvester/pkg/logger"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any)                 {}
func (nopLogger) Info(string, ...any)                  {}
func (nopLogger) Warn(string, ...any)                  {}
func (nopLogger) Error(string, ...any)                 {}
func (l nopLogger) WithComponent(string) logger.Logger { return l }

type fakeScanner struct {
	posts   map[string][]domain.Post
	errs    map[string]error
	scanned []string
}

func (f *fakeScanner) ScanProfile(_ context.Context, profile string) ([]domain.Post, error) {
	f.scanned = append(f.scanned, profile)
	if err := f.errs[profile]; err != nil {
		return nil, err
	}
	return f.posts[profile], nil
}

type memArchive struct {
	entries   map[string]domain.PostArchive
	existsErr error
}

func newMemArchive() *memArchive {
	return &memArchive{entries: make(map[string]domain.PostArchive)}
}

func (m *memArchive) Create(_ context.Context, entry domain.PostArchive) error {
	if _, ok := m.entries[entry.ContentID]; ok {
		return archive.ErrAlreadyExists
	}
	m.entries[entry.ContentID] = entry
	return nil
}

func (m *memArchive) Exists(_ context.Context, contentID string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.entries[contentID]
	return ok, nil
}

func (m *memArchive) GetLatestByProfile(_ context.Context, profile string, count int) ([]*domain.PostArchive, error) {
	var out []*domain.PostArchive
	for _, e := range m.entries {
		if e.Profile == profile && len(out) < count {
			entry := e
			out = append(out, &entry)
		}
	}
	return out, nil
}

func (m *memArchive) CleanupOldRecords(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

type fakeStorage struct {
	saved []string // content IDs
	err   error
}

func (f *fakeStorage) SavePost(_ context.Context, post domain.Post) (*storage.SavedPost, error) {
	if f.err != nil {
		return nil, f.err
	}
	id := storage.ContentID(post)
	f.saved = append(f.saved, id)
	return &storage.SavedPost{ContentID: id, ImagePaths: make([]string, len(post.ImageURLs))}, nil
}

type fakeNotifier struct {
	posts  []domain.Post
	errors []string
}

func (f *fakeNotifier) NotifyPost(_ context.Context, post domain.Post) error {
	f.posts = append(f.posts, post)
	return nil
}

func (f *fakeNotifier) NotifyError(_ context.Context, msg string) {
	f.errors = append(f.errors, msg)
}

func post(profile, caption string, ts time.Time) domain.Post {
	return domain.Post{
		Profile:   profile,
		Author:    profile,
		URL:       "https://www.instagram.com/p/" + caption + "/",
		Timestamp: ts,
		Caption:   caption,
		ImageURLs: []string{"https://cdn.example.com/" + caption + ".jpg"},
	}
}

func newTestMonitor(sc *fakeScanner, ar archive.Repository, st *fakeStorage, nt *fakeNotifier, profiles string) *MonitorImpl {
	cfg := &config.Config{}
	cfg.Scanner.Profiles = profiles
	cfg.Scanner.InterProfileDelay = 0
	return &MonitorImpl{
		Scanner:     sc,
		ArchiveRepo: ar,
		Storage:     st,
		Notifier:    nt,
		Logger:      nopLogger{},
		Config:      cfg,
	}
}

func TestRunCycle_HarvestsNewPostsOnce(t *testing.T) {
	ts := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	sc := &fakeScanner{posts: map[string][]domain.Post{
		"alice": {post("alice", "p1", ts), post("alice", "p2", ts.Add(time.Hour))},
	}}
	ar := newMemArchive()
	st := &fakeStorage{}
	nt := &fakeNotifier{}
	m := newTestMonitor(sc, ar, st, nt, "alice")

	require.NoError(t, m.RunCycle(context.Background()))

	assert.Len(t, st.saved, 2)
	assert.Len(t, ar.entries, 2)
	assert.Len(t, nt.posts, 2)

	// A second cycle finds everything already archived.
	require.NoError(t, m.RunCycle(context.Background()))
	assert.Len(t, st.saved, 2)
	assert.Len(t, nt.posts, 2)
}

func TestRunCycle_ContinuesPastFailedProfile(t *testing.T) {
	ts := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	sc := &fakeScanner{
		posts: map[string][]domain.Post{"carol": {post("carol", "p3", ts)}},
		errs:  map[string]error{"bob": errors.New("navigation timeout")},
	}
	ar := newMemArchive()
	st := &fakeStorage{}
	nt := &fakeNotifier{}
	m := newTestMonitor(sc, ar, st, nt, "bob, carol")

	require.NoError(t, m.RunCycle(context.Background()))

	assert.Equal(t, []string{"bob", "carol"}, sc.scanned)
	require.Len(t, nt.errors, 1)
	assert.Contains(t, nt.errors[0], "bob")
	assert.Len(t, st.saved, 1)
}

func TestRunCycle_StorageFailureSkipsArchiveAndNotify(t *testing.T) {
	ts := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	sc := &fakeScanner{posts: map[string][]domain.Post{
		"alice": {post("alice", "p1", ts)},
	}}
	ar := newMemArchive()
	st := &fakeStorage{err: errors.New("disk full")}
	nt := &fakeNotifier{}
	m := newTestMonitor(sc, ar, st, nt, "alice")

	require.NoError(t, m.RunCycle(context.Background()))

	assert.Empty(t, ar.entries)
	assert.Empty(t, nt.posts)
}

func TestRunCycle_ArchiveLookupFailureSkipsPost(t *testing.T) {
	ts := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	sc := &fakeScanner{posts: map[string][]domain.Post{
		"alice": {post("alice", "p1", ts)},
	}}
	ar := newMemArchive()
	ar.existsErr = errors.New("connection refused")
	st := &fakeStorage{}
	nt := &fakeNotifier{}
	m := newTestMonitor(sc, ar, st, nt, "alice")

	require.NoError(t, m.RunCycle(context.Background()))

	assert.Empty(t, st.saved)
	assert.Empty(t, nt.posts)
}

func TestRunCycle_NoProfilesIsANoop(t *testing.T) {
	sc := &fakeScanner{}
	m := newTestMonitor(sc, newMemArchive(), &fakeStorage{}, &fakeNotifier{}, "")

	require.NoError(t, m.RunCycle(context.Background()))
	assert.Empty(t, sc.scanned)
}
