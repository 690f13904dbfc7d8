package scannerimpl

import (
	"context"
	"strings"
	"time"

	"github.com/orgball2608/insta-feed-harvester/internal/browser"
	"github.com/orgball2608/insta-feed-harvester/pkg/logger"
)

// nopLogger satisfies logger.Logger for tests.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any)                 {}
func (nopLogger) Info(string, ...any)                  {}
func (nopLogger) Warn(string, ...any)                  {}
func (nopLogger) Error(string, ...any)                 {}
func (l nopLogger) WithComponent(string) logger.Logger { return l }

type fakeImage struct {
	srcset string
	src    string
}

// fakePost models one feed entry and the detail view behind it.
type fakePost struct {
	href      string
	display   string // timestamp display text
	datetime  string // machine-readable attribute, "" when absent
	author    string
	caption   string
	images    []fakeImage
	carousel  bool // next control present
	openFails bool // detail view never becomes visible
}

// Handle ID layout used by the fake.
const (
	candidateBase = 100
	markerBase    = 2000
	hTimestamp    = 1000
	hAuthor       = 1001
	hCaption      = 1002
	hImage        = 1003
	hNext         = 1004
	hClose        = 1005
)

// fakeSession is a scripted browser session backed by fakePost fixtures. It
// recognizes the scanner's JS function declarations by distinctive fragments,
// the same seam style as stubbing a crawler's fetch function.
type fakeSession struct {
	posts       []fakePost
	locatorExpr string // the PostLinks expression that yields candidates

	// markerAt maps marker handles to the candidate index they decorate.
	markerAt []int

	navigated   []string
	opened      []string // hrefs whose detail view was opened
	screenshots []string

	openIdx  int // -1 when no detail view open
	imageIdx int
}

func newFakeSession(posts []fakePost) *fakeSession {
	return &fakeSession{
		posts:       posts,
		locatorExpr: "a[href^='/p/']",
		openIdx:     -1,
	}
}

var _ browser.Session = (*fakeSession)(nil)

func (f *fakeSession) current() *fakePost {
	if f.openIdx < 0 {
		return nil
	}
	return &f.posts[f.openIdx]
}

func (f *fakeSession) Navigate(_ context.Context, url string) error {
	f.navigated = append(f.navigated, url)
	return nil
}

func (f *fakeSession) ScrollDown(context.Context, int) error { return nil }

func (f *fakeSession) QueryAll(_ context.Context, expr string) ([]browser.Handle, error) {
	if expr == f.locatorExpr {
		handles := make([]browser.Handle, len(f.posts))
		for i := range f.posts {
			handles[i] = browser.Handle{ID: candidateBase + int64(i)}
		}
		return handles, nil
	}
	if strings.Contains(expr, "svg[aria-label='置顶帖图标']") {
		handles := make([]browser.Handle, len(f.markerAt))
		for i := range f.markerAt {
			handles[i] = browser.Handle{ID: markerBase + int64(i)}
		}
		return handles, nil
	}
	return nil, nil
}

func (f *fakeSession) Query(_ context.Context, expr string) (*browser.Handle, error) {
	post := f.current()
	if post == nil || post.openFails {
		return nil, nil
	}

	h := func(id int64) (*browser.Handle, error) { return &browser.Handle{ID: id}, nil }
	switch {
	case strings.Contains(expr, "//time") || strings.HasSuffix(expr, " time"):
		return h(hTimestamp)
	case strings.Contains(expr, "h1/a[1]") || strings.Contains(expr, "h1 a") || strings.Contains(expr, "header a"):
		if post.author == "" {
			return nil, nil
		}
		return h(hAuthor)
	case strings.Contains(expr, "span"):
		if post.caption == "" {
			return nil, nil
		}
		return h(hCaption)
	case strings.Contains(expr, "下一张") || strings.Contains(expr, "Next") || strings.Contains(expr, "aria-label*='下'"):
		if !post.carousel {
			return nil, nil
		}
		return h(hNext)
	case strings.Contains(expr, "关闭"):
		return h(hClose)
	case strings.HasSuffix(expr, "img"):
		if len(post.images) == 0 {
			return nil, nil
		}
		return h(hImage)
	}
	return nil, nil
}

func (f *fakeSession) Evaluate(context.Context, string, any) error { return nil }

func (f *fakeSession) EvaluateOn(_ context.Context, h browser.Handle, fnDecl string, out any) error {
	switch {
	case strings.Contains(fnDecl, "querySelector('img')"):
		*(out.(*bool)) = true
	case strings.Contains(fnDecl, "getBoundingClientRect"):
		c := out.(*center)
		if h.ID >= markerBase {
			idx := f.markerAt[h.ID-markerBase]
			*c = center{X: 50, Y: float64(100*idx) + 5}
		} else {
			*c = center{X: 50, Y: float64(100 * (h.ID - candidateBase))}
		}
	case strings.Contains(fnDecl, "for (let i"):
		// Bounded ancestor walk from a marker node.
		if h.ID >= markerBase {
			idx := f.markerAt[h.ID-markerBase]
			href := f.posts[idx].href
			*(out.(**string)) = &href
		}
	case strings.Contains(fnDecl, "const icon"):
		// Structural icon path is absent in the fake feed.
		*(out.(**string)) = nil
	}
	return nil
}

func (f *fakeSession) Click(_ context.Context, h browser.Handle) error {
	switch {
	case h.ID >= candidateBase && h.ID < candidateBase+int64(len(f.posts)):
		f.openIdx = int(h.ID - candidateBase)
		f.imageIdx = 0
		f.opened = append(f.opened, f.posts[f.openIdx].href)
	case h.ID == hNext:
		f.imageIdx++
	case h.ID == hClose:
		f.openIdx = -1
	}
	return nil
}

func (f *fakeSession) Attribute(_ context.Context, h browser.Handle, name string) (string, error) {
	if h.ID >= candidateBase && h.ID < candidateBase+int64(len(f.posts)) && name == "href" {
		return f.posts[h.ID-candidateBase].href, nil
	}
	post := f.current()
	if post == nil {
		return "", nil
	}
	switch {
	case h.ID == hTimestamp && name == "datetime":
		return post.datetime, nil
	case h.ID == hImage:
		img := post.images[f.imageIdx%len(post.images)]
		if name == "srcset" {
			return img.srcset, nil
		}
		return img.src, nil
	}
	return "", nil
}

func (f *fakeSession) InnerText(_ context.Context, h browser.Handle) (string, error) {
	post := f.current()
	if post == nil {
		return "", nil
	}
	switch h.ID {
	case hTimestamp:
		return post.display, nil
	case hAuthor:
		return post.author, nil
	case hCaption:
		return post.caption, nil
	}
	return "", nil
}

func (f *fakeSession) WaitVisible(_ context.Context, expr string, _ time.Duration) error {
	if strings.Contains(expr, "dialog") {
		if post := f.current(); post != nil && !post.openFails {
			return nil
		}
		return browser.ErrTimeout
	}
	return nil
}

func (f *fakeSession) KeyPress(_ context.Context, key string) error {
	if key == "Escape" {
		f.openIdx = -1
	}
	return nil
}

func (f *fakeSession) Screenshot(_ context.Context, path string) error {
	f.screenshots = append(f.screenshots, path)
	return nil
}

func (f *fakeSession) SettleDelay() {}
