package scannerimpl

import (
	"fmt"
	"strings"
	"time"

	"github.com/orgball2608/insta-feed-harvester/internal/browser"
	"github.com/orgball2608/insta-feed-harvester/internal/scanner"
	"github.com/orgball2608/insta-feed-harvester/internal/selectors"
	"github.com/orgball2608/insta-feed-harvester/pkg/config"
	"github.com/orgball2608/insta-feed-harvester/pkg/logger"
	"github.com/orgball2608/insta-feed-harvester/pkg/recency"
	"go.uber.org/fx"
)

const maxCarouselImages = 10

type Opts struct {
	fx.In

	Session   browser.Session
	Logger    logger.Logger
	Config    *config.Config
	Selectors selectors.Profile
	Vocab     recency.Vocabulary
}

type ScannerImpl struct {
	session        browser.Session
	logger         logger.Logger
	config         *config.Config
	selectors      selectors.Profile
	vocab          recency.Vocabulary
	now            func() time.Time
	carouselSettle time.Duration
}

func New(opts Opts) *ScannerImpl {
	return &ScannerImpl{
		session:        opts.Session,
		logger:         opts.Logger.WithComponent("Scanner"),
		config:         opts.Config,
		selectors:      opts.Selectors,
		vocab:          opts.Vocab,
		now:            time.Now,
		carouselSettle: defaultCarouselSettle,
	}
}

var _ scanner.Client = (*ScannerImpl)(nil)

func profileURL(profile string) string {
	return fmt.Sprintf("https://www.instagram.com/%s/", profile)
}

// candidate pairs a clickable feed-entry handle with its resolved link
// target. Handles are invalidated by any re-render of the feed.
type candidate struct {
	handle browser.Handle
	href   string
}

// pinnedSet holds the link identifiers classified as pinned for the current
// feed render. Immutable once computed.
type pinnedSet []string

// Contains matches href against the set, tolerating full-URL vs relative-path
// vs bare-ID representations of the same post: either string being a
// substring or suffix of the other counts, as does an equal /p/ or /reel/ ID
// segment.
func (ps pinnedSet) Contains(href string) bool {
	if href == "" {
		return false
	}
	for _, pinned := range ps {
		if strings.HasSuffix(pinned, href) || strings.Contains(pinned, href) || strings.Contains(href, pinned) {
			return true
		}
		for _, marker := range []string{"/p/", "/reel/"} {
			hrefID := linkSegmentID(href, marker)
			pinnedID := linkSegmentID(pinned, marker)
			if hrefID != "" && hrefID == pinnedID {
				return true
			}
		}
	}
	return false
}

// linkSegmentID extracts the opaque post ID following marker ("/p/" or
// "/reel/"), or "" when the marker is absent.
func linkSegmentID(link, marker string) string {
	i := strings.Index(link, marker)
	if i < 0 {
		return ""
	}
	rest := link[i+len(marker):]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

func isPostHref(href string) bool {
	return strings.Contains(href, "/p/") || strings.Contains(href, "/reel/")
}

// absoluteURL resolves a feed href, which may be page-relative, against the
// site origin.
func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return "https://www.instagram.com" + href
}
