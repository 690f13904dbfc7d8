// Package selectors holds the page-structure profile the scanner is driven
// by: every ordered selector fallback chain and the pinned-detection strategy
// priority, in one immutable value. When the host site ships a new UI
// revision, a new entry is appended to the relevant chain here; scan code is
// never patched in place.
package selectors

// Pinned-detection strategy names, in the table consumed by the classifier.
const (
	StrategyIconMatching      = "icon_matching"
	StrategySpatialProximity  = "spatial_proximity"
	StrategyDOMTraversal      = "dom_traversal"
	StrategyFirstPostFallback = "first_post_fallback"
)

// Profile maps each scanner concern to its ordered selector list. Slices are
// tried first to last; the first expression producing a usable result wins.
type Profile struct {
	// Feed: candidate location.
	PostLinks      []string // most specific structural match first
	PostImageXPath string   // cover-image fallback when every PostLinks entry fails

	// Feed: pinned-entry structural path (icon_matching strategy).
	FeedContainer     string
	FeedRow           string
	FeedItem          string
	FeedIconContainer string

	// Pinned marker node.
	PinnedIcon           string   // canonical selector
	PinnedIconAlternates []string // known alternates for other UI revisions

	// Strategy priority for pinned classification. Evaluated in order with
	// short-circuit on first non-empty result; the first-post fallback must
	// be last and only fires when no marker exists anywhere.
	PinnedPriority []string

	// Detail view.
	DetailDialog   string
	TimestampXPath string
	Timestamps     []string
	AuthorXPath    string
	Authors        []string
	Captions       []string
	Images         []string
	NextControls   []string
	CloseControl   string
}

// Default returns the profile for the current Instagram web UI.
func Default() Profile {
	return Profile{
		PostLinks: []string{
			"main > div > div:nth-child(2) a",
			"section > main div > div > div > a",
			"section > main div a[href^='/p/']",
			"article a[href^='/p/']",
			"a[href^='/p/']",
			"div[role='presentation'] a[href^='/p/']",
		},
		PostImageXPath: "xpath=//section/main/div/div[2]/div/div/div/div/a/div[1]/div[1]/img",

		FeedContainer:     "div.xg7h5cd.x1n2onr6",
		FeedRow:           "div._ac7v.xat24cr.x1f01sob.xcghwft.xzboxd6",
		FeedItem:          "div.x1lliihq.x1n2onr6.xh8yej3.x4gyw5p.x11i5rnm.x1ntc13c.x9i3mqj.x2pgyrj",
		FeedIconContainer: "div.x9f619.xjbqb8w.x78zum5.x168nmei.x13lgxp2.x5pf9jr.xo71vjh.x1xmf6yo.x1emribx.x1e56ztr.x1i64zmx.x1n2onr6.x1plvlek.xryxfnj.x1c4vz4f.x2lah0s.xdt5ytf.xqjyukv.x1qjc9v5.x1oa3qoh.x1nhvcw1",

		PinnedIcon: "svg[aria-label='置顶帖图标']",
		PinnedIconAlternates: []string{
			"svg[aria-label='已置顶']",
			"svg[aria-label='Pinned']",
			"svg[class*='x1lliihq'][class*='x1n2onr6']",
			"div svg[role='img'][width='28'][height='28']",
		},

		PinnedPriority: []string{
			StrategyIconMatching,
			StrategySpatialProximity,
			StrategyDOMTraversal,
			StrategyFirstPostFallback,
		},

		DetailDialog:   "div[role='dialog']",
		TimestampXPath: "xpath=//div[@role='dialog']//article//ul//time",
		Timestamps: []string{
			"div[role='dialog'] time",
			"div[role='dialog'] article time",
			"article time",
		},
		AuthorXPath: "xpath=//div[@role='dialog']//article//ul//h1/a[1]",
		Authors: []string{
			"div[role='dialog'] article h1 a",
			"article ul h1 a",
			"div[role='dialog'] header a",
		},
		Captions: []string{
			"div[role='dialog'] ul li:first-child span",
			"div[role='dialog'] article ul li span",
			"article ul div span",
		},
		Images: []string{
			"div[role='dialog'] article img",
			"div[role='dialog'] div[role='button'] img",
			"div[role='dialog'] div[aria-label] img",
			"div[role='dialog'] img",
		},
		NextControls: []string{
			"button[aria-label='下一张']",
			"div[role='dialog'] button[aria-label*='下']",
			"div[role='dialog'] [aria-label*='Next']",
			"div[role='dialog'] svg[aria-label*='Next']",
		},
		CloseControl: "div[role='dialog'] button[aria-label='关闭']",
	}
}

// MarkerSelectors returns the canonical pinned-icon selector followed by its
// alternates, the full list strategies 2-4 probe with.
func (p Profile) MarkerSelectors() []string {
	out := make([]string, 0, 1+len(p.PinnedIconAlternates))
	out = append(out, p.PinnedIcon)
	out = append(out, p.PinnedIconAlternates...)
	return out
}
