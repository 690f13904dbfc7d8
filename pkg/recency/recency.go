// Package recency classifies Instagram timestamp display text. The text is a
// human-readable relative time ("3 hours", "昨天") whose vocabulary is more
// trustworthy than clock math against a parsed instant, so window
// classification is text-first and only falls back to the numeric comparison
// when the text says nothing.
package recency

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Vocabulary maps recency classes to their indicator tokens. Tokens cover the
// primary (Chinese) and English UI languages. Immutable for a run's lifetime.
type Vocabulary struct {
	Recent         []string
	Old            []string
	Yesterday      []string
	YesterdayHours int
}

// DefaultVocabulary returns the indicator tables for the stock Instagram UI.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Recent: []string{
			"小时", "hour", "hr",
			"分钟", "minute", "min",
			"秒", "second", "sec",
			"刚刚", "just now",
			"今天", "today",
		},
		Old: []string{
			"天", "day", "days",
			"周", "week", "weeks", "wk",
			"月", "month", "months",
			"年", "year", "years", "yr",
		},
		Yesterday:      []string{"昨天", "yesterday"},
		YesterdayHours: 48,
	}
}

func containsAny(text string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}

// HasRecent reports whether the display text names a within-a-day unit.
func (v Vocabulary) HasRecent(text string) bool {
	return containsAny(strings.ToLower(text), v.Recent)
}

// HasOld reports whether the display text names a day-or-older unit.
// Note "昨天"/"yesterday" also match; callers wanting the 48h special case
// must check HasYesterday first.
func (v Vocabulary) HasOld(text string) bool {
	return containsAny(strings.ToLower(text), v.Old)
}

// HasYesterday reports whether the display text names yesterday.
func (v Vocabulary) HasYesterday(text string) bool {
	return containsAny(strings.ToLower(text), v.Yesterday)
}

var (
	justNowTokens = []string{"刚刚", "just now", "几秒", "seconds", "second", "sec"}

	minutesRe = regexp.MustCompile(`(\d+)\s*(分钟|minutes|minute|min)`)
	hoursRe   = regexp.MustCompile(`(\d+)\s*(小时|hours|hour|hr)`)
	daysRe    = regexp.MustCompile(`(\d+)\s*(天|days|day)`)
	weeksRe   = regexp.MustCompile(`(\d+)\s*(周|星期|weeks|week|wk)`)
	monthsRe  = regexp.MustCompile(`(\d+)\s*(月|months|month)`)
	yearsRe   = regexp.MustCompile(`(\d+)\s*(年|years|year|yr)`)

	clockRe = regexp.MustCompile(`(\d+):(\d+)`)
	// Full CJK date, e.g. 2023年6月15日. Also used to guard the bare month
	// and year patterns from matching inside it.
	cjkDateRe = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)

	genericLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"January 2, 2006",
		"Jan 2, 2006",
		"2006/01/02",
	}
)

// ParseTimestamp turns display text into an absolute instant relative to now.
// It never fails: text matching no rule resolves to now, the conservative
// choice for a feed scanner (an unparseable post is treated as fresh and the
// text-first window rule still gets the final say).
func ParseTimestamp(text string, now time.Time) time.Time {
	lower := strings.ToLower(text)

	if containsAny(lower, justNowTokens) {
		return now
	}

	if m := minutesRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.Add(-time.Duration(n) * time.Minute)
	}

	if m := hoursRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.Add(-time.Duration(n) * time.Hour)
	}

	if containsAny(lower, []string{"昨天", "yesterday"}) {
		return now.AddDate(0, 0, -1)
	}

	if containsAny(lower, []string{"今天", "today"}) {
		if m := clockRe.FindStringSubmatch(text); m != nil {
			hour, _ := strconv.Atoi(m[1])
			minute, _ := strconv.Atoi(m[2])
			return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		}
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}

	if m := daysRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.AddDate(0, 0, -n)
	}

	if m := weeksRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.AddDate(0, 0, -7*n)
	}

	if m := monthsRe.FindStringSubmatch(lower); m != nil && !cjkDateRe.MatchString(text) {
		n, _ := strconv.Atoi(m[1])
		return now.AddDate(0, -n, 0)
	}

	if m := yearsRe.FindStringSubmatch(lower); m != nil && !cjkDateRe.MatchString(text) {
		n, _ := strconv.Atoi(m[1])
		return now.AddDate(-n, 0, 0)
	}

	if m := cjkDateRe.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if tm := clockRe.FindStringSubmatch(text); tm != nil {
			hour, _ := strconv.Atoi(tm[1])
			minute, _ := strconv.Atoi(tm[2])
			return time.Date(year, time.Month(month), day, hour, minute, 0, 0, now.Location())
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	}

	if t, err := parseGeneric(strings.TrimSpace(text)); err == nil {
		return t
	}

	return now
}

func parseGeneric(text string) (time.Time, error) {
	var lastErr error
	for _, layout := range genericLayouts {
		t, err := time.Parse(layout, text)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ParseExact parses a machine-readable timestamp attribute (the time
// element's datetime value). Unlike ParseTimestamp it reports failure.
func ParseExact(attr string) (time.Time, error) {
	return parseGeneric(strings.TrimSpace(attr))
}

// IsWithinWindow decides whether a post published at instant falls inside the
// recency window of thresholdHours. When display text is supplied its
// vocabulary is authoritative: recent tokens are always in-window, yesterday
// is in-window only for thresholds of at least YesterdayHours, other old
// tokens are always out. The numeric comparison is reached only when the text
// is absent or matches none of the vocabularies.
func (v Vocabulary) IsWithinWindow(instant, now time.Time, thresholdHours int, displayText string) bool {
	if displayText != "" {
		if v.HasRecent(displayText) {
			return true
		}
		if v.HasYesterday(displayText) {
			return thresholdHours >= v.YesterdayHours
		}
		if v.HasOld(displayText) {
			return false
		}
	}

	return now.Sub(instant).Hours() <= float64(thresholdHours)
}
