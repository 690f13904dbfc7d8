package recency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func TestParseTimestampRelative(t *testing.T) {
	tests := []struct {
		text string
		want time.Time
	}{
		{"just now", testNow},
		{"刚刚", testNow},
		{"15 minutes ago", testNow.Add(-15 * time.Minute)},
		{"5分钟", testNow.Add(-5 * time.Minute)},
		{"3 hours", testNow.Add(-3 * time.Hour)},
		{"3小时前", testNow.Add(-3 * time.Hour)},
		{"yesterday", testNow.AddDate(0, 0, -1)},
		{"昨天", testNow.AddDate(0, 0, -1)},
		{"2 days", testNow.AddDate(0, 0, -2)},
		{"2天前", testNow.AddDate(0, 0, -2)},
		{"1 week ago", testNow.AddDate(0, 0, -7)},
		{"3周", testNow.AddDate(0, 0, -21)},
		{"2 months ago", testNow.AddDate(0, -2, 0)},
		{"1 year ago", testNow.AddDate(-1, 0, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseTimestamp(tc.text, testNow))
		})
	}
}

func TestParseTimestampToday(t *testing.T) {
	got := ParseTimestamp("today 9:30", testNow)
	assert.Equal(t, time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC), got)

	got = ParseTimestamp("今天", testNow)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestParseTimestampCJKDate(t *testing.T) {
	got := ParseTimestamp("2023年6月15日", testNow)
	assert.Equal(t, time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), got)

	got = ParseTimestamp("2023年6月15日 18:45", testNow)
	assert.Equal(t, time.Date(2023, 6, 15, 18, 45, 0, 0, time.UTC), got)
}

// A full CJK date contains 月 and 年; the bare month/year patterns must not
// fire inside it.
func TestParseTimestampDateGuards(t *testing.T) {
	got := ParseTimestamp("2023年6月15日", testNow)
	assert.Equal(t, 2023, got.Year())
	assert.Equal(t, time.June, got.Month())
}

func TestParseTimestampGenericDate(t *testing.T) {
	got := ParseTimestamp("2023-06-15", testNow)
	assert.Equal(t, time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestParseTimestampUnparseable(t *testing.T) {
	assert.Equal(t, testNow, ParseTimestamp("???", testNow))
	assert.Equal(t, testNow, ParseTimestamp("", testNow))
}

func TestParseExact(t *testing.T) {
	got, err := ParseExact("2024-01-10T09:00:00.000Z")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), got)

	_, err = ParseExact("not a timestamp")
	assert.Error(t, err)
}

func TestIsWithinWindowRecentTextAlwaysWins(t *testing.T) {
	vocab := DefaultVocabulary()

	// Even with a tiny threshold and an ancient instant, recent vocabulary
	// is authoritative.
	ancient := testNow.AddDate(-1, 0, 0)
	for _, text := range []string{"3 hours", "15 minutes", "just now", "刚刚", "今天", "today 9:30", "30秒"} {
		assert.True(t, vocab.IsWithinWindow(ancient, testNow, 1, text), "text %q", text)
	}
}

func TestIsWithinWindowOldTextAlwaysLoses(t *testing.T) {
	vocab := DefaultVocabulary()

	// A fresh instant cannot rescue old vocabulary.
	for _, text := range []string{"2 days", "3周", "1 month", "5 years", "2天前"} {
		assert.False(t, vocab.IsWithinWindow(testNow, testNow, 10000, text), "text %q", text)
	}
}

func TestIsWithinWindowYesterdayThreshold(t *testing.T) {
	vocab := DefaultVocabulary()
	instant := testNow.AddDate(0, 0, -1)

	assert.True(t, vocab.IsWithinWindow(instant, testNow, 48, "yesterday"))
	assert.True(t, vocab.IsWithinWindow(instant, testNow, 72, "昨天"))
	assert.False(t, vocab.IsWithinWindow(instant, testNow, 47, "yesterday"))
	assert.False(t, vocab.IsWithinWindow(instant, testNow, 24, "昨天"))
}

func TestIsWithinWindowNumericFallback(t *testing.T) {
	vocab := DefaultVocabulary()

	assert.True(t, vocab.IsWithinWindow(testNow.Add(-20*time.Hour), testNow, 24, ""))
	assert.False(t, vocab.IsWithinWindow(testNow.Add(-30*time.Hour), testNow, 24, ""))

	// Text matching no vocabulary falls through to the numeric comparison.
	assert.True(t, vocab.IsWithinWindow(testNow.Add(-2*time.Hour), testNow, 24, "???"))
}

func TestVocabularyHelpers(t *testing.T) {
	vocab := DefaultVocabulary()

	assert.True(t, vocab.HasRecent("3 HOURS"))
	assert.True(t, vocab.HasOld("2 days"))
	assert.True(t, vocab.HasOld("昨天")) // 昨天 contains 天
	assert.True(t, vocab.HasYesterday("昨天"))
	assert.False(t, vocab.HasYesterday("2 days"))
}
