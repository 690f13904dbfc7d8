package monitor

import "context"

type Client interface {
	// RunCycle scans every configured profile once and harvests the new
	// in-window posts.
	RunCycle(ctx context.Context) error

	// ScheduleScans registers the periodic scan-cycle job.
	ScheduleScans(ctx context.Context) error

	// ScheduleCleanup registers the daily archive-retention job.
	ScheduleCleanup(ctx context.Context) error
}
