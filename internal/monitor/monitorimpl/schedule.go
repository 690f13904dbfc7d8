package monitorimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// ScheduleScans registers the periodic scan-cycle job on the configured cron
// expression. The scheduler is shut down when ctx is cancelled.
func (m *MonitorImpl) ScheduleScans(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scan scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.CronJob(m.Config.Scanner.ScanInterval, false),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				m.Logger.Info("Context cancelled, skipping scan cycle")
				return
			}

			cycleCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
			defer cancel()

			if err := m.RunCycle(cycleCtx); err != nil {
				m.Logger.Error("Scan cycle failed", "error", err)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule scan cycle: %w", err)
	}

	scheduler.Start()
	m.Logger.Info("Scan cycle scheduled", "cron", m.Config.Scanner.ScanInterval)

	go func() {
		<-ctx.Done()
		m.Logger.Info("Stopping scan scheduler")
		if err := scheduler.Shutdown(); err != nil {
			m.Logger.Error("Failed to shut down scan scheduler", "error", err)
		}
	}()

	return nil
}

// ScheduleCleanup registers a daily 3:00 AM job that removes archive records
// past the retention window.
func (m *MonitorImpl) ScheduleCleanup(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create cleanup scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(gocron.NewAtTime(3, 0, 0)),
		),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				m.Logger.Info("Context cancelled, skipping archive cleanup")
				return
			}

			m.Logger.Info("Starting archive cleanup job")

			cleanupCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()

			rowsDeleted, err := m.ArchiveRepo.CleanupOldRecords(cleanupCtx, archiveRetention)
			if err != nil {
				m.Logger.Error("Failed to clean up old archive records", "error", err)
				return
			}

			m.Logger.Info("Archive cleanup completed", "rows_deleted", rowsDeleted)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule archive cleanup: %w", err)
	}

	scheduler.Start()

	go func() {
		<-ctx.Done()
		m.Logger.Info("Stopping cleanup scheduler")
		if err := scheduler.Shutdown(); err != nil {
			m.Logger.Error("Failed to shut down cleanup scheduler", "error", err)
		}
	}()

	return nil
}
