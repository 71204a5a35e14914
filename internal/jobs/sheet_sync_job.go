package jobs

import (
	"context"
	"log/slog"

	"orderbot/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

const (
	// DefaultSheetSyncSchedule runs the re-export at the top of every fifth minute.
	DefaultSheetSyncSchedule = "0 */5 * * * *"

	defaultSheetSyncBatch = 50
)

type SheetSyncHandler interface {
	Handle(ctx context.Context, command commands.SyncSheetCommand) (int, error)
}

// SheetSyncJob re-exports orders whose spreadsheet write failed earlier.
type SheetSyncJob struct {
	handler  SheetSyncHandler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewSheetSyncJob creates the job. An empty schedule falls back to DefaultSheetSyncSchedule.
// The schedule is a six-field cron expression with seconds.
func NewSheetSyncJob(handler SheetSyncHandler, schedule string, logger *slog.Logger) *SheetSyncJob {
	if schedule == "" {
		schedule = DefaultSheetSyncSchedule
	}
	return &SheetSyncJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "sheet_sync_job"),
	}
}

// Start registers the schedule and starts the scheduler.
func (j *SheetSyncJob) Start() error {
	cmd, err := commands.NewSyncSheetCommand(defaultSheetSyncBatch)
	if err != nil {
		return err
	}

	_, err = j.cron.AddFunc(j.schedule, func() {
		ctx := context.Background()

		synced, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Sheet sync job failed", "synced", synced, "error", err)
			return
		}
		if synced > 0 {
			j.logger.InfoContext(ctx, "Sheet sync job exported orders", "synced", synced)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Sheet sync job started", "schedule", j.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running export to finish.
func (j *SheetSyncJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Sheet sync job stopped")
}
