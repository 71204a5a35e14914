// Package jobs provides scheduled background tasks.
//
// Jobs are cron-based (github.com/robfig/cron/v3, six-field expressions with
// seconds) and are started and stopped through JobManager.
//
// # Available Jobs
//
// SheetSyncJob re-exports orders flagged sheet_sync_pending, which happens when
// the spreadsheet was unreachable at screenshot time or at verification time.
// It runs every five minutes unless SHEET_SYNC_SCHEDULE says otherwise.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(jobs.NewSheetSyncJob(syncHandler, cfg.SheetSyncSchedule, logger))
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed run is logged and retried at the next tick. Runs never overlap.
// Failed job starts stop any already running jobs.
package jobs
