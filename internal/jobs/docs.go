// Package jobs provides scheduled background tasks for the orders service.
//
// Jobs are cron based (github.com/robfig/cron/v3, six-field expressions with
// seconds) and are started and stopped together through JobManager.
//
// # Available Jobs
//
// DeviceRestoreJob drains the device restoration ledger. Finishing an order
// writes a ledger row in the same transaction as the state change, already
// claimed by the finishing request for one lease. When the immediate restore
// fails the row goes back to PENDING and this job retries it. A row whose
// claim expired without an outcome is taken over as well. Every row is claimed
// with a conditional update before the device service is called, so replicas
// and the finishing request never restore the same order concurrently.
//
// # Usage
//
//	job := jobs.NewDeviceRestoreJob(retryHandler, jobs.DeviceRestoreJobConfig{
//		Schedule:  "0 * * * * *",
//		BatchSize: 50,
//		Lease:     30 * time.Second,
//	}, logger)
//
//	manager := jobs.NewJobManager(job)
//	if err := manager.StartAll(); err != nil {
//		logger.Fatal("failed to start jobs", zap.Error(err))
//	}
//	defer manager.StopAll()
//
// # Error Handling
//
// A failed pass is logged and retried on the next tick. Overlapping ticks are
// skipped while a pass is still running.
package jobs
