package jobs

import (
	"context"
	"fmt"
	"time"

	"orders/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	DefaultRestoreSchedule = "0 * * * * *"
	DefaultRestoreBatch    = 50
	DefaultRestoreLease    = commands.DefaultRestorationLease

	restoreRunTimeout = 50 * time.Second
)

// RestorationRetrier is the command handler the job drives.
type RestorationRetrier interface {
	Handle(ctx context.Context, cmd commands.RetryDeviceRestorationsCommand) (commands.RetryDeviceRestorationsResult, error)
}

// DeviceRestoreJobConfig tunes the retry pass. Zero values fall back to the
// package defaults.
type DeviceRestoreJobConfig struct {
	// Schedule is a cron expression with a seconds field.
	Schedule  string
	BatchSize int

	// Lease is how long a claimed row stays hidden from other restorers. It
	// must outlast a device service call.
	Lease time.Duration
}

// DeviceRestoreJob retries device restorations owed by finished orders.
// A run is skipped while the previous one is still in progress.
type DeviceRestoreJob struct {
	handler RestorationRetrier
	cfg     DeviceRestoreJobConfig
	cron    *cron.Cron
	logger  *zap.Logger
}

// NewDeviceRestoreJob builds the job without scheduling it.
//
// Parameters:
//   - handler: runs one retry pass
//   - cfg: schedule, batch size and claim lease
//   - logger: may be nil
//
// Example:
//
//	job := NewDeviceRestoreJob(handler, DeviceRestoreJobConfig{Lease: time.Minute}, logger)
//	if err := job.Start(); err != nil {
//	    return err
//	}
//	defer job.Stop()
func NewDeviceRestoreJob(handler RestorationRetrier, cfg DeviceRestoreJobConfig, logger *zap.Logger) *DeviceRestoreJob {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultRestoreSchedule
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultRestoreBatch
	}
	if cfg.Lease <= 0 {
		cfg.Lease = DefaultRestoreLease
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DeviceRestoreJob{
		handler: handler,
		cfg:     cfg,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger: logger.With(zap.String("component", "device_restore_job")),
	}
}

// Start schedules the pass and starts the cron loop. It fails when the
// schedule does not parse.
func (j *DeviceRestoreJob) Start() error {
	if _, err := j.cron.AddFunc(j.cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), restoreRunTimeout)
		defer cancel()
		j.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", j.cfg.Schedule, err)
	}

	j.cron.Start()
	j.logger.Info("device restore job started", zap.String("schedule", j.cfg.Schedule))
	return nil
}

// Stop waits for a running pass to finish.
func (j *DeviceRestoreJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("device restore job stopped")
}

// RunOnce performs one retry pass.
func (j *DeviceRestoreJob) RunOnce(ctx context.Context) {
	cmd, err := commands.NewRetryDeviceRestorationsCommand(j.cfg.BatchSize, j.cfg.Lease)
	if err != nil {
		j.logger.Error("invalid retry command", zap.Error(err))
		return
	}

	result, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.Error("device restore pass failed", zap.Error(err))
		return
	}
	if result.Completed+result.Failed+result.Skipped > 0 {
		j.logger.Info("device restore pass finished",
			zap.Int("completed", result.Completed),
			zap.Int("failed", result.Failed),
			zap.Int("skipped", result.Skipped))
	}
}
