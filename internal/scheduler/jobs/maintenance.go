package jobs

import (
	"context"
	"time"

	"github.com/wonny/chartinsight/internal/artifact"
	"github.com/wonny/chartinsight/pkg/logger"
)

// MaintenanceJob runs the nightly retention sweep over the artifact
// folders so superseded downloads do not accumulate forever.
type MaintenanceJob struct {
	schedule string
	sweeper  *artifact.Sweeper
	maxAge   time.Duration
	logger   *logger.Logger
}

// NewMaintenanceJob creates a maintenance job with the given retention
func NewMaintenanceJob(sweeper *artifact.Sweeper, retentionDays int, schedule string, log *logger.Logger) *MaintenanceJob {
	if retentionDays < 1 {
		retentionDays = 90
	}
	return &MaintenanceJob{
		schedule: schedule,
		sweeper:  sweeper,
		maxAge:   time.Duration(retentionDays) * 24 * time.Hour,
		logger:   log,
	}
}

// Name returns the job name
func (j *MaintenanceJob) Name() string { return "maintenance" }

// Schedule returns the cron schedule expression
func (j *MaintenanceJob) Schedule() string { return j.schedule }

// Run sweeps old artifacts
func (j *MaintenanceJob) Run(ctx context.Context) error {
	removed, err := j.sweeper.Sweep(j.maxAge)
	if err != nil {
		return err
	}

	j.logger.WithField("removed", removed).Info("Maintenance sweep completed")
	return nil
}
