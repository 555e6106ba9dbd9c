package job

import (
	"context"
	"time"

	"github.com/cinerate/cinerate/logger"
)

// ActivityCleaner deletes activity rows older than the given number of days.
type ActivityCleaner interface {
	CleanOldLogs(ctx context.Context, days int) (int64, error)
}

// ActivityCleanupJob prunes the activity log on a cron schedule.
type ActivityCleanupJob struct {
	activity      ActivityCleaner
	log           *logger.Logger
	retentionDays int
	timeout       time.Duration
}

func NewActivityCleanupJob(activity ActivityCleaner, log *logger.Logger, retentionDays int) *ActivityCleanupJob {
	return &ActivityCleanupJob{
		activity:      activity,
		log:           log,
		retentionDays: retentionDays,
		timeout:       time.Minute,
	}
}

// Run cleans up old activity rows.
func (j *ActivityCleanupJob) Run() {
	j.log.Debug("Activity cleanup job started")

	retentionDays := j.retentionDays
	if retentionDays <= 0 {
		retentionDays = 90 // Default 90 days
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	removed, err := j.activity.CleanOldLogs(ctx, retentionDays)
	if err != nil {
		j.log.Warning("Failed to clean old activity logs:", err)
		return
	}
	j.log.Debugf("Activity cleanup completed (retention: %d days, removed: %d)", retentionDays, removed)
}
