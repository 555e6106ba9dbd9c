package job

import (
	"context"
	"errors"
	"testing"

	"github.com/cinerate/cinerate/logger"

	"github.com/stretchr/testify/assert"
)

type fakeCleaner struct {
	days []int
	err  error
}

func (f *fakeCleaner) CleanOldLogs(ctx context.Context, days int) (int64, error) {
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("no deadline")
	}
	f.days = append(f.days, days)
	return 3, f.err
}

func TestActivityCleanupJobRetention(t *testing.T) {
	tests := []struct {
		name      string
		retention int
		expected  int
	}{
		{name: "configured", retention: 30, expected: 30},
		{name: "zero falls back to default", retention: 0, expected: 90},
		{name: "negative falls back to default", retention: -5, expected: 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaner := &fakeCleaner{}
			NewActivityCleanupJob(cleaner, logger.Discard(), tt.retention).Run()
			assert.Equal(t, []int{tt.expected}, cleaner.days)
		})
	}
}

func TestActivityCleanupJobLogsFailure(t *testing.T) {
	log := logger.Discard()
	cleaner := &fakeCleaner{err: errors.New("database is locked")}

	NewActivityCleanupJob(cleaner, log, 7).Run()

	assert.Equal(t, []int{7}, cleaner.days)
	logs := log.GetLogs(10, "warning")
	if assert.NotEmpty(t, logs) {
		assert.Contains(t, logs[0], "Failed to clean old activity logs")
	}
}
