package service

import (
	"context"
	"time"

	"github.com/cinerate/cinerate/database/model"
	"github.com/cinerate/cinerate/logger"
	"github.com/cinerate/cinerate/util/common"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
)

// ActivityEntry describes one action performed by a user.
type ActivityEntry struct {
	UserId      int
	Action      string // LOGIN, LOGOUT, CREATE, UPDATE, DELETE, READ, LIKE
	Resource    string
	Description string
	IP          string
	UserAgent   string
	Details     map[string]any
}

type ActivityFilter struct {
	UserId int
	Action string
	Since  *time.Time
	Until  *time.Time
	Limit  int
	Offset int
}

// ActivityService stores the per-user activity log.
type ActivityService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityService(db *gorm.DB, log *logger.Logger) *ActivityService {
	return &ActivityService{db: db, log: log}
}

// LogAction persists entry. Details that fail to encode are dropped.
func (s *ActivityService) LogAction(ctx context.Context, entry ActivityEntry) error {
	details := ""
	if entry.Details != nil {
		data, err := json.Marshal(entry.Details)
		if err != nil {
			s.log.Warning("failed to marshal activity details:", err)
		} else {
			details = string(data)
		}
	}

	row := &model.UserActivityLog{
		UserId:      entry.UserId,
		ActionType:  entry.Action,
		Resource:    entry.Resource,
		Description: entry.Description,
		IP:          entry.IP,
		UserAgent:   entry.UserAgent,
		Details:     details,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		s.log.Warningf("failed to record activity: user=%d, action=%s, resource=%s, error=%v", entry.UserId, entry.Action, entry.Resource, err)
		return err
	}
	return nil
}

// List returns matching entries newest first along with the total number of
// matches.
func (s *ActivityService) List(ctx context.Context, f ActivityFilter) ([]model.UserActivityLog, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.UserActivityLog{})
	if f.UserId > 0 {
		query = query.Where("user_id = ?", f.UserId)
	}
	if f.Action != "" {
		query = query.Where("action_type = ?", f.Action)
	}
	if f.Since != nil {
		query = query.Where("created_at >= ?", f.Since)
	}
	if f.Until != nil {
		query = query.Where("created_at <= ?", f.Until)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, common.Wrap(err, "count activity")
	}

	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 50
	}
	logs := []model.UserActivityLog{}
	err := query.Order("created_at DESC, id DESC").
		Limit(f.Limit).
		Offset(max(f.Offset, 0)).
		Find(&logs).
		Error
	if err != nil {
		return nil, 0, common.Wrap(err, "list activity")
	}
	return logs, total, nil
}

// CleanOldLogs removes entries older than days and reports how many were
// deleted.
func (s *ActivityService) CleanOldLogs(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, common.NewErrorf("days must be greater than 0, got %d", days)
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&model.UserActivityLog{})
	if result.Error != nil {
		return 0, result.Error
	}

	s.log.Infof("Cleaned %d old activity logs (older than %d days)", result.RowsAffected, days)
	return result.RowsAffected, nil
}
