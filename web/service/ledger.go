package service

import (
	"context"
	"errors"
	"time"

	"github.com/cinerate/cinerate/database"
	"github.com/cinerate/cinerate/database/model"
	"github.com/cinerate/cinerate/logger"
	"github.com/cinerate/cinerate/util/common"

	"github.com/op/go-logging"
	"gorm.io/gorm"
)

// Both ledger failures are reported to clients as 400.
var (
	ErrSessionNotFound = &common.Error{Kind: common.KindBadRequest, Msg: "Login record not found"}
	ErrSessionClosed   = common.NewConflict("Session already logged out")
)

// SessionLedger records issued tokens as login records.
//
// Open and Close for the same user are not serialized against each other:
// if they race, whichever transaction commits last decides the user's
// status.
type SessionLedger struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewSessionLedger(db *gorm.DB, log *logger.Logger) *SessionLedger {
	return &SessionLedger{db: db, log: log, now: time.Now}
}

// Open stores token as an active login record expiring ttl from now and marks
// the owning user active.
func (l *SessionLedger) Open(ctx context.Context, userID int, token string, ttl time.Duration) (*model.LoginRecord, error) {
	now := l.now()
	record := &model.LoginRecord{
		UserId:         userID,
		Token:          token,
		Status:         model.StatusActive,
		CreatedAt:      now,
		ExpirationDate: now.Add(ttl),
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).
			Where("id = ?", userID).
			Update("status", model.StatusActive).
			Error
	})
	if err != nil {
		return nil, common.Wrap(err, "open session")
	}
	return record, nil
}

// Close suspends every login record of the user that owns token, and the
// user itself, in one transaction.
func (l *SessionLedger) Close(ctx context.Context, token string) (*model.LoginRecord, error) {
	record := &model.LoginRecord{}
	var closed int64
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("token = ?", token).First(record).Error; err != nil {
			if database.IsNotFound(err) {
				return ErrSessionNotFound
			}
			return err
		}
		if record.Status == model.StatusSuspended {
			return ErrSessionClosed
		}

		res := tx.Model(&model.LoginRecord{}).
			Where("user_id = ?", record.UserId).
			Update("status", model.StatusSuspended)
		if res.Error != nil {
			return res.Error
		}
		closed = res.RowsAffected

		return tx.Model(&model.User{}).
			Where("id = ?", record.UserId).
			Update("status", model.StatusSuspended).
			Error
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSessionClosed):
		return nil, err
	default:
		return nil, common.Wrap(err, "close session")
	}

	record.Status = model.StatusSuspended
	l.log.Event(logging.INFO, "sessions_closed", "user_id", record.UserId, "count", closed)
	return record, nil
}

// ListSessions returns the user's login records, newest first.
func (l *SessionLedger) ListSessions(ctx context.Context, userID int) ([]model.LoginRecord, error) {
	var records []model.LoginRecord
	err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&records).
		Error
	if err != nil {
		return nil, common.Wrap(err, "list sessions")
	}
	return records, nil
}
