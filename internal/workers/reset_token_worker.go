package workers

import (
	"context"
	"time"

	"natours_backend/internal/logger"
	"natours_backend/internal/repositories"

	"gorm.io/gorm"
)

const DefaultResetSweepInterval = time.Hour

// ResetTokenWorker периодически стирает истекшие токены сброса пароля.
// Проверка срока при сбросе от него не зависит
type ResetTokenWorker struct {
	db       *gorm.DB
	users    repositories.UserRepository
	interval time.Duration
	now      func() time.Time
}

func NewResetTokenWorker(db *gorm.DB, users repositories.UserRepository, interval time.Duration, now func() time.Time) *ResetTokenWorker {
	if interval <= 0 {
		interval = DefaultResetSweepInterval
	}
	if now == nil {
		now = time.Now
	}
	return &ResetTokenWorker{db: db, users: users, interval: interval, now: now}
}

// Start запускает фоновую очистку до отмены ctx
func (w *ResetTokenWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *ResetTokenWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Reset token worker stopped")
			return
		case <-ticker.C:
			_, _ = w.Sweep(ctx)
		}
	}
}

// Sweep - один проход очистки
func (w *ResetTokenWorker) Sweep(ctx context.Context) (int64, error) {
	cleared, err := w.users.ClearExpiredResetTokens(w.db.WithContext(ctx), w.now())
	if err != nil {
		logger.Error("Error clearing expired reset tokens", "error", err)
		return 0, err
	}
	if cleared > 0 {
		logger.Info("Cleared expired reset tokens", "count", cleared)
	}
	return cleared, nil
}
