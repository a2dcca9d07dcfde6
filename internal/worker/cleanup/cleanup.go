// Package cleanup は期限切れセッションの自動削除ジョブを提供する。
// expires_atを過ぎたセッション行を定期バッチで削除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionPurger は期限切れセッションの削除を抽象化するインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionPurger interface {
	// DeleteExpired は指定時刻より前に期限切れとなったセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Recorder は削除件数のメトリクス記録を提供する。nil可。
type Recorder interface {
	RecordSessionsPurged(count int64)
}

// CleanupJob は期限切れセッションの自動削除ジョブ。
// 定期実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	sessions SessionPurger
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewCleanupJob は新しいCleanupJobを生成する。recorderはnil可。
func NewCleanupJob(sessions SessionPurger, recorder Recorder, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		sessions: sessions,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Run は期限切れセッションを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	deletedCount, err := j.sessions.DeleteExpired(ctx, j.now())
	if err != nil {
		j.logger.Error("セッションクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("セッションクリーンアップの実行に失敗: %w", err)
	}

	if j.recorder != nil {
		j.recorder.RecordSessionsPurged(deletedCount)
	}

	duration := time.Since(start)
	j.logger.Info("セッションクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// RunLoop はintervalごとにRunを繰り返す。コンテキストのキャンセルで停止する。
// 起動直後に1回実行し、その後は定期実行する。
func (j *CleanupJob) RunLoop(ctx context.Context, interval time.Duration) {
	if err := j.Run(ctx); err != nil {
		j.logger.Error("initial session cleanup failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("session cleanup loop stopped")
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("session cleanup failed", slog.String("error", err.Error()))
			}
		}
	}
}
