package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

// RetryPolicy は起動時のDB接続リトライの設定。
type RetryPolicy struct {
	Attempts       int           // 最大試行回数（1以下なら1回のみ）
	InitialBackoff time.Duration // 初回の待ち時間
	MaxBackoff     time.Duration // 待ち時間の上限
}

// DefaultRetryPolicy は初回500ms、2倍ずつ増加、最大5秒のリトライ設定を返す。
func DefaultRetryPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		Attempts:       attempts,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
	}
}

// CalculateBackoff は失敗回数に基づいて指数バックオフの待ち時間を計算する。
// failures=0 で InitialBackoff、以降2倍ずつ増加し MaxBackoff で頭打ちになる。
func (p RetryPolicy) CalculateBackoff(failures int) time.Duration {
	delay := p.InitialBackoff
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay > p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	return delay
}

// ConnectWithRetry はConnectを指数バックオフ付きで繰り返す。
// コンテナ起動直後などDBの準備が整うまでの待ち合わせに使う。
// ctxが終了した場合はその時点のエラーを返す。
func ConnectWithRetry(ctx context.Context, databaseURL string, pool PoolConfig, policy RetryPolicy) (*sql.DB, error) {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		db, err := Connect(ctx, databaseURL, pool)
		if err == nil {
			return db, nil
		}
		lastErr = err

		if i == attempts-1 {
			break
		}

		delay := policy.CalculateBackoff(i)
		slog.Warn("database not ready, retrying",
			slog.Int("attempt", i+1),
			slog.Int("max_attempts", attempts),
			slog.Duration("retry_in", delay),
			slog.String("error", err.Error()),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, lastErr
		case <-timer.C:
		}
	}

	return nil, lastErr
}
