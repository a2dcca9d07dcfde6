package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/legadoapp/legado/internal/model"
)

const (
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"
)

// sessionJSON はRedisに格納するセッションのJSON表現。
type sessionJSON struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ExpiresAt int64  `json:"expires_at"` // Unix秒
	CreatedAt int64  `json:"created_at"` // Unix秒
}

// RedisSessionRepo はRedisを使用したセッションリポジトリ。
// キーのTTLを有効期限に合わせるため、期限切れセッションはRedis側で
// 自動的に消える。SESSION_STORE=redisで選択される。
type RedisSessionRepo struct {
	client *redis.Client
}

// NewRedisSessionRepo はRedisSessionRepoを生成する。
func NewRedisSessionRepo(client *redis.Client) *RedisSessionRepo {
	return &RedisSessionRepo{client: client}
}

// Create はセッションを作成する。TTLは有効期限までの残り時間。
func (r *RedisSessionRepo) Create(ctx context.Context, session *model.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired: %s", session.ID)
	}

	data, err := json.Marshal(sessionJSON{
		ID:        session.ID,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt.Unix(),
		CreatedAt: session.CreatedAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+session.ID, data, ttl)
	// ログアウト全端末向けにユーザー→セッションIDの索引を持つ
	pipe.SAdd(ctx, userSessionKeyPrefix+session.UserID, session.ID)
	pipe.Expire(ctx, userSessionKeyPrefix+session.UserID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// FindByID は指定IDのセッションを取得する。期限切れ・未存在の場合はnilを返す。
func (r *RedisSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	var j sessionJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	session := &model.Session{
		ID:        j.ID,
		UserID:    j.UserID,
		ExpiresAt: time.Unix(j.ExpiresAt, 0),
		CreatedAt: time.Unix(j.CreatedAt, 0),
	}

	// TTLの切れ目とアプリの判定がずれないよう期限も検証する
	if !session.ExpiresAt.After(time.Now()) {
		return nil, nil
	}

	return session, nil
}

// DeleteByID は指定IDのセッションを削除する。
func (r *RedisSessionRepo) DeleteByID(ctx context.Context, id string) error {
	session, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+id)
	if session != nil {
		pipe.SRem(ctx, userSessionKeyPrefix+session.UserID, id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByUserID は指定ユーザーの全セッションを削除する。
func (r *RedisSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	ids, err := r.client.SMembers(ctx, userSessionKeyPrefix+userID).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to list user sessions: %w", err)
	}

	pipe := r.client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, sessionKeyPrefix+id)
	}
	pipe.Del(ctx, userSessionKeyPrefix+userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// DeleteExpired はTTLにより自動削除されるため何もしない。
func (r *RedisSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

// compile-time interface check
var _ SessionRepository = (*RedisSessionRepo)(nil)
