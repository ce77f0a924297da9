package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store は、翻訳結果を保存するキーバリューストアです。
// キーが存在しない場合は ok=false を返します。
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisStore は、Redisを使う Store です。
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore は、URL(redis://...)からRedisに接続し、疎通を確認します。
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("RedisのURLが不正です: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("Redisへの接続確認に失敗しました: %w", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

// Close は、Redisとの接続を閉じます。
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// CachedTranslator は、翻訳結果をストアにキャッシュする Translator のデコレータです。
// ストアの障害は警告ログに留め、翻訳そのものは下位の Translator で続行します。
type CachedTranslator struct {
	next      Translator
	store     Store
	namespace string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewCachedTranslator は、新しい CachedTranslator を生成します。
// namespace にはプロバイダ名と原文の言語を含め、異なる訳が混ざらないようにします。
func NewCachedTranslator(next Translator, store Store, namespace string, ttl time.Duration, logger *zap.Logger) *CachedTranslator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedTranslator{next: next, store: store, namespace: namespace, ttl: ttl, logger: logger}
}

func (c *CachedTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	key := c.key(text, targetLang)

	if val, ok, err := c.store.Get(ctx, key); err != nil {
		c.logger.Warn("翻訳キャッシュの読み込みに失敗しました", zap.Error(err))
	} else if ok {
		return val, nil
	}

	out, err := c.next.Translate(ctx, text, targetLang)
	if err != nil {
		return "", err
	}

	if err := c.store.Set(ctx, key, out, c.ttl); err != nil {
		c.logger.Warn("翻訳キャッシュの書き込みに失敗しました", zap.Error(err))
	}
	return out, nil
}

func (c *CachedTranslator) key(text, targetLang string) string {
	sum := sha256.Sum256([]byte(text))
	return "apodviewer:tr:" + c.namespace + ":" + targetLang + ":" + hex.EncodeToString(sum[:])
}
