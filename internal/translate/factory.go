package translate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"GoApodViewer/internal/config"

	"go.uber.org/zap"
)

// ErrUnknownProvider は、設定された翻訳プロバイダ名が登録されていないことを表します。
var ErrUnknownProvider = errors.New("不明な翻訳プロバイダです")

// DefaultCacheTTL は、ttl_seconds が未設定の場合のキャッシュ有効期間です。
const DefaultCacheTTL = 7 * 24 * time.Hour

// Deps は、プロバイダの生成に必要な共有リソースです。
type Deps struct {
	HTTP       Getter
	SourceLang string
}

// providerRegistry は、プロバイダ名と Translator の生成関数のマッピングを保持します。
var providerRegistry = map[string]func(settings config.TranslationSettings, deps Deps) (Translator, error){
	"mymemory": func(s config.TranslationSettings, d Deps) (Translator, error) {
		return NewMyMemory(d.HTTP, s.Endpoint, d.SourceLang, s.Email), nil
	},
	"google": func(_ config.TranslationSettings, d Deps) (Translator, error) {
		return NewGoogle(d.SourceLang), nil
	},
	"openai": func(s config.TranslationSettings, d Deps) (Translator, error) {
		tr, err := NewOpenAI(s.APIKey, s.Model, s.Endpoint, d.SourceLang)
		if err != nil {
			return nil, err
		}
		return tr, nil
	},
	"anthropic": func(s config.TranslationSettings, d Deps) (Translator, error) {
		tr, err := NewAnthropic(s.APIKey, s.Model, s.Endpoint, d.SourceLang)
		if err != nil {
			return nil, err
		}
		return tr, nil
	},
	"identity": func(config.TranslationSettings, Deps) (Translator, error) {
		return Identity{}, nil
	},
}

// Providers は、登録されているプロバイダ名を返します。
func Providers() []string {
	names := make([]string, 0, len(providerRegistry))
	for name := range providerRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New は、設定されたプロバイダ名に対応する Translator を生成します。
func New(settings config.TranslationSettings, deps Deps) (Translator, error) {
	factory, ok := providerRegistry[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("'%s' (利用可能: %v): %w", settings.Provider, Providers(), ErrUnknownProvider)
	}
	return factory(settings, deps)
}

// NewFromConfig は、プロバイダを生成し、キャッシュが設定されていればRedisキャッシュで包みます。
// 戻り値の closer はキャッシュの接続を閉じます。キャッシュが無効な場合は何もしません。
func NewFromConfig(ctx context.Context, settings config.TranslationSettings, deps Deps, logger *zap.Logger) (Translator, func() error, error) {
	noop := func() error { return nil }
	if logger == nil {
		logger = zap.NewNop()
	}

	tr, err := New(settings, deps)
	if err != nil {
		return nil, noop, err
	}
	if !settings.CacheEnabled() {
		return tr, noop, nil
	}

	store, err := NewRedisStore(ctx, settings.Cache.RedisURL)
	if err != nil {
		return nil, noop, fmt.Errorf("翻訳キャッシュの初期化に失敗しました: %w", err)
	}
	ttl := DefaultCacheTTL
	if settings.Cache.TTLSeconds > 0 {
		ttl = time.Duration(settings.Cache.TTLSeconds) * time.Second
	}
	logger.Info("翻訳キャッシュを有効にしました", zap.String("provider", settings.Provider), zap.Duration("ttl", ttl))
	namespace := settings.Provider + ":" + deps.SourceLang
	return NewCachedTranslator(tr, store, namespace, ttl, logger), store.Close, nil
}
