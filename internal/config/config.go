// Package config は、アプリケーションの設定ファイル(config.json)とシークレット(secrets.toml)の
// 構造定義、読み込み、既定値の解決に関する機能を提供します。
package config

// Config は config.json ファイル全体を表すルート構造体です。
// 起動時に一度だけ読み込まれ、その後は読み取り専用として各層に渡されます。
type Config struct {
	ConfigVersion    string              `json:"config_version"`
	APODBaseURL      string              `json:"apod_base_url"`
	SecretsFile      string              `json:"secrets_file,omitempty"`
	ScratchDirectory string              `json:"scratch_directory"`
	DefaultLanguage  string              `json:"default_language"`
	SourceLanguage   string              `json:"source_language"`
	LocalesFile      string              `json:"locales_file,omitempty"`
	WebUI            WebUISettings       `json:"web_ui"`
	Network          NetworkSettings     `json:"network"`
	Translation      TranslationSettings `json:"translation"`
	EnableLogFile    bool                `json:"enable_log_file"`
	LogFilePath      string              `json:"log_file_path,omitempty"`
	LogLevel         string              `json:"log_level,omitempty"`

	// APIKey は secrets.toml または環境変数から解決されたAPIキーです。JSONには書き出しません。
	APIKey string `json:"-"`
}

// WebUISettings は、ブラウザUIを提供するWebサーバーの設定です。
type WebUISettings struct {
	ListenAddress  string   `json:"listen_address"`
	OpenBrowser    bool     `json:"open_browser"`
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
}

// NetworkSettings は、HTTPリクエストに関するグローバルな設定を保持します。
type NetworkSettings struct {
	UserAgent               string            `json:"user_agent"`
	DefaultHeaders          map[string]string `json:"default_headers,omitempty"`
	PerDomainIntervalMillis map[string]int    `json:"per_domain_interval_ms,omitempty"`
	RequestTimeoutMillis    int               `json:"request_timeout_ms"`
}

// TranslationSettings は、翻訳プロバイダの設定です。
type TranslationSettings struct {
	// Provider は "mymemory", "google", "openai", "anthropic", "identity" のいずれかです。
	Provider string `json:"provider"`
	APIKey   string `json:"api_key,omitempty"`
	Model    string `json:"model,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
	// Email は MyMemory の1日あたりの上限を引き上げるための連絡先です(任意)。
	Email string        `json:"email,omitempty"`
	Cache CacheSettings `json:"cache"`
}

// CacheSettings は、翻訳結果キャッシュの設定です。RedisURLが空の場合は無効です。
type CacheSettings struct {
	RedisURL   string `json:"redis_url,omitempty"`
	TTLSeconds int    `json:"ttl_seconds,omitempty"`
}

// CacheEnabled は、翻訳キャッシュが有効かどうかを返します。
func (t TranslationSettings) CacheEnabled() bool {
	return t.Cache.RedisURL != ""
}
