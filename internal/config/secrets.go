package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	// EnvAPIKey は、secrets.toml より優先されるAPIキーの環境変数名です。
	EnvAPIKey = "APOD_API_KEY"
	// DemoAPIKey は、APIキーが見つからない場合に使うNASAの公開デモキーです。
	DemoAPIKey = "DEMO_KEY"
)

// Secrets は secrets.toml の内容です。
//
//	[general]
//	api_key = "..."
type Secrets struct {
	General struct {
		APIKey string `toml:"api_key"`
	} `toml:"general"`
}

// KeySource は、APIキーをどこから解決したかを表します。
type KeySource string

const (
	KeyFromEnv     KeySource = "env"
	KeyFromSecrets KeySource = "secrets"
	KeyFromDemo    KeySource = "demo"
)

// LoadSecrets は、TOML形式のシークレットファイルを読み込みます。
// ファイルが存在しない場合は空のSecretsを返します。
func LoadSecrets(path string) (*Secrets, error) {
	var s Secrets
	if path == "" {
		return &s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &s, nil
		}
		return nil, fmt.Errorf("シークレットファイル '%s' の読み込みに失敗しました: %w", path, err)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			line, col := decodeErr.Position()
			return nil, fmt.Errorf("シークレットファイルのTOML構文エラー (行 %d, 列 %d): %w", line, col, err)
		}
		return nil, fmt.Errorf("シークレットファイルの解析に失敗しました: %w", err)
	}
	return &s, nil
}

// LoadDotEnv は、カレントディレクトリの .env を環境変数に読み込みます。
// ファイルが無いことはエラーではありません。
func LoadDotEnv() (bool, error) {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf(".env の読み込みに失敗しました: %w", err)
	}
	return true, nil
}

// ResolveAPIKey は、環境変数 → secrets.toml → デモキーの順でAPIキーを解決し、cfg.APIKey に設定します。
func ResolveAPIKey(cfg *Config) (KeySource, error) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		cfg.APIKey = v
		return KeyFromEnv, nil
	}
	secrets, err := LoadSecrets(cfg.SecretsFile)
	if err != nil {
		return "", err
	}
	if v := strings.TrimSpace(secrets.General.APIKey); v != "" {
		cfg.APIKey = v
		return KeyFromSecrets, nil
	}
	cfg.APIKey = DemoAPIKey
	return KeyFromDemo, nil
}
