package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// CompatibleVersion は、このビルドが読み込める設定ファイルのバージョンです。
	CompatibleVersion = "1.0"

	DefaultAPODBaseURL      = "https://api.nasa.gov/planetary/apod"
	DefaultScratchDirectory = "scratch"
	DefaultLanguage         = "en"
	DefaultListenAddress    = "127.0.0.1:0"
	DefaultSecretsFile      = "secrets.toml"
	DefaultUserAgent        = "GoApodViewer/1.0"
	DefaultTimeoutMillis    = 30000
	DefaultProvider         = "mymemory"
)

// rawConfig は、設定ファイルをデコードするための中間構造体です。
// 省略されたフィールドと明示的なfalseを区別するため、一部をポインタで受けます。
type rawConfig struct {
	ConfigVersion    string              `json:"config_version"`
	APODBaseURL      string              `json:"apod_base_url"`
	SecretsFile      *string             `json:"secrets_file"`
	ScratchDirectory string              `json:"scratch_directory"`
	DefaultLanguage  string              `json:"default_language"`
	SourceLanguage   string              `json:"source_language"`
	LocalesFile      string              `json:"locales_file"`
	WebUI            rawWebUI            `json:"web_ui"`
	Network          NetworkSettings     `json:"network"`
	Translation      TranslationSettings `json:"translation"`
	EnableLogFile    bool                `json:"enable_log_file"`
	LogFilePath      string              `json:"log_file_path"`
	LogLevel         string              `json:"log_level"`
}

type rawWebUI struct {
	ListenAddress  string   `json:"listen_address"`
	OpenBrowser    *bool    `json:"open_browser"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// Default は、設定ファイルが存在しない場合に使われる既定の設定を返します。
func Default() *Config {
	cfg, _ := ParseAndResolve([]byte(`{"config_version": "` + CompatibleVersion + `"}`))
	return cfg
}

// LoadAndResolve は、指定されたパスから設定ファイルを読み込み、解析と解決を行います。
// ファイルが存在しない場合は既定値を返します。
func LoadAndResolve(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		absPath, _ := filepath.Abs(path)
		cwd, _ := os.Getwd()
		return nil, fmt.Errorf("設定ファイル '%s' の読み込みに失敗しました (Abs: '%s', Cwd: '%s'): %w", path, absPath, cwd, err)
	}
	return ParseAndResolve(data)
}

// ParseAndResolve は、設定データのバイトスライスを解析し、既定値を補って最終的な設定を返します。
// この関数はテストのために分離されています。
func ParseAndResolve(data []byte) (*Config, error) {
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError

		if errors.As(err, &syntaxErr) {
			line, col := computeLineAndColumn(data, syntaxErr.Offset)
			return nil, fmt.Errorf("設定ファイルのJSON構文エラー (行 %d, 列 %d): %w", line, col, err)
		}
		if errors.As(err, &typeErr) {
			line, col := computeLineAndColumn(data, typeErr.Offset)
			return nil, fmt.Errorf("設定ファイルの型エラー (行 %d, 列 %d, フィールド '%s'): 期待値 %v, 実際 %v - %w",
				line, col, typeErr.Field, typeErr.Type, typeErr.Value, err)
		}
		return nil, fmt.Errorf("設定ファイルの解析に失敗しました: %w", err)
	}

	if raw.ConfigVersion != CompatibleVersion {
		return nil, fmt.Errorf("サポートされていない設定バージョン '%s' です。'%s' が必要です。", raw.ConfigVersion, CompatibleVersion)
	}

	cfg := &Config{
		ConfigVersion:    raw.ConfigVersion,
		APODBaseURL:      strings.TrimRight(strings.TrimSpace(raw.APODBaseURL), "/"),
		ScratchDirectory: raw.ScratchDirectory,
		DefaultLanguage:  strings.ToLower(strings.TrimSpace(raw.DefaultLanguage)),
		SourceLanguage:   strings.ToLower(strings.TrimSpace(raw.SourceLanguage)),
		LocalesFile:      raw.LocalesFile,
		WebUI: WebUISettings{
			ListenAddress:  raw.WebUI.ListenAddress,
			OpenBrowser:    true,
			AllowedOrigins: raw.WebUI.AllowedOrigins,
		},
		Network:       raw.Network,
		Translation:   raw.Translation,
		EnableLogFile: raw.EnableLogFile,
		LogFilePath:   raw.LogFilePath,
		LogLevel:      strings.ToLower(strings.TrimSpace(raw.LogLevel)),
	}
	if raw.WebUI.OpenBrowser != nil {
		cfg.WebUI.OpenBrowser = *raw.WebUI.OpenBrowser
	}
	cfg.SecretsFile = DefaultSecretsFile
	if raw.SecretsFile != nil {
		cfg.SecretsFile = *raw.SecretsFile
	}

	applyDefaults(cfg)
	return cfg, nil
}

// applyDefaults は、空のフィールドに既定値を設定します。
func applyDefaults(cfg *Config) {
	if cfg.APODBaseURL == "" {
		cfg.APODBaseURL = DefaultAPODBaseURL
	}
	if cfg.ScratchDirectory == "" {
		cfg.ScratchDirectory = DefaultScratchDirectory
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = DefaultLanguage
	}
	if cfg.SourceLanguage == "" {
		cfg.SourceLanguage = DefaultLanguage
	}
	if cfg.WebUI.ListenAddress == "" {
		cfg.WebUI.ListenAddress = DefaultListenAddress
	}
	if cfg.Network.UserAgent == "" {
		cfg.Network.UserAgent = DefaultUserAgent
	}
	if cfg.Network.RequestTimeoutMillis <= 0 {
		cfg.Network.RequestTimeoutMillis = DefaultTimeoutMillis
	}
	cfg.Translation.Provider = strings.ToLower(strings.TrimSpace(cfg.Translation.Provider))
	if cfg.Translation.Provider == "" {
		cfg.Translation.Provider = DefaultProvider
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// computeLineAndColumn は、バイトオフセットから行番号と列番号（1始まり）を計算します。
func computeLineAndColumn(data []byte, offset int64) (int, int) {
	if offset < 0 || int(offset) > len(data) {
		return 0, 0
	}
	line := 1
	lastLineStart := 0
	for i, b := range data {
		if int64(i) == offset {
			return line, i - lastLineStart + 1
		}
		if b == '\n' {
			line++
			lastLineStart = i + 1
		}
	}
	return line, int(offset) - lastLineStart + 1
}
