package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadSecrets(t *testing.T) {
	s, err := LoadSecrets(filepath.Join("testdata", "secrets.toml"))
	if err != nil {
		t.Fatalf("LoadSecretsで予期せぬエラーが発生しました: %v", err)
	}
	if s.General.APIKey != "secret-from-toml" {
		t.Errorf("api_key = %q", s.General.APIKey)
	}
}

func TestLoadSecrets_Broken(t *testing.T) {
	_, err := LoadSecrets(filepath.Join("testdata", "broken_secrets.toml"))
	if err == nil {
		t.Fatal("壊れたTOMLでエラーが返されませんでした")
	}
	if !strings.Contains(err.Error(), "行") {
		t.Errorf("エラーに位置情報が含まれていません: %v", err)
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Run("env wins over secrets", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "from-env")
		cfg := Default()
		cfg.SecretsFile = filepath.Join("testdata", "secrets.toml")

		src, err := ResolveAPIKey(cfg)
		if err != nil {
			t.Fatal(err)
		}
		if src != KeyFromEnv || cfg.APIKey != "from-env" {
			t.Errorf("got (%s, %s)", src, cfg.APIKey)
		}
	})

	t.Run("secrets file", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		cfg := Default()
		cfg.SecretsFile = filepath.Join("testdata", "secrets.toml")

		src, err := ResolveAPIKey(cfg)
		if err != nil {
			t.Fatal(err)
		}
		if src != KeyFromSecrets || cfg.APIKey != "secret-from-toml" {
			t.Errorf("got (%s, %s)", src, cfg.APIKey)
		}
	})

	t.Run("demo key fallback", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		cfg := Default()
		cfg.SecretsFile = filepath.Join(t.TempDir(), "missing.toml")

		src, err := ResolveAPIKey(cfg)
		if err != nil {
			t.Fatal(err)
		}
		if src != KeyFromDemo || cfg.APIKey != DemoAPIKey {
			t.Errorf("got (%s, %s)", src, cfg.APIKey)
		}
	})
}
