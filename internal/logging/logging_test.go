package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

func TestManager_ToggleFile(t *testing.T) {
	// 1. Arrange (準備)
	path := filepath.Join(t.TempDir(), "viewer.log")
	m, err := New("info", false, "")
	if err != nil {
		t.Fatalf("Newで予期せぬエラーが発生しました: %v", err)
	}
	defer m.Close()

	// 2. Act (実行)
	if err := m.Toggle(true, path); err != nil {
		t.Fatalf("Toggle(true)で予期せぬエラーが発生しました: %v", err)
	}
	m.Logger.Info("render pass finished")
	if err := m.Toggle(false, ""); err != nil {
		t.Fatal(err)
	}
	m.Logger.Info("after disable")

	// 3. Assert (検証)
	if m.FileEnabled() {
		t.Error("無効化後も FileEnabled が true です")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "render pass finished") {
		t.Errorf("ログファイルにメッセージがありません: %s", content)
	}
	if strings.Contains(content, "after disable") {
		t.Errorf("無効化後のメッセージがファイルに書かれています: %s", content)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New("loud", false, ""); err == nil {
		t.Error("不正なレベルでエラーが返されませんでした")
	}
}

func TestDefaultFileName(t *testing.T) {
	got := DefaultFileName(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	if got != "apodviewer_2024-01-02.log" {
		t.Errorf("got %s", got)
	}
}

func TestManager_SetLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.log")
	m, err := New("info", true, path)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	m.Logger.Debug("hidden detail")
	m.SetLevel(zapcore.DebugLevel)
	m.Logger.Debug("visible detail")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if strings.Contains(content, "hidden detail") {
		t.Error("info レベルでデバッグログが出力されました")
	}
	if !strings.Contains(content, "visible detail") {
		t.Errorf("SetLevel 後のデバッグログがありません: %s", content)
	}
}
