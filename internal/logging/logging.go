// Package logging は、zapロガーの構築と、ログファイル出力の実行時切り替えを提供します。
package logging

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Manager は、アプリケーション全体で共有するロガーとログファイル出力を管理します。
// 標準出力には常に書き込み、ログファイルへの書き込みは Toggle で切り替えます。
type Manager struct {
	Logger *zap.Logger
	level  zap.AtomicLevel
	file   *fileSink
}

// New は、指定されたレベルでロガーを構築します。
// enableFile が true の場合は path(空なら日付入りの既定名)への書き込みも開始します。
func New(levelName string, enableFile bool, path string) (*Manager, error) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if levelName != "" {
		if err := level.UnmarshalText([]byte(levelName)); err != nil {
			return nil, fmt.Errorf("ログレベル '%s' が不正です: %w", levelName, err)
		}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	sink := &fileSink{}
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
		zapcore.NewCore(encoder, sink, level),
	)

	m := &Manager{
		Logger: zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)),
		level:  level,
		file:   sink,
	}
	if enableFile {
		if err := m.Toggle(true, path); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Toggle は、ログファイルへの書き込みを切り替えます。
// enable が true ならファイルにも出力し、false なら標準出力のみに戻します。
func (m *Manager) Toggle(enable bool, path string) error {
	if !enable {
		m.file.swap(nil)
		m.Logger.Info("ログ出力を標準出力のみに切り替えました")
		return nil
	}

	if path == "" {
		path = DefaultFileName(time.Now())
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		m.Logger.Warn("ログファイルを開けませんでした", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("ログファイル '%s' を開けませんでした: %w", path, err)
	}
	m.file.swap(f)
	m.Logger.Info("ログ出力をファイルに開始しました", zap.String("path", path))
	return nil
}

// FileEnabled は、ログファイルへの書き込みが有効かどうかを返します。
func (m *Manager) FileEnabled() bool {
	return m.file.enabled()
}

// SetLevel は、実行中にログレベルを変更します。
func (m *Manager) SetLevel(l zapcore.Level) {
	m.level.SetLevel(l)
}

// Close は、バッファをフラッシュしてログファイルを閉じます。
func (m *Manager) Close() {
	_ = m.Logger.Sync()
	m.file.swap(nil)
}

// DefaultFileName は、日付入りの既定のログファイル名を返します。
func DefaultFileName(now time.Time) string {
	return fmt.Sprintf("apodviewer_%s.log", now.Format("2006-01-02"))
}

// fileSink は、差し替え可能なファイル出力先です。ファイルが無い間の書き込みは捨てられます。
type fileSink struct {
	mu sync.Mutex
	f  *os.File
}

func (s *fileSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return len(p), nil
	}
	return s.f.Write(p)
}

func (s *fileSink) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	return s.f.Sync()
}

func (s *fileSink) swap(f *os.File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f != nil {
		s.f.Close()
	}
	s.f = f
}

func (s *fileSink) enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f != nil
}
