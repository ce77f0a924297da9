// Package core は、APODビューアの中核となる描画パス(取得・正規化・翻訳・スクラッチ書き出し)を実装します。
package core

import (
	"fmt"
	"sync"
	"time"
)

// AppState はビューアの全体的な状態を表すenumです。
type AppState int

const (
	StateInitializing AppState = iota // 初期化中
	StateIdle                         // 待機中
	StateRendering                    // 描画中
	StateError                        // 直前の描画パスが失敗
)

// String は AppState を人間可読な文字列に変換します。
func (s AppState) String() string {
	switch s {
	case StateInitializing:
		return "初期化中"
	case StateIdle:
		return "待機中"
	case StateRendering:
		return "描画中"
	case StateError:
		return "エラー"
	default:
		return "不明"
	}
}

// AppStatus はコアからUI(トレイ、/api/status)へ渡される状態です。
type AppStatus struct {
	State       AppState `json:"-"`
	StateText   string   `json:"state"`
	Detail      string   `json:"detail"`
	SessionInfo string   `json:"session_info"`
	Stats       Snapshot `json:"stats"`
}

// Snapshot は、ある時点のセッション統計のコピーです。
type Snapshot struct {
	StartTime         time.Time `json:"start_time"`
	RenderPasses      int       `json:"render_passes"`
	ItemsShown        int       `json:"items_shown"`
	ImagesDownloaded  int       `json:"images_downloaded"`
	TotalBytesWritten int64     `json:"total_bytes_written"`
	APIErrors         int       `json:"api_errors"`
	Failures          int       `json:"failures"`
	LastError         string    `json:"last_error,omitempty"`
}

// SessionStats はセッション統計情報を管理します。複数のリクエストから同時に更新されます。
type SessionStats struct {
	mu    sync.Mutex
	state AppState
	s     Snapshot
}

// NewSessionStats は、起動時刻を記録した SessionStats を生成します。
func NewSessionStats(now time.Time) *SessionStats {
	return &SessionStats{state: StateInitializing, s: Snapshot{StartTime: now}}
}

func (st *SessionStats) beginPass() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state = StateRendering
	st.s.RenderPasses++
}

func (st *SessionStats) recordItems(n int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.ItemsShown += n
	st.state = StateIdle
}

func (st *SessionStats) recordDownload(size int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.ImagesDownloaded++
	st.s.TotalBytesWritten += int64(size)
}

func (st *SessionStats) recordAPIError(err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.APIErrors++
	st.s.LastError = err.Error()
	st.state = StateIdle
}

func (st *SessionStats) recordFailure(err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Failures++
	st.s.LastError = err.Error()
	st.state = StateError
}

// MarkIdle は、初期化が終わり描画を受け付けられる状態にします。
func (st *SessionStats) MarkIdle() {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.state == StateInitializing {
		st.state = StateIdle
	}
}

// Snapshot は、現在の統計のコピーを返します。
func (st *SessionStats) Snapshot() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s
}

// Status は、UIに渡す現在の状態を返します。
func (st *SessionStats) Status() AppStatus {
	st.mu.Lock()
	state, snap := st.state, st.s
	st.mu.Unlock()

	detail := ""
	if state == StateError {
		detail = snap.LastError
	}
	return AppStatus{
		State:       state,
		StateText:   state.String(),
		Detail:      detail,
		SessionInfo: snap.FormatSessionInfo(time.Now()),
		Stats:       snap,
	}
}

// FormatSessionInfo はセッション統計情報を1行の文字列にフォーマットします。
func (s Snapshot) FormatSessionInfo(now time.Time) string {
	uptime := now.Sub(s.StartTime)
	hours := int(uptime.Hours())
	minutes := int(uptime.Minutes()) % 60

	sizeMB := float64(s.TotalBytesWritten) / (1024 * 1024)

	return fmt.Sprintf("起動: %dh%dm | 描画: %d | 表示: %d | 画像: %d | %.1fMB",
		hours, minutes, s.RenderPasses, s.ItemsShown, s.ImagesDownloaded, sizeMB)
}
