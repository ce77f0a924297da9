// Package systray は、システムトレイアプリケーションのUIとイベントハンドリングを提供します。
package systray

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"GoApodViewer/internal/core"

	"fyne.io/systray"
	"go.uber.org/zap"
)

// Options は、トレイメニューから呼び出される処理です。
type Options struct {
	Stats *core.SessionStats
	// OpenViewer は、Web UIを起動(または既存のものを再利用)してブラウザで開きます。
	OpenViewer func() error
	// ToggleLogFile は、ログファイル出力を切り替えます。
	ToggleLogFile func(enable bool) error
	LogFileOn     bool
	// SetDebug は、デバッグログの出力を切り替えます。
	SetDebug      func(enable bool)
	DebugOn       bool
	ShowConsole   func()
	HideConsole   func()
	ScratchDir    string
	ConfigPath    string
	Logger        *zap.Logger
}

// Run は、システムトレイアプリケーションを開始し、終了するまでブロックします。
// ctx がキャンセルされた場合もトレイを終了します。
func Run(ctx context.Context, opts Options) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	appCtx, appCancel := context.WithCancel(ctx)
	defer appCancel()

	onReady := func() { buildMenu(appCtx, opts) }
	onExit := func() {
		opts.Logger.Info("トレイの終了処理を開始します。")
		appCancel()
	}
	systray.Run(onReady, onExit)
}

// buildMenu は、UIの初期化とイベントループの起動を行います。
func buildMenu(ctx context.Context, opts Options) {
	log := opts.Logger
	log.Info("システムトレイの準備ができました", zap.String("os", runtime.GOOS), zap.String("arch", runtime.GOARCH))

	systray.SetIcon(IconData(core.StateInitializing))
	systray.SetTitle("APOD")
	systray.SetTooltip("APOD Viewer: 初期化中...")

	mStatusState := systray.AddMenuItem("状態: 初期化中...", "現在のアプリケーションの状態")
	mStatusSession := systray.AddMenuItem("セッション: -", "今回の起動中の統計情報")
	mStatusState.Disable()
	mStatusSession.Disable()
	systray.AddSeparator()

	mOpenViewer := systray.AddMenuItem("ビューアを開く", "ブラウザでビューアを開きます")
	systray.AddSeparator()

	mConsoleToggle := systray.AddMenuItemCheckbox("コンソールを表示", "コンソールウィンドウの表示/非表示を切り替えます", false)
	mLogFileToggle := systray.AddMenuItemCheckbox("ログファイルに出力", "ログをファイルにも出力します", opts.LogFileOn)
	mDebugToggle := systray.AddMenuItemCheckbox("デバッグログ", "リクエストごとの詳細なログを出力します", opts.DebugOn)
	systray.AddSeparator()

	mOpenScratch := systray.AddMenuItem("スクラッチフォルダを開く", "ダウンロードした画像のフォルダを開きます")
	mOpenConfig := systray.AddMenuItem("設定ファイルを開く", "config.jsonを編集します")
	systray.AddSeparator()

	mExit := systray.AddMenuItem("終了", "アプリケーションを安全に終了します")

	go func() {
		for {
			select {
			case <-mOpenViewer.ClickedCh:
				if err := opts.OpenViewer(); err != nil {
					log.Error("ビューアを開けませんでした", zap.Error(err))
				}
			case <-mConsoleToggle.ClickedCh:
				if mConsoleToggle.Checked() {
					mConsoleToggle.Uncheck()
					opts.HideConsole()
				} else {
					mConsoleToggle.Check()
					opts.ShowConsole()
				}
			case <-mLogFileToggle.ClickedCh:
				enable := !mLogFileToggle.Checked()
				if err := opts.ToggleLogFile(enable); err != nil {
					continue
				}
				if enable {
					mLogFileToggle.Check()
				} else {
					mLogFileToggle.Uncheck()
				}
			case <-mDebugToggle.ClickedCh:
				if mDebugToggle.Checked() {
					mDebugToggle.Uncheck()
					opts.SetDebug(false)
				} else {
					mDebugToggle.Check()
					opts.SetDebug(true)
				}
			case <-mOpenScratch.ClickedCh:
				openCommand(log, opts.ScratchDir)
			case <-mOpenConfig.ClickedCh:
				openCommand(log, opts.ConfigPath)
			case <-mExit.ClickedCh:
				log.Info("UI: 終了イベント受信。")
				systray.Quit()
				return
			case <-ctx.Done():
				systray.Quit()
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		last := core.AppState(-1)
		for {
			select {
			case <-ticker.C:
				status := opts.Stats.Status()
				if status.State != last {
					systray.SetIcon(IconData(status.State))
					last = status.State
				}
				systray.SetTooltip(tooltip(status))
				mStatusState.SetTitle(fmt.Sprintf("状態: %s", status.StateText))
				mStatusSession.SetTitle(fmt.Sprintf("セッション: %s", status.SessionInfo))
			case <-ctx.Done():
				return
			}
		}
	}()
}

// tooltip は、トレイアイコンのツールチップ文字列を返します。
func tooltip(status core.AppStatus) string {
	if status.Detail != "" {
		return fmt.Sprintf("APOD Viewer: %s (%s)", status.StateText, status.Detail)
	}
	return fmt.Sprintf("APOD Viewer: %s", status.StateText)
}

// openCommandはOSのデフォルトアプリケーションでファイルやフォルダを開きます。
func openCommand(log *zap.Logger, path string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("explorer", path)
	case "darwin":
		cmd = exec.Command("open", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		log.Warn("コマンドの実行に失敗しました", zap.String("path", path), zap.Error(err))
	}
}
