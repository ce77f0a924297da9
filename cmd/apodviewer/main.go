package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"GoApodViewer/internal/apod"
	"GoApodViewer/internal/config"
	"GoApodViewer/internal/core"
	"GoApodViewer/internal/i18n"
	"GoApodViewer/internal/logging"
	"GoApodViewer/internal/network"
	"GoApodViewer/internal/query"
	"GoApodViewer/internal/systray"
	"GoApodViewer/internal/translate"
	"GoApodViewer/internal/webui"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// コマンドラインフラグ
var (
	configFile = flag.String("config", "config.json", "設定ファイルのパス")
	cliMode    = flag.Bool("cli", false, "CLIモードで一度だけ描画パスを実行します。")
	trayMode   = flag.Bool("tray", false, "システムトレイモードで起動します。")
	noBrowser  = flag.Bool("no-browser", false, "起動時にブラウザを開きません。")

	modeFlag  = flag.String("mode", "single", "CLIモードのリクエスト種別 (single, range, random)")
	dateFlag  = flag.String("date", "", "single モードの日付 (YYYY-MM-DD)")
	startFlag = flag.String("start", "", "range モードの開始日 (YYYY-MM-DD)")
	endFlag   = flag.String("end", "", "range モードの終了日 (YYYY-MM-DD)")
	countFlag = flag.Int("count", query.DefaultCount, "random モードの件数 (1-10)")
	langFlag  = flag.String("lang", "", "表示言語 (空の場合は既定の言語)")
)

// app は、起動時に組み立てた共有リソースをまとめたものです。
type app struct {
	cfg     *config.Config
	logs    *logging.Manager
	viewer  *core.Viewer
	closeTr func() error
}

// main関数はAPODビューアのエントリーポイントです。
func main() {
	flag.Parse()
	log.SetOutput(os.Stdout)

	a, err := setup(context.Background())
	if err != nil {
		log.Fatalf("初期化に失敗しました: %v", err)
	}
	logger := a.logs.Logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// シグナルハンドリング
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("終了シグナルを受信しました。シャットダウンを開始します...")
		cancel()
	}()

	code := 0
	switch {
	case *cliMode:
		code = runCliMode(ctx, a)
	case *trayMode:
		logger.Info("実行モード: システムトレイ")
		runSystrayMode(ctx, a)
	default:
		logger.Info("実行モード: Web UI (デフォルト)")
		if err := runWebMode(ctx, a); err != nil {
			logger.Error("Web UIの実行に失敗しました", zap.Error(err))
			code = 1
		}
	}

	if err := a.closeTr(); err != nil {
		logger.Warn("翻訳キャッシュのクローズに失敗しました", zap.Error(err))
	}
	logger.Info("アプリケーションが正常にシャットダウンしました。")
	cancel()
	a.logs.Close()
	os.Exit(code)
}

// setup は、設定の読み込みからビューアの構築までを行います。
func setup(ctx context.Context) (*app, error) {
	if loaded, err := config.LoadDotEnv(); err != nil {
		return nil, err
	} else if loaded {
		log.Println(".env を読み込みました")
	}

	cfg, err := config.LoadAndResolve(*configFile)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました: %w", err)
	}
	keySource, err := config.ResolveAPIKey(cfg)
	if err != nil {
		return nil, err
	}

	logs, err := logging.New(cfg.LogLevel, cfg.EnableLogFile, cfg.LogFilePath)
	if err != nil {
		return nil, err
	}
	logger := logs.Logger
	logger.Info("APIキーを解決しました", zap.String("source", string(keySource)))
	if keySource == config.KeyFromDemo {
		logger.Warn("DEMO_KEY を使用しています。リクエスト数の上限が非常に低いため、secrets.toml か環境変数 " + config.EnvAPIKey + " を設定してください")
	}

	catalog, err := i18n.Load(cfg.LocalesFile, cfg.DefaultLanguage)
	if err != nil {
		return nil, err
	}

	client := network.NewClient(cfg.Network)
	tr, closeTr, err := translate.NewFromConfig(ctx, cfg.Translation, translate.Deps{
		HTTP:       client,
		SourceLang: cfg.SourceLanguage,
	}, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("翻訳プロバイダを初期化しました", zap.String("provider", cfg.Translation.Provider), zap.Bool("cache", cfg.Translation.CacheEnabled()))

	stats := core.NewSessionStats(time.Now())
	viewer := core.NewViewer(cfg, catalog, apod.NewClient(client), client, tr, stats, logger)
	stats.MarkIdle()

	return &app{cfg: cfg, logs: logs, viewer: viewer, closeTr: closeTr}, nil
}

// cliSelection は、フラグの値をWeb UIのクエリと同じ規則で選択に変換します。
func cliSelection() url.Values {
	values := url.Values{}
	values.Set("mode", *modeFlag)
	values.Set("date", *dateFlag)
	values.Set("start_date", *startFlag)
	values.Set("end_date", *endFlag)
	values.Set("count", strconv.Itoa(*countFlag))
	return values
}

// runCliModeは、CLIモードで描画パスを一度だけ実行し、終了コードを返します。
func runCliMode(ctx context.Context, a *app) int {
	logger := a.logs.Logger
	now := a.viewer.Now()
	sel := query.ParseSelection(cliSelection(), now)

	catalog := a.viewer.Catalog()
	lang := *langFlag
	if lang == "" {
		lang = catalog.Fallback()
	} else if _, err := catalog.Lookup(lang); err != nil {
		logger.Warn("表示言語を既定の言語に切り替えます", zap.Error(err), zap.Strings("available", catalog.Languages()))
		lang = catalog.Fallback()
	}

	logger.Info("CLIモードを開始します", zap.String("mode", string(sel.Mode)), zap.String("lang", lang))
	page, err := a.viewer.Render(ctx, lang, sel)
	for _, w := range page.Warnings {
		logger.Warn(w)
	}
	logger.Info("リクエストURL", zap.String("url", page.MaskedURL))
	if err != nil {
		logger.Error("描画パスに失敗しました", zap.String("render_id", page.RenderID), zap.Error(err))
		return 1
	}
	if page.Error != "" {
		logger.Error(page.Error, zap.String("render_id", page.RenderID))
		return 1
	}

	for _, it := range page.Items {
		logger.Info("アイテム",
			zap.String("title", it.Title),
			zap.String("author", it.Author),
			zap.String("media_type", string(it.MediaType)),
			zap.String("scratch", it.ScratchPath),
		)
	}
	logger.Info("CLIの描画パスが完了しました", zap.Int("items", len(page.Items)), zap.String("scratch_dir", a.viewer.ScratchDirectory()))
	return 0
}

// runWebMode は、Web UIを起動し、シャットダウン要求かシグナルまで待機します。
func runWebMode(ctx context.Context, a *app) error {
	logger := a.logs.Logger
	server, err := webui.New(a.viewer, a.cfg.WebUI, logger)
	if err != nil {
		return err
	}
	u, err := server.Start()
	if err != nil {
		return err
	}
	if a.cfg.WebUI.OpenBrowser && !*noBrowser {
		if err := webui.OpenBrowser(u); err != nil {
			logger.Warn("ブラウザを開けませんでした", zap.String("url", u), zap.Error(err))
		}
	}

	select {
	case <-server.Done():
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
	return nil
}

func runSystrayMode(ctx context.Context, a *app) {
	logger := a.logs.Logger
	server, err := webui.New(a.viewer, a.cfg.WebUI, logger)
	if err != nil {
		logger.Error("Web UIの初期化に失敗しました", zap.Error(err))
		return
	}

	setDebug := func(enable bool) {
		level := zapcore.InfoLevel
		if enable {
			level = zapcore.DebugLevel
		}
		a.logs.SetLevel(level)
		logger.Info("ログレベルを変更しました", zap.Stringer("level", level))
	}

	hideConsole()
	systray.Run(ctx, systray.Options{
		Stats: a.viewer.Stats(),
		OpenViewer: func() error {
			u, err := server.Start()
			if err != nil {
				return err
			}
			return webui.OpenBrowser(u)
		},
		ToggleLogFile: func(enable bool) error {
			return a.logs.Toggle(enable, a.cfg.LogFilePath)
		},
		LogFileOn:   a.logs.FileEnabled(),
		SetDebug:    setDebug,
		DebugOn:     strings.EqualFold(a.cfg.LogLevel, "debug"),
		ShowConsole: showConsole,
		HideConsole: hideConsole,
		ScratchDir:  a.viewer.ScratchDirectory(),
		ConfigPath:  *configFile,
		Logger:      logger,
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Web UIサーバーのシャットダウンに失敗しました", zap.Error(err))
	}
}
