// Package webui は、ブラウザで操作するビューア画面を提供するWebサーバーを実装します。
package webui

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"GoApodViewer/internal/config"
	"GoApodViewer/internal/core"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed embed/*
var embeddedAssets embed.FS

const indexTemplate = "index.html.tmpl"

// Server はWebサーバーのインスタンスと状態を管理します。
type Server struct {
	viewer   *core.Viewer
	settings config.WebUISettings
	logger   *zap.Logger
	engine   *gin.Engine

	mu       sync.Mutex // 以下のフィールドへの同時アクセスを保護します。
	server   *http.Server
	listener net.Listener
	url      string
	done     chan struct{}
}

// New は、ルーティングを構築した Server を生成します。リッスンは Start で開始します。
func New(viewer *core.Viewer, settings config.WebUISettings, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{viewer: viewer, settings: settings, logger: logger}

	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(embeddedAssets, "embed/"+indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("テンプレートの読み込みに失敗しました: %w", err)
	}
	staticFS, err := fs.Sub(embeddedAssets, "embed/static")
	if err != nil {
		return nil, fmt.Errorf("埋め込み静的ファイルの読み込みに失敗しました: %w", err)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))
	engine.SetHTMLTemplate(tmpl)

	engine.GET("/", s.handleIndex)
	engine.StaticFS("/static", http.FS(staticFS))
	engine.Static("/scratch", viewer.ScratchDirectory())

	api := engine.Group("/api")
	api.Use(corsMiddleware(settings.AllowedOrigins))
	api.GET("/items", s.handleItems)
	api.GET("/status", s.handleStatus)
	api.POST("/shutdown", requireHeader(requestIDHeader), s.handleShutdown)

	s.engine = engine
	return s, nil
}

// Handler は、テストなどでリッスンせずに使える http.Handler を返します。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start はWebサーバーを非同期で起動し、公開URLを返します。
// すでに起動している場合は、既存のサーバーのURLを返すだけです。
func (s *Server) Start() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		s.logger.Info("Web UIサーバーはすでに起動しています。既存のサーバーを利用します。", zap.String("url", s.url))
		return s.url, nil
	}

	// "127.0.0.1:0" を指定するとOSが自動で空きポートを選択します。
	listener, err := net.Listen("tcp", s.settings.ListenAddress)
	if err != nil {
		return "", fmt.Errorf("Web UIサーバーのリッスンに失敗しました (%s): %w", s.settings.ListenAddress, err)
	}
	addr := listener.Addr().(*net.TCPAddr)
	host := addr.IP.String()
	if addr.IP.IsUnspecified() {
		host = "127.0.0.1"
	}
	url := fmt.Sprintf("http://%s", net.JoinHostPort(host, fmt.Sprint(addr.Port)))

	server := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       10 * time.Minute,
	}
	done := make(chan struct{})
	server.RegisterOnShutdown(func() {
		s.logger.Info("Web UIサーバーがシャットダウンしました。")
	})

	s.server, s.listener, s.url, s.done = server, listener, url, done

	go func() {
		defer close(done)
		s.logger.Info("Web UIサーバーを起動します", zap.String("url", url))
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Web UIサーバーが異常終了しました", zap.Error(err))
		}
		s.mu.Lock()
		s.server, s.listener = nil, nil
		s.mu.Unlock()
	}()

	return url, nil
}

// Done は、サーバーが停止したときに閉じられるチャネルを返します。Start 前は nil です。
func (s *Server) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Shutdown は、処理中のリクエストを待ってからサーバーを停止します。
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()
	if server == nil {
		return nil
	}
	s.logger.Info("Web UIサーバーのシャットダウンを開始します...")
	return server.Shutdown(ctx)
}

// OpenBrowser はOSのデフォルトブラウザでURLを開きます。
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default: // Linux, BSDなど
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ブラウザの起動コマンドの実行に失敗しました: %w", err)
	}
	return nil
}
