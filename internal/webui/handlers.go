package webui

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"GoApodViewer/internal/apod"
	"GoApodViewer/internal/core"
	"GoApodViewer/internal/network"
	"GoApodViewer/internal/query"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// itemJSON は /api/items が返すアイテムの形式です。
type itemJSON struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
	MediaURL    string `json:"media_url"`
	MediaType   string `json:"media_type"`
	Author      string `json:"author"`
	Date        string `json:"date,omitempty"`
	HDURL       string `json:"hdurl,omitempty"`
	ScratchURL  string `json:"scratch_url,omitempty"`
}

type itemsJSON struct {
	RenderID   string     `json:"render_id"`
	Language   string     `json:"language"`
	RequestURL string     `json:"request_url"`
	Warnings   []string   `json:"warnings"`
	Error      string     `json:"error,omitempty"`
	Detail     string     `json:"detail,omitempty"`
	Multi      bool       `json:"multi"`
	Items      []itemJSON `json:"items"`
}

// render は、リクエストのクエリから言語と選択を決めて描画パスを1回実行します。
func (s *Server) render(c *gin.Context) (*core.Page, error) {
	catalog := s.viewer.Catalog()
	lang := c.Query("lang")
	if lang == "" || !catalog.Supports(lang) {
		lang = catalog.Negotiate(c.GetHeader("Accept-Language"))
	}
	sel := query.ParseSelection(c.Request.URL.Query(), s.viewer.Now())
	return s.viewer.Render(c.Request.Context(), lang, sel)
}

// failureStatus は、描画パスの失敗を表すHTTPステータスを返します。
// 外部サービス(APOD、画像、翻訳)の失敗は 502、それ以外は 500 です。
func failureStatus(err error) int {
	var httpErr *network.HTTPError
	var urlErr *url.Error
	if errors.As(err, &httpErr) || errors.As(err, &urlErr) || errors.Is(err, apod.ErrUnexpectedShape) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// handleIndex は、ビューア画面を描画します。
func (s *Server) handleIndex(c *gin.Context) {
	page, err := s.render(c)
	catalog := s.viewer.Catalog()

	languages := make([]langOption, 0, len(catalog.Languages()))
	for _, code := range catalog.Languages() {
		languages = append(languages, langOption{
			Code:     code,
			Name:     catalog.Labels(code).LanguageName,
			Selected: code == page.Language,
		})
	}
	view := newIndexView(page, languages)

	status := http.StatusOK
	if err != nil {
		s.logger.Error("描画パスに失敗しました", zap.String("render_id", page.RenderID), zap.Error(err))
		_ = c.Error(err)
		status = failureStatus(err)
		view.RenderError = err.Error()
	}
	c.HTML(status, indexTemplate, view)
}

// handleItems は、描画パスの結果をJSONで返します。
func (s *Server) handleItems(c *gin.Context) {
	page, err := s.render(c)

	out := itemsJSON{
		RenderID:   page.RenderID,
		Language:   page.Language,
		RequestURL: page.MaskedURL,
		Warnings:   page.Warnings,
		Error:      page.Error,
		Multi:      page.Multi,
		Items:      make([]itemJSON, 0, len(page.Items)),
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	if err != nil {
		s.logger.Error("描画パスに失敗しました", zap.String("render_id", page.RenderID), zap.Error(err))
		_ = c.Error(err)
		out.Error = page.Labels.RenderError
		out.Detail = err.Error()
		c.JSON(failureStatus(err), out)
		return
	}

	for _, it := range page.Items {
		j := itemJSON{
			Title:       it.Title,
			Explanation: it.Explanation,
			MediaURL:    it.MediaURL,
			MediaType:   string(it.MediaType),
			Author:      it.Author,
			Date:        it.Date,
			HDURL:       it.HDURL,
		}
		if it.ScratchPath != "" {
			j.ScratchURL = scratchURL(it.ScratchPath, page.RenderID)
		}
		out.Items = append(out.Items, j)
	}
	c.JSON(http.StatusOK, out)
}

// handleStatus は、セッション統計を返します。
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.viewer.Stats().Status())
}

// handleShutdown はサーバーを安全にシャットダウンします。
func (s *Server) handleShutdown(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "サーバーをシャットダウンします"})

	// シャットダウンは非同期で行い、クライアントへのレスポンスをブロックしません。
	go func() {
		time.Sleep(500 * time.Millisecond) // レスポンスを返すための猶予
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(ctx); err != nil {
			s.logger.Error("Web UIサーバーのシャットダウンに失敗しました", zap.Error(err))
		}
	}()
}
