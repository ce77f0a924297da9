package core

import (
	"context"
	"errors"
	"fmt"

	"GoApodViewer/internal/model"
	"GoApodViewer/internal/network"
	"GoApodViewer/internal/translate"

	"go.uber.org/zap"
)

// Getter は、URLからボディを取得するHTTPクライアントです。
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Presenter は、正規化済みアイテムを1件ずつ翻訳し、画像をスクラッチファイルに書き出します。
type Presenter struct {
	http        Getter
	translator  translate.Translator
	sourceLang  string
	scratchRoot string
	stats       *SessionStats
	logger      *zap.Logger
}

// NewPresenter は、新しい Presenter を生成します。
func NewPresenter(g Getter, tr translate.Translator, sourceLang, scratchRoot string, stats *SessionStats, logger *zap.Logger) *Presenter {
	return &Presenter{
		http:        g,
		translator:  tr,
		sourceLang:  sourceLang,
		scratchRoot: scratchRoot,
		stats:       stats,
		logger:      logger,
	}
}

// Present は、アイテムを順番に処理します。いずれかのアイテムで失敗した場合はその時点で中断し、
// それまでの結果は返しません。
func (p *Presenter) Present(ctx context.Context, items []model.Item, targetLang string, multi bool) ([]model.RenderedItem, error) {
	out := make([]model.RenderedItem, 0, len(items))
	for i, item := range items {
		rendered, err := p.presentOne(ctx, item, targetLang, multi)
		if err != nil {
			return nil, fmt.Errorf("アイテム %d/%d (%s) の表示準備に失敗しました: %w", i+1, len(items), item.Title, err)
		}
		out = append(out, rendered)
	}
	return out, nil
}

func (p *Presenter) presentOne(ctx context.Context, item model.Item, targetLang string, multi bool) (model.RenderedItem, error) {
	translated, err := translate.TranslateItem(ctx, p.translator, item, p.sourceLang, targetLang)
	if err != nil {
		return model.RenderedItem{}, err
	}

	if translated.IsVideo() {
		return model.RenderedItem{Item: translated}, nil
	}

	data, err := p.http.Get(ctx, translated.MediaURL)
	if err != nil {
		var httpErr *network.HTTPError
		if errors.As(err, &httpErr) {
			p.logger.Warn("画像のダウンロードに失敗しました",
				zap.Int("status", httpErr.StatusCode), zap.Bool("retryable", httpErr.IsRetryable()))
		}
		return model.RenderedItem{}, fmt.Errorf("画像のダウンロードに失敗しました (url=%s): %w", translated.MediaURL, err)
	}

	// 複数モードのファイル名には翻訳後のタイトルを使う
	rel := ScratchPath(multi, translated.Title)
	dest, err := writeScratch(p.scratchRoot, rel, data)
	if err != nil {
		return model.RenderedItem{}, err
	}
	p.stats.recordDownload(len(data))
	p.logger.Debug("スクラッチファイルを書き出しました", zap.String("path", dest), zap.Int("bytes", len(data)))

	return model.RenderedItem{Item: translated, ScratchPath: rel}, nil
}
