package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/bregydoc/gtranslate"
)

// Google は、Google翻訳のWebエンドポイントを使う Translator です。APIキーは不要です。
type Google struct {
	sourceLang string
	translate  func(text string, params gtranslate.TranslationParams) (string, error)
}

// NewGoogle は、新しい Google を生成します。
func NewGoogle(sourceLang string) *Google {
	if sourceLang == "" {
		sourceLang = "auto"
	}
	return &Google{sourceLang: sourceLang, translate: gtranslate.TranslateWithParams}
}

func (g *Google) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	// gtranslate はコンテキストを受け取らないため、呼び出し前にだけ確認する
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out, err := g.translate(text, gtranslate.TranslationParams{From: g.sourceLang, To: targetLang})
	if err != nil {
		return "", fmt.Errorf("Google翻訳に失敗しました: %w", err)
	}
	return out, nil
}
