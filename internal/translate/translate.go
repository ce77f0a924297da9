// Package translate は、タイトルと説明文の機械翻訳を行います。
// 翻訳バックエンドは Translator インターフェースの背後に隠され、設定の provider 名で選択されます。
package translate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"GoApodViewer/internal/model"
)

// Translator は、テキストを目的の言語に翻訳する外部サービスです。
// 原文の言語はプロバイダの生成時に決まります。
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// sentenceEnd は、文末記号の直後に続く空白の並びにマッチします。
// 略語("Dr. Smith")や小数の後ろでも分割されるのは既知の制限です。
var sentenceEnd = regexp.MustCompile(`[.!?] +`)

// SplitSentences は、'.', '!', '?' の後に続く空白で文を分割します。
// 記号は前の文に残り、区切りの空白は捨てられます。空文字列は [""] になります。
func SplitSentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		out = append(out, text[start:loc[0]+1])
		start = loc[1]
	}
	return append(out, text[start:])
}

// TranslateTitle は、タイトルを1回の呼び出しで翻訳します。
// 目的言語が原文と同じ場合はそのまま返します。
func TranslateTitle(ctx context.Context, tr Translator, title, sourceLang, targetLang string) (string, error) {
	if sameLanguage(sourceLang, targetLang) {
		return title, nil
	}
	out, err := tr.Translate(ctx, title, targetLang)
	if err != nil {
		return "", fmt.Errorf("タイトルの翻訳に失敗しました: %w", err)
	}
	return out, nil
}

// TranslateExplanation は、説明文を文ごとに1回ずつ翻訳し、半角スペース1つで連結します。
// 目的言語が原文と同じ場合はそのまま返します。
func TranslateExplanation(ctx context.Context, tr Translator, text, sourceLang, targetLang string) (string, error) {
	if sameLanguage(sourceLang, targetLang) {
		return text, nil
	}
	sentences := SplitSentences(text)
	translated := make([]string, 0, len(sentences))
	for i, s := range sentences {
		out, err := tr.Translate(ctx, s, targetLang)
		if err != nil {
			return "", fmt.Errorf("説明文の翻訳に失敗しました (文 %d/%d): %w", i+1, len(sentences), err)
		}
		translated = append(translated, out)
	}
	return strings.Join(translated, " "), nil
}

// TranslateItem は、アイテムのタイトルと説明文を翻訳したコピーを返します。
// プレースホルダで埋められたフィールドは表示言語の文字列なので、そのまま残します。
func TranslateItem(ctx context.Context, tr Translator, item model.Item, sourceLang, targetLang string) (model.Item, error) {
	if !item.TitleIsPlaceholder {
		title, err := TranslateTitle(ctx, tr, item.Title, sourceLang, targetLang)
		if err != nil {
			return item, err
		}
		item.Title = title
	}
	if !item.ExplanationIsPlaceholder {
		explanation, err := TranslateExplanation(ctx, tr, item.Explanation, sourceLang, targetLang)
		if err != nil {
			return item, err
		}
		item.Explanation = explanation
	}
	return item, nil
}
