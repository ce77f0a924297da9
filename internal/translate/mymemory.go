package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// DefaultMyMemoryEndpoint は、MyMemory 翻訳APIのエンドポイントです。
const DefaultMyMemoryEndpoint = "https://api.mymemory.translated.net/get"

// Getter は、URLからボディを取得するHTTPクライアントです。
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// MyMemory は、MyMemory の公開REST APIを使う Translator です。
type MyMemory struct {
	http       Getter
	endpoint   string
	sourceLang string
	email      string
}

// NewMyMemory は、新しい MyMemory を生成します。endpoint が空の場合は公開エンドポイントを使います。
func NewMyMemory(g Getter, endpoint, sourceLang, email string) *MyMemory {
	if endpoint == "" {
		endpoint = DefaultMyMemoryEndpoint
	}
	return &MyMemory{http: g, endpoint: endpoint, sourceLang: sourceLang, email: email}
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	// responseStatus は数値で返ることも文字列で返ることもある
	ResponseStatus  any    `json:"responseStatus"`
	ResponseDetails string `json:"responseDetails"`
}

func (m *MyMemory) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	params := url.Values{}
	params.Set("q", text)
	params.Set("langpair", m.sourceLang+"|"+targetLang)
	if m.email != "" {
		params.Set("de", m.email)
	}

	body, err := m.http.Get(ctx, m.endpoint+"?"+params.Encode())
	if err != nil {
		return "", fmt.Errorf("MyMemoryへのリクエストに失敗しました: %w", err)
	}

	var resp myMemoryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("MyMemoryのレスポンス解析に失敗しました: %w", err)
	}
	if status := fmt.Sprint(resp.ResponseStatus); status != "200" {
		return "", fmt.Errorf("MyMemoryがエラーを返しました (status %s): %s", status, resp.ResponseDetails)
	}
	return resp.ResponseData.TranslatedText, nil
}
