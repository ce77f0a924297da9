// Package network は、APODビューアのHTTP通信に関する機能を提供します。
// ホストごとのレート制限と共通ヘッダーをカプセル化した、より高レベルな
// HTTPクライアントを実装しています。
package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"GoApodViewer/internal/config"

	"golang.org/x/time/rate"
)

// DefaultIntervalMillis は、per_domain_interval_ms に無いホストへのリクエスト間隔です。
const DefaultIntervalMillis = 200

// HTTPError は、HTTPリクエストで発生したエラーとステータスコードを保持します。
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsRetryable は、このエラーがリトライ可能かどうかを判定します。
// 4xxエラー（クライアントエラー）はリトライ不可、5xxエラー（サーバーエラー）はリトライ可能とします。
// ビューア自体はリトライしませんが、ログに残す判断材料として使います。
func (e *HTTPError) IsRetryable() bool {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return e.StatusCode == http.StatusTooManyRequests
	}
	return true
}

// Client は、ホスト単位のレートリミッターを持つHTTPクライアントです。
// 複数のゴルーチンから同時に使用できます。
type Client struct {
	httpClient         *http.Client
	userAgent          string
	defaultHeaders     map[string]string
	rateLimiters       map[string]*rate.Limiter // ホスト名ごとのレートリミッター
	rateLimitersMutex  sync.Mutex               // rateLimitersへのアクセスを保護するMutex
	perDomainIntervals map[string]int
}

// NewClient は NetworkSettings に基づいて HTTP クライアントを初期化します。
func NewClient(settings config.NetworkSettings) *Client {
	timeout := time.Duration(settings.RequestTimeoutMillis) * time.Millisecond
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultTimeoutMillis) * time.Millisecond
	}

	return &Client{
		httpClient:         &http.Client{Timeout: timeout},
		userAgent:          settings.UserAgent,
		defaultHeaders:     settings.DefaultHeaders,
		rateLimiters:       make(map[string]*rate.Limiter),
		perDomainIntervals: settings.PerDomainIntervalMillis,
	}
}

// Get は、指定されたURLにGETリクエストを送信し、レスポンスボディを返します。
// ステータスが200以外の場合は *HTTPError を返します。
func (c *Client) Get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("GETリクエストの作成に失敗しました (%s): %w", reqURL, err)
	}
	return c.Do(req)
}

// Do は、レート制限と共通ヘッダーを適用してリクエストを送信します。
func (c *Client) Do(req *http.Request) ([]byte, error) {
	reqURL := req.URL.String()

	limiter := c.getLimiterForHost(req.URL.Hostname())
	if err := limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("レートリミッター待機中にエラーが発生しました: %w", err)
	}

	for key, value := range c.defaultHeaders {
		req.Header.Set(key, value)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("リクエストの送信に失敗しました (%s): %w", Redact(reqURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			URL:        Redact(reqURL),
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み込みに失敗しました: %w", err)
	}
	return body, nil
}

// getLimiterForHost は、指定されたホスト名に対応するレートリミッターを返します。
// 存在しない場合は新しく生成します。
func (c *Client) getLimiterForHost(host string) *rate.Limiter {
	c.rateLimitersMutex.Lock()
	defer c.rateLimitersMutex.Unlock()

	if limiter, exists := c.rateLimiters[host]; exists {
		return limiter
	}

	intervalMillis := DefaultIntervalMillis
	if val, ok := c.perDomainIntervals[host]; ok && val > 0 {
		intervalMillis = val
	}

	newLimiter := rate.NewLimiter(rate.Every(time.Duration(intervalMillis)*time.Millisecond), 1)
	c.rateLimiters[host] = newLimiter
	return newLimiter
}

// Redact は、ログやエラーメッセージに出すURLから api_key の値を伏せます。
func Redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Get("api_key") == "" {
		return rawURL
	}
	q.Set("api_key", "***")
	u.RawQuery = q.Encode()
	return u.String()
}
