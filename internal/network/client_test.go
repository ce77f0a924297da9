package network

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"GoApodViewer/internal/config"
)

func newTestClient() *Client {
	return NewClient(config.NetworkSettings{
		UserAgent:            "test-agent",
		DefaultHeaders:       map[string]string{"Accept": "application/json"},
		RequestTimeoutMillis: 2000,
		PerDomainIntervalMillis: map[string]int{
			"127.0.0.1": 1,
		},
	})
}

func TestClient_GetSendsHeaders(t *testing.T) {
	// 1. Arrange (準備) - ダミーサーバーの構築
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("サーバー: User-Agentが期待値と異なります: %s", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("サーバー: Acceptヘッダーが期待値と異なります: %s", got)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Success"))
	}))
	defer server.Close()

	client := newTestClient()

	// 2. Act (実行)
	body, err := client.Get(context.Background(), server.URL)

	// 3. Assert (検証)
	if err != nil {
		t.Fatalf("client.Getで予期せぬエラーが発生しました: %v", err)
	}
	if string(body) != "Success" {
		t.Errorf("レスポンスボディが期待値と異なります。期待値: 'Success', 実際値: '%s'", body)
	}
}

func TestClient_GetNon200ReturnsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient()
	_, err := client.Get(context.Background(), server.URL+"/?api_key=SECRET&date=2024-01-01")

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("*HTTPError が期待されましたが %T でした: %v", err, err)
	}
	if httpErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d", httpErr.StatusCode)
	}
	if httpErr.IsRetryable() {
		t.Error("403はリトライ不可であるべきです")
	}
	if strings.Contains(httpErr.Error(), "SECRET") {
		t.Errorf("エラーメッセージにAPIキーが含まれています: %s", httpErr.Error())
	}
}

func TestHTTPError_IsRetryable(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusNotFound, false},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
	}
	for _, tt := range tests {
		e := &HTTPError{StatusCode: tt.code}
		if got := e.IsRetryable(); got != tt.want {
			t.Errorf("IsRetryable(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestClient_GetHonorsCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestClient().Get(ctx, server.URL); err == nil {
		t.Fatal("キャンセル済みコンテキストでエラーが返されませんでした")
	}
}

func TestRedact(t *testing.T) {
	got := Redact("https://api.nasa.gov/planetary/apod?api_key=abc&date=2024-01-01")
	if strings.Contains(got, "abc") {
		t.Errorf("api_key が伏せられていません: %s", got)
	}
	if !strings.Contains(got, "date=2024-01-01") {
		t.Errorf("他のパラメータが失われています: %s", got)
	}

	plain := "https://example.com/image.png"
	if Redact(plain) != plain {
		t.Errorf("api_key の無いURLは変更されるべきではありません: %s", Redact(plain))
	}
}
