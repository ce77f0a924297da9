package webui

import (
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// requestLogger は、各リクエストにIDを付けてzapで記録するミドルウェアです。
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= 500 {
			log.Warn("request", fields...)
			return
		}
		log.Debug("request", fields...)
	}
}

// requireHeader は、指定したヘッダーの無いリクエストを 403 で拒否します。
// フォームの送信ではカスタムヘッダーを付けられないため、他サイトからのPOSTを防げます。
func requireHeader(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader(name)) == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": name + " ヘッダーが必要です"})
			return
		}
		c.Next()
	}
}

// corsMiddleware は /api 用のCORS設定です。
// patterns が空の場合はループバックのオリジンだけを許可します。
func corsMiddleware(patterns []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders: []string{
			"Content-Length",
			requestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}
	if len(patterns) > 0 {
		cfg.AllowOriginFunc = func(origin string) bool {
			host := extractOriginHost(origin)
			for _, pattern := range patterns {
				if matchOriginPattern(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		cfg.AllowOriginFunc = isLoopbackOrigin
	}
	return cors.New(cfg)
}

// extractOriginHost は、Originヘッダーから host[:port] を取り出します。
func extractOriginHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSpace(origin))
	}
	return strings.ToLower(u.Host)
}

// matchOriginPattern は、"localhost:*" や "*.example.com" のようなパターンとホストを照合します。
// ポートを含まないパターンはポートを無視して照合します。
func matchOriginPattern(pattern, host string) bool {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern == "" {
		return false
	}
	if pattern == "*" {
		return true
	}
	if !strings.Contains(pattern, ":") {
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
	}
	ok, err := path.Match(pattern, host)
	return err == nil && ok
}

func isLoopbackOrigin(origin string) bool {
	host := extractOriginHost(origin)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(strings.Trim(host, "[]"))
	return ip != nil && ip.IsLoopback()
}
