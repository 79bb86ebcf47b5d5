package gateway

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gestorelectric/marketplace/pkg/config"
	"github.com/gestorelectric/marketplace/pkg/middleware"
)

// Server はGatewayサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// routes は優先順位付きのルーティングテーブル。起動後は不変。
	routes *routeTable
	// client はバックエンドへの転送に使うHTTPクライアント。
	client *http.Client
	// keepSecure はSet-CookieのSecure属性を保持するかどうか（HTTPS配備時のみtrue）。
	keepSecure bool
}

// NewServer は新しいGatewayサーバーを生成する。
// ルーティングテーブルと認可述語は設定値から構築され、以後変更されない。
func NewServer(cfg *config.Gateway) *Server {
	secret := config.ResolveJWTSecret(cfg.JWTSecret)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{cfg.CORSOrigin}))

	s := &Server{
		router:     router,
		port:       cfg.Port,
		routes:     newRouteTable(cfg, sellerGuard(secret)),
		client:     &http.Client{Timeout: 30 * time.Second},
		keepSecure: cfg.CookieSecure,
	}
	s.setupRoutes()

	return s
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はルーティングを設定する。
// プレフィックス同士が重なるワイルドカードはGinのルーターでは表現できないため、
// ヘルスチェック以外のすべてのパスはNoRouteハンドラでルーティングテーブルを引く。
func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "service": "gateway"})
	})

	s.router.NoRoute(s.handleForward())
}

// handleForward はルーティングテーブルを引いてバックエンドに転送するハンドラを返す。
// 認可述語を持つルールは、通過した場合のみ転送される。
func (s *Server) handleForward() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		rule, ok := s.routes.match(path)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "NOT_FOUND"})
			return
		}

		userID := ""
		if rule.guard != nil {
			id, deny := rule.guard(c.Request)
			if deny != nil {
				log.Printf("[GW] 認可拒否: %s %s -> %s", c.Request.Method, path, deny.code)
				c.JSON(deny.status, gin.H{"error": deny.code})
				return
			}
			userID = id
		}

		forwardPath := path
		if rule.rewrite != nil {
			forwardPath = rule.rewrite(path)
		}

		s.doProxy(c, rule.target(path)+forwardPath, userID)
	}
}

// doProxy はリクエストをバックエンドに転送する共通処理。
// ボディはパースせずそのままストリームし、Cookie・Authorizationヘッダーを転送する。
// レスポンスのSet-Cookieヘッダーは書き換えた上でブラウザに返す。
func (s *Server) doProxy(c *gin.Context, url, userID string) {
	if c.Request.URL.RawQuery != "" {
		url += "?" + c.Request.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, url, c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "UPSTREAM_FAILURE"})
		return
	}

	// 元のリクエストヘッダーを転送する
	copyRequestHeader(req, c.Request, "Content-Type")
	copyRequestHeader(req, c.Request, "Cookie")
	copyRequestHeader(req, c.Request, "Authorization")
	req.Header.Set("X-Forwarded-For", c.ClientIP())
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[GW] プロキシエラー: url=%s, error=%v", url, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "UPSTREAM_FAILURE"})
		return
	}
	defer resp.Body.Close()

	// レスポンスヘッダーをコピーする。Set-Cookieは書き換える。
	header := c.Writer.Header()
	for key, values := range resp.Header {
		if isHopByHopHeader(key) {
			continue
		}
		if http.CanonicalHeaderKey(key) == "Set-Cookie" {
			for _, v := range values {
				header.Add("Set-Cookie", RewriteSetCookie(v, s.keepSecure))
			}
			continue
		}
		for _, v := range values {
			header.Add(key, v)
		}
	}

	c.Status(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		log.Printf("[GW] レスポンスの転送に失敗: url=%s, error=%v", url, err)
	}
}

// copyRequestHeader は元リクエストのヘッダーを転送リクエストにコピーする。
func copyRequestHeader(dst *http.Request, src *http.Request, key string) {
	if v := src.Header.Get(key); v != "" {
		dst.Header.Set(key, v)
	}
}

// isHopByHopHeader はプロキシが転送してはならないホップバイホップヘッダーかどうかを返す。
func isHopByHopHeader(key string) bool {
	switch http.CanonicalHeaderKey(key) {
	case "Connection", "Keep-Alive", "Proxy-Authenticate", "Proxy-Authorization",
		"Te", "Trailer", "Transfer-Encoding", "Upgrade":
		return true
	}
	return false
}
