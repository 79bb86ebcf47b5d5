package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/gestorelectric/marketplace/pkg/config"
	"github.com/gestorelectric/marketplace/pkg/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testBackend はモックバックエンドと受信記録のペア。
type testBackend struct {
	server *httptest.Server
	// hits は受信したリクエスト数。
	hits atomic.Int64
	// lastPath は最後に受信したパス。
	lastPath atomic.Value
	// lastUserID は最後に受信したX-User-IDヘッダー。
	lastUserID atomic.Value
}

// newTestBackend は受信内容を記録するモックバックエンドを構築する。
// handlerがnilの場合は200で {"ok":true} を返す。
func newTestBackend(t *testing.T, handler http.HandlerFunc) *testBackend {
	t.Helper()
	b := &testBackend{}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		b.lastPath.Store(r.URL.Path)
		b.lastUserID.Store(r.Header.Get("X-User-ID"))
		if handler != nil {
			handler(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true}`)
	}))
	t.Cleanup(b.server.Close)
	return b
}

// newTestGateway は全バックエンドをモックに差し替えたGatewayを構築する。
func newTestGateway(t *testing.T, auth, catalog, seller, orders *testBackend) *Server {
	t.Helper()
	cfg := &config.Gateway{
		Port:       "0",
		CORSOrigin: "http://localhost:5173",
		JWTSecret:  testSecret,
		AuthURL:    auth.server.URL,
		CatalogURL: catalog.server.URL,
		SellerURL:  seller.server.URL,
		OrdersURL:  orders.server.URL,
	}
	return NewServer(cfg)
}

// newTestBackends は4つのデフォルトモックバックエンドを構築する。
func newTestBackends(t *testing.T) (auth, catalog, seller, orders *testBackend) {
	t.Helper()
	return newTestBackend(t, nil), newTestBackend(t, nil), newTestBackend(t, nil), newTestBackend(t, nil)
}

// TestGatewayHealth はヘルスチェックがバックエンドに転送されないことを検証する。
func TestGatewayHealth(t *testing.T) {
	t.Parallel()

	auth, catalog, seller, orders := newTestBackends(t)
	s := newTestGateway(t, auth, catalog, seller, orders)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
	}

	var result map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("JSONのデコードに失敗: %v", err)
	}
	if result["service"] != "gateway" {
		t.Errorf("service: got %v, want gateway", result["service"])
	}

	total := auth.hits.Load() + catalog.hits.Load() + seller.hits.Load() + orders.hits.Load()
	if total != 0 {
		t.Errorf("バックエンドへの転送数: got %d, want 0", total)
	}
}

// TestGatewayForwarding は各パスが正しいバックエンドに転送されることを検証する。
func TestGatewayForwarding(t *testing.T) {
	t.Parallel()

	t.Run("商品一覧は認証なしでcatalogに転送される", func(t *testing.T) {
		t.Parallel()
		auth, catalog, seller, orders := newTestBackends(t)
		s := newTestGateway(t, auth, catalog, seller, orders)

		req := httptest.NewRequest(http.MethodGet, "/api/products?limit=10", nil)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		if catalog.hits.Load() != 1 {
			t.Fatalf("catalogへの転送数: got %d, want 1", catalog.hits.Load())
		}
		if got := catalog.lastPath.Load(); got != "/products" {
			t.Errorf("転送パス: got %v, want /products", got)
		}
	})

	t.Run("ログインはauthに転送されapiプレフィックスが除去される", func(t *testing.T) {
		t.Parallel()
		auth, catalog, seller, orders := newTestBackends(t)
		s := newTestGateway(t, auth, catalog, seller, orders)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		if auth.hits.Load() != 1 {
			t.Fatalf("authへの転送数: got %d, want 1", auth.hits.Load())
		}
		if got := auth.lastPath.Load(); got != "/auth/login" {
			t.Errorf("転送パス: got %v, want /auth/login", got)
		}
	})

	t.Run("アップロードファイルはsellerにパス無変更で転送される", func(t *testing.T) {
		t.Parallel()
		auth, catalog, seller, orders := newTestBackends(t)
		s := newTestGateway(t, auth, catalog, seller, orders)

		req := httptest.NewRequest(http.MethodGet, "/uploads/123-a.jpg", nil)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		if seller.hits.Load() != 1 {
			t.Fatalf("sellerへの転送数: got %d, want 1", seller.hits.Load())
		}
		if got := seller.lastPath.Load(); got != "/uploads/123-a.jpg" {
			t.Errorf("転送パス: got %v, want /uploads/123-a.jpg", got)
		}
	})

	t.Run("チェックアウトはordersに転送される", func(t *testing.T) {
		t.Parallel()
		auth, catalog, seller, orders := newTestBackends(t)
		s := newTestGateway(t, auth, catalog, seller, orders)

		req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		if orders.hits.Load() != 1 {
			t.Fatalf("ordersへの転送数: got %d, want 1", orders.hits.Load())
		}
		if got := orders.lastPath.Load(); got != "/checkout" {
			t.Errorf("転送パス: got %v, want /checkout", got)
		}
	})

	t.Run("ルーティングテーブルに無いパスはNotFound", func(t *testing.T) {
		t.Parallel()
		auth, catalog, seller, orders := newTestBackends(t)
		s := newTestGateway(t, auth, catalog, seller, orders)

		req := httptest.NewRequest(http.MethodGet, "/favicon.ico", nil)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

// TestGatewaySellerAuthorization は/api/seller配下の認可とバックエンド到達の関係を検証する。
func TestGatewaySellerAuthorization(t *testing.T) {
	t.Parallel()

	t.Run("認証情報が無い場合は401でバックエンドに到達しない", func(t *testing.T) {
		t.Parallel()
		auth, catalog, seller, orders := newTestBackends(t)
		s := newTestGateway(t, auth, catalog, seller, orders)

		req := httptest.NewRequest(http.MethodGet, "/api/seller/products", nil)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusUnauthorized)
		}
		if seller.hits.Load() != 0 {
			t.Errorf("拒否されたのにバックエンドに到達しました: hits=%d", seller.hits.Load())
		}
	})

	t.Run("freeプランの高度機能は403でバックエンドに到達しない", func(t *testing.T) {
		t.Parallel()
		auth, catalog, seller, orders := newTestBackends(t)
		s := newTestGateway(t, auth, catalog, seller, orders)

		req := httptest.NewRequest(http.MethodGet, "/api/seller/analytics/summary", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, middleware.RoleSeller, middleware.PlanFree))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusForbidden)
		}
		var result map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("JSONのデコードに失敗: %v", err)
		}
		if result["error"] != "PLAN_REQUIRED" {
			t.Errorf("error: got %v, want PLAN_REQUIRED", result["error"])
		}
		if seller.hits.Load() != 0 {
			t.Errorf("拒否されたのにバックエンドに到達しました: hits=%d", seller.hits.Load())
		}
	})

	t.Run("proプランの高度機能は転送されX-User-IDが付与される", func(t *testing.T) {
		t.Parallel()
		auth, catalog, seller, orders := newTestBackends(t)
		s := newTestGateway(t, auth, catalog, seller, orders)

		req := httptest.NewRequest(http.MethodGet, "/api/seller/analytics/summary", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, middleware.RoleSeller, middleware.PlanPro))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		if seller.hits.Load() != 1 {
			t.Fatalf("sellerへの転送数: got %d, want 1", seller.hits.Load())
		}
		if got := seller.lastPath.Load(); got != "/seller/analytics/summary" {
			t.Errorf("転送パス: got %v, want /seller/analytics/summary", got)
		}
		if got := seller.lastUserID.Load(); got != "user-1" {
			t.Errorf("X-User-ID: got %v, want user-1", got)
		}
	})
}

// TestGatewayCookieRewrite はバックエンドのSet-Cookieが書き換えて返されることを検証する。
func TestGatewayCookieRewrite(t *testing.T) {
	t.Parallel()

	authBackend := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Add("Set-Cookie", "token=abc; Path=/; Domain=auth.internal; Secure; SameSite=None; HttpOnly")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"user":{"id":"user-1"}}`)
	})
	catalog, seller, orders := newTestBackend(t, nil), newTestBackend(t, nil), newTestBackend(t, nil)
	s := newTestGateway(t, authBackend, catalog, seller, orders)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
	}

	cookies := w.Header().Values("Set-Cookie")
	if len(cookies) != 1 {
		t.Fatalf("Set-Cookieの数: got %d, want 1", len(cookies))
	}
	got := cookies[0]
	if strings.Contains(strings.ToLower(got), "domain") {
		t.Errorf("Domain属性が残っています: %q", got)
	}
	if strings.Contains(strings.ToLower(got), "secure") {
		t.Errorf("Secure属性が残っています: %q", got)
	}
	if !strings.Contains(got, "SameSite=Lax") {
		t.Errorf("SameSite=Laxが付与されていません: %q", got)
	}
	if !strings.Contains(got, "HttpOnly") {
		t.Errorf("HttpOnly属性が失われています: %q", got)
	}
	if !strings.HasPrefix(got, "token=abc") {
		t.Errorf("Cookie値が変更されています: %q", got)
	}
}

// TestGatewayUpstreamFailure はバックエンド停止時のエラーレスポンスを検証する。
func TestGatewayUpstreamFailure(t *testing.T) {
	t.Parallel()

	auth, catalog, seller, orders := newTestBackends(t)
	// catalogだけ停止させる
	catalog.server.Close()
	s := newTestGateway(t, auth, catalog, seller, orders)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadGateway)
	}
	var result map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("JSONのデコードに失敗: %v", err)
	}
	if result["error"] != "UPSTREAM_FAILURE" {
		t.Errorf("error: got %v, want UPSTREAM_FAILURE", result["error"])
	}
}

// TestGatewayBodyPassthrough はリクエスト・レスポンスボディが無変更で通ることを検証する。
func TestGatewayBodyPassthrough(t *testing.T) {
	t.Parallel()

	const echoBody = `{"name":"Medidor","price":120.5}`
	ordersBackend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		if _, err := io.Copy(w, r.Body); err != nil {
			panic(err)
		}
	})
	auth, catalog, seller := newTestBackend(t, nil), newTestBackend(t, nil), newTestBackend(t, nil)
	s := newTestGateway(t, auth, catalog, seller, ordersBackend)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(echoBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusCreated)
	}
	if w.Body.String() != echoBody {
		t.Errorf("ボディ: got %q, want %q", w.Body.String(), echoBody)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", got)
	}
}

// TestGatewayInternalEndpointBlocked はサービス間同期用エンドポイントが
// 外部からgateway経由で到達できないことを検証する。
func TestGatewayInternalEndpointBlocked(t *testing.T) {
	t.Parallel()

	t.Run("認証なしの内部エンドポイントへのPOSTは404で遮断される", func(t *testing.T) {
		t.Parallel()
		auth, catalog, seller, orders := newTestBackends(t)
		s := newTestGateway(t, auth, catalog, seller, orders)

		body := strings.NewReader(`{"id":"injected","name":"偽商品","price":1}`)
		req := httptest.NewRequest(http.MethodPost, "/api/internal/products", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusNotFound)
		}
		if catalog.hits.Load() != 0 {
			t.Errorf("catalogへの転送数: got %d, want 0", catalog.hits.Load())
		}
	})

	t.Run("内部エンドポイントへのDELETEも遮断される", func(t *testing.T) {
		t.Parallel()
		auth, catalog, seller, orders := newTestBackends(t)
		s := newTestGateway(t, auth, catalog, seller, orders)

		req := httptest.NewRequest(http.MethodDelete, "/api/internal/products/p-1", nil)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusNotFound)
		}
		total := auth.hits.Load() + catalog.hits.Load() + seller.hits.Load() + orders.hits.Load()
		if total != 0 {
			t.Errorf("バックエンドへの転送数: got %d, want 0", total)
		}
	})
}

// TestGatewayOriginRejection は許可リストに無いオリジンからのリクエストが
// バックエンドに届く前に拒否されることを検証する。
func TestGatewayOriginRejection(t *testing.T) {
	t.Parallel()

	auth, catalog, seller, orders := newTestBackends(t)
	s := newTestGateway(t, auth, catalog, seller, orders)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusForbidden)
	}

	var result map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("JSONのデコードに失敗: %v", err)
	}
	if result["error"] != "CORS_REJECTED" {
		t.Errorf("error: got %v, want CORS_REJECTED", result["error"])
	}

	total := auth.hits.Load() + catalog.hits.Load() + seller.hits.Load() + orders.hits.Load()
	if total != 0 {
		t.Errorf("バックエンドへの転送数: got %d, want 0", total)
	}
}
