package gateway

import (
	"net/http"
	"strings"

	"github.com/gestorelectric/marketplace/pkg/config"
)

// guardFunc はルートの認可述語。転送を許可する場合は検証済みユーザーIDを、
// 拒否する場合はdenyを返す。
type guardFunc func(r *http.Request) (userID string, deny *denyError)

// routeRule は受信パスのプレフィックスと転送先の対応を表す。
type routeRule struct {
	// prefix はマッチ対象のパスプレフィックス。セグメント境界でマッチする。
	prefix string
	// target は転送先サービスのベースURLを返す。書き換え前のパスを受け取る。
	target func(path string) string
	// rewrite は転送時のパス書き換えを行う。nilの場合パスは変更しない。
	rewrite func(path string) string
	// guard は認可述語。nilの場合は認可不要。
	guard guardFunc
	// deny がtrueのルールはマッチしても転送されず、パス全体を遮断する。
	deny bool
}

// routeTable は優先順位付きのルーティングテーブル。
// ルールは具体的なプレフィックスから順に並び、最初にマッチしたものが採用される。
// テーブルは起動時に構築され、以後不変。
type routeTable struct {
	rules []routeRule
}

// newRouteTable はGatewayのルーティングテーブルを構築する。
//
// 優先順位:
//  1. /uploads      → seller（静的ファイル、認証不要、パス無変更）
//  2. /api/auth     → auth（認証不要、/apiを除去）
//  3. /api/seller   → seller（認可述語を通過した場合のみ、/apiを除去）
//  4. /api/internal → 遮断。サービス間同期用エンドポイントは外部に公開しない
//  5. /api          → サブパスで振り分け（/apiを除去）
func newRouteTable(cfg *config.Gateway, guard guardFunc) *routeTable {
	stripAPI := func(path string) string {
		return strings.TrimPrefix(path, "/api")
	}

	return &routeTable{rules: []routeRule{
		{
			prefix: "/uploads",
			target: func(string) string { return cfg.SellerURL },
		},
		{
			prefix:  "/api/auth",
			target:  func(string) string { return cfg.AuthURL },
			rewrite: stripAPI,
		},
		{
			prefix:  "/api/seller",
			target:  func(string) string { return cfg.SellerURL },
			rewrite: stripAPI,
			guard:   guard,
		},
		{
			prefix: "/api/internal",
			deny:   true,
		},
		{
			prefix: "/api",
			target: func(path string) string {
				rest := strings.TrimPrefix(path, "/api")
				switch {
				case hasPathPrefix(rest, "/products"), hasPathPrefix(rest, "/categories"):
					return cfg.CatalogURL
				case hasPathPrefix(rest, "/checkout"), hasPathPrefix(rest, "/payments"), hasPathPrefix(rest, "/orders"):
					return cfg.OrdersURL
				default:
					return cfg.CatalogURL
				}
			},
			rewrite: stripAPI,
		},
	}}
}

// match はパスにマッチする最初のルールを返す。
// ルールが具体的な順に並んでいるため、最初のマッチが最も具体的なマッチとなる。
// 遮断ルールにマッチしたパスはマッチなしとして扱われ、404になる。
func (t *routeTable) match(path string) (*routeRule, bool) {
	for i := range t.rules {
		if hasPathPrefix(path, t.rules[i].prefix) {
			if t.rules[i].deny {
				return nil, false
			}
			return &t.rules[i], true
		}
	}
	return nil, false
}

// hasPathPrefix はパスがプレフィックスにセグメント境界でマッチするかを返す。
// "/api/seller" は "/api/seller" と "/api/seller/x" にマッチするが
// "/api/sellerx" にはマッチしない。
func hasPathPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
