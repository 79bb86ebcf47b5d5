package gateway

import (
	"net/http"
	"strings"

	"github.com/gestorelectric/marketplace/pkg/middleware"
)

// denyError は認可拒否の結果を表す。
type denyError struct {
	// status はクライアントに返すHTTPステータスコード。
	status int
	// code はエラータクソノミー上のエラーコード。
	code string
}

// sellerGuard は/api/seller配下の認可述語を返す。
//
// 判定はリクエストごとの純関数:
//  1. Bearerヘッダー、無ければtoken Cookieからトークンを取り出す
//  2. 無ければ 401 NO_AUTH
//  3. 署名・有効期限・クレーム構造が不正なら 401 INVALID_TOKEN
//  4. roleがseller/admin以外なら 403 FORBIDDEN_ROLE
//  5. 高度機能のサブパスでplanがpro/enterprise以外なら 403 PLAN_REQUIRED
//
// 通過した場合、検証済みユーザーIDを返し、プロキシがX-User-IDとして転送する。
// バックエンドはこれを信用せず自前でもトークンを検証する（多層防御）。
func sellerGuard(secret string) guardFunc {
	return func(r *http.Request) (string, *denyError) {
		tokenString := middleware.ExtractToken(r)
		if tokenString == "" {
			return "", &denyError{status: http.StatusUnauthorized, code: "NO_AUTH"}
		}

		claims, err := middleware.ParseToken(secret, tokenString)
		if err != nil {
			return "", &denyError{status: http.StatusUnauthorized, code: "INVALID_TOKEN"}
		}

		if claims.Role != middleware.RoleSeller && claims.Role != middleware.RoleAdmin {
			return "", &denyError{status: http.StatusForbidden, code: "FORBIDDEN_ROLE"}
		}

		if advancedSellerPath(r.URL.Path, r.Method) &&
			claims.Plan != middleware.PlanPro && claims.Plan != middleware.PlanEnterprise {
			return "", &denyError{status: http.StatusForbidden, code: "PLAN_REQUIRED"}
		}

		return claims.UserID, nil
	}
}

// advancedSellerPath はpro/enterpriseプラン限定の高度機能サブパスかどうかを返す。
// 対象: アナリティクス、財務データのエクスポート、税設定の変更（GET以外）。
// pathは公開形式（/api/seller/...）のパス。
func advancedSellerPath(path, method string) bool {
	rest := strings.TrimPrefix(path, "/api/seller")
	switch {
	case hasPathPrefix(rest, "/analytics"):
		return true
	case hasPathPrefix(rest, "/finance/export"):
		return true
	case hasPathPrefix(rest, "/taxes"):
		return method != http.MethodGet
	}
	return false
}
