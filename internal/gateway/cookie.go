package gateway

import "strings"

// RewriteSetCookie はバックエンドが返したSet-Cookieヘッダー値を
// gatewayの公開オリジンで使える形に書き換える。
//
//   - Domain属性を除去する（バックエンドの内部ホスト名がブラウザに
//     渡ることを防ぐ）
//   - keepSecureがfalse（非HTTPS配備）の場合、Secure属性を除去する
//   - SameSite属性をLaxに正規化する
//
// 複数のCookieが返された場合、各ヘッダー値に独立に適用する。
func RewriteSetCookie(value string, keepSecure bool) string {
	parts := strings.Split(value, ";")
	rewritten := make([]string, 0, len(parts)+1)

	for i, part := range parts {
		trimmed := strings.TrimSpace(part)
		if i == 0 {
			// 先頭は name=value なので常に保持する
			rewritten = append(rewritten, trimmed)
			continue
		}

		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(lower, "domain"):
			continue
		case lower == "secure" && !keepSecure:
			continue
		case strings.HasPrefix(lower, "samesite"):
			continue
		}
		rewritten = append(rewritten, trimmed)
	}

	rewritten = append(rewritten, "SameSite=Lax")
	return strings.Join(rewritten, "; ")
}
