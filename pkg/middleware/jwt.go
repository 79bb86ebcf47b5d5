package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Role はユーザーの役割を表す。
type Role string

const (
	// RoleBuyer は購入者。
	RoleBuyer Role = "buyer"
	// RoleSeller は販売者。
	RoleSeller Role = "seller"
	// RoleAdmin は管理者。
	RoleAdmin Role = "admin"
)

// Plan はサブスクリプションのプラン階層を表す。
type Plan string

const (
	// PlanFree は無料プラン。
	PlanFree Plan = "free"
	// PlanPro は有料のProプラン。
	PlanPro Plan = "pro"
	// PlanEnterprise はEnterpriseプラン。
	PlanEnterprise Plan = "enterprise"
)

// ValidRole はroleクレームが既知の値かどうかを返す。
func ValidRole(r Role) bool {
	return r == RoleBuyer || r == RoleSeller || r == RoleAdmin
}

// ValidPlan はplanクレームが既知の値かどうかを返す。
func ValidPlan(p Plan) bool {
	return p == PlanFree || p == PlanPro || p == PlanEnterprise
}

// TokenCookieName はセッショントークンを保持するCookie名。
const TokenCookieName = "token"

// TokenTTL はセッショントークンの有効期間（7日）。
const TokenTTL = 7 * 24 * time.Hour

// SessionClaims はセッショントークンのクレーム（ペイロード）を表す。
// authサービスが発行し、gatewayと各バックエンドが独立に検証する。
// JSONフィールド名はフロントエンドとの互換のため固定。
type SessionClaims struct {
	jwt.RegisteredClaims
	// UserID は認証済みユーザーの一意識別子。
	UserID string `json:"id"`
	// Email はユーザーのメールアドレス。
	Email string `json:"email"`
	// Role はユーザーの役割（buyer/seller/admin）。
	Role Role `json:"role"`
	// Plan はプラン階層（free/pro/enterprise）。
	Plan Plan `json:"plan"`
	// Name は表示名。
	Name string `json:"name"`
}

// Validate は必須クレームの存在と値を検証する。
// jwt.ParseWithClaimsが署名検証後に自動的に呼び出す。
// 必須フィールドの欠落・不正値はトークン全体を無効として扱う。
func (c SessionClaims) Validate() error {
	if c.UserID == "" {
		return errors.New("idクレームがありません")
	}
	if !ValidRole(c.Role) {
		return fmt.Errorf("roleクレームが不正です: %q", c.Role)
	}
	if !ValidPlan(c.Plan) {
		return fmt.Errorf("planクレームが不正です: %q", c.Plan)
	}
	if c.ExpiresAt == nil {
		return errors.New("expクレームがありません")
	}
	return nil
}

// headerKeyUserID はサービス間でユーザーIDを伝播するためのHTTPヘッダーキー。
const headerKeyUserID = "X-User-ID"

// GenerateToken はユーザー情報からセッショントークンを生成する。
// authサービスが登録・ログイン・プラン変更時に呼び出す。
func GenerateToken(secret, userID, email, name string, role Role, plan Plan) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "gestorelectric-auth",
		},
		UserID: userID,
		Email:  email,
		Role:   role,
		Plan:   plan,
		Name:   name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// ParseToken はセッショントークンを検証してクレームを返す。
// 署名・有効期限・必須クレームのいずれかが不正な場合はエラーを返す。
func ParseToken(secret, tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("トークンの検証に失敗: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("トークンが無効です")
	}
	return claims, nil
}

// ExtractToken はAuthorizationヘッダー（Bearer）またはCookieから
// セッショントークンを取り出す。見つからない場合は空文字列を返す。
// Bearerヘッダーが優先される。
func ExtractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if tokenString, found := strings.CutPrefix(authHeader, "Bearer "); found {
			return tokenString
		}
	}
	if cookie, err := r.Cookie(TokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// JWTAuth はセッショントークンを検証するGinミドルウェアを返す。
// 検証に成功した場合、コンテキストにクレームを設定する。
// トークンが無い場合は401 NO_AUTH、無効な場合は401 INVALID_TOKENを返す。
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ExtractToken(c.Request)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "NO_AUTH"})
			return
		}

		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "INVALID_TOKEN"})
			return
		}

		setClaims(c, claims)
		c.Header(headerKeyUserID, claims.UserID)
		c.Next()
	}
}

// OptionalJWTAuth はトークンがあれば検証してクレームを設定するGinミドルウェアを返す。
// トークンが無い・無効な場合も処理を続行する（匿名アクセス許可）。
// ordersサービスのcheckoutのように、ログイン任意のエンドポイントで使用する。
func OptionalJWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := ExtractToken(c.Request); tokenString != "" {
			if claims, err := ParseToken(secret, tokenString); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// contextKeyClaims はGinコンテキストにクレームを格納するためのキー。
const contextKeyClaims = "session_claims"

// setClaims はGinコンテキストにクレームを設定する。
func setClaims(c *gin.Context, claims *SessionClaims) {
	c.Set(contextKeyClaims, claims)
}

// GetClaims はGinコンテキストからセッションクレームを取得する。
// JWTAuthまたはOptionalJWTAuthが事前に適用されている必要がある。
// クレームが無い場合はnilを返す。
func GetClaims(c *gin.Context) *SessionClaims {
	v, ok := c.Get(contextKeyClaims)
	if !ok {
		return nil
	}
	claims, ok := v.(*SessionClaims)
	if !ok {
		return nil
	}
	return claims
}

// GetUserID はGinコンテキストからユーザーIDを取得する。
// クレームが無い場合は空文字列を返す。
func GetUserID(c *gin.Context) string {
	if claims := GetClaims(c); claims != nil {
		return claims.UserID
	}
	return ""
}
