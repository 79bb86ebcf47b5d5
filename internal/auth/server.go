package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	authdb "github.com/gestorelectric/marketplace/internal/auth/db"
	"github.com/gestorelectric/marketplace/pkg/config"
	"github.com/gestorelectric/marketplace/pkg/middleware"
)

// bcryptCost はパスワードハッシュのコストパラメータ。
const bcryptCost = 10

// Server は認証サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はユーザーテーブルへのクエリ実行オブジェクト。
	queries *authdb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// jwtSecret はトークン署名用の秘密鍵。
	jwtSecret string
	// cookieSecure はSecure属性付きCookieを発行するかどうか。
	cookieSecure bool
}

// NewServer は新しい認証サーバーを生成する。
// SQLiteデータベースの初期化とスキーマ作成を行う。
func NewServer(cfg *config.Auth) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", cfg.DBPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{cfg.CORSOrigin}))

	s := &Server{
		router:       router,
		port:         cfg.Port,
		queries:      authdb.New(sqlDB),
		db:           sqlDB,
		jwtSecret:    config.ResolveJWTSecret(cfg.JWTSecret),
		cookieSecure: cfg.CookieSecure,
	}
	s.setupRoutes()

	if cfg.SeedDemo {
		if err := s.seedDemoUsers(); err != nil {
			log.Printf("デモユーザーの投入に失敗: %v", err)
		}
	}

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
// gatewayは/api/authを/authに書き換えて転送してくるため、/auth配下で受ける。
func (s *Server) setupRoutes() {
	auth := s.router.Group("/auth")
	{
		auth.POST("/register", s.handleRegister())
		auth.POST("/login", s.handleLogin())
		auth.GET("/me", s.handleMe())
		auth.PATCH("/plan", s.handleUpdatePlan())
		auth.POST("/logout", s.handleLogout())
	}

	// ヘルスチェック
	s.router.GET("/auth/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "service": "auth"})
	})
}

// registerRequest はユーザー登録リクエストのJSON構造。
type registerRequest struct {
	// Name は表示名。
	Name string `json:"name"`
	// Email はメールアドレス。
	Email string `json:"email"`
	// Password は平文パスワード。保存前にハッシュ化する。
	Password string `json:"password"`
	// Role は役割。省略時はbuyer。
	Role string `json:"role"`
}

// loginRequest はログインリクエストのJSON構造。
type loginRequest struct {
	// Email はメールアドレス。
	Email string `json:"email"`
	// Password は平文パスワード。
	Password string `json:"password"`
}

// updatePlanRequest はプラン変更リクエストのJSON構造。
type updatePlanRequest struct {
	// Plan は変更後のプラン階層。
	Plan string `json:"plan"`
}

// userResponse はユーザーのJSONレスポンス構造。
// パスワードハッシュは含めない。
type userResponse struct {
	// ID はユーザーの一意識別子。
	ID string `json:"id"`
	// Name は表示名。
	Name string `json:"name"`
	// Email はメールアドレス。
	Email string `json:"email"`
	// Role は役割。
	Role string `json:"role"`
	// Plan はプラン階層。
	Plan string `json:"plan"`
}

// toUserResponse はDB行をJSONレスポンスに変換する。
func toUserResponse(u authdb.User) userResponse {
	return userResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
		Plan:  u.Plan,
	}
}

// issueSessionCookie はユーザー情報からトークンを発行し、Cookieとして設定する。
func (s *Server) issueSessionCookie(c *gin.Context, u authdb.User) error {
	token, err := middleware.GenerateToken(s.jwtSecret, u.ID, u.Email, u.Name,
		middleware.Role(u.Role), middleware.Plan(u.Plan))
	if err != nil {
		return err
	}

	if s.cookieSecure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(middleware.TokenCookieName, token,
		int(middleware.TokenTTL.Seconds()), "/", "", s.cookieSecure, true)
	return nil
}

// handleRegister はユーザー登録を処理するハンドラを返す。
// 登録直後にセッションCookieを発行する。プランは常にfreeで開始する。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_FAILED"})
			return
		}
		if req.Email == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_FAILED"})
			return
		}

		role := middleware.Role(req.Role)
		if req.Role == "" {
			role = middleware.RoleBuyer
		}
		if !middleware.ValidRole(role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_FAILED"})
			return
		}

		if _, err := s.queries.GetUserByEmail(c.Request.Context(), req.Email); err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "EMAIL_TAKEN"})
			return
		} else if !errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "REGISTER_FAILED"})
			log.Printf("ユーザー検索エラー: %v", err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "REGISTER_FAILED"})
			log.Printf("パスワードハッシュ生成エラー: %v", err)
			return
		}

		userID := uuid.New().String()
		if err := s.queries.CreateUser(c.Request.Context(), authdb.CreateUserParams{
			ID:           userID,
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: string(hash),
			Role:         string(role),
			Plan:         string(middleware.PlanFree),
		}); err != nil {
			// 一意制約違反は同時登録のレースで起こり得る
			if strings.Contains(err.Error(), "UNIQUE") {
				c.JSON(http.StatusConflict, gin.H{"error": "EMAIL_TAKEN"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "REGISTER_FAILED"})
			log.Printf("ユーザー作成エラー: %v", err)
			return
		}

		created, err := s.queries.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "REGISTER_FAILED"})
			log.Printf("作成したユーザーの取得に失敗: %v", err)
			return
		}

		if err := s.issueSessionCookie(c, created); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "REGISTER_FAILED"})
			log.Printf("トークン発行エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": toUserResponse(created)})
	}
}

// handleLogin はログインを処理するハンドラを返す。
// メールアドレス不明とパスワード不一致は同じレスポンスを返し、
// アカウントの存在を推測できないようにする。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_FAILED"})
			return
		}

		u, err := s.queries.GetUserByEmail(c.Request.Context(), req.Email)
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "INVALID_CREDENTIALS"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "LOGIN_FAILED"})
			log.Printf("ユーザー検索エラー: %v", err)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "INVALID_CREDENTIALS"})
			return
		}

		if err := s.issueSessionCookie(c, u); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "LOGIN_FAILED"})
			log.Printf("トークン発行エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": toUserResponse(u)})
	}
}

// handleMe は現在のユーザー情報を返すハンドラを返す。
// トークンが無い・無効・ユーザーが削除済みの場合もエラーにせず
// {user: null} を返す（フロントエンドの未ログイン判定に使われる）。
func (s *Server) handleMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := middleware.ExtractToken(c.Request)
		if tokenString == "" {
			c.JSON(http.StatusOK, gin.H{"user": nil})
			return
		}

		claims, err := middleware.ParseToken(s.jwtSecret, tokenString)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"user": nil})
			return
		}

		u, err := s.queries.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"user": nil})
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": toUserResponse(u)})
	}
}

// handleUpdatePlan はプラン変更を処理するハンドラを返す。
// プラン変更後はクレームを反映した新しいCookieを発行し直す。
func (s *Server) handleUpdatePlan() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := middleware.ExtractToken(c.Request)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "NO_AUTH"})
			return
		}
		claims, err := middleware.ParseToken(s.jwtSecret, tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "INVALID_TOKEN"})
			return
		}

		var req updatePlanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_FAILED"})
			return
		}
		if !middleware.ValidPlan(middleware.Plan(req.Plan)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_FAILED"})
			return
		}

		if err := s.queries.UpdateUserPlan(c.Request.Context(), authdb.UpdateUserPlanParams{
			Plan: req.Plan,
			ID:   claims.UserID,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "PLAN_UPDATE_FAILED"})
			log.Printf("プラン更新エラー: %v", err)
			return
		}

		updated, err := s.queries.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "PLAN_UPDATE_FAILED"})
			log.Printf("更新後のユーザー取得に失敗: %v", err)
			return
		}

		if err := s.issueSessionCookie(c, updated); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "PLAN_UPDATE_FAILED"})
			log.Printf("トークン再発行エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": toUserResponse(updated)})
	}
}

// handleLogout はログアウトを処理するハンドラを返す。
// Cookieを無効化するだけで、トークン自体の失効リストは持たない。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cookieSecure {
			c.SetSameSite(http.SameSiteNoneMode)
		} else {
			c.SetSameSite(http.SameSiteLaxMode)
		}
		c.SetCookie(middleware.TokenCookieName, "", -1, "/", "", s.cookieSecure, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
