package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	catalogdb "github.com/gestorelectric/marketplace/internal/catalog/db"
	"github.com/gestorelectric/marketplace/pkg/config"
	"github.com/gestorelectric/marketplace/pkg/event"
	"github.com/gestorelectric/marketplace/pkg/middleware"
)

// defaultListLimit は商品一覧のデフォルト取得件数。
const defaultListLimit = 200

// maxListLimit は商品一覧の最大取得件数。
const maxListLimit = 500

// Server はカタログサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はRead Modelへのクエリ実行オブジェクト。
	queries *catalogdb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// NewServer は新しいカタログサーバーを生成する。
// SQLiteデータベースの初期化とスキーマ作成を行う。
func NewServer(cfg *config.Catalog) (*Server, error) {
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
		router:  router,
		port:    cfg.Port,
		queries: catalogdb.New(sqlDB),
		db:      sqlDB,
	}
	s.setupRoutes()

	if cfg.SeedDemo {
		if err := s.seedDemoCatalog(); err != nil {
			log.Printf("デモカタログの投入に失敗: %v", err)
		}
	}

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// 公開の読み取りエンドポイント（gatewayの/api catch-allから転送される）
	s.router.GET("/products", s.handleListProducts())
	s.router.GET("/products/:id", s.handleGetProduct())
	s.router.GET("/categories", s.handleListCategories())

	// sellerサービスからの商品同期用の内部エンドポイント。
	// gatewayが/api/internalを遮断するため、外部から転送されることはない。
	internal := s.router.Group("/internal")
	{
		internal.POST("/products", s.handleIngestUpsert())
		internal.DELETE("/products/:id", s.handleIngestDelete())
	}

	// ヘルスチェック
	s.router.GET("/catalog/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "service": "catalog"})
	})
}

// productResponse は商品のJSONレスポンス構造。
type productResponse struct {
	// ID は商品の一意識別子。
	ID string `json:"id"`
	// Name は商品名。
	Name string `json:"name"`
	// Price は価格。
	Price float64 `json:"price"`
	// Stock は在庫数。
	Stock int64 `json:"stock"`
	// Category はカテゴリ名。
	Category string `json:"category"`
	// Seller は販売者情報。
	Seller sellerInfo `json:"seller"`
	// Images は商品画像の一覧。
	Images []event.ProductImage `json:"images"`
	// CreatedAt は作成日時。
	CreatedAt string `json:"created_at"`
}

// sellerInfo は商品レスポンスに含める販売者情報。
type sellerInfo struct {
	// DisplayName は販売者の表示名。
	DisplayName string `json:"displayName"`
}

// categoryResponse はカテゴリのJSONレスポンス構造。
type categoryResponse struct {
	// ID はカテゴリの一意識別子。
	ID int64 `json:"id"`
	// Name はカテゴリ名。
	Name string `json:"name"`
}

// toProductResponse はDB行をJSONレスポンスに変換する。
func toProductResponse(p catalogdb.Product) productResponse {
	images := []event.ProductImage{}
	if err := json.Unmarshal([]byte(p.ImagesJSON), &images); err != nil {
		log.Printf("画像JSONのデシリアライズに失敗: id=%s, error=%v", p.ID, err)
		images = []event.ProductImage{}
	}
	return productResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		Category:  p.Category,
		Seller:    sellerInfo{DisplayName: p.SellerName},
		Images:    images,
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// noStore はブラウザキャッシュを無効化するヘッダーを設定する。
// 304によって古い商品データが表示されることを防ぐ。
func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
}

// handleListProducts は商品一覧取得を処理するハンドラを返す。
// ストア障害時は500ではなく空配列を返し、gatewayのタイムアウトや
// ブラウザへのエラー伝播を避ける。
func (s *Server) handleListProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		noStore(c)

		limit := int64(defaultListLimit)
		if raw := c.Query("limit"); raw != "" {
			if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
				limit = parsed
			}
		}
		if limit > maxListLimit {
			limit = maxListLimit
		}

		products, err := s.queries.ListProducts(c.Request.Context(), limit)
		if err != nil {
			log.Printf("商品一覧の取得に失敗（空配列にフォールバック）: %v", err)
			c.JSON(http.StatusOK, []productResponse{})
			return
		}

		responses := make([]productResponse, 0, len(products))
		for _, p := range products {
			responses = append(responses, toProductResponse(p))
		}
		c.JSON(http.StatusOK, responses)
	}
}

// handleGetProduct は商品詳細取得を処理するハンドラを返す。
func (s *Server) handleGetProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		noStore(c)

		p, err := s.queries.GetProductByID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "NOT_FOUND"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "DETAIL_FAILED"})
			log.Printf("商品詳細の取得に失敗: %v", err)
			return
		}

		c.JSON(http.StatusOK, toProductResponse(p))
	}
}

// handleListCategories はカテゴリ一覧取得を処理するハンドラを返す。
// categoriesテーブルが空の場合は商品のカテゴリ名から導出する。
// 障害時は空配列にフォールバックする。
func (s *Server) handleListCategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		noStore(c)

		categories, err := s.queries.ListCategories(c.Request.Context())
		if err != nil {
			log.Printf("カテゴリ一覧の取得に失敗（商品からの導出にフォールバック）: %v", err)
			categories = nil
		}

		if len(categories) > 0 {
			responses := make([]categoryResponse, 0, len(categories))
			for _, cat := range categories {
				responses = append(responses, categoryResponse{ID: cat.ID, Name: cat.Name})
			}
			c.JSON(http.StatusOK, responses)
			return
		}

		// フォールバック: 商品に設定されているカテゴリ名から導出する
		names, err := s.queries.ListDistinctProductCategories(c.Request.Context())
		if err != nil {
			log.Printf("カテゴリの導出に失敗（空配列にフォールバック）: %v", err)
			c.JSON(http.StatusOK, []categoryResponse{})
			return
		}

		responses := make([]categoryResponse, 0, len(names))
		for i, name := range names {
			responses = append(responses, categoryResponse{ID: int64(i + 1), Name: name})
		}
		c.JSON(http.StatusOK, responses)
	}
}

// handleIngestUpsert はsellerサービスからの商品スナップショット反映を処理するハンドラを返す。
func (s *Server) handleIngestUpsert() gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload event.ProductUpserted
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_FAILED"})
			return
		}
		if payload.ID == "" || payload.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_FAILED"})
			return
		}

		imagesJSON, err := json.Marshal(payload.Images)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_FAILED"})
			return
		}

		if err := s.queries.UpsertProduct(c.Request.Context(), catalogdb.UpsertProductParams{
			ID:         payload.ID,
			Name:       payload.Name,
			Price:      payload.Price,
			Stock:      payload.Stock,
			Category:   payload.Category,
			SellerName: payload.SellerName,
			ImagesJSON: string(imagesJSON),
			CreatedAt:  payload.CreatedAt,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "SYNC_FAILED"})
			log.Printf("商品スナップショットの反映に失敗: id=%s, error=%v", payload.ID, err)
			return
		}

		// カテゴリも一覧に載せられるよう登録しておく
		if payload.Category != "" {
			if err := s.queries.CreateCategory(c.Request.Context(), payload.Category); err != nil {
				log.Printf("カテゴリの登録に失敗: name=%s, error=%v", payload.Category, err)
			}
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// handleIngestDelete はsellerサービスからの商品削除反映を処理するハンドラを返す。
func (s *Server) handleIngestDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.queries.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "SYNC_FAILED"})
			log.Printf("商品スナップショットの削除に失敗: %v", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
