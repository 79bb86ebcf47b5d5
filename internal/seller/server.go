package seller

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	sellerdb "github.com/gestorelectric/marketplace/internal/seller/db"
	"github.com/gestorelectric/marketplace/pkg/config"
	"github.com/gestorelectric/marketplace/pkg/httpclient"
	"github.com/gestorelectric/marketplace/pkg/middleware"
	"github.com/gestorelectric/marketplace/pkg/migration"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Server は販売者サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はsellerデータベースへのクエリ実行オブジェクト。
	queries *sellerdb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// uploadDir はアップロードファイルの保存先ディレクトリ。
	uploadDir string
	// catalogClient はcatalogサービスへの同期用HTTPクライアント。
	catalogClient *httpclient.Client
}

// NewServer は新しい販売者サーバーを生成する。
// SQLiteデータベースの初期化とマイグレーション適用を行う。
func NewServer(cfg *config.Seller) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", cfg.DBPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := migration.Run(sqlDB, migrationsFS, "migrations"); err != nil {
		return nil, fmt.Errorf("マイグレーション適用に失敗: %w", err)
	}

	if err := initUploadDir(cfg.UploadDir); err != nil {
		return nil, fmt.Errorf("アップロードディレクトリの初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{cfg.CORSOrigin}))

	s := &Server{
		router:        router,
		port:          cfg.Port,
		queries:       sellerdb.New(sqlDB),
		db:            sqlDB,
		uploadDir:     cfg.UploadDir,
		catalogClient: httpclient.New(cfg.CatalogURL),
	}
	s.setupRoutes(config.ResolveJWTSecret(cfg.JWTSecret))

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
// gatewayは/api/sellerを/sellerに書き換えて転送してくるため、/seller配下で受ける。
func (s *Server) setupRoutes(jwtSecret string) {
	// アップロード済みファイルの配信（認証不要、gatewayがそのまま転送してくる）
	s.router.Static("/uploads", s.uploadDir)

	// ヘルスチェック
	s.router.GET("/seller/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "service": "seller"})
	})

	// 認証必須のエンドポイント。プラン階層の制限はgateway側で行う。
	api := s.router.Group("/seller")
	api.Use(middleware.JWTAuth(jwtSecret))
	{
		products := api.Group("/products")
		{
			// 商品一覧取得
			products.GET("", s.handleListProducts())
			// 商品数取得
			products.GET("/count", s.handleCountProducts())
			// 商品作成
			products.POST("", s.handleCreateProduct())
			// 商品更新
			products.PUT("/:id", s.handleUpdateProduct())
			// 商品削除
			products.DELETE("/:id", s.handleDeleteProduct())
		}

		// 画像アップロード
		api.POST("/upload", s.handleUpload())

		taxes := api.Group("/taxes")
		{
			// 税設定一覧取得
			taxes.GET("", s.handleListTaxes())
			// 税設定作成
			taxes.POST("", s.handleCreateTax())
			// 税設定削除
			taxes.DELETE("/:id", s.handleDeleteTax())
		}

		// 財務記録
		api.GET("/finance", s.handleFinance())
		api.POST("/finance", s.handleCreateFinanceEntry())
		api.GET("/finance/export", s.handleFinanceExport())

		// アナリティクス
		api.GET("/analytics/summary", s.handleAnalyticsSummary())

		// 監査イベント
		api.GET("/security/events", s.handleSecurityEvents())
	}
}

// imagePayload は商品画像のJSON構造。
type imagePayload struct {
	// URL は画像のURL。
	URL string `json:"url"`
	// Alt は代替テキスト。
	Alt string `json:"alt"`
	// Order は表示順。
	Order int64 `json:"order"`
}

// createProductRequest は商品作成リクエストのJSON構造。
// price/stockは省略の検出のためポインタで受ける。
type createProductRequest struct {
	// Name は商品名。
	Name string `json:"name"`
	// Price は価格。
	Price *float64 `json:"price"`
	// Stock は在庫数。
	Stock *int64 `json:"stock"`
	// Images は商品画像の一覧。
	Images []imagePayload `json:"images"`
	// Category はカテゴリ名。
	Category string `json:"category"`
	// SellerName は販売者の表示名。
	SellerName string `json:"sellerName"`
}

// updateProductRequest は商品更新リクエストのJSON構造。
// 省略されたフィールドは変更しない。Imagesが指定された場合は画像セットを置き換える。
type updateProductRequest struct {
	// Name は商品名。
	Name *string `json:"name"`
	// Price は価格。
	Price *float64 `json:"price"`
	// Stock は在庫数。
	Stock *int64 `json:"stock"`
	// Images は商品画像の一覧。
	Images *[]imagePayload `json:"images"`
	// Category はカテゴリ名。
	Category *string `json:"category"`
	// SellerName は販売者の表示名。
	SellerName *string `json:"sellerName"`
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
	// SellerName は販売者の表示名。
	SellerName string `json:"sellerName"`
	// Images は商品画像の一覧。
	Images []imagePayload `json:"images"`
	// CreatedAt は作成日時。
	CreatedAt string `json:"created_at"`
	// UpdatedAt は更新日時。
	UpdatedAt string `json:"updated_at"`
}

// toProductResponse はDB行をJSONレスポンスに変換する。
func toProductResponse(p sellerdb.Product, images []sellerdb.ProductImage) productResponse {
	imagePayloads := make([]imagePayload, 0, len(images))
	for _, im := range images {
		imagePayloads = append(imagePayloads, imagePayload{URL: im.URL, Alt: im.Alt, Order: im.Ord})
	}
	return productResponse{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Stock:      p.Stock,
		Category:   p.Category,
		SellerName: p.SellerName,
		Images:     imagePayloads,
		CreatedAt:  p.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:  p.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// loadProductResponse は商品と画像をまとめて取得してレスポンスに変換する。
func (s *Server) loadProductResponse(c *gin.Context, productID string) (productResponse, error) {
	p, err := s.queries.GetProductByID(c.Request.Context(), productID)
	if err != nil {
		return productResponse{}, err
	}
	images, err := s.queries.ListProductImages(c.Request.Context(), productID)
	if err != nil {
		return productResponse{}, err
	}
	return toProductResponse(p, images), nil
}

// handleListProducts は商品一覧取得を処理するハンドラを返す。
func (s *Server) handleListProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := s.queries.ListProducts(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "LIST_PRODUCTS_FAILED"})
			log.Printf("商品一覧の取得に失敗: %v", err)
			return
		}

		responses := make([]productResponse, 0, len(products))
		for _, p := range products {
			images, err := s.queries.ListProductImages(c.Request.Context(), p.ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "LIST_PRODUCTS_FAILED"})
				log.Printf("商品画像の取得に失敗: %v", err)
				return
			}
			responses = append(responses, toProductResponse(p, images))
		}
		c.JSON(http.StatusOK, responses)
	}
}

// handleCountProducts は商品数取得を処理するハンドラを返す。
func (s *Server) handleCountProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := s.queries.CountProducts(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "COUNT_PRODUCTS_FAILED"})
			log.Printf("商品数の取得に失敗: %v", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// handleCreateProduct は商品作成を処理するハンドラを返す。
// 作成後、catalogのRead Modelに同期し、監査イベントを記録する。
func (s *Server) handleCreateProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := middleware.GetClaims(c)

		var req createProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_FAILED"})
			return
		}
		if req.Name == "" || req.Price == nil || req.Stock == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "MISSING_FIELDS"})
			return
		}

		sellerName := req.SellerName
		if sellerName == "" && claims != nil {
			sellerName = claims.Name
		}

		productID := uuid.New().String()
		if err := s.queries.CreateProduct(c.Request.Context(), sellerdb.CreateProductParams{
			ID:         productID,
			Name:       req.Name,
			Price:      *req.Price,
			Stock:      *req.Stock,
			Category:   req.Category,
			SellerID:   middleware.GetUserID(c),
			SellerName: sellerName,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "CREATE_PRODUCT_FAILED"})
			log.Printf("商品作成エラー: %v", err)
			return
		}

		for i, im := range req.Images {
			alt := im.Alt
			if alt == "" {
				alt = fmt.Sprintf("img-%d", i+1)
			}
			if err := s.queries.CreateProductImage(c.Request.Context(), sellerdb.CreateProductImageParams{
				ProductID: productID,
				URL:       im.URL,
				Alt:       alt,
				Ord:       im.Order,
			}); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "CREATE_PRODUCT_FAILED"})
				log.Printf("商品画像の登録に失敗: %v", err)
				return
			}
		}

		created, err := s.loadProductResponse(c, productID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "CREATE_PRODUCT_FAILED"})
			log.Printf("作成した商品の取得に失敗: %v", err)
			return
		}

		s.syncProductToCatalog(c, productID)
		s.recordAudit(c, "product.create", fmt.Sprintf("商品 %s を作成", productID))

		c.JSON(http.StatusCreated, created)
	}
}

// handleUpdateProduct は商品更新を処理するハンドラを返す。
// 省略されたフィールドは現在の値を維持する。更新後catalogに同期する。
func (s *Server) handleUpdateProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		productID := c.Param("id")

		current, err := s.queries.GetProductByID(c.Request.Context(), productID)
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "NOT_FOUND"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "UPDATE_PRODUCT_FAILED"})
			log.Printf("商品の取得に失敗: %v", err)
			return
		}

		var req updateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_FAILED"})
			return
		}

		if req.Name != nil {
			current.Name = *req.Name
		}
		if req.Price != nil {
			current.Price = *req.Price
		}
		if req.Stock != nil {
			current.Stock = *req.Stock
		}
		if req.Category != nil {
			current.Category = *req.Category
		}
		if req.SellerName != nil {
			current.SellerName = *req.SellerName
		}

		if err := s.queries.UpdateProduct(c.Request.Context(), sellerdb.UpdateProductParams{
			Name:       current.Name,
			Price:      current.Price,
			Stock:      current.Stock,
			Category:   current.Category,
			SellerName: current.SellerName,
			ID:         productID,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "UPDATE_PRODUCT_FAILED"})
			log.Printf("商品更新エラー: %v", err)
			return
		}

		// Imagesが指定された場合は画像セットを丸ごと置き換える
		if req.Images != nil {
			if err := s.queries.DeleteProductImages(c.Request.Context(), productID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "UPDATE_PRODUCT_FAILED"})
				log.Printf("商品画像の削除に失敗: %v", err)
				return
			}
			for i, im := range *req.Images {
				alt := im.Alt
				if alt == "" {
					alt = fmt.Sprintf("img-%d", i+1)
				}
				if err := s.queries.CreateProductImage(c.Request.Context(), sellerdb.CreateProductImageParams{
					ProductID: productID,
					URL:       im.URL,
					Alt:       alt,
					Ord:       im.Order,
				}); err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "UPDATE_PRODUCT_FAILED"})
					log.Printf("商品画像の登録に失敗: %v", err)
					return
				}
			}
		}

		updated, err := s.loadProductResponse(c, productID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "UPDATE_PRODUCT_FAILED"})
			log.Printf("更新後の商品の取得に失敗: %v", err)
			return
		}

		s.syncProductToCatalog(c, productID)
		s.recordAudit(c, "product.update", fmt.Sprintf("商品 %s を更新", productID))

		c.JSON(http.StatusOK, updated)
	}
}

// handleDeleteProduct は商品削除を処理するハンドラを返す。
// 画像を先に削除してから商品本体を削除し、catalogにも削除を伝える。
func (s *Server) handleDeleteProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		productID := c.Param("id")

		if _, err := s.queries.GetProductByID(c.Request.Context(), productID); errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "NOT_FOUND"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "DELETE_PRODUCT_FAILED"})
			log.Printf("商品の取得に失敗: %v", err)
			return
		}

		if err := s.queries.DeleteProductImages(c.Request.Context(), productID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "DELETE_PRODUCT_FAILED"})
			log.Printf("商品画像の削除に失敗: %v", err)
			return
		}
		if err := s.queries.DeleteProduct(c.Request.Context(), productID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "DELETE_PRODUCT_FAILED"})
			log.Printf("商品削除エラー: %v", err)
			return
		}

		s.syncProductDeleteToCatalog(c, productID)
		s.recordAudit(c, "product.delete", fmt.Sprintf("商品 %s を削除", productID))

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// taxResponse は税設定のJSONレスポンス構造。
type taxResponse struct {
	// ID は税設定の一意識別子。
	ID int64 `json:"id"`
	// Region は適用地域。
	Region string `json:"region"`
	// Rate は税率（パーセント）。
	Rate float64 `json:"rate"`
}

// createTaxRequest は税設定作成リクエストのJSON構造。
type createTaxRequest struct {
	// Region は適用地域。
	Region string `json:"region"`
	// Rate は税率（パーセント）。
	Rate *float64 `json:"rate"`
}

// handleListTaxes は税設定一覧取得を処理するハンドラを返す。
// 障害時は空配列にフォールバックする。
func (s *Server) handleListTaxes() gin.HandlerFunc {
	return func(c *gin.Context) {
		taxes, err := s.queries.ListTaxes(c.Request.Context())
		if err != nil {
			log.Printf("税設定一覧の取得に失敗（空配列にフォールバック）: %v", err)
			c.JSON(http.StatusOK, []taxResponse{})
			return
		}

		responses := make([]taxResponse, 0, len(taxes))
		for _, t := range taxes {
			responses = append(responses, taxResponse{ID: t.ID, Region: t.Region, Rate: t.Rate})
		}
		c.JSON(http.StatusOK, responses)
	}
}

// handleCreateTax は税設定作成を処理するハンドラを返す。
func (s *Server) handleCreateTax() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createTaxRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_FAILED"})
			return
		}
		if req.Region == "" || req.Rate == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "MISSING_FIELDS"})
			return
		}

		id, err := s.queries.CreateTax(c.Request.Context(), sellerdb.CreateTaxParams{
			Region: req.Region,
			Rate:   *req.Rate,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "CREATE_TAX_FAILED"})
			log.Printf("税設定作成エラー: %v", err)
			return
		}

		s.recordAudit(c, "tax.create", fmt.Sprintf("税設定 %d（%s）を作成", id, req.Region))

		c.JSON(http.StatusCreated, taxResponse{ID: id, Region: req.Region, Rate: *req.Rate})
	}
}

// handleDeleteTax は税設定削除を処理するハンドラを返す。
func (s *Server) handleDeleteTax() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_FAILED"})
			return
		}

		if err := s.queries.DeleteTax(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "DELETE_TAX_FAILED"})
			log.Printf("税設定削除エラー: %v", err)
			return
		}

		s.recordAudit(c, "tax.delete", fmt.Sprintf("税設定 %d を削除", id))

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// handleSecurityEvents は監査イベント一覧取得を処理するハンドラを返す。
// 障害時は空配列にフォールバックする。
func (s *Server) handleSecurityEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := s.queries.ListAuditEvents(c.Request.Context(), 100)
		if err != nil {
			log.Printf("監査イベントの取得に失敗（空配列にフォールバック）: %v", err)
			c.JSON(http.StatusOK, []gin.H{})
			return
		}

		responses := make([]gin.H, 0, len(events))
		for _, e := range events {
			responses = append(responses, gin.H{
				"id":         e.ID,
				"user_id":    e.UserID,
				"action":     e.Action,
				"detail":     e.Detail,
				"created_at": e.CreatedAt.Format("2006-01-02T15:04:05Z"),
			})
		}
		c.JSON(http.StatusOK, responses)
	}
}

// recordAudit は監査イベントを記録する。
// 記録に失敗してもリクエスト処理は継続する。
func (s *Server) recordAudit(c *gin.Context, action, detail string) {
	if err := s.queries.CreateAuditEvent(c.Request.Context(), sellerdb.CreateAuditEventParams{
		UserID: middleware.GetUserID(c),
		Action: action,
		Detail: detail,
	}); err != nil {
		log.Printf("監査イベントの記録に失敗: action=%s, error=%v", action, err)
	}
}
