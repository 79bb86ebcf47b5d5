package orders

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	ordersdb "github.com/gestorelectric/marketplace/internal/orders/db"
	"github.com/gestorelectric/marketplace/pkg/config"
	"github.com/gestorelectric/marketplace/pkg/httpclient"
	"github.com/gestorelectric/marketplace/pkg/middleware"
)

// orderNumberBase は注文番号の起点。最初の注文がA-1001になる。
const orderNumberBase = 1001

// allowedStatuses は注文ステータスの許容値。
var allowedStatuses = map[string]bool{
	"pending":   true,
	"paid":      true,
	"shipped":   true,
	"delivered": true,
	"cancelled": true,
}

// Server は注文サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はordersデータベースへのクエリ実行オブジェクト。
	queries *ordersdb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// catalogClient は価格照会用のcatalogサービスHTTPクライアント。
	catalogClient *httpclient.Client
}

// NewServer は新しい注文サーバーを生成する。
func NewServer(cfg *config.Orders) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", cfg.DBPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
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
		router:        router,
		port:          cfg.Port,
		queries:       ordersdb.New(sqlDB),
		db:            sqlDB,
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
// チェックアウトのみ認証任意で、トークンがあれば注文にユーザーを紐付ける。
func (s *Server) setupRoutes(jwtSecret string) {
	// ヘルスチェック
	s.router.GET("/orders/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "service": "orders"})
	})

	// チェックアウト（ゲスト購入可）
	s.router.POST("/checkout", middleware.OptionalJWTAuth(jwtSecret), s.handleCheckout())

	api := s.router.Group("/orders")
	api.Use(middleware.JWTAuth(jwtSecret))
	{
		// 注文一覧取得
		api.GET("", s.handleListOrders())
		// 注文集計取得
		api.GET("/stats", s.handleOrderStats())
		// 注文詳細取得
		api.GET("/:id", s.handleGetOrder())
		// ステータス更新
		api.PUT("/:id/status", s.handleUpdateStatus())
		// デモ注文の投入
		api.POST("/seed-one", s.handleSeedOne())
	}
}

// orderItemResponse は注文明細のJSONレスポンス構造。
type orderItemResponse struct {
	// ProductID は商品ID。
	ProductID string `json:"productId"`
	// Name は商品名（購入時点）。
	Name string `json:"name"`
	// Price は単価（購入時点）。
	Price float64 `json:"price"`
	// Qty は数量。
	Qty int64 `json:"qty"`
}

// orderResponse は注文のJSONレスポンス構造。
type orderResponse struct {
	// ID は注文の一意識別子。
	ID string `json:"id"`
	// Number は表示用の注文番号。
	Number string `json:"number"`
	// CustomerName は購入者名。
	CustomerName string `json:"customer_name"`
	// CustomerEmail は購入者メールアドレス。
	CustomerEmail string `json:"customer_email"`
	// Status は注文ステータス。
	Status string `json:"status"`
	// Total は合計金額。
	Total float64 `json:"total"`
	// CreatedAt は作成日時。
	CreatedAt string `json:"created_at"`
	// Items は明細一覧。
	Items []orderItemResponse `json:"items"`
}

// toOrderResponse はDB行をJSONレスポンスに変換する。
func toOrderResponse(o ordersdb.Order, items []ordersdb.OrderItem) orderResponse {
	itemResponses := make([]orderItemResponse, 0, len(items))
	for _, it := range items {
		itemResponses = append(itemResponses, orderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Qty:       it.Qty,
		})
	}
	return orderResponse{
		ID:            o.ID,
		Number:        o.Number,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Status:        o.Status,
		Total:         o.Total,
		CreatedAt:     o.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Items:         itemResponses,
	}
}

// handleListOrders は注文一覧取得を処理するハンドラを返す。
func (s *Server) handleListOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := s.queries.ListOrders(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "LIST_ORDERS_FAILED"})
			log.Printf("注文一覧の取得に失敗: %v", err)
			return
		}

		responses := make([]orderResponse, 0, len(orders))
		for _, o := range orders {
			items, err := s.queries.ListOrderItems(c.Request.Context(), o.ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "LIST_ORDERS_FAILED"})
				log.Printf("注文明細の取得に失敗: %v", err)
				return
			}
			responses = append(responses, toOrderResponse(o, items))
		}
		c.JSON(http.StatusOK, responses)
	}
}

// handleGetOrder は注文詳細取得を処理するハンドラを返す。
func (s *Server) handleGetOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("id")

		o, err := s.queries.GetOrderByID(c.Request.Context(), orderID)
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "NOT_FOUND"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "GET_ORDER_FAILED"})
			log.Printf("注文の取得に失敗: %v", err)
			return
		}

		items, err := s.queries.ListOrderItems(c.Request.Context(), o.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "GET_ORDER_FAILED"})
			log.Printf("注文明細の取得に失敗: %v", err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(o, items))
	}
}

// handleOrderStats はダッシュボード向けの注文集計を処理するハンドラを返す。
func (s *Server) handleOrderStats() gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := s.queries.SummarizeOrders(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "STATS_FAILED"})
			log.Printf("注文集計に失敗: %v", err)
			return
		}
		byStatus, err := s.queries.CountOrdersByStatus(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "STATS_FAILED"})
			log.Printf("ステータス別集計に失敗: %v", err)
			return
		}

		statusCounts := gin.H{}
		for _, sc := range byStatus {
			statusCounts[sc.Status] = sc.Count
		}

		c.JSON(http.StatusOK, gin.H{
			"total_orders": summary.TotalOrders,
			"revenue":      summary.Revenue,
			"by_status":    statusCounts,
		})
	}
}

// updateStatusRequest はステータス更新リクエストのJSON構造。
type updateStatusRequest struct {
	// Status は新しい注文ステータス。
	Status string `json:"status"`
}

// handleUpdateStatus は注文ステータスの更新を処理するハンドラを返す。
func (s *Server) handleUpdateStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("id")

		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_FAILED"})
			return
		}
		if !allowedStatuses[req.Status] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "STATUS_INVALID"})
			return
		}

		affected, err := s.queries.UpdateOrderStatus(c.Request.Context(), orderID, req.Status)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "UPDATE_STATUS_FAILED"})
			log.Printf("ステータス更新エラー: %v", err)
			return
		}
		if affected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "NOT_FOUND"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "status": req.Status})
	}
}

// nextOrderNumber は次の注文番号を採番する。
// 採番済み番号の最大値から導出するため、INSERTと同じトランザクションの
// Queriesを渡せば並行チェックアウトでも番号が重複しない。
// numberカラムのUNIQUE制約が最後の防壁となる。
func nextOrderNumber(c *gin.Context, q *ordersdb.Queries) (string, error) {
	seq, err := q.MaxOrderSequence(c.Request.Context())
	if err != nil {
		return "", err
	}
	next := seq + 1
	if next < orderNumberBase {
		next = orderNumberBase
	}
	return fmt.Sprintf("A-%04d", next), nil
}

// handleSeedOne はダッシュボード確認用のデモ注文を1件投入するハンドラを返す。
func (s *Server) handleSeedOne() gin.HandlerFunc {
	return func(c *gin.Context) {
		number, err := nextOrderNumber(c, s.queries)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "SEED_FAILED"})
			log.Printf("注文番号の採番に失敗: %v", err)
			return
		}

		orderID := uuid.New().String()
		if err := s.queries.CreateOrder(c.Request.Context(), ordersdb.CreateOrderParams{
			ID:            orderID,
			Number:        number,
			UserID:        middleware.GetUserID(c),
			CustomerName:  "Cliente Demo",
			CustomerEmail: "demo@ge.com",
			Status:        "pending",
			Total:         120.50,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "SEED_FAILED"})
			log.Printf("デモ注文の作成に失敗: %v", err)
			return
		}
		if err := s.queries.CreateOrderItem(c.Request.Context(), ordersdb.CreateOrderItemParams{
			OrderID:   orderID,
			ProductID: "demo-product",
			Name:      "Medidor Digital",
			Price:     120.50,
			Qty:       1,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "SEED_FAILED"})
			log.Printf("デモ注文明細の作成に失敗: %v", err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"orderId": orderID, "number": number})
	}
}
