package orders

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ordersdb "github.com/gestorelectric/marketplace/internal/orders/db"
	"github.com/gestorelectric/marketplace/pkg/httpclient"
	"github.com/gestorelectric/marketplace/pkg/middleware"
)

// checkoutCustomer はチェックアウトの購入者情報。
type checkoutCustomer struct {
	// Name は購入者名。
	Name string `json:"name"`
	// Email はメールアドレス。
	Email string `json:"email"`
	// Address は配送先住所。
	Address string `json:"address"`
	// City は配送先都市。
	City string `json:"city"`
}

// checkoutItem はチェックアウトの購入商品。
type checkoutItem struct {
	// ProductID は商品ID。
	ProductID string `json:"productId"`
	// Quantity は数量。
	Quantity int64 `json:"quantity"`
}

// checkoutPricing は送料などの価格調整。
type checkoutPricing struct {
	// Shipping は送料。
	Shipping float64 `json:"shipping"`
}

// checkoutRequest はチェックアウトリクエストのJSON構造。
// paymentフィールドはデモのため受け取るだけで使わない。
type checkoutRequest struct {
	// Customer は購入者情報。
	Customer checkoutCustomer `json:"customer"`
	// Items は購入商品の一覧。
	Items []checkoutItem `json:"items"`
	// Pricing は価格調整。省略可。
	Pricing *checkoutPricing `json:"pricing"`
	// Payment は決済情報。検証せず破棄する。
	Payment map[string]any `json:"payment"`
}

// catalogProduct はcatalogサービスの商品レスポンスのうち、
// チェックアウトで必要なフィールドのみを受け取る。
type catalogProduct struct {
	// ID は商品ID。
	ID string `json:"id"`
	// Name は商品名。
	Name string `json:"name"`
	// Price は現在の販売価格。
	Price float64 `json:"price"`
}

// resolvedItem はcatalog照会済みのチェックアウト明細。
type resolvedItem struct {
	productID string
	name      string
	price     float64
	qty       int64
}

// handleCheckout はチェックアウトを処理するハンドラを返す。
//
// 全商品をcatalogに照会して検証を終えてから書き込みを始める。
// 照会に1件でも失敗した場合はその時点で中断し、部分的な注文行は残さない。
// 価格はcatalogの照会結果を採用し、リクエスト中の価格は信用しない。
func (s *Server) handleCheckout() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_FAILED"})
			return
		}
		if req.Customer.Name == "" || req.Customer.Email == "" || len(req.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_FAILED"})
			return
		}

		ctx := httpclient.WithUserID(c.Request.Context(), middleware.GetUserID(c))

		// 書き込み前に全商品を照会する。最初の失敗で全体を中断する。
		resolved := make([]resolvedItem, 0, len(req.Items))
		var total float64
		for _, item := range req.Items {
			qty := item.Quantity
			if qty < 1 {
				qty = 1
			}

			var p catalogProduct
			if err := s.catalogClient.GetJSON(ctx, fmt.Sprintf("/products/%s", item.ProductID), &p); err != nil {
				log.Printf("チェックアウト中断: 商品照会に失敗: id=%s, error=%v", item.ProductID, err)
				c.JSON(http.StatusBadRequest, gin.H{
					"error":      "VALIDATION_FAILED",
					"product_id": item.ProductID,
				})
				return
			}

			resolved = append(resolved, resolvedItem{
				productID: p.ID,
				name:      p.Name,
				price:     p.Price,
				qty:       qty,
			})
			total += p.Price * float64(qty)
		}
		if req.Pricing != nil {
			total += req.Pricing.Shipping
		}

		// 採番と注文・明細の書き込みを1トランザクションで行う
		tx, err := s.db.BeginTx(c.Request.Context(), nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "CHECKOUT_FAILED"})
			log.Printf("トランザクション開始に失敗: %v", err)
			return
		}
		defer func() { _ = tx.Rollback() }()

		qtx := s.queries.WithTx(tx)
		number, err := nextOrderNumber(c, qtx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "CHECKOUT_FAILED"})
			log.Printf("注文番号の採番に失敗: %v", err)
			return
		}

		orderID := uuid.New().String()
		if err := qtx.CreateOrder(c.Request.Context(), ordersdb.CreateOrderParams{
			ID:            orderID,
			Number:        number,
			UserID:        middleware.GetUserID(c),
			CustomerName:  req.Customer.Name,
			CustomerEmail: req.Customer.Email,
			Status:        "pending",
			Total:         total,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "CHECKOUT_FAILED"})
			log.Printf("注文作成エラー: %v", err)
			return
		}
		for _, item := range resolved {
			if err := qtx.CreateOrderItem(c.Request.Context(), ordersdb.CreateOrderItemParams{
				OrderID:   orderID,
				ProductID: item.productID,
				Name:      item.name,
				Price:     item.price,
				Qty:       item.qty,
			}); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "CHECKOUT_FAILED"})
				log.Printf("注文明細の作成に失敗: %v", err)
				return
			}
		}
		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "CHECKOUT_FAILED"})
			log.Printf("トランザクションのコミットに失敗: %v", err)
			return
		}

		log.Printf("注文を受付: number=%s, total=%.2f, items=%d", number, total, len(resolved))

		c.JSON(http.StatusCreated, gin.H{
			"orderId": orderID,
			"number":  number,
			"total":   total,
		})
	}
}
