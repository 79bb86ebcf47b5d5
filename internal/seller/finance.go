package seller

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	sellerdb "github.com/gestorelectric/marketplace/internal/seller/db"
)

// financeEntryResponse は財務記録のJSONレスポンス構造。
type financeEntryResponse struct {
	// ID は記録の一意識別子。
	ID int64 `json:"id"`
	// Kind は種別（income/expense）。
	Kind string `json:"kind"`
	// Concept は内容の説明。
	Concept string `json:"concept"`
	// Amount は金額。
	Amount float64 `json:"amount"`
	// OccurredAt は発生日時。
	OccurredAt string `json:"occurred_at"`
}

// createFinanceEntryRequest は財務記録作成リクエストのJSON構造。
type createFinanceEntryRequest struct {
	// Kind は種別（income/expense）。
	Kind string `json:"kind"`
	// Concept は内容の説明。
	Concept string `json:"concept"`
	// Amount は金額。
	Amount *float64 `json:"amount"`
}

// handleFinance は財務記録の取得を処理するハンドラを返す。
// 収入（ingresos）と支出（gastos）に分けた明細一覧を返す。
func (s *Server) handleFinance() gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := s.queries.ListFinanceEntries(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "FINANCE_FAILED"})
			log.Printf("財務記録の取得に失敗: %v", err)
			return
		}

		ingresos := make([]financeEntryResponse, 0)
		gastos := make([]financeEntryResponse, 0)
		for _, e := range entries {
			entry := financeEntryResponse{
				ID:         e.ID,
				Kind:       e.Kind,
				Concept:    e.Concept,
				Amount:     e.Amount,
				OccurredAt: e.OccurredAt.Format("2006-01-02T15:04:05Z"),
			}
			switch e.Kind {
			case "income":
				ingresos = append(ingresos, entry)
			case "expense":
				gastos = append(gastos, entry)
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"ingresos": ingresos,
			"gastos":   gastos,
		})
	}
}

// handleCreateFinanceEntry は財務記録作成を処理するハンドラを返す。
func (s *Server) handleCreateFinanceEntry() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createFinanceEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_FAILED"})
			return
		}
		if req.Concept == "" || req.Amount == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "MISSING_FIELDS"})
			return
		}
		if req.Kind != "income" && req.Kind != "expense" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "KIND_INVALID"})
			return
		}

		id, err := s.queries.CreateFinanceEntry(c.Request.Context(), sellerdb.CreateFinanceEntryParams{
			Kind:    req.Kind,
			Concept: req.Concept,
			Amount:  *req.Amount,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "CREATE_FINANCE_FAILED"})
			log.Printf("財務記録作成エラー: %v", err)
			return
		}

		s.recordAudit(c, "finance.create", fmt.Sprintf("財務記録 %d（%s）を作成", id, req.Kind))

		c.JSON(http.StatusCreated, gin.H{"id": id})
	}
}

// handleFinanceExport は財務記録のCSVエクスポートを処理するハンドラを返す。
// proプラン以上限定。プランの検証はgateway側で行う。
func (s *Server) handleFinanceExport() gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := s.queries.ListFinanceEntries(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "EXPORT_FAILED"})
			log.Printf("財務記録のエクスポートに失敗: %v", err)
			return
		}

		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="finanzas.csv"`)
		c.Status(http.StatusOK)

		w := csv.NewWriter(c.Writer)
		_ = w.Write([]string{"id", "kind", "concept", "amount", "occurred_at"})
		for _, e := range entries {
			_ = w.Write([]string{
				strconv.FormatInt(e.ID, 10),
				e.Kind,
				e.Concept,
				strconv.FormatFloat(e.Amount, 'f', 2, 64),
				e.OccurredAt.Format("2006-01-02T15:04:05Z"),
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			log.Printf("CSV書き込みエラー: %v", err)
		}
	}
}

// lowStockThreshold は在庫僅少とみなす閾値。
const lowStockThreshold = 5

// handleAnalyticsSummary は販売アナリティクスのサマリー取得を処理するハンドラを返す。
// proプラン以上限定。プランの検証はgateway側で行う。
func (s *Server) handleAnalyticsSummary() gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := s.queries.SummarizeProducts(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ANALYTICS_FAILED"})
			log.Printf("商品集計に失敗: %v", err)
			return
		}
		byCategory, err := s.queries.CountProductsByCategory(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ANALYTICS_FAILED"})
			log.Printf("カテゴリ別集計に失敗: %v", err)
			return
		}
		lowStock, err := s.queries.CountLowStockProducts(c.Request.Context(), lowStockThreshold)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ANALYTICS_FAILED"})
			log.Printf("在庫僅少集計に失敗: %v", err)
			return
		}

		categories := make([]gin.H, 0, len(byCategory))
		for _, cc := range byCategory {
			name := cc.Category
			if name == "" {
				name = "sin-categoria"
			}
			categories = append(categories, gin.H{"category": name, "count": cc.Count})
		}

		c.JSON(http.StatusOK, gin.H{
			"total_products":  summary.TotalProducts,
			"total_stock":     summary.TotalStock,
			"inventory_value": summary.InventoryValue,
			"by_category":     categories,
			"low_stock":       lowStock,
		})
	}
}
