package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	catalogdb "github.com/gestorelectric/marketplace/internal/catalog/db"
	"github.com/gestorelectric/marketplace/pkg/event"
)

// demoProduct はデモ環境の初期商品定義。
type demoProduct struct {
	name     string
	price    float64
	stock    int64
	category string
	image    string
}

// demoProducts は電気設備マーケットプレイスのデモ商品。
var demoProducts = []demoProduct{
	{name: "Medidor Digital", price: 120.5, stock: 12, category: "Medición", image: "/placeholder/medidor.jpg"},
	{name: "Transformador 5kVA", price: 890, stock: 4, category: "Transformadores", image: "/placeholder/trafo.jpg"},
	{name: "Cable THHN 12AWG", price: 45.9, stock: 0, category: "Cables", image: "/placeholder/cable.jpg"},
	{name: "Interruptor Termomagnético 20A", price: 35.0, stock: 30, category: "Protecciones", image: "/placeholder/breaker.jpg"},
}

// seedDemoCatalog は商品テーブルが空の場合にデモ商品とカテゴリを投入する。
func (s *Server) seedDemoCatalog() error {
	ctx := context.Background()

	count, err := s.queries.CountProducts(ctx)
	if err != nil {
		return fmt.Errorf("商品数の取得に失敗: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, dp := range demoProducts {
		imagesJSON, err := json.Marshal([]event.ProductImage{{URL: dp.image, Alt: dp.name, Order: 0}})
		if err != nil {
			return fmt.Errorf("画像JSONのシリアライズに失敗: %w", err)
		}
		if err := s.queries.UpsertProduct(ctx, catalogdb.UpsertProductParams{
			ID:         uuid.New().String(),
			Name:       dp.name,
			Price:      dp.price,
			Stock:      dp.stock,
			Category:   dp.category,
			SellerName: "GestorElectric Demo",
			ImagesJSON: string(imagesJSON),
			CreatedAt:  time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		}); err != nil {
			return fmt.Errorf("デモ商品 %s の作成に失敗: %w", dp.name, err)
		}
		if err := s.queries.CreateCategory(ctx, dp.category); err != nil {
			return fmt.Errorf("デモカテゴリ %s の作成に失敗: %w", dp.category, err)
		}
	}

	log.Printf("デモカタログを投入しました: %d件", len(demoProducts))
	return nil
}
