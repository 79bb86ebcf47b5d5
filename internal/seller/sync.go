package seller

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gestorelectric/marketplace/pkg/event"
	"github.com/gestorelectric/marketplace/pkg/httpclient"
	"github.com/gestorelectric/marketplace/pkg/middleware"
)

// syncProductToCatalog は商品スナップショットをcatalogのRead Modelへ送信する。
// 同期失敗はログに記録するだけで、リクエスト処理は失敗させない。
// catalog側が一時的に停止していても商品の編集は継続できる。
func (s *Server) syncProductToCatalog(c *gin.Context, productID string) {
	ctx := httpclient.WithUserID(c.Request.Context(), middleware.GetUserID(c))

	p, err := s.queries.GetProductByID(ctx, productID)
	if err != nil {
		log.Printf("catalog同期用の商品取得に失敗: id=%s, error=%v", productID, err)
		return
	}
	images, err := s.queries.ListProductImages(ctx, productID)
	if err != nil {
		log.Printf("catalog同期用の画像取得に失敗: id=%s, error=%v", productID, err)
		return
	}

	payload := event.ProductUpserted{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Stock:      p.Stock,
		Category:   p.Category,
		SellerName: p.SellerName,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
	for _, im := range images {
		payload.Images = append(payload.Images, event.ProductImage{
			URL:   im.URL,
			Alt:   im.Alt,
			Order: int(im.Ord),
		})
	}

	if err := s.catalogClient.PostJSON(ctx, "/internal/products", payload, nil); err != nil {
		log.Printf("catalogへの商品同期に失敗: id=%s, error=%v", productID, err)
		return
	}
	log.Printf("商品をcatalogへ同期: id=%s", productID)
}

// syncProductDeleteToCatalog は商品削除をcatalogのRead Modelへ伝える。
// 同期失敗はログに記録するだけで、リクエスト処理は失敗させない。
func (s *Server) syncProductDeleteToCatalog(c *gin.Context, productID string) {
	ctx := httpclient.WithUserID(c.Request.Context(), middleware.GetUserID(c))

	if err := s.catalogClient.Delete(ctx, fmt.Sprintf("/internal/products/%s", productID)); err != nil {
		log.Printf("catalogへの商品削除同期に失敗: id=%s, error=%v", productID, err)
		return
	}
	log.Printf("商品削除をcatalogへ同期: id=%s", productID)
}
