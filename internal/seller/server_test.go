package seller

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	sellerdb "github.com/gestorelectric/marketplace/internal/seller/db"
	"github.com/gestorelectric/marketplace/pkg/httpclient"
	"github.com/gestorelectric/marketplace/pkg/middleware"
	"github.com/gestorelectric/marketplace/pkg/migration"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret"

// catalogMock はcatalog同期呼び出しの記録。
type catalogMock struct {
	server *httptest.Server
	// upserts は受信した商品スナップショット数。
	upserts atomic.Int64
	// deletes は受信した削除数。
	deletes atomic.Int64
}

// setupTestServer はテスト用の販売者サーバーをインメモリSQLiteで構築する。
// catalog同期先はモックサーバーに差し替える。
func setupTestServer(t *testing.T) (*Server, *gin.Engine, *catalogMock) {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("インメモリDBの作成に失敗: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	if err := migration.Run(sqlDB, migrationsFS, "migrations"); err != nil {
		t.Fatalf("マイグレーション適用に失敗: %v", err)
	}

	mock := &catalogMock{}
	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			mock.deletes.Add(1)
		} else {
			mock.upserts.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true}`)
	}))
	t.Cleanup(mock.server.Close)

	router := gin.New()
	s := &Server{
		router:        router,
		port:          "0",
		queries:       sellerdb.New(sqlDB),
		db:            sqlDB,
		uploadDir:     t.TempDir(),
		catalogClient: httpclient.New(mock.server.URL),
	}
	s.setupRoutes(testSecret)

	return s, router, mock
}

// sellerToken はsellerロールのテストトークンを発行するヘルパー関数。
func sellerToken(t *testing.T) string {
	t.Helper()
	token, err := middleware.GenerateToken(testSecret, "seller-1", "seller@ge.com", "Electro SA",
		middleware.RoleSeller, middleware.PlanPro)
	if err != nil {
		t.Fatalf("トークン生成に失敗: %v", err)
	}
	return token
}

// doRequest は認証付きテストリクエストを実行し、レスポンスを返すヘルパー関数。
func doRequest(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewReader(jsonBytes)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+sellerToken(t))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// parseJSON はレスポンスボディをmapにデコードするヘルパー関数。
func parseJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("JSONのデコードに失敗: %v, body=%s", err, w.Body.String())
	}
	return result
}

// parseJSONArray はレスポンスボディをスライスにデコードするヘルパー関数。
func parseJSONArray(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var result []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("JSON配列のデコードに失敗: %v, body=%s", err, w.Body.String())
	}
	return result
}

// createTestProduct は商品作成エンドポイント経由で商品を作成し、IDを返すヘルパー関数。
func createTestProduct(t *testing.T, router *gin.Engine, name string, price float64, stock int64) string {
	t.Helper()
	w := doRequest(t, router, http.MethodPost, "/seller/products", map[string]any{
		"name":     name,
		"price":    price,
		"stock":    stock,
		"category": "Medición",
		"images": []map[string]any{
			{"url": "/uploads/1-a.jpg", "alt": "正面", "order": 0},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("テスト商品の作成に失敗: status=%d, body=%s", w.Code, w.Body.String())
	}
	id, ok := parseJSON(t, w)["id"].(string)
	if !ok || id == "" {
		t.Fatal("作成レスポンスにidがありません")
	}
	return id
}

// TestHandleCreateProduct は商品作成ハンドラのテスト。
func TestHandleCreateProduct(t *testing.T) {
	t.Parallel()

	t.Run("正常に商品を作成できcatalogに同期される", func(t *testing.T) {
		t.Parallel()
		_, router, mock := setupTestServer(t)

		w := doRequest(t, router, http.MethodPost, "/seller/products", map[string]any{
			"name":  "Medidor Digital",
			"price": 120.5,
			"stock": 12,
			"images": []map[string]any{
				{"url": "/uploads/1-a.jpg", "alt": "正面", "order": 0},
				{"url": "/uploads/2-b.jpg", "order": 1},
			},
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("ステータスコード: got %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
		}

		result := parseJSON(t, w)
		if result["name"] != "Medidor Digital" {
			t.Errorf("name: got %v, want Medidor Digital", result["name"])
		}
		if result["price"] != 120.5 {
			t.Errorf("price: got %v, want 120.5", result["price"])
		}
		// 販売者名はクレームの表示名が補完される
		if result["sellerName"] != "Electro SA" {
			t.Errorf("sellerName: got %v, want Electro SA", result["sellerName"])
		}
		images, ok := result["images"].([]any)
		if !ok || len(images) != 2 {
			t.Fatalf("images: got %v, want 2件の配列", result["images"])
		}
		// altが無い画像には連番の代替テキストが補完される
		second := images[1].(map[string]any)
		if second["alt"] != "img-2" {
			t.Errorf("2枚目のalt: got %v, want img-2", second["alt"])
		}

		if mock.upserts.Load() != 1 {
			t.Errorf("catalogへの同期数: got %d, want 1", mock.upserts.Load())
		}
	})

	t.Run("価格が未指定の場合はMISSING_FIELDS", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		w := doRequest(t, router, http.MethodPost, "/seller/products", map[string]any{
			"name":  "価格なし",
			"stock": 5,
		})

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
		result := parseJSON(t, w)
		if result["error"] != "MISSING_FIELDS" {
			t.Errorf("error: got %v, want MISSING_FIELDS", result["error"])
		}
	})

	t.Run("在庫0は有効な値として受け付ける", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		w := doRequest(t, router, http.MethodPost, "/seller/products", map[string]any{
			"name":  "在庫切れ商品",
			"price": 45.9,
			"stock": 0,
		})

		if w.Code != http.StatusCreated {
			t.Errorf("ステータスコード: got %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
		}
	})

	t.Run("認証が無い場合はUnauthorized", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/seller/products", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})
}

// TestHandleListProducts は商品一覧と件数取得のテスト。
func TestHandleListProducts(t *testing.T) {
	t.Parallel()

	_, router, _ := setupTestServer(t)

	createTestProduct(t, router, "商品A", 100, 5)
	createTestProduct(t, router, "商品B", 200, 3)

	w := doRequest(t, router, http.MethodGet, "/seller/products", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
	}
	result := parseJSONArray(t, w)
	if len(result) != 2 {
		t.Errorf("配列の長さ: got %d, want 2", len(result))
	}

	w2 := doRequest(t, router, http.MethodGet, "/seller/products/count", nil)
	count := parseJSON(t, w2)
	if count["count"] != float64(2) {
		t.Errorf("count: got %v, want 2", count["count"])
	}
}

// TestHandleUpdateProduct は商品更新ハンドラのテスト。
func TestHandleUpdateProduct(t *testing.T) {
	t.Parallel()

	t.Run("指定フィールドのみ更新され残りは維持される", func(t *testing.T) {
		t.Parallel()
		_, router, mock := setupTestServer(t)

		id := createTestProduct(t, router, "元の名前", 100, 5)

		w := doRequest(t, router, http.MethodPut, "/seller/products/"+id, map[string]any{
			"price": 150.0,
		})

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
		}
		result := parseJSON(t, w)
		if result["name"] != "元の名前" {
			t.Errorf("name: got %v, want 元の名前", result["name"])
		}
		if result["price"] != float64(150) {
			t.Errorf("price: got %v, want 150", result["price"])
		}
		// 画像セットは指定が無ければ維持される
		images, _ := result["images"].([]any)
		if len(images) != 1 {
			t.Errorf("images: got %d件, want 1件", len(images))
		}

		// 作成と更新で2回同期される
		if mock.upserts.Load() != 2 {
			t.Errorf("catalogへの同期数: got %d, want 2", mock.upserts.Load())
		}
	})

	t.Run("imagesを指定すると画像セットが置き換わる", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		id := createTestProduct(t, router, "画像更新", 100, 5)

		w := doRequest(t, router, http.MethodPut, "/seller/products/"+id, map[string]any{
			"images": []map[string]any{
				{"url": "/uploads/3-c.jpg", "alt": "新画像1", "order": 0},
				{"url": "/uploads/4-d.jpg", "alt": "新画像2", "order": 1},
			},
		})

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		images, _ := parseJSON(t, w)["images"].([]any)
		if len(images) != 2 {
			t.Fatalf("images: got %d件, want 2件", len(images))
		}
		first := images[0].(map[string]any)
		if first["url"] != "/uploads/3-c.jpg" {
			t.Errorf("1枚目のurl: got %v, want /uploads/3-c.jpg", first["url"])
		}
	})

	t.Run("存在しない商品の更新はNotFound", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		w := doRequest(t, router, http.MethodPut, "/seller/products/nonexistent", map[string]any{
			"price": 1.0,
		})

		if w.Code != http.StatusNotFound {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

// TestHandleDeleteProduct は商品削除ハンドラのテスト。
func TestHandleDeleteProduct(t *testing.T) {
	t.Parallel()

	t.Run("正常に削除されcatalogにも削除が伝わる", func(t *testing.T) {
		t.Parallel()
		_, router, mock := setupTestServer(t)

		id := createTestProduct(t, router, "削除対象", 100, 5)

		w := doRequest(t, router, http.MethodDelete, "/seller/products/"+id, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}

		// 削除後の一覧は空
		w2 := doRequest(t, router, http.MethodGet, "/seller/products", nil)
		if got := len(parseJSONArray(t, w2)); got != 0 {
			t.Errorf("削除後の商品数: got %d, want 0", got)
		}

		if mock.deletes.Load() != 1 {
			t.Errorf("catalogへの削除同期数: got %d, want 1", mock.deletes.Load())
		}
	})

	t.Run("存在しない商品の削除はNotFound", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		w := doRequest(t, router, http.MethodDelete, "/seller/products/nonexistent", nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

// TestHandleTaxes は税設定CRUDのテスト。
func TestHandleTaxes(t *testing.T) {
	t.Parallel()

	t.Run("作成と一覧と削除の一連の流れ", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		w := doRequest(t, router, http.MethodPost, "/seller/taxes", map[string]any{
			"region": "Lima",
			"rate":   18.0,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("ステータスコード: got %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
		}
		created := parseJSON(t, w)
		if created["region"] != "Lima" {
			t.Errorf("region: got %v, want Lima", created["region"])
		}

		w2 := doRequest(t, router, http.MethodGet, "/seller/taxes", nil)
		list := parseJSONArray(t, w2)
		if len(list) != 1 {
			t.Fatalf("税設定数: got %d, want 1", len(list))
		}

		id := int64(created["id"].(float64))
		w3 := doRequest(t, router, http.MethodDelete, fmt.Sprintf("/seller/taxes/%d", id), nil)
		if w3.Code != http.StatusOK {
			t.Fatalf("削除のステータスコード: got %d, want %d", w3.Code, http.StatusOK)
		}

		w4 := doRequest(t, router, http.MethodGet, "/seller/taxes", nil)
		if got := len(parseJSONArray(t, w4)); got != 0 {
			t.Errorf("削除後の税設定数: got %d, want 0", got)
		}
	})

	t.Run("地域が未指定の場合はMISSING_FIELDS", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		w := doRequest(t, router, http.MethodPost, "/seller/taxes", map[string]any{"rate": 18.0})
		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("IDが数値でない削除はBadRequest", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		w := doRequest(t, router, http.MethodDelete, "/seller/taxes/abc", nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

// TestHandleFinance は財務記録のテスト。
func TestHandleFinance(t *testing.T) {
	t.Parallel()

	t.Run("記録が種別ごとに分類されて返る", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		for _, e := range []map[string]any{
			{"kind": "income", "concept": "販売売上", "amount": 500.0},
			{"kind": "income", "concept": "配送料収入", "amount": 50.0},
			{"kind": "expense", "concept": "仕入れ", "amount": 300.0},
		} {
			w := doRequest(t, router, http.MethodPost, "/seller/finance", e)
			if w.Code != http.StatusCreated {
				t.Fatalf("財務記録の作成に失敗: status=%d, body=%s", w.Code, w.Body.String())
			}
		}

		w := doRequest(t, router, http.MethodGet, "/seller/finance", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		result := parseJSON(t, w)
		ingresos, _ := result["ingresos"].([]any)
		gastos, _ := result["gastos"].([]any)
		if len(ingresos) != 2 {
			t.Errorf("ingresos: got %d件, want 2件", len(ingresos))
		}
		if len(gastos) != 1 {
			t.Errorf("gastos: got %d件, want 1件", len(gastos))
		}
	})

	t.Run("不正な種別はKIND_INVALID", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		w := doRequest(t, router, http.MethodPost, "/seller/finance", map[string]any{
			"kind": "loan", "concept": "借入", "amount": 100.0,
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
		result := parseJSON(t, w)
		if result["error"] != "KIND_INVALID" {
			t.Errorf("error: got %v, want KIND_INVALID", result["error"])
		}
	})

	t.Run("CSVエクスポートにヘッダーと記録が含まれる", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		w := doRequest(t, router, http.MethodPost, "/seller/finance", map[string]any{
			"kind": "income", "concept": "販売売上", "amount": 500.0,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("財務記録の作成に失敗: status=%d", w.Code)
		}

		w2 := doRequest(t, router, http.MethodGet, "/seller/finance/export", nil)
		if w2.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w2.Code, http.StatusOK)
		}
		if ct := w2.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Errorf("Content-Type: got %q, want text/csv", ct)
		}
		if cd := w2.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
			t.Errorf("Content-Disposition: got %q, want attachment", cd)
		}
		body := w2.Body.String()
		if !strings.HasPrefix(body, "id,kind,concept,amount,occurred_at") {
			t.Errorf("CSVヘッダー行がありません: %q", body)
		}
		if !strings.Contains(body, "販売売上") {
			t.Errorf("CSVに記録が含まれていません: %q", body)
		}
	})
}

// TestHandleAnalyticsSummary はアナリティクス集計のテスト。
func TestHandleAnalyticsSummary(t *testing.T) {
	t.Parallel()

	_, router, _ := setupTestServer(t)

	createTestProduct(t, router, "商品A", 100, 10)
	createTestProduct(t, router, "商品B", 50, 2)

	w := doRequest(t, router, http.MethodGet, "/seller/analytics/summary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
	}

	result := parseJSON(t, w)
	if result["total_products"] != float64(2) {
		t.Errorf("total_products: got %v, want 2", result["total_products"])
	}
	if result["total_stock"] != float64(12) {
		t.Errorf("total_stock: got %v, want 12", result["total_stock"])
	}
	// 在庫金額 = 100*10 + 50*2
	if result["inventory_value"] != float64(1100) {
		t.Errorf("inventory_value: got %v, want 1100", result["inventory_value"])
	}
	// 在庫2の商品Bが在庫僅少としてカウントされる
	if result["low_stock"] != float64(1) {
		t.Errorf("low_stock: got %v, want 1", result["low_stock"])
	}
}

// TestHandleSecurityEvents は監査イベント記録のテスト。
func TestHandleSecurityEvents(t *testing.T) {
	t.Parallel()

	t.Run("イベントが無い場合は空配列を返す", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		w := doRequest(t, router, http.MethodGet, "/seller/security/events", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		if got := len(parseJSONArray(t, w)); got != 0 {
			t.Errorf("イベント数: got %d, want 0", got)
		}
	})

	t.Run("商品操作が監査イベントとして記録される", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		id := createTestProduct(t, router, "監査対象", 100, 5)
		w := doRequest(t, router, http.MethodDelete, "/seller/products/"+id, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("削除に失敗: status=%d", w.Code)
		}

		w2 := doRequest(t, router, http.MethodGet, "/seller/security/events", nil)
		events := parseJSONArray(t, w2)
		if len(events) != 2 {
			t.Fatalf("イベント数: got %d, want 2", len(events))
		}
		// 新しい順に並ぶため先頭が削除イベント
		if events[0]["action"] != "product.delete" {
			t.Errorf("最新イベントのaction: got %v, want product.delete", events[0]["action"])
		}
		if events[0]["user_id"] != "seller-1" {
			t.Errorf("user_id: got %v, want seller-1", events[0]["user_id"])
		}
	})
}

// TestHandleUpload は画像アップロードのテスト。
func TestHandleUpload(t *testing.T) {
	t.Parallel()

	t.Run("ファイルを保存しURL一覧を返す", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("files", "photo one.jpg")
		if err != nil {
			t.Fatalf("マルチパートの作成に失敗: %v", err)
		}
		if _, err := part.Write([]byte("fake-jpeg-bytes")); err != nil {
			t.Fatalf("ファイル内容の書き込みに失敗: %v", err)
		}
		if err := mw.Close(); err != nil {
			t.Fatalf("マルチパートのクローズに失敗: %v", err)
		}

		req := httptest.NewRequest(http.MethodPost, "/seller/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+sellerToken(t))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("ステータスコード: got %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
		}

		results := parseJSONArray(t, w)
		if len(results) != 1 {
			t.Fatalf("結果数: got %d, want 1", len(results))
		}
		url, _ := results[0]["url"].(string)
		if !strings.HasPrefix(url, "/uploads/") {
			t.Errorf("url: got %q, want /uploads/プレフィックス", url)
		}
		if !strings.HasSuffix(url, ".jpg") {
			t.Errorf("url: got %q, want .jpg拡張子", url)
		}
		// 元ファイル名の空白は保存名から除去される
		if strings.Contains(url, " ") {
			t.Errorf("urlに空白が含まれています: %q", url)
		}
	})

	t.Run("ファイルが無い場合はNO_FILES", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		if err := mw.Close(); err != nil {
			t.Fatalf("マルチパートのクローズに失敗: %v", err)
		}

		req := httptest.NewRequest(http.MethodPost, "/seller/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+sellerToken(t))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

// TestSafeUploadName は保存用ファイル名の生成を検証する。
func TestSafeUploadName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		original string
		wantExt  string
	}{
		{"photo.jpg", ".jpg"},
		{"../../etc/passwd", ""},
		{"日本語ファイル名.png", ".png"},
		{"a b c.jpeg", ".jpeg"},
	}

	for _, tt := range tests {
		got := safeUploadName(tt.original)
		if strings.ContainsAny(got, "/\\ ") {
			t.Errorf("%q: 保存名に不正な文字が含まれています: %q", tt.original, got)
		}
		if tt.wantExt != "" && !strings.HasSuffix(got, tt.wantExt) {
			t.Errorf("%q: got %q, want %q拡張子", tt.original, got, tt.wantExt)
		}
	}
}
