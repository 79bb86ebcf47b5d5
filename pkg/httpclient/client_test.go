package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestGetJSON はGETリクエストとレスポンスのデシリアライズを検証する。
func TestGetJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/p-1" {
			t.Errorf("パス: got %s, want /products/p-1", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"p-1","price":120.5}`)
	}))
	t.Cleanup(server.Close)

	client := New(server.URL)

	var result struct {
		ID    string  `json:"id"`
		Price float64 `json:"price"`
	}
	if err := client.GetJSON(t.Context(), "/products/p-1", &result); err != nil {
		t.Fatalf("GetJSONに失敗: %v", err)
	}
	if result.ID != "p-1" {
		t.Errorf("ID: got %q, want p-1", result.ID)
	}
	if result.Price != 120.5 {
		t.Errorf("Price: got %v, want 120.5", result.Price)
	}
}

// TestPostJSON はPOSTリクエストのボディ送信を検証する。
func TestPostJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type: got %q, want application/json", ct)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("ボディのデコードに失敗: %v", err)
		}
		if body["name"] != "Medidor" {
			t.Errorf("name: got %v, want Medidor", body["name"])
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true}`)
	}))
	t.Cleanup(server.Close)

	client := New(server.URL)
	if err := client.PostJSON(t.Context(), "/internal/products", map[string]string{"name": "Medidor"}, nil); err != nil {
		t.Fatalf("PostJSONに失敗: %v", err)
	}
}

// TestStatusError は2xx以外のレスポンスがStatusErrorになることを検証する。
func TestStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"NOT_FOUND"}`)
	}))
	t.Cleanup(server.Close)

	client := New(server.URL)
	err := client.GetJSON(t.Context(), "/products/missing", nil)
	if err == nil {
		t.Fatal("エラーが返りませんでした")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("StatusErrorではありません: %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode: got %d, want %d", statusErr.StatusCode, http.StatusNotFound)
	}
}

// TestUserIDPropagation はコンテキストのユーザーIDがヘッダーとして伝播することを検証する。
func TestUserIDPropagation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-User-ID"); got != "user-1" {
			t.Errorf("X-User-ID: got %q, want user-1", got)
		}
		fmt.Fprint(w, `{}`)
	}))
	t.Cleanup(server.Close)

	client := New(server.URL)
	ctx := WithUserID(t.Context(), "user-1")
	if err := client.GetJSON(ctx, "/", nil); err != nil {
		t.Fatalf("GetJSONに失敗: %v", err)
	}
}

// TestDelete はDELETEリクエストの送信を検証する。
func TestDelete(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("メソッド: got %s, want DELETE", r.Method)
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	t.Cleanup(server.Close)

	client := New(server.URL)
	if err := client.Delete(t.Context(), "/internal/products/p-1"); err != nil {
		t.Fatalf("Deleteに失敗: %v", err)
	}
}
