// Package catalog は公開カタログサービスの内部実装を提供する。
//
// 商品・カテゴリの読み取り専用Read Modelを保持する。商品データは
// sellerサービスが変更のたびに内部エンドポイント経由でプッシュしてくる。
// 読み取りの失敗はブラウザに伝播せず、空の結果にフォールバックする。
package catalog
