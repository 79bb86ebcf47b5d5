// Package gateway はリバースプロキシGatewayサービスの内部実装を提供する。
//
// 外部からアクセス可能な唯一のサービスであり、パスプレフィックスごとの
// ルーティングテーブルに従ってauth/catalog/seller/ordersへリクエストを
// 転送する。/api/seller配下はトークンのrole・planクレームによる認可を
// 通過したリクエストのみ転送する。バックエンドが返すSet-Cookieヘッダーは
// ブラウザがgatewayのオリジンで使えるよう属性を書き換える。
package gateway
