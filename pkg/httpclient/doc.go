// Package httpclient はサービス間通信用のHTTPクライアントを提供する。
// sellerからcatalogへの商品同期や、ordersからcatalogへの価格照会に使用する。
package httpclient
