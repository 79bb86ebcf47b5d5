// Package orders は注文サービスを提供する。
//
// チェックアウトの受付、注文の参照、ステータス更新、ダッシュボード向けの
// 集計を担当する。チェックアウト時の商品名と価格はcatalogサービスへの
// 照会結果をスナップショットとして保存する。
package orders
