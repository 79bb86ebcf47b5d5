// Package seller は販売者向けサービスの内部実装を提供する。
//
// 商品・画像・税設定・財務記録のCRUDと、マルチパートフォームによる
// 画像アップロードを担当する。商品の変更はcatalogサービスのRead Model
// へプッシュ同期される。プラン階層による高度機能の制限はgatewayが
// 行うため、ここではトークンの有効性のみを検証する（多層防御）。
package seller
