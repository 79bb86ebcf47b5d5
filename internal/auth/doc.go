// Package auth は認証サービスの内部実装を提供する。
//
// ユーザーの登録・ログイン・プラン変更を担当し、セッショントークン
// （HS256署名、7日有効）を発行してHTTP-only Cookieとして返す。
// パスワードはbcryptでハッシュ化して保存する。
package auth
