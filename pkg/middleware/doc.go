// Package middleware は各サービスで共有するGinミドルウェアを提供する。
//
// JWTセッショントークンの発行・検証、CORS、パニックリカバリを含む。
// トークンのクレーム構造（id, email, role, plan, name）は全サービスで
// 共通であり、gatewayと各バックエンドの双方が独立に検証する。
package middleware
