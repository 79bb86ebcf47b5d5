package auth

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	authdb "github.com/gestorelectric/marketplace/internal/auth/db"
	"github.com/gestorelectric/marketplace/pkg/middleware"
)

// demoUser はデモ環境の初期ユーザー定義。
type demoUser struct {
	name     string
	email    string
	password string
	role     middleware.Role
	plan     middleware.Plan
}

// demoUsers は開発・デモ環境向けの初期アカウント。
var demoUsers = []demoUser{
	{name: "Admin", email: "admin@ge.com", password: "admin123", role: middleware.RoleAdmin, plan: middleware.PlanEnterprise},
	{name: "Seller Pro", email: "seller@ge.com", password: "seller123", role: middleware.RoleSeller, plan: middleware.PlanPro},
	{name: "Buyer", email: "buyer@ge.com", password: "buyer123", role: middleware.RoleBuyer, plan: middleware.PlanFree},
}

// seedDemoUsers はユーザーテーブルが空の場合にデモユーザーを投入する。
func (s *Server) seedDemoUsers() error {
	ctx := context.Background()

	count, err := s.queries.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("ユーザー数の取得に失敗: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, du := range demoUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(du.password), bcryptCost)
		if err != nil {
			return fmt.Errorf("パスワードハッシュ生成に失敗: %w", err)
		}
		if err := s.queries.CreateUser(ctx, authdb.CreateUserParams{
			ID:           uuid.New().String(),
			Name:         du.name,
			Email:        du.email,
			PasswordHash: string(hash),
			Role:         string(du.role),
			Plan:         string(du.plan),
		}); err != nil {
			return fmt.Errorf("デモユーザー %s の作成に失敗: %w", du.email, err)
		}
	}

	log.Printf("デモユーザーを投入しました: %d件", len(demoUsers))
	return nil
}
