// app/bootstrap.go
package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"asset_borrow_tracker/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminBootstrapper interface {
	CountAdmins(ctx context.Context) (int64, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUserRole(ctx context.Context, userID string, role models.Role) (*models.User, error)
}

// BootstrapFirstAdmin 没有任何管理员时，把 BOOTSTRAP_ADMIN_EMAIL 对应的用户设为管理员（不存在则创建）
func BootstrapFirstAdmin(ctx context.Context, email string, repo AdminBootstrapper) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	n, err := repo.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil // 已经有管理员，跳过
	}

	u, err := repo.FindUserByEmail(ctx, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		name, _, _ := strings.Cut(email, "@")
		u = &models.User{ID: uuid.NewString(), Email: email, Name: name, Role: models.RoleAdmin}
		if err := repo.CreateUser(ctx, u); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if _, err := repo.UpdateUserRole(ctx, u.ID, models.RoleAdmin); err != nil {
			return err
		}
	}
	slog.Info("bootstrap admin ready", "email", email, "user_id", u.ID)
	return nil
}
