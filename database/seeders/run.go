// Package seeders bootstraps data an empty deployment needs.
package seeders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/foodmate/app/models"
	"github.com/shashiranjanraj/foodmate/app/repositories"
	"github.com/shashiranjanraj/foodmate/pkg/logger"
)

// SeedAdmin makes email an active admin, registering it first when the
// directory does not know it. Running it twice is harmless.
func SeedAdmin(ctx context.Context, users repositories.UserRepository, email string) (created bool, err error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, errors.New("seed admin: email is required")
	}

	u, err := users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		u = &models.User{Email: email, Role: models.RoleNone, Status: models.StatusNone}
		if _, err := users.Insert(ctx, u); err != nil && !errors.Is(err, repositories.ErrDuplicate) {
			return false, fmt.Errorf("seed admin: %w", err)
		}
		if u, err = users.FindByEmail(ctx, email); err != nil {
			return false, fmt.Errorf("seed admin: %w", err)
		}
		created = true
	case err != nil:
		return false, fmt.Errorf("seed admin: %w", err)
	}

	if u.Role == models.RoleAdmin && u.Status == models.StatusActive {
		return created, nil
	}
	if _, err := users.GrantRole(ctx, u.ID, models.RoleAdmin); err != nil {
		return created, fmt.Errorf("seed admin: %w", err)
	}
	logger.Info("admin seeded", "email", email, "created", created)
	return created, nil
}
