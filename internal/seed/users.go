package seed

import (
	"context"
	"errors"
	"fmt"

	"contestatii/internal/auth"
	"contestatii/pkg/types"

	"github.com/sirupsen/logrus"
)

type UserStore interface {
	UserByEmail(ctx context.Context, email string) (*types.User, error)
	Create(ctx context.Context, user *types.User) error
}

// DemoUser is the account the demo data is attributed to.
var DemoUser = types.User{
	Name:  "Operator OCPI",
	Email: "operator@ocpi.example.ro",
}

// SeedUser creates the demo account unless one with the same email already
// exists. The existing or new user is returned.
func SeedUser(ctx context.Context, repo UserStore, password string, logger logrus.FieldLogger) (*types.User, error) {
	existing, err := repo.UserByEmail(ctx, DemoUser.Email)
	if err == nil {
		logger.WithField("email", existing.Email).Info("demo user already exists")
		return existing, nil
	}
	if !errors.Is(err, types.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to fetch demo user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := DemoUser
	user.PasswordHash = hash

	if err := repo.Create(ctx, &user); err != nil {
		return nil, fmt.Errorf("failed to create demo user: %w", err)
	}

	logger.WithField("email", user.Email).Info("demo user created")

	return &user, nil
}
