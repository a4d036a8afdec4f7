package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Users []struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"users"`
}

// SeedUsers registers every user listed in the YAML file at path through auth,
// so the first-user-is-admin rule applies. Existing emails are skipped.
// It returns the number of users created.
func SeedUsers(ctx context.Context, auth AuthService, path string, logger *slog.Logger) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	created := 0
	for i, u := range sf.Users {
		user, err := auth.Register(ctx, u.Email, u.Password)
		switch {
		case errors.Is(err, ErrUserAlreadyExists):
			continue
		case errors.Is(err, ErrValidation):
			logger.WarnContext(ctx, "skipping invalid seed entry", "index", i, "error", err)
			continue
		case err != nil:
			return created, fmt.Errorf("seed user %d: %w", i, err)
		}
		created++
		logger.InfoContext(ctx, "seeded user", "user_id", user.ID, "role", user.Role)
	}
	return created, nil
}
