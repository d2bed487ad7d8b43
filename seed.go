package auth

import (
	"context"
	"fmt"
)

// SeedUser describes a user created on first start
type SeedUser struct {
	Username string
	Password string
	IsAdmin  bool
}

// DefaultSeedUsers are the accounts available on a fresh database
var DefaultSeedUsers = []SeedUser{
	{Username: "admin", Password: "admin", IsAdmin: true},
	{Username: "user", Password: "user"},
}

// SeedUsers creates every seed user whose username is not taken yet.
// Seed passwords bypass registration rules.
func SeedUsers(ctx context.Context, repo RepositoryManager, hasher PasswordHasher, logger Logger, seeds ...SeedUser) error {
	logger = normalizeLogger(logger)
	if len(seeds) == 0 {
		seeds = DefaultSeedUsers
	}

	for _, seed := range seeds {
		exists, err := repo.Users().ExistsByUsername(ctx, seed.Username)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", seed.Username, err)
		}
		if exists {
			continue
		}

		hash, err := hasher.Hash(seed.Password)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", seed.Username, err)
		}

		record, err := repo.Users().Create(ctx, &User{
			Username:     seed.Username,
			Email:        seed.Username + "@local.test",
			PasswordHash: hash,
			IsAdmin:      seed.IsAdmin,
		})
		if err != nil {
			return fmt.Errorf("seed user %s: %w", seed.Username, err)
		}

		logger.Info("seeded user", "user_id", record.ID, "username", record.Username, "is_admin", record.IsAdmin)
	}

	return nil
}
