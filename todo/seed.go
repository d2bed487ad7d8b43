package todo

import (
	"context"
	"fmt"

	auth "github.com/goliatone/go-todo-auth"
)

// SeedTodo is a todo created on first start, owned by Owner
type SeedTodo struct {
	Title    string
	IsClosed bool
	Owner    string
}

var DefaultSeedTodos = []SeedTodo{
	{Title: "OpenAdmin", Owner: "admin"},
	{Title: "ClosedAdmin", IsClosed: true, Owner: "admin"},
	{Title: "OpenUser", Owner: "user"},
	{Title: "ClosedUser", IsClosed: true, Owner: "user"},
}

// Seed creates seeds when the todo table is empty. Owners are looked up by
// username and must exist.
func Seed(ctx context.Context, repo Repository, users auth.UserFinder, logger auth.Logger, seeds ...SeedTodo) error {
	if len(seeds) == 0 {
		seeds = DefaultSeedTodos
	}

	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed todos: %w", err)
	}
	if count > 0 {
		return nil
	}

	log := auth.LoggerFor(ctx, logger)
	for _, seed := range seeds {
		owner, err := users.GetByUsername(ctx, seed.Owner)
		if err != nil {
			return fmt.Errorf("seed todo %s: owner %s: %w", seed.Title, seed.Owner, err)
		}

		record, err := repo.Create(ctx, &Todo{
			Title:       seed.Title,
			IsClosed:    seed.IsClosed,
			CreatedByID: owner.ID,
			UpdatedByID: &owner.ID,
		})
		if err != nil {
			return fmt.Errorf("seed todo %s: %w", seed.Title, err)
		}

		log.Info("seeded todo", "todo_id", record.ID, "title", record.Title, "owner", seed.Owner)
	}

	return nil
}
