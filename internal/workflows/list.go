package workflows

import (
	"context"
	"strings"

	"github.com/PolarWolf314/foldervault/internal/registry"
)

// List returns every registered vault.
func List(ctx context.Context, env *Env) ([]*registry.Vault, error) {
	return env.Registry.List(ctx)
}

// Search returns vaults whose title or path contains query. An empty query
// matches everything.
func Search(ctx context.Context, env *Env, query string) ([]*registry.Vault, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return env.Registry.List(ctx)
	}
	return env.Registry.Search(ctx, query)
}
