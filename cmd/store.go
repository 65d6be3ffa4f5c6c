package main

import (
	"context"

	"github.com/sells-group/parcel-cli/internal/store"
)

// initStore opens the configured context store. noStore skips persistence
// and returns a nil store.
func initStore(ctx context.Context, noStore bool) (store.Store, error) {
	if noStore {
		return nil, nil
	}
	return store.Open(ctx, cfg.Store)
}
