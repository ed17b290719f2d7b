package usecase

import (
	"context"
	"fmt"
	"time"

	"NewsPolarity/internal/domain"
	"NewsPolarity/internal/ports"
)

// DrainStaging concatenates every recent batch in key order and deletes each one once read.
// domain.ErrNothingStaged is passed through unchanged.
func DrainStaging(ctx context.Context, store ports.StagingStore, maxAge time.Duration) ([]domain.RawArticle, error) {
	keys, err := store.ListRecent(ctx, maxAge)
	if err != nil {
		return nil, err
	}

	var rows []domain.RawArticle
	for _, key := range keys {
		batch, err := store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read batch %s: %w", key, err)
		}
		rows = append(rows, batch...)

		if err := store.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("remove batch %s: %w", key, err)
		}
	}
	return rows, nil
}
