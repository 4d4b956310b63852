package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/linkdrop/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SavePool stores the full pool snapshot, head first. The snapshot is
// written as one value so a restart restores the exact FIFO order.
func (s *Store) SavePool(ctx context.Context, links []domain.Link) error {
	data, err := json.Marshal(links)
	if err != nil {
		return fmt.Errorf("failed to marshal pool: %w", err)
	}

	if err := s.client.Set(ctx, KeyPool, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save pool: %w", err)
	}
	return nil
}

// GetPool retrieves the pool snapshot, head first. An absent key is an
// empty pool, not an error.
func (s *Store) GetPool(ctx context.Context) ([]domain.Link, error) {
	data, err := s.client.Get(ctx, KeyPool).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}

	var links []domain.Link
	if err := json.Unmarshal(data, &links); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pool: %w", err)
	}
	return links, nil
}
