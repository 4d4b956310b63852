package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MrSnakeDoc/linkdrop/internal/domain"
)

// SaveCounters stores one employee's usage counters.
func (s *Store) SaveCounters(ctx context.Context, employeeID string, cs domain.CounterSet) error {
	data, err := json.Marshal(cs)
	if err != nil {
		return fmt.Errorf("failed to marshal counters: %w", err)
	}

	if err := s.client.Set(ctx, CountersKey(employeeID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save counters: %w", err)
	}
	if err := s.client.SAdd(ctx, KeyAllCounters, employeeID).Err(); err != nil {
		return fmt.Errorf("failed to add counters to set: %w", err)
	}
	return nil
}

// GetAllCounters retrieves every employee's usage counters.
func (s *Store) GetAllCounters(ctx context.Context) (map[string]domain.CounterSet, error) {
	ids, err := s.client.SMembers(ctx, KeyAllCounters).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get counter IDs: %w", err)
	}

	out := make(map[string]domain.CounterSet, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, CountersKey(id)).Bytes()
		if err != nil {
			continue
		}
		var cs domain.CounterSet
		if err := json.Unmarshal(data, &cs); err != nil {
			continue
		}
		out[id] = cs
	}
	return out, nil
}

// SaveContribution stores one contributor's stats.
func (s *Store) SaveContribution(ctx context.Context, contributorID string, st domain.ContributionStats) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal contribution stats: %w", err)
	}

	if err := s.client.Set(ctx, ContributionKey(contributorID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save contribution stats: %w", err)
	}
	if err := s.client.SAdd(ctx, KeyAllContributions, contributorID).Err(); err != nil {
		return fmt.Errorf("failed to add contribution to set: %w", err)
	}
	return nil
}

// GetAllContributions retrieves every contributor's stats.
func (s *Store) GetAllContributions(ctx context.Context) (map[string]domain.ContributionStats, error) {
	ids, err := s.client.SMembers(ctx, KeyAllContributions).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get contributor IDs: %w", err)
	}

	out := make(map[string]domain.ContributionStats, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, ContributionKey(id)).Bytes()
		if err != nil {
			continue
		}
		var st domain.ContributionStats
		if err := json.Unmarshal(data, &st); err != nil {
			continue
		}
		out[id] = st
	}
	return out, nil
}
