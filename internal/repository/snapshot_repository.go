package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tikulab/tiku-backend/internal/config"
	"github.com/tikulab/tiku-backend/internal/exam"
)

// SnapshotRepository keeps in-progress session snapshots in Redis under
// the key exam_{bankID}. No TTL; the engine clears entries explicitly on
// submission.
type SnapshotRepository struct {
	rdb *redis.Client
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(rdb *redis.Client) *SnapshotRepository {
	return &SnapshotRepository{rdb: rdb}
}

// Load returns the snapshot for a bank, or nil when none exists.
func (r *SnapshotRepository) Load(ctx context.Context, bankID uuid.UUID) (*exam.Snapshot, error) {
	data, err := r.rdb.Get(ctx, config.CacheKey.ExamSnapshotKey(bankID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap exam.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Save writes the snapshot for a bank.
func (r *SnapshotRepository) Save(ctx context.Context, bankID uuid.UUID, snap *exam.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := r.rdb.Set(ctx, config.CacheKey.ExamSnapshotKey(bankID), data, 0).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

// Clear removes the snapshot for a bank.
func (r *SnapshotRepository) Clear(ctx context.Context, bankID uuid.UUID) error {
	if err := r.rdb.Del(ctx, config.CacheKey.ExamSnapshotKey(bankID)).Err(); err != nil {
		return fmt.Errorf("del snapshot: %w", err)
	}
	return nil
}
