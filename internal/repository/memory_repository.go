// internal/repository/memory_repository.go
package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"panel-link/internal/model"
)

// memoryCommandRepository keeps history in process memory, bounded by capacity
type memoryCommandRepository struct {
	mu       sync.RWMutex
	records  []*model.CommandRecord
	capacity int
}

// NewMemoryCommandRepository creates an in-memory repository holding at most capacity records
func NewMemoryCommandRepository(capacity int) CommandRepository {
	if capacity <= 0 {
		capacity = MaxListLimit
	}
	return &memoryCommandRepository{capacity: capacity}
}

func (r *memoryCommandRepository) Create(ctx context.Context, record *model.CommandRecord) error {
	if record == nil {
		return fmt.Errorf("record is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *record
	r.records = append(r.records, &copied)
	if len(r.records) > r.capacity {
		r.records = r.records[len(r.records)-r.capacity:]
	}
	return nil
}

func (r *memoryCommandRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CommandRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, record := range r.records {
		if record.ID == id {
			copied := *record
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: command record %s", ErrNotFound, id)
}

func (r *memoryCommandRepository) List(ctx context.Context, filter *CommandFilter) ([]*model.CommandRecord, error) {
	if filter == nil {
		filter = &CommandFilter{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.CommandRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		record := r.records[i]
		if filter.Port != "" && record.Port != filter.Port {
			continue
		}
		if filter.Cmd != "" && record.Cmd != filter.Cmd {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		copied := *record
		out = append(out, &copied)
	}

	// newest first; later inserts win ties
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SentAt.After(out[j].SentAt)
	})

	if limit := filter.EffectiveLimit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryCommandRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.records[:0]
	var deleted int64
	for _, record := range r.records {
		if record.SentAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, record)
	}
	r.records = kept
	return deleted, nil
}
