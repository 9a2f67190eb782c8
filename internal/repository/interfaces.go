// internal/repository/interfaces.go
package repository

import (
	"context"
	"errors"
	"time"

	"panel-link/internal/model"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// CommandRepository stores one record per command send attempt
type CommandRepository interface {
	Create(ctx context.Context, record *model.CommandRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.CommandRecord, error)
	List(ctx context.Context, filter *CommandFilter) ([]*model.CommandRecord, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CommandFilter narrows a history listing. Results are newest first.
type CommandFilter struct {
	Port   string              `json:"port,omitempty"`
	Cmd    string              `json:"cmd,omitempty"`
	Status model.CommandStatus `json:"status,omitempty"`
	Limit  int                 `json:"limit"`
}

// DefaultListLimit caps listings without an explicit limit
const DefaultListLimit = 50

// MaxListLimit is the largest accepted limit
const MaxListLimit = 1000

// EffectiveLimit clamps the filter limit into 1..MaxListLimit
func (f *CommandFilter) EffectiveLimit() int {
	if f == nil || f.Limit <= 0 {
		return DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		return MaxListLimit
	}
	return f.Limit
}
