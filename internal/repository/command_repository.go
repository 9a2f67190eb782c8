// internal/repository/command_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"panel-link/internal/database"
	"panel-link/internal/model"
	"panel-link/internal/utils"
)

// commandRepository implements CommandRepository on PostgreSQL
type commandRepository struct {
	db     *database.DB
	logger *utils.ServiceLogger
}

// NewCommandRepository creates a new PostgreSQL command repository
func NewCommandRepository(db *database.DB, logger *zap.Logger) CommandRepository {
	return &commandRepository{
		db:     db,
		logger: utils.NewServiceLogger(logger, "command-repository"),
	}
}

// Create inserts a record
func (r *commandRepository) Create(ctx context.Context, record *model.CommandRecord) error {
	query := `
		INSERT INTO command_history (
			id, command_id, cmd, args, port, status, error_message, sent_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	start := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		record.ID, record.CommandID, record.Cmd, record.Args,
		record.Port, record.Status, record.ErrorMessage, record.SentAt,
	)
	r.logger.LogDatabaseQuery(query, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to create command record: %w", err)
	}

	return nil
}

// GetByID retrieves a record by ID
func (r *commandRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CommandRecord, error) {
	query := `
		SELECT id, command_id, cmd, args, port, status, error_message, sent_at
		FROM command_history WHERE id = $1
	`

	record := &model.CommandRecord{}
	start := time.Now()
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID, &record.CommandID, &record.Cmd, &record.Args,
		&record.Port, &record.Status, &record.ErrorMessage, &record.SentAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.LogDatabaseQuery(query, time.Since(start), nil)
		return nil, fmt.Errorf("%w: command record %s", ErrNotFound, id)
	}
	r.logger.LogDatabaseQuery(query, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to get command record: %w", err)
	}

	return record, nil
}

// List returns records matching filter, newest first
func (r *commandRepository) List(ctx context.Context, filter *CommandFilter) ([]*model.CommandRecord, error) {
	if filter == nil {
		filter = &CommandFilter{}
	}

	var conditions []string
	var args []interface{}

	if filter.Port != "" {
		args = append(args, filter.Port)
		conditions = append(conditions, fmt.Sprintf("port = $%d", len(args)))
	}
	if filter.Cmd != "" {
		args = append(args, filter.Cmd)
		conditions = append(conditions, fmt.Sprintf("cmd = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT id, command_id, cmd, args, port, status, error_message, sent_at FROM command_history`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.EffectiveLimit())
	query += fmt.Sprintf(" ORDER BY sent_at DESC LIMIT $%d", len(args))

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, args...)
	r.logger.LogDatabaseQuery(query, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list command records: %w", err)
	}
	defer rows.Close()

	var records []*model.CommandRecord
	for rows.Next() {
		record := &model.CommandRecord{}
		if err := rows.Scan(
			&record.ID, &record.CommandID, &record.Cmd, &record.Args,
			&record.Port, &record.Status, &record.ErrorMessage, &record.SentAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan command record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate command records: %w", err)
	}

	return records, nil
}

// DeleteOlderThan prunes records sent before cutoff
func (r *commandRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM command_history WHERE sent_at < $1`

	start := time.Now()
	result, err := r.db.ExecContext(ctx, query, cutoff)
	r.logger.LogDatabaseQuery(query, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old command records: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	r.logger.Info("Old command records deleted", zap.Int64("count", deleted))
	return deleted, nil
}
