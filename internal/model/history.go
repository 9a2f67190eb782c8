// internal/model/history.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// CommandStatus is the outcome of one send attempt
type CommandStatus string

const (
	CommandStatusSent   CommandStatus = "SENT"
	CommandStatusFailed CommandStatus = "FAILED"
)

// CommandRecord is one row of the command history
type CommandRecord struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	CommandID    string        `json:"command_id" db:"command_id"`
	Cmd          string        `json:"cmd" db:"cmd"`
	Args         JSONObject    `json:"args" db:"args"`
	Port         string        `json:"port" db:"port"`
	Status       CommandStatus `json:"status" db:"status"`
	ErrorMessage *string       `json:"error_message,omitempty" db:"error_message"`
	SentAt       time.Time     `json:"sent_at" db:"sent_at"`
}

// NewCommandRecord builds a history row for an envelope written to port
func NewCommandRecord(envelope CommandEnvelope, port string, sendErr error) *CommandRecord {
	record := &CommandRecord{
		ID:        uuid.New(),
		CommandID: envelope.ID,
		Cmd:       envelope.Cmd,
		Args:      JSONObject(envelope.Args),
		Port:      port,
		Status:    CommandStatusSent,
		SentAt:    time.Now().UTC(),
	}
	if sendErr != nil {
		msg := sendErr.Error()
		record.Status = CommandStatusFailed
		record.ErrorMessage = &msg
	}
	return record
}
