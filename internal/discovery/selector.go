// internal/discovery/selector.go
package discovery

import (
	"context"

	"panel-link/internal/model"

	"go.uber.org/zap"
)

// Validator confirms that a device node is emitting the panel protocol
type Validator interface {
	Validate(ctx context.Context, realPath string) bool
}

// Selection is the outcome of one selection pass
type Selection struct {
	Device    model.CandidateDevice   `json:"device"`
	Found     bool                    `json:"found"`
	Validated bool                    `json:"validated"`
	Ranked    []model.CandidateDevice `json:"ranked"`
}

// Selector picks the best device that speaks the protocol
type Selector struct {
	enumerator *Enumerator
	validator  Validator
	logger     *zap.Logger
}

// NewSelector creates a selector
func NewSelector(enumerator *Enumerator, validator Validator, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{
		enumerator: enumerator,
		validator:  validator,
		logger:     logger.With(zap.String("component", "selector")),
	}
}

// Select returns the first candidate in rank order that validates, or the
// highest-ranked candidate when none does. Found is false only for an empty list.
func (s *Selector) Select(ctx context.Context) (model.CandidateDevice, bool, error) {
	sel, err := s.SelectDetailed(ctx)
	if err != nil {
		return model.CandidateDevice{}, false, err
	}
	return sel.Device, sel.Found, nil
}

// SelectDetailed is Select with the ranked list and validation outcome attached
func (s *Selector) SelectDetailed(ctx context.Context) (*Selection, error) {
	ranked, err := s.enumerator.Enumerate(ctx)
	if err != nil {
		return nil, err
	}

	sel := &Selection{Ranked: ranked}
	if len(ranked) == 0 {
		s.logger.Info("No serial devices found")
		return sel, nil
	}

	for _, candidate := range ranked {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.validator.Validate(ctx, candidate.RealPath) {
			s.logger.Info("Device validated",
				zap.String("device", candidate.RealPath),
				zap.Int("score", candidate.Score),
			)
			sel.Device = candidate
			sel.Found = true
			sel.Validated = true
			return sel, nil
		}
		s.logger.Debug("Device did not validate", zap.String("device", candidate.RealPath))
	}

	sel.Device = ranked[0]
	sel.Found = true
	s.logger.Warn("No device validated, falling back to highest score",
		zap.String("device", sel.Device.RealPath),
		zap.Int("score", sel.Device.Score),
	)
	return sel, nil
}
