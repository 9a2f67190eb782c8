// internal/discovery/enumerator.go
package discovery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"panel-link/internal/model"

	"go.uber.org/zap"
)

// Lister returns the stable names of attached serial devices in lexicographic order
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// Resolver maps a stable name to the device node it points at
type Resolver interface {
	Resolve(stableName string) (string, error)
}

// MetadataProvider reports identity attributes for a device node
type MetadataProvider interface {
	Identify(ctx context.Context, realPath string) (model.Identity, error)
}

// ByIDLister lists the symlinks in a /dev/serial/by-id style directory
type ByIDLister struct {
	Dir string
}

func (l ByIDLister) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrListingAbsent, l.Dir)
		}
		return nil, fmt.Errorf("failed to read %s: %w", l.Dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, filepath.Join(l.Dir, entry.Name()))
	}
	sort.Strings(names)
	return names, nil
}

// SymlinkResolver follows symlinks to the underlying device node
type SymlinkResolver struct{}

func (SymlinkResolver) Resolve(stableName string) (string, error) {
	real, err := filepath.EvalSymlinks(stableName)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrResolutionFailure, stableName, err)
	}
	return real, nil
}

// Enumerator builds the ranked candidate list
type Enumerator struct {
	lister   Lister
	resolver Resolver
	metadata MetadataProvider
	scorer   *Scorer
	logger   *zap.Logger
}

// NewEnumerator creates an enumerator. A nil metadata provider leaves identity fields empty.
func NewEnumerator(lister Lister, resolver Resolver, metadata MetadataProvider, scorer *Scorer, logger *zap.Logger) *Enumerator {
	if scorer == nil {
		scorer = NewScorer(DefaultScoringConfig())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enumerator{
		lister:   lister,
		resolver: resolver,
		metadata: metadata,
		scorer:   scorer,
		logger:   logger.With(zap.String("component", "enumerator")),
	}
}

// Enumerate returns candidates sorted by score, highest first.
// Equal scores keep the lexicographic order of their stable names.
func (e *Enumerator) Enumerate(ctx context.Context) ([]model.CandidateDevice, error) {
	names, err := e.lister.List(ctx)
	if err != nil {
		if errors.Is(err, ErrListingAbsent) {
			e.logger.Debug("Device listing absent", zap.Error(err))
			return []model.CandidateDevice{}, nil
		}
		return nil, err
	}

	candidates := make([]model.CandidateDevice, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		real, err := e.resolver.Resolve(name)
		if err != nil {
			e.logger.Debug("Skipping unresolvable device", zap.String("stable_name", name), zap.Error(err))
			continue
		}

		identity := e.identify(ctx, real)
		candidate := model.CandidateDevice{
			StableName: name,
			RealPath:   real,
			VendorID:   identity.VendorID,
			ProductID:  identity.ProductID,
			Serial:     identity.Serial,
			Product:    identity.Product,
			Vendor:     identity.Vendor,
		}
		candidate.Score = e.scorer.Score(filepath.Base(name), real, identity.VendorID, identity.ProductID)
		candidates = append(candidates, candidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	e.logger.Debug("Enumeration completed", zap.Int("candidates", len(candidates)))
	return candidates, nil
}

func (e *Enumerator) identify(ctx context.Context, realPath string) model.Identity {
	if e.metadata == nil {
		return model.Identity{}
	}
	identity, err := e.metadata.Identify(ctx, realPath)
	if err != nil {
		e.logger.Debug("Metadata unavailable", zap.String("device", realPath), zap.Error(err))
		return model.Identity{}
	}
	return identity
}
