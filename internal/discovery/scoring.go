// internal/discovery/scoring.go
package discovery

import (
	"path/filepath"
	"strings"

	"panel-link/internal/model"
)

// Identity constants of the panel and of the chipsets it is confused with
const (
	PreferredVendorProduct  = "1a86:55d3"
	SingleSerialMarker      = "USB_Single_Serial"
	ACMPrefix               = "ttyACM"
	DisfavoredVendorProduct = "1a86:7523"
)

// ScoringConfig holds the match values and weights of the scoring rules
type ScoringConfig struct {
	PreferredPair     string
	PreferredWeight   int
	NameMarker        string
	NameMarkerWeight  int
	InterfacePrefix   string
	InterfaceWeight   int
	DisfavoredPair    string
	DisfavoredPenalty int
}

// DefaultScoringConfig returns the weights used for the ESP32-S3 panel
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		PreferredPair:     PreferredVendorProduct,
		PreferredWeight:   100,
		NameMarker:        SingleSerialMarker,
		NameMarkerWeight:  60,
		InterfacePrefix:   ACMPrefix,
		InterfaceWeight:   20,
		DisfavoredPair:    DisfavoredVendorProduct,
		DisfavoredPenalty: -10,
	}
}

// ScoreInput is what a rule may look at
type ScoreInput struct {
	StableName    string
	RealPath      string
	VendorProduct string
}

// ScoreRule is a named predicate with a signed weight
type ScoreRule struct {
	Name   string
	Weight int
	Match  func(in ScoreInput) bool
}

// Scorer sums the weights of every matching rule
type Scorer struct {
	rules []ScoreRule
}

// NewScorer builds the fixed rule list from cfg
func NewScorer(cfg ScoringConfig) *Scorer {
	return &Scorer{
		rules: []ScoreRule{
			{
				Name:   "exact_match",
				Weight: cfg.PreferredWeight,
				Match: func(in ScoreInput) bool {
					return in.VendorProduct != "" && strings.EqualFold(in.VendorProduct, cfg.PreferredPair)
				},
			},
			{
				Name:   "naming_hint",
				Weight: cfg.NameMarkerWeight,
				Match: func(in ScoreInput) bool {
					return strings.Contains(in.StableName, cfg.NameMarker)
				},
			},
			{
				Name:   "interface_class",
				Weight: cfg.InterfaceWeight,
				Match: func(in ScoreInput) bool {
					return strings.HasPrefix(filepath.Base(in.RealPath), cfg.InterfacePrefix)
				},
			},
			{
				Name:   "known_bad_chipset",
				Weight: cfg.DisfavoredPenalty,
				Match: func(in ScoreInput) bool {
					return in.VendorProduct != "" && strings.EqualFold(in.VendorProduct, cfg.DisfavoredPair)
				},
			},
		},
	}
}

// Rules returns the rule list in evaluation order
func (s *Scorer) Rules() []ScoreRule {
	out := make([]ScoreRule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Score returns the desirability of a device. Higher is better.
func (s *Scorer) Score(stableName, realPath, vendorID, productID string) int {
	in := ScoreInput{
		StableName:    stableName,
		RealPath:      realPath,
		VendorProduct: model.VendorProduct(vendorID, productID),
	}

	total := 0
	for _, rule := range s.rules {
		if rule.Match(in) {
			total += rule.Weight
		}
	}
	return total
}
