// internal/engine/quality/classifier.go
package quality

import (
	"fmt"
	"sort"

	"nomad-workers/internal/common/config"
)

// Tier is the label pair attached to a match record.
type Tier struct {
	Level string `json:"level"`
	Tier  int    `json:"tier"`
}

// Classifier maps overall scores onto configured quality bands. Bands
// are held sorted by descending MinScore; the first band whose floor
// the score reaches wins.
type Classifier struct {
	bands []config.QualityBand
}

// NewClassifier validates and sorts the configured bands. The lowest
// band must have a floor of zero so every score classifies.
func NewClassifier(bands []config.QualityBand) (*Classifier, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("quality bands must not be empty")
	}

	sorted := make([]config.QualityBand, len(bands))
	copy(sorted, bands)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinScore > sorted[j].MinScore
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].MinScore == sorted[i-1].MinScore {
			return nil, fmt.Errorf("duplicate quality band floor: %d", sorted[i].MinScore)
		}
	}
	if sorted[len(sorted)-1].MinScore != 0 {
		return nil, fmt.Errorf("lowest quality band must start at 0, got %d", sorted[len(sorted)-1].MinScore)
	}

	return &Classifier{bands: sorted}, nil
}

// Classify maps a score to its quality band. Out-of-range input is
// clamped so the classifier is total over all integers.
func (c *Classifier) Classify(score int) Tier {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	for _, b := range c.bands {
		if score >= b.MinScore {
			return Tier{Level: b.Level, Tier: b.Tier}
		}
	}

	// Unreachable: the lowest band floor is 0.
	last := c.bands[len(c.bands)-1]
	return Tier{Level: last.Level, Tier: last.Tier}
}
