// Package assembly turns retrieval candidates into the grounding context and its confidence.
package assembly

import "github.com/kailas-cloud/ragate/internal/domain"

// DefaultRelevanceThreshold is the distance below which a candidate is cited.
const DefaultRelevanceThreshold = 0.30

// Assembler filters candidates by distance. Context items and confidence are both derived
// from the same sub-threshold set, so they always agree.
type Assembler struct {
	threshold float64
}

// New creates an Assembler. threshold <= 0 selects DefaultRelevanceThreshold.
func New(threshold float64) *Assembler {
	if threshold <= 0 {
		threshold = DefaultRelevanceThreshold
	}
	return &Assembler{threshold: threshold}
}

// Threshold returns the configured distance cutoff.
func (a *Assembler) Threshold() float64 { return a.threshold }

// Select returns the candidates strictly below the threshold, in input order.
func (a *Assembler) Select(candidates []domain.RetrievalCandidate) []domain.RetrievalCandidate {
	out := make([]domain.RetrievalCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Distance < a.threshold {
			out = append(out, c)
		}
	}
	return out
}

// Assemble maps the selected candidates to context items with relevance_score = 1 - distance.
// No candidate below the threshold yields an empty, non-nil slice.
func (a *Assembler) Assemble(candidates []domain.RetrievalCandidate) []domain.ContextItem {
	selected := a.Select(candidates)
	items := make([]domain.ContextItem, len(selected))
	for i, c := range selected {
		items[i] = domain.ContextItem{
			Content:        c.Content,
			Source:         c.Source,
			RelevanceScore: 1 - c.Distance,
		}
	}
	return items
}

// Confidence is 1 - mean(distance) over the selected candidates, clamped to [0, 1];
// 0 when nothing is selected.
func (a *Assembler) Confidence(candidates []domain.RetrievalCandidate) float64 {
	selected := a.Select(candidates)
	if len(selected) == 0 {
		return 0
	}
	var sum float64
	for _, c := range selected {
		sum += c.Distance
	}
	return clamp01(1 - sum/float64(len(selected)))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
