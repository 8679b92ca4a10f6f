package ranking

import (
	"math"

	"github.com/hyperjump/baheth/pkg/utils"
)

// Combine merges a document's signals into its combined score using the
// query-shape weights. Pattern bonuses are scaled by a tfidf confidence
// multiplier so weakly related documents cannot be lifted by patterns alone.
// The result is clamped to [0, MaxCombinedScore].
func (r *Ranker) Combine(d *ScoredDocument, pq *ProcessedQuery) float64 {
	c := r.config
	qa := pq.Analysis
	if qa == nil {
		qa = &QueryAnalysis{}
	}

	w := c.WeightsFor(pq)
	score := d.TFIDFSimilarity*w.TFIDF +
		d.KeywordScore*w.Keyword +
		d.ProximityScore*w.Proximity +
		d.PhraseScore*w.Phrase

	d.TFIDFMultiplier = math.Min(1.0, d.TFIDFSimilarity/c.MinTFIDFForFullBonus)

	if qa.NeedsDefinition && d.DefinitionScore > 0 {
		score += d.DefinitionScore * c.DefinitionBonus * d.TFIDFMultiplier
	}
	if qa.NeedsMethod && d.MethodScore > 0 {
		score += d.MethodScore * c.MethodBonus * d.TFIDFMultiplier
	}
	if qa.NeedsCausality && d.CausalityScore > 0 {
		score += d.CausalityScore * c.CausalityBonus * d.TFIDFMultiplier
	}

	score += d.ContextScore * c.ContextBonus
	score += d.AnswerTypeScore * c.AnswerTypeBonus
	score += d.ConceptBonus * c.ConceptWeight

	return utils.Clamp(score, 0, c.MaxCombinedScore)
}

// stretch separates acceptable from marginal results around the cutoff:
// scores above the pivot are spread and lifted, scores between the marginal
// floor and the pivot are multiplied. The result is clamped to [0,1].
func (r *Ranker) stretch(score float64) float64 {
	c := r.config
	switch {
	case score > c.StretchPivot:
		score = c.StretchPivot + (score-c.StretchPivot)*c.StretchSlope + c.StretchLift
	case score > c.MarginalFloor:
		score *= c.MarginalMultiplier
	}
	return utils.Clamp(score, 0, 1)
}
