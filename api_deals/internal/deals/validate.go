package deals

import (
	"cmp"
	"slices"
)

// Validator re-scores deals for ranking.
type Validator struct {
	cat   *Catalog
	rules []Rule
}

func NewValidator(cat *Catalog) *Validator {
	return &Validator{cat: cat, rules: rankingRules(cat)}
}

// Score computes the ranking verdict for one deal.
func (v *Validator) Score(d Deal) Verdict {
	text := d.Candidate.text()
	total, fired := score(v.rules, RuleInput{Text: text, Link: d.Link})
	niche := v.cat.hasNiche(text)
	return Verdict{
		Score:    total,
		Fired:    fired,
		Niche:    niche,
		Accepted: niche && total >= RankingThreshold,
	}
}

// Validate keeps niche deals scoring at least RankingThreshold, stamps
// ai_quality_score and returns them sorted by score descending. Equal scores
// keep their input order.
func (v *Validator) Validate(in []Deal) []Deal {
	out := make([]Deal, 0, len(in))
	for _, d := range in {
		verdict := v.Score(d)
		if !verdict.Accepted {
			continue
		}
		d.AIQualityScore = verdict.Score
		out = append(out, d)
	}
	slices.SortStableFunc(out, func(a, b Deal) int {
		return cmp.Compare(b.AIQualityScore, a.AIQualityScore)
	})
	return out
}
