package deals

import "strings"

const (
	QualityThreshold = 3
	RankingThreshold = 2
)

// Filter is the structural real-deal gate.
type Filter struct {
	cat *Catalog
}

func NewFilter(cat *Catalog) *Filter {
	return &Filter{cat: cat}
}

// IsRealDeal requires an http(s) link, a niche keyword and a promotional
// indicator.
func (f *Filter) IsRealDeal(c Candidate) bool {
	if !strings.HasPrefix(c.Link, "http://") && !strings.HasPrefix(c.Link, "https://") {
		return false
	}
	text := c.text()
	return f.cat.hasNiche(text) && containsAny(text, f.cat.promo)
}

// Classifier is the first-pass quality scorer.
type Classifier struct {
	cat   *Catalog
	rules []Rule
}

func NewClassifier(cat *Catalog) *Classifier {
	return &Classifier{cat: cat, rules: qualityRules(cat)}
}

// IsHighQualityDeal scores a fresh candidate with no prior details.
func (c *Classifier) IsHighQualityDeal(cand Candidate) bool {
	return c.Evaluate(cand, nil).Accepted
}

// Evaluate scores cand. Penalty rules only apply when prior is non-nil.
func (c *Classifier) Evaluate(cand Candidate, prior *Details) Verdict {
	text := cand.text()
	total, fired := score(c.rules, RuleInput{Text: text, Link: cand.Link, Prior: prior})
	niche := c.cat.hasNiche(text)
	return Verdict{
		Score:    total,
		Fired:    fired,
		Niche:    niche,
		Accepted: niche && total >= QualityThreshold,
	}
}
