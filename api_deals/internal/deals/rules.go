package deals

import (
	"regexp"
	"strings"
)

// RuleInput is what a scoring rule sees: lower-cased title+snippet, the raw
// link and, when scoring an already-extracted deal, its details.
type RuleInput struct {
	Text  string
	Link  string
	Prior *Details
}

// Rule contributes Weight*Hits to a score.
type Rule struct {
	Name   string
	Weight int
	Hits   func(in RuleInput) int
}

// Verdict is the outcome of scoring one candidate.
type Verdict struct {
	Score    int      `json:"score"`
	Fired    []string `json:"fired,omitempty"`
	Niche    bool     `json:"niche"`
	Accepted bool     `json:"accepted"`
}

func score(rules []Rule, in RuleInput) (int, []string) {
	total := 0
	var fired []string
	for _, r := range rules {
		hits := r.Hits(in)
		if hits == 0 {
			continue
		}
		total += r.Weight * hits
		fired = append(fired, r.Name)
	}
	return total, fired
}

func boolHit(ok bool) int {
	if ok {
		return 1
	}
	return 0
}

func patternRule(expr string, weight int) Rule {
	re := regexp.MustCompile("(?i)" + expr)
	return Rule{
		Name:   "pattern:" + expr,
		Weight: weight,
		Hits:   func(in RuleInput) int { return boolHit(re.MatchString(in.Text)) },
	}
}

func keywordRule(keyword string, weight int) Rule {
	return Rule{
		Name:   "keyword:" + keyword,
		Weight: weight,
		Hits:   func(in RuleInput) int { return boolHit(strings.Contains(in.Text, keyword)) },
	}
}

func freshnessRule(cat *Catalog, weight int, keywords ...string) Rule {
	return Rule{
		Name:   "freshness",
		Weight: weight,
		Hits: func(in RuleInput) int {
			return boolHit(containsAny(in.Text, keywords) || strings.Contains(in.Text, cat.monthName()))
		},
	}
}

func trustedRule(cat *Catalog, weight int) Rule {
	return Rule{
		Name:   "trusted_domain",
		Weight: weight,
		Hits:   func(in RuleInput) int { return boolHit(cat.isTrustedLink(in.Link)) },
	}
}

var strongPatterns = []string{
	`\d+%\s*off`,
	`\$\d+\.?\d*\s*off`,
	`save\s*\$\d+`,
	`buy\s+\d+\s+get\s+\d+`,
	`for\s+\$\d+`,
	`printable coupon`,
	`digital coupon`,
	`free shipping`,
	`rebate`,
	`cashback`,
}

const forDollarPattern = `for\s+\$\d+`

// qualityRules is the first-pass admission policy.
func qualityRules(cat *Catalog) []Rule {
	var rules []Rule
	for _, p := range strongPatterns {
		rules = append(rules, patternRule(p, 3))
	}
	rules = append(rules, patternRule(`(promo|coupon|discount)\s*code`, 2))
	for _, kw := range []string{"deal", "sale", "promotion", "special", "clearance", "markdown"} {
		rules = append(rules, keywordRule(kw, 2))
	}
	rules = append(rules,
		freshnessRule(cat, 2, "today", "current", "active", "new", "latest", "this week"),
		trustedRule(cat, 5),
		Rule{
			Name:   "invalid_code",
			Weight: -5,
			Hits: func(in RuleInput) int {
				if in.Prior == nil {
					return 0
				}
				code := in.Prior.CouponCode
				return boolHit(cat.isInvalidCode(code) || len(code) > 20)
			},
		},
		Rule{
			Name:   "missing_discount",
			Weight: -2,
			Hits: func(in RuleInput) int {
				return boolHit(in.Prior != nil && in.Prior.DiscountAmount == NA)
			},
		},
	)
	return rules
}

// rankingRules is the second-pass ranking policy. It has no penalties.
func rankingRules(cat *Catalog) []Rule {
	var rules []Rule
	for _, p := range strongPatterns {
		if p == forDollarPattern {
			continue
		}
		rules = append(rules, patternRule(p, 3))
	}
	for _, kw := range []string{"deal", "sale", "promotion", "special", "clearance", "coupon", "discount"} {
		rules = append(rules, keywordRule(kw, 2))
	}
	rules = append(rules,
		freshnessRule(cat, 2, "today", "current", "active", "new", "latest"),
		trustedRule(cat, 3),
	)
	return rules
}
