package deals

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// DefaultReportLimit is how many deals WriteReport prints when limit <= 0.
const DefaultReportLimit = 25

const snippetPreview = 200

// WriteReport prints the top deals in a human-readable listing.
func WriteReport(w io.Writer, ds []Deal, limit int) error {
	if limit <= 0 {
		limit = DefaultReportLimit
	}
	p := &printer{w: w}
	if len(ds) == 0 {
		p.line("No validated deals found")
		return p.err
	}

	rule := strings.Repeat("=", 90)
	p.line("%s", rule)
	p.line("VALIDATED GLUTEN-FREE DEALS & COUPONS")
	p.line("%d deals found", len(ds))
	p.line("%s", rule)

	shown := min(limit, len(ds))
	for i, d := range ds[:shown] {
		p.line("")
		p.line("%2d. %s", i+1, orNA(d.Title))
		p.line("    Store: %s", orNA(d.Store))
		p.line("    Brand: %s", orNA(d.Brand))
		p.line("    Category: %s", orNA(d.Category))
		p.line("    Type: %s", orNA(d.DealType))
		p.line("    Discount: %s", orNA(d.DiscountAmount))
		p.line("    Code: %s", orNA(d.CouponCode))
		p.line("    Expires: %s", orNA(d.Expiration))
		p.line("    Score: %d", d.AIQualityScore)
		if d.Snippet != "" {
			p.line("    Details: %s", preview(d.Snippet, snippetPreview))
		}
		p.line("    Source: %s", orNA(d.Link))
		if i < shown-1 {
			p.line("    %s", strings.Repeat("-", 80))
		}
	}
	if remaining := len(ds) - shown; remaining > 0 {
		p.line("")
		p.line("... and %d more deals saved", remaining)
	}
	p.line("")
	p.line("%s", rule)
	return p.err
}

// WriteAnalytics prints an Analytics summary.
func WriteAnalytics(w io.Writer, a Analytics) error {
	p := &printer{w: w}
	rule := strings.Repeat("=", 60)
	p.line("%s", rule)
	p.line("DEAL ANALYTICS")
	p.line("%s", rule)
	p.line("")
	p.line("OVERVIEW:")
	p.line("   - Total validated deals: %d", a.TotalDeals)
	p.line("   - Average quality score: %.2f", a.AvgQualityScore)

	if a.TotalDeals > 0 {
		total := float64(a.TotalDeals)
		pct := func(n int) float64 { return float64(n) / total * 100 }

		p.line("")
		p.line("TOP STORES:")
		for _, c := range a.Stores[:min(5, len(a.Stores))] {
			p.line("   - %s: %d deals (%.1f%%)", c.Name, c.Count, pct(c.Count))
		}

		p.line("")
		p.line("TOP BRANDS:")
		for _, c := range a.Brands[:min(5, len(a.Brands))] {
			if c.Name == DefaultBrand {
				continue
			}
			p.line("   - %s: %d deals (%.1f%%)", c.Name, c.Count, pct(c.Count))
		}

		p.line("")
		p.line("DEAL TYPES:")
		for _, c := range a.DealTypes {
			p.line("   - %s: %d deals (%.1f%%)", c.Name, c.Count, pct(c.Count))
		}

		p.line("")
		p.line("DISCOUNT ANALYSIS:")
		if ps := a.DiscountRanges.Percentage; len(ps) > 0 {
			sum := 0
			for _, v := range ps {
				sum += v
			}
			p.line("   - Average %% discount: %.1f%%", float64(sum)/float64(len(ps)))
			p.line("   - Maximum %% discount: %d%%", slices.Max(ps))
		}
		if ds := a.DiscountRanges.Dollar; len(ds) > 0 {
			sum := 0.0
			for _, v := range ds {
				sum += v
			}
			p.line("   - Average $ discount: $%.2f", sum/float64(len(ds)))
			p.line("   - Maximum $ discount: $%.2f", slices.Max(ds))
		}

		codePct := pct(a.CodeAvailability.HasCode)
		p.line("")
		p.line("COUPON CODE AVAILABILITY:")
		p.line("   - Deals with codes: %d (%.1f%%)", a.CodeAvailability.HasCode, codePct)
		p.line("   - Deals without codes: %d (%.1f%%)", a.CodeAvailability.NoCode, 100-codePct)

		expPct := pct(a.ExpirationStatus.HasExpiration)
		p.line("")
		p.line("EXPIRATION INFO:")
		p.line("   - With expiration: %d (%.1f%%)", a.ExpirationStatus.HasExpiration, expPct)
		p.line("   - Without expiration: %d (%.1f%%)", a.ExpirationStatus.NoExpiration, 100-expPct)
	}

	p.line("")
	p.line("%s", rule)
	return p.err
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// printer keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}
