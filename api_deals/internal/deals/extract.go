package deals

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var errEmptyRendering = errors.New("pattern matched but rendered an empty value")

type labeledPattern struct {
	re    *regexp.Regexp
	value string
}

func mustLabeled(expr, value string) labeledPattern {
	return labeledPattern{re: regexp.MustCompile("(?i)" + expr), value: value}
}

var dealTypePatterns = []labeledPattern{
	mustLabeled(`coupon|promo code|discount code`, "Coupon/Promo Code"),
	mustLabeled(`rebate|cashback|cash back`, "Rebate/Cashback"),
	mustLabeled(`sale|clearance|\d+%\s*off`, "Sale/Discount"),
	mustLabeled(`free shipping`, "Free Shipping"),
	mustLabeled(`bogo|buy one get|buy \d+ get`, "BOGO/Bundle"),
	mustLabeled(`printable|digital coupon`, "Printable/Digital Coupon"),
	mustLabeled(`limited time|while supplies last`, "Limited Time Offer"),
	mustLabeled(`flash sale|daily deal`, "Flash/Daily Deal"),
	mustLabeled(`member|exclusive|app only`, "Exclusive Deal"),
}

// value holds a regexp replacement template applied to the matched text.
var discountPatterns = []labeledPattern{
	mustLabeled(`(\d+)%\s*off`, "${1}% off"),
	mustLabeled(`\$(\d+(?:\.\d{2})?)\s*off`, "$$${1} off"),
	mustLabeled(`save\s*\$(\d+(?:\.\d{2})?)`, "Save $$${1}"),
	mustLabeled(`save\s*(\d+)%`, "Save ${1}%"),
	mustLabeled(`up to\s*(\d+)%\s*off`, "Up to ${1}% off"),
	mustLabeled(`(\d+)\s*percent\s*off`, "${1}% off"),
	mustLabeled(`buy\s*(\d+)\s*get\s*(\d+)`, "Buy ${1} Get ${2} Free"),
	mustLabeled(`(\d+)\s*for\s*\$(\d+(?:\.\d{2})?)`, "${1} for $$${2}"),
	mustLabeled(`half\s*off`, "50% off"),
	mustLabeled(`(\d+)\s*=\s*\$(\d+(?:\.\d{2})?)`, "${1} for $$${2}"),
}

var couponPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:code|use|enter|promo|coupon)[:;\s]*([A-Z0-9]{4,20})\b`),
	regexp.MustCompile(`(?i)\b(SAVE[A-Z0-9]+)\b`),
	regexp.MustCompile(`(?i)\b(GET[A-Z0-9]+)\b`),
	regexp.MustCompile(`(?i)\b([A-Z]{3,}[0-9]{2,})\b`),
	regexp.MustCompile(`(?i)\b([A-Z0-9]{6,15})\b`),
	regexp.MustCompile(`(?i)code\s*[:;]\s*([A-Z0-9]+)`),
	regexp.MustCompile(`(?i)"([A-Z0-9]{4,})"`),
}

var couponShape = regexp.MustCompile(`^[A-Z0-9]{4,}$`)

const (
	maxCouponLength   = 15
	whileSuppliesLast = "While Supplies Last"
	restrictionsApply = "Restrictions apply"
)

var expirationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)expires? (?:on|at|in|by)?\s*([^\.,\n]+)`),
	regexp.MustCompile(`(?i)valid (?:through|until|by)?\s*([^\.,\n]+)`),
	regexp.MustCompile(`(?i)good (?:through|until)?\s*([^\.,\n]+)`),
	regexp.MustCompile(`(?i)offer ends?\s*([^\.,\n]+)`),
}

var suppliesLimited = regexp.MustCompile(`(?i)while supplies last|limited time|quantities limited`)

type fieldExtractor struct {
	name    string
	extract func(c *Catalog, text string) (string, error)
	assign  func(d *Details, v string)
}

// Extractor parses structured deal fields out of candidate text.
type Extractor struct {
	cat    *Catalog
	fields []fieldExtractor
}

func NewExtractor(cat *Catalog) *Extractor {
	return &Extractor{
		cat: cat,
		fields: []fieldExtractor{
			{name: "deal_type", extract: extractDealType, assign: func(d *Details, v string) { d.DealType = v }},
			{name: "discount_amount", extract: extractDiscount, assign: func(d *Details, v string) { d.DiscountAmount = v }},
			{name: "coupon_code", extract: extractCouponCode, assign: func(d *Details, v string) { d.CouponCode = v }},
			{name: "expiration", extract: extractExpiration, assign: func(d *Details, v string) { d.Expiration = v }},
			{name: "restrictions", extract: extractRestrictions, assign: func(d *Details, v string) { d.Restrictions = v }},
		},
	}
}

// ExtractDetails is pure: the same candidate always yields the same details.
// A failing field stays "N/A" and records a diagnostic; a panic yields the
// all-"N/A" record.
func (e *Extractor) ExtractDetails(c Candidate) (details Details) {
	defer func() {
		if r := recover(); r != nil {
			details = DefaultDetails()
			details.Diagnostics = []string{fmt.Sprintf("extract: panic: %v", r)}
		}
	}()

	details = DefaultDetails()
	text := c.text()
	for _, f := range e.fields {
		v, err := f.extract(e.cat, text)
		if err != nil {
			details.Diagnostics = append(details.Diagnostics, fmt.Sprintf("%s: %v", f.name, err))
			continue
		}
		if v != "" {
			f.assign(&details, v)
		}
	}
	return details
}

func extractDealType(_ *Catalog, text string) (string, error) {
	for _, p := range dealTypePatterns {
		if p.re.MatchString(text) {
			return p.value, nil
		}
	}
	return "", nil
}

func extractDiscount(_ *Catalog, text string) (string, error) {
	for _, p := range discountPatterns {
		match := p.re.FindString(text)
		if match == "" {
			continue
		}
		rendered := p.re.ReplaceAllString(match, p.value)
		if strings.TrimSpace(rendered) == "" {
			return "", errEmptyRendering
		}
		return rendered, nil
	}
	return "", nil
}

func extractCouponCode(c *Catalog, text string) (string, error) {
	for _, re := range couponPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			code := strings.ToUpper(m[1])
			if c.isInvalidCode(code) || len(code) > maxCouponLength {
				continue
			}
			if couponShape.MatchString(code) {
				return code, nil
			}
		}
	}
	return "", nil
}

func extractExpiration(_ *Catalog, text string) (string, error) {
	for _, re := range expirationPatterns {
		if match := re.FindString(text); match != "" {
			return strings.TrimSpace(match), nil
		}
	}
	if suppliesLimited.MatchString(text) {
		return whileSuppliesLast, nil
	}
	return "", nil
}

func extractRestrictions(c *Catalog, text string) (string, error) {
	if containsAny(text, c.restrictTerms) {
		return restrictionsApply, nil
	}
	return "", nil
}
