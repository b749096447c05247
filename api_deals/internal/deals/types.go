package deals

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// NA is the placeholder for any field that could not be determined.
const NA = "N/A"

const (
	DefaultStore    = "Unknown"
	DefaultBrand    = "Multiple/Various"
	DefaultCategory = "General"
)

// TimestampLayout is the UTC layout used for Candidate.Timestamp. It sorts
// lexically in time order.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Clock returns the current time.
type Clock func() time.Time

// Candidate is a raw search hit as returned by a fetcher.
type Candidate struct {
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
	Link      string `json:"link"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
}

// NewCandidate stamps a search hit with the given time.
func NewCandidate(title, snippet, link, source string, at time.Time) Candidate {
	return Candidate{
		Title:     title,
		Snippet:   snippet,
		Link:      link,
		Source:    source,
		Timestamp: at.UTC().Format(TimestampLayout),
	}
}

// Details are the structured fields parsed out of a candidate's text.
type Details struct {
	DealType       string   `json:"deal_type"`
	DiscountAmount string   `json:"discount_amount"`
	CouponCode     string   `json:"coupon_code"`
	Expiration     string   `json:"expiration"`
	Restrictions   string   `json:"restrictions"`
	Diagnostics    []string `json:"diagnostics,omitempty"`
}

// DefaultDetails returns the all-"N/A" record.
func DefaultDetails() Details {
	return Details{
		DealType:       NA,
		DiscountAmount: NA,
		CouponCode:     NA,
		Expiration:     NA,
		Restrictions:   NA,
	}
}

// Deal is a scored, enriched offer ready for persistence.
type Deal struct {
	Candidate
	Details
	AIQualityScore int    `json:"ai_quality_score"`
	Store          string `json:"store"`
	Brand          string `json:"brand"`
	Category       string `json:"category"`
}

// NewDeal combines a candidate with its extracted details and metadata defaults.
func NewDeal(c Candidate, d Details) Deal {
	return Deal{
		Candidate: c,
		Details:   d,
		Store:     DefaultStore,
		Brand:     DefaultBrand,
		Category:  DefaultCategory,
	}
}

// ContentHash keys a deal in persisted stores: hex SHA-256 of link+discount.
func (d Deal) ContentHash() string {
	sum := sha256.Sum256([]byte(d.Link + d.DiscountAmount))
	return hex.EncodeToString(sum[:])
}

func (c Candidate) text() string {
	return lower(c.Title + " " + c.Snippet)
}
