package deals

import (
	"slices"
	"testing"
)

func TestValidatorScenarioOne(t *testing.T) {
	v := NewValidator(testCatalog())

	verdict := v.Score(NewDeal(scenarioOne(), DefaultDetails()))
	if verdict.Score != 8 {
		t.Fatalf("expected ranking score 8, got %d (fired %v)", verdict.Score, verdict.Fired)
	}
	want := []string{`pattern:\d+%\s*off`, "keyword:coupon", "trusted_domain"}
	if !slices.Equal(verdict.Fired, want) {
		t.Fatalf("expected fired %v, got %v", want, verdict.Fired)
	}

	out := v.Validate([]Deal{NewDeal(scenarioOne(), DefaultDetails())})
	if len(out) != 1 || out[0].AIQualityScore != 8 {
		t.Fatalf("expected one deal scored 8, got %+v", out)
	}
}

func TestValidatorIgnoresForDollarPattern(t *testing.T) {
	v := NewValidator(testCatalog())
	d := NewDeal(candidate("Gluten free bars 2 for $5", "", ""), DefaultDetails())
	if got := v.Score(d).Score; got != 0 {
		t.Fatalf("expected the for-$N pattern to carry no ranking weight, got %d", got)
	}
}

func TestValidatorThresholdAndStableOrder(t *testing.T) {
	v := NewValidator(testCatalog())
	in := []Deal{
		NewDeal(candidate("Gluten free bread", "", "first"), DefaultDetails()),
		NewDeal(candidate("Gluten free sale A", "", "second"), DefaultDetails()),
		NewDeal(candidate("Gluten free rebate B", "", "third"), DefaultDetails()),
		NewDeal(candidate("Gluten free sale C", "", "fourth"), DefaultDetails()),
	}

	out := v.Validate(in)
	var links []string
	for _, d := range out {
		links = append(links, d.Link)
	}
	want := []string{"third", "second", "fourth"}
	if !slices.Equal(links, want) {
		t.Fatalf("expected order %v, got %v", want, links)
	}
	if out[0].AIQualityScore != 3 || out[1].AIQualityScore != 2 {
		t.Fatalf("unexpected scores %d, %d", out[0].AIQualityScore, out[1].AIQualityScore)
	}
}
