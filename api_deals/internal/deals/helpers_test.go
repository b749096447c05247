package deals

import "time"

var testNow = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func testCatalog() *Catalog {
	return NewCatalog(func() time.Time { return testNow })
}

func candidate(title, snippet, link string) Candidate {
	return NewCandidate(title, snippet, link, "test", testNow)
}

func scenarioOne() Candidate {
	return candidate(
		"Target gluten free coupon 20% off",
		"Save 20% on select items, code SAVE20",
		"https://target.com/deal",
	)
}
