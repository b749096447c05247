package deals

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestWriteReport(t *testing.T) {
	ds := analyticsFixture()
	ds[0].Snippet = strings.Repeat("x", 250)

	var buf bytes.Buffer
	if err := WriteReport(&buf, ds, 3); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, " 1. Gluten free Coupon/Promo Code") {
		t.Fatalf("expected numbered title, got:\n%s", out)
	}
	if !strings.Contains(out, strings.Repeat("x", 200)+"...") {
		t.Fatalf("expected truncated snippet")
	}
	if strings.Contains(out, " 4. ") {
		t.Fatalf("expected limit to cap the listing")
	}
	if !strings.Contains(out, "... and 2 more deals saved") {
		t.Fatalf("expected remaining footer, got:\n%s", out)
	}
}

func TestWriteReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, nil, 0); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "No validated deals found") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWriteReportPropagatesWriteErrors(t *testing.T) {
	if err := WriteReport(failingWriter{}, analyticsFixture(), 0); err == nil {
		t.Fatalf("expected write error")
	}
}
