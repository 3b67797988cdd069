package buf

import (
	"math"
	"strings"
	"testing"
)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(math.MaxInt, 1); ok {
		t.Fatalf("expected overflow when adding to MaxInt")
	}
	if _, ok := AddOverflowSafe(math.MinInt, -1); ok {
		t.Fatalf("expected underflow when subtracting from MinInt")
	}
}

func TestCheckSpan(t *testing.T) {
	end, err := CheckSpan(1000, 53, 14)
	if err != nil || end != 67 {
		t.Fatalf("CheckSpan(1000,53,14)=%d,%v want 67,nil", end, err)
	}
	if end, err := CheckSpan(10, 6, 4); err != nil || end != 10 {
		t.Fatalf("span ending at len should be valid: %d,%v", end, err)
	}

	cases := []struct {
		bufLen, off, n int
		want           string
	}{
		{10, -1, 2, "negative offset"},
		{10, 0, -2, "negative length"},
		{10, math.MaxInt, 2, "overflow"},
		{10, 8, 3, "bounds"},
	}
	for _, c := range cases {
		_, err := CheckSpan(c.bufLen, c.off, c.n)
		if err == nil || !strings.Contains(err.Error(), c.want) {
			t.Fatalf("CheckSpan(%d,%d,%d) err=%v, want %q", c.bufLen, c.off, c.n, err, c.want)
		}
	}
}

func TestSliceAndHas(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	if got, ok := Slice(data, 1, 3); !ok || len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Slice returned unexpected result: %v, %v", got, ok)
	}
	if _, ok := Slice(data, 4, 2); ok {
		t.Fatalf("Slice should fail when extending beyond len")
	}
	if Has(data, 2, 4) {
		t.Fatalf("Has should be false for out-of-bounds range")
	}
	if !Has(data, 2, 1) {
		t.Fatalf("Has should be true for valid range")
	}

	if _, ok := Slice(data, -1, 1); ok {
		t.Fatalf("Slice should reject negative offset")
	}
	if _, ok := Slice(data, 1, -1); ok {
		t.Fatalf("Slice should reject negative length")
	}
}
