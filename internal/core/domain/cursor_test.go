package domain

import "testing"

func drain(c *PageCursor) (calls int, loaded int) {
	for {
		start, end, ok := c.Next()
		if !ok {
			return calls, loaded
		}
		calls++
		loaded += end - start
		c.Advance(end)
	}
}

func TestPageCursor_Drain(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		pageSize  int
		wantCalls int
	}{
		{"empty handle", 0, 20, 0},
		{"single partial page", 5, 20, 1},
		{"exact multiple", 40, 20, 2},
		{"partial last page", 45, 20, 3},
		{"page size one", 3, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewPageCursor(tt.pageSize)
			c.Reset(tt.total)

			calls, loaded := drain(c)
			if calls != tt.wantCalls {
				t.Errorf("expected %d fetches, got %d", tt.wantCalls, calls)
			}
			if loaded != tt.total {
				t.Errorf("expected %d assets loaded, got %d", tt.total, loaded)
			}
			if c.HasMore() {
				t.Error("cursor should be exhausted")
			}
			if c.Page()*c.PageSize() > tt.total {
				t.Errorf("page %d * size %d exceeds total %d", c.Page(), c.PageSize(), tt.total)
			}
		})
	}
}

func TestPageCursor_InFlightGuard(t *testing.T) {
	c := NewPageCursor(10)
	c.Reset(30)

	start, end, ok := c.Next()
	if !ok || start != 0 || end != 10 {
		t.Fatalf("unexpected first page [%d,%d) ok=%v", start, end, ok)
	}

	if _, _, ok := c.Next(); ok {
		t.Error("second trigger while in flight should be ignored")
	}

	c.Abort()
	start, end, ok = c.Next()
	if !ok || start != 0 || end != 10 {
		t.Errorf("aborted page should be retried, got [%d,%d) ok=%v", start, end, ok)
	}
}

func TestPageCursor_Reset(t *testing.T) {
	c := NewPageCursor(10)
	c.Reset(25)
	drain(c)

	c.Reset(12)
	if c.Page() != 0 || c.Loaded() != 0 || !c.HasMore() {
		t.Errorf("reset should rewind, got page=%d loaded=%d hasMore=%v", c.Page(), c.Loaded(), c.HasMore())
	}

	if calls, _ := drain(c); calls != 2 {
		t.Errorf("expected 2 fetches after reset, got %d", calls)
	}
}

func TestNewPageCursor_DefaultSize(t *testing.T) {
	if got := NewPageCursor(0).PageSize(); got != DefaultPageSize {
		t.Errorf("expected default page size %d, got %d", DefaultPageSize, got)
	}
}
