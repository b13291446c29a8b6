package domain

// DefaultPageSize is the number of assets appended per page
const DefaultPageSize = 20

// PageCursor tracks progress through a fetch handle of known size.
// The page index only advances while whole pages remain, so
// page*pageSize never exceeds the total.
type PageCursor struct {
	page     int
	pageSize int
	total    int
	loaded   int
	hasMore  bool
	inFlight bool
}

// NewPageCursor creates a cursor with no handle attached
func NewPageCursor(pageSize int) *PageCursor {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &PageCursor{pageSize: pageSize}
}

// Reset attaches a new handle of the given size and rewinds to page 0
func (c *PageCursor) Reset(total int) {
	c.page = 0
	c.loaded = 0
	c.total = total
	c.hasMore = total > 0
	c.inFlight = false
}

// Next reserves the next page and returns its [start, end) bounds.
// ok is false when a page is already in flight or nothing is left.
func (c *PageCursor) Next() (start, end int, ok bool) {
	if c.inFlight || !c.hasMore {
		return 0, 0, false
	}

	start = c.page * c.pageSize
	end = start + c.pageSize
	if end > c.total {
		end = c.total
	}
	if start >= end {
		c.hasMore = false
		return 0, 0, false
	}

	c.inFlight = true
	return start, end, true
}

// Advance records that [start, end) was appended
func (c *PageCursor) Advance(end int) {
	c.inFlight = false
	c.loaded = end
	if end >= c.total {
		c.hasMore = false
		return
	}
	c.page++
}

// Abort releases the in-flight reservation without advancing
func (c *PageCursor) Abort() {
	c.inFlight = false
}

func (c *PageCursor) Page() int { return c.page }
func (c *PageCursor) PageSize() int { return c.pageSize }
func (c *PageCursor) Total() int { return c.total }
func (c *PageCursor) Loaded() int { return c.loaded }
func (c *PageCursor) HasMore() bool { return c.hasMore }
func (c *PageCursor) InFlight() bool { return c.inFlight }
