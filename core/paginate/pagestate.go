package paginate

// Direction selects which neighbour page Advance moves to.
type Direction int

const (
	// Back moves the cursor one page towards the start, wrapping to the
	// last page from page 1.
	Back Direction = iota
	// Forward moves the cursor one page towards the end, wrapping to
	// page 1 from the last page.
	Forward
)

// PageState owns the page cursor of a single session. The cursor always
// satisfies 1 <= page <= total.
type PageState struct {
	page  int
	total int
}

// newPageState derives the total page count from the element count and the
// renderer's page-size policy and clamps the start page into range. A zero
// element count is a configuration error; a start page outside range is
// silently clamped to the nearest bound.
func newPageState(elementCount, pageSize, startPage int) (PageState, error) {
	if elementCount <= 0 {
		return PageState{}, &ConfigurationError{Reason: "element collection is empty"}
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	total := (elementCount + pageSize - 1) / pageSize
	if startPage < 1 {
		startPage = 1
	}
	if startPage > total {
		startPage = total
	}
	return PageState{page: startPage, total: total}, nil
}

// Page returns the current page, 1-based.
func (p PageState) Page() int { return p.page }

// Total returns the total page count.
func (p PageState) Total() int { return p.total }

// Advance moves the cursor one page in the given direction, wrapping at both
// ends. It never fails.
func (p *PageState) Advance(d Direction) {
	switch d {
	case Back:
		p.page--
		if p.page < 1 {
			p.page = p.total
		}
	case Forward:
		p.page++
		if p.page > p.total {
			p.page = 1
		}
	}
}

// JumpTo sets the cursor to target. Targets outside [1, total] are rejected
// with OutOfRangeError and the cursor is left unchanged.
func (p *PageState) JumpTo(target int) error {
	if target < 1 || target > p.total {
		return &OutOfRangeError{Requested: target, Total: p.total}
	}
	p.page = target
	return nil
}
