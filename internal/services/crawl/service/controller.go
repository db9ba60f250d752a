package service

import "carcrawl/internal/services/crawl/domain"

// State is where a task's page loop currently is
type State int

const (
	StateFetching State = iota
	StateExtracting
	StateAccepting
	StateDone
)

var stateNames = [...]string{"fetching", "extracting", "accepting", "done"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Controller decides page by page whether a task keeps going.
// Call Begin before each fetch, then Failed, or Extracted followed by Accepted
type Controller struct {
	mode            domain.Mode
	budget          int // fixed mode page count
	limit           int // open mode safety cap
	stopOnUnchanged bool

	state   State
	page    int
	fetched int
	stop    domain.StopReason
}

// NewController builds a controller starting at page 1
func NewController(mode domain.Mode, budget, limit int, stopOnUnchanged bool) *Controller {
	if mode != domain.ModeOpen {
		mode = domain.ModeFixed
	}
	return &Controller{
		mode:            mode,
		budget:          max(budget, 1),
		limit:           max(limit, 1),
		stopOnUnchanged: stopOnUnchanged,
		state:           StateFetching,
		page:            1,
	}
}

// State returns the current state
func (c *Controller) State() State { return c.state }

// Page is the page the next fetch should request
func (c *Controller) Page() int { return c.page }

// Fetched counts accepted pages
func (c *Controller) Fetched() int { return c.fetched }

// Stop is the reason the loop ended; empty until Done
func (c *Controller) Stop() domain.StopReason { return c.stop }

// Begin reports the page to fetch, or false when the budget or cap is used up
func (c *Controller) Begin() (int, bool) {
	if c.state == StateDone {
		return 0, false
	}
	switch c.mode {
	case domain.ModeFixed:
		if c.page > c.budget {
			return 0, c.finish(domain.StopPagesDone)
		}
	case domain.ModeOpen:
		if c.fetched >= c.limit {
			return 0, c.finish(domain.StopCap)
		}
	}
	c.state = StateExtracting
	return c.page, true
}

// Failed ends the loop on a fetch error
func (c *Controller) Failed() { c.finish(domain.StopError) }

// Canceled ends the loop because the run context ended
func (c *Controller) Canceled() { c.finish(domain.StopCanceled) }

// Extracted reports whether records from the page should be accepted.
// Open mode treats an empty page as the end of data; fixed mode keeps going
func (c *Controller) Extracted(records int) bool {
	if records == 0 && c.mode == domain.ModeOpen {
		return c.finish(domain.StopEmpty)
	}
	c.state = StateAccepting
	return true
}

// Accepted closes out a page and reports whether to fetch the next one.
// Open mode stops when a non-empty page brought nothing new and the check is enabled
func (c *Controller) Accepted(records, fresh int) bool {
	c.fetched++
	c.page++
	if c.mode == domain.ModeOpen && c.stopOnUnchanged && records > 0 && fresh == 0 {
		return c.finish(domain.StopUnchanged)
	}
	c.state = StateFetching
	return true
}

func (c *Controller) finish(r domain.StopReason) bool {
	c.state = StateDone
	c.stop = r
	return false
}
