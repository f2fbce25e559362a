package service

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/user/docchat/internal/domain"
)

// FragmentPrefix precedes a highlight ID in the navigation fragment.
const FragmentPrefix = "#highlight-"

type scrollState int

const (
	scrollIdle scrollState = iota
	scrollPending
)

// ScrollCoordinator translates navigation-fragment changes into scroll
// actions against the highlight store. It is long-lived: every fragment
// change re-arms it, and a user-driven scroll clears the fragment so stale
// back-navigation cannot re-trigger the same scroll. Resolution never
// retries — an unknown ID means the reference is stale.
type ScrollCoordinator struct {
	store  *HighlightStore
	scroll func(domain.Highlight)
	log    *zap.Logger

	mu       sync.Mutex
	state    scrollState
	fragment string
	ready    bool
}

// NewScrollCoordinator creates a coordinator. scroll is the primitive that
// actually moves the viewer; it is invoked at most once per resolved
// fragment.
func NewScrollCoordinator(store *HighlightStore, scroll func(domain.Highlight), logger *zap.Logger) *ScrollCoordinator {
	return &ScrollCoordinator{
		store:  store,
		scroll: scroll,
		log:    logger,
	}
}

// OnViewerReady marks the viewer as able to scroll. A fragment already
// present is resolved immediately.
func (c *ScrollCoordinator) OnViewerReady() {
	c.mu.Lock()
	c.ready = true
	c.mu.Unlock()
	c.resolve()
}

// OnFragmentChange records a new navigation fragment and resolves it when
// the viewer is ready.
func (c *ScrollCoordinator) OnFragmentChange(fragment string) {
	c.mu.Lock()
	c.fragment = fragment
	ready := c.ready
	c.mu.Unlock()
	if ready {
		c.resolve()
	}
}

// OnUserScroll handles a scroll the coordinator did not cause: the fragment
// is cleared and the coordinator returns to idle.
func (c *ScrollCoordinator) OnUserScroll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fragment = ""
	c.state = scrollIdle
}

// Fragment returns the current navigation fragment.
func (c *ScrollCoordinator) Fragment() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fragment
}

func (c *ScrollCoordinator) resolve() {
	c.mu.Lock()
	fragment := c.fragment
	if c.state == scrollPending || !strings.HasPrefix(fragment, FragmentPrefix) {
		c.mu.Unlock()
		return
	}
	c.state = scrollPending
	id := fragment[len(FragmentPrefix):]
	highlight, ok := c.store.FindByID(id)
	c.state = scrollIdle
	c.mu.Unlock()

	if !ok {
		// Stale reference; stay idle, no retry.
		c.log.Debug("fragment references unknown highlight", zap.String("id", id))
		return
	}
	c.scroll(highlight)
}
