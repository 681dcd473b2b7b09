package client

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
)

// DefaultDebounce is the quiet period after the last keystroke before a
// search request is sent.
const DefaultDebounce = 300 * time.Millisecond

// DiscoverFunc runs a discovery query. Client.Discover satisfies it.
type DiscoverFunc func(ctx context.Context, q domain.DiscoveryQuery) ([]domain.Restaurant, error)

// Result is one delivered discovery response. A non-nil Err means the
// caller should show no data.
type Result struct {
	Generation  uint64
	Query       domain.DiscoveryQuery
	Restaurants []domain.Restaurant
	Err         error
}

// Searcher drives search-as-you-type. Text changes are debounced; other
// filter changes are sent at once. Each request gets a generation number
// and only the newest generation's response is delivered, so a slow
// superseded request never overwrites fresher results. Starting a request
// cancels the one in flight.
type Searcher struct {
	ctx      context.Context
	discover DiscoverFunc
	deliver  func(Result)
	delay    time.Duration

	gen atomic.Uint64

	mu     sync.Mutex
	query  domain.DiscoveryQuery
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool

	deliverMu sync.Mutex
	wg        sync.WaitGroup
}

// NewSearcher creates a Searcher. deliver is called from a background
// goroutine, never concurrently with itself. Requests stop when ctx is done.
func NewSearcher(ctx context.Context, discover DiscoverFunc, delay time.Duration, deliver func(Result)) *Searcher {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Searcher{
		ctx:      ctx,
		discover: discover,
		deliver:  deliver,
		delay:    delay,
		query:    domain.NewDiscoveryQuery(),
	}
}

// SetSearch updates the search text and schedules a request once the text
// has been stable for the debounce delay.
func (s *Searcher) SetSearch(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.query.Search = text
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

// SetFilters replaces every filter except the search text and sends a
// request immediately. A pending debounced search is folded into it.
func (s *Searcher) SetFilters(q domain.DiscoveryQuery) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	q.Search = s.query.Search
	q.Tags = slices.Clone(q.Tags)
	s.query = q
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.fire()
}

// Refresh re-sends the current query immediately.
func (s *Searcher) Refresh() {
	s.fire()
}

// Generation returns the number of requests issued so far.
func (s *Searcher) Generation() uint64 {
	return s.gen.Load()
}

func (s *Searcher) fire() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	gen := s.gen.Add(1)
	q := s.query
	q.Tags = slices.Clone(q.Tags)
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer cancel()

		rs, err := s.discover(ctx, q)

		s.deliverMu.Lock()
		defer s.deliverMu.Unlock()
		if s.gen.Load() != gen {
			return
		}
		s.deliver(Result{Generation: gen, Query: q, Restaurants: rs, Err: err})
	}()
}

// Close cancels any pending or in-flight request and waits for background
// work to finish. Nothing is delivered after Close returns.
func (s *Searcher) Close() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
	// Invalidate whatever is still in flight.
	s.gen.Add(1)
	s.mu.Unlock()

	s.wg.Wait()
}
