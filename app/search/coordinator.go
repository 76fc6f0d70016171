package search

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/joefazee/countrylookup/app/countries"
	"github.com/joefazee/countrylookup/app/location"
	"github.com/joefazee/countrylookup/app/reachability"
	"github.com/joefazee/countrylookup/internal/logger"
	"github.com/joefazee/countrylookup/models"
)

// Coordinator owns the search text, search state, favorites and alert of one user.
// All of that state is read and written only by the coordinator's loop goroutine;
// lookups, location resolution and timers run elsewhere and post their results back.
type Coordinator struct {
	lookup   countries.Lookup
	resolver location.CountryResolver
	network  reachability.Status
	monitor  *reachability.Monitor
	logger   logger.Logger

	debounce     time.Duration
	maxFavorites int
	fallbackCode string

	events    chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// ctx is cancelled on Close and parents every request the coordinator makes.
	ctx    context.Context
	cancel context.CancelFunc

	last       atomic.Pointer[Snapshot]
	autoAdding atomic.Bool

	// loop-owned
	text        string
	state       State
	favorites   []models.Country
	alert       *Alert
	version     uint64
	timer       *time.Timer
	timerGen    uint64
	entropy     io.Reader
	latest      ulid.ULID
	inflight    context.CancelFunc
	subscribers map[int]chan Snapshot
	nextSub     int
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithLogger sets the logger
func WithLogger(log logger.Logger) Option {
	return func(c *Coordinator) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithMonitor hands ownership of a reachability monitor to the coordinator. The
// monitor is stopped when the coordinator closes.
func WithMonitor(m *reachability.Monitor) Option {
	return func(c *Coordinator) {
		c.monitor = m
	}
}

// NewCoordinator starts a coordinator. Close must be called to release it.
func NewCoordinator(
	lookup countries.Lookup,
	resolver location.CountryResolver,
	network reachability.Status,
	cfg *Config,
	opts ...Option,
) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		lookup:       lookup,
		resolver:     resolver,
		network:      network,
		logger:       logger.NewNullLogger(),
		debounce:     cfg.Debounce,
		maxFavorites: cfg.MaxFavorites,
		fallbackCode: cfg.DefaultCountryCode,
		events:       make(chan func(), 64),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
		state:        Idle(),
		entropy:      ulid.Monotonic(rand.Reader, 0),
		subscribers:  make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.network == nil && c.monitor != nil {
		c.network = c.monitor
	}

	initial := Snapshot{State: Idle()}
	c.last.Store(&initial)

	go c.run()
	return c
}

func (c *Coordinator) run() {
	defer close(c.done)
	defer c.teardown()

	for {
		select {
		case fn := <-c.events:
			fn()
		case <-c.quit:
			return
		}
	}
}

func (c *Coordinator) teardown() {
	if c.timer != nil {
		c.timer.Stop()
	}
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
	}
	for id, ch := range c.subscribers {
		delete(c.subscribers, id)
		close(ch)
	}
}

// do runs fn on the loop and waits for it. It reports false when the coordinator
// closed before fn ran.
func (c *Coordinator) do(fn func()) bool {
	finished := make(chan struct{})
	wrapped := func() {
		fn()
		close(finished)
	}

	select {
	case c.events <- wrapped:
	case <-c.quit:
		return false
	}

	select {
	case <-finished:
		return true
	case <-c.done:
		select {
		case <-finished:
			return true
		default:
			return false
		}
	}
}

// post queues fn on the loop without waiting. Only called off the loop.
func (c *Coordinator) post(fn func()) {
	select {
	case c.events <- fn:
	case <-c.quit:
	}
}

// SetSearchText replaces the search text. The favorites cap is checked
// immediately; the query itself runs after the debounce interval.
func (c *Coordinator) SetSearchText(text string) error {
	if !c.do(func() { c.setText(text) }) {
		return models.ErrSessionClosed
	}
	return nil
}

// AddCountry appends country to favorites and clears the search text. Adding a
// country that is already a favorite does nothing; adding at the cap shows the
// max-limit alert instead.
func (c *Coordinator) AddCountry(country models.Country) error {
	if !c.do(func() { c.addCountry(country) }) {
		return models.ErrSessionClosed
	}
	return nil
}

// RemoveCountry removes the favorites at the given positions and returns how
// many were removed. Offsets outside the list are ignored.
func (c *Coordinator) RemoveCountry(offsets ...int) int {
	removed := 0
	c.do(func() { removed = c.removeCountry(offsets) })
	return removed
}

// DismissAlert hides the alert and clears the search text.
func (c *Coordinator) DismissAlert() error {
	ok := c.do(func() {
		c.alert = nil
		c.setText("")
	})
	if !ok {
		return models.ErrSessionClosed
	}
	return nil
}

// AutoAddCountryBasedOnLocation adds the country the device is in when there are
// no favorites yet. It falls back to the configured default code when the
// location cannot be resolved. It returns once the attempt has finished; a
// second call while one is running returns immediately.
func (c *Coordinator) AutoAddCountryBasedOnLocation(ctx context.Context) {
	if !c.autoAdding.CompareAndSwap(false, true) {
		return
	}
	defer c.autoAdding.Store(false)

	empty := false
	if !c.do(func() { empty = len(c.favorites) == 0 }) || !empty {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	code, ok := c.resolver.ResolveCountryCode(ctx)
	if !ok {
		code = c.fallbackCode
	}

	if !c.network.IsAvailable() {
		c.do(c.showNetworkAlert)
		return
	}

	results, err := c.lookup.SearchByCode(ctx, code)
	c.do(func() {
		if err != nil {
			if !c.network.IsAvailable() {
				c.showNetworkAlert()
				return
			}
			c.logger.Error(fmt.Errorf("auto-add failed with error: %w", err), map[string]interface{}{
				"country_code": code,
			})
			return
		}
		if len(results) == 0 {
			return
		}
		first := results[0]
		if c.contains(first) || len(c.favorites) >= c.maxFavorites {
			return
		}
		c.favorites = append(c.favorites, first)
		c.publish()
	})
}

// Snapshot returns the last published state
func (c *Coordinator) Snapshot() Snapshot {
	return c.last.Load().clone()
}

// Subscribe returns a channel that receives the current snapshot and then every
// change. Slow readers only see the latest snapshot. The channel is closed by
// the returned cancel func or when the coordinator closes.
func (c *Coordinator) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	var id int
	registered := c.do(func() {
		id = c.nextSub
		c.nextSub++
		c.subscribers[id] = ch
		ch <- c.last.Load().clone()
	})
	if !registered {
		close(ch)
		return ch, func() {}
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.do(func() {
				if sub, ok := c.subscribers[id]; ok {
					delete(c.subscribers, id)
					close(sub)
				}
			})
		})
	}
}

// Done is closed once the coordinator has shut down
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Close stops the loop, cancels in-flight requests and stops an owned monitor.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.quit)
		<-c.done
		if c.monitor != nil {
			c.monitor.Stop()
		}
	})
}

func (c *Coordinator) setText(text string) {
	c.text = text
	if text == "" {
		// an emptied field must not be repopulated by a late response
		c.supersede()
	}
	c.guardCapacity()
	c.scheduleSearch()
	c.publish()
}

// guardCapacity is the undebounced listener on the search text.
func (c *Coordinator) guardCapacity() {
	if c.text != "" && len(c.favorites) >= c.maxFavorites {
		alert := MaxLimitAlert(c.maxFavorites)
		c.alert = &alert
	}
}

// scheduleSearch is the debounced listener on the search text.
func (c *Coordinator) scheduleSearch() {
	c.timerGen++
	gen := c.timerGen
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.post(func() {
			if gen == c.timerGen {
				c.debounced()
			}
		})
	})
}

func (c *Coordinator) debounced() {
	if c.text == "" {
		c.state = Idle()
		c.publish()
		return
	}
	if len(c.favorites) >= c.maxFavorites {
		return
	}
	c.search(c.text)
}

func (c *Coordinator) search(query string) {
	if !c.network.IsAvailable() {
		c.showNetworkAlert()
		return
	}

	tag := c.supersede()
	ctx, cancel := context.WithCancel(c.ctx)
	c.inflight = cancel
	c.state = Searching()
	c.publish()

	c.logger.Debug("searching countries", map[string]interface{}{"query": query, "query_id": tag.String()})
	go func() {
		results, err := c.lookup.SearchByName(ctx, query)
		c.post(func() { c.finish(tag, results, err) })
	}()
}

// supersede cancels the in-flight search and issues a new latest tag. Responses
// carrying an older tag are dropped by finish.
func (c *Coordinator) supersede() ulid.ULID {
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
	}
	c.latest = ulid.MustNew(ulid.Timestamp(time.Now()), c.entropy)
	return c.latest
}

func (c *Coordinator) finish(tag ulid.ULID, results []models.Country, err error) {
	if tag != c.latest {
		c.logger.Debug("discarding stale search response", map[string]interface{}{"query_id": tag.String()})
		return
	}
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
	}

	if err != nil {
		c.handleError(err)
		return
	}

	filtered := make([]models.Country, 0, len(results))
	for _, country := range results {
		if !c.contains(country) {
			filtered = append(filtered, country)
		}
	}
	c.state = Success(filtered)
	c.publish()
}

// handleError maps a lookup failure to state. An unavailable network wins over
// any classified error.
func (c *Coordinator) handleError(err error) {
	if !c.network.IsAvailable() {
		c.showNetworkAlert()
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	c.state = Failure(countries.Describe(err))
	c.publish()
}

func (c *Coordinator) showNetworkAlert() {
	alert := NetworkAlert()
	c.alert = &alert
	c.supersede()
	c.state = Idle()
	c.publish()
}

func (c *Coordinator) addCountry(country models.Country) {
	if c.contains(country) {
		return
	}
	if len(c.favorites) >= c.maxFavorites {
		alert := MaxLimitAlert(c.maxFavorites)
		c.alert = &alert
		c.publish()
		return
	}
	c.favorites = append(c.favorites, country)
	c.setText("")
}

func (c *Coordinator) removeCountry(offsets []int) int {
	drop := make(map[int]struct{}, len(offsets))
	for _, offset := range offsets {
		if offset >= 0 && offset < len(c.favorites) {
			drop[offset] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return 0
	}

	positions := make([]int, 0, len(drop))
	for offset := range drop {
		positions = append(positions, offset)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(positions)))

	favorites := append([]models.Country(nil), c.favorites...)
	for _, offset := range positions {
		favorites = append(favorites[:offset], favorites[offset+1:]...)
	}
	c.favorites = favorites
	c.publish()
	return len(positions)
}

func (c *Coordinator) contains(country models.Country) bool {
	for _, favorite := range c.favorites {
		if favorite.Equal(country) {
			return true
		}
	}
	return false
}

func (c *Coordinator) publish() {
	c.version++
	snap := Snapshot{
		Version:    c.version,
		SearchText: c.text,
		State:      c.state,
		Favorites:  c.favorites,
		Alert:      c.alert,
	}.clone()
	c.last.Store(&snap)

	for _, ch := range c.subscribers {
		deliverLatest(ch, snap.clone())
	}
}

// deliverLatest replaces an unread snapshot instead of blocking the loop.
func deliverLatest(ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}
