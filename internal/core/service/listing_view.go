package service

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/api/metrics"
	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/listing"
	"github.com/99minutos/storefront/internal/core/ports"
)

// Outcome reports what happened to the result of a Load.
type Outcome int

const (
	// OutcomeApplied means the fetched collection replaced the previous one.
	OutcomeApplied Outcome = iota
	// OutcomeFailed means the fetch failed; the previous view is kept.
	OutcomeFailed
	// OutcomeStale means a newer Load started first; the result was dropped.
	OutcomeStale
	// OutcomeCancelled means the view was closed before the result arrived.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeFailed:
		return "failed"
	case OutcomeStale:
		return "stale"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Loader fetches the collection behind a view. It receives the session
// (nil when logged out) and the params in effect when the load started.
type Loader[T domain.Entity] func(ctx context.Context, sess *domain.Session, p listing.Params) (FetchResult[T], error)

// ViewConfig describes one listing screen.
type ViewConfig struct {
	// Name labels logs and metrics.
	Name string
	// Tabs is the status vocabulary; nil disables the status filter.
	Tabs *listing.TabSet
	// Grouped renders category sections instead of a flat sorted list.
	Grouped bool
	// RequiresSession makes Load fail with ErrUnauthenticated when nobody
	// is logged in, and drops the collection on logout.
	RequiresSession bool
	// Params are the initial view parameters.
	Params listing.Params
}

// Snapshot is the renderable state of a view.
type Snapshot[T domain.Entity] struct {
	Items   []T                `json:"items,omitempty"`
	Groups  []listing.Group[T] `json:"groups,omitempty"`
	Params  listing.Params     `json:"params"`
	Loading bool               `json:"loading"`
	Notice  string             `json:"notice,omitempty"`
	Warning string             `json:"warning,omitempty"`
	Counts  map[string]int     `json:"counts,omitempty"`
	Session *domain.Session    `json:"-"`
}

type derivation[T domain.Entity] struct {
	ok       bool
	revision uint64
	params   listing.Params
	items    []T
	groups   []listing.Group[T]
	counts   map[string]int
}

// ListingView owns a fetched collection and the parameters of one screen.
// Every parameter change re-derives the visible list synchronously; loads
// run outside the lock and only the most recent one may apply its result.
type ListingView[T domain.Entity] struct {
	cfg   ViewConfig
	store ports.SessionStore
	load  Loader[T]
	log   zerolog.Logger

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()

	mu       sync.Mutex
	closed   bool
	seq      uint64
	revision uint64
	items    []T
	params   listing.Params
	session  *domain.Session
	loading  bool
	notice   string
	warning  string
	memo     derivation[T]
}

// NewListingView reads the current session and subscribes to session
// changes. Call Close to release the subscription.
func NewListingView[T domain.Entity](ctx context.Context, store ports.SessionStore, cfg ViewConfig, load Loader[T], log zerolog.Logger) (*ListingView[T], error) {
	params := cfg.Params
	if params.Sort == "" {
		params.Sort = listing.DefaultSort
	}
	if err := validateTab(cfg.Tabs, params.Tab); err != nil {
		return nil, err
	}

	vctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	v := &ListingView[T]{
		cfg:    cfg,
		store:  store,
		load:   load,
		log:    log.With().Str("view", cfg.Name).Logger(),
		ctx:    vctx,
		cancel: cancel,
		params: params,
	}

	sess, err := loadSession(ctx, store)
	if err != nil {
		cancel()
		return nil, err
	}
	v.session = sess
	v.derive()
	v.unsubscribe = store.Subscribe(v.onStorageChanged)
	return v, nil
}

func loadSession(ctx context.Context, store ports.SessionStore) (*domain.Session, error) {
	sess, err := store.Load(ctx)
	if errors.Is(err, domain.ErrNoSession) {
		return nil, nil
	}
	return sess, err
}

// Load fetches the collection. While it runs the previous derived view stays
// visible. A result is applied only if no newer Load started and the view
// is still open.
func (v *ListingView[T]) Load(ctx context.Context) (Outcome, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return OutcomeCancelled, nil
	}
	v.seq++
	seq := v.seq
	params := v.params
	sess := v.session
	if v.cfg.RequiresSession && sess == nil {
		v.notice = noticeFor(domain.ErrUnauthenticated)
		v.mu.Unlock()
		return OutcomeFailed, domain.ErrUnauthenticated
	}
	v.loading = true
	v.mu.Unlock()

	lctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(v.ctx, cancel)
	defer stop()

	res, err := v.load(lctx, sess, params)

	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case v.closed:
		metrics.StaleLoadsDiscardedTotal.WithLabelValues(v.cfg.Name, OutcomeCancelled.String()).Inc()
		return OutcomeCancelled, nil
	case seq != v.seq:
		metrics.StaleLoadsDiscardedTotal.WithLabelValues(v.cfg.Name, OutcomeStale.String()).Inc()
		v.log.Debug().Uint64("seq", seq).Uint64("current", v.seq).Msg("stale load discarded")
		return OutcomeStale, nil
	}

	v.loading = false
	if err != nil {
		v.notice = noticeFor(err)
		v.log.Warn().Err(err).Msg("load failed")
		return OutcomeFailed, err
	}

	v.items = res.Items
	v.revision++
	v.warning = res.Warning
	v.notice = ""
	v.derive()
	return OutcomeApplied, nil
}

// SetSearch updates the search text.
func (v *ListingView[T]) SetSearch(s string) {
	v.update(func(p *listing.Params) { p.Search = s })
}

// SetCategory updates the category filter; empty clears it.
func (v *ListingView[T]) SetCategory(c string) {
	v.update(func(p *listing.Params) { p.Category = c })
}

// SetCondition updates the condition filter; empty clears it.
func (v *ListingView[T]) SetCondition(c string) {
	v.update(func(p *listing.Params) { p.Condition = c })
}

// SetSort updates the sort key.
func (v *ListingView[T]) SetSort(k listing.SortKey) {
	v.update(func(p *listing.Params) { p.Sort = listing.ParseSortKey(string(k)) })
}

// SetTab switches the active tab. Names outside the vocabulary are rejected
// with ErrUnknownTab and leave the view unchanged.
func (v *ListingView[T]) SetTab(tab string) error {
	if err := validateTab(v.cfg.Tabs, tab); err != nil {
		return err
	}
	v.update(func(p *listing.Params) { p.Tab = tab })
	return nil
}

// Apply replaces every parameter at once.
func (v *ListingView[T]) Apply(p listing.Params) error {
	if err := validateTab(v.cfg.Tabs, p.Tab); err != nil {
		return err
	}
	p.Sort = listing.ParseSortKey(string(p.Sort))
	v.update(func(cur *listing.Params) { *cur = p })
	return nil
}

func (v *ListingView[T]) update(fn func(p *listing.Params)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(&v.params)
	v.derive()
}

// Snapshot returns the current renderable state.
func (v *ListingView[T]) Snapshot() Snapshot[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.derive()

	snap := Snapshot[T]{
		Params:  v.params,
		Loading: v.loading,
		Notice:  v.notice,
		Warning: v.warning,
	}
	if v.cfg.Grouped {
		snap.Groups = make([]listing.Group[T], len(v.memo.groups))
		for i, g := range v.memo.groups {
			snap.Groups[i] = listing.Group[T]{Name: g.Name, Items: slices.Clone(g.Items)}
		}
	} else {
		snap.Items = slices.Clone(v.memo.items)
	}
	if v.cfg.Tabs != nil {
		snap.Counts = make(map[string]int, len(v.memo.counts))
		for k, n := range v.memo.counts {
			snap.Counts[k] = n
		}
	}
	if v.session != nil {
		s := *v.session
		snap.Session = &s
	}
	return snap
}

// Session returns the session the view currently sees, or nil.
func (v *ListingView[T]) Session() *domain.Session {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.session == nil {
		return nil
	}
	s := *v.session
	return &s
}

// Close unsubscribes from session changes and cancels pending loads. The
// params are discarded with the view.
func (v *ListingView[T]) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.mu.Unlock()

	v.cancel()
	if v.unsubscribe != nil {
		v.unsubscribe()
	}
}

func (v *ListingView[T]) onStorageChanged() {
	if v.ctx.Err() != nil {
		return
	}
	sess, err := loadSession(v.ctx, v.store)
	if err != nil {
		v.log.Warn().Err(err).Msg("reload session after storage change")
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	prev := v.session
	v.session = sess
	if !v.cfg.RequiresSession || sameUser(prev, sess) {
		return
	}

	// The collection belonged to someone else: drop it and any load in flight.
	v.seq++
	v.loading = false
	v.items = nil
	v.revision++
	v.warning = ""
	v.derive()
	v.log.Debug().Msg("session owner changed, collection dropped")
}

func sameUser(a, b *domain.Session) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.UserID == b.UserID
}

// derive recomputes the visible list unless the collection revision and
// params match the last derivation. Callers hold v.mu.
func (v *ListingView[T]) derive() {
	if v.memo.ok && v.memo.revision == v.revision && v.memo.params == v.params {
		return
	}
	d := derivation[T]{ok: true, revision: v.revision, params: v.params}
	if v.cfg.Grouped {
		d.groups = listing.GroupByCategory(v.items, v.cfg.Tabs, v.params)
	} else {
		d.items = listing.Derive(v.items, v.cfg.Tabs, v.params)
	}
	if v.cfg.Tabs != nil {
		d.counts = listing.Counts(v.items, v.cfg.Tabs)
	}
	v.memo = d
}

func validateTab(tabs *listing.TabSet, tab string) error {
	if tab == "" {
		return nil
	}
	if tabs == nil || !tabs.Has(tab) {
		return domain.ErrUnknownTab
	}
	return nil
}

// noticeFor turns a load error into a short message for the user.
func noticeFor(err error) string {
	var ferr *domain.FetchError
	switch {
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrSessionExpired):
		return "Your session has ended. Please log in again."
	case errors.As(err, &ferr) && ferr.Message != "":
		return ferr.Message
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The request was interrupted."
	default:
		return "Something went wrong while loading. Please try again."
	}
}
