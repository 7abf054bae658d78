// Package views keeps the operator's four live dashboard views in sync with
// the remote store for whichever identity is currently bound.
package views

import (
	"context"
	"fmt"
	"sync"

	"go-hotel-dashboard/database"
	"go-hotel-dashboard/detector"
	"go-hotel-dashboard/feed"
	"go-hotel-dashboard/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type Kind string

const (
	OccupiedRooms   Kind = "occupiedRooms"
	AvailableRooms  Kind = "availableRooms"
	ServiceRequests Kind = "serviceRequests"
	FoodOrders      Kind = "foodOrders"
)

const scopeField = "adminId"

// View is the published dashboard state. Lists are in arrival order.
type View struct {
	Identity        string                  `json:"identity"`
	OccupiedRooms   int                     `json:"occupiedRooms"`
	AvailableRooms  int                     `json:"availableRooms"`
	ServiceRequests []models.ServiceRequest `json:"serviceRequests"`
	FoodOrders      []models.FoodOrder      `json:"foodOrders"`
}

func (v View) clone() View {
	v.ServiceRequests = cloneSlice(v.ServiceRequests)
	v.FoodOrders = cloneSlice(v.FoodOrders)
	return v
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// Collections names the collections the views are read from.
type Collections struct {
	Rooms           string
	ServiceRequests string
	FoodOrders      string
}

// Aggregator owns one feed per view for the bound identity. It is Unbound
// until SetIdentity is called with a non-empty identity, and tears down every
// feed of the old identity before opening any for a new one.
type Aggregator struct {
	sub         feed.Subscriber
	collections Collections
	detector    *detector.Detector
	onFeedError feed.ErrorSink
	logger      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	binding   sync.Mutex // serialises SetIdentity
	consumers sync.WaitGroup

	mu         sync.RWMutex
	identity   string
	generation uint64
	view       View
	feeds      []*feed.Feed
	observers  []func(Kind, View)
}

func New(sub feed.Subscriber, collections Collections, det *detector.Detector, onFeedError feed.ErrorSink, logger *zap.Logger) *Aggregator {
	ctx, cancel := context.WithCancel(context.Background())
	if det == nil {
		det = detector.New(nil)
	}
	return &Aggregator{
		sub:         sub,
		collections: collections,
		detector:    det,
		onFeedError: onFeedError,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// OnChange registers fn to be called after every view update. fn must not
// call SetIdentity.
func (a *Aggregator) OnChange(fn func(kind Kind, v View)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, fn)
}

func (a *Aggregator) queries(identity string) map[Kind]database.Query {
	scope := database.Eq(scopeField, identity)
	return map[Kind]database.Query{
		OccupiedRooms: {
			Collection: a.collections.Rooms,
			Scope:      scope,
			Where:      []database.Predicate{database.Eq("status", models.RoomOccupied)},
		},
		AvailableRooms: {
			Collection: a.collections.Rooms,
			Scope:      scope,
			Where:      []database.Predicate{database.Eq("status", models.RoomAvailable)},
		},
		// Status is filtered locally: pushing it into the query would need a
		// compound index on this collection.
		ServiceRequests: {
			Collection: a.collections.ServiceRequests,
			Scope:      scope,
		},
		FoodOrders: {
			Collection: a.collections.FoodOrders,
			Scope:      scope,
			Where:      []database.Predicate{database.Eq("status", models.StatusPending)},
		},
	}
}

var kinds = []Kind{OccupiedRooms, AvailableRooms, ServiceRequests, FoodOrders}

// SetIdentity rebinds the views to identity; "" unbinds. Binding the
// identity that is already bound is a no-op. On error the aggregator is left
// Unbound.
func (a *Aggregator) SetIdentity(identity string) error {
	a.binding.Lock()
	defer a.binding.Unlock()

	a.mu.RLock()
	current, live := a.identity, len(a.feeds)
	a.mu.RUnlock()
	if current == identity && (identity == "" || live > 0) {
		return nil
	}
	return a.bind(identity)
}

// Resubscribe rebuilds every feed of the bound identity, e.g. after a feed
// stopped on an error.
func (a *Aggregator) Resubscribe() error {
	a.binding.Lock()
	defer a.binding.Unlock()
	return a.bind(a.Identity())
}

func (a *Aggregator) bind(identity string) error {

	a.unbind()
	if identity == "" {
		return nil
	}

	a.mu.Lock()
	a.identity = identity
	a.view = View{Identity: identity}
	gen := a.generation
	a.mu.Unlock()

	queries := a.queries(identity)
	opened := make(map[Kind]*feed.Feed, len(kinds))
	for _, kind := range kinds {
		f, err := feed.Open(a.ctx, a.sub, queries[kind], a.onFeedError, a.logger)
		if err != nil {
			for _, o := range opened {
				o.Unsubscribe()
			}
			a.mu.Lock()
			a.identity = ""
			a.view = View{}
			a.mu.Unlock()
			return fmt.Errorf("failed to bind %s: %w", identity, err)
		}
		opened[kind] = f
	}

	a.mu.Lock()
	for _, kind := range kinds {
		a.feeds = append(a.feeds, opened[kind])
	}
	a.mu.Unlock()

	for _, kind := range kinds {
		a.consumers.Add(1)
		go a.consume(gen, kind, opened[kind])
	}

	a.logger.Info("Views bound", zap.String("identity", identity))
	return nil
}

// unbind stops every feed of the current identity and clears the views.
// Deliveries still in flight carry the old generation and are dropped.
func (a *Aggregator) unbind() {
	a.mu.Lock()
	a.generation++
	feeds := a.feeds
	previous := a.identity
	a.feeds = nil
	a.identity = ""
	a.view = View{}
	a.mu.Unlock()

	for _, f := range feeds {
		f.Unsubscribe()
	}
	a.consumers.Wait()
	a.detector.Reset()

	if previous != "" {
		a.logger.Info("Views unbound", zap.String("identity", previous))
		a.publish(kinds...)
	}
}

func (a *Aggregator) consume(gen uint64, kind Kind, f *feed.Feed) {
	defer a.consumers.Done()
	for snap := range f.C {
		a.apply(gen, kind, f.Query(), snap)
	}
}

// apply installs a snapshot into its view. Documents that cannot be decoded
// are left out of the list and reported to the feed error sink.
func (a *Aggregator) apply(gen uint64, kind Kind, q database.Query, snap feed.Snapshot) {
	var (
		requests  []models.ServiceRequest
		orders    []models.FoodOrder
		decodeErr error
	)
	switch kind {
	case ServiceRequests:
		requests, decodeErr = decodeAll[models.ServiceRequest](snap.Docs, a.logger)
		pending := requests[:0]
		for _, r := range requests {
			if r.IsPending() {
				pending = append(pending, r)
			}
		}
		requests = pending
	case FoodOrders:
		orders, decodeErr = decodeAll[models.FoodOrder](snap.Docs, a.logger)
	}

	a.mu.Lock()
	if gen != a.generation {
		a.mu.Unlock()
		return
	}
	var length int
	switch kind {
	case OccupiedRooms:
		a.view.OccupiedRooms = len(snap.Docs)
	case AvailableRooms:
		a.view.AvailableRooms = len(snap.Docs)
	case ServiceRequests:
		a.view.ServiceRequests = requests
		length = len(requests)
	case FoodOrders:
		a.view.FoodOrders = orders
		length = len(orders)
	}
	a.mu.Unlock()

	if decodeErr != nil && a.onFeedError != nil {
		a.onFeedError(q, decodeErr)
	}
	if kind == ServiceRequests || kind == FoodOrders {
		a.detector.Observe(detector.Round{string(kind): length})
	}
	a.publish(kind)
}

func (a *Aggregator) publish(changed ...Kind) {
	a.mu.RLock()
	observers := a.observers
	v := a.view.clone()
	a.mu.RUnlock()

	for _, kind := range changed {
		for _, fn := range observers {
			fn(kind, v)
		}
	}
}

// decodeAll decodes every document it can. The error, if any, counts the
// skipped documents and carries the first failure.
func decodeAll[T any](docs []bson.Raw, logger *zap.Logger) ([]T, error) {
	out := make([]T, 0, len(docs))
	var firstErr error
	skipped := 0
	for _, raw := range docs {
		var item T
		if err := bson.Unmarshal(raw, &item); err != nil {
			id := raw.Lookup("_id").String()
			logger.Warn("Skipping undecodable document",
				zap.String("id", id),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("document %s: %w", id, err)
			}
			skipped++
			continue
		}
		out = append(out, item)
	}
	if skipped > 0 {
		return out, fmt.Errorf("%d of %d documents could not be read: %w", skipped, len(docs), firstErr)
	}
	return out, nil
}

// Snapshot returns a copy of the current views.
func (a *Aggregator) Snapshot() View {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.view.clone()
}

func (a *Aggregator) Identity() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.identity
}

// LiveFeeds is the number of open feeds; four while bound, zero otherwise.
func (a *Aggregator) LiveFeeds() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n := 0
	for _, f := range a.feeds {
		select {
		case <-f.Done():
		default:
			n++
		}
	}
	return n
}

// FoodOrder looks up a pending food order in the current view.
func (a *Aggregator) FoodOrder(id string) (models.FoodOrder, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, o := range a.view.FoodOrders {
		if o.ID.Hex() == id {
			return o, true
		}
	}
	return models.FoodOrder{}, false
}

// ServiceRequest looks up a pending service request in the current view.
func (a *Aggregator) ServiceRequest(id string) (models.ServiceRequest, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, r := range a.view.ServiceRequests {
		if r.ID.Hex() == id {
			return r, true
		}
	}
	return models.ServiceRequest{}, false
}

// Close unbinds and releases the aggregator.
func (a *Aggregator) Close() {
	a.SetIdentity("")
	a.cancel()
}
