package views

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-hotel-dashboard/database"
	"go-hotel-dashboard/detector"
	"go-hotel-dashboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeSub struct {
	q   database.Query
	ctx context.Context
	ch  chan database.Result
}

type fakeStore struct {
	mu   sync.Mutex
	subs []*fakeSub
	fail map[string]error
}

func (s *fakeStore) Subscribe(ctx context.Context, q database.Query) (<-chan database.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail[q.String()]; err != nil {
		return nil, err
	}
	sub := &fakeSub{q: q, ctx: ctx, ch: make(chan database.Result)}
	s.subs = append(s.subs, sub)
	return sub.ch, nil
}

func (s *fakeStore) live() []*fakeSub {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*fakeSub
	for _, sub := range s.subs {
		if sub.ctx.Err() == nil {
			out = append(out, sub)
		}
	}
	return out
}

func (s *fakeStore) find(identity, collection, status string) *fakeSub {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.subs) - 1; i >= 0; i-- {
		sub := s.subs[i]
		if sub.q.Collection != collection || sub.q.Scope.Value != identity {
			continue
		}
		got := ""
		for _, p := range sub.q.Where {
			if p.Field == "status" {
				got = p.Value.(string)
			}
		}
		if got == status {
			return sub
		}
	}
	return nil
}

// push delivers docs to the matching subscription and reports whether it was
// still live.
func (s *fakeStore) push(t *testing.T, identity, collection, status string, docs ...interface{}) bool {
	t.Helper()
	sub := s.find(identity, collection, status)
	require.NotNil(t, sub, "no subscription for %s %s %s", identity, collection, status)

	raws := make([]bson.Raw, 0, len(docs))
	for _, d := range docs {
		raw, err := bson.Marshal(d)
		require.NoError(t, err)
		raws = append(raws, raw)
	}
	select {
	case sub.ch <- database.Result{Docs: raws}:
		return true
	case <-sub.ctx.Done():
		return false
	case <-time.After(time.Second):
		t.Fatal("push timed out")
		return false
	}
}

var testCollections = Collections{Rooms: "rooms", ServiceRequests: "serviceRequests", FoodOrders: "foodOrders"}

func newTestAggregator(t *testing.T, det *detector.Detector) (*Aggregator, *fakeStore) {
	store := &fakeStore{}
	agg := New(store, testCollections, det, nil, zap.NewNop())
	t.Cleanup(agg.Close)
	return agg, store
}

func room(identity, status string) models.Room {
	return models.Room{ID: primitive.NewObjectID(), Admin_id: identity, Status: status}
}

func request(identity, status string) models.ServiceRequest {
	return models.ServiceRequest{ID: primitive.NewObjectID(), Admin_id: identity, Status: status, Type: "housekeeping"}
}

func order(identity string) models.FoodOrder {
	items := "Club Sandwich"
	return models.FoodOrder{ID: primitive.NewObjectID(), Admin_id: identity, Status: models.StatusPending, Items: &items}
}

func TestAggregator_BindOpensFourScopedFeeds(t *testing.T) {
	agg, store := newTestAggregator(t, nil)

	require.NoError(t, agg.SetIdentity("admin-1"))

	live := store.live()
	require.Len(t, live, 4)
	for _, sub := range live {
		assert.Equal(t, database.Eq("adminId", "admin-1"), sub.q.Scope)
	}
	assert.NotNil(t, store.find("admin-1", "rooms", models.RoomOccupied))
	assert.NotNil(t, store.find("admin-1", "rooms", models.RoomAvailable))
	assert.NotNil(t, store.find("admin-1", "foodOrders", models.StatusPending))
	assert.NotNil(t, store.find("admin-1", "serviceRequests", ""), "service requests are filtered by identity only")
	assert.Equal(t, 4, agg.LiveFeeds())
	assert.Equal(t, "admin-1", agg.Identity())
}

func TestAggregator_UpdatesViews(t *testing.T) {
	agg, store := newTestAggregator(t, nil)
	require.NoError(t, agg.SetIdentity("admin-1"))

	store.push(t, "admin-1", "rooms", models.RoomOccupied, room("admin-1", models.RoomOccupied), room("admin-1", models.RoomOccupied))
	store.push(t, "admin-1", "rooms", models.RoomAvailable, room("admin-1", models.RoomAvailable))
	o := order("admin-1")
	store.push(t, "admin-1", "foodOrders", models.StatusPending, o)

	require.Eventually(t, func() bool {
		v := agg.Snapshot()
		return v.OccupiedRooms == 2 && v.AvailableRooms == 1 && len(v.FoodOrders) == 1
	}, time.Second, 5*time.Millisecond)

	got, ok := agg.FoodOrder(o.ID.Hex())
	assert.True(t, ok)
	assert.Equal(t, "Club Sandwich", *got.Items)
}

func TestAggregator_ServiceRequestsFilteredLocally(t *testing.T) {
	agg, store := newTestAggregator(t, nil)
	require.NoError(t, agg.SetIdentity("admin-1"))

	pending := request("admin-1", models.StatusPending)
	missing := request("admin-1", "")
	accepted := request("admin-1", models.StatusInProgress)
	store.push(t, "admin-1", "serviceRequests", "", pending, accepted, missing)

	require.Eventually(t, func() bool { return len(agg.Snapshot().ServiceRequests) == 2 }, time.Second, 5*time.Millisecond)
	v := agg.Snapshot()
	assert.Equal(t, pending.ID, v.ServiceRequests[0].ID)
	assert.Equal(t, missing.ID, v.ServiceRequests[1].ID)

	_, ok := agg.ServiceRequest(accepted.ID.Hex())
	assert.False(t, ok)
}

func TestAggregator_IdentityChangeRebuildsFeeds(t *testing.T) {
	agg, store := newTestAggregator(t, nil)
	require.NoError(t, agg.SetIdentity("admin-1"))
	store.push(t, "admin-1", "foodOrders", models.StatusPending, order("admin-1"), order("admin-1"))
	require.Eventually(t, func() bool { return len(agg.Snapshot().FoodOrders) == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, agg.SetIdentity("admin-2"))

	v := agg.Snapshot()
	assert.Equal(t, "admin-2", v.Identity)
	assert.Zero(t, v.OccupiedRooms)
	assert.Empty(t, v.FoodOrders)

	live := store.live()
	require.Len(t, live, 4)
	for _, sub := range live {
		assert.Equal(t, "admin-2", sub.q.Scope.Value)
	}

	// the old identity's feed is gone; nothing it sends can reach the view
	assert.False(t, store.push(t, "admin-1", "foodOrders", models.StatusPending, order("admin-1")))
	assert.Empty(t, agg.Snapshot().FoodOrders)
}

func TestAggregator_UnbindClearsEverything(t *testing.T) {
	agg, store := newTestAggregator(t, nil)
	require.NoError(t, agg.SetIdentity("admin-1"))
	store.push(t, "admin-1", "rooms", models.RoomOccupied, room("admin-1", models.RoomOccupied))
	require.Eventually(t, func() bool { return agg.Snapshot().OccupiedRooms == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, agg.SetIdentity(""))

	assert.Empty(t, store.live())
	assert.Equal(t, View{}, agg.Snapshot())
	assert.Zero(t, agg.LiveFeeds())
}

func TestAggregator_SameIdentityIsNoop(t *testing.T) {
	agg, store := newTestAggregator(t, nil)
	require.NoError(t, agg.SetIdentity("admin-1"))
	require.NoError(t, agg.SetIdentity("admin-1"))

	store.mu.Lock()
	total := len(store.subs)
	store.mu.Unlock()
	assert.Equal(t, 4, total)
}

func TestAggregator_BindFailureLeavesUnbound(t *testing.T) {
	store := &fakeStore{fail: map[string]error{
		"foodOrders[adminId==admin-1,status==pending]": errors.New("permission denied"),
	}}
	agg := New(store, testCollections, nil, nil, zap.NewNop())
	defer agg.Close()

	err := agg.SetIdentity("admin-1")

	assert.Error(t, err)
	assert.Empty(t, store.live())
	assert.Equal(t, "", agg.Identity())
}

func TestAggregator_ArrivalAlerts(t *testing.T) {
	var mu sync.Mutex
	var arrivals []detector.Arrival
	det := detector.New(func(a detector.Arrival) {
		mu.Lock()
		defer mu.Unlock()
		arrivals = append(arrivals, a)
	})
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(arrivals)
	}
	agg, store := newTestAggregator(t, det)
	require.NoError(t, agg.SetIdentity("admin-1"))

	// startup backlog is the baseline
	a, b := order("admin-1"), order("admin-1")
	store.push(t, "admin-1", "foodOrders", models.StatusPending, a, b)
	require.Eventually(t, func() bool { return len(agg.Snapshot().FoodOrders) == 2 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, count())

	store.push(t, "admin-1", "foodOrders", models.StatusPending, a, b, order("admin-1"), order("admin-1"))
	require.Eventually(t, func() bool { return count() == 1 }, time.Second, 5*time.Millisecond)

	store.push(t, "admin-1", "foodOrders", models.StatusPending, a)
	require.Eventually(t, func() bool { return len(agg.Snapshot().FoodOrders) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, count())

	// a new identity starts from a fresh baseline
	require.NoError(t, agg.SetIdentity("admin-2"))
	store.push(t, "admin-2", "foodOrders", models.StatusPending, order("admin-2"), order("admin-2"))
	require.Eventually(t, func() bool { return len(agg.Snapshot().FoodOrders) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, count())
}

func TestAggregator_ObserversSeeUpdates(t *testing.T) {
	agg, store := newTestAggregator(t, nil)
	var mu sync.Mutex
	var kinds []Kind
	agg.OnChange(func(kind Kind, v View) {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, kind)
	})
	require.NoError(t, agg.SetIdentity("admin-1"))

	store.push(t, "admin-1", "rooms", models.RoomAvailable, room("admin-1", models.RoomAvailable))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(kinds) == 1 && kinds[0] == AvailableRooms
	}, time.Second, 5*time.Millisecond)
}

func TestAggregator_ResubscribeAfterFeedError(t *testing.T) {
	var mu sync.Mutex
	var reported []error
	store := &fakeStore{}
	agg := New(store, testCollections, nil, func(q database.Query, err error) {
		mu.Lock()
		defer mu.Unlock()
		reported = append(reported, err)
	}, zap.NewNop())
	defer agg.Close()
	require.NoError(t, agg.SetIdentity("admin-1"))

	sub := store.find("admin-1", "foodOrders", models.StatusPending)
	sub.ch <- database.Result{Err: errors.New("permission denied")}
	require.Eventually(t, func() bool { return agg.LiveFeeds() == 3 }, time.Second, 5*time.Millisecond)

	require.NoError(t, agg.Resubscribe())
	assert.Equal(t, 4, agg.LiveFeeds())
	assert.Len(t, store.live(), 4)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, reported, 1)
}

func TestAggregator_UndecodableDocumentReported(t *testing.T) {
	var mu sync.Mutex
	var reported []error
	store := &fakeStore{}
	agg := New(store, testCollections, nil, func(q database.Query, err error) {
		mu.Lock()
		defer mu.Unlock()
		reported = append(reported, err)
	}, zap.NewNop())
	defer agg.Close()
	require.NoError(t, agg.SetIdentity("admin-1"))

	drifted := bson.M{
		"_id":        primitive.NewObjectID(),
		"adminId":    "admin-1",
		"status":     models.StatusPending,
		"roomNumber": "12",
	}
	store.push(t, "admin-1", "foodOrders", models.StatusPending, order("admin-1"), drifted)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reported) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Len(t, agg.Snapshot().FoodOrders, 1, "readable orders stay visible")
	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, reported[0].Error(), "1 of 2 documents could not be read")
	assert.Equal(t, 4, agg.LiveFeeds(), "the feed keeps running")
}
