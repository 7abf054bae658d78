// Package feed turns a remote store subscription into a cancellable stream
// of complete result-set snapshots.
package feed

import (
	"context"
	"fmt"
	"sync"

	"go-hotel-dashboard/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Subscriber is the remote store's live-query primitive.
type Subscriber interface {
	Subscribe(ctx context.Context, q database.Query) (<-chan database.Result, error)
}

// ErrorSink receives the error that ended a feed. It is called at most once
// per feed.
type ErrorSink func(q database.Query, err error)

// Snapshot is the complete matching set at one point in time. Each snapshot
// replaces the previous one.
type Snapshot struct {
	Seq  uint64
	Docs []bson.Raw
}

// Feed is a live subscription to one filtered collection view. Receive
// snapshots from C; C is closed when the feed ends. A consumer that falls
// behind only sees the most recent snapshot.
type Feed struct {
	C <-chan Snapshot

	query  database.Query
	out    chan Snapshot
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Open subscribes to q. The feed runs until Unsubscribe is called, ctx is
// cancelled or the subscription fails; a failure is reported to onError and
// the feed stops emitting.
func Open(ctx context.Context, sub Subscriber, q database.Query, onError ErrorSink, logger *zap.Logger) (*Feed, error) {
	ctx, cancel := context.WithCancel(ctx)
	results, err := sub.Subscribe(ctx, q)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", q, err)
	}

	out := make(chan Snapshot, 1)
	f := &Feed{
		C:      out,
		query:  q,
		out:    out,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go f.pump(ctx, results, onError, logger)
	return f, nil
}

func (f *Feed) Query() database.Query {
	return f.query
}

func (f *Feed) pump(ctx context.Context, results <-chan database.Result, onError ErrorSink, logger *zap.Logger) {
	defer close(f.done)
	defer close(f.out)
	defer f.cancel()

	var seq uint64
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-results:
			if !ok {
				return
			}
			if r.Err != nil {
				logger.Warn("Feed stopped",
					zap.Stringer("query", f.query),
					zap.Error(r.Err),
				)
				if onError != nil {
					onError(f.query, r.Err)
				}
				return
			}
			if ctx.Err() != nil {
				return
			}
			seq++
			f.deliver(Snapshot{Seq: seq, Docs: r.Docs})
		}
	}
}

// deliver replaces any snapshot the consumer has not picked up yet.
// pump is the only sender, so the second send cannot block.
func (f *Feed) deliver(s Snapshot) {
	select {
	case f.out <- s:
	default:
		select {
		case <-f.out:
		default:
		}
		f.out <- s
	}
}

// Unsubscribe stops the feed and releases the subscription. When it returns
// no further snapshot will be received from C. Safe to call more than once.
func (f *Feed) Unsubscribe() {
	f.once.Do(f.cancel)
	<-f.done
	for range f.out {
	}
}

// Done is closed once the feed has stopped.
func (f *Feed) Done() <-chan struct{} {
	return f.done
}
