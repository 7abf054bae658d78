package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrInvalidID = errors.New("invalid document id")
)

const idempotencyKeyField = "idempotencyKey"

// Result is one delivery of a subscription: either the complete current
// result set or the error that ended the subscription.
type Result struct {
	Docs []bson.Raw
	Err  error
}

// Store is the remote document store backed by MongoDB.
type Store struct {
	db     *mongo.Database
	logger *zap.Logger
	now    func() time.Time
}

func NewStore(db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger, now: time.Now}
}

// Subscribe delivers the full result set of q once immediately and again
// after every change to the collection that may affect it. The channel is
// closed after an error Result or when ctx is cancelled.
func (s *Store) Subscribe(ctx context.Context, q Query) (<-chan Result, error) {
	coll := s.db.Collection(q.Collection)

	// Watch before the first read so no change between the two is missed.
	stream, err := coll.Watch(ctx, watchPipeline(q), options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", q.Collection, err)
	}
	s.logger.Debug("Subscription opened", zap.Stringer("query", q))

	out := make(chan Result, 1)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())
		defer s.logger.Debug("Subscription closed", zap.Stringer("query", q))

		if !s.emit(ctx, coll, q, out) {
			return
		}
		for stream.Next(ctx) {
			if !s.emit(ctx, coll, q, out) {
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			send(ctx, out, Result{Err: fmt.Errorf("change stream %s: %w", q, err)})
		}
	}()
	return out, nil
}

// watchPipeline passes changes to documents in q's scope. Deletes carry no
// document to match on, so they always pass and trigger a re-read.
func watchPipeline(q Query) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "fullDocument." + q.Scope.Field, Value: q.Scope.Value}},
			bson.D{{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{"delete", "drop", "invalidate"}}}}},
		}}}}},
	}
}

func (s *Store) emit(ctx context.Context, coll *mongo.Collection, q Query, out chan<- Result) bool {
	docs, err := s.find(ctx, coll, q)
	if err != nil {
		if ctx.Err() == nil {
			send(ctx, out, Result{Err: err})
		}
		return false
	}
	return send(ctx, out, Result{Docs: docs})
}

func (s *Store) find(ctx context.Context, coll *mongo.Collection, q Query) ([]bson.Raw, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := coll.Find(ctx, q.Filter(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", q, err)
	}
	docs := []bson.Raw{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", q, err)
	}
	return docs, nil
}

func send(ctx context.Context, out chan<- Result, r Result) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

// Update applies changes to an existing document within scope. It never
// creates one, and a document outside scope is reported as ErrNotFound.
func (s *Store) Update(ctx context.Context, collection string, id string, scope Predicate, changes Fields) error {
	filter, err := scopedIDFilter(id, scope)
	if err != nil {
		return err
	}
	result, err := s.db.Collection(collection).UpdateOne(ctx, filter, updateDocument(changes))
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

// Create inserts a document and returns its id. With a non-empty key the
// write is an upsert on the idempotency key, so repeating it returns the
// document created the first time and leaves it unchanged. Server
// timestamps are taken from the local clock, as for CreateMany.
func (s *Store) Create(ctx context.Context, collection string, key string, fields Fields) (string, error) {
	filter := bson.D{{Key: "_id", Value: primitive.NewObjectID()}}
	if key != "" {
		filter = bson.D{{Key: idempotencyKeyField, Value: key}}
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.D{{Key: "_id", Value: 1}})

	var created struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err := s.db.Collection(collection).FindOneAndUpdate(ctx, filter, insertDocument(fields, s.now().UTC()), opts).Decode(&created)
	if err != nil {
		return "", fmt.Errorf("failed to create in %s: %w", collection, err)
	}
	return created.ID.Hex(), nil
}

func (s *Store) Count(ctx context.Context, q Query) (int64, error) {
	n, err := s.db.Collection(q.Collection).CountDocuments(ctx, q.Filter())
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", q, err)
	}
	return n, nil
}

// CreateMany bulk-inserts documents. Server timestamps are taken from the
// local clock since inserts cannot use $currentDate.
func (s *Store) CreateMany(ctx context.Context, collection string, docs []Fields) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	now := s.now().UTC()
	toInsert := make([]interface{}, 0, len(docs))
	ids := make([]string, 0, len(docs))
	for _, fields := range docs {
		id := primitive.NewObjectID()
		doc := bson.D{{Key: "_id", Value: id}}
		values, stamped := fields.split()
		doc = append(doc, values...)
		for _, e := range stamped {
			doc = append(doc, bson.E{Key: e.Key, Value: now})
		}
		toInsert = append(toInsert, doc)
		ids = append(ids, id.Hex())
	}
	if _, err := s.db.Collection(collection).InsertMany(ctx, toInsert); err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return ids, nil
}

func idFilter(id string) (bson.D, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return bson.D{{Key: "_id", Value: oid}}, nil
}

func scopedIDFilter(id string, scope Predicate) (bson.D, error) {
	filter, err := idFilter(id)
	if err != nil {
		return nil, err
	}
	if scope.Field != "" {
		filter = append(filter, bson.E{Key: scope.Field, Value: scope.Value})
	}
	return filter, nil
}

func updateDocument(changes Fields) bson.D {
	values, stamped := changes.split()
	var update bson.D
	if len(values) > 0 {
		update = append(update, bson.E{Key: "$set", Value: values})
	}
	if len(stamped) > 0 {
		update = append(update, bson.E{Key: "$currentDate", Value: stamped})
	}
	return update
}

// insertDocument only sets fields when the upsert inserts, so a matched
// document is never rewritten.
func insertDocument(fields Fields, now time.Time) bson.D {
	values, stamped := fields.split()
	for _, e := range stamped {
		values = append(values, bson.E{Key: e.Key, Value: now})
	}
	if len(values) == 0 {
		return bson.D{{Key: "$setOnInsert", Value: bson.D{}}}
	}
	return bson.D{{Key: "$setOnInsert", Value: values}}
}
