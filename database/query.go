package database

import (
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Predicate is an equality match on one document field.
type Predicate struct {
	Field string
	Value interface{}
}

func Eq(field string, value interface{}) Predicate {
	return Predicate{Field: field, Value: value}
}

// Query selects the documents of one collection visible to one identity.
// Scope is the identity predicate; Where narrows further. Only equality is
// supported.
type Query struct {
	Collection string
	Scope      Predicate
	Where      []Predicate
}

func (q Query) Filter() bson.D {
	filter := bson.D{{Key: q.Scope.Field, Value: q.Scope.Value}}
	for _, p := range q.Where {
		filter = append(filter, bson.E{Key: p.Field, Value: p.Value})
	}
	return filter
}

func (q Query) String() string {
	parts := []string{fmt.Sprintf("%s==%v", q.Scope.Field, q.Scope.Value)}
	for _, p := range q.Where {
		parts = append(parts, fmt.Sprintf("%s==%v", p.Field, p.Value))
	}
	return q.Collection + "[" + strings.Join(parts, ",") + "]"
}

// Fields is a set of document field values for a write. A value of
// ServerTimestamp is replaced by the server's clock.
type Fields map[string]interface{}

type serverTimestamp struct{}

// ServerTimestamp marks a field to be stamped with the server time.
var ServerTimestamp = serverTimestamp{}

// split separates plain values from server-timestamp fields, in key order.
func (f Fields) split() (values bson.D, stamped bson.D) {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, ok := f[k].(serverTimestamp); ok {
			stamped = append(stamped, bson.E{Key: k, Value: true})
			continue
		}
		values = append(values, bson.E{Key: k, Value: f[k]})
	}
	return values, stamped
}
