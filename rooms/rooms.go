// Package rooms creates an operator's initial room inventory.
package rooms

import (
	"context"
	"errors"
	"fmt"

	"go-hotel-dashboard/database"
	"go-hotel-dashboard/models"
)

const MaxRooms = 1000

var ErrInvalidTotal = errors.New("room total must be between 1 and 1000")

type Store interface {
	Count(ctx context.Context, q database.Query) (int64, error)
	CreateMany(ctx context.Context, collection string, docs []database.Fields) ([]string, error)
}

// Setup creates rooms 1..total, all available, unless the operator already
// has rooms. It reports how many rooms were created.
func Setup(ctx context.Context, store Store, collection, adminID string, total int) (int, error) {
	if total < 1 || total > MaxRooms {
		return 0, ErrInvalidTotal
	}
	existing, err := store.Count(ctx, database.Query{
		Collection: collection,
		Scope:      database.Eq("adminId", adminID),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to check existing rooms: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	docs := make([]database.Fields, 0, total)
	for n := 1; n <= total; n++ {
		docs = append(docs, database.Fields{
			"adminId":    adminID,
			"roomNumber": n,
			"status":     models.RoomAvailable,
			"createdAt":  database.ServerTimestamp,
		})
	}
	ids, err := store.CreateMany(ctx, collection, docs)
	if err != nil {
		return 0, fmt.Errorf("failed to create rooms: %w", err)
	}
	return len(ids), nil
}
