package rooms

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go-hotel-dashboard/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	existing int64
	countErr error
	counted  []database.Query
	created  []database.Fields
}

func (s *fakeStore) Count(ctx context.Context, q database.Query) (int64, error) {
	s.counted = append(s.counted, q)
	return s.existing, s.countErr
}

func (s *fakeStore) CreateMany(ctx context.Context, collection string, docs []database.Fields) ([]string, error) {
	s.created = append(s.created, docs...)
	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = fmt.Sprint(i)
	}
	return ids, nil
}

func TestSetup_CreatesRooms(t *testing.T) {
	store := &fakeStore{}

	n, err := Setup(context.Background(), store, "rooms", "admin-1", 3)

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, store.counted, 1)
	assert.Equal(t, database.Eq("adminId", "admin-1"), store.counted[0].Scope)
	require.Len(t, store.created, 3)
	assert.Equal(t, 1, store.created[0]["roomNumber"])
	assert.Equal(t, 3, store.created[2]["roomNumber"])
	assert.Equal(t, "available", store.created[1]["status"])
	assert.Equal(t, "admin-1", store.created[1]["adminId"])
}

func TestSetup_ExistingRoomsNoop(t *testing.T) {
	store := &fakeStore{existing: 20}

	n, err := Setup(context.Background(), store, "rooms", "admin-1", 3)

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.created)
}

func TestSetup_Errors(t *testing.T) {
	_, err := Setup(context.Background(), &fakeStore{}, "rooms", "admin-1", 0)
	assert.ErrorIs(t, err, ErrInvalidTotal)

	_, err = Setup(context.Background(), &fakeStore{countErr: errors.New("timeout")}, "rooms", "admin-1", 5)
	assert.Error(t, err)
}
