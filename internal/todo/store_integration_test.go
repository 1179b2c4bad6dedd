//go:build integration

package todo_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonnen/jonnen/internal/testutil"
	"github.com/jonnen/jonnen/internal/todo"
)

// seed provisions two users and two categories and returns the store.
type seed struct {
	store         *todo.Store
	jonna, maja   int64
	hemma, skolan int64
	jonnaKey      string
}

func setupStore(t *testing.T) (*seed, context.Context) {
	t.Helper()

	tdb, cleanup := testutil.SetupTestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()
	store := todo.New(tdb.Pool, slog.New(slog.DiscardHandler))

	s := &seed{store: store, jonnaKey: "key-jonna"}

	var err error
	s.jonna, err = store.CreateUser(ctx, "Jonna", s.jonnaKey)
	require.NoError(t, err)
	s.maja, err = store.CreateUser(ctx, "Maja", "key-maja")
	require.NoError(t, err)
	s.hemma, err = store.CreateCategory(ctx, "Hemma")
	require.NoError(t, err)
	s.skolan, err = store.CreateCategory(ctx, "Skolan")
	require.NoError(t, err)

	return s, ctx
}

func TestResolveAPIKey(t *testing.T) {
	s, ctx := setupStore(t)

	id, err := s.store.ResolveAPIKey(ctx, s.jonnaKey)
	require.NoError(t, err)
	assert.Equal(t, s.jonna, id)

	_, err = s.store.ResolveAPIKey(ctx, "no-such-key")
	assert.ErrorIs(t, err, todo.ErrInvalidAPIKey)

	// An empty key is just another unknown key.
	_, err = s.store.ResolveAPIKey(ctx, "")
	assert.ErrorIs(t, err, todo.ErrInvalidAPIKey)
}

func TestUserName(t *testing.T) {
	s, ctx := setupStore(t)

	name, err := s.store.UserName(ctx, s.jonna)
	require.NoError(t, err)
	assert.Equal(t, "Jonna", name)

	_, err = s.store.UserName(ctx, 9999)
	assert.ErrorIs(t, err, todo.ErrNotFound)
}

func TestOrdersForUser(t *testing.T) {
	s, ctx := setupStore(t)

	// Seeded out of due-date order; the listing must sort ascending.
	late, err := s.store.CreateOrder(ctx, s.jonna, "Handla mat", s.hemma, "2024-05-02 10:00:00")
	require.NoError(t, err)
	early, err := s.store.CreateOrder(ctx, s.jonna, "Plugga", s.skolan, "2024-05-01 09:00:00")
	require.NoError(t, err)
	_, err = s.store.CreateOrder(ctx, s.maja, "Städa", s.hemma, "2024-05-03 08:00:00")
	require.NoError(t, err)

	orders, err := s.store.OrdersForUser(ctx, s.jonna)
	require.NoError(t, err)
	require.Len(t, orders, 2, "only the owner's orders")

	assert.Equal(t, early, orders[0].ID)
	assert.Equal(t, late, orders[1].ID)
	assert.Equal(t, "Plugga", orders[0].OrderTitle)
	assert.Equal(t, "Skolan", orders[0].CategoryName)

	// Timestamps come back as the database's text rendering.
	assert.Equal(t, "2024-05-01 09:00:00", orders[0].DueAt)
	assert.Nil(t, orders[0].Completed, "open orders have no completion stamp")

	// A user with no orders gets an empty slice, not nil.
	none, err := s.store.OrdersForUser(ctx, 9999)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestOrdersByCategory(t *testing.T) {
	s, ctx := setupStore(t)

	want, err := s.store.CreateOrder(ctx, s.jonna, "Handla mat", s.hemma, "2024-05-02 10:00:00")
	require.NoError(t, err)
	_, err = s.store.CreateOrder(ctx, s.jonna, "Plugga", s.skolan, "2024-05-01 09:00:00")
	require.NoError(t, err)
	_, err = s.store.CreateOrder(ctx, s.maja, "Städa", s.hemma, "2024-05-03 08:00:00")
	require.NoError(t, err)

	orders, err := s.store.OrdersByCategory(ctx, s.jonna, s.hemma)
	require.NoError(t, err)
	require.Len(t, orders, 1, "one owner, one category")
	assert.Equal(t, want, orders[0].ID)
	assert.Equal(t, "Hemma", orders[0].CategoryName)
	assert.Nil(t, orders[0].Completed, "this projection never selects completed")
}

func TestUpdateOrderUnscoped(t *testing.T) {
	s, ctx := setupStore(t)

	id, err := s.store.CreateOrder(ctx, s.maja, "Städa", s.hemma, "2024-05-03 08:00:00")
	require.NoError(t, err)

	// No owner filter: the row changes no matter who it belongs to.
	err = s.store.UpdateOrderUnscoped(ctx, id, s.skolan, "Kapad", "2024-06-01 00:00:00")
	require.NoError(t, err)

	orders, err := s.store.OrdersForUser(ctx, s.maja)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Kapad", orders[0].OrderTitle)
	assert.Equal(t, s.skolan, orders[0].CategoryID)
	assert.Equal(t, s.maja, orders[0].JonneID, "ownership itself never moves")
}

func TestUpdateOrderScoped(t *testing.T) {
	s, ctx := setupStore(t)

	id, err := s.store.CreateOrder(ctx, s.maja, "Städa", s.hemma, "2024-05-03 08:00:00")
	require.NoError(t, err)

	// The wrong owner updates zero rows without error.
	err = s.store.UpdateOrder(ctx, id, s.jonna, s.skolan, "Kapad", "2024-06-01 00:00:00")
	require.NoError(t, err)

	orders, err := s.store.OrdersForUser(ctx, s.maja)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Städa", orders[0].OrderTitle)

	err = s.store.UpdateOrder(ctx, id, s.maja, s.skolan, "Städa klart", "2024-06-01 00:00:00")
	require.NoError(t, err)

	orders, err = s.store.OrdersForUser(ctx, s.maja)
	require.NoError(t, err)
	assert.Equal(t, "Städa klart", orders[0].OrderTitle)
}

func TestDeleteOrder(t *testing.T) {
	s, ctx := setupStore(t)

	id, err := s.store.CreateOrder(ctx, s.jonna, "Handla mat", s.hemma, "2024-05-02 10:00:00")
	require.NoError(t, err)

	rows, err := s.store.DeleteOrder(ctx, id, s.maja)
	require.NoError(t, err)
	assert.Zero(t, rows, "wrong owner deletes nothing")

	rows, err = s.store.DeleteOrder(ctx, id, s.jonna)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	rows, err = s.store.DeleteOrder(ctx, id, s.jonna)
	require.NoError(t, err)
	assert.Zero(t, rows, "already gone")
}

func TestCompleteOrder(t *testing.T) {
	s, ctx := setupStore(t)

	id, err := s.store.CreateOrder(ctx, s.jonna, "Handla mat", s.hemma, "2024-05-02 10:00:00")
	require.NoError(t, err)

	rows, err := s.store.CompleteOrder(ctx, id, s.maja)
	require.NoError(t, err)
	assert.Zero(t, rows, "wrong owner completes nothing")

	rows, err = s.store.CompleteOrder(ctx, id, s.jonna)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	orders, err := s.store.OrdersForUser(ctx, s.jonna)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].Completed)
	first := *orders[0].Completed

	// Completing again re-stamps the same row.
	rows, err = s.store.CompleteOrder(ctx, id, s.jonna)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	orders, err = s.store.OrdersForUser(ctx, s.jonna)
	require.NoError(t, err)
	require.NotNil(t, orders[0].Completed)
	assert.GreaterOrEqual(t, *orders[0].Completed, first)
}

func TestCreateUserDuplicateKey(t *testing.T) {
	s, ctx := setupStore(t)

	// api_key carries a unique constraint.
	_, err := s.store.CreateUser(ctx, "Annan", s.jonnaKey)
	assert.Error(t, err)
}
