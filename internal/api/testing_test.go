package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/jonnen/jonnen/internal/todo"
)

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	keys       map[string]int64 // api key -> user id
	names      map[int64]string // user id -> name
	categories map[int64]string // category id -> name
	orders     []*todo.Order
	nextID     int64

	mutations int   // write operations attempted
	opErr     error // when set, data operations fail with this error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		keys:       make(map[string]int64),
		names:      make(map[int64]string),
		categories: make(map[int64]string),
	}
}

// addUser registers a user and returns its id.
func (f *fakeStore) addUser(id int64, name, apiKey string) {
	f.keys[apiKey] = id
	f.names[id] = name
}

func (f *fakeStore) addCategory(id int64, name string) {
	f.categories[id] = name
}

// addOrder seeds an order row directly, bypassing the mutation counter.
func (f *fakeStore) addOrder(o todo.Order) int64 {
	f.nextID++
	o.ID = f.nextID
	o.CategoryName = f.categories[o.CategoryID]
	f.orders = append(f.orders, &o)
	return o.ID
}

func (f *fakeStore) findOrder(id int64) *todo.Order {
	for _, o := range f.orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (f *fakeStore) ResolveAPIKey(_ context.Context, apiKey string) (int64, error) {
	id, ok := f.keys[apiKey]
	if !ok {
		return 0, todo.ErrInvalidAPIKey
	}
	return id, nil
}

func (f *fakeStore) UserName(_ context.Context, userID int64) (string, error) {
	name, ok := f.names[userID]
	if !ok {
		return "", todo.ErrNotFound
	}
	return name, nil
}

func (f *fakeStore) OrdersForUser(_ context.Context, userID int64) ([]todo.Order, error) {
	if f.opErr != nil {
		return nil, f.opErr
	}
	out := []todo.Order{}
	for _, o := range f.orders {
		if o.JonneID == userID {
			cp := *o
			cp.CategoryName = f.categories[o.CategoryID]
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt < out[j].DueAt })
	return out, nil
}

func (f *fakeStore) OrdersByCategory(_ context.Context, userID, categoryID int64) ([]todo.Order, error) {
	if f.opErr != nil {
		return nil, f.opErr
	}
	out := []todo.Order{}
	for _, o := range f.orders {
		if o.JonneID == userID && o.CategoryID == categoryID {
			cp := *o
			cp.CategoryName = f.categories[o.CategoryID]
			cp.Completed = nil // this projection never selects the column
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt < out[j].DueAt })
	return out, nil
}

func (f *fakeStore) CreateOrder(_ context.Context, userID int64, title string, categoryID int64, dueAt string) (int64, error) {
	f.mutations++
	if f.opErr != nil {
		return 0, f.opErr
	}
	return f.addOrder(todo.Order{
		OrderTitle: title,
		JonneID:    userID,
		CategoryID: categoryID,
		DueAt:      dueAt,
	}), nil
}

func (f *fakeStore) UpdateOrderUnscoped(_ context.Context, orderID, categoryID int64, title, dueAt string) error {
	f.mutations++
	if f.opErr != nil {
		return f.opErr
	}
	if o := f.findOrder(orderID); o != nil {
		o.CategoryID = categoryID
		o.OrderTitle = title
		o.DueAt = dueAt
	}
	return nil
}

func (f *fakeStore) UpdateOrder(_ context.Context, orderID, userID, categoryID int64, title, dueAt string) error {
	f.mutations++
	if f.opErr != nil {
		return f.opErr
	}
	if o := f.findOrder(orderID); o != nil && o.JonneID == userID {
		o.CategoryID = categoryID
		o.OrderTitle = title
		o.DueAt = dueAt
	}
	return nil
}

func (f *fakeStore) DeleteOrder(_ context.Context, orderID, userID int64) (int64, error) {
	f.mutations++
	if f.opErr != nil {
		return 0, f.opErr
	}
	for i, o := range f.orders {
		if o.ID == orderID && o.JonneID == userID {
			f.orders = append(f.orders[:i], f.orders[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeStore) CompleteOrder(_ context.Context, orderID, userID int64) (int64, error) {
	f.mutations++
	if f.opErr != nil {
		return 0, f.opErr
	}
	if o := f.findOrder(orderID); o != nil && o.JonneID == userID {
		stamp := "2024-06-01 12:00:00"
		o.Completed = &stamp
		return 1, nil
	}
	return 0, nil
}

// newTestHandler builds the full middleware+routes handler over the fake.
func newTestHandler(t *testing.T, fs *fakeStore) http.Handler {
	t.Helper()
	srv, err := NewServer(ServerConfig{
		Store:  fs,
		Logger: slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}
	return srv.Handler()
}

// doRequest performs a request against the handler and returns the recorder.
func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeJSON unmarshals a response body into a generic map.
func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("response is not a JSON object: %v\nbody: %s", err, rec.Body.String())
	}
	return m
}
