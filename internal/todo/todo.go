// Package todo provides persistence for users, categories, and orders.
//
// Responsibilities: owner-scoped reads and writes against PostgreSQL.
// All statements are parameterized; one statement per logical operation.
package todo

import "errors"

// ErrInvalidAPIKey indicates the supplied API key matches no user.
var ErrInvalidAPIKey = errors.New("api key not set or invalid")

// ErrNotFound indicates the requested row does not exist in the database.
var ErrNotFound = errors.New("not found")

// User represents an account row in the jonnen table.
// The api_key column is the sole credential.
type User struct {
	ID     int64
	Name   string
	APIKey string
}

// Category is a named grouping for orders.
type Category struct {
	ID           int64
	CategoryName string
}

// Order is a to-do item joined with its category name.
//
// DueAt and Completed carry the database's text rendering of the timestamps
// (the wire format casts both columns to varchar). Completed is nil while the
// order is open, and for projections that do not select the column.
type Order struct {
	ID           int64
	OrderTitle   string
	JonneID      int64
	CategoryID   int64
	DueAt        string
	CategoryName string
	Completed    *string
}
