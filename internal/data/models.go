// Package data provides the data models and database interaction logic
// for the library management system.
package data

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors returned by the model layer. Callers match on these with
// errors.Is and translate them to the appropriate response at the boundary.
var (
	// ErrRecordNotFound is returned when a query finds no matching row.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateISBN is returned when inserting or updating a book would
	// violate the unique index on the isbn column.
	ErrDuplicateISBN = errors.New("duplicate isbn")

	// ErrDuplicateShelfItem is returned when a (user, book) pair is already
	// present on the shelf.
	ErrDuplicateShelfItem = errors.New("book already on shelf")

	// ErrDuplicateUsername is returned when a username is already taken.
	ErrDuplicateUsername = errors.New("duplicate username")

	// ErrDuplicateEmail is returned when an email address is already registered.
	ErrDuplicateEmail = errors.New("duplicate email")
)

// Models is a top-level container that groups all database model types together.
// It is passed around the application via applicationDependencies so every handler
// has access to the database without importing sql directly.
type Models struct {
	Books BookModel
	Users UserModel
	Roles RoleModel
	Shelf ShelfModel
}

// NewModels constructs a Models value wired up to the given database connection pool.
// Call this once during application startup and store the result in applicationDependencies.
func NewModels(db *sql.DB) Models {
	return Models{
		Books: BookModel{DB: db},
		Users: UserModel{DB: db},
		Roles: RoleModel{DB: db},
		Shelf: ShelfModel{DB: db},
	}
}

// uniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505) on the named constraint. The application-level
// existence checks are only a fast path; the constraint is the source of
// truth under concurrent duplicate writes, so every insert that can race
// must map 23505 back to the matching sentinel error.
func uniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && pqErr.Constraint == constraint
	}
	return false
}
