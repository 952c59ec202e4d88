// Package shelf implements the per-user shelf: adding catalog books (by id
// or by ISBN), listing, partial updates, and removal, with ownership and
// uniqueness invariants enforced on every mutation.
package shelf

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/rmbarros/library-api/internal/data"
	"github.com/rmbarros/library-api/internal/validator"
)

// ErrNotOwner is returned when a user tries to update or delete a shelf item
// owned by someone else.
var ErrNotOwner = errors.New("shelf item owned by another user")

// UserStore resolves authenticated usernames to accounts.
type UserStore interface {
	GetByUsername(username string) (*data.User, error)
}

// ItemStore is the slice of the persistence layer the manager consumes.
type ItemStore interface {
	Insert(item *data.ShelfItem) error
	Get(id int64) (*data.ShelfItem, error)
	GetByUserAndBook(userID, bookID int64) (*data.ShelfItem, error)
	AllForUser(userID int64, filters data.Filters) ([]*data.ShelfItemView, data.Metadata, error)
	Update(item *data.ShelfItem) error
	Delete(id int64) error
}

// BookResolver is the catalog surface the manager composes with: direct book
// lookup for add-by-id, and resolve-or-import for add-by-ISBN.
type BookResolver interface {
	Get(id int64) (*data.Book, error)
	ResolveByISBN(ctx context.Context, isbn string) (*data.Book, error)
}

// ItemInput carries the client-supplied shelf fields. Every field is a
// pointer so "not provided" (nil) is distinguishable from a zero value; on
// update only non-nil fields overwrite the stored item.
type ItemInput struct {
	ReadingStatus *data.ReadingStatus `json:"reading_status"`
	Rating        *float64            `json:"rating"`
	Review        *string             `json:"review"`
	CurrentPage   *int                `json:"current_page"`
	IsFavorite    *bool               `json:"is_favorite"`
}

// ItemByISBNInput is the add-by-ISBN request: the ISBN to resolve plus the
// usual shelf fields.
type ItemByISBNInput struct {
	ISBN string `json:"isbn"`
	ItemInput
}

// ValidateItemInput checks the provided fields; nil fields are fine.
func ValidateItemInput(v *validator.Validator, input *ItemInput) {
	if input.ReadingStatus != nil {
		v.Check(input.ReadingStatus.IsValid(), "reading_status",
			"must be one of "+strings.Join(data.ReadingStatusValues, ", "))
	}
	if input.Rating != nil {
		v.Check(*input.Rating >= 1 && *input.Rating <= 5, "rating", "must be between 1 and 5")
	}
	if input.CurrentPage != nil {
		v.Check(*input.CurrentPage >= 0, "current_page", "must not be negative")
	}
}

// Manager enforces the shelf invariants on top of its stores and composes
// with the catalog resolver for the add-by-ISBN shortcut.
type Manager struct {
	users   UserStore
	items   ItemStore
	catalog BookResolver
	logger  *slog.Logger
}

// NewManager wires a Manager to its collaborators.
func NewManager(users UserStore, items ItemStore, catalog BookResolver, logger *slog.Logger) *Manager {
	return &Manager{
		users:   users,
		items:   items,
		catalog: catalog,
		logger:  logger,
	}
}

// AddByBookID shelves the identified catalog book for the user. Missing user
// or book surfaces as data.ErrRecordNotFound; an existing (user, book) pair
// as data.ErrDuplicateShelfItem. Unspecified fields get their defaults:
// WANT_TO_READ, rating 0, current page 0, not favorite.
func (m *Manager) AddByBookID(username string, bookID int64, input ItemInput) (*data.ShelfItem, error) {
	user, err := m.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}

	book, err := m.catalog.Get(bookID)
	if err != nil {
		return nil, err
	}

	// Fast-path duplicate check; the store's unique constraint is the
	// authority under concurrent adds.
	_, err = m.items.GetByUserAndBook(user.ID, book.ID)
	if err == nil {
		return nil, data.ErrDuplicateShelfItem
	}
	if !errors.Is(err, data.ErrRecordNotFound) {
		return nil, err
	}

	item := &data.ShelfItem{
		UserID:        user.ID,
		BookID:        book.ID,
		ReadingStatus: data.StatusWantToRead,
	}
	if input.ReadingStatus != nil {
		item.ReadingStatus = *input.ReadingStatus
	}
	if input.Rating != nil {
		item.Rating = *input.Rating
	}
	if input.Review != nil {
		item.Review = *input.Review
	}
	if input.CurrentPage != nil {
		item.CurrentPage = *input.CurrentPage
	}
	if input.IsFavorite != nil {
		item.IsFavorite = *input.IsFavorite
	}

	if err := m.items.Insert(item); err != nil {
		return nil, err
	}

	m.logger.Info("book added to shelf", "username", username, "book_id", book.ID, "shelf_item_id", item.ID)
	return item, nil
}

// AddByISBN resolves the ISBN through the catalog (importing from the
// provider if necessary) and then shelves the resolved book. Resolution
// completes, or fails, strictly before the shelf add begins.
func (m *Manager) AddByISBN(ctx context.Context, username string, input ItemByISBNInput) (*data.ShelfItem, error) {
	book, err := m.catalog.ResolveByISBN(ctx, input.ISBN)
	if err != nil {
		return nil, err
	}
	return m.AddByBookID(username, book.ID, input.ItemInput)
}

// ListForUser returns one page of the user's shelf, joined with book titles
// and authors.
func (m *Manager) ListForUser(username string, filters data.Filters) ([]*data.ShelfItemView, data.Metadata, error) {
	user, err := m.users.GetByUsername(username)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	return m.items.AllForUser(user.ID, filters)
}

// Update applies a partial update to the identified shelf item: only non-nil
// input fields overwrite stored values. Only the owning user may update an
// item; anyone else gets ErrNotOwner and the item is left untouched. Reading
// status transitions are unrestricted.
func (m *Manager) Update(username string, itemID int64, input ItemInput) (*data.ShelfItem, error) {
	item, err := m.ownedItem(username, itemID)
	if err != nil {
		return nil, err
	}

	if input.ReadingStatus != nil {
		item.ReadingStatus = *input.ReadingStatus
	}
	if input.Rating != nil {
		item.Rating = *input.Rating
	}
	if input.Review != nil {
		item.Review = *input.Review
	}
	if input.CurrentPage != nil {
		item.CurrentPage = *input.CurrentPage
	}
	if input.IsFavorite != nil {
		item.IsFavorite = *input.IsFavorite
	}

	if err := m.items.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Remove deletes the identified shelf item after the same ownership check as
// Update.
func (m *Manager) Remove(username string, itemID int64) error {
	item, err := m.ownedItem(username, itemID)
	if err != nil {
		return err
	}

	if err := m.items.Delete(item.ID); err != nil {
		return err
	}

	m.logger.Info("book removed from shelf", "username", username, "shelf_item_id", itemID)
	return nil
}

// ownedItem resolves the user and the item and verifies ownership.
func (m *Manager) ownedItem(username string, itemID int64) (*data.ShelfItem, error) {
	user, err := m.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}

	item, err := m.items.Get(itemID)
	if err != nil {
		return nil, err
	}

	if item.UserID != user.ID {
		return nil, ErrNotOwner
	}
	return item, nil
}
