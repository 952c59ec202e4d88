package data

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ReadingStatus enumerates the reading states a shelf item can carry. Any
// status may move to any other status on update; there is no transition
// graph.
type ReadingStatus string

const (
	StatusWantToRead ReadingStatus = "WANT_TO_READ"
	StatusReading    ReadingStatus = "READING"
	StatusCompleted  ReadingStatus = "COMPLETED"
	StatusDropped    ReadingStatus = "DROPPED"
)

// ReadingStatusValues lists every valid status label, for validation.
var ReadingStatusValues = []string{
	string(StatusWantToRead),
	string(StatusReading),
	string(StatusCompleted),
	string(StatusDropped),
}

// IsValid reports whether s is one of the known status labels.
func (s ReadingStatus) IsValid() bool {
	switch s {
	case StatusWantToRead, StatusReading, StatusCompleted, StatusDropped:
		return true
	}
	return false
}

// ShelfItem links one user to one catalog book and carries the personal
// reading state. The (user_id, book_id) pair is unique.
type ShelfItem struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"user_id"`
	BookID        int64         `json:"book_id"`
	ReadingStatus ReadingStatus `json:"reading_status"`
	Rating        float64       `json:"rating"` // 1 to 5 when set, 0 when never rated
	Review        string        `json:"review,omitempty"`
	CurrentPage   int           `json:"current_page"`
	IsFavorite    bool          `json:"is_favorite"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// ShelfItemView is the shelf row joined with the book it references, shaped
// for responses.
type ShelfItemView struct {
	ShelfItemID   int64         `json:"shelf_item_id"`
	BookID        int64         `json:"book_id"`
	Title         string        `json:"title"`
	Author        string        `json:"author"`
	ReadingStatus ReadingStatus `json:"reading_status"`
	Rating        float64       `json:"rating"`
	Review        string        `json:"review,omitempty"`
	IsFavorite    bool          `json:"is_favorite"`
	CurrentPage   int           `json:"current_page"`
}

// ShelfModel wraps a *sql.DB connection for the shelf_items table.
type ShelfModel struct {
	DB *sql.DB
}

const shelfColumns = `id, user_id, book_id, reading_status, rating, review, current_page, is_favorite, created_at, updated_at`

func scanShelfItem(row interface{ Scan(...any) error }, item *ShelfItem) error {
	return row.Scan(
		&item.ID,
		&item.UserID,
		&item.BookID,
		&item.ReadingStatus,
		&item.Rating,
		&item.Review,
		&item.CurrentPage,
		&item.IsFavorite,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
}

// Insert persists a new shelf item and writes the assigned id and timestamps
// back into the struct. Returns ErrDuplicateShelfItem when the (user, book)
// uniqueness constraint is violated, which is the authoritative duplicate
// check under concurrent adds.
func (m ShelfModel) Insert(item *ShelfItem) error {
	query := `
		INSERT INTO shelf_items (user_id, book_id, reading_status, rating, review, current_page, is_favorite)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := m.DB.QueryRow(
		query,
		item.UserID,
		item.BookID,
		item.ReadingStatus,
		item.Rating,
		item.Review,
		item.CurrentPage,
		item.IsFavorite,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		if uniqueViolation(err, "shelf_items_user_id_book_id_key") {
			return ErrDuplicateShelfItem
		}
		return err
	}
	return nil
}

// Get retrieves a single shelf item by primary key.
func (m ShelfModel) Get(id int64) (*ShelfItem, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM shelf_items WHERE id = $1`, shelfColumns)

	var item ShelfItem
	err := scanShelfItem(m.DB.QueryRow(query, id), &item)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &item, nil
}

// GetByUserAndBook retrieves the shelf item linking the given user and book,
// used as the fast-path duplicate check before an insert.
func (m ShelfModel) GetByUserAndBook(userID, bookID int64) (*ShelfItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM shelf_items WHERE user_id = $1 AND book_id = $2`, shelfColumns)

	var item ShelfItem
	err := scanShelfItem(m.DB.QueryRow(query, userID, bookID), &item)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &item, nil
}

// AllForUser retrieves the user's shelf joined with book titles and authors,
// paginated and sorted per filters.
func (m ShelfModel) AllForUser(userID int64, filters Filters) ([]*ShelfItemView, Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), s.id, s.book_id, b.title, b.author,
		       s.reading_status, s.rating, s.review, s.is_favorite, s.current_page
		FROM shelf_items s
		INNER JOIN books b ON b.id = s.book_id
		WHERE s.user_id = $1
		ORDER BY s.%s %s, s.id ASC
		LIMIT $2 OFFSET $3`, filters.sortColumn(), filters.sortDirection())

	rows, err := m.DB.Query(query, userID, filters.limit(), filters.offset())
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	totalRecords := 0
	items := []*ShelfItemView{}

	for rows.Next() {
		var view ShelfItemView
		err := rows.Scan(
			&totalRecords,
			&view.ShelfItemID,
			&view.BookID,
			&view.Title,
			&view.Author,
			&view.ReadingStatus,
			&view.Rating,
			&view.Review,
			&view.IsFavorite,
			&view.CurrentPage,
		)
		if err != nil {
			return nil, Metadata{}, err
		}
		items = append(items, &view)
	}

	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	metadata := CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return items, metadata, nil
}

// Update saves the full shelf item row. The caller performs the
// read-modify-write, so partial-update semantics live above this layer.
func (m ShelfModel) Update(item *ShelfItem) error {
	query := `
		UPDATE shelf_items
		SET reading_status = $1, rating = $2, review = $3, current_page = $4,
		    is_favorite = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $6
		RETURNING updated_at`

	err := m.DB.QueryRow(
		query,
		item.ReadingStatus,
		item.Rating,
		item.Review,
		item.CurrentPage,
		item.IsFavorite,
		item.ID,
	).Scan(&item.UpdatedAt)

	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}
	return nil
}

// Delete removes a shelf item by primary key.
func (m ShelfModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	result, err := m.DB.Exec(`DELETE FROM shelf_items WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
