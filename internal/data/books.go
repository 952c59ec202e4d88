package data

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rmbarros/library-api/internal/validator"
)

// Book represents a single catalog entry shared by all users.
// It maps directly to a row in the "books" table. The ISBN is unique across
// the catalog; it may be empty only for manually created legacy records.
type Book struct {
	ID            int64  `json:"id"`                        // Unique identifier assigned by the database
	ISBN          string `json:"isbn,omitempty"`            // ISBN-13 or ISBN-10, unique when present
	Title         string `json:"title"`                     // Title of the book
	Author        string `json:"author"`                    // Author name(s), comma-joined free text
	Publisher     string `json:"publisher"`                 // Name of the publishing company
	Genre         string `json:"genre,omitempty"`           // Primary genre or category label
	Description   string `json:"description,omitempty"`     // Optional synopsis
	Language      string `json:"language,omitempty"`        // ISO language code as reported by the source
	Pages         int    `json:"pages"`                     // Total page count, never negative
	CoverImageURL string `json:"cover_image_url,omitempty"` // Optional cover image location
}

// BookInput holds the fields a client supplies when creating a book or
// replacing one on update. Updates are full-field overwrites, so the same
// input type serves both operations.
type BookInput struct {
	ISBN          string `json:"isbn"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Publisher     string `json:"publisher"`
	Genre         string `json:"genre"`
	Description   string `json:"description"`
	Language      string `json:"language"`
	Pages         int    `json:"pages"`
	CoverImageURL string `json:"cover_image_url"`
}

// ValidateBookInput collects field-level validation errors for a create or
// replace request.
func ValidateBookInput(v *validator.Validator, input *BookInput) {
	v.Check(input.Title != "", "title", "must be provided")
	v.Check(len(input.Title) <= 500, "title", "must not be more than 500 characters")
	v.Check(input.Author != "", "author", "must be provided")
	v.Check(input.Publisher != "", "publisher", "must be provided")
	v.Check(input.Pages >= 0, "pages", "must not be negative")
	if input.ISBN != "" {
		n := len(input.ISBN)
		v.Check(n >= 10 && n <= 17, "isbn", "must be between 10 and 17 characters")
	}
}

// BookModel wraps a *sql.DB connection and provides methods for
// creating, reading, and searching book records.
type BookModel struct {
	DB *sql.DB // Shared database connection pool
}

// bookColumns is the SELECT list shared by every book query. The isbn column
// is nullable in the schema; COALESCE keeps the Go side a plain string.
const bookColumns = `id, COALESCE(isbn, ''), title, author, publisher, genre, description, language, pages, cover_image_url`

func scanBook(row interface{ Scan(...any) error }, book *Book) error {
	return row.Scan(
		&book.ID,
		&book.ISBN,
		&book.Title,
		&book.Author,
		&book.Publisher,
		&book.Genre,
		&book.Description,
		&book.Language,
		&book.Pages,
		&book.CoverImageURL,
	)
}

// Insert adds a new book record to the database and writes the assigned id
// back into the struct. An empty ISBN is stored as NULL so the unique index
// only applies to real ISBNs. Returns ErrDuplicateISBN when the index is
// violated.
func (m BookModel) Insert(book *Book) error {
	query := `
		INSERT INTO books (isbn, title, author, publisher, genre, description, language, pages, cover_image_url)
		VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := m.DB.QueryRow(
		query,
		book.ISBN,
		book.Title,
		book.Author,
		book.Publisher,
		book.Genre,
		book.Description,
		book.Language,
		book.Pages,
		book.CoverImageURL,
	).Scan(&book.ID)

	if err != nil {
		if uniqueViolation(err, "books_isbn_key") {
			return ErrDuplicateISBN
		}
		return err
	}

	return nil
}

// Get retrieves a single book by its primary key.
// Returns ErrRecordNotFound if no book with the given id exists.
func (m BookModel) Get(id int64) (*Book, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM books WHERE id = $1`, bookColumns)

	var book Book
	err := scanBook(m.DB.QueryRow(query, id), &book)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &book, nil
}

// GetByISBN retrieves the single book carrying the given ISBN.
// Returns ErrRecordNotFound when the ISBN is not in the catalog.
func (m BookModel) GetByISBN(isbn string) (*Book, error) {
	if isbn == "" {
		return nil, ErrRecordNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM books WHERE isbn = $1`, bookColumns)

	var book Book
	err := scanBook(m.DB.QueryRow(query, isbn), &book)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &book, nil
}

// GetByTitle retrieves a book by exact title match, ignoring case.
func (m BookModel) GetByTitle(title string) (*Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE LOWER(title) = LOWER($1)`, bookColumns)

	var book Book
	err := scanBook(m.DB.QueryRow(query, title), &book)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &book, nil
}

// GetAll retrieves a paginated, sorted list of books.
// It uses a COUNT(*) OVER() window function so only one round-trip is needed.
// Returns the book slice and pagination Metadata.
func (m BookModel) GetAll(filters Filters) ([]*Book, Metadata, error) {
	// Build query dynamically using the validated sort column and direction.
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), %s
		FROM books
		ORDER BY %s %s, id ASC
		LIMIT $1 OFFSET $2`, bookColumns, filters.sortColumn(), filters.sortDirection())

	return m.queryBooks(query, filters, filters.limit(), filters.offset())
}

// GetByGenre retrieves a paginated list of books with an exact,
// case-insensitive genre match.
func (m BookModel) GetByGenre(genre string, filters Filters) ([]*Book, Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), %s
		FROM books
		WHERE LOWER(genre) = LOWER($1)
		ORDER BY %s %s, id ASC
		LIMIT $2 OFFSET $3`, bookColumns, filters.sortColumn(), filters.sortDirection())

	return m.queryBooks(query, filters, genre, filters.limit(), filters.offset())
}

// queryBooks runs a paginated book query and scans the window-function count
// plus the book columns from every row.
func (m BookModel) queryBooks(query string, filters Filters, args ...any) ([]*Book, Metadata, error) {
	rows, err := m.DB.Query(query, args...)
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	totalRecords := 0
	books := []*Book{}

	for rows.Next() {
		var book Book
		err := rows.Scan(
			&totalRecords, // COUNT(*) OVER(), same value on every row
			&book.ID,
			&book.ISBN,
			&book.Title,
			&book.Author,
			&book.Publisher,
			&book.Genre,
			&book.Description,
			&book.Language,
			&book.Pages,
			&book.CoverImageURL,
		)
		if err != nil {
			return nil, Metadata{}, err
		}
		books = append(books, &book)
	}

	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	metadata := CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return books, metadata, nil
}

// All retrieves every book in the catalog with no pagination. The author and
// publisher searches filter the full set in-process to keep their exact,
// case-insensitive matching behavior.
func (m BookModel) All() ([]*Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books ORDER BY id ASC`, bookColumns)

	rows, err := m.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []*Book{}
	for rows.Next() {
		var book Book
		if err := scanBook(rows, &book); err != nil {
			return nil, err
		}
		books = append(books, &book)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// Update replaces every field of the stored book with the values in book.
// Returns ErrRecordNotFound if the id no longer exists, and ErrDuplicateISBN
// if the new ISBN collides with another record.
func (m BookModel) Update(book *Book) error {
	query := `
		UPDATE books
		SET isbn = NULLIF($1, ''), title = $2, author = $3, publisher = $4, genre = $5,
		    description = $6, language = $7, pages = $8, cover_image_url = $9
		WHERE id = $10`

	args := []any{
		book.ISBN,
		book.Title,
		book.Author,
		book.Publisher,
		book.Genre,
		book.Description,
		book.Language,
		book.Pages,
		book.CoverImageURL,
		book.ID,
	}

	result, err := m.DB.Exec(query, args...)
	if err != nil {
		if uniqueViolation(err, "books_isbn_key") {
			return ErrDuplicateISBN
		}
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

// Delete removes the book with the given id from the database.
// Returns ErrRecordNotFound if no matching record exists. Shelf items
// referencing the book are not checked here; the schema decides whether the
// delete is rejected or cascades.
func (m BookModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	query := `DELETE FROM books WHERE id = $1`

	result, err := m.DB.Exec(query, id)
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
