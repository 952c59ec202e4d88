// Package catalog implements the resolution and reconciliation flow between
// the local book catalog and the external metadata provider, plus the
// filtered read operations over the catalog.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/rmbarros/library-api/internal/data"
	"github.com/rmbarros/library-api/internal/googlebooks"
)

// Fallback values used when imported metadata omits a field.
const (
	unknownAuthor    = "Unknown Author"
	unknownPublisher = "Unknown Publisher"
)

// bareISBNRx matches a query that is exactly a 10- or 13-digit number, which
// is rewritten to an isbn-qualified provider query.
var bareISBNRx = regexp.MustCompile(`^(\d{10}|\d{13})$`)

// BookStore is the slice of the persistence layer the resolver consumes.
type BookStore interface {
	Insert(book *data.Book) error
	Get(id int64) (*data.Book, error)
	GetByISBN(isbn string) (*data.Book, error)
	GetByTitle(title string) (*data.Book, error)
	GetAll(filters data.Filters) ([]*data.Book, data.Metadata, error)
	GetByGenre(genre string, filters data.Filters) ([]*data.Book, data.Metadata, error)
	All() ([]*data.Book, error)
	Update(book *data.Book) error
	Delete(id int64) error
}

// MetadataClient is the outbound provider surface the resolver consumes.
type MetadataClient interface {
	Search(ctx context.Context, query string, startIndex, maxResults int) ([]googlebooks.Volume, int, error)
	LookupISBN(ctx context.Context, isbn string) (*googlebooks.Volume, error)
}

// Resolver merges the local catalog with the external provider, deduplicating
// on ISBN. It holds no state beyond its collaborators and is safe for
// concurrent use.
type Resolver struct {
	books    BookStore
	metadata MetadataClient
	logger   *slog.Logger
}

// NewResolver wires a Resolver to its store and provider client.
func NewResolver(books BookStore, metadata MetadataClient, logger *slog.Logger) *Resolver {
	return &Resolver{
		books:    books,
		metadata: metadata,
		logger:   logger,
	}
}

// ResolveByISBN returns the catalog book with the given ISBN, importing it
// from the provider on a local miss. A local hit never touches the network.
// Both "provider has no match" and "provider unreachable" surface as
// data.ErrRecordNotFound; the call site cannot tell them apart. Concurrent
// duplicate imports are resolved by the store's ISBN uniqueness constraint,
// surfacing as data.ErrDuplicateISBN to whichever caller loses the race.
func (r *Resolver) ResolveByISBN(ctx context.Context, isbn string) (*data.Book, error) {
	book, err := r.books.GetByISBN(isbn)
	if err == nil {
		r.logger.Debug("isbn resolved locally", "isbn", isbn)
		return book, nil
	}
	if !errors.Is(err, data.ErrRecordNotFound) {
		return nil, err
	}

	r.logger.Info("isbn not in catalog, querying provider", "isbn", isbn)

	volume, err := r.metadata.LookupISBN(ctx, isbn)
	if err != nil {
		r.logger.Warn("provider lookup failed", "isbn", isbn, "error", err)
		return nil, data.ErrRecordNotFound
	}

	book = volumeToBook(isbn, volume)
	if err := r.books.Insert(book); err != nil {
		return nil, err
	}

	r.logger.Info("imported book from provider", "isbn", isbn, "id", book.ID)
	return book, nil
}

// SearchExternal runs a read-only search against the provider for the
// "search before importing" flow; nothing is persisted. A bare 10- or
// 13-digit query is rewritten to an isbn-qualified one. Results without any
// cover image are dropped. A provider failure degrades to an empty page with
// a nil error.
func (r *Resolver) SearchExternal(ctx context.Context, query string, page, pageSize int) ([]googlebooks.Volume, data.Metadata, error) {
	query = strings.TrimSpace(query)
	if bareISBNRx.MatchString(query) {
		query = "isbn:" + query
	}

	startIndex := (page - 1) * pageSize

	volumes, totalItems, err := r.metadata.Search(ctx, query, startIndex, pageSize)
	if err != nil {
		r.logger.Warn("provider search failed", "query", query, "error", err)
		return []googlebooks.Volume{}, data.Metadata{}, nil
	}

	results := make([]googlebooks.Volume, 0, len(volumes))
	for _, v := range volumes {
		if v.HasCoverImage() {
			results = append(results, v)
		}
	}

	return results, data.CalculateMetadata(totalItems, page, pageSize), nil
}

// Create persists a manually supplied book. An ISBN already in the catalog is
// rejected with data.ErrDuplicateISBN; the pre-check is a fast path and the
// store constraint backs it up.
func (r *Resolver) Create(input *data.BookInput) (*data.Book, error) {
	if input.ISBN != "" {
		if _, err := r.books.GetByISBN(input.ISBN); err == nil {
			return nil, data.ErrDuplicateISBN
		} else if !errors.Is(err, data.ErrRecordNotFound) {
			return nil, err
		}
	}

	book := &data.Book{
		ISBN:          input.ISBN,
		Title:         input.Title,
		Author:        input.Author,
		Publisher:     input.Publisher,
		Genre:         input.Genre,
		Description:   input.Description,
		Language:      input.Language,
		Pages:         input.Pages,
		CoverImageURL: input.CoverImageURL,
	}
	if err := r.books.Insert(book); err != nil {
		return nil, err
	}
	return book, nil
}

// Get returns the catalog book with the given id.
func (r *Resolver) Get(id int64) (*data.Book, error) {
	return r.books.Get(id)
}

// Update replaces every field of the identified book with the input values.
func (r *Resolver) Update(id int64, input *data.BookInput) (*data.Book, error) {
	book, err := r.books.Get(id)
	if err != nil {
		return nil, err
	}

	book.ISBN = input.ISBN
	book.Title = input.Title
	book.Author = input.Author
	book.Publisher = input.Publisher
	book.Genre = input.Genre
	book.Description = input.Description
	book.Language = input.Language
	book.Pages = input.Pages
	book.CoverImageURL = input.CoverImageURL

	if err := r.books.Update(book); err != nil {
		return nil, err
	}
	return book, nil
}

// Delete removes the identified book. Shelf items referencing it are not
// checked.
func (r *Resolver) Delete(id int64) error {
	return r.books.Delete(id)
}

// List returns a page of the catalog.
func (r *Resolver) List(filters data.Filters) ([]*data.Book, data.Metadata, error) {
	return r.books.GetAll(filters)
}

// FindByTitle returns the book whose title matches exactly, ignoring case.
func (r *Resolver) FindByTitle(title string) (*data.Book, error) {
	return r.books.GetByTitle(title)
}

// FindByGenre returns a page of books with an exact, case-insensitive genre
// match. An empty result is reported as data.ErrRecordNotFound rather than an
// empty list, keeping the established contract.
func (r *Resolver) FindByGenre(genre string, filters data.Filters) ([]*data.Book, data.Metadata, error) {
	books, metadata, err := r.books.GetByGenre(genre, filters)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	if len(books) == 0 {
		return nil, data.Metadata{}, data.ErrRecordNotFound
	}
	return books, metadata, nil
}

// FindByAuthor returns every book whose author matches exactly, ignoring
// case. The whole catalog is loaded and filtered in-process; an empty result
// is reported as data.ErrRecordNotFound.
func (r *Resolver) FindByAuthor(author string) ([]*data.Book, error) {
	return r.filterAll(func(b *data.Book) bool {
		return strings.EqualFold(b.Author, author)
	})
}

// FindByPublisher returns every book whose publisher matches exactly,
// ignoring case, with the same load-all contract as FindByAuthor.
func (r *Resolver) FindByPublisher(publisher string) ([]*data.Book, error) {
	return r.filterAll(func(b *data.Book) bool {
		return strings.EqualFold(b.Publisher, publisher)
	})
}

func (r *Resolver) filterAll(keep func(*data.Book) bool) ([]*data.Book, error) {
	books, err := r.books.All()
	if err != nil {
		return nil, err
	}

	matched := []*data.Book{}
	for _, b := range books {
		if keep(b) {
			matched = append(matched, b)
		}
	}
	if len(matched) == 0 {
		return nil, data.ErrRecordNotFound
	}
	return matched, nil
}

// volumeToBook normalizes provider metadata into a catalog record. The
// record keeps the ISBN the caller queried with, so the imported book is
// found under the same key on the next lookup; the volume's own identifiers
// (ISBN-13 preferred, then ISBN-10) are only a fallback.
func volumeToBook(queriedISBN string, v *googlebooks.Volume) *data.Book {
	isbn := queriedISBN
	if isbn == "" {
		isbn = v.ISBN()
	}

	author := unknownAuthor
	if len(v.Authors) > 0 {
		author = strings.Join(v.Authors, ", ")
	}

	publisher := v.Publisher
	if publisher == "" {
		publisher = unknownPublisher
	}

	genre := ""
	if len(v.Categories) > 0 {
		genre = v.Categories[0]
	}

	return &data.Book{
		ISBN:          isbn,
		Title:         v.Title,
		Author:        author,
		Publisher:     publisher,
		Genre:         genre,
		Description:   v.Description,
		Language:      v.Language,
		Pages:         v.PageCount,
		CoverImageURL: v.CoverImageURL(),
	}
}
