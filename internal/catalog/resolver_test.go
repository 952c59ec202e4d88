package catalog

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmbarros/library-api/internal/data"
	"github.com/rmbarros/library-api/internal/googlebooks"
)

// fakeBookStore is an in-memory BookStore recording how it was used.
type fakeBookStore struct {
	books   []*data.Book
	nextID  int64
	inserts int
}

func (s *fakeBookStore) Insert(book *data.Book) error {
	if book.ISBN != "" {
		for _, b := range s.books {
			if b.ISBN == book.ISBN {
				return data.ErrDuplicateISBN
			}
		}
	}
	s.nextID++
	book.ID = s.nextID
	s.books = append(s.books, book)
	s.inserts++
	return nil
}

func (s *fakeBookStore) Get(id int64) (*data.Book, error) {
	for _, b := range s.books {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, data.ErrRecordNotFound
}

func (s *fakeBookStore) GetByISBN(isbn string) (*data.Book, error) {
	for _, b := range s.books {
		if b.ISBN == isbn {
			return b, nil
		}
	}
	return nil, data.ErrRecordNotFound
}

func (s *fakeBookStore) GetByTitle(title string) (*data.Book, error) {
	for _, b := range s.books {
		if b.Title == title {
			return b, nil
		}
	}
	return nil, data.ErrRecordNotFound
}

func (s *fakeBookStore) GetAll(filters data.Filters) ([]*data.Book, data.Metadata, error) {
	return s.books, data.CalculateMetadata(len(s.books), filters.Page, filters.PageSize), nil
}

func (s *fakeBookStore) GetByGenre(genre string, filters data.Filters) ([]*data.Book, data.Metadata, error) {
	matched := []*data.Book{}
	for _, b := range s.books {
		if b.Genre == genre {
			matched = append(matched, b)
		}
	}
	return matched, data.CalculateMetadata(len(matched), filters.Page, filters.PageSize), nil
}

func (s *fakeBookStore) All() ([]*data.Book, error) {
	return s.books, nil
}

func (s *fakeBookStore) Update(book *data.Book) error { return nil }
func (s *fakeBookStore) Delete(id int64) error        { return nil }

// fakeMetadataClient serves canned volumes and records every call.
type fakeMetadataClient struct {
	volumes     []googlebooks.Volume
	totalItems  int
	err         error
	calls       int
	lastQuery   string
	lastStart   int
	lastResults int
}

func (c *fakeMetadataClient) Search(ctx context.Context, query string, startIndex, maxResults int) ([]googlebooks.Volume, int, error) {
	c.calls++
	c.lastQuery = query
	c.lastStart = startIndex
	c.lastResults = maxResults
	if c.err != nil {
		return nil, 0, c.err
	}
	return c.volumes, c.totalItems, nil
}

func (c *fakeMetadataClient) LookupISBN(ctx context.Context, isbn string) (*googlebooks.Volume, error) {
	c.calls++
	c.lastQuery = "isbn:" + isbn
	if c.err != nil {
		return nil, c.err
	}
	if len(c.volumes) == 0 {
		return nil, googlebooks.ErrNoMatch
	}
	return &c.volumes[0], nil
}

func newTestResolver(store *fakeBookStore, client *fakeMetadataClient) *Resolver {
	return NewResolver(store, client, slog.New(slog.DiscardHandler))
}

func TestResolveByISBNLocalHitSkipsProvider(t *testing.T) {
	store := &fakeBookStore{}
	existing := &data.Book{ISBN: "9780134685991", Title: "Effective Java", Author: "Joshua Bloch"}
	require.NoError(t, store.Insert(existing))

	client := &fakeMetadataClient{}
	resolver := newTestResolver(store, client)

	book, err := resolver.ResolveByISBN(context.Background(), "9780134685991")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, book.ID)
	assert.Equal(t, 0, client.calls, "a local hit must not touch the network")
}

func TestResolveByISBNImportsOnMiss(t *testing.T) {
	store := &fakeBookStore{}
	client := &fakeMetadataClient{
		volumes: []googlebooks.Volume{{
			Title:     "Go in Action",
			Authors:   []string{"W. Kennedy"},
			PageCount: 300,
		}},
	}
	resolver := newTestResolver(store, client)

	book, err := resolver.ResolveByISBN(context.Background(), "9781617291784")
	require.NoError(t, err)

	assert.Equal(t, "9781617291784", book.ISBN)
	assert.Equal(t, "Go in Action", book.Title)
	assert.Equal(t, "W. Kennedy", book.Author)
	assert.Equal(t, 300, book.Pages)
	assert.Equal(t, 1, store.inserts, "the imported book must be persisted exactly once")
	assert.Equal(t, 1, client.calls, "at most one provider round trip")

	// The next resolution for the same ISBN is now a local hit.
	again, err := resolver.ResolveByISBN(context.Background(), "9781617291784")
	require.NoError(t, err)
	assert.Equal(t, book.ID, again.ID)
	assert.Equal(t, 1, client.calls)
}

func TestResolveByISBNProviderMissIsNotFound(t *testing.T) {
	resolver := newTestResolver(&fakeBookStore{}, &fakeMetadataClient{})

	_, err := resolver.ResolveByISBN(context.Background(), "9780000000000")
	assert.ErrorIs(t, err, data.ErrRecordNotFound)
}

func TestResolveByISBNProviderFailureIsNotFound(t *testing.T) {
	client := &fakeMetadataClient{err: googlebooks.ErrUnavailable}
	resolver := newTestResolver(&fakeBookStore{}, client)

	_, err := resolver.ResolveByISBN(context.Background(), "9780000000000")
	assert.ErrorIs(t, err, data.ErrRecordNotFound)
}

func TestSearchExternalRewritesBareISBNQueries(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"13 digits", "9780134685991", "isbn:9780134685991"},
		{"10 digits", "0134685997", "isbn:0134685997"},
		{"13 digits padded", "  9780134685991 ", "isbn:9780134685991"},
		{"free text", "effective java", "effective java"},
		{"digits embedded in text", "java 9780134685991", "java 9780134685991"},
		{"11 digits", "97801346859", "97801346859"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeMetadataClient{}
			resolver := newTestResolver(&fakeBookStore{}, client)

			_, _, err := resolver.SearchExternal(context.Background(), tt.query, 1, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, client.lastQuery)
		})
	}
}

func TestSearchExternalMapsPagesToOffsets(t *testing.T) {
	client := &fakeMetadataClient{}
	resolver := newTestResolver(&fakeBookStore{}, client)

	_, _, err := resolver.SearchExternal(context.Background(), "domain driven design", 3, 20)
	require.NoError(t, err)

	assert.Equal(t, 40, client.lastStart)
	assert.Equal(t, 20, client.lastResults)
}

func TestSearchExternalDropsVolumesWithoutCoverImages(t *testing.T) {
	client := &fakeMetadataClient{
		volumes: []googlebooks.Volume{
			{Title: "with cover", ImageLinks: map[string]string{"thumbnail": "http://img/1"}},
			{Title: "no cover"},
			{Title: "small cover only", ImageLinks: map[string]string{"smallThumbnail": "http://img/2"}},
		},
		totalItems: 3,
	}
	resolver := newTestResolver(&fakeBookStore{}, client)

	results, _, err := resolver.SearchExternal(context.Background(), "anything", 1, 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "with cover", results[0].Title)
	assert.Equal(t, "small cover only", results[1].Title)
}

func TestSearchExternalDegradesToEmptyPageOnProviderFailure(t *testing.T) {
	client := &fakeMetadataClient{err: errors.New("connection refused")}
	resolver := newTestResolver(&fakeBookStore{}, client)

	results, metadata, err := resolver.SearchExternal(context.Background(), "anything", 1, 10)
	require.NoError(t, err, "a provider failure must not fail the caller")
	assert.Empty(t, results)
	assert.Equal(t, data.Metadata{}, metadata)
}

func TestCreateRejectsDuplicateISBN(t *testing.T) {
	store := &fakeBookStore{}
	resolver := newTestResolver(store, &fakeMetadataClient{})

	input := &data.BookInput{ISBN: "9780134685991", Title: "Effective Java", Author: "Joshua Bloch", Publisher: "Addison-Wesley"}
	_, err := resolver.Create(input)
	require.NoError(t, err)

	_, err = resolver.Create(input)
	assert.ErrorIs(t, err, data.ErrDuplicateISBN)
	assert.Equal(t, 1, store.inserts)
}

func TestFindByGenreTreatsEmptyResultAsNotFound(t *testing.T) {
	resolver := newTestResolver(&fakeBookStore{}, &fakeMetadataClient{})

	_, _, err := resolver.FindByGenre("nonexistent-genre", data.Filters{Page: 1, PageSize: 20})
	assert.ErrorIs(t, err, data.ErrRecordNotFound)
}

func TestFindByAuthorMatchesExactIgnoringCase(t *testing.T) {
	store := &fakeBookStore{}
	require.NoError(t, store.Insert(&data.Book{Title: "TDD", Author: "Kent Beck"}))
	require.NoError(t, store.Insert(&data.Book{Title: "XP Explained", Author: "kent beck"}))
	require.NoError(t, store.Insert(&data.Book{Title: "Refactoring", Author: "Martin Fowler"}))

	resolver := newTestResolver(store, &fakeMetadataClient{})

	books, err := resolver.FindByAuthor("KENT BECK")
	require.NoError(t, err)
	assert.Len(t, books, 2)

	_, err = resolver.FindByAuthor("Kent")
	assert.ErrorIs(t, err, data.ErrRecordNotFound, "substring matches must not count")
}

func TestFindByPublisherEmptyResultIsNotFound(t *testing.T) {
	store := &fakeBookStore{}
	require.NoError(t, store.Insert(&data.Book{Title: "TDD", Author: "Kent Beck", Publisher: "Addison-Wesley"}))

	resolver := newTestResolver(store, &fakeMetadataClient{})

	books, err := resolver.FindByPublisher("addison-wesley")
	require.NoError(t, err)
	assert.Len(t, books, 1)

	_, err = resolver.FindByPublisher("O'Reilly")
	assert.ErrorIs(t, err, data.ErrRecordNotFound)
}

func TestVolumeToBookNormalization(t *testing.T) {
	t.Run("full metadata", func(t *testing.T) {
		volume := &googlebooks.Volume{
			Title:       "Clean Architecture",
			Authors:     []string{"Robert C. Martin", "James Grenning"},
			Publisher:   "Prentice Hall",
			Description: "A craftsman's guide.",
			ImageLinks: map[string]string{
				"thumbnail":      "http://img/large",
				"smallThumbnail": "http://img/small",
			},
			Categories: []string{"Computers", "Software"},
			Language:   "en",
			PageCount:  432,
		}

		book := volumeToBook("9780134494166", volume)

		assert.Equal(t, "9780134494166", book.ISBN)
		assert.Equal(t, "Robert C. Martin, James Grenning", book.Author)
		assert.Equal(t, "Prentice Hall", book.Publisher)
		assert.Equal(t, "Computers", book.Genre, "genre comes from the first category")
		assert.Equal(t, "http://img/large", book.CoverImageURL, "the larger thumbnail wins")
		assert.Equal(t, "en", book.Language)
		assert.Equal(t, 432, book.Pages)
	})

	t.Run("sparse metadata gets fallbacks", func(t *testing.T) {
		volume := &googlebooks.Volume{
			Title:      "Mystery Volume",
			ImageLinks: map[string]string{"smallThumbnail": "http://img/small"},
		}

		book := volumeToBook("9780000000001", volume)

		assert.Equal(t, "Unknown Author", book.Author)
		assert.Equal(t, "Unknown Publisher", book.Publisher)
		assert.Empty(t, book.Genre)
		assert.Equal(t, "http://img/small", book.CoverImageURL)
	})

	t.Run("identifier fallback when no queried isbn", func(t *testing.T) {
		volume := &googlebooks.Volume{
			Title: "Found by free text",
			IndustryIdentifiers: []googlebooks.IndustryIdentifier{
				{Type: "ISBN_10", Identifier: "0134494164"},
				{Type: "ISBN_13", Identifier: "9780134494166"},
			},
		}

		book := volumeToBook("", volume)
		assert.Equal(t, "9780134494166", book.ISBN, "ISBN-13 is preferred")
	})
}
