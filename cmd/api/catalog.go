// cmd/api/catalog.go
// HTTP handlers for ISBN resolution, external search, and the filtered
// catalog lookups.
package main

import (
	"errors"
	"net/http"

	"github.com/rmbarros/library-api/internal/data"
	"github.com/rmbarros/library-api/internal/validator"
)

// resolveISBNHandler handles GET /v1/catalog/isbn/:isbn.
// A local catalog hit is returned directly; a miss triggers a single provider
// lookup and, on success, an import. Both "no such ISBN" and "provider
// unreachable" surface as 404.
func (app *applicationDependencies) resolveISBNHandler(w http.ResponseWriter, r *http.Request) {
	isbn, err := app.readNamedParam(r, "isbn")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book, err := app.catalog.ResolveByISBN(r.Context(), isbn)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, data.ErrDuplicateISBN):
			// A concurrent request imported the same ISBN first.
			app.conflictResponse(w, r, "a book with this isbn is already registered")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// searchExternalHandler handles GET /v1/catalog/search.
// It proxies a read-only search to the metadata provider for the "search
// before importing" flow. A provider failure yields an empty page, not an
// error.
func (app *applicationDependencies) searchExternalHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	query := app.readString(qs, "q", "")
	page := app.readInt(qs, "page", 1)
	pageSize := app.readInt(qs, "page_size", 10)

	v := validator.New()
	v.Check(query != "", "q", "must be provided")
	v.Check(page > 0, "page", "must be greater than zero")
	v.Check(pageSize > 0 && pageSize <= 40, "page_size", "must be between 1 and 40")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	volumes, metadata, err := app.catalog.SearchExternal(r.Context(), query, page, pageSize)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"results": volumes, "metadata": metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// findBooksByTitleHandler handles GET /v1/catalog/by-title?title=...
// with an exact, case-insensitive match on the title.
func (app *applicationDependencies) findBooksByTitleHandler(w http.ResponseWriter, r *http.Request) {
	title := app.readString(r.URL.Query(), "title", "")
	if title == "" {
		app.badRequestResponse(w, r, errors.New("missing title parameter"))
		return
	}

	book, err := app.catalog.FindByTitle(title)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// findBooksByGenreHandler handles GET /v1/catalog/by-genre?genre=...
// Zero matches is a 404, not an empty page; that is the established contract
// for the filtered searches.
func (app *applicationDependencies) findBooksByGenreHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	genre := app.readString(qs, "genre", "")
	if genre == "" {
		app.badRequestResponse(w, r, errors.New("missing genre parameter"))
		return
	}

	filters := data.Filters{
		Page:         app.readInt(qs, "page", 1),
		PageSize:     app.readInt(qs, "page_size", 20),
		Sort:         app.readString(qs, "sort", "id"),
		SortSafeList: []string{"id", "title", "author", "-id", "-title", "-author"},
	}

	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	books, metadata, err := app.catalog.FindByGenre(genre, filters)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"books": books, "metadata": metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// findBooksByAuthorHandler handles GET /v1/catalog/by-author?author=...
func (app *applicationDependencies) findBooksByAuthorHandler(w http.ResponseWriter, r *http.Request) {
	author := app.readString(r.URL.Query(), "author", "")
	if author == "" {
		app.badRequestResponse(w, r, errors.New("missing author parameter"))
		return
	}

	books, err := app.catalog.FindByAuthor(author)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"books": books}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// findBooksByPublisherHandler handles GET /v1/catalog/by-publisher?publisher=...
func (app *applicationDependencies) findBooksByPublisherHandler(w http.ResponseWriter, r *http.Request) {
	publisher := app.readString(r.URL.Query(), "publisher", "")
	if publisher == "" {
		app.badRequestResponse(w, r, errors.New("missing publisher parameter"))
		return
	}

	books, err := app.catalog.FindByPublisher(publisher)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"books": books}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
