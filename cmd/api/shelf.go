// cmd/api/shelf.go
// HTTP handlers for the authenticated user's personal shelf.
package main

import (
	"errors"
	"net/http"

	"github.com/rmbarros/library-api/internal/data"
	"github.com/rmbarros/library-api/internal/shelf"
	"github.com/rmbarros/library-api/internal/validator"
)

// addToShelfHandler handles POST /v1/shelf/books/:id.
// It shelves the identified catalog book for the authenticated user.
func (app *applicationDependencies) addToShelfHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input shelf.ItemInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	if shelf.ValidateItemInput(v, &input); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	user := app.contextGetUser(r)

	item, err := app.shelf.AddByBookID(user.Username, bookID, input)
	if err != nil {
		app.shelfErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"shelf_item": item}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// addToShelfByISBNHandler handles POST /v1/shelf/isbn.
// The ISBN is resolved through the catalog first, importing the book from the
// metadata provider if it is not local yet, then the shelf add proceeds.
func (app *applicationDependencies) addToShelfByISBNHandler(w http.ResponseWriter, r *http.Request) {
	var input shelf.ItemByISBNInput
	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.ISBN != "", "isbn", "must be provided")
	if shelf.ValidateItemInput(v, &input.ItemInput); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	user := app.contextGetUser(r)

	item, err := app.shelf.AddByISBN(r.Context(), user.Username, input)
	if err != nil {
		app.shelfErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"shelf_item": item}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listShelfHandler handles GET /v1/shelf.
// It returns one page of the authenticated user's shelf, newest first by
// default.
func (app *applicationDependencies) listShelfHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	filters := data.Filters{
		Page:         app.readInt(qs, "page", 1),
		PageSize:     app.readInt(qs, "page_size", 10),
		Sort:         app.readString(qs, "sort", "-id"),
		SortSafeList: []string{"id", "rating", "current_page", "-id", "-rating", "-current_page"},
	}

	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	user := app.contextGetUser(r)

	items, metadata, err := app.shelf.ListForUser(user.Username, filters)
	if err != nil {
		app.shelfErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"shelf": items, "metadata": metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateShelfItemHandler handles PUT /v1/shelf/items/:id.
// The body carries only the fields to change; omitted fields keep their
// stored values.
func (app *applicationDependencies) updateShelfItemHandler(w http.ResponseWriter, r *http.Request) {
	itemID, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input shelf.ItemInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	if shelf.ValidateItemInput(v, &input); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	user := app.contextGetUser(r)

	item, err := app.shelf.Update(user.Username, itemID, input)
	if err != nil {
		app.shelfErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"shelf_item": item}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// removeShelfItemHandler handles DELETE /v1/shelf/items/:id.
func (app *applicationDependencies) removeShelfItemHandler(w http.ResponseWriter, r *http.Request) {
	itemID, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := app.contextGetUser(r)

	err = app.shelf.Remove(user.Username, itemID)
	if err != nil {
		app.shelfErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "shelf item successfully removed"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// shelfErrorResponse maps the shelf manager's error taxonomy onto responses.
func (app *applicationDependencies) shelfErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, data.ErrRecordNotFound):
		app.notFoundResponse(w, r)
	case errors.Is(err, data.ErrDuplicateShelfItem):
		app.conflictResponse(w, r, "this book is already on your shelf")
	case errors.Is(err, data.ErrDuplicateISBN):
		// A concurrent add-by-ISBN imported the same book first.
		app.conflictResponse(w, r, "a book with this isbn is already registered")
	case errors.Is(err, shelf.ErrNotOwner):
		app.forbiddenResponse(w, r)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
