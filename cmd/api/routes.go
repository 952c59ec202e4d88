// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router wrapped
// in the middleware chain: recoverPanic, then rateLimit, then authenticate,
// then the router itself.
//
// The catalog lookup and search endpoints live under /v1/catalog rather than
// /v1/books because httprouter does not allow a static path segment next to
// the ":id" wildcard.
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	// Override the default httprouter error handlers to return JSON responses.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	// Registration and login are the only open endpoints.
	router.HandlerFunc(http.MethodPost, "/v1/users", app.registerUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/tokens/authentication", app.createAuthenticationTokenHandler)

	// User administration
	router.HandlerFunc(http.MethodGet, "/v1/users", app.requireAdmin(app.listUsersHandler))
	router.HandlerFunc(http.MethodGet, "/v1/users/:id", app.requireAuthenticated(app.showUserHandler))
	router.HandlerFunc(http.MethodPut, "/v1/users/:id", app.requireAuthenticated(app.updateUserHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/users/:id", app.requireAdmin(app.deleteUserHandler))

	// Book CRUD routes
	router.HandlerFunc(http.MethodPost, "/v1/books", app.requireAuthenticated(app.createBookHandler))
	router.HandlerFunc(http.MethodGet, "/v1/books", app.requireAuthenticated(app.listBooksHandler))
	router.HandlerFunc(http.MethodGet, "/v1/books/:id", app.requireAuthenticated(app.showBookHandler))
	router.HandlerFunc(http.MethodPut, "/v1/books/:id", app.requireAuthenticated(app.updateBookHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/books/:id", app.requireAuthenticated(app.deleteBookHandler))

	// Catalog resolution and search
	router.HandlerFunc(http.MethodGet, "/v1/catalog/isbn/:isbn", app.requireAuthenticated(app.resolveISBNHandler))
	router.HandlerFunc(http.MethodGet, "/v1/catalog/search", app.requireAuthenticated(app.searchExternalHandler))
	router.HandlerFunc(http.MethodGet, "/v1/catalog/by-title", app.requireAuthenticated(app.findBooksByTitleHandler))
	router.HandlerFunc(http.MethodGet, "/v1/catalog/by-genre", app.requireAuthenticated(app.findBooksByGenreHandler))
	router.HandlerFunc(http.MethodGet, "/v1/catalog/by-author", app.requireAuthenticated(app.findBooksByAuthorHandler))
	router.HandlerFunc(http.MethodGet, "/v1/catalog/by-publisher", app.requireAuthenticated(app.findBooksByPublisherHandler))

	// Personal shelf
	router.HandlerFunc(http.MethodGet, "/v1/shelf", app.requireAuthenticated(app.listShelfHandler))
	router.HandlerFunc(http.MethodPost, "/v1/shelf/books/:id", app.requireAuthenticated(app.addToShelfHandler))
	router.HandlerFunc(http.MethodPost, "/v1/shelf/isbn", app.requireAuthenticated(app.addToShelfByISBNHandler))
	router.HandlerFunc(http.MethodPut, "/v1/shelf/items/:id", app.requireAuthenticated(app.updateShelfItemHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/shelf/items/:id", app.requireAuthenticated(app.removeShelfItemHandler))

	// Wrap with middleware: recoverPanic is outermost so it catches panics
	// from the other middlewares and the router alike.
	return app.recoverPanic(app.rateLimit(app.authenticate(router)))
}
