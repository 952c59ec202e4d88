// cmd/api/context.go
// Helpers for carrying the authenticated user through the request context.
package main

import (
	"context"
	"net/http"

	"github.com/rmbarros/library-api/internal/data"
)

// contextKey is a private type so our context keys can never collide with
// keys set by other packages.
type contextKey string

const userContextKey = contextKey("user")

// contextSetUser returns a copy of the request with the user stored in its
// context.
func (app *applicationDependencies) contextSetUser(r *http.Request, user *data.User) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}

// contextGetUser retrieves the user from the request context. It panics if
// the user is absent, which only happens if a handler requiring
// authentication was registered without the authenticate middleware.
func (app *applicationDependencies) contextGetUser(r *http.Request) *data.User {
	user, ok := r.Context().Value(userContextKey).(*data.User)
	if !ok {
		panic("missing user value in request context")
	}
	return user
}
