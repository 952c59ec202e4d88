// cmd/api/tokens.go
// HTTP handler for issuing identity tokens (login).
package main

import (
	"errors"
	"net/http"

	"github.com/rmbarros/library-api/internal/data"
	"github.com/rmbarros/library-api/internal/validator"
)

// createAuthenticationTokenHandler handles POST /v1/tokens/authentication.
// It verifies the username and password and responds with a signed token.
// A wrong username and a wrong password produce the same 401 so the endpoint
// does not reveal which accounts exist.
func (app *applicationDependencies) createAuthenticationTokenHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Username != "", "username", "must be provided")
	v.Check(input.Password != "", "password", "must be provided")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	user, err := app.models.Users.GetByUsername(input.Username)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.invalidCredentialsResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	match, err := user.Password.Matches(input.Password)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if !match {
		app.invalidCredentialsResponse(w, r)
		return
	}

	tokenString, err := app.tokens.Issue(user.Username)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"authentication_token": tokenString}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
