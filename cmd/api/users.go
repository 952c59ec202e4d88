// cmd/api/users.go
// HTTP handlers for account registration and administration.
package main

import (
	"errors"
	"net/http"

	"github.com/rmbarros/library-api/internal/data"
	"github.com/rmbarros/library-api/internal/validator"
)

// userInput holds the registration / account-update fields. Password is a
// pointer so an update can leave it out without clearing the credential.
type userInput struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	FullName string  `json:"full_name"`
	Password *string `json:"password"`
}

// registerUserHandler handles POST /v1/users.
// It creates an account with the default role and responds 201. Duplicate
// usernames and emails are 409s.
func (app *applicationDependencies) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input userInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := &data.User{
		Username: input.Username,
		Email:    input.Email,
		FullName: input.FullName,
	}

	v := validator.New()
	data.ValidateUser(v, user)
	if input.Password == nil {
		v.AddError("password", "must be provided")
	} else {
		data.ValidatePasswordPlaintext(v, *input.Password)
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = user.Password.Set(*input.Password)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.models.Users.Insert(user, data.RoleUser)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateUsername):
			app.conflictResponse(w, r, "this username is already taken")
		case errors.Is(err, data.ErrDuplicateEmail):
			app.conflictResponse(w, r, "this email address is already registered")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"user": user}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listUsersHandler handles GET /v1/users (admin only).
func (app *applicationDependencies) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := app.models.Users.GetAll()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"users": users}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showUserHandler handles GET /v1/users/:id.
func (app *applicationDependencies) showUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.models.Users.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"user": user}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateUserHandler handles PUT /v1/users/:id.
// A user may update their own account; an administrator may update anyone's.
// The password is only re-hashed when one is provided.
func (app *applicationDependencies) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	requester := app.contextGetUser(r)
	if requester.ID != id && !requester.IsAdmin() {
		app.forbiddenResponse(w, r)
		return
	}

	var input userInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.models.Users.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	user.Username = input.Username
	user.Email = input.Email
	user.FullName = input.FullName

	v := validator.New()
	data.ValidateUser(v, user)
	if input.Password != nil {
		data.ValidatePasswordPlaintext(v, *input.Password)
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	if input.Password != nil {
		if err := user.Password.Set(*input.Password); err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
	}

	err = app.models.Users.Update(user)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, data.ErrDuplicateUsername):
			app.conflictResponse(w, r, "this username is already taken")
		case errors.Is(err, data.ErrDuplicateEmail):
			app.conflictResponse(w, r, "this email address is already registered")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"user": user}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteUserHandler handles DELETE /v1/users/:id (admin only).
// Deleting an account also removes its shelf items.
func (app *applicationDependencies) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.models.Users.Delete(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "user successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
