// cmd/api/bootstrap.go
// Idempotent startup seeding: roles and the default admin account. Runs once
// from main before the server starts accepting traffic; every step is
// guarded by an existence check so repeated boots are harmless.
package main

import (
	"errors"

	"github.com/rmbarros/library-api/internal/data"
)

func (app *applicationDependencies) bootstrap() error {
	// Both roles must exist before any registration can assign them.
	if _, err := app.models.Roles.Ensure(data.RoleUser); err != nil {
		return err
	}
	if _, err := app.models.Roles.Ensure(data.RoleAdmin); err != nil {
		return err
	}

	// Create the default admin account on first boot only.
	_, err := app.models.Users.GetByUsername("admin")
	if err == nil {
		return nil
	}
	if !errors.Is(err, data.ErrRecordNotFound) {
		return err
	}

	admin := &data.User{
		Username: "admin",
		Email:    "admin@library.local",
		FullName: "System Administrator",
	}
	if err := admin.Password.Set(app.config.auth.adminPassword); err != nil {
		return err
	}
	if err := app.models.Users.Insert(admin, data.RoleAdmin); err != nil {
		return err
	}

	app.logger.Info("seeded default admin account", "username", admin.Username)
	return nil
}
