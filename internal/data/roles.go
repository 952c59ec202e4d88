package data

import (
	"database/sql"
	"errors"
)

// Role is an authorization label attached to users through the users_roles
// join table.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RoleModel wraps a *sql.DB connection for the roles table.
type RoleModel struct {
	DB *sql.DB
}

// Get retrieves a role by name.
func (m RoleModel) Get(name string) (*Role, error) {
	query := `SELECT id, name FROM roles WHERE name = $1`

	var role Role
	err := m.DB.QueryRow(query, name).Scan(&role.ID, &role.Name)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &role, nil
}

// Ensure creates the role if it does not exist yet and returns it. ON
// CONFLICT DO NOTHING makes the call idempotent, so the startup bootstrap can
// run it unconditionally on every boot.
func (m RoleModel) Ensure(name string) (*Role, error) {
	query := `
		INSERT INTO roles (name)
		VALUES ($1)
		ON CONFLICT (name) DO NOTHING`

	if _, err := m.DB.Exec(query, name); err != nil {
		return nil, err
	}
	return m.Get(name)
}
