package data

import (
	"database/sql"
	"errors"
	"slices"
	"time"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/rmbarros/library-api/internal/validator"
)

// Role names used across the application. The roles table is seeded with
// these at startup.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User represents a registered account. The password hash is never
// serialized; the json:"-" tag on Password guarantees it can not leak into a
// response body.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Password  password  `json:"-"`
	Roles     []string  `json:"roles,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the user carries the administrator role.
func (u *User) IsAdmin() bool {
	return slices.Contains(u.Roles, RoleAdmin)
}

// password wraps a bcrypt hash alongside the plaintext it was derived from.
// The plaintext pointer distinguishes "not provided" from "empty string" on
// updates; it is only ever held in memory during a single request.
type password struct {
	plaintext *string
	hash      []byte
}

// Set hashes plaintextPassword with bcrypt and stores both representations.
func (p *password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), 12)
	if err != nil {
		return err
	}
	p.plaintext = &plaintextPassword
	p.hash = hash
	return nil
}

// Matches reports whether plaintextPassword matches the stored hash.
func (p *password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(p.hash, []byte(plaintextPassword))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	}
	return true, nil
}

// ValidateEmail checks a single email address.
func ValidateEmail(v *validator.Validator, email string) {
	v.Check(email != "", "email", "must be provided")
	v.Check(validator.Matches(email, validator.EmailRX), "email", "must be a valid email address")
}

// ValidatePasswordPlaintext checks a candidate password before hashing.
func ValidatePasswordPlaintext(v *validator.Validator, plaintext string) {
	v.Check(plaintext != "", "password", "must be provided")
	v.Check(len(plaintext) >= 8, "password", "must be at least 8 characters long")
	v.Check(len(plaintext) <= 72, "password", "must not be more than 72 characters long")
}

// ValidateUser checks the account fields (not the password, which is only
// present on create and optional on update).
func ValidateUser(v *validator.Validator, user *User) {
	v.Check(user.Username != "", "username", "must be provided")
	v.Check(len(user.Username) <= 100, "username", "must not be more than 100 characters")
	v.Check(user.FullName != "", "full_name", "must be provided")
	ValidateEmail(v, user.Email)
}

// UserModel wraps a *sql.DB connection and provides methods for account
// records and their role assignments.
type UserModel struct {
	DB *sql.DB
}

// userQuery selects a user row together with an aggregated array of its role
// names, so a single round-trip materializes the full User.
const userQuery = `
	SELECT u.id, u.username, u.email, u.full_name, u.password_hash, u.created_at,
	       COALESCE(array_agg(r.name) FILTER (WHERE r.name IS NOT NULL), '{}')
	FROM users u
	LEFT JOIN users_roles ur ON ur.user_id = u.id
	LEFT JOIN roles r ON r.id = ur.role_id`

func (m UserModel) getOne(where string, arg any) (*User, error) {
	query := userQuery + `
	WHERE ` + where + `
	GROUP BY u.id`

	var user User
	err := m.DB.QueryRow(query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.Password.hash,
		&user.CreatedAt,
		pq.Array(&user.Roles),
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &user, nil
}

// Get retrieves a user by primary key.
func (m UserModel) Get(id int64) (*User, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}
	return m.getOne("u.id = $1", id)
}

// GetByUsername retrieves a user by username, ignoring case.
func (m UserModel) GetByUsername(username string) (*User, error) {
	return m.getOne("LOWER(u.username) = LOWER($1)", username)
}

// GetByEmail retrieves a user by email address, ignoring case.
func (m UserModel) GetByEmail(email string) (*User, error) {
	return m.getOne("LOWER(u.email) = LOWER($1)", email)
}

// GetAll retrieves every account in id order.
func (m UserModel) GetAll() ([]*User, error) {
	query := userQuery + `
	GROUP BY u.id
	ORDER BY u.id ASC`

	rows, err := m.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		var user User
		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.FullName,
			&user.Password.hash,
			&user.CreatedAt,
			pq.Array(&user.Roles),
		)
		if err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Insert creates the account and assigns the named role inside one
// transaction. Returns ErrDuplicateUsername or ErrDuplicateEmail when the
// corresponding unique constraint is violated.
func (m UserModel) Insert(user *User, roleName string) error {
	tx, err := m.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO users (username, email, full_name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err = tx.QueryRow(query, user.Username, user.Email, user.FullName, user.Password.hash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		switch {
		case uniqueViolation(err, "users_username_key"):
			return ErrDuplicateUsername
		case uniqueViolation(err, "users_email_key"):
			return ErrDuplicateEmail
		default:
			return err
		}
	}

	assign := `
		INSERT INTO users_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = $2`

	result, err := tx.Exec(assign, user.ID, roleName)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		// The roles table is seeded at startup, so a missing role means the
		// bootstrap did not run against this database.
		return ErrRecordNotFound
	}
	user.Roles = []string{roleName}

	return tx.Commit()
}

// Update saves the mutable account fields, including a new password hash if
// one was set.
func (m UserModel) Update(user *User) error {
	query := `
		UPDATE users
		SET username = $1, email = $2, full_name = $3, password_hash = $4
		WHERE id = $5`

	result, err := m.DB.Exec(query, user.Username, user.Email, user.FullName, user.Password.hash, user.ID)
	if err != nil {
		switch {
		case uniqueViolation(err, "users_username_key"):
			return ErrDuplicateUsername
		case uniqueViolation(err, "users_email_key"):
			return ErrDuplicateEmail
		default:
			return err
		}
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete removes the account together with its shelf items and role
// assignments. The cascade is explicit so it does not depend on schema-level
// ON DELETE behavior.
func (m UserModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	tx, err := m.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM shelf_items WHERE user_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM users_roles WHERE user_id = $1`, id); err != nil {
		return err
	}

	result, err := tx.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}

	return tx.Commit()
}
