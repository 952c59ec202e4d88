package data

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestUniqueViolation(t *testing.T) {
	duplicate := func(constraint string) error {
		return &pq.Error{Code: "23505", Constraint: constraint}
	}

	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"duplicate isbn", duplicate("books_isbn_key"), "books_isbn_key", true},
		{"duplicate shelf pair", duplicate("shelf_items_user_id_book_id_key"), "shelf_items_user_id_book_id_key", true},
		{"duplicate username", duplicate("users_username_key"), "users_username_key", true},
		{"duplicate email", duplicate("users_email_key"), "users_email_key", true},
		{"different constraint", duplicate("users_email_key"), "users_username_key", false},
		{"different error code", &pq.Error{Code: "23503", Constraint: "books_isbn_key"}, "books_isbn_key", false},
		{"wrapped pq error", fmt.Errorf("insert failed: %w", duplicate("books_isbn_key")), "books_isbn_key", true},
		{"plain error", errors.New("connection reset"), "books_isbn_key", false},
		{"nil error", nil, "books_isbn_key", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, uniqueViolation(tt.err, tt.constraint))
		})
	}
}
