package validator

import "testing"

func TestCheckAccumulatesErrors(t *testing.T) {
	v := New()
	if !v.Valid() {
		t.Error("a fresh validator should be valid")
	}

	v.Check(false, "title", "must be provided")
	v.Check(false, "title", "second message is ignored")
	v.Check(true, "pages", "must not be negative")

	if v.Valid() {
		t.Error("validator with errors should not be valid")
	}
	if got := v.Errors["title"]; got != "must be provided" {
		t.Errorf("first error for a field must win, got %q", got)
	}
	if _, ok := v.Errors["pages"]; ok {
		t.Error("passing checks must not record errors")
	}
}

func TestIn(t *testing.T) {
	if !In("b", "a", "b", "c") {
		t.Error("expected In to find the value")
	}
	if In("d", "a", "b", "c") {
		t.Error("expected In to miss the value")
	}
}

func TestEmailRX(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"alice@example.com", true},
		{"alice+shelf@sub.example.com", true},
		{"not-an-email", false},
		{"@example.com", false},
	}
	for _, tt := range tests {
		if got := Matches(tt.email, EmailRX); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}
