package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmbarros/library-api/internal/token"
)

// newTestApplication builds an applicationDependencies with just enough wiring
// for handler-level helpers and middleware: a discarded logger and a token
// issuer. Nothing here touches the database.
func newTestApplication(t *testing.T) *applicationDependencies {
	t.Helper()
	return &applicationDependencies{
		logger: slog.New(slog.DiscardHandler),
		tokens: token.NewIssuer("test-secret", time.Hour),
	}
}

func TestReadStringAndReadInt(t *testing.T) {
	app := newTestApplication(t)

	qs := url.Values{}
	qs.Set("sort", "-id")
	qs.Set("page", "3")
	qs.Set("page_size", "banana")

	assert.Equal(t, "-id", app.readString(qs, "sort", "id"))
	assert.Equal(t, "fallback", app.readString(qs, "missing", "fallback"))
	assert.Equal(t, 3, app.readInt(qs, "page", 1))
	assert.Equal(t, 10, app.readInt(qs, "page_size", 10), "unparsable values fall back to the default")
	assert.Equal(t, 1, app.readInt(qs, "missing", 1))
}

func TestReadIDParam(t *testing.T) {
	app := newTestApplication(t)

	request := func(id string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/v1/books/"+id, nil)
		params := httprouter.Params{{Key: "id", Value: id}}
		ctx := context.WithValue(r.Context(), httprouter.ParamsKey, params)
		return r.WithContext(ctx)
	}

	id, err := app.readIDParam(request("42"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"0", "-7", "abc", ""} {
		_, err := app.readIDParam(request(bad))
		assert.Error(t, err, "id %q should be rejected", bad)
	}
}

func TestWriteJSONEnvelope(t *testing.T) {
	app := newTestApplication(t)

	w := httptest.NewRecorder()
	err := app.writeJSON(w, http.StatusTeapot, envelope{"message": "hello"}, http.Header{"X-Request-Id": []string{"abc"}})
	require.NoError(t, err)

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "abc", w.Header().Get("X-Request-Id"))
	assert.Contains(t, w.Body.String(), `"message": "hello"`)
	assert.True(t, strings.HasSuffix(w.Body.String(), "\n"))
}

func TestReadJSONRejectsBadBodies(t *testing.T) {
	app := newTestApplication(t)

	var dst struct {
		Title string `json:"title"`
	}

	tests := []struct {
		name string
		body string
	}{
		{"unknown field", `{"title": "ok", "bogus": true}`},
		{"trailing value", `{"title": "ok"}{"title": "again"}`},
		{"not json", `hello`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			assert.Error(t, app.readJSON(w, r, &dst))
		})
	}

	// A single well-formed value decodes cleanly.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title": "ok"}`))
	require.NoError(t, app.readJSON(w, r, &dst))
	assert.Equal(t, "ok", dst.Title)
}
