package googlebooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
	"totalItems": 2,
	"kind": "books#volumes",
	"items": [
		{
			"id": "abc123",
			"volumeInfo": {
				"title": "Go in Action",
				"authors": ["William Kennedy", "Brian Ketelsen"],
				"publisher": "Manning",
				"description": "Concurrency and more.",
				"pageCount": 300,
				"language": "en",
				"categories": ["Computers"],
				"imageLinks": {
					"smallThumbnail": "http://img/small",
					"thumbnail": "http://img/large"
				},
				"industryIdentifiers": [
					{"type": "ISBN_10", "identifier": "1617291781"},
					{"type": "ISBN_13", "identifier": "9781617291784"}
				]
			}
		},
		{
			"id": "def456",
			"volumeInfo": {
				"title": "Sparse Volume"
			}
		}
	]
}`

func TestSearchDecodesVolumes(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/volumes", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", time.Second)

	volumes, totalItems, err := client.Search(context.Background(), "go in action", 10, 5)
	require.NoError(t, err)

	assert.Equal(t, 2, totalItems)
	require.Len(t, volumes, 2)

	first := volumes[0]
	assert.Equal(t, "Go in Action", first.Title)
	assert.Equal(t, []string{"William Kennedy", "Brian Ketelsen"}, first.Authors)
	assert.Equal(t, "Manning", first.Publisher)
	assert.Equal(t, 300, first.PageCount)
	assert.Equal(t, "en", first.Language)

	// The window and the key must be forwarded as provider parameters.
	assert.Contains(t, gotQuery, "q=go+in+action")
	assert.Contains(t, gotQuery, "startIndex=10")
	assert.Contains(t, gotQuery, "maxResults=5")
	assert.Contains(t, gotQuery, "key=test-key")
}

func TestSearchOmitsEmptyAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("key"))
		w.Write([]byte(`{"totalItems": 0}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)

	volumes, totalItems, err := client.Search(context.Background(), "anything", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, totalItems)
	assert.Empty(t, volumes)
}

func TestSearchReportsServerErrorsAsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)

	_, _, err := client.Search(context.Background(), "anything", 0, 10)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSearchReportsBadJSONAsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)

	_, _, err := client.Search(context.Background(), "anything", 0, 10)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSearchReportsUnreachableHostAsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listens anymore

	client := NewClient(server.URL, "", time.Second)

	_, _, err := client.Search(context.Background(), "anything", 0, 10)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLookupISBN(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "isbn:9781617291784", r.URL.Query().Get("q"))
		w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)

	volume, err := client.LookupISBN(context.Background(), "9781617291784")
	require.NoError(t, err)
	assert.Equal(t, "Go in Action", volume.Title)
}

func TestLookupISBNNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalItems": 0}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)

	_, err := client.LookupISBN(context.Background(), "9780000000000")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestVolumeISBNPrefersISBN13(t *testing.T) {
	volume := Volume{IndustryIdentifiers: []IndustryIdentifier{
		{Type: "ISBN_10", Identifier: "1617291781"},
		{Type: "ISBN_13", Identifier: "9781617291784"},
	}}
	assert.Equal(t, "9781617291784", volume.ISBN())

	only10 := Volume{IndustryIdentifiers: []IndustryIdentifier{
		{Type: "ISBN_10", Identifier: "1617291781"},
	}}
	assert.Equal(t, "1617291781", only10.ISBN())

	assert.Empty(t, Volume{}.ISBN())
}

func TestVolumeCoverImage(t *testing.T) {
	both := Volume{ImageLinks: map[string]string{
		"thumbnail":      "http://img/large",
		"smallThumbnail": "http://img/small",
	}}
	assert.True(t, both.HasCoverImage())
	assert.Equal(t, "http://img/large", both.CoverImageURL())

	smallOnly := Volume{ImageLinks: map[string]string{"smallThumbnail": "http://img/small"}}
	assert.Equal(t, "http://img/small", smallOnly.CoverImageURL())

	none := Volume{}
	assert.False(t, none.HasCoverImage())
	assert.Empty(t, none.CoverImageURL())
}
