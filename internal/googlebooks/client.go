// Package googlebooks is a small client for the Google Books volumes API,
// the external metadata provider behind catalog imports and search.
package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the production endpoint of the volumes API.
const DefaultBaseURL = "https://www.googleapis.com/books/v1"

// DefaultTimeout bounds every provider round trip. The provider is the
// dominant latency source in the system; a hung call must not hang the whole
// request.
const DefaultTimeout = 5 * time.Second

var (
	// ErrUnavailable is returned when the provider cannot be reached, times
	// out, or answers with a non-2xx status.
	ErrUnavailable = errors.New("metadata provider unavailable")

	// ErrNoMatch is returned by LookupISBN when the provider answers
	// successfully but has no volume for the ISBN.
	ErrNoMatch = errors.New("no matching volume")
)

// IndustryIdentifier is one (type, value) identifier pair attached to a
// volume, e.g. {"ISBN_13", "9780134190440"}.
type IndustryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// Volume is the descriptive metadata the provider returns for one book.
type Volume struct {
	Title               string               `json:"title"`
	Authors             []string             `json:"authors"`
	Publisher           string               `json:"publisher"`
	Description         string               `json:"description"`
	ImageLinks          map[string]string    `json:"imageLinks"`
	Categories          []string             `json:"categories"`
	Language            string               `json:"language"`
	PageCount           int                  `json:"pageCount"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers"`
}

// ISBN extracts the volume's ISBN, preferring ISBN_13 over ISBN_10.
// Returns "" when the volume carries neither.
func (v Volume) ISBN() string {
	for _, id := range v.IndustryIdentifiers {
		if id.Type == "ISBN_13" {
			return id.Identifier
		}
	}
	for _, id := range v.IndustryIdentifiers {
		if id.Type == "ISBN_10" {
			return id.Identifier
		}
	}
	return ""
}

// HasCoverImage reports whether the volume carries any cover image link.
func (v Volume) HasCoverImage() bool {
	return len(v.ImageLinks) > 0
}

// CoverImageURL returns the best available cover image, preferring the
// regular thumbnail over the small one.
func (v Volume) CoverImageURL() string {
	if u, ok := v.ImageLinks["thumbnail"]; ok {
		return u
	}
	return v.ImageLinks["smallThumbnail"]
}

// searchResponse mirrors the provider's top-level search payload. Unknown
// fields are ignored by the decoder.
type searchResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo Volume `json:"volumeInfo"`
	} `json:"items"`
}

// Client queries the volumes API over HTTP with a bounded timeout.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a Client for the given endpoint. An empty baseURL selects
// DefaultBaseURL and a non-positive timeout selects DefaultTimeout. The apiKey
// may be empty; the provider then serves unauthenticated quota.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Search runs one provider search and returns the volumes on the requested
// window plus the provider's (approximate) total item count. Any transport,
// status, or decode failure is reported as an error wrapping ErrUnavailable;
// the caller decides whether that degrades to an empty page or a not-found.
func (c *Client) Search(ctx context.Context, query string, startIndex, maxResults int) ([]Volume, int, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("startIndex", strconv.Itoa(startIndex))
	params.Set("maxResults", strconv.Itoa(maxResults))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/volumes?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, 0, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, 0, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}

	volumes := make([]Volume, 0, len(body.Items))
	for _, item := range body.Items {
		volumes = append(volumes, item.VolumeInfo)
	}
	return volumes, body.TotalItems, nil
}

// LookupISBN fetches the metadata for a single ISBN using an isbn-qualified
// query. Returns ErrNoMatch when the provider has no volume for it.
func (c *Client) LookupISBN(ctx context.Context, isbn string) (*Volume, error) {
	volumes, _, err := c.Search(ctx, "isbn:"+isbn, 0, 1)
	if err != nil {
		return nil, err
	}
	if len(volumes) == 0 {
		return nil, ErrNoMatch
	}
	return &volumes[0], nil
}
