package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dom/pokedex/internal/domain"
	"github.com/dom/pokedex/internal/repository"
)

const collection = "pokemons"

// Client talks to a realtime-database style REST store: one JSON document per
// key under /pokemons, addressed with a ".json" suffix.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type createResponse struct {
	Name string `json:"name"`
}

// List returns every stored entry in the order the store returned the keys
func (c *Client) List(ctx context.Context) ([]repository.KeyedEntry, error) {
	body, err := c.do(ctx, http.MethodGet, c.collectionURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: store list: %v", domain.ErrFetchFailed, err)
	}

	entries, err := decodeOrdered(body)
	if err != nil {
		return nil, fmt.Errorf("%w: store list: decode: %v", domain.ErrFetchFailed, err)
	}
	return entries, nil
}

func (c *Client) Get(ctx context.Context, id string) (domain.RawEntry, error) {
	body, err := c.do(ctx, http.MethodGet, c.documentURL(id), nil)
	if err != nil {
		return domain.RawEntry{}, fmt.Errorf("%w: store get %s: %v", domain.ErrFetchFailed, id, err)
	}
	if isNull(body) {
		return domain.RawEntry{}, fmt.Errorf("%w: store key %s", domain.ErrNotFound, id)
	}

	var raw domain.RawEntry
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.RawEntry{}, fmt.Errorf("%w: store get %s: decode: %v", domain.ErrFetchFailed, id, err)
	}
	raw.ID = domain.FlexString(id)
	return raw, nil
}

// Create posts a new document and returns the key the store assigned
func (c *Client) Create(ctx context.Context, raw domain.RawEntry) (string, error) {
	body, err := c.do(ctx, http.MethodPost, c.collectionURL(), raw)
	if err != nil {
		return "", fmt.Errorf("%w: store create: %v", domain.ErrMutationFailed, err)
	}

	var created createResponse
	if err := json.Unmarshal(body, &created); err != nil || created.Name == "" {
		return "", fmt.Errorf("%w: store create: missing key in response", domain.ErrMutationFailed)
	}
	return created.Name, nil
}

// Replace overwrites the document at id (PUT semantics) and returns what the store saved
func (c *Client) Replace(ctx context.Context, id string, raw domain.RawEntry) (domain.RawEntry, error) {
	body, err := c.do(ctx, http.MethodPut, c.documentURL(id), raw)
	if err != nil {
		return domain.RawEntry{}, fmt.Errorf("%w: store replace %s: %v", domain.ErrMutationFailed, id, err)
	}

	var saved domain.RawEntry
	if err := json.Unmarshal(body, &saved); err != nil {
		return domain.RawEntry{}, fmt.Errorf("%w: store replace %s: decode: %v", domain.ErrMutationFailed, id, err)
	}
	saved.ID = domain.FlexString(id)
	return saved, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if _, err := c.do(ctx, http.MethodDelete, c.documentURL(id), nil); err != nil {
		return fmt.Errorf("%w: store delete %s: %v", domain.ErrMutationFailed, id, err)
	}
	return nil
}

func (c *Client) collectionURL() string {
	return c.baseURL + "/" + collection + ".json"
}

func (c *Client) documentURL(id string) string {
	return c.baseURL + "/" + collection + "/" + url.PathEscape(id) + ".json"
}

func (c *Client) do(ctx context.Context, method, rawURL string, payload any) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 512))
	}
	return body, nil
}

// decodeOrdered reads {"key": doc, ...} keeping document order. encoding/json
// maps would lose it, and the store returns keys in insertion order.
func decodeOrdered(body []byte) ([]repository.KeyedEntry, error) {
	if isNull(body) {
		return []repository.KeyedEntry{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("expected object")
	}

	entries := []repository.KeyedEntry{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("expected object key")
		}

		var raw domain.RawEntry
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("entry %s: %w", key, err)
		}
		raw.ID = domain.FlexString(key)
		entries = append(entries, repository.KeyedEntry{ID: key, Raw: raw})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return entries, nil
}

func isNull(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
