package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dom/pokedex/internal/domain"
)

const DefaultBaseURL = "https://pokeapi.co/api/v2"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type listResponse struct {
	Count   int `json:"count"`
	Results []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"results"`
}

// ListNames returns the names of one page of the catalog, in catalog order
func (c *Client) ListNames(ctx context.Context, limit, offset int) ([]string, error) {
	u, _ := url.Parse(c.baseURL + "/pokemon")
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	u.RawQuery = q.Encode()

	var page listResponse
	if err := c.getJSON(ctx, u.String(), &page); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(page.Results))
	for _, r := range page.Results {
		names = append(names, r.Name)
	}
	return names, nil
}

// GetDetail fetches one catalog entry by name or numeric id
func (c *Client) GetDetail(ctx context.Context, nameOrID string) (domain.RawEntry, error) {
	var raw domain.RawEntry
	if err := c.getJSON(ctx, c.baseURL+"/pokemon/"+url.PathEscape(nameOrID), &raw); err != nil {
		return domain.RawEntry{}, err
	}
	return raw, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: pokeapi: build request: %v", domain.ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: pokeapi: request: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: pokeapi: %s", domain.ErrNotFound, req.URL.Path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: pokeapi: status %d: %s", domain.ErrFetchFailed, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: pokeapi: decode: %v", domain.ErrFetchFailed, err)
	}
	return nil
}
