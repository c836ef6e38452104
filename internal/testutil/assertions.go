package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/dom/pokedex/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v and verifies success
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies error response with expected status and message
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	// Error responses are plain text in this API
	assert.Contains(t, string(body), expectedMessage, "error message mismatch")
}

// AssertStatsOrder verifies all six stats are present in display order
func AssertStatsOrder(t *testing.T, stats domain.Stats) {
	t.Helper()
	for i, name := range domain.StatOrder {
		assert.Equal(t, name, stats[i].Name, "stat %d out of order", i)
	}
}

// AssertEntryIDs verifies the ids of list, in order
func AssertEntryIDs(t *testing.T, expected []string, list []domain.Entry) {
	t.Helper()
	got := make([]string, 0, len(list))
	for _, e := range list {
		got = append(got, e.ID)
	}
	assert.Equal(t, expected, got, "unexpected entry order")
}
