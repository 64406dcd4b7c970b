package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pastchais/check-notion-url/internal/linkcheck"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{
		Token:          "secret-token",
		BaseURL:        baseURL,
		Timeout:        2 * time.Second,
		MaxRetries:     2,
		BackoffInitial: time.Millisecond,
		BackoffMax:     5 * time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func newTestStore(t *testing.T, client *Client, filter string) *Store {
	t.Helper()
	store, err := NewStore(client, StoreConfig{
		DatabaseID:   "db-123",
		StatusFilter: filter,
	}, zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestFetchAllFollowsPagination(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		cursors []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/databases/db-123/query", r.URL.Path)
		require.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get("Notion-Version"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		cursor, _ := body["start_cursor"].(string)
		mu.Lock()
		cursors = append(cursors, cursor)
		mu.Unlock()

		if cursor == "" {
			_, _ = w.Write([]byte(`{
				"results": [{
					"id": "p1",
					"properties": {
						"Name": {"type": "title", "title": [{"plain_text": "Doc "}, {"plain_text": "One"}]},
						"URL": {"type": "url", "url": "https://a.example"},
						"Status": {"type": "select", "select": {"name": "Available"}}
					}
				}],
				"has_more": true,
				"next_cursor": "cur-2"
			}`))
			return
		}
		require.Equal(t, "cur-2", cursor)
		_, _ = w.Write([]byte(`{
			"results": [{
				"id": "p2",
				"properties": {
					"Name": {"type": "title", "title": [{"plain_text": "Doc Two"}]},
					"URL": {"type": "url", "url": null},
					"Status": {"type": "select", "select": null}
				}
			}],
			"has_more": false,
			"next_cursor": null
		}`))
	}))
	defer srv.Close()

	store := newTestStore(t, newTestClient(t, srv.URL), "")
	records, err := store.FetchAll(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"", "cur-2"}, cursors)
	require.Equal(t, []linkcheck.LinkRecord{
		{ID: "p1", Title: "Doc One", URL: "https://a.example", Status: linkcheck.StatusAvailable},
		{ID: "p2", Title: "Doc Two", URL: "", Status: linkcheck.StatusUnchecked},
	}, records)
}

func TestFetchAllAppliesStatusFilter(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Filter *struct {
				Property string `json:"property"`
				Select   *struct {
					Equals string `json:"equals"`
				} `json:"select"`
			} `json:"filter"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.NotNil(t, body.Filter)
		require.Equal(t, "Status", body.Filter.Property)
		require.Equal(t, "Dead", body.Filter.Select.Equals)

		_, _ = w.Write([]byte(`{"results": [], "has_more": false, "next_cursor": null}`))
	}))
	defer srv.Close()

	store := newTestStore(t, newTestClient(t, srv.URL), "Dead")
	records, err := store.FetchAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestWriteStatusUpdatesSelectProperty(t *testing.T) {
	t.Parallel()

	var (
		gotPath string
		gotBody map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	store := newTestStore(t, newTestClient(t, srv.URL), "")
	require.NoError(t, store.WriteStatus(context.Background(), "page-1", linkcheck.StatusDead))

	require.Equal(t, "/v1/pages/page-1", gotPath)
	props := gotBody["properties"].(map[string]any)
	sel := props["Status"].(map[string]any)["select"].(map[string]any)
	require.Equal(t, "Dead", sel["name"])
}

func TestWriteStatusRejectsUnmappedStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	}))
	defer srv.Close()

	store := newTestStore(t, newTestClient(t, srv.URL), "")
	err := store.WriteStatus(context.Background(), "page-1", linkcheck.StatusUnchecked)
	require.ErrorContains(t, err, "no store label")
}

func TestArchiveSoftDeletesPage(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/v1/pages/page-9", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	store := newTestStore(t, newTestClient(t, srv.URL), "")
	require.NoError(t, store.Archive(context.Background(), "page-9"))
	require.Equal(t, true, gotBody["archived"])
}

func TestClientRetriesRateLimitAndServerErrors(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		switch calls {
		case 1:
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusBadGateway)
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	store := newTestStore(t, newTestClient(t, srv.URL), "")
	require.NoError(t, store.Archive(context.Background(), "page-1"))
	require.Equal(t, 3, calls)
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "validation failed"}`))
	}))
	defer srv.Close()

	store := newTestStore(t, newTestClient(t, srv.URL), "")
	err := store.Archive(context.Background(), "page-1")
	require.ErrorContains(t, err, "status 400")
	require.Equal(t, 1, calls)
}

func TestNewClientRequiresToken(t *testing.T) {
	t.Parallel()

	_, err := NewClient(ClientConfig{}, zap.NewNop())
	require.ErrorContains(t, err, "token")
}

func TestNewStoreRequiresDatabaseID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "http://localhost:0")
	_, err := NewStore(client, StoreConfig{}, zap.NewNop())
	require.ErrorContains(t, err, "database id")
}
