package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/shopchat/internal/profile"
	"github.com/hrygo/shopchat/store"
	"github.com/hrygo/shopchat/store/storetest"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	storeInstance, _, _, _ := storetest.Seeded()
	s, err := NewServer(context.Background(), &profile.Profile{
		Mode:    "dev",
		Port:    8080,
		Version: "0.1.0",
	}, storeInstance)
	require.NoError(t, err)
	return s
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.e.ServeHTTP(w, req)
	return w
}

func TestChatWithoutModelFallsBackToDefaultOperation(t *testing.T) {
	s := newTestServer(t)

	// No LLM is configured, so classification falls back to the first
	// registered operation with a read action.
	w := doRequest(s, http.MethodPost, "/api/v1/chat", `{"query": "show everything"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "customer_crud", resp.Intent.Operation)
	assert.Equal(t, "read", resp.Intent.Action)
	assert.Empty(t, resp.Intent.Args)
	assert.Equal(t, "fallback", resp.Intent.Source)
	assert.NotEmpty(t, resp.Intent.ParseError)

	require.NotNil(t, resp.Result)
	assert.Equal(t, 3, resp.Result.RowCount)
	assert.Equal(t, "Successfully retrieved data from customer_crud.", resp.Summary)
	assert.NotEmpty(t, resp.RequestID)
	assert.NotEmpty(t, resp.SessionID)
}

func TestChatKeepsClientSessionID(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/api/v1/chat", `{"query": "list customers", "session_id": "sess-42"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "sess-42", resp.SessionID)
}

func TestChatRejectsEmptyQuery(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/api/v1/chat", `{"query": "   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListOperations(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/api/v1/operations", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Operations []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"operations"`
		Default string `json:"default"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Operations, 3)
	assert.Equal(t, "customer_crud", resp.Operations[0].Name)
	assert.Equal(t, "customer_crud", resp.Default)
}

func TestRefreshOperations(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/api/v1/operations/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Registered int      `json:"registered"`
		Operations []string `json:"operations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Registered)
	assert.Len(t, resp.Operations, 3)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Version string            `json:"version"`
		Stores  map[string]string `json:"stores"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "0.1.0", resp.Version)
	assert.Equal(t, "ok", resp.Stores["customers"])
	assert.Equal(t, "ok", resp.Stores["sales"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	// Serve one chat request so the counters have samples.
	doRequest(s, http.MethodPost, "/api/v1/chat", `{"query": "list customers"}`)

	w := doRequest(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "shopchat_chat_requests_total")
	assert.Contains(t, w.Body.String(), "shopchat_intent_parse_results_total")
}

func TestServerStartsDegradedAndRecoversOnRefresh(t *testing.T) {
	customers := storetest.NewCustomers()
	products := storetest.NewProducts()
	sales := storetest.NewSales()
	customers.PingErr = assert.AnError
	products.PingErr = assert.AnError
	sales.PingErr = assert.AnError

	s, err := NewServer(context.Background(), &profile.Profile{Mode: "dev"},
		store.New(customers, products, sales, nil))
	require.NoError(t, err)

	// Degraded: nothing registered, so chat has no operation to run.
	w := doRequest(s, http.MethodPost, "/api/v1/chat", `{"query": "list customers"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	customers.PingErr = nil
	products.PingErr = nil
	sales.PingErr = nil

	w = doRequest(s, http.MethodPost, "/api/v1/operations/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Registered int `json:"registered"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Registered)

	w = doRequest(s, http.MethodPost, "/api/v1/chat", `{"query": "list customers"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}
