package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/paypals/internal/ledger"
	"github.com/mmynk/paypals/internal/session"
	"github.com/mmynk/paypals/internal/storage/sqlite"
)

func newTestServer(t *testing.T) (*httptest.Server, *session.Session) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	s, err := session.Open(context.Background(), store, "trip", ledger.DefaultOptions())
	require.NoError(t, err)

	ts := httptest.NewServer(New(s, prometheus.NewRegistry()))
	t.Cleanup(ts.Close)
	return ts, s
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

const dinner = `{"description":"dinner","payer":"Alice","shares":[{"name":"Bob","amount":"20"},{"name":"Charlie","amount":"8"}]}`

func TestAddAndSettle(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, ts, http.MethodPost, "/api/activities", dinner)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	act := decodeBody[activityJSON](t, resp)
	assert.Equal(t, 1, act.Position)
	assert.Equal(t, "dinner", act.Description)
	assert.Equal(t, "-28.00", act.Payer.Amount)
	require.Len(t, act.Participants, 2)
	assert.Equal(t, "20.00", act.Participants[0].Amount)

	resp = do(t, ts, http.MethodGet, "/api/balances", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bals := decodeBody[[]balanceJSON](t, resp)
	assert.Equal(t, []balanceJSON{
		{Name: "Alice", Amount: "-28.00"},
		{Name: "Bob", Amount: "20.00"},
		{Name: "Charlie", Amount: "8.00"},
	}, bals)

	resp = do(t, ts, http.MethodGet, "/api/settlement", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	plan := decodeBody[[]transactionJSON](t, resp)
	assert.Equal(t, []transactionJSON{
		{From: "Bob", To: "Alice", Amount: "20.00"},
		{From: "Charlie", To: "Alice", Amount: "8.00"},
	}, plan)
}

func TestAddEqualSplit(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, ts, http.MethodPost, "/api/activities/equal",
		`{"description":"taxi","payer":"Alice","friends":["Bob","Charlie"],"total":"30"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	act := decodeBody[activityJSON](t, resp)
	assert.Equal(t, "-20.00", act.Payer.Amount)
	for _, p := range act.Participants {
		assert.Equal(t, "10.00", p.Amount)
	}
}

func TestErrorStatuses(t *testing.T) {
	ts, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, ts, http.MethodPost, "/api/activities", dinner).StatusCode)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
		kind   string
	}{
		{
			name: "malformed json", method: http.MethodPost, path: "/api/activities",
			body: `{"description":`, want: http.StatusBadRequest,
		},
		{
			name: "missing shares", method: http.MethodPost, path: "/api/activities",
			body: `{"description":"x","payer":"Alice","shares":[]}`, want: http.StatusBadRequest,
		},
		{
			name: "payer listed as friend", method: http.MethodPost, path: "/api/activities",
			body: `{"description":"x","payer":"Alice","shares":[{"name":"Alice","amount":"5"}]}`,
			want: http.StatusBadRequest, kind: "validation",
		},
		{
			name: "activity out of bounds", method: http.MethodGet, path: "/api/activities/9",
			want: http.StatusNotFound, kind: "bounds",
		},
		{
			name: "non-numeric id", method: http.MethodDelete, path: "/api/activities/abc",
			want: http.StatusBadRequest,
		},
		{
			name: "unknown person", method: http.MethodGet, path: "/api/people/Zed/activities",
			want: http.StatusNotFound, kind: "bounds",
		},
		{
			name: "unpaid twice", method: http.MethodDelete, path: "/api/activities/1/paid/Bob",
			want: http.StatusConflict, kind: "conflict",
		},
		{
			name: "unknown edit field", method: http.MethodPatch, path: "/api/activities/1",
			body: `{"field":"colour","value":"red"}`, want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, ts, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
			body := decodeBody[errorResponse](t, resp)
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, tt.kind, body.Kind)
		})
	}
}

func TestEditPaidDelete(t *testing.T) {
	ts, s := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, ts, http.MethodPost, "/api/activities", dinner).StatusCode)

	resp := do(t, ts, http.MethodPatch, "/api/activities/1", `{"field":"friend","old":"Charlie","value":"Dave"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	act := decodeBody[activityJSON](t, resp)
	assert.Equal(t, "Dave", act.Participants[1].Name)

	resp = do(t, ts, http.MethodPut, "/api/activities/1/paid/Bob", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	act = decodeBody[activityJSON](t, resp)
	assert.True(t, act.Participants[0].Paid)

	resp = do(t, ts, http.MethodGet, "/api/people/Bob/outstanding", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0.00", decodeBody[balanceJSON](t, resp).Amount)

	resp = do(t, ts, http.MethodPatch, "/api/activities/1", `{"field":"amount","old":"Bob","amount":"5"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, ts, http.MethodGet, "/api/people/Dave/activities", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	acts := decodeBody[[]activityJSON](t, resp)
	require.Len(t, acts, 1)
	assert.Equal(t, 1, acts[0].Position)

	resp = do(t, ts, http.MethodDelete, "/api/activities/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, s.Len())

	resp = do(t, ts, http.MethodGet, "/api/activities", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeBody[[]activityJSON](t, resp))
}

func TestMetricsAndHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, ts, http.MethodPost, "/api/activities", dinner).StatusCode)

	resp := do(t, ts, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	resp = do(t, ts, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, `paypals_ledger_operations_total{op="add",outcome="ok"} 1`)
	assert.Contains(t, body, "paypals_activities 1")
	assert.Contains(t, body, `route="/api/activities"`)
}
