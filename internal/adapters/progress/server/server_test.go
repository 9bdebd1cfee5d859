package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/adapters/progress"
	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/bnema/pioneer-tx-cli/internal/ports/mocks"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) progress.DataResponse {
	t.Helper()

	var data progress.DataResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&data))
	return data
}

func TestServerListResetsCounts(t *testing.T) {
	t.Parallel()

	handler := New(Config{}, NewMemoryStore()).Handler()

	rec := do(t, handler, http.MethodPost, progress.PathAccounts, `{"users":["alice","bob"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = do(t, handler, http.MethodPost, progress.PathCount, `{"user":"alice","txCount":4}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, handler, http.MethodGet, progress.PathData, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"userList":["alice","bob"],"userTxCounts":{"alice":4,"bob":0}}`, rec.Body.String())

	rec = do(t, handler, http.MethodPost, progress.PathAccounts, `{"users":["bob","carol"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData(t, do(t, handler, http.MethodGet, progress.PathData, ""))
	assert.Equal(t, []string{"bob", "carol"}, data.UserList)
	assert.Equal(t, map[string]int{"bob": 0, "carol": 0}, data.UserTxCounts)
}

func TestServerCountIsLastWriteWins(t *testing.T) {
	t.Parallel()

	handler := New(Config{}, NewMemoryStore()).Handler()
	do(t, handler, http.MethodPost, progress.PathAccounts, `{"users":["alice"]}`)

	for _, body := range []string{
		`{"user":"alice","txCount":7}`,
		`{"user":"alice","txCount":3}`,
		`{"user":"dave","txCount":1}`,
	} {
		require.Equal(t, http.StatusOK, do(t, handler, http.MethodPost, progress.PathCount, body).Code)
	}

	data := decodeData(t, do(t, handler, http.MethodGet, progress.PathData, ""))
	assert.Equal(t, []string{"alice"}, data.UserList)
	assert.Equal(t, map[string]int{"alice": 3, "dave": 1}, data.UserTxCounts)
}

func TestServerEmptyStoreServesEmptyCollections(t *testing.T) {
	t.Parallel()

	rec := do(t, New(Config{}, NewMemoryStore()).Handler(), http.MethodGet, progress.PathData, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userList":[],"userTxCounts":{}}`, rec.Body.String())
}

func TestServerRejectsBadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		method    string
		path      string
		body      string
		wantCode  int
		wantError string
	}{
		{name: "malformed list", method: http.MethodPost, path: progress.PathAccounts, body: `{"users":`, wantCode: http.StatusBadRequest, wantError: "invalid JSON body"},
		{name: "missing users", method: http.MethodPost, path: progress.PathAccounts, body: `{}`, wantCode: http.StatusBadRequest, wantError: "users is required"},
		{name: "blank user in list", method: http.MethodPost, path: progress.PathAccounts, body: `{"users":["alice"," "]}`, wantCode: http.StatusBadRequest, wantError: "users must not contain empty names"},
		{name: "count without user", method: http.MethodPost, path: progress.PathCount, body: `{"txCount":2}`, wantCode: http.StatusBadRequest, wantError: "user is required"},
		{name: "negative count", method: http.MethodPost, path: progress.PathCount, body: `{"user":"alice","txCount":-1}`, wantCode: http.StatusBadRequest, wantError: "txCount must not be negative"},
		{name: "count as string", method: http.MethodPost, path: progress.PathCount, body: `{"user":"alice","txCount":"2"}`, wantCode: http.StatusBadRequest, wantError: "invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := do(t, New(Config{}, NewMemoryStore()).Handler(), tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)

			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}

func TestServerRejectsWrongMethod(t *testing.T) {
	t.Parallel()

	rec := do(t, New(Config{}, NewMemoryStore()).Handler(), http.MethodGet, progress.PathCount, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServerStoreFailure(t *testing.T) {
	t.Parallel()

	store := mocks.NewMockProgressStore(t)
	store.EXPECT().SetCount(mock.Anything, "alice", 2).Return(errors.New("redis down"))
	store.EXPECT().Snapshot(mock.Anything).Return(domain.ProgressSnapshot{}, errors.New("redis down"))

	handler := New(Config{}, store).Handler()

	rec := do(t, handler, http.MethodPost, progress.PathCount, `{"user":"alice","txCount":2}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "redis down")

	rec = do(t, handler, http.MethodGet, progress.PathData, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServerDashboard(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.SetAccounts(ctx, []string{"alice", "bob"}))
	require.NoError(t, store.SetCount(ctx, "alice", 50))
	require.NoError(t, store.SetCount(ctx, "bob", 100))
	require.NoError(t, store.SetCount(ctx, "carol", 7))

	rec := do(t, New(Config{Quota: 100}, store).Handler(), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "dashboard", rec.Body.Bytes())
}

func TestServerDashboardEscapesAccountNames(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	require.NoError(t, store.SetAccounts(context.Background(), []string{"<script>alert(1)</script>"}))

	rec := do(t, New(Config{}, store).Handler(), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>alert(1)</script>")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;alert(1)&lt;/script&gt;")
}

func TestServerUnknownPathIsNotFound(t *testing.T) {
	t.Parallel()

	rec := do(t, New(Config{}, NewMemoryStore()).Handler(), http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerExposesMetrics(t *testing.T) {
	t.Parallel()

	handler := New(Config{}, NewMemoryStore()).Handler()
	do(t, handler, http.MethodGet, progress.PathData, "")
	do(t, handler, http.MethodGet, "/nope", "")

	rec := do(t, handler, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `ptx_progress_http_requests_total{method="GET",path="/data",status="2xx"} 1`)
	assert.Contains(t, body, `ptx_progress_http_requests_total{method="GET",path="other",status="4xx"} 1`)
	assert.Contains(t, body, "ptx_progress_http_request_duration_seconds_bucket")
}

func TestServerServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(Config{}, NewMemoryStore()).Serve(ctx, listener) }()

	url := "http://" + listener.Addr().String() + progress.PathData
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
