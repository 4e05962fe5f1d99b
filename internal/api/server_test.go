package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobrla/openinsafari/internal/auth"
	"github.com/phobrla/openinsafari/internal/config"
	"github.com/phobrla/openinsafari/internal/opener"
	"github.com/phobrla/openinsafari/internal/origin"
)

type recordOpener struct {
	mu   sync.Mutex
	urls []string
}

func (r *recordOpener) Open(_ context.Context, url string) opener.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, url)
	return opener.Outcome{Launched: true, Detail: "opened"}
}

func (r *recordOpener) dispatched() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

func newTestServer(t *testing.T, op opener.Opener) *Server {
	t.Helper()

	cfg := &config.Config{
		Port:           51888,
		SharedToken:    "t1",
		AllowedSubnets: []string{"10.0.0.0/24"},
	}
	filter, err := origin.NewFilter(cfg.AllowedSubnets)
	require.NoError(t, err)

	return NewServer(zerolog.Nop(), cfg, filter, auth.NewGuard(cfg.SharedToken), op)
}

func doRequest(srv *Server, method, path, remote, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.RemoteAddr = remote
	if token != "" {
		req.Header.Set("X-Auth-Token", token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestOpen_AllowedOriginAndToken(t *testing.T) {
	rec := &recordOpener{}
	srv := newTestServer(t, rec)

	res := doRequest(srv, http.MethodPost, "/open", "10.0.0.5:51123", "t1",
		`{"url":"https://example.com"}`)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, []string{"https://example.com"}, rec.dispatched())

	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, body["dispatch_id"])
}

func TestOpen_DeniedOrigin(t *testing.T) {
	rec := &recordOpener{}
	srv := newTestServer(t, rec)

	res := doRequest(srv, http.MethodPost, "/open", "192.168.1.5:51123", "t1",
		`{"url":"https://example.com"}`)

	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Empty(t, rec.dispatched())
}

func TestOpen_WrongToken(t *testing.T) {
	rec := &recordOpener{}
	srv := newTestServer(t, rec)

	res := doRequest(srv, http.MethodPost, "/open", "10.0.0.5:51123", "wrong",
		`{"url":"https://example.com"}`)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Empty(t, rec.dispatched())
}

func TestOpen_MissingToken(t *testing.T) {
	rec := &recordOpener{}
	srv := newTestServer(t, rec)

	res := doRequest(srv, http.MethodPost, "/open", "10.0.0.5:51123", "",
		`{"url":"https://example.com"}`)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Empty(t, rec.dispatched())
}

func TestOpen_BadScheme(t *testing.T) {
	rec := &recordOpener{}
	srv := newTestServer(t, rec)

	res := doRequest(srv, http.MethodPost, "/open", "10.0.0.5:51123", "t1",
		`{"url":"file:///etc/passwd"}`)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Empty(t, rec.dispatched())
}

func TestOpen_WrongMethod(t *testing.T) {
	srv := newTestServer(t, &recordOpener{})

	res := doRequest(srv, http.MethodGet, "/open", "10.0.0.5:51123", "t1", "")
	assert.Equal(t, http.StatusMethodNotAllowed, res.Code)
}

func TestOpen_DryRun(t *testing.T) {
	srv := newTestServer(t, opener.NewNoop(zerolog.Nop()))

	res := doRequest(srv, http.MethodPost, "/open", "10.0.0.5:51123", "t1",
		`{"url":"https://example.com"}`)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "dry run")
}

func TestOpen_Concurrent(t *testing.T) {
	rec := &recordOpener{}
	srv := newTestServer(t, rec)

	const n = 20
	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res := doRequest(srv, http.MethodPost, "/open", "10.0.0.5:51123", "t1",
				fmt.Sprintf(`{"url":"https://example.com/%d"}`, i))
			codes[i] = res.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusOK, code, "request %d", i)
	}

	want := make([]string, n)
	for i := range want {
		want[i] = fmt.Sprintf("https://example.com/%d", i)
	}
	got := rec.dispatched()
	sort.Strings(got)
	sort.Strings(want)
	assert.Equal(t, want, got)
}

func TestPing_NoDispatch(t *testing.T) {
	rec := &recordOpener{}
	srv := newTestServer(t, rec)

	res := doRequest(srv, http.MethodGet, "/ping", "10.0.0.5:51123", "t1", "")

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Empty(t, rec.dispatched())

	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, Version, body["version"])
	assert.Equal(t, "10.0.0.5", body["client_ip"])
}

func TestPing_RequiresToken(t *testing.T) {
	srv := newTestServer(t, &recordOpener{})

	res := doRequest(srv, http.MethodGet, "/ping", "10.0.0.5:51123", "", "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestHealthz_OriginGatedOnly(t *testing.T) {
	srv := newTestServer(t, &recordOpener{})

	res := doRequest(srv, http.MethodGet, "/healthz", "10.0.0.5:51123", "", "")
	assert.Equal(t, http.StatusOK, res.Code)

	res = doRequest(srv, http.MethodGet, "/healthz", "192.168.1.5:51123", "", "")
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &recordOpener{})

	res := doRequest(srv, http.MethodGet, "/metrics", "10.0.0.5:51123", "", "")
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestPreflight(t *testing.T) {
	srv := newTestServer(t, &recordOpener{})

	res := doRequest(srv, http.MethodOptions, "/open", "10.0.0.5:51123", "", "")
	assert.Equal(t, http.StatusNoContent, res.Code)
	assert.Equal(t, "*", res.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownPath(t *testing.T) {
	rec := &recordOpener{}
	srv := newTestServer(t, rec)

	res := doRequest(srv, http.MethodGet, "/nope", "10.0.0.5:51123", "t1", "")
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Empty(t, rec.dispatched())
}
