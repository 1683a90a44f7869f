package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/sketchtower/pkg/cache"
	"github.com/matzehuels/sketchtower/pkg/errors"
	"github.com/matzehuels/sketchtower/pkg/observability"
	"github.com/matzehuels/sketchtower/pkg/pipeline"
)

const documentJSON = `{"do_objectID": "doc", "pages": [{"_ref": "pages/P1"}]}`

// Page layers are stored bottom to top, so Home loads first.
const pageJSON = `{"_class": "page", "do_objectID": "P1", "name": "Screens", "layers": [
  {"_class": "artboard", "do_objectID": "A2", "name": "Settings", "isVisible": true,
   "frame": {"x": 200, "y": 0, "width": 100, "height": 100}},
  {"_class": "artboard", "do_objectID": "A1", "name": "Home", "isVisible": true,
   "frame": {"x": 0, "y": 0, "width": 100, "height": 100}}
]}`

func archive(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{"document.json": documentJSON, "pages/P1.json": pageJSON} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

type responses struct {
	observability.NoopHTTPHooks

	mu     sync.Mutex
	routes []string
}

func (r *responses) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, method+" "+route)
}

func newServer(t *testing.T, opts ...Option) (*httptest.Server, *responses) {
	t.Helper()
	hooks := &responses{}
	runner := pipeline.NewRunner(cache.NewFileCacheFS(memfs.New()), nil, nil)
	s := New(runner, append([]Option{WithHooks(hooks)}, opts...)...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, hooks
}

func post(t *testing.T, url string, body []byte) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/zip", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	ts, hooks := newServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, []string{"GET /healthz"}, hooks.routes)
}

func TestConvert(t *testing.T) {
	ts, _ := newServer(t)
	data := archive(t)

	first := post(t, ts.URL+"/v1/convert?artboard=Settings", data)
	require.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, "Settings", first.Header.Get("X-Sketchtower-Artboard"))
	assert.Equal(t, "miss", first.Header.Get("X-Sketchtower-Cache"))
	assert.Equal(t, "application/json", first.Header.Get("Content-Type"))

	var tree map[string]any
	require.NoError(t, json.NewDecoder(first.Body).Decode(&tree))
	assert.Equal(t, "Settings", tree["name"])

	second := post(t, ts.URL+"/v1/convert?artboard=Settings", data)
	require.Equal(t, http.StatusOK, second.StatusCode)
	assert.Equal(t, "hit", second.Header.Get("X-Sketchtower-Cache"))

	dot := post(t, ts.URL+"/v1/convert?format=dot", data)
	require.Equal(t, http.StatusOK, dot.StatusCode)
	assert.Equal(t, "Home", dot.Header.Get("X-Sketchtower-Artboard"))
	assert.Contains(t, dot.Header.Get("Content-Type"), "graphviz")
}

func TestConvertAll(t *testing.T) {
	ts, _ := newServer(t)
	resp := post(t, ts.URL+"/v1/convert?all=true", archive(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Artboards []struct {
			Page     string          `json:"page"`
			Artboard string          `json:"artboard"`
			Objects  int             `json:"objects"`
			Tree     json.RawMessage `json:"tree"`
		} `json:"artboards"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Artboards, 2)
	assert.Equal(t, "Home", body.Artboards[0].Artboard)
	assert.Equal(t, "Settings", body.Artboards[1].Artboard)
	assert.Equal(t, "Screens", body.Artboards[0].Page)
	assert.Equal(t, 1, body.Artboards[0].Objects)
	assert.True(t, json.Valid(body.Artboards[1].Tree))
}

func TestConvertErrors(t *testing.T) {
	ts, _ := newServer(t, WithMaxUpload(2048))
	data := archive(t)

	tests := []struct {
		name   string
		query  string
		body   []byte
		status int
		code   errors.Code
	}{
		{"empty body", "", nil, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad format", "?format=pdf", data, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"bad bool", "?all=maybe", data, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"all needs json", "?all=1&format=dot", data, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"missing artboard", "?artboard=Nope", data, http.StatusNotFound, errors.ErrCodeNotFound},
		{"not an archive", "", []byte("plain text"), http.StatusBadRequest, ""},
		{"too large", "", bytes.Repeat([]byte("x"), 4096), http.StatusRequestEntityTooLarge, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/convert"+tt.query, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
			if tt.code != "" {
				assert.Equal(t, string(tt.code), body["code"])
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	prom := observability.NewPrometheus(reg)
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
	s := New(runner, WithHooks(prom), WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `sketchtower_http_requests_total{method="GET",path="/healthz",status="200"} 1`)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidDocument, http.StatusBadRequest},
		{errors.ErrCodeFileNotFound, http.StatusNotFound},
		{errors.ErrCodeDecorator, http.StatusUnprocessableEntity},
		{errors.ErrCodeUnsupported, http.StatusNotImplemented},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(errors.New(tt.code, "boom")))
		})
	}
}
