package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kendall-kelly/hantverk-dashboard/logger"
	"github.com/kendall-kelly/hantverk-dashboard/metrics"
	"github.com/kendall-kelly/hantverk-dashboard/models"
	"github.com/kendall-kelly/hantverk-dashboard/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDAssignsAndPropagates(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{ServiceName: "test", Output: &buf})

	router := gin.New()
	router.Use(RequestID(log))
	router.GET("/ping", func(c *gin.Context) {
		log.Info(c.Request.Context(), "handled")
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())
	assert.Contains(t, buf.String(), `"request_id":"`+generated+`"`)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestLoggingRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{ServiceName: "test", Output: &buf})

	router := gin.New()
	router.Use(Logging(log))
	router.GET("/missing", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	out := buf.String()
	assert.Contains(t, out, `"message":"request.complete"`)
	assert.Contains(t, out, `"status":404`)
	assert.Contains(t, out, `"path":"/missing"`)
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := gin.New()
	router.Use(Metrics(metrics.New(reg)))
	router.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/abc", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/def", nil))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		require.Len(t, mf.GetMetric(), 1, "both ids share one series")
		assert.Equal(t, 2.0, mf.GetMetric()[0].GetCounter().GetValue())
		return
	}
	t.Fatal("http_requests_total not exported")
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		wantHeader string
	}{
		{"wildcard", []string{"*"}, "http://localhost:5173", "*"},
		{"empty allows all", nil, "http://anything.example", "*"},
		{"listed origin", []string{"http://localhost:5173"}, "http://localhost:5173", "http://localhost:5173"},
		{"unlisted origin", []string{"http://localhost:5173"}, "http://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CORS(tt.origins))
			router.GET("/customers", func(c *gin.Context) { c.JSON(http.StatusOK, []string{}) })

			req := httptest.NewRequest(http.MethodGet, "/customers", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantHeader, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

// idempotentRouter counts how often the handler actually runs
func idempotentRouter(store services.IdempotencyStore, status int, m *metrics.Metrics) (*gin.Engine, *atomic.Int32) {
	var calls atomic.Int32
	router := gin.New()
	router.POST("/orders", Idempotency(store, time.Hour, nil, m), func(c *gin.Context) {
		n := calls.Add(1)
		if status >= 400 {
			c.JSON(status, models.ErrorResponse{Detail: "out of stock"})
			return
		}
		c.JSON(status, gin.H{"id": "order-" + string(rune('0'+n)), "total": 200})
	})
	return router, &calls
}

func postOrder(router *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	reg := prometheus.NewRegistry()
	router, calls := idempotentRouter(services.NewMemoryStore(), http.StatusCreated, metrics.New(reg))
	body := `{"customer_id":"c1","items":[{"material_id":"m1","quantity":2}]}`

	first := postOrder(router, "key-1", body)
	second := postOrder(router, "key-1", body)

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(ReplayHeader))
	assert.Empty(t, first.Header().Get(ReplayHeader))
	assert.EqualValues(t, 1, calls.Load(), "the handler ran once")

	third := postOrder(router, "key-2", body)
	assert.Equal(t, http.StatusCreated, third.Code)
	assert.EqualValues(t, 2, calls.Load(), "a new key is a new request")
}

func TestIdempotencyRejectsReusedKeyWithDifferentBody(t *testing.T) {
	router, calls := idempotentRouter(services.NewMemoryStore(), http.StatusCreated, nil)

	postOrder(router, "key-1", `{"customer_id":"c1"}`)
	w := postOrder(router, "key-1", `{"customer_id":"c2"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "IDEMPOTENCY_CONFLICT", resp.Code)
	assert.NotEmpty(t, resp.Detail)
	assert.EqualValues(t, 1, calls.Load())
}

func TestIdempotencyWithoutKeyPassesThrough(t *testing.T) {
	router, calls := idempotentRouter(services.NewMemoryStore(), http.StatusCreated, nil)

	postOrder(router, "", `{}`)
	postOrder(router, "", `{}`)
	assert.EqualValues(t, 2, calls.Load())
}

func TestIdempotencyDoesNotStoreFailures(t *testing.T) {
	router, calls := idempotentRouter(services.NewMemoryStore(), http.StatusConflict, nil)

	postOrder(router, "key-1", `{}`)
	w := postOrder(router, "key-1", `{}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, w.Header().Get(ReplayHeader))
	assert.EqualValues(t, 2, calls.Load(), "a rejected request may be retried")
}

func TestIdempotencyRepeatWhileFirstRequestRuns(t *testing.T) {
	store := services.NewMemoryStore()
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	router := gin.New()
	router.POST("/orders", Idempotency(store, time.Hour, nil, nil), func(c *gin.Context) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
		c.JSON(http.StatusCreated, gin.H{"id": "order-1", "total": 200})
	})
	body := `{"customer_id":"c1","items":[{"material_id":"m1","quantity":2}]}`

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() { done <- postOrder(router, "key-1", body) }()
	<-started

	w := postOrder(router, "key-1", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "IDEMPOTENCY_IN_PROGRESS", resp.Code)

	w = postOrder(router, "key-1", `{"customer_id":"c2"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "IDEMPOTENCY_CONFLICT", resp.Code)

	close(release)
	assert.Equal(t, http.StatusCreated, (<-done).Code)

	w = postOrder(router, "key-1", body)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "true", w.Header().Get(ReplayHeader))
	assert.EqualValues(t, 1, calls.Load(), "the handler ran once")
}

type failingStore struct {
	*services.MemoryStore
}

func (failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, errors.New("redis down")
}

func TestIdempotencyStoreFailure(t *testing.T) {
	router, calls := idempotentRouter(failingStore{services.NewMemoryStore()}, http.StatusCreated, nil)

	w := postOrder(router, "key-1", `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.EqualValues(t, 0, calls.Load())
}
