package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestMiddlewaresStacks ensures we get both public and ops middlewares
// stacks with exact number of elements in those stacks.
func TestMiddlewaresStacks(t *testing.T) {
	api := NewAPIHandler(zap.NewNop(), &Config{}, &Statistics{started: time.Now()}, NewMockClocker(), NewMockUIDHandler("abc", true), nil)
	pub, ops := api.MiddlewaresStacks()
	assert.Equal(t, 8, len(*pub))
	assert.Equal(t, 6, len(*ops))
}

// TestChain ensures each middleware in the stack is called as well the handler.
func TestChain(t *testing.T) {
	var ca, cb, cc, ch bool
	queue := make(chan int, 4)

	middlewareA := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 1
			ca = true
			next(w, r, ps)
		}
	}
	middlewareB := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 2
			cb = true
			next(w, r, ps)
		}
	}
	middlewareC := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 3
			cc = true
			next(w, r, ps)
		}
	}
	middlewares := Middlewares{
		middlewareA,
		middlewareB,
		middlewareC,
	}

	handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		queue <- 4
		ch = true
	}

	chained := (&middlewares).Chain(handler)
	req := httptest.NewRequest("GET", "/v1/books", nil)
	w := httptest.NewRecorder()
	chained(w, req, nil)

	t.Run("check calling", func(t *testing.T) {
		assert.Equal(t, true, ca)
		assert.Equal(t, true, cb)
		assert.Equal(t, true, cc)
		assert.Equal(t, true, ch)
	})

	t.Run("check ordering", func(t *testing.T) {
		assert.Equal(t, 1, <-queue)
		assert.Equal(t, 2, <-queue)
		assert.Equal(t, 3, <-queue)
		assert.Equal(t, 4, <-queue)
	})
}

// TestRequestsCounterMiddleware ensures the request counter increment.
func TestRequestsCounterMiddleware(t *testing.T) {
	api := NewAPIHandler(zap.NewNop(), &Config{}, &Statistics{started: time.Now(), called: 0}, NewMockClocker(), nil, nil)
	req := httptest.NewRequest("GET", "/v1/books", nil)
	w := httptest.NewRecorder()
	var num uint64
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		num = GetRequestNumberFromContext(req.Context())
	}
	wrapped := api.RequestsCounterMiddleware(handler)
	wrapped(w, req, nil)
	assert.Equal(t, uint64(1), num)
	assert.Equal(t, uint64(1), api.stats.called)
}

// TestRequestIDMiddleware ensures the request id and the request logger are set.
func TestRequestIDMiddleware(t *testing.T) {
	api := NewAPIHandler(zap.NewNop(), &Config{}, &Statistics{started: time.Now()}, NewMockClocker(), NewMockUIDHandler("abc", true), nil)
	req := httptest.NewRequest("GET", "/v1/books", nil)
	var requestID string
	var logger *zap.Logger
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		requestID = GetValueFromContext(req.Context(), RequestIDContextKey)
		logger = api.GetLoggerFromContext(req.Context())
	}
	api.RequestIDMiddleware(handler)(httptest.NewRecorder(), req, nil)
	assert.Equal(t, "r:abc", requestID)
	require.NotNil(t, logger)
	assert.NotSame(t, api.logger, logger)
	assert.Same(t, api.logger, api.GetLoggerFromContext(req.Context()))
}

// TestPanicRecoveryMiddleware ensures a panic ends with a 500 json response.
func TestPanicRecoveryMiddleware(t *testing.T) {
	api := NewAPIHandler(zap.NewNop(), &Config{}, &Statistics{started: time.Now()}, NewMockClocker(), nil, nil)
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		panic("boom")
	}
	w := httptest.NewRecorder()
	api.PanicRecoveryMiddleware(handler)(w, httptest.NewRequest("GET", "/v1/books", nil), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to process the request.")
}

// TestRateLimitMiddleware ensures requests above the burst are rejected.
func TestRateLimitMiddleware(t *testing.T) {
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	}

	t.Run("disabled", func(t *testing.T) {
		api := NewAPIHandler(zap.NewNop(), &Config{}, &Statistics{}, NewMockClocker(), nil, nil)
		for i := 0; i < 5; i++ {
			w := httptest.NewRecorder()
			api.RateLimitMiddleware(handler)(w, httptest.NewRequest("GET", "/v1/books", nil), nil)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("enabled", func(t *testing.T) {
		config := &Config{Server: ServerConfig{RateLimit: 0.001, RateBurst: 2}}
		api := NewAPIHandler(zap.NewNop(), config, &Statistics{}, NewMockClocker(), nil, nil)
		codes := []int{}
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			api.RateLimitMiddleware(handler)(w, httptest.NewRequest("GET", "/v1/books", nil), nil)
			codes = append(codes, w.Code)
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})
}

// TestCORSMiddleware ensures cors headers are set.
func TestCORSMiddleware(t *testing.T) {
	w := httptest.NewRecorder()
	CORSMiddleware(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {})(w, httptest.NewRequest("GET", "/", nil), nil)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
