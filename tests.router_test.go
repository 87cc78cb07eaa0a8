package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func emptyMiddlewareMap() *MiddlewareMap {
	return &MiddlewareMap{public: (&Middlewares{}).Chain, ops: (&Middlewares{}).Chain}
}

// TestSetupLibraryRoutes ensures all expected library endpoints are implemented.
func TestSetupLibraryRoutes(t *testing.T) {
	bookPath := "/v1/books/b:cb8f2136-fae4-4200-85d9-3533c7f8c70d"
	testCases := []struct {
		name        string
		request     *http.Request
		implemented bool
	}{
		{"index endpoint", httptest.NewRequest(http.MethodGet, "/", nil), true},
		{"status endpoint", httptest.NewRequest(http.MethodGet, "/status", nil), true},
		{"create author endpoint", httptest.NewRequest(http.MethodPost, "/v1/authors", nil), true},
		{"fetch all authors endpoint", httptest.NewRequest(http.MethodGet, "/v1/authors", nil), true},
		{"create book endpoint", httptest.NewRequest(http.MethodPost, "/v1/books", nil), true},
		{"fetch all books endpoint", httptest.NewRequest(http.MethodGet, "/v1/books", nil), true},
		{"fetch all books endpoint with slash", httptest.NewRequest(http.MethodGet, "/v1/books/", nil), true},
		{"fetch single book endpoint", httptest.NewRequest(http.MethodGet, bookPath, nil), true},
		{"delete book endpoint", httptest.NewRequest(http.MethodDelete, bookPath, nil), true},
		{"search books endpoint", httptest.NewRequest(http.MethodGet, "/v1/search/books?title=x", nil), true},
		{"checkout book endpoint", httptest.NewRequest(http.MethodPost, bookPath+"/checkout", nil), true},
		{"return book endpoint", httptest.NewRequest(http.MethodPost, bookPath+"/return", nil), true},
		{"open loans endpoint", httptest.NewRequest(http.MethodGet, "/v1/loans/open", nil), true},
		{"loans history endpoint", httptest.NewRequest(http.MethodGet, "/v1/loans/history", nil), true},
		{"popularity endpoint", httptest.NewRequest(http.MethodGet, "/v1/stats/popularity", nil), true},
		{"return rate endpoint", httptest.NewRequest(http.MethodGet, "/v1/stats/return-rate", nil), true},
		{"reading time endpoint", httptest.NewRequest(http.MethodGet, "/v1/stats/reading-time", nil), true},
		{"report endpoint", httptest.NewRequest(http.MethodGet, "/v1/stats/report", nil), true},
		{"export endpoint", httptest.NewRequest(http.MethodPost, "/v1/stats/export", nil), true},
		{"fetch export endpoint", httptest.NewRequest(http.MethodGet, "/v1/stats/exports/file/weekly", nil), true},
		{"invalid api endpoint", httptest.NewRequest(http.MethodGet, "/v1", nil), false},
		{"invalid books endpoint", httptest.NewRequest(http.MethodGet, "/books", nil), false},
		{"unknown stats endpoint", httptest.NewRequest(http.MethodGet, "/v1/stats/unknown", nil), false},
	}

	api, ids := newTestAPIHandler(nil, NewMockClocker(), Exporters{})
	// unknown books answer 404, so book routes are reached through the 400 of an invalid id.
	ids.Valid = false
	router := httprouter.New()
	api.SetupLibraryRoutes(router, emptyMiddlewareMap())

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tc.request)
			if tc.implemented {
				assert.NotEqual(t, 404, w.Code)
			} else {
				assert.Equal(t, 404, w.Code)
			}
		})
	}
}

// TestSetupOpsRoutes ensures all expected operations endpoints are implemented.
func TestSetupOpsRoutes(t *testing.T) {
	testCases := []struct {
		name        string
		request     *http.Request
		implemented bool
	}{
		{"fetch configs endpoint", httptest.NewRequest(http.MethodGet, "/ops/configs", nil), true},
		{"fetch stats endpoint", httptest.NewRequest(http.MethodGet, "/ops/stats", nil), true},
		{"maintenance mode endpoint", httptest.NewRequest(http.MethodGet, "/ops/maintenance", nil), true},
		{"memory stats endpoint", httptest.NewRequest(http.MethodGet, "/ops/debug/vars", nil), true},
		{"invalid ops endpoint", httptest.NewRequest(http.MethodGet, "/ops", nil), false},
		{"unknown ops endpoint", httptest.NewRequest(http.MethodGet, "/ops/unknown", nil), false},
		{"disabled profiler endpoint", httptest.NewRequest(http.MethodGet, "/ops/debug/pprof/", nil), false},
	}

	api, _ := newTestAPIHandler(&Config{ProfilerEndpointsEnable: false}, NewMockClocker(), Exporters{})
	router := httprouter.New()
	api.SetupOpsRoutes(router, emptyMiddlewareMap())

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tc.request)
			if tc.implemented {
				assert.NotEqual(t, 404, w.Code)
			} else {
				assert.Equal(t, 404, w.Code)
			}
		})
	}
}

// TestSetupRoutes ensures ops endpoints are only exposed when enabled.
func TestSetupRoutes(t *testing.T) {
	testCases := []struct {
		name               string
		OpsEndpointsEnable bool
		request            *http.Request
		implemented        bool
	}{
		{"ops disable:fetch configs endpoint", false, httptest.NewRequest(http.MethodGet, "/ops/configs", nil), false},
		{"ops enable:fetch configs endpoint", true, httptest.NewRequest(http.MethodGet, "/ops/configs", nil), true},
		{"ops enable:disabled profiler endpoint", true, httptest.NewRequest(http.MethodGet, "/ops/debug/pprof/", nil), false},
		{"ops disable:report endpoint", false, httptest.NewRequest(http.MethodGet, "/v1/stats/report", nil), true},
		{"ops enable:report endpoint", true, httptest.NewRequest(http.MethodGet, "/v1/stats/report", nil), true},
		{"invalid ops endpoint", false, httptest.NewRequest(http.MethodGet, "/ops/", nil), false},
	}

	config := &Config{}
	api, _ := newTestAPIHandler(config, NewMockClocker(), Exporters{})
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config.OpsEndpointsEnable = tc.OpsEndpointsEnable
			router := api.SetupRoutes(httprouter.New(), emptyMiddlewareMap())
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tc.request)
			if tc.implemented {
				assert.NotEqual(t, 404, w.Code)
			} else {
				assert.Equal(t, 404, w.Code)
			}
		})
	}
}

// TestSetupRoutes_NotFound ensures exact status code and json response body when a user requests an inexistant route.
func TestSetupRoutes_NotFound(t *testing.T) {
	api := NewAPIHandler(zap.NewNop(), &Config{}, &Statistics{started: NewMockClocker().Now()}, NewMockClocker(), NewMockUIDHandler("abc", true), nil)
	router := api.SetupRoutes(httprouter.New(), emptyMiddlewareMap())
	r := httptest.NewRequest(http.MethodGet, "/x/books/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "application/json; charset=UTF-8", res.Header.Get("Content-Type"))
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	expected := `{"requestid":"", "status":404, "message":"endpoint does not exist", "data":{}}`
	assert.JSONEq(t, expected, string(data))
}
