package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
)

// NewRequestWithURLParams creates an HTTP request with chi URL parameters.
// This helper simplifies testing chi handlers that use chi.URLParam() to extract path parameters.
//
// Example:
//
//	req := testutil.NewRequestWithURLParams(
//	    http.MethodGet,
//	    "/api/enrichment/jobs/abc-123",
//	    map[string]string{"jobId": "abc-123"},
//	)
func NewRequestWithURLParams(method, path string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, nil)

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for key, value := range params {
			rctx.URLParams.Add(key, value)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req
}

// NewRequestWithBody creates an HTTP request carrying a JSON body.
func NewRequestWithBody(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewRequestWithBodyAndURLParams creates an HTTP request with both a JSON body
// and chi URL parameters, for handlers that read a path parameter and decode a
// payload.
func NewRequestWithBodyAndURLParams(method, path, body string, params map[string]string) *http.Request {
	req := NewRequestWithBody(method, path, body)

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for key, value := range params {
			rctx.URLParams.Add(key, value)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req
}
