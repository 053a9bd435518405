// Copyright (c) 2026 Gatekeep. All rights reserved.

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vuminh-lab/gatekeep/internal/platform/ctxutil"
	"github.com/vuminh-lab/gatekeep/internal/platform/middleware"
)

/*
TestRequestID verifies generation of a correlation ID and pass-through of a
client-provided one.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	// Generated when absent.
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get("X-Request-ID"))

	// Honored when supplied.
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "client-supplied")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "client-supplied", seen)
}

/*
TestRealIP verifies proxy header precedence for client IP extraction.
*/
func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", middleware.RealIP(request))

	request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", middleware.RealIP(request))

	request.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", middleware.RealIP(request))
}

type corsConfig struct {
	dev     bool
	origins []string
}

func (c corsConfig) IsDevelopment() bool      { return c.dev }
func (c corsConfig) AllowedOrigins() []string { return c.origins }

/*
TestCORS verifies the development/production split and pre-flight handling.
*/
func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})

	run := func(cfg corsConfig, method, origin string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(method, "/", nil)
		if origin != "" {
			request.Header.Set("Origin", origin)
		}
		recorder := httptest.NewRecorder()
		middleware.CORS(cfg)(next).ServeHTTP(recorder, request)
		return recorder
	}

	// Development: any origin is reflected.
	recorder := run(corsConfig{dev: true}, http.MethodGet, "https://anywhere.test")
	assert.Equal(t, "https://anywhere.test", recorder.Header().Get("Access-Control-Allow-Origin"))

	// Production: only the allow-list.
	cfg := corsConfig{origins: []string{"https://app.example.com"}}
	recorder = run(cfg, http.MethodGet, "https://app.example.com")
	assert.Equal(t, "https://app.example.com", recorder.Header().Get("Access-Control-Allow-Origin"))

	recorder = run(cfg, http.MethodGet, "https://evil.example.com")
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))

	// Pre-flight short-circuits with 204.
	recorder = run(corsConfig{dev: true}, http.MethodOptions, "https://anywhere.test")
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}
