package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("Ticker parameter is required", "x"), http.StatusBadRequest},
		{"config", MissingKey("POLYGON_API_KEY"), http.StatusInternalServerError},
		{"upstream forwarded", &UpstreamError{Provider: "Massive.com", Status: 429, Body: "slow down"}, 429},
		{"upstream without status", &UpstreamError{Provider: "Massive.com"}, http.StatusBadGateway},
		{"malformed", Malformed("Invalid prediction format from model", "{}"), http.StatusInternalServerError},
		{"wrapped validation", fmt.Errorf("massive fetch: %w", Validation("bad", "x")), http.StatusBadRequest},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestDescribe(t *testing.T) {
	msg, details := Describe(MissingKey("HUGGING_FACE_TOKEN"), "fallback")
	assert.Equal(t, "HUGGING_FACE_TOKEN is not set", msg)
	assert.Equal(t, "Please set HUGGING_FACE_TOKEN in your .env file", details)

	msg, details = Describe(&UpstreamError{Provider: "Hugging Face Inference", Status: 503, Body: "loading"}, "fallback")
	assert.Equal(t, "Hugging Face Inference API error: 503", msg)
	assert.Equal(t, "loading", details)

	msg, details = Describe(errors.New("dial tcp: refused"), "Failed to fetch news")
	assert.Equal(t, "Failed to fetch news", msg)
	assert.Equal(t, "dial tcp: refused", details)
}
