// Package apperr defines the error kinds surfaced by the news and model
// proxies and how each one maps onto an HTTP response.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports bad or missing caller input.
type ValidationError struct {
	Message string
	Details string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Details)
}

// ConfigError reports a missing credential or setting. It is never retried.
type ConfigError struct {
	Message string
	Details string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Details)
}

// UpstreamError is a non-success response from a provider. Status and Body
// are forwarded to the caller verbatim.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API error: %d", e.Provider, e.Status)
}

// MalformedResponseError is a success response whose payload could not be
// used.
type MalformedResponseError struct {
	Message string
	Details string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Details)
}

func Validation(message, details string) error {
	return &ValidationError{Message: message, Details: details}
}

func Config(message, details string) error {
	return &ConfigError{Message: message, Details: details}
}

func Malformed(message, details string) error {
	return &MalformedResponseError{Message: message, Details: details}
}

// MissingKey builds the ConfigError returned when an env credential is unset.
func MissingKey(envName string) error {
	return &ConfigError{
		Message: envName + " is not set",
		Details: "Please set " + envName + " in your .env file",
	}
}

// HTTPStatus returns the response status for err.
func HTTPStatus(err error) int {
	var validation *ValidationError
	var upstream *UpstreamError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &upstream):
		if upstream.Status >= 400 && upstream.Status <= 599 {
			return upstream.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Describe splits err into the {error, details} pair of a response body.
// fallback is used as the headline for errors outside the taxonomy.
func Describe(err error, fallback string) (string, string) {
	var validation *ValidationError
	var config *ConfigError
	var upstream *UpstreamError
	var malformed *MalformedResponseError
	switch {
	case errors.As(err, &validation):
		return validation.Message, validation.Details
	case errors.As(err, &config):
		return config.Message, config.Details
	case errors.As(err, &upstream):
		return upstream.Error(), upstream.Body
	case errors.As(err, &malformed):
		return malformed.Message, malformed.Details
	default:
		return fallback, err.Error()
	}
}
