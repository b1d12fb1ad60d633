package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mymedicos/discuss-backend/errs"
	"github.com/rs/zerolog"
)

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

// successEnvelope and errorEnvelope are the two shapes every response takes.
type successEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

type errorEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
	Field      string `json:"field,omitempty"`
	Details    string `json:"details,omitempty"`
}

func (r Responder) WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	// Marshal the data first to check size and handle errors
	jsonData, err := json.Marshal(body)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	const maxResponseSize = 10 * 1024 * 1024 // 10MB
	if len(jsonData) > maxResponseSize {
		r.logger.Error().
			Int("responseSize", len(jsonData)).
			Int("maxSize", maxResponseSize).
			Msg("response too large")
		r.WriteError(w, errs.NewApiErr(http.StatusInternalServerError, "response too large"))
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteSuccess wraps data in the success envelope. success is derived from the status.
func (r Responder) WriteSuccess(w http.ResponseWriter, status int, data any, message string) {
	r.WriteJSON(w, status, successEnvelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// Unexpected errors never leak their text to the client
	if !errors.As(err, &apiErr) {
		apiErr = errs.NewInternalErrorWithCause("an unexpected error occurred", err)
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Int("status", apiErr.StatusCode).Msg(apiErr.GetFullError())
	}

	response := errorEnvelope{
		StatusCode: apiErr.StatusCode,
		Message:    apiErr.Message(),
		Field:      apiErr.Field,
	}
	if apiErr.StatusCode < http.StatusInternalServerError {
		response.Details = apiErr.Details
	}

	r.WriteJSON(w, apiErr.StatusCode, response)
}
