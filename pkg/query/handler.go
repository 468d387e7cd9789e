package query

import (
	"context"
	"errors"
	"net/http"

	"github.com/Sternrassler/nasa-explorer-client/pkg/client"
	"github.com/Sternrassler/nasa-explorer-client/pkg/notify"
	"github.com/rs/zerolog"
)

// ErrorHandler is the shared failure path of queries and mutations.
type ErrorHandler struct {
	notifier notify.Notifier
	logger   zerolog.Logger
}

// NewErrorHandler creates a handler. A nil notifier discards notices.
func NewErrorHandler(notifier notify.Notifier, logger zerolog.Logger) *ErrorHandler {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &ErrorHandler{
		notifier: notifier,
		logger:   logger,
	}
}

// Unwrap returns the payload of a call. Only 200, 201 and 202 responses
// with a non-empty body count as success; everything else is passed to
// Handle and returned as an error, never as a value.
func (h *ErrorHandler) Unwrap(resp *client.Response, err error, opts ...Option) ([]byte, error) {
	if err != nil {
		return nil, h.Handle(err, opts...)
	}

	if resp != nil && acceptedStatus(resp.StatusCode) && resp.HasPayload() {
		return resp.Body, nil
	}

	return nil, h.Handle(client.NewUnexpectedError(resp), opts...)
}

// Handle classifies err, notifies the user unless Silent is given, and
// returns the classified error. It never swallows the failure.
func (h *ErrorHandler) Handle(err error, opts ...Option) error {
	if err == nil {
		return nil
	}

	o := newOptions(opts)
	apiErr := client.Classify(err)

	h.logger.Debug().
		Str("endpoint", apiErr.Endpoint).
		Str("error_class", string(apiErr.Class)).
		Bool("silent", o.silent).
		Msg(apiErr.Message)

	if !o.silent {
		h.notify(apiErr)
	}

	return apiErr
}

// notify sends the user-facing notice for err. Cancellations are not
// reported; the caller that cancelled already knows.
func (h *ErrorHandler) notify(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	h.notifier.Notify(notify.Error(client.Classify(err).Message))
}

func acceptedStatus(code int) bool {
	switch code {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return true
	default:
		return false
	}
}
