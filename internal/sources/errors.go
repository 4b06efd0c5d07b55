package sources

import (
	"context"
	"errors"
	"fmt"
	"net"

	"storefront-catalog-api/internal/models"
)

type ErrorKind string

const (
	KindNetwork  ErrorKind = "network"
	KindGraphQL  ErrorKind = "graphql"
	KindTimeout  ErrorKind = "timeout"
	KindDecode   ErrorKind = "decode"
	KindCanceled ErrorKind = "canceled"
)

// FetchError is the one error shape either adapter returns. Retry re-runs
// the identical request against the same source.
type FetchError struct {
	Kind    ErrorKind
	Message string
	Request models.FetchRequest
	Err     error

	source Source
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s fetch failed (%s): %s", e.Request.Mode, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s fetch failed (%s): %s: %v", e.Request.Mode, e.Kind, e.Message, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable is false only for canceled requests, which nobody waits for.
func (e *FetchError) Retryable() bool {
	return e.Kind != KindCanceled && e.source != nil
}

// Retry re-issues the failed request with identical parameters.
func (e *FetchError) Retry(ctx context.Context) (*models.ProductPage, error) {
	if e.source == nil {
		return nil, e
	}
	return e.source.Fetch(ctx, e.Request)
}

var messages = map[ErrorKind]string{
	KindNetwork:  "We couldn't reach the product catalog. Please try again.",
	KindGraphQL:  "The product catalog returned an error. Please try again.",
	KindTimeout:  "The product catalog took too long to respond. Please try again.",
	KindDecode:   "The product catalog sent an unexpected response. Please try again.",
	KindCanceled: "The request was canceled.",
}

// newFetchError classifies err and attaches the retry source.
func newFetchError(src Source, req models.FetchRequest, err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		if fe.source == nil {
			fe.source = src
		}
		fe.Request = req
		return fe
	}

	kind := classify(err)
	return &FetchError{
		Kind:    kind,
		Message: messages[kind],
		Request: req,
		Err:     err,
		source:  src,
	}
}

func classify(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}

// AsFetchError returns the FetchError in err's chain, if any.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	ok := errors.As(err, &fe)
	return fe, ok
}
