package datasource

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound indicates the feed has no document for the location
	ErrNotFound = errors.New("forecast document not found")

	// ErrEmptyResponse indicates a response without a usable body length
	ErrEmptyResponse = errors.New("empty forecast response")

	// ErrUnexpectedStatus indicates a non-2xx response
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

// DocumentSource defines the interface for anything that serves forecast documents
type DocumentSource interface {
	// FetchDocument opens the forecast document for a location identifier.
	// The caller must close the returned stream.
	FetchDocument(ctx context.Context, locationID string) (io.ReadCloser, error)

	// Name returns the source's name
	Name() string
}
