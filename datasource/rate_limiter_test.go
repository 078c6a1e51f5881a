package datasource

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
)

// countingSource serves a fixed document and counts calls
type countingSource struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSource) FetchDocument(ctx context.Context, locationID string) (io.ReadCloser, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return io.NopCloser(strings.NewReader(tinyDocument)), nil
}

func (s *countingSource) Name() string {
	return "counting"
}

func TestRateLimitedSource_Forwards(t *testing.T) {
	inner := &countingSource{}
	limited := NewRateLimitedSource(inner, 100, 5)

	if limited.Name() != "counting [Rate Limited]" {
		t.Errorf("unexpected name %q", limited.Name())
	}

	for i := 0; i < 3; i++ {
		body, err := limited.FetchDocument(context.Background(), "Norway/Oslo/Oslo/Oslo")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		body.Close()
	}

	if inner.calls != 3 {
		t.Errorf("expected 3 forwarded calls, got %d", inner.calls)
	}
}

func TestRateLimitedSource_CanceledWait(t *testing.T) {
	inner := &countingSource{}
	limited := NewRateLimitedSource(inner, 0.001, 1)

	// Spend the only token
	body, err := limited.FetchDocument(context.Background(), "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := limited.FetchDocument(ctx, "a"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("expected only the first call to be forwarded, got %d", inner.calls)
	}
}
