package collector

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"

	"weather-forecast/models"
)

// stubFetcher returns one forecast per call or a fixed error for some locations
type stubFetcher struct {
	mu     sync.Mutex
	calls  map[string]int
	failOn string
}

func (f *stubFetcher) GetForecast(ctx context.Context, locationID string) ([]models.Forecast, error) {
	f.mu.Lock()
	f.calls[locationID]++
	f.mu.Unlock()

	if locationID == f.failOn {
		return nil, errors.New("feed unavailable")
	}
	return []models.Forecast{{Place: locationID}}, nil
}

func (f *stubFetcher) count(locationID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[locationID]
}

func receive(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for result")
	}
	return Result{}
}

func TestRefresher_InitialRefresh(t *testing.T) {
	fetcher := &stubFetcher{calls: map[string]int{}, failOn: "Atlantis"}
	clk := fakeclock.NewFakeClock(time.Date(2017, 3, 1, 12, 0, 0, 0, time.UTC))
	refresher := NewRefresher(fetcher, []string{"Oslo", "Bergen", "Atlantis"}, time.Minute, clk)

	stop := refresher.Start(context.Background())

	var got []string
	for i := 0; i < 2; i++ {
		got = append(got, receive(t, refresher.OutputChannel()).LocationID)
	}
	sort.Strings(got)
	if got[0] != "Bergen" || got[1] != "Oslo" {
		t.Errorf("unexpected refreshed locations %v", got)
	}

	select {
	case err := <-refresher.ErrorChannel():
		if err == nil {
			t.Error("expected an error for the failing location")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error")
	}

	stop()

	if _, open := <-refresher.OutputChannel(); open {
		t.Error("expected output channel closed after stop")
	}
}

func TestRefresher_RefreshesOnInterval(t *testing.T) {
	fetcher := &stubFetcher{calls: map[string]int{}}
	clk := fakeclock.NewFakeClock(time.Date(2017, 3, 1, 12, 0, 0, 0, time.UTC))
	refresher := NewRefresher(fetcher, []string{"Oslo"}, time.Minute, clk)

	stop := refresher.Start(context.Background())
	defer stop()

	receive(t, refresher.OutputChannel())

	clk.WaitForWatcherAndIncrement(time.Minute)
	receive(t, refresher.OutputChannel())

	if n := fetcher.count("Oslo"); n != 2 {
		t.Errorf("expected 2 fetches, got %d", n)
	}
}
