package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is where the public XML feed serves place forecasts
const DefaultBaseURL = "https://www.yr.no/place"

// DefaultUserAgent identifies this client to the feed
const DefaultUserAgent = "weather-forecast/1.0"

// YrSource fetches place forecast documents over HTTP
type YrSource struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewYrSource creates a source for the feed at baseURL. Empty arguments select the defaults.
func NewYrSource(baseURL, userAgent string, timeout time.Duration) *YrSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &YrSource{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		// The default redirect policy follows up to 10 redirects
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewYrSourceWithClient creates a source using a caller supplied HTTP client
func NewYrSourceWithClient(baseURL, userAgent string, httpClient *http.Client) *YrSource {
	s := NewYrSource(baseURL, userAgent, 0)
	s.httpClient = httpClient
	return s
}

// Name returns the source name
func (s *YrSource) Name() string {
	return "yr"
}

// DocumentURL builds the forecast document URL for a location identifier such as
// "Norway/Oslo/Oslo/Oslo"
func (s *YrSource) DocumentURL(locationID string) string {
	segments := strings.Split(strings.Trim(locationID, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return fmt.Sprintf("%s/%s/forecast.xml", s.baseURL, strings.Join(segments, "/"))
}

// FetchDocument requests the forecast document for a location
func (s *YrSource) FetchDocument(ctx context.Context, locationID string) (io.ReadCloser, error) {
	if strings.Trim(locationID, "/ ") == "" {
		return nil, fmt.Errorf("%w: empty location identifier", ErrNotFound)
	}

	endpoint := s.DocumentURL(locationID)

	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/xml, text/xml")

	// Execute request
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	// Check for error status code
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, locationID)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	// A missing or zero length is not retried, the caller sees a failed fetch.
	// A body the transport decompressed had its wire length dropped and still counts.
	if resp.ContentLength <= 0 && !resp.Uncompressed {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: content length %d", ErrEmptyResponse, resp.ContentLength)
	}

	log.Debug().
		Str("source", s.Name()).
		Str("url", resp.Request.URL.String()).
		Int64("bytes", resp.ContentLength).
		Bool("compressed", resp.Uncompressed).
		Msg("opened forecast document")

	return resp.Body, nil
}

// Ensure YrSource implements DocumentSource
var _ DocumentSource = (*YrSource)(nil)
