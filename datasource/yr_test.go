package datasource

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

const tinyDocument = `<weatherdata><location><name>Oslo</name></location></weatherdata>`

func TestYrSource_FetchDocument(t *testing.T) {
	var gotPath, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/xml")
		io.WriteString(w, tinyDocument)
	}))
	defer server.Close()

	source := NewYrSource(server.URL+"/place/", "test-agent", 0)
	body, err := source.FetchDocument(context.Background(), "Norway/Troms/Tromsø/Tromsø")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(data) != tinyDocument {
		t.Errorf("unexpected body %q", data)
	}

	wantPath := "/place/Norway/Troms/Troms%C3%B8/Troms%C3%B8/forecast.xml"
	if gotPath != wantPath {
		t.Errorf("path = %q, want %q", gotPath, wantPath)
	}
	if gotAgent != "test-agent" {
		t.Errorf("User-Agent = %q, want %q", gotAgent, "test-agent")
	}
}

func TestYrSource_FetchDocument_Gzip(t *testing.T) {
	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	io.WriteString(zw, tinyDocument)
	zw.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			io.WriteString(w, tinyDocument)
			return
		}
		w.Header().Set("Content-Type", "text/xml")
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Length", strconv.Itoa(compressed.Len()))
		w.Write(compressed.Bytes())
	}))
	defer server.Close()

	source := NewYrSource(server.URL+"/place", "test-agent", 0)
	body, err := source.FetchDocument(context.Background(), "Norway/Oslo/Oslo/Oslo")
	if err != nil {
		t.Fatalf("compressed response rejected: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(data) != tinyDocument {
		t.Errorf("unexpected body %q", data)
	}
}

func TestYrSource_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/place/Norway/Oslo/Oslo/Oslo/forecast.xml", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/moved/forecast.xml", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/moved/forecast.xml", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, tinyDocument)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	source := NewYrSource(server.URL+"/place", "", 0)
	body, err := source.FetchDocument(context.Background(), "Norway/Oslo/Oslo/Oslo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body.Close()
}

func TestYrSource_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				io.WriteString(w, "boom")
			},
			wantErr: ErrUnexpectedStatus,
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			wantErr: ErrEmptyResponse,
		},
		{
			name: "unknown length",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, "<weatherdata>")
				w.(http.Flusher).Flush()
				io.WriteString(w, "</weatherdata>")
			},
			wantErr: ErrEmptyResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			source := NewYrSource(server.URL, "", 0)
			body, err := source.FetchDocument(context.Background(), "Norway/Oslo/Oslo/Oslo")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if body != nil {
				t.Error("expected no body on failure")
			}
		})
	}
}

func TestYrSource_EmptyLocation(t *testing.T) {
	source := NewYrSource("http://127.0.0.1:1", "", 0)
	if _, err := source.FetchDocument(context.Background(), " / "); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestYrSource_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	source := NewYrSource(url, "", 0)
	if _, err := source.FetchDocument(context.Background(), "Norway/Oslo/Oslo/Oslo"); err == nil {
		t.Fatal("expected error for closed server")
	}
}

func TestYrSource_DocumentURL(t *testing.T) {
	source := NewYrSource("", "", 0)

	tests := []struct {
		id   string
		want string
	}{
		{id: "Norway/Oslo/Oslo/Oslo", want: "https://www.yr.no/place/Norway/Oslo/Oslo/Oslo/forecast.xml"},
		{id: "/United_Kingdom/England/London/", want: "https://www.yr.no/place/United_Kingdom/England/London/forecast.xml"},
		{id: "France/Île-de-France/Paris", want: "https://www.yr.no/place/France/%C3%8Ele-de-France/Paris/forecast.xml"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := source.DocumentURL(tt.id); got != tt.want {
				t.Errorf("DocumentURL(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}
