package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGoogleGeocoder_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("address"); got != "123 Main St" {
			t.Errorf("address param = %q", got)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key param = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "123 Main St, Los Angeles, CA",
				"geometry": {"location": {"lat": 34.05, "lng": -118.25}}
			}]
		}`))
	}))
	defer srv.Close()

	g := NewGoogleGeocoder("test-key", srv.URL)
	loc, formatted, err := g.Geocode(context.Background(), "123 Main St")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if loc.Lat != 34.05 || loc.Lng != -118.25 {
		t.Fatalf("unexpected location: %+v", loc)
	}
	if formatted != "123 Main St, Los Angeles, CA" {
		t.Fatalf("unexpected formatted address: %q", formatted)
	}
}

func TestGoogleGeocoder_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer srv.Close()

	g := NewGoogleGeocoder("k", srv.URL)
	if _, _, err := g.Geocode(context.Background(), "nowhere"); !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestGoogleGeocoder_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "REQUEST_DENIED"}`))
	}))
	defer srv.Close()

	g := NewGoogleGeocoder("k", srv.URL)
	if _, _, err := g.Geocode(context.Background(), "x"); err == nil {
		t.Fatal("expected error for REQUEST_DENIED")
	}
}

func TestGoogleGeocoder_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGoogleGeocoder("k", srv.URL)
	if _, _, err := g.Geocode(context.Background(), "x"); err == nil {
		t.Fatal("expected error for 500")
	}
}
