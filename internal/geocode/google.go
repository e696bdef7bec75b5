package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tbourn/go-neighbornet-backend/internal/domain"
)

// GoogleGeocoder resolves addresses through the Google Maps Geocoding API.
type GoogleGeocoder struct {
	// APIKey authenticates against the Geocoding API.
	APIKey string
	// BaseURL is the endpoint; overridable for tests.
	BaseURL string
	// Client is the HTTP client; a timeout-bounded default is used when nil.
	Client *http.Client
}

// NewGoogleGeocoder constructs a geocoder with a 5s request timeout.
func NewGoogleGeocoder(apiKey, baseURL string) *GoogleGeocoder {
	return &GoogleGeocoder{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// googleResponse mirrors the subset of the Geocoding API payload we consume.
type googleResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves address to coordinates. ZERO_RESULTS maps to ErrNoResult;
// any other non-OK status or transport failure is returned as an error.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (domain.Location, string, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return domain.Location{}, "", err
	}

	client := g.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return domain.Location{}, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Location{}, "", fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	var body googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Location{}, "", err
	}
	switch {
	case body.Status == "ZERO_RESULTS", body.Status == "OK" && len(body.Results) == 0:
		return domain.Location{}, "", ErrNoResult
	case body.Status != "OK":
		return domain.Location{}, "", fmt.Errorf("geocode: provider status %s", body.Status)
	}

	top := body.Results[0]
	loc := domain.Location{Lat: top.Geometry.Location.Lat, Lng: top.Geometry.Location.Lng}
	return loc, top.FormattedAddress, nil
}
