// Package geocode resolves street addresses to coordinates.
//
// The service layer depends only on the Geocoder interface; the Google Maps
// adapter in google.go is the production implementation. Requests that already
// carry coordinates never hit this package.
package geocode

import (
	"context"
	"errors"

	"github.com/tbourn/go-neighbornet-backend/internal/domain"
)

// ErrNoResult is returned when the upstream provider resolved the call but
// found no location for the address.
var ErrNoResult = errors.New("geocode: no result for address")

// Geocoder converts a free-form address into coordinates plus the provider's
// canonical formatted address.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Location, string, error)
}
