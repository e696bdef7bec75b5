// Package services – RequestService
//
// This file implements RequestService, the application-level component that
// owns the help-request lifecycle: creation (with optional geocoding),
// claiming, completion with impact accrual, the nearby search, and the
// requester's own listing. State transitions ride on conditional UPDATEs in
// the repo layer so concurrent callers cannot double-claim or double-count.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// request/user identifiers.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-neighbornet-backend/internal/domain"
	"github.com/tbourn/go-neighbornet-backend/internal/geo"
	"github.com/tbourn/go-neighbornet-backend/internal/geocode"
	"github.com/tbourn/go-neighbornet-backend/internal/metrics"
	"github.com/tbourn/go-neighbornet-backend/internal/notify"
	"github.com/tbourn/go-neighbornet-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// minutesPerHour converts reported actual minutes into accrued hours.
const minutesPerHour = 60.0

// RequestService coordinates the help-request lifecycle.
type RequestService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// Geocoder resolves street addresses; optional. When nil, requests must
	// carry coordinates (directly or via the caller's saved profile location).
	Geocoder geocode.Geocoder

	// Dispatcher receives post-commit lifecycle events; optional.
	Dispatcher *notify.Dispatcher

	// DefaultEstimateMin is applied when a create omits the estimate.
	DefaultEstimateMin int

	// NearbyDefaultKm / NearbyMaxKm bound the nearby search radius.
	NearbyDefaultKm float64
	NearbyMaxKm     float64
}

// NewRequestService constructs a RequestService with the stock radius and
// estimate defaults.
func NewRequestService(db *gorm.DB, g geocode.Geocoder, d *notify.Dispatcher) *RequestService {
	return &RequestService{
		DB:                 db,
		Geocoder:           g,
		Dispatcher:         d,
		DefaultEstimateMin: 60,
		NearbyDefaultKm:    5,
		NearbyMaxKm:        50,
	}
}

// CreateRequestInput carries the caller-supplied fields for a new request.
type CreateRequestInput struct {
	Type        string
	Title       string
	Description string
	Urgency     domain.Urgency

	// Location, when set, wins over UseMyLocation and Address.
	Location *domain.Location
	// UseMyLocation pulls coordinates from the caller's saved profile.
	UseMyLocation bool
	// Address is geocoded when no coordinates are available.
	Address string

	EstimatedMinutes int
}

// Create validates the input, resolves a location, and persists a new open
// request. On success the created-request fan-out is dispatched out-of-band.
func (s *RequestService) Create(ctx context.Context, userID string, in CreateRequestInput) (*domain.HelpRequest, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Type = strings.TrimSpace(in.Type)
	if in.Title == "" || in.Type == "" {
		return nil, ErrMissingFields
	}
	if in.Urgency == "" {
		in.Urgency = domain.UrgencyNormal
	}
	if err := in.Urgency.Validate(); err != nil {
		return nil, err
	}

	loc, address, err := s.resolveLocation(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	est := in.EstimatedMinutes
	if est <= 0 {
		est = s.DefaultEstimateMin
		if est <= 0 {
			est = 60
		}
	}

	created, err := repo.CreateRequest(ctx, s.DB, &domain.HelpRequest{
		RequesterID:      userID,
		Type:             in.Type,
		Title:            in.Title,
		Description:      strings.TrimSpace(in.Description),
		Urgency:          in.Urgency,
		Address:          address,
		Location:         loc,
		EstimatedMinutes: est,
	})
	if err != nil {
		return nil, err
	}

	metrics.RequestsCreated.Inc()
	if s.Dispatcher != nil {
		go s.Dispatcher.RequestCreated(created)
	}
	return created, nil
}

// resolveLocation picks coordinates in priority order: explicit location,
// the caller's saved profile location, then geocoded address.
func (s *RequestService) resolveLocation(ctx context.Context, userID string, in CreateRequestInput) (domain.Location, string, error) {
	address := strings.TrimSpace(in.Address)

	if in.Location != nil {
		if !geo.ValidCoordinates(in.Location.Lat, in.Location.Lng) {
			return domain.Location{}, "", ErrInvalidCoordinates
		}
		return *in.Location, address, nil
	}

	if in.UseMyLocation {
		u, err := repo.GetUser(ctx, s.DB, userID)
		if err == nil && u.Location != nil {
			return *u.Location, address, nil
		}
		// No saved location: fall through to the address path.
	}

	if address != "" && s.Geocoder != nil {
		loc, formatted, err := s.Geocoder.Geocode(ctx, address)
		if err != nil {
			return domain.Location{}, "", fmt.Errorf("%w: %v", ErrUnresolvedAddress, err)
		}
		if formatted != "" {
			address = formatted
		}
		return loc, address, nil
	}

	return domain.Location{}, "", ErrMissingLocation
}

// Claim atomically transitions an open request to claimed by userID. Exactly
// one concurrent claimer wins; losers get ErrAlreadyClaimed (or
// ErrAlreadyCompleted when the request already finished). The volunteer's
// profile is lazily created inside the same transaction.
func (s *RequestService) Claim(ctx context.Context, userID, requestID string) (*domain.HelpRequest, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "Claim",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}

	var claimed *domain.HelpRequest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := repo.ClaimRequest(ctx, tx, requestID, userID, time.Now().UTC())
		if err != nil {
			return err
		}
		if n == 0 {
			r, err := repo.GetRequest(ctx, tx, requestID)
			if errors.Is(err, repo.ErrNotFound) {
				return ErrRequestNotFound
			}
			if err != nil {
				return err
			}
			if r.Status == domain.StatusCompleted {
				return ErrAlreadyCompleted
			}
			return ErrAlreadyClaimed
		}
		if err := repo.EnsureProfile(ctx, tx, userID); err != nil {
			return err
		}
		claimed, err = repo.GetRequest(ctx, tx, requestID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RequestsClaimed.Inc()
	if s.Dispatcher != nil {
		go s.Dispatcher.RequestClaimed(claimed)
	}
	return claimed, nil
}

// Complete finishes a request, recording actual minutes and accruing impact.
// Only the assigned volunteer or the requester may complete; completing an
// unclaimed request is allowed (no volunteer hours accrue). The status flip,
// the volunteer's hour accrual, and the global metrics increment commit in
// one transaction, so a request is counted exactly once.
func (s *RequestService) Complete(ctx context.Context, userID, requestID string, actualMinutes int) (*domain.HelpRequest, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "Complete",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
			attribute.String("user.id", userID),
			attribute.Int("actual_minutes", actualMinutes),
		),
	)
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}
	if actualMinutes <= 0 {
		return nil, ErrInvalidMinutes
	}

	var completed *domain.HelpRequest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := repo.GetRequest(ctx, tx, requestID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrRequestNotFound
		}
		if err != nil {
			return err
		}
		if r.Status == domain.StatusCompleted {
			return ErrAlreadyCompleted
		}
		allowed := r.RequesterID == userID ||
			(r.VolunteerID != nil && *r.VolunteerID == userID)
		if !allowed {
			return ErrPermissionDenied
		}

		n, err := repo.CompleteRequest(ctx, tx, requestID, actualMinutes, time.Now().UTC())
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrAlreadyCompleted
		}
		if r.VolunteerID != nil {
			hours := float64(actualMinutes) / minutesPerHour
			if err := repo.AddVolunteerHours(ctx, tx, *r.VolunteerID, hours); err != nil {
				return err
			}
		}
		if err := repo.AddCompletion(ctx, tx, actualMinutes); err != nil {
			return err
		}
		completed, err = repo.GetRequest(ctx, tx, requestID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RequestsCompleted.Inc()
	metrics.VolunteerMinutes.Add(float64(actualMinutes))
	return completed, nil
}

// FindNearbyOpen returns open requests whose coordinates fall inside the
// bounding box around (lat, lng). Latitude is range-scanned in SQL; longitude
// is filtered here. No ordering is promised.
func (s *RequestService) FindNearbyOpen(ctx context.Context, lat, lng, radiusKm float64) ([]domain.HelpRequest, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "FindNearbyOpen",
		trace.WithAttributes(attribute.Float64("radius_km", radiusKm)),
	)
	defer span.End()

	if !geo.ValidCoordinates(lat, lng) {
		return nil, ErrInvalidCoordinates
	}
	if radiusKm <= 0 {
		radiusKm = s.NearbyDefaultKm
	}
	if s.NearbyMaxKm > 0 && radiusKm > s.NearbyMaxKm {
		radiusKm = s.NearbyMaxKm
	}

	box := geo.NewBoundingBox(lat, lng, radiusKm)
	rows, err := repo.ListOpenInLatRange(ctx, s.DB, box.MinLat, box.MaxLat)
	if err != nil {
		return nil, err
	}
	out := make([]domain.HelpRequest, 0, len(rows))
	for _, r := range rows {
		if box.ContainsLng(r.Location.Lng) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListMine returns a page of the caller's own requests, newest first, with
// the total count for pagination.
func (s *RequestService) ListMine(ctx context.Context, userID string, page, pageSize int) ([]domain.HelpRequest, int64, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "ListMine",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, 0, ErrUnauthenticated
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountRequestsByRequester(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.HelpRequest{}, 0, nil
	}

	items, err := repo.ListRequestsByRequesterPage(ctx, s.DB, userID, offset, pageSize)
	return items, total, err
}
