// Package services – ProfileService
//
// This file implements ProfileService, which owns caller-editable profile
// data: display name, phone number, role, and saved location. The volunteer
// hour accumulator is deliberately out of reach here; it only moves inside
// the completing transaction.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-neighbornet-backend/internal/domain"
	"github.com/tbourn/go-neighbornet-backend/internal/geo"
	"github.com/tbourn/go-neighbornet-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ProfileService provides profile read/update operations.
type ProfileService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewProfileService constructs a ProfileService.
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// UpdateProfileInput carries the optional fields of a profile update; nil
// pointers leave the stored value untouched.
type UpdateProfileInput struct {
	Name     *string
	Phone    *string
	Role     *string
	Location *domain.Location
}

// Update validates and persists the supplied fields, lazily creating the
// profile row on first use. An update with no fields is a no-op that still
// ensures the row exists.
func (s *ProfileService) Update(ctx context.Context, userID string, in UpdateProfileInput) error {
	tr := otel.Tracer("services/ProfileService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return ErrUnauthenticated
	}

	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		updates["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Role != nil {
		role := strings.TrimSpace(strings.ToLower(*in.Role))
		if role != domain.RoleVolunteer && role != domain.RoleNeighbor {
			return ErrInvalidRole
		}
		updates["role"] = role
	}
	if in.Location != nil {
		if !geo.ValidCoordinates(in.Location.Lat, in.Location.Lng) {
			return ErrInvalidCoordinates
		}
		updates["lat"] = in.Location.Lat
		updates["lng"] = in.Location.Lng
	}

	return repo.SaveProfile(ctx, s.DB, userID, updates)
}

// Get returns the caller's profile; repo.ErrNotFound when the row does not
// exist yet.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}
	return repo.GetUser(ctx, s.DB, userID)
}
