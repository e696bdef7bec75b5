package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-neighbornet-backend/internal/domain"
	"github.com/tbourn/go-neighbornet-backend/internal/repo"
)

func strp(s string) *string { return &s }

func TestProfileUpdate_Validation(t *testing.T) {
	db := newTestDB(t)
	s := NewProfileService(db)
	ctx := context.Background()

	if err := s.Update(ctx, "", UpdateProfileInput{}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("blank user: %v", err)
	}
	if err := s.Update(ctx, "u1", UpdateProfileInput{Role: strp("admin")}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("bad role: %v", err)
	}
	err := s.Update(ctx, "u1", UpdateProfileInput{Location: &domain.Location{Lat: 200, Lng: 0}})
	if !errors.Is(err, ErrInvalidCoordinates) {
		t.Fatalf("bad location: %v", err)
	}
}

func TestProfileUpdate_PersistsFields(t *testing.T) {
	db := newTestDB(t)
	s := NewProfileService(db)
	ctx := context.Background()

	err := s.Update(ctx, "u1", UpdateProfileInput{
		Name:     strp("  Pat "),
		Phone:    strp("+15551234567"),
		Role:     strp("Volunteer"),
		Location: &domain.Location{Lat: 34.05, Lng: -118.25},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	u, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u.Name != "Pat" || u.Phone != "+15551234567" || u.Role != domain.RoleVolunteer {
		t.Fatalf("fields not saved: %+v", u)
	}
	if u.Location == nil || u.Location.Lat != 34.05 {
		t.Fatalf("location not saved: %+v", u.Location)
	}

	// Partial update leaves other fields alone.
	if err := s.Update(ctx, "u1", UpdateProfileInput{Phone: strp("+15550000000")}); err != nil {
		t.Fatalf("partial update: %v", err)
	}
	u, err = s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u.Name != "Pat" || u.Phone != "+15550000000" {
		t.Fatalf("partial update clobbered fields: %+v", u)
	}
}

func TestProfileUpdate_EmptyEnsuresRow(t *testing.T) {
	db := newTestDB(t)
	s := NewProfileService(db)
	ctx := context.Background()

	if err := s.Update(ctx, "new", UpdateProfileInput{}); err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if _, err := repo.GetUser(ctx, db, "new"); err != nil {
		t.Fatalf("row not ensured: %v", err)
	}
}

func TestImpactGet(t *testing.T) {
	db := newTestDB(t)
	impact := NewImpactService(db)
	rs := newSvc(db)
	ctx := context.Background()

	m, err := impact.Get(ctx)
	if err != nil || m.TotalRequestsCompleted != 0 {
		t.Fatalf("pristine metrics: %+v err=%v", m, err)
	}

	r, err := rs.Create(ctx, "asker", validInput())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := rs.Complete(ctx, "asker", r.ID, 25); err != nil {
		t.Fatalf("complete: %v", err)
	}

	m, err = impact.Get(ctx)
	if err != nil || m.TotalRequestsCompleted != 1 || m.TotalVolunteerMinutes != 25 {
		t.Fatalf("metrics after completion: %+v err=%v", m, err)
	}
}
