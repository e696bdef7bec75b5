package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-neighbornet-backend/internal/domain"
)

func TestCreateRequest_AssignsIDAndDefaults(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	r, err := CreateRequest(ctx, db, &domain.HelpRequest{
		RequesterID: "u1",
		Type:        "groceries",
		Title:       "Need milk",
		Urgency:     domain.UrgencyNormal,
		Location:    domain.Location{Lat: 34.05, Lng: -118.25},
		// Even if a caller smuggles state in, CreateRequest resets it.
		Status:           domain.StatusClaimed,
		EstimatedMinutes: 30,
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if r.ID == "" {
		t.Fatal("expected generated ID")
	}
	if r.Status != domain.StatusOpen || r.VolunteerID != nil {
		t.Fatalf("new request must be open and unassigned: %+v", r)
	}
	if r.CreatedAt.IsZero() || time.Since(r.CreatedAt) > time.Minute {
		t.Fatalf("unexpected CreatedAt: %v", r.CreatedAt)
	}

	got, err := GetRequest(ctx, db, r.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if got.Title != "Need milk" || got.Location.Lat != 34.05 || got.EstimatedMinutes != 30 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestGetRequest_NotFound(t *testing.T) {
	db := newTestDB(t)
	if _, err := GetRequest(context.Background(), db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClaimRequest_ConditionalUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	r, err := CreateRequest(ctx, db, &domain.HelpRequest{
		RequesterID: "u1", Type: "errand", Title: "t",
		Urgency: domain.UrgencyNormal, Location: domain.Location{Lat: 1, Lng: 2},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	n, err := ClaimRequest(ctx, db, r.ID, "vol1", now)
	if err != nil || n != 1 {
		t.Fatalf("first claim: n=%d err=%v", n, err)
	}

	// Second claim sees status != open and affects no rows.
	n, err = ClaimRequest(ctx, db, r.ID, "vol2", now)
	if err != nil || n != 0 {
		t.Fatalf("second claim: n=%d err=%v", n, err)
	}

	got, err := GetRequest(ctx, db, r.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if got.Status != domain.StatusClaimed || got.VolunteerID == nil || *got.VolunteerID != "vol1" {
		t.Fatalf("claim state unexpected: %+v", got)
	}
	if got.ClaimedAt == nil {
		t.Fatal("claimed_at must be set")
	}

	// Missing request also affects no rows.
	n, err = ClaimRequest(ctx, db, "missing", "vol1", now)
	if err != nil || n != 0 {
		t.Fatalf("missing claim: n=%d err=%v", n, err)
	}
}

func TestCompleteRequest_GuardsAlreadyCompleted(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	r, err := CreateRequest(ctx, db, &domain.HelpRequest{
		RequesterID: "u1", Type: "errand", Title: "t",
		Urgency: domain.UrgencyNormal, Location: domain.Location{Lat: 1, Lng: 2},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	n, err := CompleteRequest(ctx, db, r.ID, 90, now)
	if err != nil || n != 1 {
		t.Fatalf("complete: n=%d err=%v", n, err)
	}
	n, err = CompleteRequest(ctx, db, r.ID, 10, now)
	if err != nil || n != 0 {
		t.Fatalf("re-complete should affect no rows: n=%d err=%v", n, err)
	}

	got, _ := GetRequest(ctx, db, r.ID)
	if got.Status != domain.StatusCompleted || got.ActualMinutes == nil || *got.ActualMinutes != 90 {
		t.Fatalf("completion state unexpected: %+v", got)
	}
	if got.CompletedAt == nil {
		t.Fatal("completed_at must be set")
	}
}

func TestListOpenInLatRange(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mk := func(lat float64, status domain.RequestStatus) {
		r, err := CreateRequest(ctx, db, &domain.HelpRequest{
			RequesterID: "u1", Type: "errand", Title: "t",
			Urgency: domain.UrgencyNormal, Location: domain.Location{Lat: lat, Lng: 0},
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		if status == domain.StatusClaimed {
			if _, err := ClaimRequest(ctx, db, r.ID, "v", time.Now().UTC()); err != nil {
				t.Fatalf("claim seed: %v", err)
			}
		}
	}
	mk(10.0, domain.StatusOpen)
	mk(10.5, domain.StatusOpen)
	mk(10.2, domain.StatusClaimed) // inside the band but not open
	mk(20.0, domain.StatusOpen)    // outside the band

	got, err := ListOpenInLatRange(ctx, db, 9.9, 10.6)
	if err != nil {
		t.Fatalf("ListOpenInLatRange: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 open requests in band, got %d", len(got))
	}
	for _, r := range got {
		if r.Status != domain.StatusOpen || r.Location.Lat < 9.9 || r.Location.Lat > 10.6 {
			t.Fatalf("row outside contract: %+v", r)
		}
	}
}

func TestListRequestsByRequesterPage(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := CreateRequest(ctx, db, &domain.HelpRequest{
			RequesterID: "mine", Type: "errand", Title: "t",
			Urgency: domain.UrgencyNormal, Location: domain.Location{Lat: 1, Lng: 2},
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if _, err := CreateRequest(ctx, db, &domain.HelpRequest{
		RequesterID: "other", Type: "errand", Title: "t",
		Urgency: domain.UrgencyNormal, Location: domain.Location{Lat: 1, Lng: 2},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	total, err := CountRequestsByRequester(ctx, db, "mine")
	if err != nil || total != 5 {
		t.Fatalf("count: total=%d err=%v", total, err)
	}
	page, err := ListRequestsByRequesterPage(ctx, db, "mine", 0, 3)
	if err != nil || len(page) != 3 {
		t.Fatalf("page: len=%d err=%v", len(page), err)
	}
	rest, err := ListRequestsByRequesterPage(ctx, db, "mine", 3, 3)
	if err != nil || len(rest) != 2 {
		t.Fatalf("second page: len=%d err=%v", len(rest), err)
	}
}
