package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/tbourn/go-neighbornet-backend/internal/domain"
	"github.com/tbourn/go-neighbornet-backend/internal/services"
)

func TestUpdateProfile_RequiresIdentity(t *testing.T) {
	r := newTestRouter(&fakeRequestSvc{}, &fakeProfileSvc{}, &fakeImpactSvc{})
	w := doJSON(t, r, http.MethodPut, "/profile", "", `{"name":"Pat"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got %d", w.Code)
	}
}

func TestUpdateProfile_InvalidJSON(t *testing.T) {
	r := newTestRouter(&fakeRequestSvc{}, &fakeProfileSvc{}, &fakeImpactSvc{})
	w := doJSON(t, r, http.MethodPut, "/profile", "u1", `{`)
	if w.Code != http.StatusBadRequest || errCode(t, w) != ErrCodeInvalidArgument {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}

func TestUpdateProfile_MapsFieldsAndReturns204(t *testing.T) {
	prof := &fakeProfileSvc{
		updateFn: func(_ context.Context, userID string, in services.UpdateProfileInput) error {
			if userID != "u1" {
				t.Fatalf("userID = %q", userID)
			}
			if in.Name == nil || *in.Name != "Pat" {
				t.Fatalf("name not mapped: %+v", in)
			}
			if in.Role == nil || *in.Role != "volunteer" {
				t.Fatalf("role not mapped: %+v", in)
			}
			if in.Location == nil || in.Location.Lat != 34.05 {
				t.Fatalf("location not mapped: %+v", in)
			}
			if in.Phone != nil {
				t.Fatalf("omitted phone must stay nil")
			}
			return nil
		},
	}
	r := newTestRouter(&fakeRequestSvc{}, prof, &fakeImpactSvc{})
	w := doJSON(t, r, http.MethodPut, "/profile", "u1",
		`{"name":"Pat","role":"volunteer","location":{"lat":34.05,"lng":-118.25}}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
	if w.Body.Len() != 0 {
		t.Fatalf("204 must have no body")
	}
}

func TestUpdateProfile_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid role", services.ErrInvalidRole, http.StatusBadRequest},
		{"invalid coordinates", services.ErrInvalidCoordinates, http.StatusBadRequest},
		{"internal", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prof := &fakeProfileSvc{
				updateFn: func(context.Context, string, services.UpdateProfileInput) error { return tc.err },
			}
			r := newTestRouter(&fakeRequestSvc{}, prof, &fakeImpactSvc{})
			w := doJSON(t, r, http.MethodPut, "/profile", "u1", `{"name":"x"}`)
			if w.Code != tc.code {
				t.Fatalf("got %d %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestGetImpact_SuccessAndError(t *testing.T) {
	imp := &fakeImpactSvc{
		getFn: func(context.Context) (*domain.ImpactMetrics, error) {
			return &domain.ImpactMetrics{
				ID:                     domain.GlobalMetricsID,
				TotalRequestsCompleted: 42,
				TotalVolunteerMinutes:  1260,
			}, nil
		},
	}
	r := newTestRouter(&fakeRequestSvc{}, &fakeProfileSvc{}, imp)

	w := doJSON(t, r, http.MethodGet, "/impact", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
	var resp ImpactResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body: %s", w.Body.String())
	}
	if resp.TotalRequestsCompleted != 42 || resp.TotalVolunteerMinutes != 1260 {
		t.Fatalf("counters: %+v", resp)
	}

	impErr := &fakeImpactSvc{
		getFn: func(context.Context) (*domain.ImpactMetrics, error) { return nil, errors.New("boom") },
	}
	r = newTestRouter(&fakeRequestSvc{}, &fakeProfileSvc{}, impErr)
	w = doJSON(t, r, http.MethodGet, "/impact", "", "")
	if w.Code != http.StatusInternalServerError || errCode(t, w) != ErrCodeInternal {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}
