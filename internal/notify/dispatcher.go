package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-neighbornet-backend/internal/domain"
	"github.com/tbourn/go-neighbornet-backend/internal/geo"
	"github.com/tbourn/go-neighbornet-backend/internal/metrics"
	"github.com/tbourn/go-neighbornet-backend/internal/repo"
)

const (
	eventCreated = "created"
	eventClaimed = "claimed"
)

// Dispatcher fans out SMS notifications for request lifecycle events.
//
// Methods are synchronous and bounded by Timeout; callers invoke them in a
// goroutine after the triggering transaction has committed. Every failure is
// logged and counted but never surfaced to the caller.
type Dispatcher struct {
	DB       *gorm.DB
	Notifier Notifier

	// RadiusKm bounds the created-request fan-out to nearby volunteers.
	RadiusKm float64
	// Timeout caps the whole fan-out, lookups included.
	Timeout time.Duration
}

// NewDispatcher constructs a dispatcher with a 15s fan-out timeout.
func NewDispatcher(db *gorm.DB, n Notifier, radiusKm float64) *Dispatcher {
	return &Dispatcher{DB: db, Notifier: n, RadiusKm: radiusKm, Timeout: 15 * time.Second}
}

// titleCaser renders urgency values in SMS copy ("urgent" -> "Urgent").
var titleCaser = cases.Title(language.English)

// RequestCreated notifies volunteers within RadiusKm of a newly opened
// request. Volunteers without a saved phone or location are skipped, as is
// the requester. Each delivery fails independently.
func (d *Dispatcher) RequestCreated(req *domain.HelpRequest) {
	if d.Notifier == nil || req == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout())
	defer cancel()

	box := geo.NewBoundingBox(req.Location.Lat, req.Location.Lng, d.RadiusKm)
	vols, err := repo.ListVolunteersInLatRange(ctx, d.DB, box.MinLat, box.MaxLat)
	if err != nil {
		log.Warn().Err(err).Str("request_id", req.ID).Msg("notify: volunteer lookup failed")
		return
	}

	body := fmt.Sprintf("NeighborNet: new %s request near you: %q. Open the app to help.",
		titleCaser.String(string(req.Urgency)), req.Title)

	sent := 0
	for i := range vols {
		v := &vols[i]
		if v.ID == req.RequesterID || v.Phone == "" || v.Location == nil {
			continue
		}
		if !box.ContainsLng(v.Location.Lng) {
			continue
		}
		if err := d.Notifier.Send(ctx, v.Phone, body); err != nil {
			metrics.NotificationsFailed.WithLabelValues(eventCreated).Inc()
			log.Warn().Err(err).
				Str("request_id", req.ID).
				Str("to", maskPhone(v.Phone)).
				Msg("notify: send failed")
			continue
		}
		metrics.NotificationsSent.WithLabelValues(eventCreated).Inc()
		sent++
	}
	log.Debug().Str("request_id", req.ID).Int("sent", sent).Msg("notify: created fan-out done")
}

// RequestClaimed notifies the requester that help is on the way and confirms
// the assignment to the volunteer. The two deliveries are independent; either
// may fail without affecting the other.
func (d *Dispatcher) RequestClaimed(req *domain.HelpRequest) {
	if d.Notifier == nil || req == nil || req.VolunteerID == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout())
	defer cancel()

	volName := "A neighbor"
	if vol, err := repo.GetUser(ctx, d.DB, *req.VolunteerID); err == nil {
		if vol.Name != "" {
			volName = vol.Name
		}
		d.send(ctx, vol.Phone, fmt.Sprintf("NeighborNet: you're confirmed to help with %q.", req.Title), req.ID)
	}

	requester, err := repo.GetUser(ctx, d.DB, req.RequesterID)
	if err != nil {
		log.Warn().Err(err).Str("request_id", req.ID).Msg("notify: requester lookup failed")
		return
	}
	d.send(ctx, requester.Phone, fmt.Sprintf("NeighborNet: %s has offered to help with %q.", volName, req.Title), req.ID)
}

// send delivers one claimed-event message, skipping blank phones.
func (d *Dispatcher) send(ctx context.Context, to, body, requestID string) {
	if to == "" {
		return
	}
	if err := d.Notifier.Send(ctx, to, body); err != nil {
		metrics.NotificationsFailed.WithLabelValues(eventClaimed).Inc()
		log.Warn().Err(err).
			Str("request_id", requestID).
			Str("to", maskPhone(to)).
			Msg("notify: send failed")
		return
	}
	metrics.NotificationsSent.WithLabelValues(eventClaimed).Inc()
}

func (d *Dispatcher) timeout() time.Duration {
	if d.Timeout > 0 {
		return d.Timeout
	}
	return 15 * time.Second
}

// maskPhone keeps the last four digits for log correlation.
func maskPhone(p string) string {
	if len(p) <= 4 {
		return "****"
	}
	return "****" + p[len(p)-4:]
}
