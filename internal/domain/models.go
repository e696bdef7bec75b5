// Package domain defines the persistence models for help requests, user
// profiles, and impact metrics. These types are mapped with GORM and form
// the core data layer of the NeighborNet backend.
package domain

import (
	"errors"
	"time"
)

// Validation errors shared by the typed enums below.
var (
	// ErrInvalidUrgency indicates an urgency value outside {low, normal, high}.
	ErrInvalidUrgency = errors.New("invalid urgency")

	// ErrInvalidStatus indicates a status value outside {open, claimed, completed}.
	ErrInvalidStatus = errors.New("invalid request status")
)

// Urgency classifies how quickly a help request needs attention.
type Urgency string

// Allowed urgency values.
const (
	UrgencyLow    Urgency = "low"
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
)

// Validate reports whether the urgency is one of the allowed values.
func (u Urgency) Validate() error {
	switch u {
	case UrgencyLow, UrgencyNormal, UrgencyHigh:
		return nil
	default:
		return ErrInvalidUrgency
	}
}

// RequestStatus is the lifecycle state of a help request. Transitions are
// strictly open → claimed → completed (an unclaimed request may also go
// straight to completed by its requester); no state is ever revisited.
type RequestStatus string

// Lifecycle states.
const (
	StatusOpen      RequestStatus = "open"
	StatusClaimed   RequestStatus = "claimed"
	StatusCompleted RequestStatus = "completed"
)

// Validate reports whether the status is one of the lifecycle states.
func (s RequestStatus) Validate() error {
	switch s {
	case StatusOpen, StatusClaimed, StatusCompleted:
		return nil
	default:
		return ErrInvalidStatus
	}
}

// Roles recognized on user profiles. Only volunteers are candidates for
// new-request notification fan-out.
const (
	RoleVolunteer = "volunteer"
	RoleNeighbor  = "neighbor"
)

// GlobalMetricsID is the primary key of the singleton ImpactMetrics row.
const GlobalMetricsID = "global"

// Location is a WGS84 coordinate pair. It is embedded into owning models so
// that latitude lands in its own indexed column (the nearby query range-scans
// latitude and filters longitude in memory).
type Location struct {
	Lat float64 `json:"lat" gorm:"column:lat"`
	Lng float64 `json:"lng" gorm:"column:lng"`
}

// HelpRequest represents one unit of requested assistance posted by a
// neighbor and optionally claimed and completed by a volunteer.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - RequesterID: identity of the creating caller; immutable.
//   - Type / Title / Description: caller-supplied classification and text.
//   - Urgency: low|normal|high (enforced by DB constraint).
//   - Address: display string, caller-supplied or the geocoder's normalized form.
//   - Location: required coordinates; latitude is part of the status+lat index
//     backing the nearby query.
//   - Status: open|claimed|completed (enforced by DB constraint).
//   - VolunteerID: claiming caller; nil until claimed, immutable thereafter.
//   - ClaimedAt / CompletedAt: set exactly once at the matching transition.
//   - EstimatedMinutes: caller estimate, defaults to 60.
//   - ActualMinutes: set exactly once at completion.
//
// Invariant: VolunteerID is non-nil iff Status is claimed or completed with an
// assigned volunteer; CompletedAt and ActualMinutes are non-nil iff Status is
// completed. Rows are never deleted.
type HelpRequest struct {
	ID          string        `json:"id"           gorm:"type:char(36);primaryKey"`
	RequesterID string        `json:"requester_id" gorm:"type:varchar(64);not null;index:idx_requester"`
	Type        string        `json:"type"         gorm:"type:varchar(32);not null"`
	Title       string        `json:"title"        gorm:"type:varchar(255);not null"`
	Description string        `json:"description"  gorm:"type:text;not null;default:''"`
	Urgency     Urgency       `json:"urgency"      gorm:"type:varchar(8);not null;default:'normal';check:urgency IN ('low','normal','high')"`
	Address     string        `json:"address"      gorm:"type:varchar(255)"`
	Location    Location      `json:"location"     gorm:"embedded"`
	Status      RequestStatus `json:"status"       gorm:"type:varchar(16);not null;default:'open';check:status IN ('open','claimed','completed');index:idx_status_lat,priority:1"`
	VolunteerID *string       `json:"volunteer_id" gorm:"type:varchar(64);index:idx_volunteer"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	EstimatedMinutes int  `json:"estimated_minutes" gorm:"not null;default:60"`
	ActualMinutes    *int `json:"actual_minutes,omitempty"`
}

// TableName returns the database table name for HelpRequest.
func (HelpRequest) TableName() string { return "requests" }

// UserProfile holds per-user contact and volunteering data, keyed by the
// caller identity issued upstream. Profiles are created lazily (first claim,
// or an explicit profile update) and never deleted.
//
// TotalHoursServed is a monotonically increasing accumulator; it is only ever
// mutated with commutative `total_hours_served = total_hours_served + ?`
// increments inside the completing transaction, so concurrent completions
// cannot race.
type UserProfile struct {
	ID               string    `json:"id"                 gorm:"type:varchar(64);primaryKey"`
	Name             string    `json:"name"               gorm:"type:varchar(255)"`
	Phone            string    `json:"phone,omitempty"    gorm:"type:varchar(32)"`
	Role             string    `json:"role"               gorm:"type:varchar(16);not null;default:'neighbor';index:idx_role"`
	Location         *Location `json:"location,omitempty" gorm:"embedded"`
	TotalHoursServed float64   `json:"total_hours_served" gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName returns the database table name for UserProfile.
func (UserProfile) TableName() string { return "users" }

// ImpactMetrics is the single community-wide counter row (ID = "global").
// Both counters only ever grow, and only from within the completing
// transaction, via commutative SQL increments.
type ImpactMetrics struct {
	ID                     string    `json:"-"                        gorm:"type:varchar(16);primaryKey"`
	TotalRequestsCompleted int64     `json:"total_requests_completed" gorm:"not null;default:0"`
	TotalVolunteerMinutes  int64     `json:"total_volunteer_minutes"  gorm:"not null;default:0"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// TableName returns the database table name for ImpactMetrics.
func (ImpactMetrics) TableName() string { return "impact_metrics" }
