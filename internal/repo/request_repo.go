// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the HelpRequest
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a request is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// The lifecycle mutations (ClaimRequest, CompleteRequest) are conditional
// UPDATEs whose WHERE clause carries the state-machine precondition; the
// returned rows-affected count is how the service layer distinguishes the
// winner of a race from the losers. This keeps each transition atomic at the
// storage level instead of relying on read-then-write application locking.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-neighbornet-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateRequest inserts a new open HelpRequest. The request ID is a randomly
// generated UUID (string) unless the caller pre-assigned one, and CreatedAt
// is set to UTC.
//
// On success, it returns the persisted request. On failure, it returns a DB error.
func CreateRequest(ctx context.Context, db *gorm.DB, r *domain.HelpRequest) (*domain.HelpRequest, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.Status = domain.StatusOpen
	r.VolunteerID = nil
	r.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// GetRequest fetches a single request by its ID. If the record does not
// exist, it returns ErrNotFound. On other DB errors, the raw error is returned.
func GetRequest(ctx context.Context, db *gorm.DB, id string) (*domain.HelpRequest, error) {
	var r domain.HelpRequest
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ClaimRequest performs the open→claimed transition as one conditional UPDATE.
// It returns the number of rows affected: 1 when this caller won the claim,
// 0 when the request is missing or no longer open (the caller must re-read to
// tell the two cases apart). On DB error, the raw error is returned.
func ClaimRequest(ctx context.Context, db *gorm.DB, id, volunteerID string, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.HelpRequest{}).
		Where("id = ? AND status = ?", id, domain.StatusOpen).
		Updates(map[string]any{
			"status":       domain.StatusClaimed,
			"volunteer_id": volunteerID,
			"claimed_at":   now,
		})
	return res.RowsAffected, res.Error
}

// CompleteRequest performs the transition to completed as one conditional
// UPDATE guarded on the request not already being completed. It returns the
// rows-affected count with the same winner/loser semantics as ClaimRequest.
func CompleteRequest(ctx context.Context, db *gorm.DB, id string, actualMinutes int, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.HelpRequest{}).
		Where("id = ? AND status <> ?", id, domain.StatusCompleted).
		Updates(map[string]any{
			"status":         domain.StatusCompleted,
			"completed_at":   now,
			"actual_minutes": actualMinutes,
		})
	return res.RowsAffected, res.Error
}

// ListOpenInLatRange returns all open requests whose latitude falls in
// [minLat, maxLat]. This is the SQL phase of the two-phase nearby filter; the
// longitude phase happens in memory at the service layer.
func ListOpenInLatRange(ctx context.Context, db *gorm.DB, minLat, maxLat float64) ([]domain.HelpRequest, error) {
	var out []domain.HelpRequest
	err := db.WithContext(ctx).
		Where("status = ? AND lat >= ? AND lat <= ?", domain.StatusOpen, minLat, maxLat).
		Find(&out).Error
	return out, err
}

// CountRequestsByRequester returns the total number of requests created by
// userID. On DB error, it returns the error.
func CountRequestsByRequester(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.HelpRequest{}).
		Where("requester_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListRequestsByRequesterPage returns a paginated slice of requests created
// by userID, ordered by creation time descending. Use CountRequestsByRequester
// to obtain the total for pagination metadata. On DB error, it returns the error.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListRequestsByRequesterPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.HelpRequest, error) {
	var out []domain.HelpRequest
	err := db.WithContext(ctx).
		Where("requester_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
