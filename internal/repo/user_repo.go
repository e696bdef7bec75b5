// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the UserProfile
// model, including the commutative hour accumulator used by the completion
// transaction.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-neighbornet-backend/internal/domain"
)

// GetUser fetches a single profile by user ID, or ErrNotFound if missing.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.UserProfile, error) {
	var u domain.UserProfile
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EnsureProfile lazily creates a profile row for userID if none exists.
// Existing rows are left untouched (insert-or-ignore), which makes the call
// idempotent and safe inside the claim transaction.
func EnsureProfile(ctx context.Context, db *gorm.DB, userID string) error {
	now := time.Now().UTC()
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(&domain.UserProfile{
			ID:        userID,
			Role:      domain.RoleNeighbor,
			CreatedAt: now,
			UpdatedAt: now,
		}).Error
}

// AddVolunteerHours adds hours to userID's total via a commutative SQL
// increment (insert-or-accumulate). Concurrent completions therefore never
// lose updates regardless of commit order.
func AddVolunteerHours(ctx context.Context, db *gorm.DB, userID string, hours float64) error {
	now := time.Now().UTC()
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"total_hours_served": gorm.Expr("total_hours_served + ?", hours),
				"updated_at":         now,
			}),
		}).
		Create(&domain.UserProfile{
			ID:               userID,
			Role:             domain.RoleNeighbor,
			TotalHoursServed: hours,
			CreatedAt:        now,
			UpdatedAt:        now,
		}).Error
}

// SaveProfile upserts the caller-editable profile fields (name, phone, role,
// location). The accumulator column is never part of updates: profile edits
// cannot rewind served hours.
func SaveProfile(ctx context.Context, db *gorm.DB, userID string, updates map[string]any) error {
	if err := EnsureProfile(ctx, db, userID); err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	delete(updates, "total_hours_served")
	updates["updated_at"] = time.Now().UTC()
	return db.WithContext(ctx).
		Model(&domain.UserProfile{}).
		Where("id = ?", userID).
		Updates(updates).Error
}

// ListVolunteersInLatRange returns profiles with role=volunteer and a saved
// location whose latitude falls in [minLat, maxLat]. This is the SQL phase of
// the two-phase filter used by the created-request fan-out; longitude is
// filtered in memory by the dispatcher.
func ListVolunteersInLatRange(ctx context.Context, db *gorm.DB, minLat, maxLat float64) ([]domain.UserProfile, error) {
	var out []domain.UserProfile
	err := db.WithContext(ctx).
		Where("role = ? AND lat IS NOT NULL AND lat >= ? AND lat <= ?", domain.RoleVolunteer, minLat, maxLat).
		Find(&out).Error
	return out, err
}
