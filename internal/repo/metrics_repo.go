// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the ImpactMetrics singleton accessors.
//
// The singleton is a hot shared-write target under concurrent completions, so
// the increment is expressed as `col = col + ?` inside an upsert rather than
// a read-modify-write; increments commute and the result is independent of
// commit order.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-neighbornet-backend/internal/domain"
)

// AddCompletion records one completed request with the given actual minutes
// on the global metrics row, creating the row on first use.
func AddCompletion(ctx context.Context, db *gorm.DB, actualMinutes int) error {
	now := time.Now().UTC()
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"total_requests_completed": gorm.Expr("total_requests_completed + 1"),
				"total_volunteer_minutes":  gorm.Expr("total_volunteer_minutes + ?", actualMinutes),
				"updated_at":               now,
			}),
		}).
		Create(&domain.ImpactMetrics{
			ID:                     domain.GlobalMetricsID,
			TotalRequestsCompleted: 1,
			TotalVolunteerMinutes:  int64(actualMinutes),
			UpdatedAt:              now,
		}).Error
}

// GetImpactMetrics returns the global metrics row. Before the first
// completion the row does not exist yet; a zero-valued record is returned in
// that case rather than an error.
func GetImpactMetrics(ctx context.Context, db *gorm.DB) (*domain.ImpactMetrics, error) {
	var m domain.ImpactMetrics
	err := db.WithContext(ctx).
		Where("id = ?", domain.GlobalMetricsID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.ImpactMetrics{ID: domain.GlobalMetricsID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
