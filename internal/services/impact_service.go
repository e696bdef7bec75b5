// Package services – ImpactService
//
// Read-side access to the community-wide impact counters maintained by
// completing transactions.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-neighbornet-backend/internal/domain"
	"github.com/tbourn/go-neighbornet-backend/internal/repo"
)

// ImpactService exposes the global impact metrics singleton.
type ImpactService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewImpactService constructs an ImpactService.
func NewImpactService(db *gorm.DB) *ImpactService {
	return &ImpactService{DB: db}
}

// Get returns the global counters; a zero-valued record before the first
// completion.
func (s *ImpactService) Get(ctx context.Context) (*domain.ImpactMetrics, error) {
	return repo.GetImpactMetrics(ctx, s.DB)
}
