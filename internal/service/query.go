package service

import (
	"context"
	"fmt"

	"github.com/fieldtrack/fieldtrack/internal/model"
	"github.com/fieldtrack/fieldtrack/internal/store"
)

// DefaultHistoryLimit applies when a history query does not say how many
// records it wants.
const DefaultHistoryLimit = 500

// QueryService provides read-only access to current positions and history.
type QueryService struct {
	store *store.Store
}

// NewQueryService creates a new QueryService.
func NewQueryService(s *store.Store) *QueryService {
	return &QueryService{store: s}
}

// ListCurrent returns every employee's latest known position.
func (s *QueryService) ListCurrent(ctx context.Context) ([]model.CurrentLocation, error) {
	return s.store.ListCurrent(ctx)
}

// History returns an employee's past reports, newest first. limit <= 0 means
// DefaultHistoryLimit; values above the store cap are clamped there.
func (s *QueryService) History(ctx context.Context, employeeID int64, limit int) ([]model.LocationHistory, error) {
	if employeeID < 1 {
		return nil, fmt.Errorf("%w: employee id must be a positive integer", store.ErrInvalidInput)
	}

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > store.MaxHistoryLimit {
		limit = store.MaxHistoryLimit
	}

	return s.store.ListHistory(ctx, employeeID, limit)
}
