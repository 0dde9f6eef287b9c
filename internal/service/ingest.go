// Package service holds the ingestion and query logic between the HTTP
// handlers and the store.
package service

import (
	"context"

	"github.com/fieldtrack/fieldtrack/internal/events"
	"github.com/fieldtrack/fieldtrack/internal/model"
	"github.com/fieldtrack/fieldtrack/internal/store"
)

// Report is one inbound position update, already decoded from the wire.
type Report struct {
	EmployeeID int64           `json:"employee_id"`
	Latitude   float64         `json:"latitude"`
	Longitude  float64         `json:"longitude"`
	GPSStatus  model.GPSStatus `json:"gps_status"`
}

// IngestionService applies accepted reports to the store and broadcasts the
// committed result to live observers.
type IngestionService struct {
	store *store.Store
	hub   *events.Hub
}

// NewIngestionService creates a new IngestionService.
func NewIngestionService(s *store.Store, hub *events.Hub) *IngestionService {
	return &IngestionService{store: s, hub: hub}
}

// Submit records one report. The broadcast happens strictly after the
// transaction commits, so observers only ever see committed state; on
// storage failure nothing is published.
func (s *IngestionService) Submit(ctx context.Context, report Report) (*model.CurrentLocation, error) {
	loc, err := s.store.ApplyReport(ctx, report.EmployeeID, report.Latitude, report.Longitude, report.GPSStatus)
	if err != nil {
		return nil, err
	}

	s.hub.Publish(events.NewLocationMessage(loc))

	return loc, nil
}
