package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fieldtrack/fieldtrack/internal/config"
	"github.com/fieldtrack/fieldtrack/internal/database"
	"github.com/fieldtrack/fieldtrack/internal/events"
	"github.com/fieldtrack/fieldtrack/internal/logger"
	"github.com/fieldtrack/fieldtrack/internal/model"
	"github.com/fieldtrack/fieldtrack/internal/store"
)

type testEnv struct {
	DB        *database.DB
	Store     *store.Store
	Hub       *events.Hub
	Ingestion *IngestionService
	Query     *QueryService
}

func testSetup(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		DatabaseDSN:    fmt.Sprintf("%s/test.db", t.TempDir()),
		DatabaseDriver: "sqlite",
	}

	db, err := database.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	s := store.New(db.DB)
	hub := events.NewHub(logger.NewNop())

	return &testEnv{
		DB:        db,
		Store:     s,
		Hub:       hub,
		Ingestion: NewIngestionService(s, hub),
		Query:     NewQueryService(s),
	}
}

// observer subscribes a raw client to the hub and exposes its frames.
type observer struct {
	client *events.Client
}

func (e *testEnv) observe(t *testing.T) *observer {
	t.Helper()
	c := events.NewClient(e.Hub, nil, logger.NewNop())
	e.Hub.Register(c)
	o := &observer{client: c}
	// Swallow the hello handshake.
	if msg := o.next(t); msg.Type != events.MessageTypeHello {
		t.Fatalf("Expected hello, got %+v", msg)
	}
	return o
}

func (o *observer) next(t *testing.T) events.Message {
	t.Helper()
	select {
	case msg, ok := <-o.client.Messages():
		if !ok {
			t.Fatal("observer channel closed")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
	}
	return events.Message{}
}

func (o *observer) expectSilence(t *testing.T) {
	t.Helper()
	select {
	case msg := <-o.client.Messages():
		t.Fatalf("Expected no broadcast, got %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubmit_BroadcastsCommittedState(t *testing.T) {
	env := testSetup(t)
	obs := env.observe(t)

	loc, err := env.Ingestion.Submit(context.Background(), Report{
		EmployeeID: 7,
		Latitude:   12.9716,
		Longitude:  77.5946,
		GPSStatus:  model.GPSStatusOn,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	msg := obs.next(t)
	if msg.Type != events.MessageTypeLocation {
		t.Fatalf("Expected location frame, got %q", msg.Type)
	}
	payload, ok := msg.Payload.(*model.CurrentLocation)
	if !ok {
		t.Fatalf("Unexpected payload type %T", msg.Payload)
	}
	if payload.EmployeeID != 7 || payload.GPSStatus != model.GPSStatusOn {
		t.Errorf("Broadcast does not match committed state: %+v", payload)
	}
	if !payload.LastUpdate.Equal(loc.LastUpdate) {
		t.Errorf("Broadcast timestamp differs from committed row")
	}
}

func TestSubmit_InvalidInputPublishesNothing(t *testing.T) {
	env := testSetup(t)
	obs := env.observe(t)

	_, err := env.Ingestion.Submit(context.Background(), Report{
		EmployeeID: 7,
		Latitude:   123.0,
		Longitude:  77.5946,
		GPSStatus:  model.GPSStatusOn,
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput, got %v", err)
	}

	obs.expectSilence(t)
}

func TestSubmit_StorageFailurePublishesNothing(t *testing.T) {
	env := testSetup(t)
	obs := env.observe(t)

	if err := env.DB.Exec("DROP TABLE location_history").Error; err != nil {
		t.Fatalf("Failed to drop history table: %v", err)
	}

	_, err := env.Ingestion.Submit(context.Background(), Report{
		EmployeeID: 7,
		Latitude:   12.9716,
		Longitude:  77.5946,
		GPSStatus:  model.GPSStatusOn,
	})
	if err == nil {
		t.Fatal("Expected Submit to fail")
	}
	if errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("Storage failure must not look like bad input: %v", err)
	}

	obs.expectSilence(t)
}

func TestHistory_DefaultLimit(t *testing.T) {
	env := testSetup(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	records := make([]model.LocationHistory, 0, DefaultHistoryLimit+50)
	for i := 0; i < DefaultHistoryLimit+50; i++ {
		records = append(records, model.LocationHistory{
			EmployeeID: 7,
			Latitude:   10,
			Longitude:  20,
			GPSStatus:  model.GPSStatusOn,
			RecordedAt: base.Add(time.Duration(i) * time.Millisecond),
		})
	}
	if err := env.DB.CreateInBatches(records, 500).Error; err != nil {
		t.Fatalf("Failed to seed history: %v", err)
	}

	got, err := env.Query.History(ctx, 7, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(got) != DefaultHistoryLimit {
		t.Errorf("Expected default limit %d, got %d records", DefaultHistoryLimit, len(got))
	}
}

func TestHistory_InvalidEmployeeID(t *testing.T) {
	env := testSetup(t)

	if _, err := env.Query.History(context.Background(), -3, 10); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestListCurrent_ReflectsLatestSubmission(t *testing.T) {
	env := testSetup(t)
	ctx := context.Background()

	if _, err := env.Ingestion.Submit(ctx, Report{EmployeeID: 7, Latitude: 12.9716, Longitude: 77.5946, GPSStatus: model.GPSStatusOn}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := env.Ingestion.Submit(ctx, Report{EmployeeID: 7, Latitude: 12.9716, Longitude: 77.5946, GPSStatus: model.GPSStatusOff}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	current, err := env.Query.ListCurrent(ctx)
	if err != nil {
		t.Fatalf("ListCurrent failed: %v", err)
	}
	if len(current) != 1 || current[0].GPSStatus != model.GPSStatusOff {
		t.Errorf("Latest submission not reflected: %+v", current)
	}

	history, err := env.Query.History(ctx, 7, 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 || history[0].GPSStatus != model.GPSStatusOff {
		t.Errorf("Expected both reports newest-first: %+v", history)
	}
}
