package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"booking-service/internal/config"
	"booking-service/internal/logger"
	"booking-service/internal/models"
	"booking-service/internal/storage"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func testLogger() *logger.Logger {
	return logger.New(io.Discard, "error", "text")
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateOrder(ctx context.Context, req OrderRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) VerifyPayment(ctx context.Context, orderID string) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, recipients []string, template string, vars map[string]string) error {
	args := m.Called(ctx, recipients, template, vars)
	return args.Error(0)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.BookingEvent
}

func (p *recordingPublisher) PublishBookingEvent(event *models.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// spyStore records the ids of bookings created inside transactions and can
// force reference collisions.
type spyStore struct {
	*storage.InMemoryStore

	mu             sync.Mutex
	created        []int64
	duplicatesLeft int
}

func (s *spyStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	return s.InMemoryStore.WithTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return fn(ctx, &spyTx{Tx: tx, store: s})
	})
}

func (s *spyStore) createdIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.created...)
}

type spyTx struct {
	storage.Tx
	store *spyStore
}

func (t *spyTx) CreateBooking(ctx context.Context, b *models.Booking) error {
	t.store.mu.Lock()
	if t.store.duplicatesLeft > 0 {
		t.store.duplicatesLeft--
		t.store.mu.Unlock()
		return storage.ErrDuplicate
	}
	t.store.mu.Unlock()

	if err := t.Tx.CreateBooking(ctx, b); err != nil {
		return err
	}
	t.store.mu.Lock()
	t.store.created = append(t.store.created, b.ID)
	t.store.mu.Unlock()
	return nil
}

const (
	customerID      int64 = 1
	otherCustomerID int64 = 4
	hostID          int64 = 2
	artistID        int64 = 3
	experienceID    int64 = 10
	expSlotID       int64 = 20
	artistSlotID    int64 = 30
)

type fixture struct {
	store    *spyStore
	gateway  *mockGateway
	notifier *mockNotifier
	events   *recordingPublisher
	svc      *BookingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mem := storage.NewInMemoryStore()
	mem.AddCustomer(&models.Customer{ID: customerID, Name: "Asha Rao", EmailID: "asha@example.com"})
	mem.AddCustomer(&models.Customer{ID: otherCustomerID, Name: "Dev", EmailID: "dev@example.com"})
	mem.AddSupplier(&models.Supplier{ID: hostID, Name: "Pottery Studio", EmailID: "studio@example.com"})
	mem.AddSupplier(&models.Supplier{ID: artistID, Name: "Kabir Quartet", EmailID: "kabir@example.com"})
	mem.AddExperience(&models.Experience{
		ID:            experienceID,
		HostID:        hostID,
		Title:         "Wheel Throwing",
		GuestLimit:    10,
		PricePerGuest: 500,
		VenueAddress:  "14 Residency Road",
		VenueCity:     "Bengaluru",
		VenueState:    "Karnataka",
		VenueCountry:  "India",
	})
	mem.AddExperienceSlot(&models.ExperienceSlot{
		ID:                  expSlotID,
		ExperienceID:        experienceID,
		StartTime:           fixedNow.Add(48 * time.Hour),
		EndTime:             fixedNow.Add(50 * time.Hour),
		RemainingGuestLimit: 5,
		IsActive:            true,
	})
	mem.AddArtistSlot(&models.ArtistSlot{
		ID:        artistSlotID,
		ArtistID:  artistID,
		Price:     15000,
		StartTime: fixedNow.Add(72 * time.Hour),
		EndTime:   fixedNow.Add(75 * time.Hour),
		IsActive:  true,
	})

	f := &fixture{
		store:    &spyStore{InMemoryStore: mem},
		gateway:  new(mockGateway),
		notifier: new(mockNotifier),
		events:   &recordingPublisher{},
	}
	cfg := config.BookingConfig{TaxRate: 0.18, UUIDPrefix: "LB", StrictPromoMinimum: true}
	f.svc = NewBookingService(f.store, f.gateway, f.notifier, f.events, cfg, testLogger(),
		WithClock(func() time.Time { return fixedNow }))
	return f
}

func experienceRequest(guests int) *models.InitiateRequest {
	return &models.InitiateRequest{
		BookingType: models.BookingTypeExperience,
		SlotID:      expSlotID,
		NoOfGuests:  guests,
	}
}

func artistRequest() *models.InitiateRequest {
	return &models.InitiateRequest{
		BookingType: models.BookingTypeArtist,
		SlotID:      artistSlotID,
		NoOfGuests:  40,
		Venue:       &models.Venue{Address: "7 Lake View", City: "Pune", State: "Maharashtra", Country: "India"},
	}
}
