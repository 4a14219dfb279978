package storage

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-service/internal/models"
)

func seededStore(t *testing.T) *InMemoryStore {
	t.Helper()
	s := NewInMemoryStore()
	s.AddExperience(&models.Experience{ID: 1, HostID: 7, Title: "Pottery", GuestLimit: 10, PricePerGuest: 500})
	s.AddExperienceSlot(&models.ExperienceSlot{
		ID:                  2,
		ExperienceID:        1,
		StartTime:           time.Now().Add(time.Hour),
		EndTime:             time.Now().Add(3 * time.Hour),
		RemainingGuestLimit: 3,
		IsActive:            true,
	})
	s.AddSupplier(&models.Supplier{ID: 8, Name: "Kabir", EmailID: "kabir@example.com"})
	s.AddArtistSlot(&models.ArtistSlot{ID: 3, ArtistID: 8, Price: 15000, IsActive: true})
	return s
}

func newBooking(uuid string) *models.Booking {
	now := time.Now()
	return models.NewBooking(uuid, 1, 7, 2, &models.CheckoutDetails{SubTotal: 1000, ServiceTax: 180, PayableAmount: 1180}, now)
}

func TestReadsReturnCopies(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	slot, err := s.GetExperienceSlot(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, slot.Experience)
	assert.Equal(t, "Pottery", slot.Experience.Title)

	slot.RemainingGuestLimit = 0
	again, err := s.GetExperienceSlot(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, again.RemainingGuestLimit)

	_, err = s.GetArtistSlot(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWithTxCommitsAllWrites(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	var bookingID int64
	err := s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		b := newBooking("LB0001")
		b.Status = models.BookingStatusPending
		if err := tx.CreateBooking(ctx, b); err != nil {
			return err
		}
		bookingID = b.ID

		lock, err := tx.LockExperienceSlot(ctx, 2, 2)
		if err != nil {
			return err
		}
		if err := lock.Consume(ctx); err != nil {
			return err
		}
		return tx.CreatePayment(ctx, &models.Payment{BookingID: b.ID, Amount: 1180, Status: models.PaymentStatusPending, TransactionCode: "tx1"})
	})
	require.NoError(t, err)

	b, err := s.GetBooking(ctx, bookingID)
	require.NoError(t, err)
	assert.Equal(t, "LB0001", b.BookingUUID)

	slot, _ := s.GetExperienceSlot(ctx, 2)
	assert.Equal(t, 1, slot.RemainingGuestLimit)

	payments, err := s.ListPayments(ctx, bookingID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()
	boom := errors.New("gateway down")

	err := s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		lock, err := tx.LockArtistSlot(ctx, 3)
		require.NoError(t, err)
		require.NoError(t, lock.Consume(ctx))
		require.NoError(t, tx.CreateBooking(ctx, newBooking("LB0002")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	slot, _ := s.GetArtistSlot(ctx, 3)
	assert.False(t, slot.IsBooked)
	assert.Empty(t, s.bookings)
}

func TestSlotLockFilters(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.LockExperienceSlot(ctx, 2, 4)
		assert.ErrorIs(t, err, ErrNotFound)

		lock, err := tx.LockArtistSlot(ctx, 3)
		require.NoError(t, err)
		require.NoError(t, lock.Consume(ctx))
		assert.ErrorIs(t, lock.Consume(ctx), ErrLockConsumed)
		return nil
	})
	require.NoError(t, err)

	err = s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.LockArtistSlot(ctx, 3)
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDuplicateBookingUUID(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	create := func() error {
		return s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
			return tx.CreateBooking(ctx, newBooking("LB-SAME"))
		})
	}
	require.NoError(t, create())
	assert.ErrorIs(t, create(), ErrDuplicate)
}

func TestPendingPaymentSeesStagedWrites(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		b := newBooking("LB0003")
		require.NoError(t, tx.CreateBooking(ctx, b))
		p := &models.Payment{BookingID: b.ID, Status: models.PaymentStatusPending, TransactionCode: "tx3"}
		require.NoError(t, tx.CreatePayment(ctx, p))

		found, err := tx.GetPendingPayment(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, found.ID)

		found.Status = models.PaymentStatusSuccess
		require.NoError(t, tx.UpdatePayment(ctx, found))
		_, err = tx.GetPendingPayment(ctx, b.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestLockWaitHonoursContext(t *testing.T) {
	s := seededStore(t)
	held := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_ = s.WithTx(context.Background(), func(ctx context.Context, tx Tx) error {
			_, err := tx.LockArtistSlot(ctx, 3)
			close(held)
			<-done
			return err
		})
	}()
	<-held
	defer close(done)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.LockArtistSlot(ctx, 3)
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConcurrentConsumeNeverOversells(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var succeeded int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
				lock, err := tx.LockExperienceSlot(ctx, 2, 1)
				if err != nil {
					return err
				}
				return lock.Consume(ctx)
			})
			if err == nil {
				atomic.AddInt32(&succeeded, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), succeeded)
	slot, _ := s.GetExperienceSlot(ctx, 2)
	assert.Equal(t, 0, slot.RemainingGuestLimit)
}

func TestFindActivePromoCode(t *testing.T) {
	s := NewInMemoryStore()
	now := time.Now()
	s.AddPromoCode(&models.PromoCode{ID: 1, Code: "SAVE", Status: models.PromoCodeInactive, StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour)})
	s.AddPromoCode(&models.PromoCode{ID: 2, Code: "SAVE", Status: models.PromoCodeActive, StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour)})
	s.AddPromoCode(&models.PromoCode{ID: 3, Code: "OLD", Status: models.PromoCodeActive, StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Hour)})

	p, err := s.FindActivePromoCode(context.Background(), "save", now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.ID)

	_, err = s.FindActivePromoCode(context.Background(), "OLD", now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeedDemo(t *testing.T) {
	s := NewInMemoryStore()
	s.SeedDemo(time.Now())

	slot, err := s.GetExperienceSlot(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), slot.Experience.HostID)

	// generated ids continue after the seeded ones
	assert.Greater(t, s.nextID(), int64(40))
}

func TestVenueUpdateKeepsConcurrentBooking(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()
	venue := models.Venue{Address: "7 Lake View", City: "Pune", State: "Maharashtra", Country: "India"}

	venueStaged := make(chan struct{})
	confirmed := make(chan struct{})
	initiateErr := make(chan error, 1)

	// an artist initiate writing the venue while a confirm books the slot
	go func() {
		initiateErr <- s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
			if err := tx.UpdateArtistSlotVenue(ctx, 3, venue); err != nil {
				return err
			}
			close(venueStaged)
			<-confirmed
			return nil
		})
	}()

	<-venueStaged
	err := s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		lock, err := tx.LockArtistSlot(ctx, 3)
		if err != nil {
			return err
		}
		return lock.Consume(ctx)
	})
	require.NoError(t, err)
	close(confirmed)
	require.NoError(t, <-initiateErr)

	slot, err := s.GetArtistSlot(ctx, 3)
	require.NoError(t, err)
	assert.True(t, slot.IsBooked)
	require.NotNil(t, slot.VenueCity)
	assert.Equal(t, "Pune", *slot.VenueCity)

	// the slot cannot be booked a second time
	err = s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.LockArtistSlot(ctx, 3)
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStagedVenueVisibleInsideTx(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		require.NoError(t, tx.UpdateArtistSlotVenue(ctx, 3, models.Venue{Address: "1 Main", City: "Goa", State: "Goa", Country: "India"}))
		assert.ErrorIs(t, tx.UpdateArtistSlotVenue(ctx, 99, models.Venue{}), ErrNotFound)

		lock, err := tx.LockArtistSlot(ctx, 3)
		require.NoError(t, err)
		return lock.Consume(ctx)
	})
	require.NoError(t, err)

	slot, err := s.GetArtistSlot(ctx, 3)
	require.NoError(t, err)
	assert.True(t, slot.IsBooked)
	require.NotNil(t, slot.VenueCity)
	assert.Equal(t, "Goa", *slot.VenueCity)
}
