package storage

import (
	"context"
	"errors"
	"time"

	"booking-service/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrLockConsumed is returned when a slot lock is consumed twice.
	ErrLockConsumed = errors.New("slot lock already consumed")
)

// Store is the persistence boundary of the booking service. Plain reads run
// outside any transaction; every mutation goes through WithTx.
type Store interface {
	GetExperienceSlot(ctx context.Context, id int64) (*models.ExperienceSlot, error)
	GetArtistSlot(ctx context.Context, id int64) (*models.ArtistSlot, error)
	FindActivePromoCode(ctx context.Context, code string, at time.Time) (*models.PromoCode, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	ListPayments(ctx context.Context, bookingID int64) ([]*models.Payment, error)
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	GetSupplier(ctx context.Context, id int64) (*models.Supplier, error)

	// WithTx runs fn in a transaction. Returning an error from fn, or a
	// failed commit, discards every write made through tx and releases all
	// row locks.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	HealthCheck(ctx context.Context) error
	Close() error
}

// Tx is a unit of work. Lock* methods take exclusive row locks that are held
// until the transaction ends.
type Tx interface {
	LockBooking(ctx context.Context, id int64) (*models.Booking, error)
	// LockExperienceSlot locks an active slot that still has room for
	// guests. ErrNotFound means no such slot.
	LockExperienceSlot(ctx context.Context, id int64, guests int) (SlotLock, error)
	// LockArtistSlot locks an active, unbooked slot.
	LockArtistSlot(ctx context.Context, id int64) (SlotLock, error)

	GetPendingPayment(ctx context.Context, bookingID int64) (*models.Payment, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	UpdateBooking(ctx context.Context, booking *models.Booking) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	UpdatePayment(ctx context.Context, payment *models.Payment) error
	UpdateArtistSlotVenue(ctx context.Context, slotID int64, venue models.Venue) error
}

// SlotLock is a slot row held under the enclosing transaction's lock.
type SlotLock interface {
	SlotID() int64
	// Consume takes the locked capacity: decrements the remaining guest
	// limit of an experience slot or marks an artist slot booked.
	Consume(ctx context.Context) error
}
