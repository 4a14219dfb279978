package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"booking-service/internal/config"
	"booking-service/internal/logger"
	"booking-service/internal/models"
	"booking-service/internal/storage"
	"booking-service/internal/utils"
)

const (
	maxReferenceAttempts = 3
	confirmedMessage     = "Booking Confirmed"
)

// BookingService drives a booking from checkout preview to confirmation.
type BookingService struct {
	store    storage.Store
	gateway  PaymentGateway
	notifier Notifier
	events   EventPublisher
	log      *logger.Logger

	slots    *SlotValidator
	pricing  *PricingEngine
	payments *PaymentRecords
	validate *validator.Validate

	now        func() time.Time
	uuidPrefix string
}

type Option func(*BookingService)

// WithClock replaces the wall clock used for slot windows, promo validity
// and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(store storage.Store, gateway PaymentGateway, notifier Notifier, events EventPublisher,
	cfg config.BookingConfig, log *logger.Logger, opts ...Option) *BookingService {
	s := &BookingService{
		store:      store,
		gateway:    gateway,
		notifier:   notifier,
		events:     events,
		log:        log,
		validate:   validator.New(),
		now:        func() time.Time { return time.Now().UTC() },
		uuidPrefix: cfg.UUIDPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.slots = NewSlotValidator(store, s.now)
	s.pricing = NewPricingEngine(NewPromoResolver(store, cfg.StrictPromoMinimum, s.now, log), cfg.TaxRate)
	s.payments = NewPaymentRecords(s.now, log)
	return s
}

func (s *BookingService) validateRequest(req interface{}) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			switch fe.Field() {
			case "Venue":
				return ErrVenueRequired
			case "NoOfGuests":
				return ErrInvalidGuestCount
			}
		}
	}
	return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
}

// Checkout prices an order without persisting anything.
func (s *BookingService) Checkout(ctx context.Context, req *models.CheckoutRequest) (*models.CheckoutResponse, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	target := s.newTarget(req.BookingType, req.SlotID, req.NoOfGuests, req.Venue)
	if err := target.validate(ctx); err != nil {
		return nil, err
	}

	details, err := s.pricing.ComputeCheckout(ctx, target.orderAmount(), req.PromoCode)
	if err != nil {
		return nil, err
	}
	return target.describe(details), nil
}

// Initiate creates a booking and its pending payment in one transaction.
// Experience bookings also open a gateway order; artist bookings wait for
// the artist's approval first.
func (s *BookingService) Initiate(ctx context.Context, customerID int64, req *models.InitiateRequest) (*models.InitiateResponse, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	target := s.newTarget(req.BookingType, req.SlotID, req.NoOfGuests, req.Venue)
	if err := target.validate(ctx); err != nil {
		return nil, err
	}

	details, err := s.pricing.ComputeCheckout(ctx, target.orderAmount(), req.PromoCode)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		booking, payment, err := s.createBooking(ctx, customerID, req.NoOfGuests, target, details)
		if err == nil {
			s.log.LogBooking("INITIATED", booking.BookingUUID, fmt.Sprintf("%s booking %d for customer %d, payable %.2f",
				booking.BookingType, booking.ID, customerID, booking.PayableAmount))
			s.publishBookingEvent(models.EventBookingInitiated, booking)
			return &models.InitiateResponse{
				BookingID:   booking.ID,
				BookingUUID: booking.BookingUUID,
				PGOrderID:   payment.PGOrderID,
			}, nil
		}
		if !errors.Is(err, storage.ErrDuplicate) || attempt == maxReferenceAttempts {
			return nil, err
		}
		s.log.Warn("BOOKING", fmt.Sprintf("Booking reference collision, retrying (attempt %d): %v", attempt, err))
	}
}

func (s *BookingService) createBooking(ctx context.Context, customerID int64, guests int, target bookingTarget,
	details *models.CheckoutDetails) (*models.Booking, *models.Payment, error) {
	var booking *models.Booking
	var payment *models.Payment

	err := s.store.WithTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		if err := target.prepare(ctx, tx); err != nil {
			return err
		}

		now := s.now()
		booking = models.NewBooking(utils.GenerateBookingUUID(s.uuidPrefix, now), customerID, target.supplierID(), guests, details, now)
		target.attach(booking)
		if err := tx.CreateBooking(ctx, booking); err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		payment = s.payments.New(booking)
		if target.ordersAtInitiate() {
			orderID, err := s.createOrder(ctx, booking, payment)
			if err != nil {
				return err
			}
			payment.PGOrderID = &orderID
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		return nil
	})
	return booking, payment, err
}

func (s *BookingService) createOrder(ctx context.Context, b *models.Booking, p *models.Payment) (string, error) {
	orderID, err := s.gateway.CreateOrder(ctx, OrderRequest{
		BookingUUID:     b.BookingUUID,
		TransactionCode: p.TransactionCode,
		Amount:          p.Amount,
		Description:     fmt.Sprintf("Booking %s", b.BookingUUID),
	})
	if err != nil {
		s.log.Error("PAYMENT", fmt.Sprintf("Gateway order for %s failed: %v", b.BookingUUID, err))
		if errors.Is(err, ErrGatewayFailure) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}
	s.log.LogPayment("ORDER_CREATED", p.TransactionCode, fmt.Sprintf("Order %s for booking %s", orderID, b.BookingUUID))
	return orderID, nil
}

// ApproveArtistBooking moves an artist booking from pending_with_artist to
// pending. The customer is notified after the commit; a failed notification
// does not undo the approval.
func (s *BookingService) ApproveArtistBooking(ctx context.Context, bookingID, supplierID int64) error {
	var approved *models.Booking

	err := s.store.WithTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		b, err := s.lockBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.BookingType != models.BookingTypeArtist || b.Status != models.BookingStatusPendingWithArtist {
			return ErrBookingNotFound
		}
		if b.SupplierID != supplierID {
			s.log.LogSecurity("FORBIDDEN", fmt.Sprintf("Supplier %d tried to approve booking %s", supplierID, b.BookingUUID))
			return ErrForbidden
		}

		b.Status = models.BookingStatusPending
		b.UpdatedTime = s.now()
		if err := tx.UpdateBooking(ctx, b); err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}
		approved = b
		return nil
	})
	if err != nil {
		return err
	}

	s.log.LogBooking("APPROVED", approved.BookingUUID, fmt.Sprintf("Approved by supplier %d", supplierID))
	s.publishBookingEvent(models.EventBookingApproved, approved)
	s.notifyApproval(ctx, approved)
	return nil
}

// InitiateArtistPayment opens a gateway order for an approved artist
// booking. Calling it again replaces the order id on the payment row.
func (s *BookingService) InitiateArtistPayment(ctx context.Context, bookingID, customerID int64) (*models.PaymentInitiationResponse, error) {
	var orderID string

	err := s.store.WithTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		b, err := s.lockBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.BookingType != models.BookingTypeArtist || b.Status != models.BookingStatusPending {
			return ErrBookingNotFound
		}
		if b.CustomerID != customerID {
			return ErrForbidden
		}

		payment, err := s.payments.FindPending(ctx, tx, b.ID)
		if err != nil {
			return err
		}
		orderID, err = s.createOrder(ctx, b, payment)
		if err != nil {
			return err
		}
		return s.payments.AttachOrder(ctx, tx, payment, orderID)
	})
	if err != nil {
		return nil, err
	}

	return &models.PaymentInitiationResponse{BookingID: bookingID, PGOrderID: orderID}, nil
}

// Confirm settles a pending booking. Slot capacity is re-checked and
// consumed under a row lock, and the gateway is asked about the payment
// while that lock is held, so concurrent confirms on one slot serialize and
// cannot oversell. A failed verification rolls everything back.
func (s *BookingService) Confirm(ctx context.Context, bookingID, customerID int64) (*models.ConfirmResponse, error) {
	var confirmed *models.Booking

	err := s.store.WithTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		b, err := s.lockBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.Status != models.BookingStatusPending {
			return ErrBookingNotFound
		}
		if b.CustomerID != customerID {
			return ErrForbidden
		}

		if err := s.targetFor(b).lockAndConsume(ctx, tx); err != nil {
			if errors.Is(err, ErrSlotUnavailable) {
				s.log.LogBooking("SLOT_UNAVAILABLE", b.BookingUUID, fmt.Sprintf("Slot %d exhausted before confirmation", b.SlotID()))
			}
			return err
		}

		payment, err := s.payments.FindPending(ctx, tx, b.ID)
		if err != nil {
			return err
		}
		if payment.PGOrderID == nil {
			return ErrPaymentVerificationFailed
		}

		paid, err := s.gateway.VerifyPayment(ctx, *payment.PGOrderID)
		if err != nil {
			if errors.Is(err, ErrGatewayFailure) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrGatewayFailure, err)
		}
		if !paid {
			s.log.LogPayment("VERIFY_FAILED", *payment.PGOrderID, fmt.Sprintf("Booking %s not paid", b.BookingUUID))
			return ErrPaymentVerificationFailed
		}

		if err := s.payments.MarkSucceeded(ctx, tx, payment); err != nil {
			return err
		}

		now := s.now()
		b.Status = models.BookingStatusConfirmed
		b.ConfirmationTime = &now
		b.UpdatedTime = now
		if err := tx.UpdateBooking(ctx, b); err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}
		confirmed = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.LogBooking("CONFIRMED", confirmed.BookingUUID, fmt.Sprintf("Payable %.2f", confirmed.PayableAmount))
	s.publishBookingEvent(models.EventBookingConfirmed, confirmed)
	return &models.ConfirmResponse{BookingAmount: confirmed.PayableAmount, Message: confirmedMessage}, nil
}

// GetBooking returns a booking with its payments to the customer who made
// it or the supplier it was made with.
func (s *BookingService) GetBooking(ctx context.Context, bookingID int64, principal models.Principal) (*models.BookingDetails, error) {
	b, err := s.store.GetBooking(ctx, bookingID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}

	switch {
	case principal.Role == models.RoleCustomer && b.CustomerID == principal.ID:
	case principal.Role == models.RoleSupplier && b.SupplierID == principal.ID:
	default:
		return nil, ErrForbidden
	}

	payments, err := s.payments.ListForBooking(ctx, s.store, b.ID)
	if err != nil {
		return nil, err
	}
	return &models.BookingDetails{Booking: b, Payments: payments}, nil
}

func (s *BookingService) lockBooking(ctx context.Context, tx storage.Tx, bookingID int64) (*models.Booking, error) {
	b, err := tx.LockBooking(ctx, bookingID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock booking: %w", err)
	}
	return b, nil
}
