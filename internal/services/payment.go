package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booking-service/internal/logger"
	"booking-service/internal/models"
	"booking-service/internal/storage"
	"booking-service/internal/utils"
)

// PaymentRecords owns the payment row lifecycle: one pending gateway
// payment per booking, an order id attached once known, success on
// verified confirmation.
type PaymentRecords struct {
	now func() time.Time
	log *logger.Logger
}

func NewPaymentRecords(now func() time.Time, log *logger.Logger) *PaymentRecords {
	return &PaymentRecords{now: now, log: log}
}

func (m *PaymentRecords) New(booking *models.Booking) *models.Payment {
	now := m.now()
	return &models.Payment{
		BookingID:       booking.ID,
		Amount:          booking.PayableAmount,
		Status:          models.PaymentStatusPending,
		TransactionCode: utils.GenerateTransactionCode(),
		PaymentMethod:   models.PaymentMethodPG,
		CreatedTime:     now,
		UpdatedTime:     now,
	}
}

func (m *PaymentRecords) FindPending(ctx context.Context, tx storage.Tx, bookingID int64) (*models.Payment, error) {
	payment, err := tx.GetPendingPayment(ctx, bookingID)
	if errors.Is(err, storage.ErrNotFound) {
		m.log.LogPayment("NOT_FOUND", fmt.Sprintf("booking:%d", bookingID), "No pending payment")
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return payment, nil
}

// AttachOrder replaces any earlier order id on the payment.
func (m *PaymentRecords) AttachOrder(ctx context.Context, tx storage.Tx, payment *models.Payment, orderID string) error {
	if payment.PGOrderID != nil && *payment.PGOrderID != orderID {
		m.log.LogPayment("ORDER_REPLACED", payment.TransactionCode, fmt.Sprintf("Order %s superseded by %s", *payment.PGOrderID, orderID))
	}
	payment.PGOrderID = &orderID
	payment.UpdatedTime = m.now()
	if err := tx.UpdatePayment(ctx, payment); err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}

func (m *PaymentRecords) MarkSucceeded(ctx context.Context, tx storage.Tx, payment *models.Payment) error {
	payment.Status = models.PaymentStatusSuccess
	payment.UpdatedTime = m.now()
	if err := tx.UpdatePayment(ctx, payment); err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	m.log.LogPayment("SUCCESS", payment.TransactionCode, fmt.Sprintf("Payment of %.2f settled", payment.Amount))
	return nil
}

func (m *PaymentRecords) ListForBooking(ctx context.Context, store storage.Store, bookingID int64) ([]*models.Payment, error) {
	payments, err := store.ListPayments(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
