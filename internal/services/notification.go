package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"booking-service/internal/models"
)

// Notifier delivers a templated message. Callers treat delivery as best
// effort.
type Notifier interface {
	Send(ctx context.Context, recipients []string, template string, vars map[string]string) error
}

// EventPublisher receives booking lifecycle events.
type EventPublisher interface {
	PublishBookingEvent(event *models.BookingEvent) error
}

func (s *BookingService) notifyApproval(ctx context.Context, b *models.Booking) {
	customer, err := s.store.GetCustomer(ctx, b.CustomerID)
	if err != nil {
		s.log.Warn("BOOKING", fmt.Sprintf("Skipping approval notification for %s: customer lookup failed: %v", b.BookingUUID, err))
		return
	}
	artistName := ""
	if supplier, err := s.store.GetSupplier(ctx, b.SupplierID); err == nil {
		artistName = supplier.Name
	}

	vars := map[string]string{
		"customer_name":  customer.Name,
		"artist_name":    artistName,
		"booking_uuid":   b.BookingUUID,
		"payable_amount": fmt.Sprintf("%.2f", b.PayableAmount),
	}
	if err := s.notifier.Send(ctx, []string{customer.EmailID}, models.TemplateArtistBookingApproved, vars); err != nil {
		s.log.Error("BOOKING", fmt.Sprintf("Approval notification for %s failed: %v", b.BookingUUID, err))
		return
	}
	s.log.LogBooking("NOTIFIED", b.BookingUUID, "Customer notified that payment is pending")
}

func (s *BookingService) publishBookingEvent(eventType string, b *models.Booking) {
	if s.events == nil {
		return
	}

	event := &models.BookingEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		BookingID:     b.ID,
		BookingUUID:   b.BookingUUID,
		BookingType:   b.BookingType,
		Status:        b.Status,
		CustomerID:    b.CustomerID,
		SupplierID:    b.SupplierID,
		PayableAmount: b.PayableAmount,
		Timestamp:     time.Now().UTC(),
	}

	if err := s.events.PublishBookingEvent(event); err != nil {
		s.log.Error("KAFKA", fmt.Sprintf("Failed to publish %s event for booking %s: %v", eventType, b.BookingUUID, err))
		s.log.LogProcess("FALLBACK", fmt.Sprintf("Booking %s processed despite event publish failure", b.BookingUUID))
	}
}
