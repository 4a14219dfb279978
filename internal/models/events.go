package models

import "time"

const (
	EventBookingInitiated = "booking.initiated"
	EventBookingApproved  = "booking.approved"
	EventBookingConfirmed = "booking.confirmed"
)

type BookingEvent struct {
	ID            string        `json:"id"`
	Type          string        `json:"type"`
	BookingID     int64         `json:"booking_id"`
	BookingUUID   string        `json:"booking_uuid"`
	BookingType   BookingType   `json:"booking_type"`
	Status        BookingStatus `json:"status"`
	CustomerID    int64         `json:"customer_id"`
	SupplierID    int64         `json:"supplier_id"`
	PayableAmount float64       `json:"payable_amount"`
	Timestamp     time.Time     `json:"timestamp"`
}

const TemplateArtistBookingApproved = "artist_booking_approved"

// NotificationEvent asks the notification consumer to deliver a templated
// message.
type NotificationEvent struct {
	ID         string            `json:"id"`
	Recipients []string          `json:"recipients"`
	Template   string            `json:"template"`
	Variables  map[string]string `json:"variables"`
	Timestamp  time.Time         `json:"timestamp"`
}
