package models

import "time"

// CheckoutDetails is the priced breakdown of an order.
type CheckoutDetails struct {
	SubTotal          float64 `json:"sub_total"`
	ServiceTax        float64 `json:"service_tax"`
	PromoDiscount     float64 `json:"promo_discount"`
	PayableAmount     float64 `json:"payable_amount"`
	PromoCodeID       *int64  `json:"promo_code_id"`
	PromoErrorMessage *string `json:"promo_error_message"`
}

type CheckoutRequest struct {
	BookingType BookingType `json:"booking_type" validate:"required,oneof=experience artist"`
	SlotID      int64       `json:"slot_id" validate:"required,gt=0"`
	NoOfGuests  int         `json:"no_of_guests" validate:"required,min=1"`
	PromoCode   string      `json:"promo_code" validate:"omitempty,max=64"`
	Venue       *Venue      `json:"venue"`
}

type CheckoutResponse struct {
	CheckoutDetails
	Title         string    `json:"title"`
	SlotID        int64     `json:"slot_id"`
	SlotStartTime time.Time `json:"slot_start_time"`
	SlotEndTime   time.Time `json:"slot_end_time"`
	NoOfGuests    int       `json:"no_of_guests"`
	Venue         *Venue    `json:"venue"`
}

type InitiateRequest struct {
	BookingType BookingType `json:"booking_type" validate:"required,oneof=experience artist"`
	SlotID      int64       `json:"slot_id" validate:"required,gt=0"`
	NoOfGuests  int         `json:"no_of_guests" validate:"required,min=1"`
	PromoCode   string      `json:"promo_code" validate:"omitempty,max=64"`
	Venue       *Venue      `json:"venue" validate:"required_if=BookingType artist"`
}

type InitiateResponse struct {
	BookingID   int64   `json:"booking_id"`
	BookingUUID string  `json:"booking_uuid"`
	PGOrderID   *string `json:"pg_order_id"`
}

type PaymentInitiationResponse struct {
	BookingID int64  `json:"booking_id"`
	PGOrderID string `json:"pg_order_id"`
}

type ConfirmResponse struct {
	BookingAmount float64 `json:"booking_amount"`
	Message       string  `json:"message"`
}
