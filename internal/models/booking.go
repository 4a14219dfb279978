package models

import (
	"time"

	"github.com/uptrace/bun"
)

type BookingType string

const (
	BookingTypeExperience BookingType = "experience"
	BookingTypeArtist     BookingType = "artist"
)

type BookingStatus string

const (
	BookingStatusPendingWithArtist BookingStatus = "pending_with_artist"
	BookingStatusPending           BookingStatus = "pending"
	BookingStatusConfirmed         BookingStatus = "confirmed"
	BookingStatusCancelled         BookingStatus = "cancelled"
	BookingStatusCompleted         BookingStatus = "completed"
	BookingStatusFailed            BookingStatus = "failed"
)

type CancelledBy string

const (
	CancelledByCustomer CancelledBy = "customer"
	CancelledBySupplier CancelledBy = "supplier"
)

type Booking struct {
	bun.BaseModel `bun:"table:booking,alias:b"`

	ID               int64         `json:"id" bun:"id,pk,autoincrement"`
	BookingUUID      string        `json:"booking_uuid" bun:"booking_uuid,notnull,unique"`
	BookingType      BookingType   `json:"booking_type" bun:"booking_type,notnull"`
	CustomerID       int64         `json:"customer_id" bun:"customer_id,notnull"`
	SupplierID       int64         `json:"supplier_id" bun:"supplier_id,notnull"`
	ExperienceSlotID *int64        `json:"experience_slot_id,omitempty" bun:"experience_slot_id"`
	ArtistSlotID     *int64        `json:"artist_slot_id,omitempty" bun:"artist_slot_id"`
	NoOfGuests       int           `json:"no_of_guests" bun:"no_of_guests,notnull"`
	Status           BookingStatus `json:"status" bun:"status,notnull"`

	SubTotal      float64 `json:"sub_total" bun:"sub_total,notnull"`
	ServiceTax    float64 `json:"service_tax" bun:"service_tax,notnull"`
	PromoDiscount float64 `json:"promo_discount" bun:"promo_discount,notnull"`
	PayableAmount float64 `json:"payable_amount" bun:"payable_amount,notnull"`
	PromoCodeID   *int64  `json:"promo_code_id,omitempty" bun:"promo_code_id"`

	CancellationTime   *time.Time   `json:"cancellation_time,omitempty" bun:"cancellation_time"`
	CancelledBy        *CancelledBy `json:"cancelled_by,omitempty" bun:"cancelled_by"`
	CancellationReason *string      `json:"cancellation_reason,omitempty" bun:"cancellation_reason"`
	ConfirmationTime   *time.Time   `json:"confirmation_time,omitempty" bun:"confirmation_time"`

	CreatedTime time.Time `json:"created_time" bun:"created_time,notnull"`
	UpdatedTime time.Time `json:"updated_time" bun:"updated_time,notnull"`
}

// NewBooking builds a booking row with the priced amounts copied in. The
// caller attaches the slot reference and initial status.
func NewBooking(uuid string, customerID, supplierID int64, guests int, details *CheckoutDetails, now time.Time) *Booking {
	return &Booking{
		BookingUUID:   uuid,
		CustomerID:    customerID,
		SupplierID:    supplierID,
		NoOfGuests:    guests,
		SubTotal:      details.SubTotal,
		ServiceTax:    details.ServiceTax,
		PromoDiscount: details.PromoDiscount,
		PayableAmount: details.PayableAmount,
		PromoCodeID:   details.PromoCodeID,
		CreatedTime:   now,
		UpdatedTime:   now,
	}
}

// SlotID returns whichever slot reference is set.
func (b *Booking) SlotID() int64 {
	switch {
	case b.ExperienceSlotID != nil:
		return *b.ExperienceSlotID
	case b.ArtistSlotID != nil:
		return *b.ArtistSlotID
	}
	return 0
}

func (b *Booking) Clone() *Booking {
	c := *b
	return &c
}

// BookingDetails is a booking together with its payment attempts.
type BookingDetails struct {
	Booking  *Booking   `json:"booking"`
	Payments []*Payment `json:"payments"`
}
