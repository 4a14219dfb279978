package services

import (
	"context"
	"errors"

	"booking-service/internal/models"
	"booking-service/internal/storage"
)

// bookingTarget is the slot a booking is made against. Each booking type
// keeps its own eligibility, pricing and capacity rules behind it.
type bookingTarget interface {
	// validate runs the unlocked pre-check and loads the slot.
	validate(ctx context.Context) error
	orderAmount() float64
	supplierID() int64
	describe(details *models.CheckoutDetails) *models.CheckoutResponse
	// prepare applies slot side effects inside the initiate transaction.
	prepare(ctx context.Context, tx storage.Tx) error
	attach(b *models.Booking)
	// ordersAtInitiate reports whether a gateway order is opened when the
	// booking is created.
	ordersAtInitiate() bool
	lockAndConsume(ctx context.Context, tx storage.Tx) error
}

func (s *BookingService) newTarget(bookingType models.BookingType, slotID int64, guests int, venue *models.Venue) bookingTarget {
	if bookingType == models.BookingTypeArtist {
		return &artistTarget{slots: s.slots, slotID: slotID, guests: guests, venue: venue}
	}
	return &experienceTarget{slots: s.slots, slotID: slotID, guests: guests}
}

func (s *BookingService) targetFor(b *models.Booking) bookingTarget {
	if b.BookingType == models.BookingTypeArtist {
		return &artistTarget{slots: s.slots, slotID: b.SlotID(), guests: b.NoOfGuests}
	}
	return &experienceTarget{slots: s.slots, slotID: b.SlotID(), guests: b.NoOfGuests}
}

type experienceTarget struct {
	slots  *SlotValidator
	slotID int64
	guests int
	slot   *models.ExperienceSlot
}

func (t *experienceTarget) validate(ctx context.Context) error {
	slot, err := t.slots.ValidateExperienceSlot(ctx, t.slotID, t.guests)
	if err != nil {
		return err
	}
	t.slot = slot
	return nil
}

func (t *experienceTarget) orderAmount() float64 {
	return t.slot.Experience.PricePerGuest * float64(t.guests)
}

func (t *experienceTarget) supplierID() int64 {
	return t.slot.Experience.HostID
}

func (t *experienceTarget) describe(details *models.CheckoutDetails) *models.CheckoutResponse {
	return &models.CheckoutResponse{
		CheckoutDetails: *details,
		Title:           t.slot.Experience.Title,
		SlotID:          t.slot.ID,
		SlotStartTime:   t.slot.StartTime,
		SlotEndTime:     t.slot.EndTime,
		NoOfGuests:      t.guests,
		Venue:           t.slot.Experience.Venue(),
	}
}

func (t *experienceTarget) prepare(ctx context.Context, tx storage.Tx) error {
	return nil
}

func (t *experienceTarget) attach(b *models.Booking) {
	id := t.slotID
	b.BookingType = models.BookingTypeExperience
	b.ExperienceSlotID = &id
	b.Status = models.BookingStatusPending
}

func (t *experienceTarget) ordersAtInitiate() bool {
	return true
}

func (t *experienceTarget) lockAndConsume(ctx context.Context, tx storage.Tx) error {
	lock, err := tx.LockExperienceSlot(ctx, t.slotID, t.guests)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrSlotUnavailable
	}
	if err != nil {
		return err
	}
	return lock.Consume(ctx)
}

type artistTarget struct {
	slots  *SlotValidator
	slotID int64
	guests int
	venue  *models.Venue
	slot   *models.ArtistSlot
}

func (t *artistTarget) validate(ctx context.Context) error {
	slot, err := t.slots.ValidateArtistSlot(ctx, t.slotID)
	if err != nil {
		return err
	}
	t.slot = slot
	return nil
}

func (t *artistTarget) orderAmount() float64 {
	return t.slot.Price
}

func (t *artistTarget) supplierID() int64 {
	return t.slot.ArtistID
}

func (t *artistTarget) describe(details *models.CheckoutDetails) *models.CheckoutResponse {
	resp := &models.CheckoutResponse{
		CheckoutDetails: *details,
		SlotID:          t.slot.ID,
		SlotStartTime:   t.slot.StartTime,
		SlotEndTime:     t.slot.EndTime,
		NoOfGuests:      t.guests,
		Venue:           t.venue,
	}
	if t.slot.Artist != nil {
		resp.Title = t.slot.Artist.Name
	}
	return resp
}

// prepare writes the customer's venue onto the slot. The venue lives on the
// slot, not the booking, so the latest initiate wins.
func (t *artistTarget) prepare(ctx context.Context, tx storage.Tx) error {
	if t.venue == nil {
		return ErrVenueRequired
	}
	return tx.UpdateArtistSlotVenue(ctx, t.slotID, *t.venue)
}

func (t *artistTarget) attach(b *models.Booking) {
	id := t.slotID
	b.BookingType = models.BookingTypeArtist
	b.ArtistSlotID = &id
	b.Status = models.BookingStatusPendingWithArtist
}

func (t *artistTarget) ordersAtInitiate() bool {
	return false
}

func (t *artistTarget) lockAndConsume(ctx context.Context, tx storage.Tx) error {
	lock, err := tx.LockArtistSlot(ctx, t.slotID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrSlotUnavailable
	}
	if err != nil {
		return err
	}
	return lock.Consume(ctx)
}
