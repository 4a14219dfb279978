package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booking-service/internal/models"
	"booking-service/internal/storage"
)

type SlotReader interface {
	GetExperienceSlot(ctx context.Context, id int64) (*models.ExperienceSlot, error)
	GetArtistSlot(ctx context.Context, id int64) (*models.ArtistSlot, error)
}

// SlotValidator is the unlocked eligibility pre-check run before a booking
// is priced. Confirmation re-checks capacity under a row lock.
type SlotValidator struct {
	slots SlotReader
	now   func() time.Time
}

func NewSlotValidator(slots SlotReader, now func() time.Time) *SlotValidator {
	return &SlotValidator{slots: slots, now: now}
}

func (v *SlotValidator) ValidateExperienceSlot(ctx context.Context, slotID int64, guests int) (*models.ExperienceSlot, error) {
	if guests < 1 {
		return nil, ErrInvalidGuestCount
	}

	slot, err := v.slots.GetExperienceSlot(ctx, slotID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrSlotUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load experience slot: %w", err)
	}
	if !slot.IsActive || slot.StartTime.Before(v.now()) || slot.Experience == nil {
		return nil, ErrSlotUnavailable
	}
	if slot.RemainingGuestLimit < guests {
		return nil, ErrGuestLimitExceeded
	}
	return slot, nil
}

func (v *SlotValidator) ValidateArtistSlot(ctx context.Context, slotID int64) (*models.ArtistSlot, error) {
	slot, err := v.slots.GetArtistSlot(ctx, slotID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrSlotUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load artist slot: %w", err)
	}
	if !slot.IsActive || slot.IsBooked || slot.StartTime.Before(v.now()) {
		return nil, ErrSlotUnavailable
	}
	return slot, nil
}
