package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-service/internal/models"
	"booking-service/internal/storage"
)

func TestSlotValidator(t *testing.T) {
	store := storage.NewInMemoryStore()
	store.AddExperience(&models.Experience{ID: 1, HostID: 9, Title: "Tasting", GuestLimit: 8, PricePerGuest: 900})
	store.AddExperienceSlot(&models.ExperienceSlot{ID: 2, ExperienceID: 1, StartTime: fixedNow.Add(time.Hour), RemainingGuestLimit: 4, IsActive: true})
	store.AddExperienceSlot(&models.ExperienceSlot{ID: 3, ExperienceID: 1, StartTime: fixedNow.Add(-time.Minute), RemainingGuestLimit: 4, IsActive: true})
	store.AddExperienceSlot(&models.ExperienceSlot{ID: 4, ExperienceID: 1, StartTime: fixedNow.Add(time.Hour), RemainingGuestLimit: 4, IsActive: false})
	store.AddArtistSlot(&models.ArtistSlot{ID: 5, ArtistID: 9, Price: 100, StartTime: fixedNow.Add(time.Hour), IsActive: true})
	store.AddArtistSlot(&models.ArtistSlot{ID: 6, ArtistID: 9, Price: 100, StartTime: fixedNow.Add(time.Hour), IsActive: true, IsBooked: true})
	// starting exactly now is still bookable
	store.AddArtistSlot(&models.ArtistSlot{ID: 7, ArtistID: 9, Price: 100, StartTime: fixedNow, IsActive: true})

	v := NewSlotValidator(store, func() time.Time { return fixedNow })
	ctx := context.Background()

	slot, err := v.ValidateExperienceSlot(ctx, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, "Tasting", slot.Experience.Title)

	_, err = v.ValidateExperienceSlot(ctx, 2, 5)
	assert.ErrorIs(t, err, ErrGuestLimitExceeded)
	_, err = v.ValidateExperienceSlot(ctx, 2, 0)
	assert.ErrorIs(t, err, ErrInvalidGuestCount)
	_, err = v.ValidateExperienceSlot(ctx, 3, 1)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	_, err = v.ValidateExperienceSlot(ctx, 4, 1)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	_, err = v.ValidateExperienceSlot(ctx, 99, 1)
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	_, err = v.ValidateArtistSlot(ctx, 5)
	assert.NoError(t, err)
	_, err = v.ValidateArtistSlot(ctx, 6)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	_, err = v.ValidateArtistSlot(ctx, 7)
	assert.NoError(t, err)
}
