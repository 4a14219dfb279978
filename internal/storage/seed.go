package storage

import (
	"time"

	"booking-service/internal/models"
)

// SeedDemo loads a small catalogue so the memory driver can serve requests
// locally: one host with an experience, one artist, and a promo code.
func (s *InMemoryStore) SeedDemo(now time.Time) {
	s.AddCustomer(&models.Customer{ID: 1, Name: "Asha Rao", EmailID: "asha@example.com"})
	s.AddSupplier(&models.Supplier{ID: 2, Name: "Pottery Studio", EmailID: "studio@example.com"})
	s.AddSupplier(&models.Supplier{ID: 3, Name: "Kabir Quartet", EmailID: "kabir@example.com"})

	s.AddExperience(&models.Experience{
		ID:            10,
		HostID:        2,
		Title:         "Wheel Throwing for Beginners",
		GuestLimit:    12,
		PricePerGuest: 500,
		VenueAddress:  "14 Residency Road",
		VenueCity:     "Bengaluru",
		VenueState:    "Karnataka",
		VenueCountry:  "India",
	})
	start := now.Add(72 * time.Hour).Truncate(time.Hour)
	s.AddExperienceSlot(&models.ExperienceSlot{
		ID:                  20,
		ExperienceID:        10,
		StartTime:           start,
		EndTime:             start.Add(2 * time.Hour),
		RemainingGuestLimit: 12,
		IsActive:            true,
	})
	s.AddArtistSlot(&models.ArtistSlot{
		ID:        30,
		ArtistID:  3,
		Price:     15000,
		StartTime: start.Add(24 * time.Hour),
		EndTime:   start.Add(27 * time.Hour),
		IsActive:  true,
	})

	maxDiscount := 500.0
	s.AddPromoCode(&models.PromoCode{
		ID:                40,
		Code:              "WELCOME10",
		Type:              models.PromoCodePercent,
		Description:       "10% off your first booking",
		MinPurchaseAmount: 500,
		MaxDiscountAmount: &maxDiscount,
		DiscountPercent:   10,
		StartTime:         now.Add(-24 * time.Hour),
		EndTime:           now.Add(90 * 24 * time.Hour),
		Visible:           true,
		Status:            models.PromoCodeActive,
	})
}
