package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Venue struct {
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Country string `json:"country" validate:"required"`
}

type Experience struct {
	bun.BaseModel `bun:"table:experience,alias:e"`

	ID            int64   `json:"id" bun:"id,pk,autoincrement"`
	HostID        int64   `json:"host_id" bun:"host_id,notnull"`
	Title         string  `json:"title" bun:"title,notnull"`
	GuestLimit    int     `json:"guest_limit" bun:"guest_limit,notnull"`
	PricePerGuest float64 `json:"price_per_guest" bun:"price_per_guest,notnull"`
	VenueAddress  string  `json:"venue_address" bun:"venue_address"`
	VenueCity     string  `json:"venue_city" bun:"venue_city"`
	VenueState    string  `json:"venue_state" bun:"venue_state"`
	VenueCountry  string  `json:"venue_country" bun:"venue_country"`
}

func (e *Experience) Venue() *Venue {
	return &Venue{Address: e.VenueAddress, City: e.VenueCity, State: e.VenueState, Country: e.VenueCountry}
}

type ExperienceSlot struct {
	bun.BaseModel `bun:"table:experience_slot,alias:es"`

	ID                  int64       `json:"id" bun:"id,pk,autoincrement"`
	ExperienceID        int64       `json:"experience_id" bun:"experience_id,notnull"`
	StartTime           time.Time   `json:"start_time" bun:"start_time,notnull"`
	EndTime             time.Time   `json:"end_time" bun:"end_time,notnull"`
	RemainingGuestLimit int         `json:"remaining_guest_limit" bun:"remaining_guest_limit,notnull"`
	IsActive            bool        `json:"is_active" bun:"is_active,notnull"`
	Experience          *Experience `json:"experience,omitempty" bun:"rel:belongs-to,join:experience_id=id"`
}

type ArtistSlot struct {
	bun.BaseModel `bun:"table:artist_slot,alias:ars"`

	ID           int64     `json:"id" bun:"id,pk,autoincrement"`
	ArtistID     int64     `json:"artist_id" bun:"artist_id,notnull"`
	Price        float64   `json:"price" bun:"price,notnull"`
	StartTime    time.Time `json:"start_time" bun:"start_time,notnull"`
	EndTime      time.Time `json:"end_time" bun:"end_time,notnull"`
	IsBooked     bool      `json:"is_booked" bun:"is_booked,notnull"`
	IsActive     bool      `json:"is_active" bun:"is_active,notnull"`
	VenueAddress *string   `json:"venue_address,omitempty" bun:"venue_address"`
	VenueCity    *string   `json:"venue_city,omitempty" bun:"venue_city"`
	VenueState   *string   `json:"venue_state,omitempty" bun:"venue_state"`
	VenueCountry *string   `json:"venue_country,omitempty" bun:"venue_country"`
	Artist       *Supplier `json:"artist,omitempty" bun:"rel:belongs-to,join:artist_id=id"`
}

// SetVenue records where the artist will perform.
func (s *ArtistSlot) SetVenue(v Venue) {
	s.VenueAddress = &v.Address
	s.VenueCity = &v.City
	s.VenueState = &v.State
	s.VenueCountry = &v.Country
}

type PromoCodeType string

const (
	PromoCodeFlat    PromoCodeType = "flat"
	PromoCodePercent PromoCodeType = "percent"
)

type PromoCodeStatus string

const (
	PromoCodeActive   PromoCodeStatus = "active"
	PromoCodeInactive PromoCodeStatus = "inactive"
	PromoCodeDeleted  PromoCodeStatus = "deleted"
)

type PromoCode struct {
	bun.BaseModel `bun:"table:promo_code,alias:pc"`

	ID                 int64           `json:"id" bun:"id,pk,autoincrement"`
	Code               string          `json:"code" bun:"code,notnull"`
	Type               PromoCodeType   `json:"type" bun:"type,notnull"`
	Description        string          `json:"description" bun:"description"`
	MinPurchaseAmount  float64         `json:"min_purchase_amount" bun:"min_purchase_amount,notnull"`
	MaxDiscountAmount  *float64        `json:"max_discount_amount,omitempty" bun:"max_discount_amount"` // nil is uncapped
	FlatDiscountAmount float64         `json:"flat_discount_amount" bun:"flat_discount_amount,notnull"`
	DiscountPercent    float64         `json:"discount_percent" bun:"discount_percent,notnull"`
	StartTime          time.Time       `json:"start_time" bun:"start_time,notnull"`
	EndTime            time.Time       `json:"end_time" bun:"end_time,notnull"`
	Visible            bool            `json:"visible" bun:"visible,notnull"`
	Status             PromoCodeStatus `json:"status" bun:"status,notnull"`
}

// ActiveAt reports whether the code can be redeemed at t.
func (p *PromoCode) ActiveAt(t time.Time) bool {
	return p.Status == PromoCodeActive && !t.Before(p.StartTime) && !t.After(p.EndTime)
}

type Customer struct {
	bun.BaseModel `bun:"table:customer,alias:c"`

	ID      int64  `json:"id" bun:"id,pk,autoincrement"`
	Name    string `json:"name" bun:"name,notnull"`
	EmailID string `json:"email_id" bun:"email_id,notnull"`
}

type Supplier struct {
	bun.BaseModel `bun:"table:supplier,alias:s"`

	ID      int64  `json:"id" bun:"id,pk,autoincrement"`
	Name    string `json:"name" bun:"name,notnull"`
	EmailID string `json:"email_id" bun:"email_id,notnull"`
}
