package services

import (
	"context"

	"booking-service/internal/models"
	"booking-service/internal/utils"
)

// PricingEngine turns an order amount and an optional promo code into the
// amounts stored on a booking.
type PricingEngine struct {
	promos  *PromoResolver
	taxRate float64
}

func NewPricingEngine(promos *PromoResolver, taxRate float64) *PricingEngine {
	return &PricingEngine{promos: promos, taxRate: taxRate}
}

func (e *PricingEngine) ComputeCheckout(ctx context.Context, total float64, code string) (*models.CheckoutDetails, error) {
	promo, err := e.promos.Resolve(ctx, code, total)
	if err != nil {
		return nil, err
	}
	return e.Price(total, promo), nil
}

// Price applies tax to the full order amount and subtracts the discount.
// Tax is charged on the pre-discount total.
func (e *PricingEngine) Price(total float64, promo PromoResult) *models.CheckoutDetails {
	subTotal := utils.RoundMoney(total)
	tax := utils.RoundMoney(total * e.taxRate)
	return &models.CheckoutDetails{
		SubTotal:          subTotal,
		ServiceTax:        tax,
		PromoDiscount:     promo.Discount,
		PayableAmount:     utils.RoundMoney(subTotal + tax - promo.Discount),
		PromoCodeID:       promo.PromoCodeID,
		PromoErrorMessage: promo.ErrorMessage,
	}
}
