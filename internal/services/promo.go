package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"booking-service/internal/logger"
	"booking-service/internal/models"
	"booking-service/internal/storage"
	"booking-service/internal/utils"
)

const invalidPromoMessage = "Invalid promo code"

// PromoResult is the outcome of resolving a promo code against an order.
// A nil PromoCodeID means no code is applied.
type PromoResult struct {
	Discount     float64
	PromoCodeID  *int64
	ErrorMessage *string
}

type PromoLookup interface {
	FindActivePromoCode(ctx context.Context, code string, at time.Time) (*models.PromoCode, error)
}

type PromoResolver struct {
	promos        PromoLookup
	strictMinimum bool
	now           func() time.Time
	log           *logger.Logger
}

func NewPromoResolver(promos PromoLookup, strictMinimum bool, now func() time.Time, log *logger.Logger) *PromoResolver {
	return &PromoResolver{promos: promos, strictMinimum: strictMinimum, now: now, log: log}
}

func promoMessage(msg string) *string {
	return &msg
}

// Resolve computes the discount a code grants on total. An unknown, expired,
// or inactive code is not an error: it yields a zero discount and a message
// for the customer. Only storage failures are returned as errors.
// The discount is capped at max_discount_amount and never exceeds total.
func (r *PromoResolver) Resolve(ctx context.Context, code string, total float64) (PromoResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return PromoResult{}, nil
	}

	promo, err := r.promos.FindActivePromoCode(ctx, code, r.now())
	if errors.Is(err, storage.ErrNotFound) {
		r.log.Debug("BOOKING", fmt.Sprintf("Promo code %q not found or inactive", code))
		return PromoResult{ErrorMessage: promoMessage(invalidPromoMessage)}, nil
	}
	if err != nil {
		return PromoResult{}, fmt.Errorf("failed to look up promo code: %w", err)
	}

	var result PromoResult
	if total < promo.MinPurchaseAmount {
		result.ErrorMessage = promoMessage(fmt.Sprintf("Code applicable for purchase amount greater than %s",
			formatAmount(promo.MinPurchaseAmount)))
		if r.strictMinimum {
			return result, nil
		}
	}

	switch promo.Type {
	case models.PromoCodeFlat:
		result.Discount = promo.FlatDiscountAmount
	case models.PromoCodePercent:
		result.Discount = utils.RoundMoney(total * promo.DiscountPercent / 100)
	default:
		r.log.Warn("BOOKING", fmt.Sprintf("Promo code %d has unknown type %q", promo.ID, promo.Type))
		return PromoResult{ErrorMessage: promoMessage(invalidPromoMessage)}, nil
	}

	if promo.MaxDiscountAmount != nil && result.Discount > *promo.MaxDiscountAmount {
		result.Discount = *promo.MaxDiscountAmount
	}
	result.Discount = math.Min(result.Discount, total)

	id := promo.ID
	result.PromoCodeID = &id
	return result, nil
}

// formatAmount drops a trailing ".00" so 500 reads as "500".
func formatAmount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
