package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"booking-service/internal/logger"
	"booking-service/internal/utils"
)

var ErrStripeClientInitFailed = errors.New("failed to initialize Stripe client")

// paymentIntents is the slice of the Stripe client the gateway needs.
type paymentIntents interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeGateway maps gateway orders onto Stripe PaymentIntents. The order
// id handed back to the booking flow is the PaymentIntent id.
type StripeGateway struct {
	intents  paymentIntents
	currency string
	log      *logger.Logger
}

func NewStripeGateway(secretKey, currency string, log *logger.Logger) (*StripeGateway, error) {
	if secretKey == "" {
		log.Error("STRIPE", "STRIPE_SECRET_KEY not set")
		return nil, ErrStripeClientInitFailed
	}

	sc := client.New(secretKey, nil)
	if sc == nil {
		log.Error("STRIPE", "Failed to initialize Stripe client")
		return nil, ErrStripeClientInitFailed
	}

	log.Info("STRIPE", "Stripe client initialized successfully")
	return &StripeGateway{intents: sc.PaymentIntents, currency: currency, log: log}, nil
}

func (g *StripeGateway) CreateOrder(ctx context.Context, req OrderRequest) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(utils.ToMinorUnits(req.Amount)),
		Currency:    stripe.String(g.currency),
		Description: stripe.String(req.Description),
		Metadata: map[string]string{
			"booking_uuid":     req.BookingUUID,
			"transaction_code": req.TransactionCode,
		},
	}
	params.Context = ctx
	// a retried create for the same payment row must not open a second intent
	params.SetIdempotencyKey(req.TransactionCode)

	pi, err := g.intents.New(params)
	if err != nil {
		g.log.Error("STRIPE", fmt.Sprintf("Failed to create payment intent for %s: %v", req.BookingUUID, err))
		return "", fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}

	g.log.LogPayment("INTENT_CREATED", pi.ID, fmt.Sprintf("PaymentIntent for %s, amount %d %s", req.BookingUUID, pi.Amount, pi.Currency))
	return pi.ID, nil
}

func (g *StripeGateway) VerifyPayment(ctx context.Context, orderID string) (bool, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.intents.Get(orderID, params)
	if err != nil {
		g.log.Error("STRIPE", fmt.Sprintf("Failed to retrieve payment intent %s: %v", orderID, err))
		return false, fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}

	g.log.LogPayment("INTENT_STATUS", pi.ID, string(pi.Status))
	return pi.Status == stripe.PaymentIntentStatusSucceeded, nil
}
