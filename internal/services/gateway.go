package services

import (
	"context"
	"fmt"
	"sync"

	"booking-service/internal/logger"
	"booking-service/internal/utils"
)

// OrderRequest describes the charge a gateway order is created for.
type OrderRequest struct {
	BookingUUID     string
	TransactionCode string
	Amount          float64
	Description     string
}

// PaymentGateway is the external payment provider. VerifyPayment returning
// false means the order is not paid yet; only transport or provider faults
// are errors.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (string, error)
	VerifyPayment(ctx context.Context, orderID string) (bool, error)
}

// SandboxGateway is an in-process gateway for local runs without provider
// credentials. Orders start paid when autoPay is set; otherwise MarkPaid
// settles them.
type SandboxGateway struct {
	mu      sync.Mutex
	orders  map[string]bool
	autoPay bool
	log     *logger.Logger
}

func NewSandboxGateway(autoPay bool, log *logger.Logger) *SandboxGateway {
	return &SandboxGateway{orders: make(map[string]bool), autoPay: autoPay, log: log}
}

func (g *SandboxGateway) CreateOrder(ctx context.Context, req OrderRequest) (string, error) {
	orderID := utils.GenerateOrderID()

	g.mu.Lock()
	g.orders[orderID] = g.autoPay
	g.mu.Unlock()

	g.log.LogPayment("SANDBOX_ORDER", orderID, fmt.Sprintf("Created order for %s amount %.2f", req.BookingUUID, req.Amount))
	return orderID, nil
}

func (g *SandboxGateway) MarkPaid(orderID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.orders[orderID]; ok {
		g.orders[orderID] = true
	}
}

func (g *SandboxGateway) VerifyPayment(ctx context.Context, orderID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.orders[orderID], nil
}
