package models

import (
	"time"

	"github.com/uptrace/bun"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PaymentMethodCOD PaymentMethod = "cod"
	PaymentMethodPG  PaymentMethod = "pg"
)

type Payment struct {
	bun.BaseModel `bun:"table:payment,alias:p"`

	ID              int64         `json:"id" bun:"id,pk,autoincrement"`
	BookingID       int64         `json:"booking_id" bun:"booking_id,notnull"`
	Amount          float64       `json:"amount" bun:"amount,notnull"`
	Status          PaymentStatus `json:"status" bun:"status,notnull"`
	TransactionCode string        `json:"transaction_code" bun:"transaction_code,notnull,unique"`
	PaymentMethod   PaymentMethod `json:"payment_method" bun:"payment_method,notnull"`
	PGOrderID       *string       `json:"pg_order_id,omitempty" bun:"pg_order_id"`
	CreatedTime     time.Time     `json:"created_time" bun:"created_time,notnull"`
	UpdatedTime     time.Time     `json:"updated_time" bun:"updated_time,notnull"`
}

func (p *Payment) Clone() *Payment {
	c := *p
	return &c
}
