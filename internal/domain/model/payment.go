package model

import "time"

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment is a settlement record for an order.
type Payment struct {
	ID            string        `json:"id"`
	OrderID       string        `json:"orderId"`
	Amount        float64       `json:"amount"`
	Status        PaymentStatus `json:"status"`
	Method        string        `json:"method"`
	TransactionID string        `json:"transactionId"`
	RefundAmount  float64       `json:"refundAmount,omitempty"`
	RefundedAt    *time.Time    `json:"refundedAt,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}
