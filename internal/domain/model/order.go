package model

import "time"

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is a marketplace purchase order as served by the upstream API.
type Order struct {
	ID            string      `json:"id"`
	UserID        string      `json:"userId"`
	UserName      string      `json:"userName"`
	UserEmail     string      `json:"userEmail"`
	VehicleID     string      `json:"carId"`
	Amount        float64     `json:"amount"`
	Status        OrderStatus `json:"status"`
	PaymentStatus string      `json:"paymentStatus"`
	Notes         string      `json:"notes,omitempty"`
	Country       string      `json:"country"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// OrderUpdate carries the mutable order fields.
type OrderUpdate struct {
	Status OrderStatus `json:"status"`
	Notes  string      `json:"notes,omitempty"`
}
