package ports

import (
	"context"

	"github.com/KrownWealth/afrozonauto-admin/internal/domain/model"
)

// VehicleClient is the upstream surface for vehicle listings.
type VehicleClient interface {
	ListVehicles(ctx context.Context, token string, p model.ListParams) ([]model.Vehicle, error)
	GetVehicle(ctx context.Context, token, id string) (model.Vehicle, error)
	CreateVehicle(ctx context.Context, token string, in model.VehicleInput) (model.Vehicle, error)
	UpdateVehicle(ctx context.Context, token, id string, in model.VehicleInput) (model.Vehicle, error)
	DeleteVehicle(ctx context.Context, token, id string) error
}

// UserClient is the upstream surface for customer accounts.
type UserClient interface {
	ListUsers(ctx context.Context, token string, p model.ListParams) ([]model.User, error)
	GetUser(ctx context.Context, token, id string) (model.User, error)
}

// OrderClient is the upstream surface for purchase orders.
type OrderClient interface {
	ListOrders(ctx context.Context, token string, p model.ListParams) ([]model.Order, error)
	GetOrder(ctx context.Context, token, id string) (model.Order, error)
	UpdateOrder(ctx context.Context, token, id string, in model.OrderUpdate) (model.Order, error)
}

// PaymentClient is the upstream surface for settlement records.
type PaymentClient interface {
	ListPayments(ctx context.Context, token string, p model.ListParams) ([]model.Payment, error)
	GetPayment(ctx context.Context, token, id string) (model.Payment, error)
	RefundPayment(ctx context.Context, token, id string, amount float64) (model.Payment, error)
}

// DashboardClient is the upstream surface for dashboard counters.
type DashboardClient interface {
	DashboardStats(ctx context.Context, token string) (model.DashboardStats, error)
}
