package model

// DashboardStats aggregates the headline counters shown on the dashboards.
type DashboardStats struct {
	TotalUsers     int     `json:"totalUsers"`
	TotalVehicles  int     `json:"totalCars"`
	TotalOrders    int     `json:"totalOrders"`
	TotalRevenue   float64 `json:"totalRevenue"`
	PendingOrders  int     `json:"pendingOrders"`
	APIVehicles    int     `json:"apiCars"`
	ManualVehicles int     `json:"manualCars"`
}
