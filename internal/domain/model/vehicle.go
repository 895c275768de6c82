//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// VehicleCondition describes the sale condition of a listing.
type VehicleCondition string

const (
	VehicleConditionNew       VehicleCondition = "new"
	VehicleConditionUsed      VehicleCondition = "used"
	VehicleConditionCertified VehicleCondition = "certified"
)

// VehicleSource records where a listing originated.
type VehicleSource string

const (
	VehicleSourceAPI    VehicleSource = "api"
	VehicleSourceManual VehicleSource = "manual"
)

// Vehicle is a marketplace vehicle listing as served by the upstream API.
type Vehicle struct {
	ID          string           `json:"id"`
	Make        string           `json:"make"`
	Model       string           `json:"model"`
	Year        int              `json:"year"`
	Price       float64          `json:"price"`
	Condition   VehicleCondition `json:"condition"`
	Mileage     int              `json:"mileage,omitempty"`
	Location    string           `json:"location"`
	Country     string           `json:"country"`
	Source      VehicleSource    `json:"source"`
	Featured    bool             `json:"featured"`
	Available   bool             `json:"available"`
	Images      []string         `json:"images"`
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// VehicleInput carries the fields accepted by create/update calls.
type VehicleInput struct {
	Make        string           `json:"make"`
	Model       string           `json:"model"`
	Year        int              `json:"year"`
	Price       float64          `json:"price"`
	Condition   VehicleCondition `json:"condition"`
	Mileage     int              `json:"mileage,omitempty"`
	Location    string           `json:"location"`
	Country     string           `json:"country"`
	Description string           `json:"description"`
	Featured    bool             `json:"featured"`
	Available   bool             `json:"available"`
}
