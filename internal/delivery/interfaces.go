package delivery

import (
	"context"

	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
)

// Country is a carrier-agnostic country record.
type Country struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// City is a carrier-agnostic city record; Code is the carrier's numeric key.
type City struct {
	Code        int    `json:"code"`
	Name        string `json:"name"`
	Region      string `json:"region"`
	CountryCode string `json:"country_code"`
}

// DeliveryPoint is a pickup location identified by an opaque carrier code.
type DeliveryPoint struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	CityCode int    `json:"city_code"`
	City     string `json:"city"`
	Address  string `json:"address"`
	Postal   string `json:"postal_code"`
}

// CityFilter narrows the city lookup.
type CityFilter struct {
	CountryCode string
	City        string
}

// DeliveryPointFilter narrows the pickup-point lookup.
type DeliveryPointFilter struct {
	CityCode int
}

// Driver is one carrier integration. Lookups feed checkout UI; CreateShipment
// and GetStatus serve the post-payment workflow. Drivers own the mapping from
// the carrier's native status vocabulary into enums.DeliveryStatus.
type Driver interface {
	Method() enums.DeliveryMethod
	DisplayName() string

	GetCountries(ctx context.Context) []Country
	GetCities(ctx context.Context, filter CityFilter) ([]City, error)
	GetDeliveryPoints(ctx context.Context, filter DeliveryPointFilter) ([]DeliveryPoint, error)
	GetDeliveryPointInfo(ctx context.Context, code string) (*DeliveryPoint, error)

	CreateShipment(ctx context.Context, order *models.Order) (string, error)
	GetStatus(ctx context.Context, order *models.Order) (enums.DeliveryStatus, error)
}
