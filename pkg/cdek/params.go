package cdek

// CityFilter narrows the city lookup.
type CityFilter struct {
	CountryCodes []string
	City         string
	Size         int
	Page         int
}

// DeliveryPointFilter narrows the pickup-point lookup.
type DeliveryPointFilter struct {
	CityCode int
	Code     string
}

// City is one carrier city record.
type City struct {
	Code        int    `json:"code"`
	City        string `json:"city"`
	Region      string `json:"region"`
	CountryCode string `json:"country_code"`
}

// Location is the address block attached to a delivery point.
type Location struct {
	CityCode int     `json:"city_code"`
	City     string  `json:"city"`
	Address  string  `json:"address"`
	Postal   string  `json:"postal_code"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// DeliveryPoint is a pickup location identified by an opaque code.
type DeliveryPoint struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Location Location `json:"location"`
}

// PackageItem is one order line inside a shipment package.
type PackageItem struct {
	Name    string      `json:"name"`
	WareKey string      `json:"ware_key"`
	Payment ItemPayment `json:"payment"`
	Cost    float64     `json:"cost"`
	Weight  int         `json:"weight"`
	Amount  int         `json:"amount"`
}

// ItemPayment is the cash-on-delivery value; zero for prepaid orders.
type ItemPayment struct {
	Value float64 `json:"value"`
}

// Package is one parcel. Weight is grams, dimensions are cm.
type Package struct {
	Number string        `json:"number"`
	Weight int           `json:"weight"`
	Length int           `json:"length"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Items  []PackageItem `json:"items"`
}

// Phone is the recipient contact number.
type Phone struct {
	Number string `json:"number"`
}

// Recipient is the shipment addressee.
type Recipient struct {
	Name   string  `json:"name"`
	Phones []Phone `json:"phones"`
	Email  string  `json:"email,omitempty"`
}

// OrderLocation points at a city plus street address.
type OrderLocation struct {
	Code    int    `json:"code"`
	Address string `json:"address,omitempty"`
}

// CreateOrderParams is the shipment-creation payload.
type CreateOrderParams struct {
	Type         int           `json:"type"`
	Number       string        `json:"number"`
	TariffCode   int           `json:"tariff_code"`
	FromLocation OrderLocation `json:"from_location"`
	ToLocation   OrderLocation `json:"to_location"`
	Packages     []Package     `json:"packages"`
	Recipient    Recipient     `json:"recipient"`
}

type entityResponse struct {
	Entity struct {
		UUID  string `json:"uuid"`
		State string `json:"state"`
	} `json:"entity"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
