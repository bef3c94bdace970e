package enums

import "fmt"

// VATRate is the tax rate attached to a good for receipt generation.
type VATRate string

const (
	VATRateNone VATRate = "none"
	VATRate0    VATRate = "vat_0"
	VATRate5    VATRate = "vat_5"
	VATRate10   VATRate = "vat_10"
	VATRate20   VATRate = "vat_20"
)

var validVATRates = []VATRate{
	VATRateNone,
	VATRate0,
	VATRate5,
	VATRate10,
	VATRate20,
}

// IsValid reports whether the value is a known VATRate.
func (v VATRate) IsValid() bool {
	for _, candidate := range validVATRates {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVATRate converts the raw string to VATRate.
func ParseVATRate(value string) (VATRate, error) {
	for _, candidate := range validVATRates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vat rate %q", value)
}
