package enums

import "fmt"

// PaymentMethod identifies a pluggable payment gateway integration.
type PaymentMethod string

const (
	PaymentMethodYooKassa      PaymentMethod = "yookassa"
	PaymentMethodCloudPayments PaymentMethod = "cloudpayments"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodYooKassa,
	PaymentMethodCloudPayments,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts the raw string to PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
