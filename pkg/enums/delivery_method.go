package enums

import "fmt"

// DeliveryMethod identifies a pluggable carrier integration.
type DeliveryMethod string

const (
	DeliveryMethodCDEK DeliveryMethod = "cdek"
)

var validDeliveryMethods = []DeliveryMethod{
	DeliveryMethodCDEK,
}

// String implements fmt.Stringer.
func (d DeliveryMethod) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryMethod.
func (d DeliveryMethod) IsValid() bool {
	for _, candidate := range validDeliveryMethods {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryMethod converts the raw string to DeliveryMethod.
func ParseDeliveryMethod(value string) (DeliveryMethod, error) {
	for _, candidate := range validDeliveryMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery method %q", value)
}
