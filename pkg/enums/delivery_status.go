package enums

import "fmt"

// DeliveryStatus is the carrier-agnostic shipment state. Each carrier driver
// owns a mapping from its native status vocabulary into this set.
type DeliveryStatus string

const (
	DeliveryStatusCreated           DeliveryStatus = "CREATED"
	DeliveryStatusWaitingForPayment DeliveryStatus = "WAITING_FOR_PAYMENT"
	DeliveryStatusPaid              DeliveryStatus = "PAID"
	DeliveryStatusInProgress        DeliveryStatus = "IN_PROGRESS"
	DeliveryStatusShipped           DeliveryStatus = "SHIPPED"
	DeliveryStatusDelivered         DeliveryStatus = "DELIVERED"
	DeliveryStatusCancelled         DeliveryStatus = "CANCELLED"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusCreated,
	DeliveryStatusWaitingForPayment,
	DeliveryStatusPaid,
	DeliveryStatusInProgress,
	DeliveryStatusShipped,
	DeliveryStatusDelivered,
	DeliveryStatusCancelled,
}

// String implements fmt.Stringer.
func (d DeliveryStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (d DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryStatus converts the raw string to DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}
