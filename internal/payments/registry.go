package payments

import (
	"fmt"

	"github.com/teleshopapp/teleshop-backend/pkg/enums"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
)

// MethodInfo is the public descriptor of one payment method.
type MethodInfo struct {
	Code enums.PaymentMethod `json:"code"`
	Name string              `json:"name"`
}

// Registry is the closed dictionary of payment drivers. It is built once at
// startup; there is no dynamic registration.
type Registry struct {
	drivers map[enums.PaymentMethod]Driver
	order   []enums.PaymentMethod
}

// NewRegistry builds the registry from the provided drivers.
func NewRegistry(drivers ...Driver) (*Registry, error) {
	if len(drivers) == 0 {
		return nil, fmt.Errorf("at least one payment driver required")
	}
	reg := &Registry{drivers: make(map[enums.PaymentMethod]Driver, len(drivers))}
	for _, driver := range drivers {
		method := driver.Method()
		if !method.IsValid() {
			return nil, fmt.Errorf("driver reports invalid method %q", method)
		}
		if _, dup := reg.drivers[method]; dup {
			return nil, fmt.Errorf("duplicate driver for method %q", method)
		}
		reg.drivers[method] = driver
		reg.order = append(reg.order, method)
	}
	return reg, nil
}

// Get resolves the driver for a method.
func (r *Registry) Get(method enums.PaymentMethod) (Driver, error) {
	driver, ok := r.drivers[method]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported payment method %q", method))
	}
	return driver, nil
}

// List enumerates the registered methods in registration order.
func (r *Registry) List() []MethodInfo {
	infos := make([]MethodInfo, 0, len(r.order))
	for _, method := range r.order {
		infos = append(infos, MethodInfo{Code: method, Name: r.drivers[method].DisplayName()})
	}
	return infos
}
