package delivery

import (
	"fmt"

	"github.com/teleshopapp/teleshop-backend/pkg/enums"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
)

// MethodInfo is the public descriptor of one delivery method.
type MethodInfo struct {
	Code enums.DeliveryMethod `json:"code"`
	Name string               `json:"name"`
}

// Registry is the closed dictionary of carrier drivers, built once at
// startup. It mirrors the payment method registry so new carriers slot in
// without touching the order or payment workflow.
type Registry struct {
	drivers map[enums.DeliveryMethod]Driver
	order   []enums.DeliveryMethod
}

// NewRegistry builds the registry from the provided drivers.
func NewRegistry(drivers ...Driver) (*Registry, error) {
	if len(drivers) == 0 {
		return nil, fmt.Errorf("at least one delivery driver required")
	}
	reg := &Registry{drivers: make(map[enums.DeliveryMethod]Driver, len(drivers))}
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
func (r *Registry) Get(method enums.DeliveryMethod) (Driver, error) {
	driver, ok := r.drivers[method]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported delivery method %q", method))
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
