package delivery

import (
	"context"
	"fmt"
	"math"

	"github.com/teleshopapp/teleshop-backend/pkg/cdek"
	"github.com/teleshopapp/teleshop-backend/pkg/config"
	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
)

// cdekOrderTypeOnlineShop is the carrier's "internet shop" order type.
const cdekOrderTypeOnlineShop = 1

type cdekAPI interface {
	GetCities(ctx context.Context, filter cdek.CityFilter) ([]cdek.City, error)
	GetDeliveryPoints(ctx context.Context, filter cdek.DeliveryPointFilter) ([]cdek.DeliveryPoint, error)
	GetDeliveryPoint(ctx context.Context, code string) (*cdek.DeliveryPoint, error)
	CreateOrder(ctx context.Context, params cdek.CreateOrderParams) (string, error)
	GetOrderState(ctx context.Context, carrierOrderID string) (string, error)
}

// cdekCountries is the fixed set the carrier ships within.
var cdekCountries = []Country{
	{Name: "Россия", Code: "RU"},
	{Name: "Беларусь", Code: "BY"},
	{Name: "Казахстан", Code: "KZ"},
}

// cdekStateMap translates the carrier's native order states. Unknown states
// deliberately fall through to WAITING_FOR_PAYMENT: never claim progress or
// completion on a state we do not recognize.
var cdekStateMap = map[string]enums.DeliveryStatus{
	"ACCEPTED": enums.DeliveryStatusCreated,
	"CREATED":  enums.DeliveryStatusCreated,

	"RECEIVED_AT_SHIPMENT_WAREHOUSE":     enums.DeliveryStatusInProgress,
	"READY_FOR_SHIPMENT_IN_SENDER_CITY":  enums.DeliveryStatusInProgress,
	"READY_TO_SHIP_AT_SENDING_OFFICE":    enums.DeliveryStatusInProgress,
	"TAKEN_BY_TRANSPORTER_FROM_SENDER_CITY": enums.DeliveryStatusInProgress,

	"SENT_TO_TRANSIT_CITY":        enums.DeliveryStatusShipped,
	"ACCEPTED_IN_TRANSIT_CITY":    enums.DeliveryStatusShipped,
	"SENT_TO_RECIPIENT_CITY":      enums.DeliveryStatusShipped,
	"ACCEPTED_IN_RECIPIENT_CITY":  enums.DeliveryStatusShipped,
	"ACCEPTED_AT_PICK_UP_POINT":   enums.DeliveryStatusShipped,
	"TAKEN_BY_COURIER":            enums.DeliveryStatusShipped,

	"DELIVERED": enums.DeliveryStatusDelivered,

	"NOT_DELIVERED": enums.DeliveryStatusCancelled,
	"INVALID":       enums.DeliveryStatusCancelled,
}

// CDEKDriver adapts the carrier client to the delivery workflow.
type CDEKDriver struct {
	api cdekAPI
	cfg config.CDEKConfig
}

// NewCDEKDriver wraps the carrier client.
func NewCDEKDriver(client *cdek.Client, cfg config.CDEKConfig) (*CDEKDriver, error) {
	if client == nil {
		return nil, fmt.Errorf("cdek client required")
	}
	return &CDEKDriver{api: client, cfg: cfg}, nil
}

func (d *CDEKDriver) Method() enums.DeliveryMethod {
	return enums.DeliveryMethodCDEK
}

func (d *CDEKDriver) DisplayName() string {
	return "СДЭК"
}

func (d *CDEKDriver) GetCountries(ctx context.Context) []Country {
	out := make([]Country, len(cdekCountries))
	copy(out, cdekCountries)
	return out
}

func (d *CDEKDriver) GetCities(ctx context.Context, filter CityFilter) ([]City, error) {
	carrierFilter := cdek.CityFilter{City: filter.City}
	if filter.CountryCode != "" {
		carrierFilter.CountryCodes = []string{filter.CountryCode}
	}

	cities, err := d.api.GetCities(ctx, carrierFilter)
	if err != nil {
		return nil, err
	}

	out := make([]City, 0, len(cities))
	for _, city := range cities {
		out = append(out, City{
			Code:        city.Code,
			Name:        city.City,
			Region:      city.Region,
			CountryCode: city.CountryCode,
		})
	}
	return out, nil
}

func (d *CDEKDriver) GetDeliveryPoints(ctx context.Context, filter DeliveryPointFilter) ([]DeliveryPoint, error) {
	points, err := d.api.GetDeliveryPoints(ctx, cdek.DeliveryPointFilter{CityCode: filter.CityCode})
	if err != nil {
		return nil, err
	}

	out := make([]DeliveryPoint, 0, len(points))
	for _, point := range points {
		out = append(out, convertDeliveryPoint(point))
	}
	return out, nil
}

func (d *CDEKDriver) GetDeliveryPointInfo(ctx context.Context, code string) (*DeliveryPoint, error) {
	point, err := d.api.GetDeliveryPoint(ctx, code)
	if err != nil {
		return nil, err
	}
	converted := convertDeliveryPoint(*point)
	return &converted, nil
}

// CreateShipment resolves the order's delivery point, builds the package from
// the line-item snapshot, and registers the carrier order.
func (d *CDEKDriver) CreateShipment(ctx context.Context, order *models.Order) (string, error) {
	if order == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	if order.User == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order user not loaded")
	}

	point, err := d.api.GetDeliveryPoint(ctx, order.DeliveryPointCode)
	if err != nil {
		return "", err
	}

	pkg, err := d.buildPackage(order)
	if err != nil {
		return "", err
	}

	params := cdek.CreateOrderParams{
		Type:       cdekOrderTypeOnlineShop,
		Number:     order.ID.String(),
		TariffCode: d.cfg.TariffCode,
		FromLocation: cdek.OrderLocation{
			Code:    d.cfg.FromCityCode,
			Address: d.cfg.FromAddress,
		},
		ToLocation: cdek.OrderLocation{
			Code:    point.Location.CityCode,
			Address: point.Location.Address,
		},
		Packages:  []cdek.Package{pkg},
		Recipient: recipientFromUser(order.User),
	}

	return d.api.CreateOrder(ctx, params)
}

// GetStatus maps the carrier state for the order. An order without a carrier
// reference has not been shipped yet; report it as waiting without any
// outbound call.
func (d *CDEKDriver) GetStatus(ctx context.Context, order *models.Order) (enums.DeliveryStatus, error) {
	if order == nil || order.CarrierOrderID == nil || *order.CarrierOrderID == "" {
		return enums.DeliveryStatusWaitingForPayment, nil
	}

	state, err := d.api.GetOrderState(ctx, *order.CarrierOrderID)
	if err != nil {
		return "", err
	}
	if mapped, ok := cdekStateMap[state]; ok {
		return mapped, nil
	}
	return enums.DeliveryStatusWaitingForPayment, nil
}

// buildPackage flattens the order lines into a single parcel. Item weight is
// kg scaled to the carrier's grams; parcel dimensions take the largest line
// dimension, falling back to the configured minimums.
func (d *CDEKDriver) buildPackage(order *models.Order) (cdek.Package, error) {
	if len(order.Details) == 0 {
		return cdek.Package{}, pkgerrors.New(pkgerrors.CodeValidation, "order has no line items")
	}

	pkg := cdek.Package{
		Number: order.ID.String(),
		Length: d.cfg.DefaultLengthCM,
		Width:  d.cfg.DefaultWidthCM,
		Height: d.cfg.DefaultHeightCM,
	}

	for _, detail := range order.Details {
		variation := detail.Variation
		if variation == nil {
			return cdek.Package{}, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("variation %s not loaded for order %s", detail.VariationID, order.ID))
		}

		unitWeightG := int(math.Round(variation.WeightKG * 1000))
		unitCost := float64(detail.UnitPriceCents) / 100

		pkg.Items = append(pkg.Items, cdek.PackageItem{
			Name:    variation.ReceiptDescription(),
			WareKey: variation.ID.String(),
			Payment: cdek.ItemPayment{Value: unitCost * float64(detail.Quantity)},
			Cost:    unitCost,
			Weight:  unitWeightG,
			Amount:  detail.Quantity,
		})
		pkg.Weight += unitWeightG * detail.Quantity

		pkg.Length = maxDim(pkg.Length, variation.LengthCM)
		pkg.Width = maxDim(pkg.Width, variation.WidthCM)
		pkg.Height = maxDim(pkg.Height, variation.HeightCM)
	}

	return pkg, nil
}

func recipientFromUser(user *models.User) cdek.Recipient {
	recipient := cdek.Recipient{Name: user.FullName}
	if user.Phone != nil {
		recipient.Phones = []cdek.Phone{{Number: *user.Phone}}
	}
	if user.Email != nil {
		recipient.Email = *user.Email
	}
	return recipient
}

func convertDeliveryPoint(point cdek.DeliveryPoint) DeliveryPoint {
	return DeliveryPoint{
		Code:     point.Code,
		Name:     point.Name,
		Type:     point.Type,
		CityCode: point.Location.CityCode,
		City:     point.Location.City,
		Address:  point.Location.Address,
		Postal:   point.Location.Postal,
	}
}

func maxDim(current int, candidate float64) int {
	rounded := int(math.Ceil(candidate))
	if rounded > current {
		return rounded
	}
	return current
}
