package delivery

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/teleshopapp/teleshop-backend/pkg/cdek"
	"github.com/teleshopapp/teleshop-backend/pkg/config"
	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
)

type fakeCDEKAPI struct {
	points       map[string]cdek.DeliveryPoint
	createdOrder *cdek.CreateOrderParams
	carrierID    string
	state        string
	stateCalls   int
	stateErr     error
}

func (f *fakeCDEKAPI) GetCities(ctx context.Context, filter cdek.CityFilter) ([]cdek.City, error) {
	return []cdek.City{{Code: 44, City: "Москва", CountryCode: "RU"}}, nil
}

func (f *fakeCDEKAPI) GetDeliveryPoints(ctx context.Context, filter cdek.DeliveryPointFilter) ([]cdek.DeliveryPoint, error) {
	var out []cdek.DeliveryPoint
	for _, point := range f.points {
		out = append(out, point)
	}
	return out, nil
}

func (f *fakeCDEKAPI) GetDeliveryPoint(ctx context.Context, code string) (*cdek.DeliveryPoint, error) {
	if point, ok := f.points[code]; ok {
		return &point, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery point not found")
}

func (f *fakeCDEKAPI) CreateOrder(ctx context.Context, params cdek.CreateOrderParams) (string, error) {
	copied := params
	f.createdOrder = &copied
	return f.carrierID, nil
}

func (f *fakeCDEKAPI) GetOrderState(ctx context.Context, carrierOrderID string) (string, error) {
	f.stateCalls++
	if f.stateErr != nil {
		return "", f.stateErr
	}
	return f.state, nil
}

func testCDEKConfig() config.CDEKConfig {
	return config.CDEKConfig{
		TariffCode:      136,
		FromCityCode:    44,
		FromAddress:     "Москва, Тверская 1",
		DefaultLengthCM: 1,
		DefaultWidthCM:  1,
		DefaultHeightCM: 1,
	}
}

func testDriver(api *fakeCDEKAPI) *CDEKDriver {
	return &CDEKDriver{api: api, cfg: testCDEKConfig()}
}

func testPaidOrder() *models.Order {
	email := "buyer@example.com"
	phone := "+79990001122"
	variation := &models.GoodVariation{
		ID:       uuid.New(),
		Title:    "Чайник",
		WeightKG: 0.5,
		LengthCM: 20,
		WidthCM:  15,
		HeightCM: 10,
		Good:     &models.Good{Title: "Чайник"},
	}
	return &models.Order{
		ID:                uuid.New(),
		DeliveryMethod:    enums.DeliveryMethodCDEK,
		DeliveryPointCode: "MSK123",
		User: &models.User{
			FullName: "Иван Иванов",
			Email:    &email,
			Phone:    &phone,
		},
		Details: []models.OrderDetail{
			{VariationID: variation.ID, Quantity: 2, UnitPriceCents: 12500, Variation: variation},
		},
	}
}

func TestCreateShipmentBuildsCarrierOrder(t *testing.T) {
	api := &fakeCDEKAPI{
		carrierID: "carrier-uuid-1",
		points: map[string]cdek.DeliveryPoint{
			"MSK123": {
				Code: "MSK123",
				Location: cdek.Location{
					CityCode: 44,
					Address:  "Москва, Ленина 10",
				},
			},
		},
	}
	driver := testDriver(api)
	order := testPaidOrder()

	ref, err := driver.CreateShipment(context.Background(), order)
	if err != nil {
		t.Fatalf("create shipment: %v", err)
	}
	if ref != "carrier-uuid-1" {
		t.Fatalf("expected carrier ref, got %q", ref)
	}

	created := api.createdOrder
	if created == nil {
		t.Fatal("expected carrier order submitted")
	}
	if created.Type != 1 || created.TariffCode != 136 {
		t.Fatalf("unexpected type/tariff: %d/%d", created.Type, created.TariffCode)
	}
	if created.Number != order.ID.String() {
		t.Fatalf("expected order id as number, got %q", created.Number)
	}
	if created.FromLocation.Code != 44 || created.ToLocation.Code != 44 {
		t.Fatalf("unexpected locations: %+v", created)
	}
	if created.ToLocation.Address != "Москва, Ленина 10" {
		t.Fatalf("expected resolved point address, got %q", created.ToLocation.Address)
	}
	if len(created.Packages) != 1 {
		t.Fatalf("expected one package, got %d", len(created.Packages))
	}

	pkg := created.Packages[0]
	// 0.5 kg per unit, two units.
	if pkg.Weight != 1000 {
		t.Fatalf("expected total weight 1000g, got %d", pkg.Weight)
	}
	if pkg.Length != 20 || pkg.Width != 15 || pkg.Height != 10 {
		t.Fatalf("expected variation dimensions, got %dx%dx%d", pkg.Length, pkg.Width, pkg.Height)
	}
	if len(pkg.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(pkg.Items))
	}
	item := pkg.Items[0]
	if item.Cost != 125 {
		t.Fatalf("expected unit cost 125.00, got %v", item.Cost)
	}
	if item.Payment.Value != 250 {
		t.Fatalf("expected payment value 250.00, got %v", item.Payment.Value)
	}
	if item.Weight != 500 || item.Amount != 2 {
		t.Fatalf("unexpected item weight/amount: %d/%d", item.Weight, item.Amount)
	}

	if len(created.Recipient.Phones) != 1 || created.Recipient.Phones[0].Number != "+79990001122" {
		t.Fatalf("unexpected recipient phones: %+v", created.Recipient.Phones)
	}
	if created.Recipient.Name != "Иван Иванов" {
		t.Fatalf("unexpected recipient name: %q", created.Recipient.Name)
	}
}

func TestCreateShipmentDefaultDimensions(t *testing.T) {
	api := &fakeCDEKAPI{
		carrierID: "carrier-uuid-2",
		points: map[string]cdek.DeliveryPoint{
			"MSK123": {Code: "MSK123", Location: cdek.Location{CityCode: 44}},
		},
	}
	driver := testDriver(api)
	order := testPaidOrder()
	order.Details[0].Variation.LengthCM = 0
	order.Details[0].Variation.WidthCM = 0
	order.Details[0].Variation.HeightCM = 0

	if _, err := driver.CreateShipment(context.Background(), order); err != nil {
		t.Fatalf("create shipment: %v", err)
	}
	pkg := api.createdOrder.Packages[0]
	if pkg.Length != 1 || pkg.Width != 1 || pkg.Height != 1 {
		t.Fatalf("expected configured minimum dimensions, got %dx%dx%d", pkg.Length, pkg.Width, pkg.Height)
	}
}

func TestCreateShipmentUnknownDeliveryPoint(t *testing.T) {
	driver := testDriver(&fakeCDEKAPI{points: map[string]cdek.DeliveryPoint{}})
	order := testPaidOrder()

	_, err := driver.CreateShipment(context.Background(), order)
	var typed *pkgerrors.Error
	if !pkgerrors.As(err, &typed) || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestCreateShipmentUnloadedVariation(t *testing.T) {
	api := &fakeCDEKAPI{
		points: map[string]cdek.DeliveryPoint{
			"MSK123": {Code: "MSK123", Location: cdek.Location{CityCode: 44}},
		},
	}
	driver := testDriver(api)
	order := testPaidOrder()
	order.Details[0].Variation = nil

	_, err := driver.CreateShipment(context.Background(), order)
	var typed *pkgerrors.Error
	if !pkgerrors.As(err, &typed) || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestGetStatusWithoutCarrierRefSkipsCarrier(t *testing.T) {
	api := &fakeCDEKAPI{state: "DELIVERED"}
	driver := testDriver(api)
	order := testPaidOrder()

	status, err := driver.GetStatus(context.Background(), order)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if status != enums.DeliveryStatusWaitingForPayment {
		t.Fatalf("expected WAITING_FOR_PAYMENT, got %s", status)
	}
	if api.stateCalls != 0 {
		t.Fatal("expected no outbound call without a carrier reference")
	}
}

func TestGetStatusMapsCarrierStates(t *testing.T) {
	cases := []struct {
		state string
		want  enums.DeliveryStatus
	}{
		{"ACCEPTED", enums.DeliveryStatusCreated},
		{"RECEIVED_AT_SHIPMENT_WAREHOUSE", enums.DeliveryStatusInProgress},
		{"SENT_TO_RECIPIENT_CITY", enums.DeliveryStatusShipped},
		{"DELIVERED", enums.DeliveryStatusDelivered},
		{"NOT_DELIVERED", enums.DeliveryStatusCancelled},
		// Unknown states never claim progress or completion.
		{"SOME_FUTURE_STATE", enums.DeliveryStatusWaitingForPayment},
		{"", enums.DeliveryStatusWaitingForPayment},
	}

	for _, tc := range cases {
		api := &fakeCDEKAPI{state: tc.state}
		driver := testDriver(api)
		order := testPaidOrder()
		ref := "carrier-uuid-3"
		order.CarrierOrderID = &ref

		status, err := driver.GetStatus(context.Background(), order)
		if err != nil {
			t.Fatalf("state %q: %v", tc.state, err)
		}
		if status != tc.want {
			t.Fatalf("state %q: expected %s, got %s", tc.state, tc.want, status)
		}
	}
}

func TestGetCountriesIsStatic(t *testing.T) {
	driver := testDriver(&fakeCDEKAPI{})
	countries := driver.GetCountries(context.Background())
	if len(countries) != 3 {
		t.Fatalf("expected 3 countries, got %d", len(countries))
	}
	if countries[0].Code != "RU" {
		t.Fatalf("expected RU first, got %s", countries[0].Code)
	}
}
