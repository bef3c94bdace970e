package yookassa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/teleshopapp/teleshop-backend/pkg/config"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
	"github.com/teleshopapp/teleshop-backend/pkg/logger"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error")})
	client, err := NewClient(context.Background(), config.YooKassaConfig{
		ShopID:    "shop-1",
		SecretKey: "secret-1",
		ReturnURL: "https://shop.example/return",
		BaseURL:   baseURL,
	}, logg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestCreatePaymentSendsIdempotenceKeyAndAuth(t *testing.T) {
	var gotKey, gotUser, gotPass string
	var gotBody createPaymentRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotence-Key")
		gotUser, gotPass, _ = r.BasicAuth()
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "prov-1",
			"status": "pending",
			"paid":   false,
			"confirmation": map[string]string{
				"type":             "redirect",
				"confirmation_url": "https://pay.example/p/1",
			},
		})
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	payment, err := client.CreatePayment(context.Background(), CreatePaymentParams{
		IdempotencyKey: "key-123",
		AmountCents:    25000,
		Currency:       enums.CurrencyRUB,
		Description:    "Куртка / Чёрная M",
		CustomerEmail:  "buyer@example.com",
		Items: []ReceiptItem{
			{Description: "Куртка / Чёрная M", Quantity: 2, UnitPriceCents: 10000, VATRate: enums.VATRate20},
			{Description: "Шарф", Quantity: 1, UnitPriceCents: 5000, VATRate: enums.VATRateNone},
		},
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}

	if gotKey != "key-123" {
		t.Fatalf("expected idempotence key header, got %q", gotKey)
	}
	if gotUser != "shop-1" || gotPass != "secret-1" {
		t.Fatalf("expected basic auth credentials, got %q:%q", gotUser, gotPass)
	}
	if payment.ConfirmationURL() != "https://pay.example/p/1" {
		t.Fatalf("unexpected confirmation url %q", payment.ConfirmationURL())
	}

	if gotBody.Amount.Value != "250.00" {
		t.Fatalf("expected amount 250.00, got %q", gotBody.Amount.Value)
	}
	if !gotBody.Capture {
		t.Fatal("expected capture=true")
	}
	if gotBody.Confirmation.ReturnURL != "https://shop.example/return" {
		t.Fatalf("unexpected return url %q", gotBody.Confirmation.ReturnURL)
	}
	if gotBody.Receipt == nil || len(gotBody.Receipt.Items) != 2 {
		t.Fatalf("expected two receipt items, got %+v", gotBody.Receipt)
	}
	if gotBody.Receipt.Items[0].VATCode != 4 {
		t.Fatalf("expected vat_code 4 for 20%% VAT, got %d", gotBody.Receipt.Items[0].VATCode)
	}
}

func TestCreatePaymentMapsProviderErrors(t *testing.T) {
	cases := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{http.StatusBadRequest, pkgerrors.CodeValidation},
		{http.StatusConflict, pkgerrors.CodeIdempotency},
		{http.StatusInternalServerError, pkgerrors.CodeDependency},
	}

	for _, tt := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		client := testClient(t, srv.URL)

		_, err := client.CreatePayment(context.Background(), CreatePaymentParams{
			IdempotencyKey: "key",
			AmountCents:    100,
			Currency:       enums.CurrencyRUB,
		})
		srv.Close()

		var typed *pkgerrors.Error
		if !pkgerrors.As(err, &typed) {
			t.Fatalf("status %d: expected typed error, got %v", tt.status, err)
		}
		if typed.Code() != tt.code {
			t.Fatalf("status %d: expected code %s, got %s", tt.status, tt.code, typed.Code())
		}
	}
}

func TestCreatePaymentValidatesInput(t *testing.T) {
	client := testClient(t, "http://unused.invalid")

	if _, err := client.CreatePayment(context.Background(), CreatePaymentParams{AmountCents: 100}); err == nil {
		t.Fatal("expected error for missing idempotency key")
	}
	if _, err := client.CreatePayment(context.Background(), CreatePaymentParams{IdempotencyKey: "k"}); err == nil {
		t.Fatal("expected error for non-positive amount")
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[int]string{
		0:     "0.00",
		5:     "0.05",
		100:   "1.00",
		25001: "250.01",
	}
	for cents, want := range cases {
		if got := formatAmount(cents); got != want {
			t.Fatalf("formatAmount(%d) = %q, want %q", cents, got, want)
		}
	}
}

func TestParseNotification(t *testing.T) {
	body := []byte(`{"type":"notification","event":"payment.succeeded","object":{"id":"pay-1","status":"succeeded"}}`)
	note, err := ParseNotification(body)
	if err != nil {
		t.Fatalf("parse notification: %v", err)
	}
	if note.Event != EventPaymentSucceeded {
		t.Fatalf("unexpected event %q", note.Event)
	}
	if note.Object.ID != "pay-1" {
		t.Fatalf("unexpected object id %q", note.Object.ID)
	}

	if _, err := ParseNotification([]byte(`{`)); err == nil {
		t.Fatal("expected error for malformed body")
	}
	if _, err := ParseNotification([]byte(`{"event":"payment.succeeded","object":{}}`)); err == nil {
		t.Fatal("expected error for missing object id")
	}
}
