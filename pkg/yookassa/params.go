package yookassa

import (
	"encoding/json"
	"fmt"

	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
)

// Webhook event names delivered by the provider.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentCanceled  = "payment.canceled"
)

// CreatePaymentParams contains the fields required to request a payment link.
type CreatePaymentParams struct {
	IdempotencyKey string
	AmountCents    int
	Currency       enums.Currency
	Description    string
	CustomerEmail  string
	CustomerPhone  string
	Items          []ReceiptItem
	Metadata       map[string]string
}

// ReceiptItem is one fiscal receipt line.
type ReceiptItem struct {
	Description    string
	Quantity       int
	UnitPriceCents int
	VATRate        enums.VATRate
}

// Payment is the provider-side payment object returned on creation.
type Payment struct {
	ID           string       `json:"id"`
	Status       string       `json:"status"`
	Paid         bool         `json:"paid"`
	Confirmation confirmation `json:"confirmation"`
}

// ConfirmationURL is the redirect link the customer completes payment at.
func (p Payment) ConfirmationURL() string {
	return p.Confirmation.ConfirmationURL
}

// WebhookNotification is the callback payload; Object.ID carries the
// idempotency key the payment was created with.
type WebhookNotification struct {
	Type   string `json:"type"`
	Event  string `json:"event"`
	Object struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"object"`
}

// ParseNotification decodes a webhook body into a typed notification.
func ParseNotification(body []byte) (*WebhookNotification, error) {
	var note WebhookNotification
	if err := json.Unmarshal(body, &note); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed webhook payload")
	}
	if note.Object.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "webhook payload missing object id")
	}
	return &note, nil
}

type amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type confirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type receiptCustomer struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type receiptItem struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Amount      amount `json:"amount"`
	VATCode     int    `json:"vat_code"`
}

type receipt struct {
	Customer receiptCustomer `json:"customer"`
	Items    []receiptItem   `json:"items"`
}

type createPaymentRequest struct {
	Amount       amount            `json:"amount"`
	Capture      bool              `json:"capture"`
	Confirmation confirmation      `json:"confirmation"`
	Description  string            `json:"description,omitempty"`
	Receipt      *receipt          `json:"receipt,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

func (p CreatePaymentParams) toRequest(returnURL string) createPaymentRequest {
	req := createPaymentRequest{
		Amount:  amount{Value: formatAmount(p.AmountCents), Currency: string(p.Currency)},
		Capture: true,
		Confirmation: confirmation{
			Type:      "redirect",
			ReturnURL: returnURL,
		},
		Description: p.Description,
		Metadata:    p.Metadata,
	}

	if len(p.Items) > 0 {
		r := &receipt{
			Customer: receiptCustomer{Email: p.CustomerEmail, Phone: p.CustomerPhone},
		}
		for _, item := range p.Items {
			r.Items = append(r.Items, receiptItem{
				Description: item.Description,
				Quantity:    fmt.Sprintf("%d", item.Quantity),
				Amount:      amount{Value: formatAmount(item.UnitPriceCents), Currency: string(p.Currency)},
				VATCode:     vatCodeFor(item.VATRate),
			})
		}
		req.Receipt = r
	}

	return req
}

// formatAmount renders cents as the provider's decimal string ("250.00").
func formatAmount(cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// vatCodeFor maps the catalog VAT rate onto the provider's fiscal vat_code.
func vatCodeFor(rate enums.VATRate) int {
	switch rate {
	case enums.VATRateNone:
		return 1
	case enums.VATRate0:
		return 2
	case enums.VATRate10:
		return 3
	case enums.VATRate20:
		return 4
	case enums.VATRate5:
		return 7
	default:
		return 1
	}
}
