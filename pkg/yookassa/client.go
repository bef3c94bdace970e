package yookassa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/teleshopapp/teleshop-backend/pkg/config"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
	"github.com/teleshopapp/teleshop-backend/pkg/logger"
)

var (
	errShopIDRequired    = errors.New("yookassa shop id is required")
	errSecretKeyRequired = errors.New("yookassa secret key is required")
	errReturnURLRequired = errors.New("yookassa return url is required")
	errLoggerRequired    = errors.New("yookassa logger is required")
)

// Client wraps the provider REST API with centralized auth, logging,
// idempotency, and error mapping.
type Client struct {
	httpClient *http.Client
	baseURL    string
	shopID     string
	secretKey  string
	returnURL  string
	logger     *logger.Logger
}

// NewClient initializes the provider wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.YooKassaConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	shopID := strings.TrimSpace(cfg.ShopID)
	if shopID == "" {
		return nil, errShopIDRequired
	}
	secretKey := strings.TrimSpace(cfg.SecretKey)
	if secretKey == "" {
		return nil, errSecretKeyRequired
	}
	returnURL := strings.TrimSpace(cfg.ReturnURL)
	if returnURL == "" {
		return nil, errReturnURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		shopID:     shopID,
		secretKey:  secretKey,
		returnURL:  returnURL,
		logger:     logg,
	}

	logg.Info(ctx, "yookassa client initialized")
	return c, nil
}

// CreatePayment requests a redirect payment. The idempotency key is sent as
// the Idempotence-Key header so retries never create a second provider-side
// payment.
func (c *Client) CreatePayment(ctx context.Context, params CreatePaymentParams) (*Payment, error) {
	if strings.TrimSpace(params.IdempotencyKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "idempotency key is required")
	}
	if params.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	body, err := json.Marshal(params.toRequest(c.returnURL))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding payment request")
	}

	c.log(ctx, "request", "create_payment", map[string]any{
		"idempotency_key": params.IdempotencyKey,
		"amount":          formatAmount(params.AmountCents),
		"currency":        params.Currency,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building payment request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", params.IdempotencyKey)
	req.SetBasicAuth(c.shopID, c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log(ctx, "error", "create_payment", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "yookassa create payment")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log(ctx, "error", "create_payment", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading yookassa response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.log(ctx, "error", "create_payment", map[string]any{
			"status": resp.StatusCode,
			"error":  truncate(string(raw), 512),
		})
		return nil, pkgerrors.New(domainCodeForStatus(resp.StatusCode),
			fmt.Sprintf("yookassa create payment failed with status %d", resp.StatusCode))
	}

	var payment Payment
	if err := json.Unmarshal(raw, &payment); err != nil {
		c.log(ctx, "error", "create_payment", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding yookassa response")
	}
	if payment.ConfirmationURL() == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "yookassa response missing confirmation url")
	}

	c.log(ctx, "response", "create_payment", map[string]any{
		"payment_id": payment.ID,
		"status":     payment.Status,
	})
	return &payment, nil
}

// domainCodeForStatus maps provider HTTP statuses onto the error taxonomy.
func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeIdempotency
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	case http.StatusUnprocessableEntity:
		return pkgerrors.CodeStateConflict
	default:
		return pkgerrors.CodeDependency
	}
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{"operation": op, "phase": phase}
	for k, v := range fields {
		logFields[k] = v
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("yookassa %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("yookassa %s", phase))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
