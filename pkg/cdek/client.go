package cdek

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/teleshopapp/teleshop-backend/pkg/config"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
	"github.com/teleshopapp/teleshop-backend/pkg/logger"
)

var (
	errAccountRequired = errors.New("cdek account is required")
	errSecretRequired  = errors.New("cdek secure password is required")
	errLoggerRequired  = errors.New("cdek logger is required")
)

// Client wraps the carrier REST API with token caching, logging, and error
// mapping. The base URL is chosen by the configured environment.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     *tokenSource
	logger     *logger.Logger
}

// NewClient initializes the carrier wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.CDEKConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	account := strings.TrimSpace(cfg.Account)
	if account == "" {
		return nil, errAccountRequired
	}
	secret := strings.TrimSpace(cfg.SecurePassword)
	if secret == "" {
		return nil, errSecretRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}
	baseURL := strings.TrimRight(cfg.BaseURL(), "/")

	c := &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		tokens:     newTokenSource(httpClient, baseURL, account, secret),
		logger:     logg,
	}

	logg.Info(logg.WithField(ctx, "environment", cfg.Environment), "cdek client initialized")
	return c, nil
}

// GetCities looks up carrier city records.
func (c *Client) GetCities(ctx context.Context, filter CityFilter) ([]City, error) {
	query := url.Values{}
	if len(filter.CountryCodes) > 0 {
		query.Set("country_codes", strings.Join(filter.CountryCodes, ","))
	}
	if filter.City != "" {
		query.Set("city", filter.City)
	}
	if filter.Size > 0 {
		query.Set("size", strconv.Itoa(filter.Size))
	}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}

	var cities []City
	if err := c.getJSON(ctx, "get_cities", "/location/cities", query, &cities); err != nil {
		return nil, err
	}
	return cities, nil
}

// GetDeliveryPoints looks up pickup points for a city.
func (c *Client) GetDeliveryPoints(ctx context.Context, filter DeliveryPointFilter) ([]DeliveryPoint, error) {
	query := url.Values{}
	if filter.CityCode > 0 {
		query.Set("city_code", strconv.Itoa(filter.CityCode))
	}
	if filter.Code != "" {
		query.Set("code", filter.Code)
	}

	var points []DeliveryPoint
	if err := c.getJSON(ctx, "get_delivery_points", "/deliverypoints", query, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// GetDeliveryPoint resolves a single pickup point by its opaque code.
func (c *Client) GetDeliveryPoint(ctx context.Context, code string) (*DeliveryPoint, error) {
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery point code is required")
	}

	points, err := c.GetDeliveryPoints(ctx, DeliveryPointFilter{Code: code})
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("delivery point %q not found", code))
	}
	return &points[0], nil
}

// CreateOrder registers a shipment and returns the carrier's order uuid.
func (c *Client) CreateOrder(ctx context.Context, params CreateOrderParams) (string, error) {
	if len(params.Packages) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "shipment requires at least one package")
	}

	body, err := json.Marshal(params)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding shipment request")
	}

	c.log(ctx, "request", "create_order", map[string]any{
		"number":      params.Number,
		"tariff_code": params.TariffCode,
		"packages":    len(params.Packages),
	})

	var entity entityResponse
	if err := c.do(ctx, "create_order", http.MethodPost, "/orders", nil, bytes.NewReader(body), &entity); err != nil {
		return "", err
	}
	if entity.Entity.UUID == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "cdek response missing entity uuid")
	}

	c.log(ctx, "response", "create_order", map[string]any{"carrier_order_id": entity.Entity.UUID})
	return entity.Entity.UUID, nil
}

// GetOrderState fetches the carrier-native state string for an order.
func (c *Client) GetOrderState(ctx context.Context, carrierOrderID string) (string, error) {
	if strings.TrimSpace(carrierOrderID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "carrier order id is required")
	}

	var entity entityResponse
	if err := c.getJSON(ctx, "get_order_state", "/orders/"+url.PathEscape(carrierOrderID), nil, &entity); err != nil {
		return "", err
	}
	return entity.Entity.State, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	c.log(ctx, "request", op, map[string]any{"path": path})
	if err := c.do(ctx, op, http.MethodGet, path, query, nil, out); err != nil {
		return err
	}
	c.log(ctx, "response", op, nil)
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body io.Reader, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.log(ctx, "error", op, map[string]any{"error": err.Error()})
		return err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building cdek request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log(ctx, "error", op, map[string]any{"error": err.Error()})
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("cdek %s", op))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log(ctx, "error", op, map[string]any{"error": err.Error()})
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading cdek response")
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Token may have been revoked carrier-side ahead of its ttl.
		c.tokens.Invalidate()
	}
	if resp.StatusCode >= http.StatusBadRequest {
		c.log(ctx, "error", op, map[string]any{
			"status": resp.StatusCode,
			"error":  truncate(string(raw), 512),
		})
		return pkgerrors.New(domainCodeForStatus(resp.StatusCode),
			fmt.Sprintf("cdek %s failed with status %d", op, resp.StatusCode))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			c.log(ctx, "error", op, map[string]any{"error": err.Error()})
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding cdek response")
		}
	}
	return nil
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
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
		c.logger.Error(ctx, fmt.Sprintf("cdek %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("cdek %s", phase))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
