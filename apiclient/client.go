package apiclient

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

	"github.com/kendall-kelly/hantverk-dashboard/logger"
	"github.com/kendall-kelly/hantverk-dashboard/models"
)

// IdempotencyHeader carries the client chosen key that lets the backend drop duplicate creates
const IdempotencyHeader = "Idempotency-Key"

const defaultTimeout = 10 * time.Second

// Client talks to the dashboard REST backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per request timeout of the default HTTP client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: timeout}
	}
}

// WithLogger attaches a logger for request tracing
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a client for the backend rooted at baseURL, e.g. "http://localhost:8080"
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the prefix used for every request
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListCustomers fetches GET /customers
func (c *Client) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := c.do(ctx, http.MethodGet, "/customers", nil, nil, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// ListInstallers fetches GET /installers
func (c *Client) ListInstallers(ctx context.Context) ([]models.Installer, error) {
	var installers []models.Installer
	if err := c.do(ctx, http.MethodGet, "/installers", nil, nil, &installers); err != nil {
		return nil, err
	}
	return installers, nil
}

// ListMaterials fetches GET /materials
func (c *Client) ListMaterials(ctx context.Context) ([]models.Material, error) {
	var materials []models.Material
	if err := c.do(ctx, http.MethodGet, "/materials", nil, nil, &materials); err != nil {
		return nil, err
	}
	return materials, nil
}

// ListOrders fetches GET /orders
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateCustomer sends POST /customers
func (c *Client) CreateCustomer(ctx context.Context, req models.CreateCustomerRequest) (*models.Customer, error) {
	var customer models.Customer
	if err := c.do(ctx, http.MethodPost, "/customers", req, nil, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreateInstaller sends POST /installers
func (c *Client) CreateInstaller(ctx context.Context, req models.CreateInstallerRequest) (*models.Installer, error) {
	var installer models.Installer
	if err := c.do(ctx, http.MethodPost, "/installers", req, nil, &installer); err != nil {
		return nil, err
	}
	return &installer, nil
}

// CreateMaterial sends POST /materials
func (c *Client) CreateMaterial(ctx context.Context, req models.CreateMaterialRequest) (*models.Material, error) {
	var material models.Material
	if err := c.do(ctx, http.MethodPost, "/materials", req, nil, &material); err != nil {
		return nil, err
	}
	return &material, nil
}

// CreateOrder sends POST /orders. The returned order carries the backend's authoritative total.
// An empty idempotencyKey sends no Idempotency-Key header.
func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest, idempotencyKey string) (*models.Order, error) {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers[IdempotencyHeader] = idempotencyKey
	}

	var order models.Order
	if err := c.do(ctx, http.MethodPost, "/orders", req, headers, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	ctx = c.log.WithFields(ctx, map[string]any{"method": method, "path": path})
	c.log.Debug(ctx, "backend.request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.Warn(ctx, "failed to close response body", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp)
		c.log.Warn(c.log.WithField(ctx, "status", resp.StatusCode), "backend.error", apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// APIError is a non-success response from the backend
type APIError struct {
	StatusCode int
	// Detail is the backend's human readable explanation; empty when none was sent
	Detail string
	Code   string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// decodeAPIError reads the error body. A detail that is not a string (for example a
// list of field errors) is ignored so callers fall back to their generic message.
func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Detail json.RawMessage `json:"detail"`
		Code   string          `json:"code"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || json.Unmarshal(raw, &body) != nil {
		return apiErr
	}

	apiErr.Code = body.Code
	var detail string
	if json.Unmarshal(body.Detail, &detail) == nil {
		apiErr.Detail = strings.TrimSpace(detail)
	}
	return apiErr
}

// DetailOr returns the backend detail carried by err, or fallback when there is none
func DetailOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
