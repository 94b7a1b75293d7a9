// Package functionsapi is the storefront's view of the functions tier.
package functionsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront/internal/api"
	"storefront/internal/domain"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Client calls the functions tier over HTTP. Failures that are not a domain
// answer (transport errors, 5xx) wrap domain.ErrUpstreamUnavailable.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
		logger: logger,
	}
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var dto api.ProductDTO
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &dto); err != nil {
		return nil, err
	}
	p := dto.ToDomain()
	return &p, nil
}

func (c *Client) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	var dto api.CustomerDTO
	if err := c.do(ctx, http.MethodGet, "/api/customers/"+url.PathEscape(id), nil, &dto); err != nil {
		return nil, err
	}
	cust := dto.ToDomain()
	return &cust, nil
}

func (c *Client) UpdateShippingAddress(ctx context.Context, customerID, address string) error {
	cust, err := c.GetCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	dto := api.FromCustomer(*cust)
	dto.ShippingAddress = address
	return c.do(ctx, http.MethodPut, "/api/customers/"+url.PathEscape(customerID), dto, nil)
}

func (c *Client) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	body := api.OrderCreateDTO{ID: req.ID, CustomerID: req.CustomerID, ProductID: req.ProductID, Quantity: req.Quantity}
	if !req.OrderDate.IsZero() {
		d := req.OrderDate
		body.OrderDate = &d
	}
	var dto api.OrderDTO
	if err := c.do(ctx, http.MethodPost, "/api/orders", body, &dto); err != nil {
		return nil, err
	}
	o := dto.ToDomain()
	return &o, nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodPost, "/api/orders/"+url.PathEscape(orderID)+"/cancel", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("functions client: request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %s %s: %w", domain.ErrUpstreamUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode %s %s: %w", domain.ErrUpstreamUnavailable, method, path, err)
		}
		return nil
	}

	var er api.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &er)
	if er.Error == "" {
		er.Error = strings.TrimSpace(string(raw))
	}
	return mapError(resp.StatusCode, er, method, path)
}

func mapError(status int, er api.ErrorResponse, method, path string) error {
	switch status {
	case http.StatusBadRequest:
		if er.Code == api.CodeEmptyCart {
			return domain.ErrEmptyCart
		}
		return &domain.ValidationError{Message: er.Error}
	case http.StatusNotFound:
		if er.Code == api.CodeCustomerNotFound {
			return domain.ErrCustomerNotFound
		}
		return domain.ErrNotFound
	case http.StatusConflict:
		switch er.Code {
		case api.CodeInsufficientStock:
			e := &domain.InsufficientStockError{ProductID: er.ProductID}
			if er.Requested != nil {
				e.Requested = *er.Requested
			}
			if er.Available != nil {
				e.Available = *er.Available
			}
			return e
		case api.CodeAlreadyExists:
			return domain.ErrAlreadyExists
		default:
			return domain.ErrConcurrencyConflict
		}
	default:
		return fmt.Errorf("%w: %s %s: status %d: %s", domain.ErrUpstreamUnavailable, method, path, status, er.Error)
	}
}
