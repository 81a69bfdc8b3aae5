// Package client is a typed HTTP client for the food ordering API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"foodorder/entity"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client for baseURL. token may be empty for public calls.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

type SearchResult struct {
	Data       []entity.Restaurant `json:"data"`
	Pagination Pagination          `json:"pagination"`
}

type SearchOptions struct {
	Query    string
	Cuisines []string
	Sort     string
	Page     int
}

type Order struct {
	entity.Order
	TotalDisplay string `json:"totalDisplay"`
}

// CheckoutItem carries quantities as strings, as the browser client does.
type CheckoutItem struct {
	MenuItemID string `json:"menuItemId"`
	Name       string `json:"name"`
	Quantity   string `json:"quantity"`
}

type DeliveryDetails struct {
	Name         string `json:"name"`
	AddressLine1 string `json:"addressLine1"`
	City         string `json:"city"`
	Country      string `json:"country,omitempty"`
	Email        string `json:"email,omitempty"`
}

type CheckoutRequest struct {
	RestaurantID    string          `json:"restaurantId"`
	CartItems       []CheckoutItem  `json:"cartItems"`
	DeliveryDetails DeliveryDetails `json:"deliveryDetails"`
}

func (c *Client) GetRestaurant(ctx context.Context, id uint) (*entity.Restaurant, error) {
	var out entity.Restaurant
	if err := c.do(ctx, http.MethodGet, "/api/restaurant/"+strconv.FormatUint(uint64(id), 10), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchRestaurants(ctx context.Context, city string, opt SearchOptions) (*SearchResult, error) {
	q := url.Values{}
	if opt.Query != "" {
		q.Set("searchQuery", opt.Query)
	}
	if len(opt.Cuisines) > 0 {
		q.Set("selectedCuisines", strings.Join(opt.Cuisines, ","))
	}
	if opt.Sort != "" {
		q.Set("sortOption", opt.Sort)
	}
	if opt.Page > 0 {
		q.Set("page", strconv.Itoa(opt.Page))
	}
	var out SearchResult
	if err := c.do(ctx, http.MethodGet, "/api/restaurant/search/"+url.PathEscape(city), q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCheckoutSession returns the hosted payment page URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/order/checkout/create-checkout-session", nil, req, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) GetMyOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	err := c.do(ctx, http.MethodGet, "/api/order", nil, nil, &out)
	return out, err
}

func (c *Client) GetMyRestaurantOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	err := c.do(ctx, http.MethodGet, "/api/my/restaurant/order", nil, nil, &out)
	return out, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status entity.OrderStatus) (*Order, error) {
	var out Order
	body := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPatch, "/api/my/restaurant/order/"+url.PathEscape(orderID)+"/status", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{Status: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &msg) == nil && msg.Message != "" {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
