package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/canteen/internal/models"
)

// ErrUnavailable wraps every transport failure and non-2xx answer.
var ErrUnavailable = errors.New("remote unavailable")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient talks to the canteen backend at baseURL. A zero timeout leaves
// requests bounded only by the caller's context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type OrderLine struct {
	DishID   int    `json:"dishId"`
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

type OrderRequest struct {
	UserID     int         `json:"userId"`
	Items      []OrderLine `json:"items"`
	Total      int         `json:"total"`
	PickupTime string      `json:"pickupTime"`
	Comment    string      `json:"comment,omitempty"`
}

type OrderResponse struct {
	OrderNumber string `json:"orderNumber"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s %s: status %d", ErrUnavailable, method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, path, err)
	}
	return nil
}

func (c *Client) Menu(ctx context.Context) ([]models.Dish, error) {
	var dishes []models.Dish
	if err := c.do(ctx, http.MethodGet, "/menu", nil, &dishes); err != nil {
		return nil, err
	}
	return dishes, nil
}

// CreateOrder submits the order and returns the number the backend assigned.
func (c *Client) CreateOrder(ctx context.Context, o OrderRequest) (string, error) {
	var resp OrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", o, &resp); err != nil {
		return "", err
	}
	return resp.OrderNumber, nil
}

func (c *Client) User(ctx context.Context, id int) (models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/users/"+strconv.Itoa(id), nil, &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}
