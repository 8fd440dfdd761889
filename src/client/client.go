// Package client is a typed Go client for the FinGenius HTTP API together
// with the session-side data cache built on it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"fingenius-server/src/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// APIError is a non-2xx response. Message is the server's text verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fingenius: %d %s", e.Status, e.Message)
}

// TransactionInput is the body of create and update calls. Zero fields are
// omitted, which on update leaves the stored value unchanged.
type TransactionInput struct {
	Type        string           `json:"type,omitempty"`
	Category    string           `json:"category,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Date        *time.Time       `json:"date,omitempty"`
	Description string           `json:"description,omitempty"`
}

type LoginResponse struct {
	User struct {
		ID       uuid.UUID `json:"id"`
		Username string    `json:"username"`
		Email    string    `json:"email"`
	} `json:"user"`
	Token string `json:"token"`
}

type ProfileUpdate struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:8000/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/auth/register", body, nil)
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/user/profile", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile also swaps in the fresh token from the response.
func (c *Client) UpdateProfile(ctx context.Context, p ProfileUpdate) error {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPut, "/user/profile", p, &resp); err != nil {
		return err
	}
	c.SetToken(resp.Token)
	return nil
}

func (c *Client) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions", nil, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

func (c *Client) CreateTransaction(ctx context.Context, in TransactionInput) (*models.Transaction, error) {
	var t models.Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) UpdateTransaction(ctx context.Context, id uuid.UUID, in TransactionInput) (*models.Transaction, error) {
	var t models.Transaction
	if err := c.do(ctx, http.MethodPut, "/transactions/"+id.String(), in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/transactions/"+id.String(), nil, nil)
}

// GetGoal returns nil without error when no goal is set.
func (c *Client) GetGoal(ctx context.Context) (*models.Goal, error) {
	var g *models.Goal
	if err := c.do(ctx, http.MethodGet, "/goals", nil, &g); err != nil {
		return nil, err
	}
	return g, nil
}

func (c *Client) SetGoal(ctx context.Context, monthlyBudget decimal.Decimal) (*models.Goal, error) {
	var g models.Goal
	body := map[string]decimal.Decimal{"monthlyBudget": monthlyBudget}
	if err := c.do(ctx, http.MethodPost, "/goals", body, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	var n []models.Notification
	if err := c.do(ctx, http.MethodGet, "/notifications", nil, &n); err != nil {
		return nil, err
	}
	return n, nil
}

func (c *Client) Insights(ctx context.Context, question string) (string, error) {
	path := "/ai/insights"
	if question != "" {
		path += "?question=" + url.QueryEscape(question)
	}
	var resp struct {
		Insights string `json:"insights"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.Insights, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &msg) == nil && msg.Message != "" {
			apiErr.Message = msg.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
