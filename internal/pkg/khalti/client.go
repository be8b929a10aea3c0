package khalti

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPaymentDeclined    = errors.New("payment failed or cancelled by user")
	ErrVerificationFailed = errors.New("payment verification failed")
)

// Config holds Khalti API configuration
type Config struct {
	BaseURL   string
	PublicKey string
	SecretKey string
	Timeout   time.Duration

	// Simulate replaces the network round trip with a delayed
	// fixed-probability outcome. Used in development and tests.
	Simulate      bool
	SuccessRate   float64       // probability of a successful simulated payment
	SimulateDelay time.Duration // artificial round-trip delay
}

// Client represents Khalti payment gateway client
type Client struct {
	httpClient *http.Client
	config     Config
}

// InitiateRequest represents a payment initiation request.
// Amount is in integer minor units (paisa).
type InitiateRequest struct {
	Amount      int64  `json:"amount"`
	ProductID   string `json:"product_identity"`
	ProductName string `json:"product_name"`
	ProductURL  string `json:"product_url,omitempty"`
	ReturnURL   string `json:"return_url,omitempty"`
}

// PaymentResult represents a successful payment outcome
type PaymentResult struct {
	Token     string    `json:"token"`
	IDX       string    `json:"idx"` // provider-assigned transaction id
	Amount    int64     `json:"amount"`
	CreatedOn time.Time `json:"created_on"`
}

// Verification represents the server-side confirmation of a payment
type Verification struct {
	IDX       string    `json:"idx"`
	Token     string    `json:"token"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	CreatedOn time.Time `json:"created_on"`
}

// NewClient creates new Khalti API client
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.SuccessRate == 0 {
		cfg.SuccessRate = 0.9
	}
	if cfg.SimulateDelay == 0 {
		cfg.SimulateDelay = 2 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
	}
}

// Initiate starts a payment and resolves with the provider outcome.
// Leaves no partial state behind on failure; callers retry the whole flow.
func (c *Client) Initiate(ctx context.Context, req InitiateRequest) (*PaymentResult, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("validation error: amount must be > 0")
	}
	if strings.TrimSpace(req.ProductID) == "" {
		return nil, fmt.Errorf("validation error: product_identity must be non-empty")
	}

	if c.config.Simulate {
		return c.simulateInitiate(ctx, req)
	}

	var out PaymentResult
	if err := c.post(ctx, "/payment/initiate/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify re-confirms a payment server-side before any ledger mutation.
// Decoupled from Initiate so a compromised client cannot spoof success.
func (c *Client) Verify(ctx context.Context, token string, amount int64) (*Verification, error) {
	if strings.TrimSpace(token) == "" || amount <= 0 {
		return nil, ErrVerificationFailed
	}

	if c.config.Simulate {
		return c.simulateVerify(ctx, token, amount)
	}

	body := map[string]interface{}{"token": token, "amount": amount}
	var out Verification
	if err := c.post(ctx, "/payment/verify/", body, &out); err != nil {
		return nil, err
	}
	if !strings.EqualFold(out.Status, "completed") {
		return nil, ErrVerificationFailed
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	if strings.TrimSpace(c.config.BaseURL) == "" {
		return fmt.Errorf("khalti config error: base_url is empty")
	}
	if strings.TrimSpace(c.config.SecretKey) == "" {
		return fmt.Errorf("khalti config error: secret_key is empty")
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode khalti request: %w", err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + path

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("khalti api call failed: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Key "+c.config.SecretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("khalti api call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("khalti api call failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("khalti api returned non-2xx status: %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse khalti response: %w", err)
	}
	return nil
}

func (c *Client) simulateInitiate(ctx context.Context, req InitiateRequest) (*PaymentResult, error) {
	if err := c.sleep(ctx, c.config.SimulateDelay); err != nil {
		return nil, err
	}

	if rand.Float64() >= c.config.SuccessRate {
		return nil, ErrPaymentDeclined
	}

	return &PaymentResult{
		Token:     "sim_token_" + uuid.New().String(),
		IDX:       "sim_payment_" + uuid.New().String(),
		Amount:    req.Amount,
		CreatedOn: time.Now(),
	}, nil
}

func (c *Client) simulateVerify(ctx context.Context, token string, amount int64) (*Verification, error) {
	if err := c.sleep(ctx, c.config.SimulateDelay/2); err != nil {
		return nil, err
	}

	// Only tokens issued by the simulated Initiate verify successfully.
	if !strings.HasPrefix(token, "sim_token_") {
		return nil, ErrVerificationFailed
	}

	return &Verification{
		IDX:       "sim_verification_" + uuid.New().String(),
		Token:     token,
		Amount:    amount,
		Status:    "Completed",
		CreatedOn: time.Now(),
	}, nil
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
