package kakaopay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ikkim/hwawon-backend/pkg/logger"
)

// Client KakaoPay API 클라이언트
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a client; httpClient may be nil.
func NewClient(config Config, httpClient *http.Client) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}, nil
}

// GetConfig returns the client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// Ready 결제 준비 (TID 발급)
func (c *Client) Ready(ctx context.Context, req ReadyRequest) (*ReadyResponse, error) {
	req.CID = c.config.CID
	if req.ApprovalURL == "" {
		req.ApprovalURL = c.config.ApprovalURL
	}
	if req.FailURL == "" {
		req.FailURL = c.config.FailURL
	}
	if req.CancelURL == "" {
		req.CancelURL = c.config.CancelURL
	}

	var resp ReadyResponse
	if err := c.post(ctx, "ready", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to make ready request: %w", err)
	}
	return &resp, nil
}

// Approve 결제 승인
func (c *Client) Approve(ctx context.Context, req ApproveRequest) (*ApproveResponse, error) {
	req.CID = c.config.CID

	var resp ApproveResponse
	if err := c.post(ctx, "approve", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to make approve request: %w", err)
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload, out interface{}) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := fmt.Sprintf("%s/%s", c.config.BaseURL, endpoint)
	logger.Debug("Sending KakaoPay request", map[string]interface{}{
		"url":        url,
		"key_length": len(c.config.AdminKey),
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "SECRET_KEY "+c.config.AdminKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		_ = json.Unmarshal(body, &errResp)

		logger.Warn("KakaoPay request failed", map[string]interface{}{
			"endpoint":    endpoint,
			"status_code": resp.StatusCode,
			"error_code":  errResp.Code,
		})

		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrUnauthorized, errResp.Message)
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %s", ErrInvalidRequest, errResp.Message)
		default:
			return fmt.Errorf("%w: status %d %s", ErrPaymentFailed, resp.StatusCode, errResp.Message)
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", endpoint, err)
	}
	return nil
}
