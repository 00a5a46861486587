package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client delivers the latest server round status and relays player actions.
// All operations surface network and server errors to the caller; none are
// swallowed here.
type Client interface {
	FetchRoundStatus(ctx context.Context, sessionID, roundID uuid.UUID) (*RoundStatus, error)
	SubmitBuzz(ctx context.Context, sessionID, roundID uuid.UUID, playerID int64, buzzedAt time.Time) (*BuzzResult, error)
	SubmitAnswer(ctx context.Context, sessionID, roundID uuid.UUID, playerID int64, answer string) (*AnswerResult, error)
}

// RESTClient implements Client against the game server's REST API.
type RESTClient struct {
	baseURL string
	client  *http.Client
	headers map[string]string
}

// NewRESTClient creates a REST transport client for the given server base URL.
func NewRESTClient(baseURL string) *RESTClient {
	return &RESTClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		headers: make(map[string]string),
	}
}

// SetHeader sets a header sent on every request (e.g. an auth token
// established before this subsystem activates).
func (c *RESTClient) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetTimeout overrides the per-request timeout.
func (c *RESTClient) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

func (c *RESTClient) makeRequest(ctx context.Context, method, endpoint string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned status code: %d, response: %s", resp.StatusCode, string(responseBody))
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return responseBody, nil
}

func (c *RESTClient) get(ctx context.Context, endpoint string, out interface{}) error {
	data, err := c.makeRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *RESTClient) post(ctx context.Context, endpoint string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	data, err := c.makeRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// FetchRoundStatus reads the current round state. Read-only.
func (c *RESTClient) FetchRoundStatus(ctx context.Context, sessionID, roundID uuid.UUID) (*RoundStatus, error) {
	endpoint := fmt.Sprintf("/sessions/%s/rounds/%s/state", sessionID, roundID)
	var status RoundStatus
	if err := c.get(ctx, endpoint, &status); err != nil {
		return nil, fmt.Errorf("fetch round status: %w", err)
	}
	return &status, nil
}

// SubmitBuzz registers a buzz attempt. Each call is a distinct attempt.
func (c *RESTClient) SubmitBuzz(ctx context.Context, sessionID, roundID uuid.UUID, playerID int64, buzzedAt time.Time) (*BuzzResult, error) {
	endpoint := fmt.Sprintf("/sessions/%s/rounds/%s/buzz", sessionID, roundID)
	var result BuzzResult
	if err := c.post(ctx, endpoint, buzzRequest{UserID: playerID, Timestamp: buzzedAt}, &result); err != nil {
		return nil, fmt.Errorf("submit buzz: %w", err)
	}
	return &result, nil
}

// SubmitAnswer consumes the player's single answer opportunity for this buzz.
func (c *RESTClient) SubmitAnswer(ctx context.Context, sessionID, roundID uuid.UUID, playerID int64, answer string) (*AnswerResult, error) {
	endpoint := fmt.Sprintf("/sessions/%s/rounds/%s/answer", sessionID, roundID)
	var result AnswerResult
	if err := c.post(ctx, endpoint, answerRequest{UserID: playerID, Answer: answer}, &result); err != nil {
		return nil, fmt.Errorf("submit answer: %w", err)
	}
	return &result, nil
}
