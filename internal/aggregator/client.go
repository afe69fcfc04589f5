package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Account is the reference returned when the aggregator creates an account
// for one of our users.
type Account struct {
	ExternalID string `json:"guid"`
	Email      string `json:"email"`
}

// Client talks to the external banking-data aggregator. The signup flow
// creates a linked account there once a user finishes registration.
type Client interface {
	CreateLinkedAccount(ctx context.Context, userID, email string) (*Account, error)
}

// HTTPClient implements Client against the aggregator's REST API
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient creates an aggregator client
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type createUserRequest struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type createUserResponse struct {
	User Account `json:"user"`
}

// CreateLinkedAccount creates an aggregator account for the given user
func (c *HTTPClient) CreateLinkedAccount(ctx context.Context, userID, email string) (*Account, error) {
	var reqBody createUserRequest
	reqBody.User.ID = userID
	reqBody.User.Email = email

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal aggregator request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build aggregator request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aggregator request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("aggregator returned status %d", resp.StatusCode)
	}

	var respBody createUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("failed to decode aggregator response: %w", err)
	}

	if respBody.User.ExternalID == "" {
		return nil, fmt.Errorf("aggregator response missing account id")
	}

	return &respBody.User, nil
}
