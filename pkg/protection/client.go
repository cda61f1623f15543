package protection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrBlocked signals that the backend refused the report because the session
// is no longer authorized: the account is blocked or the token is dead.
// Either way the only sane client reaction is an immediate sign-out.
var ErrBlocked = errors.New("account blocked or session expired")

// SubmitResult is the server's verdict on a reported violation.
type SubmitResult struct {
	ViolationCount int64 `json:"violationCount"`
	ShouldBlock    bool  `json:"shouldBlock"`
	Threshold      int   `json:"threshold"`
}

type envelope struct {
	Data json.RawMessage `json:"data"`
	Info struct {
		Message string `json:"message"`
	} `json:"info"`
}

// Client talks to the violation ingestion endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// Submit posts one classified violation under the session's bearer token.
func (c *Client) Submit(ctx context.Context, token string, rep Report) (*SubmitResult, error) {
	body, err := json.Marshal(map[string]string{
		"type":        string(rep.Kind),
		"description": rep.Description,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/violations", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to submit violation: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return nil, ErrBlocked
	}

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("violation report rejected: %s", env.Info.Message)
	}

	var result SubmitResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return &result, nil
}
