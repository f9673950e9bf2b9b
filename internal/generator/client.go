package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	v1 "sceneforge/internal/contracts/generator/v1"
)

// Client is the script-generation collaborator. Failures here surface as
// submission failures, never as pipeline failures.
type Client interface {
	Generate(ctx context.Context, req v1.GenerateRequest) (*v1.GenerateResponse, error)
}

type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

func (c *HTTPClient) Generate(ctx context.Context, in v1.GenerateRequest) (*v1.GenerateResponse, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("generator http %d", res.StatusCode)
	}

	var out v1.GenerateResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("generator response decode failed: %w", err)
	}
	if strings.TrimSpace(out.Script) == "" {
		return nil, fmt.Errorf("generator returned empty script")
	}
	return &out, nil
}
