package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/healthquery/models"
	"github.com/a-h/jsonapi"
)

// DefaultURL is the base URL of the local backend.
const DefaultURL = "http://127.0.0.1:8000"

var ErrInvalidJSON = errors.New("response body is not valid JSON")

func New(baseURL string) Client {
	return Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

type Client struct {
	baseURL string
}

// HealthGet calls GET /health. Any status code is accepted as long as the body
// is JSON; the status is returned so callers can log it.
func (c Client) HealthGet(ctx context.Context) (resp models.HealthGetResponse, status int, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("health").String()
	if err != nil {
		return resp, 0, fmt.Errorf("failed to create URL: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return resp, 0, fmt.Errorf("failed to create request: %w", err)
	}
	res, err := jsonapi.Raw(httpReq)
	if err != nil {
		return resp, 0, fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return resp, res.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	if !json.Valid(body) {
		return resp, res.StatusCode, fmt.Errorf("status %d: %w", res.StatusCode, ErrInvalidJSON)
	}
	return models.HealthGetResponse(body), res.StatusCode, nil
}
