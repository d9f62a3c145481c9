package tequilapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xiaobei/mvd/internal/proposal"
)

// DefaultAddress is where the node daemon serves its REST API.
const DefaultAddress = "http://127.0.0.1:44050"

// DefaultTimeout bounds every request.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 4 << 10

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tequilapi: HTTP status code: %d", e.Status)
	}
	return fmt.Sprintf("tequilapi: HTTP status code: %d: %s", e.Status, e.Message)
}

// Client talks to the node daemon.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for address. A zero timeout selects
// DefaultTimeout.
func NewClient(address string, timeout time.Duration) *Client {
	if address == "" {
		address = DefaultAddress
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(address, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the daemon address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FindProposals lists proposals of one service type.
func (c *Client) FindProposals(ctx context.Context, serviceType string) ([]proposal.Proposal, error) {
	query := url.Values{}
	if serviceType != "" {
		query.Set("service_type", serviceType)
	}

	var resp proposalList
	if err := c.get(ctx, "/proposals", query, &resp); err != nil {
		return nil, err
	}

	proposals := make([]proposal.Proposal, 0, len(resp.Proposals))
	for _, dto := range resp.Proposals {
		proposals = append(proposals, dto.toProposal())
	}
	return proposals, nil
}

// ProposalsQuality returns the latest monitoring results.
func (c *Client) ProposalsQuality(ctx context.Context) ([]proposal.Quality, error) {
	var resp qualityList
	if err := c.get(ctx, "/proposals/quality", nil, &resp); err != nil {
		return nil, err
	}

	quality := make([]proposal.Quality, 0, len(resp.Quality))
	for _, dto := range resp.Quality {
		quality = append(quality, dto.toQuality())
	}
	return quality, nil
}

// Healthcheck reports daemon liveness.
func (c *Client) Healthcheck(ctx context.Context) (*Healthcheck, error) {
	var resp Healthcheck
	if err := c.get(ctx, "/healthcheck", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConnectionStatus returns the raw connection status string.
func (c *Client) ConnectionStatus(ctx context.Context) (*ConnectionStatus, error) {
	var resp ConnectionStatus
	if err := c.get(ctx, "/connection", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var msg errorMessage
	if json.Unmarshal(body, &msg) == nil && msg.Message != "" {
		apiErr.Message = msg.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
