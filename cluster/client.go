/*Package cluster forwards incident coordinates to the external
clustering service and merges its analysis with the incident records.
*/
package cluster

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
)

// RequestPoint is one incident's coordinates as the service expects them.
type RequestPoint struct {
	ID                int64   `json:"id"`
	LocationLatitude  float64 `json:"locationLatitude"`
	LocationLongitude float64 `json:"locationLongitude"`
}

// Request is the payload sent to the clustering service.
type Request struct {
	Settings resolvedSettings `json:"settings"`
	Data     []RequestPoint   `json:"data"`
}

// ClusterResult is the service's scoring for one cluster count.
type ClusterResult struct {
	ClusterCount int     `json:"clusterCount"`
	Labels       []int   `json:"labels"`
	Score        float64 `json:"score"`
}

// Response is the service's analysis over the requested cluster range.
type Response struct {
	ClusterResults      []ClusterResult `json:"clusterResults"`
	OptimalClusterCount int             `json:"optimalClusterCount"`
}

// Client calls the clustering service behind a circuit breaker, so a
// dead or misbehaving service fails requests fast instead of piling up
// blocked handlers.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*Response]
}

// NewClient creates a client for the clustering service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
			Name:    "clustering",
			Timeout: 30 * time.Second,
		}),
	}
}

// Cluster posts the request to the service and decodes its analysis.
func (c *Client) Cluster(ctx context.Context, request Request) (*Response, error) {
	return c.breaker.Execute(func() (*Response, error) {
		payload, err := json.Marshal(request)
		if err != nil {
			return nil, err
		}

		httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/cluster", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		httpRequest.Header.Set("Content-Type", "application/json")

		httpResponse, err := c.http.Do(httpRequest)
		if err != nil {
			return nil, err
		}
		defer httpResponse.Body.Close()

		if httpResponse.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(httpResponse.Body, 512))
			return nil, fmt.Errorf("clustering service returned status %d: %s",
				httpResponse.StatusCode, string(body))
		}

		var response Response
		if err := json.NewDecoder(httpResponse.Body).Decode(&response); err != nil {
			return nil, fmt.Errorf("cannot decode clustering response: %w", err)
		}
		return &response, nil
	})
}
