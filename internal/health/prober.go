package health

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const probeBodyLimit = 4096

// healthyStatus is the only endpoint status value treated as healthy.
const healthyStatus = "ok"

// Prober issues a bounded-timeout HTTP GET against the application's health
// endpoint and classifies the response.
type Prober struct {
	url     string
	timeout time.Duration
	client  *retryablehttp.Client
}

// NewProber constructs a Prober for the given health URL. The timeout bounds
// the whole probe, retries included.
func NewProber(url string, timeout time.Duration) *Prober {
	client := retryablehttp.NewClient()
	client.RetryMax = 1
	client.RetryWaitMin = 500 * time.Millisecond
	client.Logger = nil
	client.HTTPClient = &http.Client{Timeout: timeout}

	return &Prober{
		url:     url,
		timeout: timeout,
		client:  client,
	}
}

// Probe reports ok only for a 200 response whose body carries
// {"status":"ok"}. Any other status value is degraded; an unreachable or
// malformed endpoint is absent.
func (p *Prober) Probe(ctx context.Context) (Status, string) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return StatusAbsent, fmt.Sprintf("build probe request: %v", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return StatusAbsent, fmt.Sprintf("endpoint unreachable: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, probeBodyLimit))
	if err != nil {
		return StatusAbsent, fmt.Sprintf("read probe response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return StatusDegraded, fmt.Sprintf("endpoint returned %s", resp.Status)
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return StatusAbsent, fmt.Sprintf("malformed probe response: %v", err)
	}

	if payload.Status != healthyStatus {
		return StatusDegraded, fmt.Sprintf("endpoint status %q", payload.Status)
	}
	return StatusOK, "endpoint status \"ok\""
}
